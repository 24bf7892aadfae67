package invoicepdf

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidationError lists every problem found by [InvoiceRecord.Validate].
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invoicepdf: invalid invoice record: " + strings.Join(e.Problems, "; ")
}

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// recordValidator returns the shared validator. validator.Validate caches
// struct metadata and is safe for concurrent use once configured.
func recordValidator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		validatorInst = v
	})
	return validatorInst
}

// Validate checks the record's shape and arithmetic consistency.
//
// It is opt-in. The composer never calls it and never corrects the
// numbers it is given; see [WithValidation] to run it as part of an export.
// The returned error, if any, is a *[ValidationError] naming every failing
// field.
func (r *InvoiceRecord) Validate() error {
	if r == nil {
		return &ValidationError{Problems: []string{"record is nil"}}
	}

	var problems []string

	if err := recordValidator().Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("invoicepdf: validating record: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, describeFieldError(fe))
		}
	}

	for i, it := range r.Items {
		qty := 0
		amount := decimal.Zero
		for j, s := range it.Sizes {
			path := fmt.Sprintf("items[%d].sizes[%d]", i, j)
			if want := s.Price.Mul(decimal.NewFromInt(int64(s.Quantity))); !s.Total.Equal(want) {
				problems = append(problems, fmt.Sprintf("%s.total is %s, want quantity × price = %s",
					path, s.Total.String(), want.String()))
			}
			qty += s.Quantity
			amount = amount.Add(s.Total)
		}
		if it.TotalQuantity != qty {
			problems = append(problems, fmt.Sprintf("items[%d].totalQuantity is %d, sizes sum to %d",
				i, it.TotalQuantity, qty))
		}
		if !it.TotalAmount.Equal(amount) {
			problems = append(problems, fmt.Sprintf("items[%d].totalAmount is %s, sizes sum to %s",
				i, it.TotalAmount.String(), amount.String()))
		}
	}

	problems = append(problems, r.Totals.check(r.Items)...)

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// check compares the summary against the line items it summarises.
func (t Totals) check(items []LineItem) []string {
	var problems []string

	if t.TotalItems != len(items) {
		problems = append(problems, fmt.Sprintf("totals.totalItems is %d, record has %d items",
			t.TotalItems, len(items)))
	}

	qty := 0
	grand := decimal.Zero
	for _, it := range items {
		qty += it.TotalQuantity
		grand = grand.Add(it.TotalAmount)
	}
	if t.TotalQuantity != qty {
		problems = append(problems, fmt.Sprintf("totals.totalQuantity is %d, items sum to %d",
			t.TotalQuantity, qty))
	}
	if !t.GrandTotal.Equal(grand) {
		problems = append(problems, fmt.Sprintf("totals.grandTotal is %s, items sum to %s",
			t.GrandTotal.String(), grand.String()))
	}
	return problems
}

// describeFieldError turns a validator error into "path rule" text using
// the JSON field names.
func describeFieldError(fe validator.FieldError) string {
	path := fe.Namespace()
	// Drop the root struct name.
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}
	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "gte":
		return fmt.Sprintf("%s must be >= %s", path, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", path, fe.Tag())
	}
}
