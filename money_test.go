package invoicepdf

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"100", "100.00"},
		{"100.5", "100.50"},
		{"100.999", "101.00"},
		{"0.125", "0.13"},
		{"0.124", "0.12"},
		{"2.675", "2.68"},
		{"-0.125", "-0.13"},
		{"-3.5", "-3.50"},
		{"1234567.891", "1234567.89"},
		{"99999999999999999999.995", "100000000000000000000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(decimal.RequireFromString(tt.in)))
		})
	}
}
