package invoicepdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCmToInches(t *testing.T) {
	assert.InDelta(t, 1.0, cmToInches(2.54), 1e-9)
	assert.InDelta(t, 0.0, cmToInches(0), 1e-9)
	assert.InDelta(t, 8.2677, cmToInches(21.0), 0.001)
}

func TestPixelMargin(t *testing.T) {
	m := PixelMargin(96)
	assert.InDelta(t, 2.54, m.Top, 1e-9)
	assert.Equal(t, m.Top, m.Right)
	assert.Equal(t, m.Top, m.Bottom)
	assert.Equal(t, m.Top, m.Left)
}

func TestInvoicePageConfig(t *testing.T) {
	pc := InvoicePageConfig()

	assert.Equal(t, A4, pc.Size)
	assert.Equal(t, Portrait, pc.Orientation)
	assert.Equal(t, 1.0, pc.Scale)
	assert.True(t, pc.PrintBackground)
	assert.False(t, pc.DisplayHeaderFooter)
	assert.Empty(t, pc.HeaderTemplate)
	assert.Empty(t, pc.FooterTemplate)

	// 20 CSS pixels on every side, 20/96 of an inch.
	top, right, bottom, left := pc.marginInches()
	for _, v := range []float64{top, right, bottom, left} {
		assert.InDelta(t, 20.0/96.0, v, 1e-9)
	}
}

func TestPageConfigResolved(t *testing.T) {
	tests := []struct {
		name string
		in   *PageConfig
		want PageConfig
	}{
		{"nil", nil, InvoicePageConfig()},
		{
			name: "zero values",
			in:   &PageConfig{},
			want: PageConfig{Size: A4, Scale: 1.0, Margin: PixelMargin(InvoiceMarginPixels)},
		},
		{
			name: "explicit values kept",
			in: &PageConfig{
				Size:        Letter,
				Orientation: Landscape,
				Scale:       0.5,
				Margin:      Margin{Top: 2, Right: 3, Bottom: 2, Left: 3},
			},
			want: PageConfig{
				Size:        Letter,
				Orientation: Landscape,
				Scale:       0.5,
				Margin:      Margin{Top: 2, Right: 3, Bottom: 2, Left: 3},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.resolved())
		})
	}
}

func TestPaperDimensions(t *testing.T) {
	// A4 = 21.0 x 29.7 cm = 8.267 x 11.693 inches
	w, h := (&PageConfig{Size: A4}).paperDimensions()
	assert.InDelta(t, 8.267, w, 0.01)
	assert.InDelta(t, 11.693, h, 0.01)

	w, h = (&PageConfig{Size: A4, Orientation: Landscape}).paperDimensions()
	assert.InDelta(t, 11.693, w, 0.01)
	assert.InDelta(t, 8.267, h, 0.01)
}

func TestMarginInches(t *testing.T) {
	pc := &PageConfig{Margin: Margin{Top: 2.54, Right: 5.08, Bottom: 2.54, Left: 5.08}}
	top, right, bottom, left := pc.marginInches()

	assert.InDelta(t, 1.0, top, 0.001)
	assert.InDelta(t, 2.0, right, 0.001)
	assert.InDelta(t, 1.0, bottom, 0.001)
	assert.InDelta(t, 2.0, left, 0.001)
}
