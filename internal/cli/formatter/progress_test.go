package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderCompactBar(t *testing.T) {
	tests := []struct {
		name  string
		pct   float64
		width int
		dim   bool
	}{
		{"0% normal", 0.0, 10, false},
		{"50% normal", 0.5, 10, false},
		{"100% normal", 1.0, 10, false},
		{"50% dimmed", 0.5, 10, true},
		{"over 100% clamps", 1.5, 10, false},
		{"negative clamps", -0.5, 10, false},
		{"tiny width clamps to 2", 0.5, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderCompactBar(tt.pct, tt.width, tt.dim)
			assert.NotEmpty(t, got)
			assert.NotContains(t, got, "[")
			assert.NotContains(t, got, "]")
			assert.NotContains(t, got, "%")
		})
	}
}

func TestRenderCompactBarBlocks(t *testing.T) {
	bar0 := stripANSI(RenderCompactBar(0.0, 4, true))
	assert.Equal(t, strings.Repeat(emptyBlock, 4), bar0)

	bar100 := stripANSI(RenderCompactBar(1.0, 4, true))
	assert.Equal(t, strings.Repeat(filledBlock, 4), bar100)

	half := stripANSI(RenderCompactBar(0.5, 4, false))
	assert.Equal(t, strings.Repeat(filledBlock, 2)+strings.Repeat(emptyBlock, 2), half)
}

func TestRenderProgress(t *testing.T) {
	got := stripANSI(RenderProgress(0.45, 10))
	assert.Equal(t, "[████░░░░░░]  45%", got)

	got = stripANSI(RenderProgress(2, 4))
	assert.Equal(t, "[████] 100%", got)
}

func TestRenderHistogramBar(t *testing.T) {
	assert.Empty(t, RenderHistogramBar(0, 10, 20))
	assert.Empty(t, RenderHistogramBar(3, 0, 20))
	assert.Equal(t, strings.Repeat(filledBlock, 20), stripANSI(RenderHistogramBar(10, 10, 20)))
	assert.Equal(t, filledBlock, stripANSI(RenderHistogramBar(1, 100, 20)), "non-empty bins always show")
}
