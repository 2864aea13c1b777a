package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

func clampBar(pct float64, width int) (float64, int, int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	if width < 2 {
		width = 2
	}
	filled := min(int(pct*float64(width)), width)
	return pct, filled, width - filled
}

func progressStyle(pct float64) func(...string) string {
	switch {
	case pct < 0.33:
		return StyleRed.Render
	case pct < 0.66:
		return StyleYellow.Render
	default:
		return StyleGreen.Render
	}
}

// RenderProgress renders a progress bar like [████░░░░] 45%.
// The bar is colored based on percentage: green >66%, yellow 33-66%, red <33%.
func RenderProgress(pct float64, width int) string {
	pct, filled, empty := clampBar(pct, width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, empty)
	return fmt.Sprintf("[%s] %3.0f%%", progressStyle(pct)(bar), pct*100)
}

// RenderCompactBar renders just the blocks, for table cells. dim renders the
// whole bar muted, used for completed or summary rows.
func RenderCompactBar(pct float64, width int, dim bool) string {
	pct, filled, empty := clampBar(pct, width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, empty)
	if dim {
		return StyleDim.Render(bar)
	}
	return progressStyle(pct)(bar)
}

// RenderHistogramBar renders a horizontal bar whose length is count scaled
// against peak.
func RenderHistogramBar(count, peak, width int) string {
	if peak <= 0 || count <= 0 {
		return ""
	}
	n := count * width / peak
	if n == 0 {
		n = 1
	}
	return StylePurple.Render(strings.Repeat(filledBlock, n))
}
