package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderAlignedTable_PadsToWidestCell(t *testing.T) {
	out := stripANSI(RenderAlignedTable(
		[]string{"ID", "NAME"},
		[][]string{{"1", "Design"}, {"12", StyleRed.Render("Build")}},
		[]Align{AlignRight},
	))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, []string{
		"ID  NAME",
		"──  ──────",
		" 1  Design",
		"12  Build",
	}, lines)
}

func TestRenderTable_EmptyHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, nil))
}
