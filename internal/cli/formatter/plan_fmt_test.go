package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTaskTable_ListsTasksInOutlineOrder(t *testing.T) {
	res := samplePlan(t)
	out := stripANSI(FormatTaskTable(res, at(3, 8)))

	launch := strings.Index(out, "Launch")
	design := strings.Index(out, "Design")
	build := strings.Index(out, "Build")
	docs := strings.Index(out, "Docs")
	assert.True(t, launch < design && design < build && build < docs, "outline order:\n%s", out)

	assert.Contains(t, out, "1.1")
	assert.Contains(t, out, "  Design", "children are indented")
	assert.Contains(t, out, "Mon Mar 10 2025 08:00", "Build starts after the weekend")
	assert.Contains(t, out, "2FS", "predecessor notation")
}

func TestFormatTaskTable_Empty(t *testing.T) {
	res := samplePlan(t)
	res.Tasks = nil
	assert.Contains(t, FormatTaskTable(res, at(3, 8)), "No tasks yet")
}

func TestFormatTaskTree_MarksCriticalAndWBS(t *testing.T) {
	res := samplePlan(t)
	out := stripANSI(FormatTaskTree(res, at(3, 8)))

	assert.Contains(t, out, "1 Launch")
	assert.Contains(t, out, "├─ ◆ 1.1 Design")
	assert.Contains(t, out, "└─ ◆ 1.2 Build")
	assert.Contains(t, out, "[ 5d ")
	assert.Contains(t, out, "upcoming", "Build has not started")
	assert.NotContains(t, out, "◆ 2 Docs", "docs has float")
}

func TestFormatScheduleSummary(t *testing.T) {
	res := samplePlan(t)
	res.Completion = 40
	out := stripANSI(FormatScheduleSummary(res))

	assert.Contains(t, out, "WEBSITE")
	assert.Contains(t, out, "Wed Mar 12 2025 16:00")
	assert.Contains(t, out, "ON TRACK")
	assert.Contains(t, out, " 40%")
	assert.Contains(t, out, "Design (#2) → Build (#3)")
	assert.Contains(t, out, "Ada over-allocated on 3 day(s), peak 150% of 100%")
}

func TestFormatMutation(t *testing.T) {
	res := samplePlan(t)
	res.OverAllocations = nil
	out := stripANSI(FormatMutation(res))
	assert.Contains(t, out, "✔ add task 4")
	assert.Contains(t, out, "finish Wed Mar 12 2025 16:00")

	res.Removed = []int{1, 2, 3}
	assert.Contains(t, stripANSI(FormatMutation(res)), "(removed 1, 2, 3)")
}

func TestFormatResources(t *testing.T) {
	res := samplePlan(t)
	out := stripANSI(FormatResources(res))
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "100.00 EUR")
	assert.Contains(t, out, "100%")

	res.Resources = nil
	assert.Contains(t, FormatResources(res), "No resources yet")
}
