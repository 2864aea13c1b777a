package formatter

import (
	"testing"

	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/importer"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFormatImport(t *testing.T) {
	res := &contract.ImportResult{
		Project:         testutil.NewTestProject("Website", testutil.WithShortID("WEB01")),
		TaskCount:       4,
		DependencyCount: 2,
		ResourceCount:   1,
		Issues:          []importer.Issue{{Path: "tasks[2].predecessors[0]", Message: "unknown task 9"}},
	}
	out := stripANSI(FormatImport(res))
	assert.Contains(t, out, "imported Website (WEB01)")
	assert.Contains(t, out, "4 tasks · 2 dependencies · 1 resources · 0 baselines")
	assert.Contains(t, out, "1 entries skipped")
	assert.Contains(t, out, "tasks[2].predecessors[0] unknown task 9")
}

func TestFormatImport_NoIssues(t *testing.T) {
	res := &contract.ImportResult{Project: testutil.NewTestProject("Website")}
	assert.NotContains(t, stripANSI(FormatImport(res)), "skipped")
}
