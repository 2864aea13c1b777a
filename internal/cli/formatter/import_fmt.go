package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/importer"
)

// FormatImport summarizes an imported project and any entries skipped.
func FormatImport(res *contract.ImportResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s imported %s (%s)\n", StyleGreen.Render("✔"), Bold(res.Project.Name), res.Project.DisplayID())
	fmt.Fprintf(&b, "  %d tasks · %d dependencies · %d resources · %d baselines\n",
		res.TaskCount, res.DependencyCount, res.ResourceCount, res.BaselineCount)
	if len(res.Issues) > 0 {
		fmt.Fprintf(&b, "\n%s %d entries skipped:\n", StyleYellow.Render("⚠"), len(res.Issues))
		b.WriteString(FormatIssues(res.Issues))
	}
	return b.String()
}

// FormatIssues lists validation issues one per line.
func FormatIssues(issues []importer.Issue) string {
	var b strings.Builder
	for _, is := range issues {
		fmt.Fprintf(&b, "  %s %s\n", StyleDim.Render(is.Path), is.Message)
	}
	return b.String()
}
