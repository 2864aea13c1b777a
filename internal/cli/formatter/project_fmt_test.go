package formatter

import (
	"testing"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFormatProjectList_UsesShortIDWhenPresent(t *testing.T) {
	p := testutil.NewTestProject("Website", testutil.WithShortID("WEB01"))
	p.ID = "12345678-aaaa-bbbb-cccc-1234567890ab"

	out := stripANSI(FormatProjectList([]*domain.Project{p}))
	assert.Contains(t, out, "WEB01")
	assert.NotContains(t, out, "12345678")
	assert.Contains(t, out, "Mon Mar 3 2025")
}

func TestFormatProjectList_FallsBackToUUIDPrefix(t *testing.T) {
	p := testutil.NewTestProject("Website")
	p.ShortID = ""
	p.ID = "abcdef12-3456-7890-abcd-ef1234567890"

	out := stripANSI(FormatProjectList([]*domain.Project{p}))
	assert.Contains(t, out, "abcdef12")
	assert.NotContains(t, out, "3456-7890")
}

func TestFormatProjectList_Empty(t *testing.T) {
	assert.Contains(t, FormatProjectList(nil), "No projects yet")
}

func TestFormatProjectDetail(t *testing.T) {
	target := at(28, 0)
	p := testutil.NewTestProject("Website",
		testutil.WithShortID("WEB01"),
		testutil.WithTargetDate(target),
		testutil.WithCurrency("EUR"),
		testutil.WithHolidays(at(5, 0)))

	out := stripANSI(FormatProjectDetail(p, at(3, 8)))
	assert.Contains(t, out, "WEB01")
	assert.Contains(t, out, "Fri Mar 28 2025")
	assert.Contains(t, out, "In 3w")
	assert.Contains(t, out, "Mon Tue Wed Thu Fri")
	assert.Contains(t, out, "08:00-16:00 (8h)")
	assert.Contains(t, out, "2025-03-05")
	assert.Contains(t, out, "EUR")
}
