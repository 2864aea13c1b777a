package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const (
	dateLayout    = "Mon Jan 2 2006"
	instantLayout = "Mon Jan 2 2006 15:04"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// RelativeDateFrom returns a human-friendly relative date string from a reference time.
func RelativeDateFrom(t time.Time, now time.Time) string {
	diff := t.Sub(now)
	days := int(math.Round(diff.Hours() / 24))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0 && days < 60:
		return fmt.Sprintf("In %dw", days/7)
	case days > 0:
		return fmt.Sprintf("In %dmo", days/30)
	case days < 0 && days > -14:
		return fmt.Sprintf("%dd ago", -days)
	case days < 0 && days > -60:
		return fmt.Sprintf("%dw ago", -days/7)
	default:
		return fmt.Sprintf("%dmo ago", -days/30)
	}
}

// HumanDate returns a human-friendly absolute date string.
func HumanDate(t time.Time) string {
	now := time.Now()
	y1, m1, d1 := now.Date()
	y2, m2, d2 := t.Date()

	if y1 == y2 && m1 == m2 && d1 == d2 {
		return "Today"
	}
	yesterday := now.AddDate(0, 0, -1)
	y3, m3, d3 := yesterday.Date()
	if y2 == y3 && m2 == m3 && d2 == d3 {
		return "Yesterday"
	}
	return t.Format("Jan 2, 2006")
}

// HumanTimestamp returns a human-friendly relative timestamp string.
func HumanTimestamp(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < 0:
		return HumanDate(t)
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return HumanDate(t)
	}
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "--"
	}
	return t.Format(dateLayout)
}

// FormatInstant renders a date and wall-clock time.
func FormatInstant(t time.Time) string {
	if t.IsZero() {
		return "--"
	}
	return t.Format(instantLayout)
}

// FormatDuration renders a task length in the project's unit ("2.5d", "6h").
func FormatDuration(v float64, unit domain.DurationUnit) string {
	return trimFloat(v) + unit.Suffix()
}

// FormatSigned renders a variance with an explicit sign ("+2d", "-0.5d", "0d").
func FormatSigned(v float64, unit domain.DurationUnit) string {
	if v > 0 {
		return "+" + FormatDuration(v, unit)
	}
	return FormatDuration(v, unit)
}

// FormatMoney renders an amount with two decimals and the currency code.
func FormatMoney(v float64, currency string) string {
	s := fmt.Sprintf("%.2f", v)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// FormatPercent renders a whole-number percentage.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

// StatePill returns a colored indicator for a task's progress state.
func StatePill(s domain.TaskState) string {
	switch s {
	case domain.TaskCompleted:
		return StyleDim.Render("✔ done")
	case domain.TaskInProgress:
		return StyleGreen.Render("● active")
	case domain.TaskOverdue:
		return StyleRed.Render("! overdue")
	case domain.TaskUpcoming:
		return StyleBlue.Render("○ upcoming")
	default:
		return StyleDim.Render(string(s))
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

func trimFloat(v float64) string {
	if math.Abs(v) < 0.005 {
		return "0"
	}
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
