package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(14)

	goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// Section collects label/value rows and prints them boxed under a title.
type Section struct {
	title string
	rows  []string
}

func NewSection(title string) *Section {
	return &Section{title: title}
}

func (s *Section) Row(label string, format string, args ...any) *Section {
	s.rows = append(s.rows, labelStyle.Render(label)+fmt.Sprintf(format, args...))
	return s
}

func (s *Section) Line(format string, args ...any) *Section {
	s.rows = append(s.rows, fmt.Sprintf(format, args...))
	return s
}

func (s *Section) Empty() bool { return len(s.rows) == 0 }

func (s *Section) Render(w io.Writer) {
	body := titleStyle.Render(s.title)
	if len(s.rows) > 0 {
		body += "\n" + strings.Join(s.rows, "\n")
	}
	fmt.Fprintln(w, boxStyle.Render(body))
}

func Good(s string) string { return goodStyle.Render(s) }
func Warn(s string) string { return warnStyle.Render(s) }
func Bad(s string) string  { return badStyle.Render(s) }

// Bar draws a fixed-width health bar.
func Bar(current, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := min(max(current, 0), total) * width / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %d/%d", bar, current, total)
}
