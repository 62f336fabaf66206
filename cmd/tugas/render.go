package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/tugas/pkg/scraper"
)

var (
	salmonPink = lipgloss.Color("#FFB3BA")
	mintGreen  = lipgloss.Color("#A8E6CF")
	mutedGray  = lipgloss.Color("#6B7280")
)

var (
	userStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Bold(true)

	headingStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true).
			MarginTop(1)

	taskStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	detailStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			PaddingLeft(4)
)

// renderText writes a human-readable listing of result, one block per bucket.
func renderText(w io.Writer, result *scraper.FetchResult) error {
	var b strings.Builder

	b.WriteString(userStyle.Render("Logged in as " + result.User))
	b.WriteString("\n")

	keys := result.Tasks.Keys()
	if len(keys) == 0 {
		b.WriteString(detailStyle.Render("No pending tasks."))
		b.WriteString("\n")
	}

	for _, heading := range keys {
		title := heading
		if title == "" {
			title = "(no date)"
		}
		b.WriteString(headingStyle.Render(title))
		b.WriteString("\n")

		for _, task := range result.Tasks.Tasks(heading) {
			b.WriteString(taskStyle.Render(fmt.Sprintf("- %s (%s)", task.Name, task.Date)))
			b.WriteString("\n")
			if task.Course != "" {
				b.WriteString(detailStyle.Render(task.Course))
				b.WriteString("\n")
			}
			if task.URL != "" {
				b.WriteString(detailStyle.Render(task.URL))
				b.WriteString("\n")
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
