package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/noah-isme/rgb-survey-api/internal/dto"
	"github.com/noah-isme/rgb-survey-api/internal/models"
)

type printStyles struct {
	header lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	fail   lipgloss.Style
	dim    lipgloss.Style
}

func newPrintStyles() printStyles {
	return printStyles{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		fail:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func printRun(w io.Writer, st printStyles, period string, res runResult) {
	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("%s  %s", res.Input, period)))

	if res.Responses != nil {
		graded := 0
		for _, n := range res.Responses.GradeCounts() {
			graded += n
		}
		fmt.Fprintf(w, "  rows %d  graded %d  questions %d\n", len(res.Responses.Rows), graded, len(res.Responses.Questions))
		if missing := res.Responses.Missing; len(missing) > 0 {
			fmt.Fprintln(w, st.warn.Render(fmt.Sprintf("  ! %d configured questions missing from the export", len(missing))))
		}
	}

	if res.Err != nil {
		fmt.Fprintln(w, st.fail.Render("  ✗ "+res.Err.Error()))
		fmt.Fprintln(w)
		return
	}

	tpl := res.Assembly.Template
	switch {
	case tpl.Skipped:
		fmt.Fprintln(w, st.warn.Render("  ! template left unfilled: export has no class/number column"))
	case !tpl.RoundMatched:
		fmt.Fprintln(w, st.warn.Render(fmt.Sprintf("  ! round %q not recognised, default template columns used", tpl.Round)))
	}
	if tpl.SheetFallback {
		fmt.Fprintln(w, st.warn.Render(fmt.Sprintf("  ! template sheet not found, filled %q instead", tpl.Sheet)))
	}
	if !tpl.Skipped {
		fmt.Fprintln(w, st.dim.Render(fmt.Sprintf("  template %s: %d questions, %d competencies, %d unmatched rows",
			tpl.Sheet, tpl.MatchedQuestions, tpl.MatchedCompetencies, tpl.UnmatchedRows)))
	}

	width := 0
	for _, f := range res.Files {
		if n := len(f.Kind); n > width {
			width = n
		}
	}
	for _, f := range res.Files {
		fmt.Fprintf(w, "  %s %-*s %s %s\n", st.ok.Render("✓"), width, f.Kind, f.Name, st.dim.Render(formatSize(f.Size)))
	}
	if res.Assembly.PDFSkipped {
		fmt.Fprintln(w, st.dim.Render(fmt.Sprintf("  - %s skipped: no font configured", models.ArtifactCompetencyPDF)))
	}
	fmt.Fprintln(w, st.dim.Render("  → "+res.Dir))
	fmt.Fprintln(w)
}

func printPeriods(w io.Writer, st printStyles, cfg *models.SurveyConfig) {
	fmt.Fprintln(w, st.header.Render("Survey periods ("+cfg.CurrentPeriod+")"))
	for _, p := range cfg.Periods {
		marker := " "
		if p == cfg.DefaultPeriod {
			marker = st.ok.Render("*")
		}
		fmt.Fprintf(w, "  %s %s\n", marker, p)
	}
}

func printInspect(w io.Writer, st printStyles, s dto.SurveySessionResponse) {
	fmt.Fprintln(w, st.header.Render(s.Filename))
	fmt.Fprintf(w, "  rows %d  questions %d\n", s.Rows, s.Questions)
	if !s.HasIdentifier {
		fmt.Fprintln(w, st.warn.Render("  ! no class/number column, every row is ungraded"))
	}
	for _, g := range s.Grades {
		fmt.Fprintf(w, "  %-4s %s %d\n", g.Label, renderBar(g.Count, s.Rows, "12"), g.Count)
	}
	if s.UngradedRows > 0 {
		fmt.Fprintf(w, "  %-4s %s %d\n", "-", renderBar(s.UngradedRows, s.Rows, "8"), s.UngradedRows)
	}
	if len(s.MissingQuestions) > 0 {
		fmt.Fprintln(w, st.warn.Render(fmt.Sprintf("  ! %d questions missing:", len(s.MissingQuestions))))
		for _, q := range s.MissingQuestions {
			fmt.Fprintln(w, st.dim.Render("    "+q))
		}
	}
}

func renderBar(count, total int, color string) string {
	const barWidth = 20
	if total == 0 {
		return strings.Repeat(" ", barWidth)
	}
	filled := count * barWidth / total
	if count > 0 && filled == 0 {
		filled = 1
	}
	fill := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	empty := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	return fill.Render(strings.Repeat("█", filled)) + empty.Render(strings.Repeat("░", barWidth-filled))
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
