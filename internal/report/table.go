package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"evaluation-console/internal/app"
	"evaluation-console/internal/domain"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorBold   = "\033[1m"
)

var bandColors = map[domain.Band]string{
	domain.BandSuccess: colorGreen,
	domain.BandWarning: colorYellow,
	domain.BandPrimary: colorBlue,
	domain.BandDanger:  colorRed,
}

var tableHeaders = []string{"Rang", "Matricule", "Nom", "Score", "Points", "Réponses"}

// PrintTable writes a ranked results page as an aligned terminal table.
// Scores are colored by band when color is set.
func PrintTable(w io.Writer, page app.ResultPage, color bool) error {
	paint := func(s, c string) string {
		if !color || c == "" {
			return s
		}
		return c + s + colorReset
	}

	rows := make([][]string, 0, len(page.Rows))
	for _, row := range page.Rows {
		rows = append(rows, []string{
			fmt.Sprintf("%d", row.Rank),
			row.StudentID,
			row.DisplayName,
			fmt.Sprintf("%.1f%%", row.ScorePercent),
			fmt.Sprintf("%g/%g", row.PointsObtained, row.PointsPossible),
			fmt.Sprintf("%d/%d", row.QuestionsAnswered, row.QuestionsTotal),
		})
	}

	widths := make([]int, len(tableHeaders))
	for i, h := range tableHeaders {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, cells := range rows {
		for i, c := range cells {
			if n := utf8.RuneCountInString(c); n > widths[i] {
				widths[i] = n
			}
		}
	}

	title := page.Title
	if title == "" {
		title = page.Subject
	}
	if _, err := fmt.Fprintln(w, paint(title, colorBold+colorCyan)); err != nil {
		return err
	}

	header := make([]string, len(tableHeaders))
	for i, h := range tableHeaders {
		header[i] = pad(h, widths[i])
	}
	if _, err := fmt.Fprintln(w, paint(strings.Join(header, "  "), colorBold)); err != nil {
		return err
	}

	for i, cells := range rows {
		line := make([]string, len(cells))
		for j, c := range cells {
			line[j] = pad(c, widths[j])
		}
		line[3] = paint(line[3], bandColors[page.Rows[i].Band])
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(line, "  "), " ")); err != nil {
			return err
		}
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, paint("Aucun résultat", colorYellow))
		return err
	}
	s := page.Summary
	_, err := fmt.Fprintf(w, "%d participants, moyenne %.1f%%, %d reçus, meilleur score %.1f%%\n",
		s.Participants, s.Average, s.Passed, s.Best)
	return err
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
