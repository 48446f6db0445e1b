package report

import (
	"io"

	"evaluation-console/internal/app"
	"evaluation-console/internal/domain"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Résultats"

var bandFills = map[domain.Band]string{
	domain.BandSuccess: "C6EFCE",
	domain.BandWarning: "FFEB9C",
	domain.BandPrimary: "BDD7EE",
	domain.BandDanger:  "FFC7CE",
}

// WriteXLSX exports a ranked results page as a workbook with one sheet. The
// score cell of every row is filled with its band color.
func WriteXLSX(w io.Writer, page app.ResultPage) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	bandStyles := make(map[domain.Band]int, len(bandFills))
	for band, fill := range bandFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
		})
		if err != nil {
			return err
		}
		bandStyles[band] = id
	}

	headers := []string{"Rang", "Matricule", "Nom", "Score (%)", "Points obtenus", "Points total", "Réponses", "Questions", "Bonnes réponses"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range page.Rows {
		values := []interface{}{
			row.Rank,
			row.StudentID,
			row.DisplayName,
			row.ScorePercent,
			row.PointsObtained,
			row.PointsPossible,
			row.QuestionsAnswered,
			row.QuestionsTotal,
			row.CorrectCount,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
		if style, ok := bandStyles[row.Band]; ok {
			cell, _ := excelize.CoordinatesToCellName(4, i+2)
			if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(sheetName, "C", "C", 28); err != nil {
		return err
	}

	return f.Write(w)
}
