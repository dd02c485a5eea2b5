// Package report renders the fixed-layout student table as PDF.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/yigit/escola/internal/pkg/helpers"
)

// StudentRow is one line of the student table
type StudentRow struct {
	EnrollmentCode string
	Name           string
	Course         string
	Age            *int
	Sex            string
}

type column struct {
	title string
	width float64
	align string
}

var studentColumns = []column{
	{title: "Matrícula", width: 30, align: "L"},
	{title: "Nome", width: 70, align: "L"},
	{title: "Curso", width: 50, align: "L"},
	{title: "Idade", width: 20, align: "C"},
	{title: "Sexo", width: 20, align: "C"},
}

const (
	nameMaxChars   = 30
	courseMaxChars = 20
)

// Truncate cuts s to at most n characters
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// WriteStudentsPDF writes the student report to w
func WriteStudentsPDF(w io.Writer, rows []StudentRow, generatedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	// core fonts are cp1252; accented names must be translated
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 10, tr("Relatório de Alunos"), "", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(0, 5, tr("Gerado em: "+generatedAt.Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Página %d", pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Arial", "B", 12)
	for _, col := range studentColumns {
		pdf.CellFormat(col.width, 10, tr(col.title), "1", 0, "", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		age := ""
		if row.Age != nil {
			age = strconv.Itoa(*row.Age)
		}
		cells := []string{
			row.EnrollmentCode,
			Truncate(row.Name, nameMaxChars),
			Truncate(row.Course, courseMaxChars),
			age,
			row.Sex,
		}
		for i, col := range studentColumns {
			pdf.CellFormat(col.width, 8, tr(cells[i]), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(5)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 10, fmt.Sprintf("Total de alunos: %d", len(rows)), "", 1, "", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("building students pdf: %w", err)
	}
	return pdf.Output(w)
}

// StudentsFilename is the download name for a report generated at t
func StudentsFilename(t time.Time) string {
	return "relatorio_alunos_" + t.Format(helpers.FileStampLayout) + ".pdf"
}
