package usecase

import (
	"fmt"
	"io"
	"time"

	"kursus-backend/internal/domain"

	"github.com/go-pdf/fpdf"
)

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

func formatTanggal(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), indonesianMonths[t.Month()-1], t.Year())
}

// renderCertificate writes a one-page landscape A4 certificate.
func renderCertificate(w io.Writer, data *domain.EligibilityData) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Sertifikat "+data.CourseTitle, true)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	pdf.SetDrawColor(30, 64, 120)
	pdf.SetLineWidth(2)
	pdf.Rect(10, 10, pageW-20, pageH-20, "D")
	pdf.SetLineWidth(0.5)
	pdf.Rect(14, 14, pageW-28, pageH-28, "D")

	contentW := pageW - 40
	pdf.SetXY(20, 40)

	pdf.SetFont("Helvetica", "B", 32)
	pdf.SetTextColor(30, 64, 120)
	pdf.CellFormat(contentW, 16, "SERTIFIKAT", "", 1, "C", false, 0, "")

	pdf.SetX(20)
	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(contentW, 10, "Diberikan kepada", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetX(20)
	pdf.SetFont("Helvetica", "B", 26)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(contentW, 14, tr(data.LearnerName), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetX(20)
	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(contentW, 10, "atas keberhasilannya menyelesaikan kursus", "", 1, "C", false, 0, "")

	pdf.SetX(20)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(30, 64, 120)
	pdf.MultiCell(contentW, 10, tr(data.CourseTitle), "", "C", false)
	pdf.Ln(10)

	if data.ApprovedAt != nil {
		pdf.SetX(20)
		pdf.SetFont("Helvetica", "", 12)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(contentW, 8, "Disetujui pada "+formatTanggal(*data.ApprovedAt), "", 1, "C", false, 0, "")
	}
	if data.PostTestScore != nil {
		pdf.SetX(20)
		pdf.CellFormat(contentW, 8, fmt.Sprintf("Nilai post-test: %d", *data.PostTestScore), "", 1, "C", false, 0, "")
	}

	return pdf.Output(w)
}
