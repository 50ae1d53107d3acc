package loan

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// sanctionLetterPDF renders the loan sanction letter handed to the
// employee once a loan reaches APPROVED.
func sanctionLetterPDF(l Loan, employeeName string, approvedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Loan Sanction Letter")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Reference: %s", l.Reference))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", employeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Amount: %s", l.Amount.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Installments: %d", l.Installments))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Approved on: %s", approvedAt.Format("2006-01-02")))
	pdf.Ln(10)
	pdf.MultiCell(0, 6,
		"This letter confirms that the loan request referenced above has been "+
			"sanctioned. Repayment is deducted from the monthly payroll in equal "+
			"installments starting from the next pay cycle.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
