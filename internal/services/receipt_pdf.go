package services

import (
	"bytes"
	"fmt"

	"vetly/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// renderShiftReceipt produces the closing receipt for a reconciled shift.
func renderShiftReceipt(shift *models.CashShift) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Cash Shift Closing Receipt")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Shift: %s", shift.ID))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Opened: %s", shift.OpenedAt.Format("2006-01-02 15:04")))
	pdf.Ln(6)
	if shift.ClosedAt != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Closed: %s", shift.ClosedAt.Format("2006-01-02 15:04")))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	line := func(label string, amount float64) {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(90, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", amount), "", 1, "R", false, 0, "")
	}

	line("Opening balance", shift.OpeningBalance)
	line("Cash sales", shift.CashSales)
	line("Card sales", shift.CardSales)
	line("Withdrawals", -shift.Withdrawals)

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	if shift.ExpectedBalance != nil {
		line("Expected balance", *shift.ExpectedBalance)
	}
	if shift.CountedBalance != nil {
		line("Counted balance", *shift.CountedBalance)
	}
	if shift.Difference != nil && shift.Reconciliation != nil {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(90, 8, fmt.Sprintf("Result: %s", *shift.Reconciliation), "T", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", *shift.Difference), "T", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
