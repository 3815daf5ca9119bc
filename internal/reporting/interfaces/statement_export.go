package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"treasury-cloud/internal/reporting/application"
)

// BuildStatementPDF renders a minimal PDF for a treasury statement.
func BuildStatementPDF(stmt *application.Statement) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Treasury Statement")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Tenant: %s", stmt.TenantID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s", stmt.From.Format("2006-01-02"), stmt.To.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", stmt.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Submitted: %d", stmt.SubmittedCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Approved: %d", stmt.ApprovedCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Executed: %d", stmt.ExecutedCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Rejected: %d", stmt.RejectedCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Cancelled: %d", stmt.CancelledCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Executed Amount: %s", stmt.TotalExecuted.StringFixed(2)))
	pdf.Ln(8)

	// Executed transfers table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 6, "Transfer", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 6, "Destination", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, entry := range stmt.Executed {
		pdf.CellFormat(30, 6, entry.OccurredAt.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(55, 6, entry.TransferID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(55, 6, entry.Destination, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, entry.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Day", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Executed", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Running Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, day := range stmt.Daily {
		pdf.CellFormat(30, 6, day.Day, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", day.ExecutedCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, day.ExecutedAmount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, day.RunningTotal.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildStatementXLSX renders a minimal XLSX for a treasury statement.
func BuildStatementXLSX(stmt *application.Statement) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	executedSheet := "executed"
	dailySheet := "daily"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(executedSheet)
	f.NewSheet(dailySheet)

	_ = f.SetCellValue(summarySheet, "A1", "Treasury Statement")
	_ = f.SetCellValue(summarySheet, "A3", "Tenant")
	_ = f.SetCellValue(summarySheet, "B3", stmt.TenantID)
	_ = f.SetCellValue(summarySheet, "A4", "From")
	_ = f.SetCellValue(summarySheet, "B4", stmt.From.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A5", "To")
	_ = f.SetCellValue(summarySheet, "B5", stmt.To.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A6", "Submitted")
	_ = f.SetCellValue(summarySheet, "B6", stmt.SubmittedCount)
	_ = f.SetCellValue(summarySheet, "A7", "Approved")
	_ = f.SetCellValue(summarySheet, "B7", stmt.ApprovedCount)
	_ = f.SetCellValue(summarySheet, "A8", "Executed")
	_ = f.SetCellValue(summarySheet, "B8", stmt.ExecutedCount)
	_ = f.SetCellValue(summarySheet, "A9", "Rejected")
	_ = f.SetCellValue(summarySheet, "B9", stmt.RejectedCount)
	_ = f.SetCellValue(summarySheet, "A10", "Cancelled")
	_ = f.SetCellValue(summarySheet, "B10", stmt.CancelledCount)
	_ = f.SetCellValue(summarySheet, "A11", "Total Executed Amount")
	_ = f.SetCellValue(summarySheet, "B11", stmt.TotalExecuted.InexactFloat64())

	_ = f.SetCellValue(executedSheet, "A1", "Date")
	_ = f.SetCellValue(executedSheet, "B1", "Transfer")
	_ = f.SetCellValue(executedSheet, "C1", "Destination")
	_ = f.SetCellValue(executedSheet, "D1", "Amount")
	_ = f.SetCellValue(executedSheet, "E1", "Reason")
	for i, entry := range stmt.Executed {
		row := i + 2
		_ = f.SetCellValue(executedSheet, fmt.Sprintf("A%d", row), entry.OccurredAt.Format("2006-01-02"))
		_ = f.SetCellValue(executedSheet, fmt.Sprintf("B%d", row), entry.TransferID)
		_ = f.SetCellValue(executedSheet, fmt.Sprintf("C%d", row), entry.Destination)
		_ = f.SetCellValue(executedSheet, fmt.Sprintf("D%d", row), entry.Amount.InexactFloat64())
		_ = f.SetCellValue(executedSheet, fmt.Sprintf("E%d", row), entry.Reason)
	}

	_ = f.SetCellValue(dailySheet, "A1", "Day")
	_ = f.SetCellValue(dailySheet, "B1", "Executed")
	_ = f.SetCellValue(dailySheet, "C1", "Amount")
	_ = f.SetCellValue(dailySheet, "D1", "Running Total")
	for i, day := range stmt.Daily {
		row := i + 2
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("A%d", row), day.Day)
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("B%d", row), day.ExecutedCount)
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("C%d", row), day.ExecutedAmount.InexactFloat64())
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("D%d", row), day.RunningTotal.InexactFloat64())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
