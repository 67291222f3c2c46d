// Package xlsx renders invoice ledgers as Excel workbooks.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// SheetName is the worksheet holding the ledger.
const SheetName = "Invoices"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LedgerHeader lists the ledger columns in order.
var LedgerHeader = []string{
	"Invoice ID",
	"Branch",
	"Room",
	"Period",
	"Electricity (kWh)",
	"Water (m3)",
	"Service Fee",
	"Total",
	"Status",
	"Issued",
}

var columnWidths = []float64{38, 20, 10, 10, 18, 12, 14, 14, 10, 20}

// WriteLedger writes one row per invoice followed by paid and unpaid totals.
func WriteLedger(w io.Writer, lines []domain.InvoiceLine) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	moneyFormat := "#,##0"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFormat})
	if err != nil {
		return fmt.Errorf("creating money style: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	if err := setRow(f, 1, toAny(LedgerHeader)); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCell(1), headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	var paid, unpaid int64
	row := 2
	for _, l := range lines {
		values := []any{
			l.ID,
			l.BranchName,
			l.RoomNumber,
			fmt.Sprintf("%02d/%d", l.Month, l.Year),
			l.Readings.UsedElectricity(),
			l.Readings.UsedWater(),
			l.ServiceFee,
			l.TotalAmount,
			string(l.Status),
			l.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := setRow(f, row, values); err != nil {
			return err
		}
		if l.Status == domain.InvoicePaid {
			paid += l.TotalAmount
		} else {
			unpaid += l.TotalAmount
		}
		row++
	}

	// Totals sit under the Total column.
	for _, total := range []struct {
		label  string
		amount int64
	}{{"Paid", paid}, {"Unpaid", unpaid}} {
		if err := setRow(f, row, []any{nil, nil, nil, nil, nil, nil, total.label, total.amount}); err != nil {
			return err
		}
		row++
	}

	if err := f.SetCellStyle(SheetName, "G2", fmt.Sprintf("H%d", row-1), moneyStyle); err != nil {
		return fmt.Errorf("styling amounts: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}
	return nil
}

func lastCell(row int) string {
	cell, _ := excelize.CoordinatesToCellName(len(LedgerHeader), row)
	return cell
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
