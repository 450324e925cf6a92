// Package export writes ledger transactions to spreadsheets.
package export

import (
	"bytes"
	"fmt"

	"keubot/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Transaksi"

// Transactions renders txs as an XLSX workbook with a summary row.
func Transactions(title string, txs []models.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	f.SetCellValue(sheetName, "A1", title)
	headers := []string{"ID", "Tanggal", "Jenis", "Kategori", "Metode", "Jumlah", "Keterangan"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheetName, cell, h)
	}

	var income, expense int64
	for idx, t := range txs {
		row := idx + 3
		jenis := "Pengeluaran"
		if t.Type == models.TypeIncome {
			jenis = "Pemasukan"
			income += t.Amount
		} else {
			expense += t.Amount
		}
		metode := "Tunai"
		if t.PaymentMethod == models.PaymentBank {
			metode = "Bank"
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), t.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), t.Date)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), jenis)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), t.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), metode)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), t.Signed())
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), t.Description)
	}

	sum := len(txs) + 4
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", sum), "Pemasukan")
	f.SetCellValue(sheetName, fmt.Sprintf("F%d", sum), income)
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", sum+1), "Pengeluaran")
	f.SetCellValue(sheetName, fmt.Sprintf("F%d", sum+1), -expense)
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", sum+2), "Selisih")
	f.SetCellValue(sheetName, fmt.Sprintf("F%d", sum+2), income-expense)

	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "E", 14)
	f.SetColWidth(sheetName, "F", "F", 14)
	f.SetColWidth(sheetName, "G", "G", 40)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
