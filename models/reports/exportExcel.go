package reports

import (
	"fmt"
	"net/http"
	"time"

	"github.com/buildsmart/erp_backend/config"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type invoiceExportRow struct {
	ID        string          `gorm:"column:id"`
	Vendor    string          `gorm:"column:vendor"`
	Amount    decimal.Decimal `gorm:"column:amount"`
	DueDate   time.Time       `gorm:"column:due_date"`
	Status    string          `gorm:"column:status"`
	ProjectId int             `gorm:"column:project_id"`
}

type transactionExportRow struct {
	ID          string          `gorm:"column:id"`
	Date        time.Time       `gorm:"column:date"`
	Description string          `gorm:"column:description"`
	Amount      decimal.Decimal `gorm:"column:amount"`
	Type        string          `gorm:"column:type"`
	Category    string          `gorm:"column:category"`
}

// ExportFinanceExcel streams an xlsx workbook with one sheet of invoices and
// one of transactions.
func ExportFinanceExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	db := config.GetDB()

	var invoices []*invoiceExportRow
	if err := db.WithContext(ctx).Raw("SELECT id, vendor, amount, due_date, status, project_id FROM invoices").Scan(&invoices).Error; err != nil {
		http.Error(w, "failed to load invoices", http.StatusInternalServerError)
		return
	}
	var transactions []*transactionExportRow
	if err := db.WithContext(ctx).Raw("SELECT id, date, description, amount, type, category FROM transactions").Scan(&transactions).Error; err != nil {
		http.Error(w, "failed to load transactions", http.StatusInternalServerError)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const invoiceSheet = "Invoices"
	f.SetSheetName("Sheet1", invoiceSheet)
	for col, header := range []string{"Id", "Vendor", "Amount", "DueDate", "Status", "ProjectId"} {
		cell := fmt.Sprintf("%c1", 'A'+col)
		f.SetCellValue(invoiceSheet, cell, header)
	}
	for i, inv := range invoices {
		row := i + 2
		f.SetCellValue(invoiceSheet, "A"+fmt.Sprint(row), inv.ID)
		f.SetCellValue(invoiceSheet, "B"+fmt.Sprint(row), inv.Vendor)
		f.SetCellValue(invoiceSheet, "C"+fmt.Sprint(row), inv.Amount.InexactFloat64())
		f.SetCellValue(invoiceSheet, "D"+fmt.Sprint(row), inv.DueDate.Format("2006-01-02"))
		f.SetCellValue(invoiceSheet, "E"+fmt.Sprint(row), inv.Status)
		f.SetCellValue(invoiceSheet, "F"+fmt.Sprint(row), inv.ProjectId)
	}

	const txnSheet = "Transactions"
	if _, err := f.NewSheet(txnSheet); err != nil {
		http.Error(w, "failed to build workbook", http.StatusInternalServerError)
		return
	}
	for col, header := range []string{"Id", "Date", "Description", "Amount", "Type", "Category"} {
		cell := fmt.Sprintf("%c1", 'A'+col)
		f.SetCellValue(txnSheet, cell, header)
	}
	for i, t := range transactions {
		row := i + 2
		f.SetCellValue(txnSheet, "A"+fmt.Sprint(row), t.ID)
		f.SetCellValue(txnSheet, "B"+fmt.Sprint(row), t.Date.Format("2006-01-02"))
		f.SetCellValue(txnSheet, "C"+fmt.Sprint(row), t.Description)
		f.SetCellValue(txnSheet, "D"+fmt.Sprint(row), t.Amount.InexactFloat64())
		f.SetCellValue(txnSheet, "E"+fmt.Sprint(row), t.Type)
		f.SetCellValue(txnSheet, "F"+fmt.Sprint(row), t.Category)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=finance-export.xlsx")
	if err := f.Write(w); err != nil {
		http.Error(w, "failed to write file", http.StatusInternalServerError)
	}
}
