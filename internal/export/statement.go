package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"go-books-agent/internal/finance"

	"github.com/xuri/excelize/v2"
)

// Column headers for statement exports, in display order.
var statementHeaders = []string{"التاريخ", "الوصف", "مدين", "دائن", "الرصيد"}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// StatementCSV renders the statement as UTF-8 CSV. The BOM up front is
// what makes Excel open Arabic text correctly.
func StatementCSV(st finance.Statement) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF}) // UTF-8 BOM

	w := csv.NewWriter(&buf)
	if err := w.Write(statementHeaders); err != nil {
		return nil, err
	}

	opening := []string{st.Start.Format("2006-01-02"), "رصيد افتتاحي", "", "", money(st.OpeningBalance)}
	if err := w.Write(opening); err != nil {
		return nil, err
	}
	for _, e := range st.Entries {
		row := []string{
			e.Date.Format("2006-01-02"),
			e.Description,
			money(e.Debit),
			money(e.Credit),
			money(e.Balance),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	closing := []string{st.End.Format("2006-01-02"), "الرصيد الختامي", money(st.TotalDebits), money(st.TotalCredits), money(st.ClosingBalance)}
	if err := w.Write(closing); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StatementXLSX renders the same statement as a single-sheet workbook.
func StatementXLSX(st finance.Statement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "كشف حساب"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{
		fmt.Sprintf("كشف حساب المورد: %s", st.SupplierName),
	}); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A2", &[]interface{}{
		fmt.Sprintf("الفترة من %s إلى %s", st.Start.Format("2006-01-02"), st.End.Format("2006-01-02")),
	}); err != nil {
		return nil, err
	}

	headerRow := make([]interface{}, len(statementHeaders))
	for i, h := range statementHeaders {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A4", &headerRow); err != nil {
		return nil, err
	}

	row := 5
	if err := f.SetSheetRow(sheet, cell(row), &[]interface{}{
		st.Start.Format("2006-01-02"), "رصيد افتتاحي", "", "", st.OpeningBalance,
	}); err != nil {
		return nil, err
	}
	row++
	for _, e := range st.Entries {
		if err := f.SetSheetRow(sheet, cell(row), &[]interface{}{
			e.Date.Format("2006-01-02"), e.Description, e.Debit, e.Credit, e.Balance,
		}); err != nil {
			return nil, err
		}
		row++
	}
	if err := f.SetSheetRow(sheet, cell(row), &[]interface{}{
		st.End.Format("2006-01-02"), "الرصيد الختامي", st.TotalDebits, st.TotalCredits, st.ClosingBalance,
	}); err != nil {
		return nil, err
	}

	// Right-to-left fits the Arabic headers.
	rtl := true
	if err := f.SetSheetView(sheet, -1, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cell(row int) string {
	return fmt.Sprintf("A%d", row)
}
