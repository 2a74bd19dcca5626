package registry

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is used when the caller does not name one.
const DefaultSheet = "Forms"

var workbookHeaders = []string{"Form Code", "Expected Version", "Effective Date"}

// ReadWorkbook loads registry rows from an XLSX sheet whose first row is
// the header "Form Code | Expected Version | Effective Date".
func ReadWorkbook(r io.Reader, sheet string) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return readRows(f, sheet)
}

func readRows(f *excelize.File, sheet string) ([]Row, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	var out []Row
	for _, cells := range rows[1:] {
		code := cell(cells, 0)
		if code == "" {
			continue
		}
		row := Row{FormCode: code, ExpectedVersion: cell(cells, 1)}
		if d := cell(cells, 2); d != "" {
			row.EffectiveDate = &d
		}
		out = append(out, row)
	}
	return out, nil
}

// LoadWorkbook reads a registry from an XLSX file on disk.
func LoadWorkbook(path, sheet string) (Registry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := readRows(f, sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return FromRows(rows)
}

// WriteWorkbook renders rows in the layout ReadWorkbook expects.
func WriteWorkbook(w io.Writer, sheet string, rows []Row) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	for i, h := range workbookHeaders {
		c, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, c, h)
	}
	for i, r := range rows {
		values := []string{r.FormCode, r.ExpectedVersion, ""}
		if r.EffectiveDate != nil {
			values[2] = *r.EffectiveDate
		}
		for j, v := range values {
			c, _ := excelize.CoordinatesToCellName(j+1, i+2)
			// explicit string cells so "20-18" is never read back as a date
			_ = f.SetCellStr(sheet, c, v)
		}
	}
	_, err := f.WriteTo(w)
	return err
}

func checkHeader(cells []string) error {
	for i, want := range workbookHeaders[:2] {
		if !strings.EqualFold(cell(cells, i), want) {
			return fmt.Errorf("header column %d is %q, want %q", i+1, cell(cells, i), want)
		}
	}
	return nil
}

func cell(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}
