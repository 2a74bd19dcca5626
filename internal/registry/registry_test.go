package registry

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func strPtr(s string) *string { return &s }

func TestFromRows(t *testing.T) {
	reg, err := FromRows([]Row{
		{FormCode: " TREC-20 ", ExpectedVersion: "20-18", EffectiveDate: strPtr("01/03/2025")},
		{FormCode: "TREC-30", ExpectedVersion: "30-17", EffectiveDate: strPtr("  ")},
	})
	require.NoError(t, err)

	e, ok := reg.Lookup("TREC-20")
	require.True(t, ok)
	assert.Equal(t, "20-18", e.ExpectedVersion)
	require.NotNil(t, e.EffectiveDate)
	assert.Equal(t, "01/03/2025", *e.EffectiveDate)

	e, ok = reg.Lookup("TREC-30")
	require.True(t, ok)
	assert.Nil(t, e.EffectiveDate, "blank effective date is absent")

	_, ok = reg.Lookup("FORM-X")
	assert.False(t, ok)
}

func TestFromRowsRejects(t *testing.T) {
	_, err := FromRows([]Row{{FormCode: "", ExpectedVersion: "1"}})
	assert.ErrorContains(t, err, "form code is blank")

	_, err = FromRows([]Row{{FormCode: "A", ExpectedVersion: " "}})
	assert.ErrorContains(t, err, "expected version is blank")

	_, err = FromRows([]Row{{FormCode: "A", ExpectedVersion: "1"}, {FormCode: "A", ExpectedVersion: "2"}})
	assert.ErrorContains(t, err, "duplicate")
}

func TestNilRegistryLookup(t *testing.T) {
	var reg Registry
	_, ok := reg.Lookup("TREC-20")
	assert.False(t, ok)
}

func TestWorkbookRoundTrip(t *testing.T) {
	rows := []Row{
		{FormCode: "TREC-20", ExpectedVersion: "20-18", EffectiveDate: strPtr("01/03/2025")},
		{FormCode: "TREC-9", ExpectedVersion: "9-16"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, "", rows))

	got, err := ReadWorkbook(bytes.NewReader(buf.Bytes()), "")
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	reg, err := FromRows(got)
	require.NoError(t, err)
	assert.Equal(t, rows, reg.Rows())
}

func TestLoadWorkbookFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Registry"))
	_ = f.SetSheetRow("Registry", "A1", &[]any{"Form Code", "Expected Version", "Effective Date"})
	_ = f.SetSheetRow("Registry", "A2", &[]any{"TREC-20", "20-18", ""})
	_ = f.SetSheetRow("Registry", "A3", &[]any{"", "ignored", ""})
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	reg, err := LoadWorkbook(path, "Registry")
	require.NoError(t, err)
	require.Len(t, reg, 1)
	assert.Equal(t, "20-18", reg["TREC-20"].ExpectedVersion)
	assert.Nil(t, reg["TREC-20"].EffectiveDate)
}

func TestReadWorkbookBadHeader(t *testing.T) {
	f := excelize.NewFile()
	_ = f.SetSheetRow("Sheet1", "A1", &[]any{"Code", "Version"})
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = ReadWorkbook(buf, "Sheet1")
	assert.ErrorContains(t, err, "header column 1")
}
