package importer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"asset-angel-api/internal/models"
	"asset-angel-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	seed, err := store.DefaultSeed()
	require.NoError(t, err)
	st, err := store.NewFromSeed(seed)
	require.NoError(t, err)
	return st
}

// workbook builds an in-memory xlsx with one sheet; the first row is the header
func workbook(t *testing.T, sheetName string, rows ...[]string) *bytes.Buffer {
	t.Helper()
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	require.NoError(t, err)
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, v := range cells {
			row.AddCell().SetString(v)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return &buf
}

var aliasHeader = []string{"Asset Name", "Type", "S/N", "Condition", "Purchased", "Price", "Warranty", "Remarks"}

func TestImportAssets(t *testing.T) {
	st := seededStore(t)
	before := len(st.ListAssets(store.AssetFilter{}))

	buf := workbook(t, "Assets",
		aliasHeader,
		[]string{"Studio Display", "Monitor", "APL-SD-100", "", "2025-01-15", "$1,599.00", "2027-01-15", "Design team"},
		[]string{"LG UltraWide 34\" (refurb)", "monitor", "LG-UW-003", "fair", "2023-04-02", "399", "", ""},
		[]string{"", "", "", "", "", "", "", ""},
		[]string{"Mystery box", "toaster", "TOAST-1", "good", "2024-01-01", "10", "", ""},
		[]string{"No serial", "laptop", "", "good", "2024-01-01", "10", "", ""},
	)

	summary, err := ImportAssets(context.Background(), st, buf, ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Errors)
	require.Len(t, summary.Sheets, 1)
	samples := summary.Sheets[0].Samples
	require.Len(t, samples, 2)
	assert.Equal(t, RowError{Sheet: "Assets", Row: 5, Message: samples[0].Message}, samples[0])
	assert.Contains(t, samples[0].Message, "Category")
	assert.Equal(t, 6, samples[1].Row)
	assert.Contains(t, samples[1].Message, "serial_number is required")

	assert.Len(t, st.ListAssets(store.AssetFilter{}), before+1)

	created, ok := st.FindAssetBySerial("APL-SD-100")
	require.True(t, ok)
	assert.Equal(t, models.CategoryMonitor, created.Category)
	assert.Equal(t, models.ConditionGood, created.Condition, "mapping default")
	assert.Equal(t, models.StatusAvailable, created.Status)
	assert.Equal(t, 1599.0, created.PurchasePrice)
	require.NotNil(t, created.WarrantyExpiry)
	assert.Equal(t, "2027-01-15", created.WarrantyExpiry.String())
	require.NotNil(t, created.Notes)
	assert.Equal(t, "Design team", *created.Notes)

	updated, ok := st.FindAssetBySerial("lg-uw-003")
	require.True(t, ok)
	assert.Equal(t, `LG UltraWide 34" (refurb)`, updated.Name)
	assert.Equal(t, models.ConditionFair, updated.Condition)
	assert.Equal(t, "2023-04-02", updated.PurchaseDate.String())
}

func TestImportAssetsDryRun(t *testing.T) {
	st := seededStore(t)
	before := st.ListAssets(store.AssetFilter{})

	buf := workbook(t, "assets",
		aliasHeader,
		[]string{"Studio Display", "monitor", "APL-SD-100", "good", "2025-01-15", "1599", "", ""},
		[]string{"LG UltraWide", "monitor", "LG-UW-003", "poor", "2023-04-02", "399", "", ""},
	)

	summary, err := ImportAssets(context.Background(), st, buf, ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, before, st.ListAssets(store.AssetFilter{}))
}

func TestImportAssetsDryRunMatchesRealRun(t *testing.T) {
	rows := [][]string{
		{"Name", "Category", "Serial Number", "Status", "Purchase Date", "Purchase Price"},
		{"Studio Display", "monitor", "APL-SD-200", "", "2025-01-15", "1599"},
		{"Refurb monitor", "monitor", "REFURB-1", "", "2025-01-15", "-10"},
		{"LG UltraWide", "monitor", "LG-UW-003", "assigned", "2023-04-02", "399"},
		{"Studio Display", "monitor", "APL-SD-200", "", "2025-01-15", "1499"},
	}

	dry, err := ImportAssets(context.Background(), seededStore(t), workbook(t, "Assets", rows...), ImportOptions{DryRun: true})
	require.NoError(t, err)
	applied, err := ImportAssets(context.Background(), seededStore(t), workbook(t, "Assets", rows...), ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, dry.Inserted)
	assert.Equal(t, 1, dry.Updated)
	assert.Equal(t, 2, dry.Errors)
	assert.Equal(t, applied.Inserted, dry.Inserted)
	assert.Equal(t, applied.Updated, dry.Updated)
	assert.Equal(t, applied.Errors, dry.Errors)

	require.Len(t, dry.Sheets, 1)
	rowsWithErrors := []int{}
	for _, e := range dry.Sheets[0].Samples {
		rowsWithErrors = append(rowsWithErrors, e.Row)
	}
	assert.Equal(t, []int{3, 4}, rowsWithErrors)
}

func TestImportAssetsCreateNeverAssigns(t *testing.T) {
	st := seededStore(t)
	buf := workbook(t, "Assets",
		[]string{"Name", "Category", "Serial Number", "Status", "Purchase Date"},
		[]string{"Spare laptop", "laptop", "SPARE-1", "assigned", "2024-02-02"},
	)

	summary, err := ImportAssets(context.Background(), st, buf, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)

	a, ok := st.FindAssetBySerial("SPARE-1")
	require.True(t, ok)
	assert.Equal(t, models.StatusAvailable, a.Status)
}

func TestImportAssetsExcelDates(t *testing.T) {
	st := seededStore(t)

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Assets")
	require.NoError(t, err)
	header := sheet.AddRow()
	for _, h := range []string{"Name", "Category", "Serial Number", "Purchase Date"} {
		header.AddCell().SetString(h)
	}
	row := sheet.AddRow()
	row.AddCell().SetString("Dock")
	row.AddCell().SetString("other")
	row.AddCell().SetString("DOCK-1")
	row.AddCell().SetFloat(45413) // 2024-05-01
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))

	summary, err := ImportAssets(context.Background(), st, &buf, ImportOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Inserted, "%+v", summary)

	a, ok := st.FindAssetBySerial("DOCK-1")
	require.True(t, ok)
	assert.Equal(t, "2024-05-01", a.PurchaseDate.String())
}

func TestImportAssetsStopsAfterMaxErrors(t *testing.T) {
	st := seededStore(t)
	rows := [][]string{{"Name", "Category", "Serial Number", "Purchase Date"}}
	for i := 0; i < 5; i++ {
		rows = append(rows, []string{"Bad", "laptop", "BAD-" + string(rune('A'+i)), "not a date"})
	}
	buf := workbook(t, "Assets", rows...)

	summary, err := ImportAssets(context.Background(), st, buf, ImportOptions{MaxErrors: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyErrors)
	assert.Equal(t, 2, summary.Errors)
}

func TestImportAssetsRejectsBadInput(t *testing.T) {
	st := seededStore(t)

	t.Run("not a workbook", func(t *testing.T) {
		_, err := ImportAssets(context.Background(), st, strings.NewReader("name,serial\n"), ImportOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open Excel file")
	})

	t.Run("no mapped sheet", func(t *testing.T) {
		buf := workbook(t, "Inventory", []string{"Name"})
		_, err := ImportAssets(context.Background(), st, buf, ImportOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Assets")
	})

	t.Run("missing required column", func(t *testing.T) {
		buf := workbook(t, "Assets",
			[]string{"Name", "Serial Number"},
			[]string{"Thing", "THING-1"},
		)
		summary, err := ImportAssets(context.Background(), st, buf, ImportOptions{})
		require.NoError(t, err)
		assert.Equal(t, 0, summary.Inserted)
		assert.GreaterOrEqual(t, summary.Errors, 2)
		assert.Equal(t, 1, summary.Sheets[0].Samples[0].Row)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		buf := workbook(t, "Assets", aliasHeader, []string{"X", "laptop", "X-1", "good", "2024-01-01", "1", "", ""})
		_, err := ImportAssets(ctx, st, buf, ImportOptions{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestExportImportRoundTrip(t *testing.T) {
	st := seededStore(t)
	assets := st.ListAssets(store.AssetFilter{})

	var buf bytes.Buffer
	require.NoError(t, ExportAssets(&buf, assets))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	assert.Equal(t, ExportSheet, file.Sheets[0].Name)
	assert.Equal(t, len(assets)+1, file.Sheets[0].MaxRow)

	summary, err := ImportAssets(context.Background(), st, bytes.NewReader(buf.Bytes()), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, len(assets), summary.Updated)
	assert.Zero(t, summary.Inserted)
	assert.Zero(t, summary.Errors, "%+v", summary.Sheets)

	for _, want := range assets {
		got, ok := st.GetAsset(want.ID)
		require.True(t, ok)
		assert.Equal(t, models.InputFrom(want), models.InputFrom(got))
	}
}

func TestLoadMapping(t *testing.T) {
	m, err := LoadMapping("")
	require.NoError(t, err)
	cfg, ok := m.sheet("ASSETS")
	require.True(t, ok)
	assert.Equal(t, "serial_number", cfg.NaturalKey)
	assert.Equal(t, "good", m.Defaults["condition"])

	dir := t.TempDir()
	custom := filepath.Join(dir, "mapping.yaml")
	require.NoError(t, os.WriteFile(custom, []byte(`
version: 1
sheets:
  Hardware:
    natural_key: serial_number
    columns:
      Serial: { field: serial_number, type: TEXT }
      Model: { field: name, type: TEXT }
`), 0o600))
	m, err = LoadMapping(custom)
	require.NoError(t, err)
	_, ok = m.sheet("Hardware")
	assert.True(t, ok)

	_, err = LoadMapping(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := []struct {
		name string
		yaml string
	}{
		{"no sheets", "version: 1\n"},
		{"unknown field", "sheets:\n  A:\n    natural_key: serial_number\n    columns:\n      S: { field: serial_number, type: TEXT }\n      X: { field: colour, type: TEXT }\n"},
		{"unknown type", "sheets:\n  A:\n    natural_key: serial_number\n    columns:\n      S: { field: serial_number, type: INET }\n"},
		{"unmapped key", "sheets:\n  A:\n    natural_key: serial_number\n    columns:\n      N: { field: name, type: TEXT }\n"},
		{"alias for unmapped column", "sheets:\n  A:\n    natural_key: serial_number\n    columns:\n      S: { field: serial_number, type: TEXT }\n    aliases:\n      Q: [R]\n"},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMapping([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
