package importer

import (
	"fmt"
	"io"

	"asset-angel-api/internal/models"

	"github.com/tealeg/xlsx/v3"
)

// ExportSheet is the sheet name ExportAssets writes and the default mapping reads
const ExportSheet = "Assets"

// ExportHeaders are the canonical column headers, in sheet order
var ExportHeaders = []string{
	"ID", "Name", "Category", "Serial Number", "Condition", "Status",
	"Purchase Date", "Purchase Price", "Warranty Expiry", "Notes",
}

// ExportAssets writes assets as a single-sheet workbook that ImportAssets
// can read back with the default mapping.
func ExportAssets(w io.Writer, assets []models.Asset) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(ExportSheet)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range ExportHeaders {
		header.AddCell().SetString(h)
	}

	for _, a := range assets {
		row := sheet.AddRow()
		row.AddCell().SetString(a.ID)
		row.AddCell().SetString(a.Name)
		row.AddCell().SetString(string(a.Category))
		row.AddCell().SetString(a.SerialNumber)
		row.AddCell().SetString(string(a.Condition))
		row.AddCell().SetString(string(a.Status))
		row.AddCell().SetString(a.PurchaseDate.String())
		row.AddCell().SetFloat(a.PurchasePrice)
		warranty := row.AddCell()
		if a.WarrantyExpiry != nil {
			warranty.SetString(a.WarrantyExpiry.String())
		}
		notes := row.AddCell()
		if a.Notes != nil {
			notes.SetString(*a.Notes)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
