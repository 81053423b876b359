package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"asset-angel-api/internal/models"

	"github.com/tealeg/xlsx/v3"
)

// DefaultMaxErrors is used when ImportOptions.MaxErrors is not set
const DefaultMaxErrors = 50

// ErrTooManyErrors is returned, wrapped, when an import stops early
var ErrTooManyErrors = errors.New("too many row errors")

// AssetSink is the part of the store an import writes through
type AssetSink interface {
	FindAssetBySerial(serial string) (models.Asset, bool)
	CreateAsset(in models.AssetInput) (models.Asset, error)
	UpdateAsset(id string, in models.AssetInput) (models.Asset, error)
	// ValidateAsset checks in as a create (empty id) or an update of id
	ValidateAsset(id string, in models.AssetInput) error
}

// ImportOptions defines the configuration for Excel import operations
type ImportOptions struct {
	MappingPath string         // empty means the embedded default mapping
	Mapping     *MappingConfig // takes precedence over MappingPath
	DryRun      bool
	MaxErrors   int // default 50
}

// RowError represents an error that occurred during row processing
type RowError struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// SheetSummary contains the import statistics for a single sheet
type SheetSummary struct {
	Name     string     `json:"name"`
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   int        `json:"errors"`
	Samples  []RowError `json:"errorSamples,omitempty"`
}

// ImportSummary contains the overall import statistics
type ImportSummary struct {
	Inserted int            `json:"inserted"`
	Updated  int            `json:"updated"`
	Skipped  int            `json:"skipped"`
	Errors   int            `json:"errors"`
	Sheets   []SheetSummary `json:"sheets"`
	DryRun   bool           `json:"dryRun"`
}

// ImportAssets reads every mapped sheet of the workbook in r and creates
// or updates assets in sink, keyed by serial number.
func ImportAssets(ctx context.Context, sink AssetSink, r io.Reader, opts ImportOptions) (ImportSummary, error) {
	summary := ImportSummary{
		DryRun: opts.DryRun,
		Sheets: []SheetSummary{},
	}

	if opts.MaxErrors <= 0 {
		opts.MaxErrors = DefaultMaxErrors
	}

	mapping := opts.Mapping
	if mapping == nil {
		var err error
		mapping, err = LoadMapping(opts.MappingPath)
		if err != nil {
			return summary, fmt.Errorf("failed to load mapping config: %w", err)
		}
	}

	// xlsx.OpenBinary needs the whole workbook in memory
	data, err := io.ReadAll(r)
	if err != nil {
		return summary, fmt.Errorf("failed to read Excel file: %w", err)
	}

	xlFile, err := xlsx.OpenBinary(data)
	if err != nil {
		return summary, fmt.Errorf("failed to open Excel file: %w", err)
	}

	matched := 0
	for _, sheet := range xlFile.Sheets {
		sheetConfig, ok := mapping.sheet(sheet.Name)
		if !ok {
			continue // Skip sheets without mapping
		}
		matched++

		p := &sheetProcessor{
			sink:     sink,
			sheet:    sheet,
			config:   sheetConfig,
			defaults: mapping.Defaults,
			opts:     opts,
			budget:   opts.MaxErrors - summary.Errors,
			date1904: xlFile.Date1904,
		}
		sheetSummary, err := p.run(ctx)
		summary.Sheets = append(summary.Sheets, sheetSummary)

		// Accumulate totals
		summary.Inserted += sheetSummary.Inserted
		summary.Updated += sheetSummary.Updated
		summary.Skipped += sheetSummary.Skipped
		summary.Errors += sheetSummary.Errors

		if err != nil {
			return summary, err
		}
	}

	if matched == 0 {
		return summary, fmt.Errorf("no sheet matches the mapping (expected one of %s)", strings.Join(mapping.sheetNames(), ", "))
	}
	return summary, nil
}

type sheetProcessor struct {
	sink     AssetSink
	sheet    *xlsx.Sheet
	config   SheetConfig
	defaults map[string]string
	opts     ImportOptions
	budget   int
	date1904 bool

	// serials a dry run would have created, so repeats count as updates
	planned map[string]bool

	summary SheetSummary
}

func (p *sheetProcessor) fail(row int, format string, args ...any) bool {
	p.summary.Errors++
	p.summary.Samples = append(p.summary.Samples, RowError{
		Sheet:   p.sheet.Name,
		Row:     row,
		Message: fmt.Sprintf(format, args...),
	})
	return p.summary.Errors >= p.budget
}

func (p *sheetProcessor) run(ctx context.Context) (SheetSummary, error) {
	p.summary = SheetSummary{Name: p.sheet.Name}

	// Get header row (first row)
	headerRow, err := p.sheet.Row(0)
	if err != nil {
		p.fail(1, "Failed to read header row: %v", err)
		return p.summary, nil
	}

	columns := p.resolveHeaders(headerRow)
	for header, col := range p.config.Columns {
		if _, ok := columns[col.Field]; !ok && col.required() {
			p.fail(1, "missing required column %q", header)
		}
	}
	if p.summary.Errors > 0 {
		return p.summary, nil
	}

	// Process data rows starting from row 1
	for rowIdx := 1; rowIdx < p.sheet.MaxRow; rowIdx++ {
		if err := ctx.Err(); err != nil {
			return p.summary, err
		}

		row, err := p.sheet.Row(rowIdx)
		if err != nil {
			break // No more rows
		}

		rowData := make(map[string]string, len(columns))
		for field, colIdx := range columns {
			if v := strings.TrimSpace(row.GetCell(colIdx).Value); v != "" {
				rowData[field] = v
			}
		}

		// Skip if no data in row
		if len(rowData) == 0 {
			p.summary.Skipped++
			continue
		}

		if err := p.importRow(rowData); err != nil {
			if p.fail(rowIdx+1, "%v", err) {
				return p.summary, fmt.Errorf("%w (%d), stopping import", ErrTooManyErrors, p.opts.MaxErrors)
			}
		}
	}

	return p.summary, nil
}

// resolveHeaders maps each configured field to its column index, matching
// canonical headers first and aliases second.
func (p *sheetProcessor) resolveHeaders(headerRow *xlsx.Row) map[string]int {
	byHeader := make(map[string]int)
	for colIdx := 0; colIdx < p.sheet.MaxCol; colIdx++ {
		headerName := strings.TrimSpace(headerRow.GetCell(colIdx).Value)
		if headerName == "" {
			continue
		}
		key := strings.ToUpper(headerName)
		if _, dup := byHeader[key]; !dup {
			byHeader[key] = colIdx
		}
	}

	columns := make(map[string]int)
	for header, col := range p.config.Columns {
		if idx, ok := byHeader[strings.ToUpper(header)]; ok {
			columns[col.Field] = idx
			continue
		}
		for _, alias := range p.config.Aliases[header] {
			if idx, ok := byHeader[strings.ToUpper(alias)]; ok {
				columns[col.Field] = idx
				break
			}
		}
	}
	return columns
}

func (p *sheetProcessor) importRow(rowData map[string]string) error {
	key := rowData[p.config.NaturalKey]
	if key == "" {
		return fmt.Errorf("%s is required", p.config.NaturalKey)
	}

	existing, found := p.sink.FindAssetBySerial(key)

	var in models.AssetInput
	if found {
		in = models.InputFrom(existing)
	} else {
		for field, value := range p.defaults {
			if _, set := rowData[field]; !set {
				rowData[field] = value
			}
		}
		for header, col := range p.config.Columns {
			if _, set := rowData[col.Field]; !set && col.required() {
				return fmt.Errorf("%s is required", header)
			}
		}
	}

	if err := p.buildAssetInput(&in, rowData); err != nil {
		return err
	}

	if found {
		if p.opts.DryRun {
			if err := p.sink.ValidateAsset(existing.ID, in); err != nil {
				return err
			}
		} else if _, err := p.sink.UpdateAsset(existing.ID, in); err != nil {
			return err
		}
		p.summary.Updated++
		return nil
	}

	// Only an assignment can mark an asset assigned
	if in.Status == models.StatusAssigned {
		in.Status = models.StatusAvailable
	}
	if !p.opts.DryRun {
		if _, err := p.sink.CreateAsset(in); err != nil {
			return err
		}
		p.summary.Inserted++
		return nil
	}

	if err := p.sink.ValidateAsset("", in); err != nil {
		return err
	}
	serial := strings.ToUpper(key)
	if p.planned[serial] {
		p.summary.Updated++
		return nil
	}
	if p.planned == nil {
		p.planned = make(map[string]bool)
	}
	p.planned[serial] = true
	p.summary.Inserted++
	return nil
}

func (p *sheetProcessor) buildAssetInput(in *models.AssetInput, rowData map[string]string) error {
	for header, col := range p.config.Columns {
		value, ok := rowData[col.Field]
		if !ok {
			continue
		}

		parsed, err := parseValue(value, col.Type, p.date1904)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %v", header, err)
		}
		if err := assignField(in, col.Field, parsed); err != nil {
			return fmt.Errorf("failed to parse %s: %v", header, err)
		}
	}
	return nil
}

func assignField(in *models.AssetInput, field string, v any) error {
	switch field {
	case "name":
		in.Name = v.(string)
	case "serial_number":
		in.SerialNumber = v.(string)
	case "category":
		c, err := models.ParseAssetCategory(v.(string))
		if err != nil {
			return err
		}
		in.Category = c
	case "condition":
		c, err := models.ParseAssetCondition(v.(string))
		if err != nil {
			return err
		}
		in.Condition = c
	case "status":
		s, err := models.ParseAssetStatus(v.(string))
		if err != nil {
			return err
		}
		in.Status = s
	case "purchase_date":
		in.PurchaseDate = v.(models.Date)
	case "purchase_price":
		in.PurchasePrice = v.(float64)
	case "warranty_expiry":
		d := v.(models.Date)
		in.WarrantyExpiry = &d
	case "notes":
		s := v.(string)
		in.Notes = &s
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

func parseValue(value, valueType string, date1904 bool) (any, error) {
	valueType = strings.TrimSuffix(valueType, "?") // Remove optional marker

	switch valueType {
	case "TEXT", "ENUM":
		return value, nil
	case "NUMBER":
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimPrefix(value, "$"), ",", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", value)
		}
		return f, nil
	case "DATE":
		if d, err := models.ParseDate(value); err == nil {
			return d, nil
		}
		// Date cells hold the Excel serial day number
		serial, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a date", value)
		}
		return models.NewDate(xlsx.TimeFromExcelTime(serial, date1904)), nil
	default:
		return nil, fmt.Errorf("unsupported column type %q", valueType)
	}
}
