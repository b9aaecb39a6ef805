package ames

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"amesdash/domain/core"
	"amesdash/domain/housing"
	"amesdash/internal/logging"
)

// Columns every load must contain, with their forced statistical roles.
// Overall Qual is an ordinal grade and is read as categorical even though
// its cells parse as numbers.
var (
	requiredNumeric     = []string{housing.ColSalePrice}
	requiredCategorical = []string{housing.ColOverallQual, housing.ColNeighborhood, housing.ColGarageType}
)

// numericThreshold is the share of parseable cells a free column needs
// before it is stored as numeric rather than categorical
const numericThreshold = 0.8

// DataReader loads the housing dataset from Excel or CSV files and applies
// the fixed load-time transforms: the derived log price column and the
// sentinel fill for missing garage cells.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	config   SourceConfig
	logger   zerolog.Logger
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(config SourceConfig) *DataReader {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{
		filePath: config.FilePath,
		fileType: fileType,
		config:   config,
		logger:   logging.Component("dataset"),
	}
}

// Load implements ports.DatasetSource
func (r *DataReader) Load(ctx context.Context) (*housing.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrDatasetNotFound, r.filePath)
		}
		return nil, fmt.Errorf("read %s file %s: %w", r.fileType, r.filePath, err)
	}

	var rows [][]string
	switch r.fileType {
	case "csv":
		rows, err = r.parseCSV(data)
	case "xlsx":
		rows, err = r.parseExcel(data)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s has no data rows", core.ErrEmptyDataset, r.filePath)
	}

	frame, err := r.buildFrame(rows)
	if err != nil {
		return nil, err
	}
	frame.Fingerprint = core.NewDatasetFingerprint(data)

	r.logger.Info().
		Str("file", r.filePath).
		Int("rows", frame.RowCount()).
		Int("columns", frame.ColumnCount()).
		Str("fingerprint", frame.Fingerprint.Short()).
		Dur("elapsed", time.Since(start)).
		Msg("dataset loaded")
	return frame, nil
}

func (r *DataReader) parseCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV file %s: %w", r.filePath, err)
	}
	return rows, nil
}

func (r *DataReader) parseExcel(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open Excel file %s: %w", r.filePath, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", core.ErrEmptyDataset, r.filePath)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// buildFrame turns raw string rows into the canonical frame. The first row
// is the header; required columns get their forced types, every other
// column is typed by majority parse.
func (r *DataReader) buildFrame(rows [][]string) (*housing.Frame, error) {
	headers := make([]string, len(rows[0]))
	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
		index[headers[i]] = i
	}

	for _, col := range requiredNumeric {
		if _, ok := index[col]; !ok {
			return nil, core.NewColumnError(col)
		}
	}
	for _, col := range requiredCategorical {
		if _, ok := index[col]; !ok {
			return nil, core.NewColumnError(col)
		}
	}

	body := rows[1:]
	cell := func(row []string, col int) string {
		if col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	frame := housing.NewFrame(r.filePath)
	badNumeric := 0
	for colIdx, name := range headers {
		if name == "" {
			continue
		}
		switch {
		case containsColumn(requiredNumeric, name):
			values := make([]float64, len(body))
			for i, row := range body {
				v, ok := r.parseNumericCell(cell(row, colIdx))
				if !ok {
					badNumeric++
				}
				values[i] = v
			}
			if err := frame.AddNumericColumn(name, values); err != nil {
				return nil, err
			}
		case containsColumn(requiredCategorical, name):
			values := make([]string, len(body))
			for i, row := range body {
				v := cell(row, colIdx)
				if r.config.isMissing(v) {
					v = ""
				}
				values[i] = v
			}
			if name == housing.ColGarageType {
				fillGarageSentinel(values)
			}
			if err := frame.AddCategoricalColumn(name, values); err != nil {
				return nil, err
			}
		default:
			if err := r.addInferredColumn(frame, name, colIdx, body, cell); err != nil {
				return nil, err
			}
		}
	}

	if err := r.deriveLogPrice(frame); err != nil {
		return nil, err
	}

	if badNumeric > 0 {
		r.logger.Warn().Int("cells", badNumeric).Msg("unparseable numeric cells treated as missing")
	}

	frame.Seal()
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	return frame, nil
}

// addInferredColumn types a free column by majority parse: mostly numeric
// cells make a numeric column, anything else stays categorical.
func (r *DataReader) addInferredColumn(frame *housing.Frame, name string, colIdx int, body [][]string, cell func([]string, int) string) error {
	parseable, present := 0, 0
	for _, row := range body {
		v := cell(row, colIdx)
		if r.config.isMissing(v) {
			continue
		}
		present++
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			parseable++
		}
	}

	if present > 0 && float64(parseable)/float64(present) >= numericThreshold {
		values := make([]float64, len(body))
		for i, row := range body {
			values[i], _ = r.parseNumericCell(cell(row, colIdx))
		}
		return frame.AddNumericColumn(name, values)
	}

	values := make([]string, len(body))
	for i, row := range body {
		v := cell(row, colIdx)
		if r.config.isMissing(v) {
			v = ""
		}
		values[i] = v
	}
	return frame.AddCategoricalColumn(name, values)
}

// parseNumericCell parses one numeric cell. Missing tokens and unparseable
// values both come back as NaN; ok is false only for unparseable cells.
func (r *DataReader) parseNumericCell(value string) (float64, bool) {
	if r.config.isMissing(value) {
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// deriveLogPrice appends the log1p-transformed price column the analyses run on
func (r *DataReader) deriveLogPrice(frame *housing.Frame) error {
	price, err := frame.NumericColumn(housing.ColSalePrice)
	if err != nil {
		return err
	}
	logPrice := make([]float64, len(price))
	for i, v := range price {
		if math.IsNaN(v) {
			logPrice[i] = math.NaN()
			continue
		}
		logPrice[i] = math.Log1p(v)
	}
	return frame.AddNumericColumn(housing.ColSalePriceLog, logPrice)
}

// fillGarageSentinel replaces missing garage cells with the explicit
// no-garage label so absence participates in grouping as its own level
func fillGarageSentinel(values []string) {
	for i, v := range values {
		if v == "" {
			values[i] = housing.NoGarageLabel
		}
	}
}

func containsColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}
