package housing

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"amesdash/domain/core"
)

// Canonical column names of the Ames dataset
const (
	ColSalePrice    = "SalePrice"
	ColSalePriceLog = "SalePrice_log"
	ColOverallQual  = "Overall Qual"
	ColNeighborhood = "Neighborhood"
	ColGarageType   = "Garage Type"
)

// NoGarageLabel is the sentinel filled into missing Garage Type cells at load time
const NoGarageLabel = "No Garage"

// Frame is the canonical data object for all statistical computation.
// Columns are stored column-oriented; numeric missing values are NaN and
// categorical missing values are the empty string. A frame is immutable
// after construction; filters return derived views, never mutate.
type Frame struct {
	numeric     map[string][]float64
	categorical map[string][]string
	columnOrder []string
	rowCount    int
	sealed      bool

	// Provenance
	SourcePath  string
	Fingerprint core.DatasetFingerprint
	LoadedAt    core.Timestamp
}

// Group is one partition of a numeric target keyed by a categorical label
type Group struct {
	Label  string
	Values []float64
}

// NewFrame creates an empty frame ready for column loading
func NewFrame(sourcePath string) *Frame {
	return &Frame{
		numeric:     make(map[string][]float64),
		categorical: make(map[string][]string),
		SourcePath:  sourcePath,
		LoadedAt:    core.Now(),
	}
}

// AddNumericColumn adds a float column. NaN marks a missing cell.
func (f *Frame) AddNumericColumn(name string, values []float64) error {
	if f.sealed {
		return core.NewValidationError("frame", "cannot add columns after seal")
	}
	if err := f.checkNewColumn(name, len(values)); err != nil {
		return err
	}
	f.numeric[name] = values
	f.columnOrder = append(f.columnOrder, name)
	return nil
}

// AddCategoricalColumn adds a string column. Empty string marks a missing cell.
func (f *Frame) AddCategoricalColumn(name string, values []string) error {
	if f.sealed {
		return core.NewValidationError("frame", "cannot add columns after seal")
	}
	if err := f.checkNewColumn(name, len(values)); err != nil {
		return err
	}
	f.categorical[name] = values
	f.columnOrder = append(f.columnOrder, name)
	return nil
}

func (f *Frame) checkNewColumn(name string, length int) error {
	if name == "" {
		return core.NewValidationError("column", "name cannot be empty")
	}
	if _, dup := f.numeric[name]; dup {
		return core.NewValidationError("column", fmt.Sprintf("duplicate column %q", name))
	}
	if _, dup := f.categorical[name]; dup {
		return core.NewValidationError("column", fmt.Sprintf("duplicate column %q", name))
	}
	if len(f.columnOrder) == 0 {
		f.rowCount = length
		return nil
	}
	if length != f.rowCount {
		return core.NewValidationError("column",
			fmt.Sprintf("%q has %d rows, frame has %d", name, length, f.rowCount))
	}
	return nil
}

// Seal marks the frame complete; no further columns may be added
func (f *Frame) Seal() {
	f.sealed = true
}

// Validate ensures the frame is internally consistent
func (f *Frame) Validate() error {
	if f.rowCount == 0 {
		return core.ErrEmptyDataset
	}
	for name, col := range f.numeric {
		if len(col) != f.rowCount {
			return core.NewValidationError("frame",
				fmt.Sprintf("numeric column %q has %d rows, expected %d", name, len(col), f.rowCount))
		}
	}
	for name, col := range f.categorical {
		if len(col) != f.rowCount {
			return core.NewValidationError("frame",
				fmt.Sprintf("categorical column %q has %d rows, expected %d", name, len(col), f.rowCount))
		}
	}
	return nil
}

// RowCount returns the number of property records
func (f *Frame) RowCount() int {
	return f.rowCount
}

// ColumnCount returns the number of columns
func (f *Frame) ColumnCount() int {
	return len(f.columnOrder)
}

// Columns returns column names in load order
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columnOrder))
	copy(out, f.columnOrder)
	return out
}

// HasColumn reports whether the frame has a column with this name
func (f *Frame) HasColumn(name string) bool {
	if _, ok := f.numeric[name]; ok {
		return true
	}
	_, ok := f.categorical[name]
	return ok
}

// NumericColumn returns a copy of a numeric column's values (NaN = missing)
func (f *Frame) NumericColumn(name string) ([]float64, error) {
	col, ok := f.numeric[name]
	if !ok {
		return nil, core.NewColumnError(name)
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, nil
}

// CategoricalColumn returns a copy of a categorical column's values ("" = missing)
func (f *Frame) CategoricalColumn(name string) ([]string, error) {
	col, ok := f.categorical[name]
	if !ok {
		return nil, core.NewColumnError(name)
	}
	out := make([]string, len(col))
	copy(out, col)
	return out, nil
}

// NumericValues returns the non-missing values of a numeric column
func (f *Frame) NumericValues(name string) ([]float64, error) {
	col, ok := f.numeric[name]
	if !ok {
		return nil, core.NewColumnError(name)
	}
	out := make([]float64, 0, len(col))
	for _, v := range col {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// MissingCount returns how many cells of the column are missing
func (f *Frame) MissingCount(name string) (int, error) {
	if col, ok := f.numeric[name]; ok {
		n := 0
		for _, v := range col {
			if math.IsNaN(v) {
				n++
			}
		}
		return n, nil
	}
	if col, ok := f.categorical[name]; ok {
		n := 0
		for _, v := range col {
			if v == "" {
				n++
			}
		}
		return n, nil
	}
	return 0, core.NewColumnError(name)
}

// Partition splits a numeric target by the distinct values of a categorical
// column. Rows with a missing target or missing group label are dropped.
// Groups come back in natural label order (numeric-aware) for determinism;
// callers that need median order re-sort themselves.
func (f *Frame) Partition(targetColumn, groupColumn string) ([]Group, error) {
	target, ok := f.numeric[targetColumn]
	if !ok {
		return nil, core.NewColumnError(targetColumn)
	}
	labels, ok := f.categorical[groupColumn]
	if !ok {
		return nil, core.NewColumnError(groupColumn)
	}

	byLabel := make(map[string][]float64)
	for i, label := range labels {
		if label == "" || math.IsNaN(target[i]) {
			continue
		}
		byLabel[label] = append(byLabel[label], target[i])
	}
	if len(byLabel) == 0 {
		return nil, core.ErrInsufficientData
	}

	groups := make([]Group, 0, len(byLabel))
	for label, values := range byLabel {
		groups = append(groups, Group{Label: label, Values: values})
	}
	sort.Slice(groups, func(i, j int) bool {
		return lessNatural(groups[i].Label, groups[j].Label)
	})
	return groups, nil
}

// FilterLogPriceAtMost returns a derived view keeping rows whose
// SalePrice_log does not exceed the threshold. Rows with a missing log
// price pass through: the filter constrains prices, not missingness.
func (f *Frame) FilterLogPriceAtMost(threshold float64) (*Frame, error) {
	logCol, ok := f.numeric[ColSalePriceLog]
	if !ok {
		return nil, core.NewColumnError(ColSalePriceLog)
	}
	keep := make([]bool, len(logCol))
	kept := 0
	for i, v := range logCol {
		if !(v > threshold) { // NaN compares false, so missing rows stay
			keep[i] = true
			kept++
		}
	}
	return f.filterRows(keep, kept), nil
}

func (f *Frame) filterRows(keep []bool, kept int) *Frame {
	view := &Frame{
		numeric:     make(map[string][]float64, len(f.numeric)),
		categorical: make(map[string][]string, len(f.categorical)),
		columnOrder: f.Columns(),
		rowCount:    kept,
		sealed:      true,
		SourcePath:  f.SourcePath,
		Fingerprint: f.Fingerprint,
		LoadedAt:    f.LoadedAt,
	}
	for name, col := range f.numeric {
		filtered := make([]float64, 0, kept)
		for i, v := range col {
			if keep[i] {
				filtered = append(filtered, v)
			}
		}
		view.numeric[name] = filtered
	}
	for name, col := range f.categorical {
		filtered := make([]string, 0, kept)
		for i, v := range col {
			if keep[i] {
				filtered = append(filtered, v)
			}
		}
		view.categorical[name] = filtered
	}
	return view
}

// lessNatural orders labels numerically when both parse as numbers,
// lexically otherwise, so quality grades sort 2 < 10.
func lessNatural(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	return a < b
}
