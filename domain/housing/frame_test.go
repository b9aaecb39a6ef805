package housing

import (
	"errors"
	"math"
	"testing"

	"amesdash/domain/core"
)

func buildTestFrame(t *testing.T) *Frame {
	t.Helper()

	price := []float64{100000, 150000, 200000, 250000, 300000, 120000}
	logPrice := make([]float64, len(price))
	for i, p := range price {
		logPrice[i] = math.Log1p(p)
	}

	f := NewFrame("test.csv")
	if err := f.AddNumericColumn(ColSalePrice, price); err != nil {
		t.Fatalf("AddNumericColumn(SalePrice) failed: %v", err)
	}
	if err := f.AddNumericColumn(ColSalePriceLog, logPrice); err != nil {
		t.Fatalf("AddNumericColumn(SalePrice_log) failed: %v", err)
	}
	if err := f.AddCategoricalColumn(ColNeighborhood, []string{"NAmes", "NAmes", "OldTown", "OldTown", "OldTown", "NAmes"}); err != nil {
		t.Fatalf("AddCategoricalColumn(Neighborhood) failed: %v", err)
	}
	if err := f.AddCategoricalColumn(ColGarageType, []string{"Attchd", NoGarageLabel, "Attchd", "Detchd", "Attchd", NoGarageLabel}); err != nil {
		t.Fatalf("AddCategoricalColumn(Garage Type) failed: %v", err)
	}
	f.Seal()
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	return f
}

func TestFrameColumnLengthMismatch(t *testing.T) {
	f := NewFrame("test.csv")
	if err := f.AddNumericColumn(ColSalePrice, []float64{1, 2, 3}); err != nil {
		t.Fatalf("first column failed: %v", err)
	}
	if err := f.AddCategoricalColumn(ColNeighborhood, []string{"NAmes"}); err == nil {
		t.Error("Expected error adding column with mismatched length")
	}
}

func TestFrameDuplicateColumn(t *testing.T) {
	f := NewFrame("test.csv")
	if err := f.AddNumericColumn(ColSalePrice, []float64{1, 2}); err != nil {
		t.Fatalf("first column failed: %v", err)
	}
	if err := f.AddNumericColumn(ColSalePrice, []float64{3, 4}); err == nil {
		t.Error("Expected error adding duplicate column")
	}
}

func TestFrameSealRejectsNewColumns(t *testing.T) {
	f := buildTestFrame(t)
	if err := f.AddNumericColumn("Lot Area", make([]float64, f.RowCount())); err == nil {
		t.Error("Expected sealed frame to reject new columns")
	}
}

func TestFrameValidateEmpty(t *testing.T) {
	f := NewFrame("empty.csv")
	if err := f.Validate(); !errors.Is(err, core.ErrEmptyDataset) {
		t.Errorf("Expected ErrEmptyDataset, got %v", err)
	}
}

func TestNumericColumnReturnsCopy(t *testing.T) {
	f := buildTestFrame(t)
	col, err := f.NumericColumn(ColSalePrice)
	if err != nil {
		t.Fatalf("NumericColumn failed: %v", err)
	}
	col[0] = -1
	again, _ := f.NumericColumn(ColSalePrice)
	if again[0] == -1 {
		t.Error("Mutating a returned column must not touch the frame")
	}
}

func TestUnknownColumnErrors(t *testing.T) {
	f := buildTestFrame(t)
	if _, err := f.NumericColumn("Lot Area"); !core.IsNotFoundError(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
	if _, err := f.Partition(ColSalePriceLog, "Bogus"); !core.IsNotFoundError(err) {
		t.Errorf("Expected not-found error for bogus group column, got %v", err)
	}
}

func TestPartitionDropsMissing(t *testing.T) {
	f := NewFrame("test.csv")
	target := []float64{1, 2, math.NaN(), 4, 5}
	labels := []string{"A", "", "B", "B", "A"}
	if err := f.AddNumericColumn(ColSalePriceLog, target); err != nil {
		t.Fatalf("add target: %v", err)
	}
	if err := f.AddCategoricalColumn(ColNeighborhood, labels); err != nil {
		t.Fatalf("add labels: %v", err)
	}

	groups, err := f.Partition(ColSalePriceLog, ColNeighborhood)
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
	// Row 1 has no label, row 2 has no target: both dropped.
	if got := len(groups[0].Values) + len(groups[1].Values); got != 3 {
		t.Errorf("Expected 3 surviving observations, got %d", got)
	}
}

func TestPartitionNaturalOrder(t *testing.T) {
	f := NewFrame("test.csv")
	target := []float64{1, 2, 3, 4}
	grades := []string{"10", "2", "9", "10"}
	if err := f.AddNumericColumn(ColSalePriceLog, target); err != nil {
		t.Fatalf("add target: %v", err)
	}
	if err := f.AddCategoricalColumn(ColOverallQual, grades); err != nil {
		t.Fatalf("add grades: %v", err)
	}

	groups, err := f.Partition(ColSalePriceLog, ColOverallQual)
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	want := []string{"2", "9", "10"}
	for i, g := range groups {
		if g.Label != want[i] {
			t.Errorf("Group %d: expected label %s, got %s", i, want[i], g.Label)
		}
	}
}

func TestFilterLogPriceAtMostMaxIsNoOp(t *testing.T) {
	f := buildTestFrame(t)
	logCol, _ := f.NumericValues(ColSalePriceLog)
	maxLog := logCol[0]
	for _, v := range logCol {
		if v > maxLog {
			maxLog = v
		}
	}

	view, err := f.FilterLogPriceAtMost(maxLog)
	if err != nil {
		t.Fatalf("FilterLogPriceAtMost failed: %v", err)
	}
	if view.RowCount() != f.RowCount() {
		t.Errorf("Filter at max should keep all %d rows, kept %d", f.RowCount(), view.RowCount())
	}
}

func TestFilterLogPriceAtMostMinKeepsOnlyMinRows(t *testing.T) {
	f := buildTestFrame(t)
	logCol, _ := f.NumericValues(ColSalePriceLog)
	minLog := logCol[0]
	for _, v := range logCol {
		if v < minLog {
			minLog = v
		}
	}

	view, err := f.FilterLogPriceAtMost(minLog)
	if err != nil {
		t.Fatalf("FilterLogPriceAtMost failed: %v", err)
	}
	kept, _ := view.NumericValues(ColSalePriceLog)
	if len(kept) == 0 {
		t.Fatal("Filter at min should keep at least the minimum row")
	}
	for _, v := range kept {
		if v != minLog {
			t.Errorf("Row with log price %f survived a filter at the minimum %f", v, minLog)
		}
	}
}

func TestFilterKeepsRowsWithMissingLogPrice(t *testing.T) {
	f := NewFrame("test.csv")
	if err := f.AddNumericColumn(ColSalePriceLog, []float64{1, math.NaN(), 3}); err != nil {
		t.Fatalf("add log column: %v", err)
	}
	view, err := f.FilterLogPriceAtMost(2)
	if err != nil {
		t.Fatalf("FilterLogPriceAtMost failed: %v", err)
	}
	if view.RowCount() != 2 {
		t.Errorf("Expected missing log rows to pass the filter, got %d rows", view.RowCount())
	}
}

func TestFilterDoesNotMutateParent(t *testing.T) {
	f := buildTestFrame(t)
	before := f.RowCount()
	if _, err := f.FilterLogPriceAtMost(0); err != nil {
		t.Fatalf("FilterLogPriceAtMost failed: %v", err)
	}
	if f.RowCount() != before {
		t.Errorf("Filtering mutated the parent frame: %d -> %d rows", before, f.RowCount())
	}
}

func TestMissingCount(t *testing.T) {
	f := NewFrame("test.csv")
	if err := f.AddCategoricalColumn(ColGarageType, []string{"Attchd", "", "", "Detchd"}); err != nil {
		t.Fatalf("add column: %v", err)
	}
	n, err := f.MissingCount(ColGarageType)
	if err != nil {
		t.Fatalf("MissingCount failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 missing cells, got %d", n)
	}
}
