package testkit

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"amesdash/domain/housing"
)

// TestAmesData_Patterns verifies the generated housing data contains the
// relationships the statistical layer is supposed to detect
func TestAmesData_Patterns(t *testing.T) {
	config := AmesGeneratorConfig{
		RowCount:          800,
		MissingGarageRate: 0.054,
		NoiseSD:           0.18,
		Seed:              12345,
	}
	records := NewAmesDataGenerator(config).GenerateRecords()
	if len(records) != config.RowCount {
		t.Fatalf("expected %d records, got %d", config.RowCount, len(records))
	}

	t.Run("prices_positive", func(t *testing.T) {
		for _, rec := range records {
			if rec.SalePrice <= 0 {
				t.Fatalf("record %d has non-positive price %.0f", rec.Order, rec.SalePrice)
			}
		}
	})

	t.Run("neighborhood_price_tiers", func(t *testing.T) {
		meanLog := func(name string) (float64, int) {
			sum, n := 0.0, 0
			for _, rec := range records {
				if rec.Neighborhood == name {
					sum += math.Log1p(rec.SalePrice)
					n++
				}
			}
			if n == 0 {
				return 0, 0
			}
			return sum / float64(n), n
		}

		top, topN := meanLog("NridgHt")
		mid, midN := meanLog("NAmes")
		low, lowN := meanLog("MeadowV")
		if topN == 0 || midN == 0 || lowN == 0 {
			t.Skip("not enough neighborhood coverage")
		}

		t.Logf("mean log price: NridgHt=%.3f (n=%d) NAmes=%.3f (n=%d) MeadowV=%.3f (n=%d)",
			top, topN, mid, midN, low, lowN)

		if top <= mid || mid <= low {
			t.Errorf("expected NridgHt > NAmes > MeadowV in mean log price")
		}
	})

	t.Run("quality_price_relationship", func(t *testing.T) {
		highSum, highN := 0.0, 0
		lowSum, lowN := 0.0, 0
		for _, rec := range records {
			switch {
			case rec.OverallQual >= 7:
				highSum += math.Log1p(rec.SalePrice)
				highN++
			case rec.OverallQual <= 4:
				lowSum += math.Log1p(rec.SalePrice)
				lowN++
			}
		}
		if highN == 0 || lowN == 0 {
			t.Skip("not enough quality spread")
		}

		highMean := highSum / float64(highN)
		lowMean := lowSum / float64(lowN)
		t.Logf("mean log price: qual>=7 %.3f (n=%d), qual<=4 %.3f (n=%d)", highMean, highN, lowMean, lowN)

		if highMean <= lowMean {
			t.Errorf("expected higher quality grades to sell for more")
		}
	})

	t.Run("missing_garage_rate", func(t *testing.T) {
		missing := 0
		for _, rec := range records {
			if rec.GarageType == "" {
				missing++
			}
		}
		rate := float64(missing) / float64(len(records))
		t.Logf("missing garage rate: %.3f (%d/%d)", rate, missing, len(records))

		if rate < 0.02 || rate > 0.10 {
			t.Errorf("missing garage rate %.3f outside realistic band", rate)
		}
	})

	t.Run("quality_grades_in_range", func(t *testing.T) {
		for _, rec := range records {
			if rec.OverallQual < 1 || rec.OverallQual > 10 {
				t.Fatalf("record %d has quality grade %d outside 1..10", rec.Order, rec.OverallQual)
			}
		}
	})
}

// TestAmesGenerator_Deterministic verifies identical seeds replay identical data
func TestAmesGenerator_Deterministic(t *testing.T) {
	config := DefaultAmesConfig()
	a := NewAmesDataGenerator(config).GenerateRecords()
	b := NewAmesDataGenerator(config).GenerateRecords()

	if len(a) != len(b) {
		t.Fatalf("record counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("record %d differs between identical seeds: %+v vs %+v", i, a[i], b[i])
		}
	}

	config.Seed = 7
	c := NewAmesDataGenerator(config).GenerateRecords()
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical records")
	}
}

// TestAmesGenerator_Frame verifies the in-memory frame carries the
// load-time transforms
func TestAmesGenerator_Frame(t *testing.T) {
	gen := NewAmesDataGenerator(DefaultAmesConfig())
	records := gen.GenerateRecords()
	frame, err := gen.Frame(records)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	if frame.RowCount() != len(records) {
		t.Fatalf("frame has %d rows, expected %d", frame.RowCount(), len(records))
	}
	for _, col := range []string{
		housing.ColSalePrice, housing.ColSalePriceLog,
		housing.ColOverallQual, housing.ColNeighborhood, housing.ColGarageType,
	} {
		if !frame.HasColumn(col) {
			t.Errorf("frame missing column %q", col)
		}
	}

	// Missing garages filled with the sentinel, none left empty
	garage, err := frame.CategoricalColumn(housing.ColGarageType)
	if err != nil {
		t.Fatalf("garage column: %v", err)
	}
	sentinels := 0
	for i, g := range garage {
		if g == "" {
			t.Fatalf("row %d has an unfilled garage cell", i)
		}
		if g == housing.NoGarageLabel {
			sentinels++
		}
	}
	if sentinels == 0 {
		t.Error("expected some sentinel garage labels in generated data")
	}

	// Log column is log1p of the price column
	price, _ := frame.NumericColumn(housing.ColSalePrice)
	logPrice, _ := frame.NumericColumn(housing.ColSalePriceLog)
	for i := range price {
		want := math.Log1p(price[i])
		if math.Abs(logPrice[i]-want) > 1e-12 {
			t.Fatalf("row %d: log price %.12f, expected log1p(price)=%.12f", i, logPrice[i], want)
		}
	}
}

// TestAmesGenerator_WriteCSV verifies the raw file form: header layout and
// NA cells where garages are missing
func TestAmesGenerator_WriteCSV(t *testing.T) {
	config := DefaultAmesConfig()
	config.RowCount = 50
	gen := NewAmesDataGenerator(config)
	records := gen.GenerateRecords()

	path := filepath.Join(t.TempDir(), "ames.csv")
	if err := gen.WriteCSV(path, records); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open written file: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read written file: %v", err)
	}
	if len(rows) != len(records)+1 {
		t.Fatalf("file has %d rows, expected header + %d records", len(rows), len(records))
	}

	header := rows[0]
	if len(header) != len(CSVHeader) {
		t.Fatalf("header has %d columns, expected %d", len(header), len(CSVHeader))
	}
	for i, name := range CSVHeader {
		if header[i] != name {
			t.Errorf("header[%d] = %q, expected %q", i, header[i], name)
		}
	}

	garageIdx := -1
	for i, name := range header {
		if name == housing.ColGarageType {
			garageIdx = i
		}
	}
	if garageIdx < 0 {
		t.Fatal("garage column missing from header")
	}

	naCells := 0
	for _, row := range rows[1:] {
		if row[garageIdx] == "NA" {
			naCells++
		}
	}
	missing := 0
	for _, rec := range records {
		if rec.GarageType == "" {
			missing++
		}
	}
	if naCells != missing {
		t.Errorf("file has %d NA garage cells, records have %d missing", naCells, missing)
	}
}
