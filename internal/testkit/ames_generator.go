package testkit

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"

	"amesdash/domain/core"
	"amesdash/domain/housing"
)

// AmesGeneratorConfig configures the synthetic housing data generator
type AmesGeneratorConfig struct {
	RowCount          int     `json:"row_count"`
	MissingGarageRate float64 `json:"missing_garage_rate"`
	NoiseSD           float64 `json:"noise_sd"`
	Seed              int64   `json:"seed"`
}

// DefaultAmesConfig returns sensible defaults for housing data generation.
// The missing-garage rate mirrors the real dataset (157 of 2930 records).
func DefaultAmesConfig() AmesGeneratorConfig {
	return AmesGeneratorConfig{
		RowCount:          600,
		MissingGarageRate: 0.054,
		NoiseSD:           0.18,
		Seed:              42,
	}
}

// PropertyRecord is one synthetic property sale, pre-transform: the garage
// type may be empty (missing) and no log column exists yet, exactly like a
// raw dataset row.
type PropertyRecord struct {
	Order        int
	SalePrice    float64
	OverallQual  int
	Neighborhood string
	GarageType   string
	LotArea      float64
	YearBuilt    int
}

// Neighborhood price tiers: log-price shifts around the baseline, strong
// enough that omnibus tests on generated data reject decisively.
var neighborhoodShifts = []struct {
	Name  string
	Shift float64
}{
	{"MeadowV", -0.45},
	{"OldTown", -0.30},
	{"Edwards", -0.22},
	{"Sawyer", -0.12},
	{"NAmes", 0.00},
	{"Gilbert", 0.10},
	{"CollgCr", 0.18},
	{"Somerst", 0.30},
	{"NridgHt", 0.62},
}

// Garage placement effects on log price; the empty entries become the
// missing cells the loader later fills with the sentinel label.
var garageShifts = []struct {
	Name   string
	Weight float64
	Shift  float64
}{
	{"Attchd", 0.58, 0.10},
	{"Detchd", 0.26, -0.08},
	{"BuiltIn", 0.06, 0.20},
	{"Basment", 0.04, -0.02},
	{"CarPort", 0.03, -0.22},
	{"2Types", 0.03, 0.02},
}

const (
	baselineLogPrice = 11.65 // about $115k
	qualityLogSlope  = 0.115 // per grade above 5
)

// AmesDataGenerator generates realistic property sale records
type AmesDataGenerator struct {
	config AmesGeneratorConfig
	rng    *rand.Rand
}

// NewAmesDataGenerator creates a new housing data generator
func NewAmesDataGenerator(config AmesGeneratorConfig) *AmesDataGenerator {
	return &AmesDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateRecords generates the full set of synthetic property sales
func (g *AmesDataGenerator) GenerateRecords() []PropertyRecord {
	records := make([]PropertyRecord, g.config.RowCount)
	for i := range records {
		records[i] = g.generateRecord(i + 1)
	}
	return records
}

func (g *AmesDataGenerator) generateRecord(order int) PropertyRecord {
	hood := neighborhoodShifts[g.rng.Intn(len(neighborhoodShifts))]

	// Quality clusters around 5-7 and drifts upward in pricier tiers
	qual := 5 + int(math.Round(hood.Shift*3+g.rng.NormFloat64()*1.6))
	if qual < 1 {
		qual = 1
	}
	if qual > 10 {
		qual = 10
	}

	garage, garageShift := g.pickGarage()

	logPrice := baselineLogPrice +
		hood.Shift +
		qualityLogSlope*float64(qual-5) +
		garageShift +
		g.rng.NormFloat64()*g.config.NoiseSD

	return PropertyRecord{
		Order:        order,
		SalePrice:    math.Round(math.Expm1(logPrice)),
		OverallQual:  qual,
		Neighborhood: hood.Name,
		GarageType:   garage,
		LotArea:      math.Round(9000 + g.rng.NormFloat64()*2500),
		YearBuilt:    1950 + g.rng.Intn(61),
	}
}

// pickGarage draws a garage type by weight, or an empty cell at the
// configured missing rate. Missing garages also lose the garage premium.
func (g *AmesDataGenerator) pickGarage() (string, float64) {
	if g.rng.Float64() < g.config.MissingGarageRate {
		return "", -0.28
	}
	roll := g.rng.Float64()
	acc := 0.0
	for _, gt := range garageShifts {
		acc += gt.Weight
		if roll < acc {
			return gt.Name, gt.Shift
		}
	}
	last := garageShifts[len(garageShifts)-1]
	return last.Name, last.Shift
}

// CSVHeader is the column layout WriteCSV emits, a thin slice of the real
// dataset's schema
var CSVHeader = []string{
	"Order", "Neighborhood", housing.ColOverallQual, "Lot Area",
	"Year Built", housing.ColGarageType, housing.ColSalePrice,
}

// WriteCSV writes the records as a raw dataset file: no derived log
// column, missing garage cells emitted as NA the way the source data has
// them.
func (g *AmesDataGenerator) WriteCSV(path string, records []PropertyRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(CSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		garage := rec.GarageType
		if garage == "" {
			garage = "NA"
		}
		row := []string{
			strconv.Itoa(rec.Order),
			rec.Neighborhood,
			strconv.Itoa(rec.OverallQual),
			strconv.FormatFloat(rec.LotArea, 'f', -1, 64),
			strconv.Itoa(rec.YearBuilt),
			garage,
			strconv.FormatFloat(rec.SalePrice, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", rec.Order, err)
		}
	}
	w.Flush()
	return w.Error()
}

// Frame assembles the records into a loaded-and-transformed frame: the
// derived log column present, missing garages already filled with the
// sentinel. Mirrors what the dataset reader produces from the CSV form.
func (g *AmesDataGenerator) Frame(records []PropertyRecord) (*housing.Frame, error) {
	n := len(records)
	price := make([]float64, n)
	logPrice := make([]float64, n)
	qual := make([]string, n)
	hood := make([]string, n)
	garage := make([]string, n)
	lotArea := make([]float64, n)

	for i, rec := range records {
		price[i] = rec.SalePrice
		logPrice[i] = math.Log1p(rec.SalePrice)
		qual[i] = strconv.Itoa(rec.OverallQual)
		hood[i] = rec.Neighborhood
		garage[i] = rec.GarageType
		if garage[i] == "" {
			garage[i] = housing.NoGarageLabel
		}
		lotArea[i] = rec.LotArea
	}

	frame := housing.NewFrame("testkit://ames")
	frame.Fingerprint = core.NewDatasetFingerprint([]byte(fmt.Sprintf("testkit:%d:%d", g.config.Seed, n)))
	if err := frame.AddNumericColumn(housing.ColSalePrice, price); err != nil {
		return nil, err
	}
	if err := frame.AddNumericColumn(housing.ColSalePriceLog, logPrice); err != nil {
		return nil, err
	}
	if err := frame.AddCategoricalColumn(housing.ColOverallQual, qual); err != nil {
		return nil, err
	}
	if err := frame.AddCategoricalColumn(housing.ColNeighborhood, hood); err != nil {
		return nil, err
	}
	if err := frame.AddCategoricalColumn(housing.ColGarageType, garage); err != nil {
		return nil, err
	}
	if err := frame.AddNumericColumn("Lot Area", lotArea); err != nil {
		return nil, err
	}
	frame.Seal()
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	return frame, nil
}
