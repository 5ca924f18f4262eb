package stats

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// csvRow is the flat, gocsv-taggable projection of a GlobalStats
// snapshot. Shaped after the teacher's WindowStats/telemetry.csv
// record: one row per tick, top species flattened into fixed columns
// rather than a nested struct, since gocsv only marshals flat fields.
type csvRow struct {
	Tick          uint64 `csv:"tick"`
	Population    uint32 `csv:"population"`
	TotalEnergy   uint64 `csv:"total_energy"`
	MaxEnergy     uint32 `csv:"max_energy"`
	TopSpeciesID  uint16 `csv:"top_species_id"`
	TopSpeciesPop uint32 `csv:"top_species_count"`
}

func toCSVRow(s GlobalStats) csvRow {
	row := csvRow{
		Tick:        s.Tick,
		Population:  s.Population,
		TotalEnergy: s.TotalEnergy,
		MaxEnergy:   s.MaxEnergy,
	}
	for _, sc := range s.TopSpecies {
		if sc.Count > row.TopSpeciesPop {
			row.TopSpeciesID = sc.SpeciesID
			row.TopSpeciesPop = sc.Count
		}
	}
	return row
}

// CSVWriter streams GlobalStats snapshots to a CSV file, one row per
// FinishTick call, mirroring the teacher's OutputManager pattern of a
// header written once then append-only rows after.
type CSVWriter struct {
	file          *os.File
	headerWritten bool
}

// NewCSVWriter creates (or truncates) the file at path for writing.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("stats: creating csv sink: %w", err)
	}
	return &CSVWriter{file: f}, nil
}

// WriteRow appends one stats snapshot as a CSV row.
func (w *CSVWriter) WriteRow(s GlobalStats) error {
	if w == nil {
		return nil
	}
	rows := []csvRow{toCSVRow(s)}
	if !w.headerWritten {
		if err := gocsv.Marshal(rows, w.file); err != nil {
			return fmt.Errorf("stats: writing csv header+row: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, w.file); err != nil {
		return fmt.Errorf("stats: writing csv row: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *CSVWriter) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}
