// Package ingest loads raw source records from CSV files.
//
// Each source type lives in its own file inside a configured directory
// (users.csv, drivers.csv, ...). The first row is the header; every other row
// becomes one v1.RawRecord with header-driven field mapping. Row order carries
// no meaning downstream.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	v1 "github.com/ridemart-lab/ridemart/internal/api/v1"
)

// sourceFile binds a source type to its file name and natural-key column.
type sourceFile struct {
	source   string
	fileName string
	idColumn string
	required bool
}

var sourceFiles = []sourceFile{
	{source: v1.SourceUser, fileName: "users.csv", idColumn: "user_id", required: true},
	{source: v1.SourceDriver, fileName: "drivers.csv", idColumn: "driver_id", required: true},
	{source: v1.SourceVehicle, fileName: "vehicles.csv", idColumn: "vehicle_id", required: false},
	{source: v1.SourceRide, fileName: "rides.csv", idColumn: "ride_id", required: true},
	{source: v1.SourceRating, fileName: "ratings.csv", idColumn: "rating_id", required: false},
}

// Dataset groups the loaded raw records by source type.
type Dataset struct {
	Users    []v1.RawRecord
	Drivers  []v1.RawRecord
	Vehicles []v1.RawRecord
	Rides    []v1.RawRecord
	Ratings  []v1.RawRecord
}

// LoadDir reads all known source files from dir.
// Optional sources (vehicles, ratings) may be absent; required ones may not.
func LoadDir(dir string) (*Dataset, error) {
	ds := &Dataset{}

	for _, sf := range sourceFiles {
		path := filepath.Join(dir, sf.fileName)

		records, err := loadFile(path, sf)
		if os.IsNotExist(err) {
			if sf.required {
				return nil, fmt.Errorf("required source file %s is missing: %w", sf.fileName, err)
			}
			slog.Info("[Ingest] Optional source file absent, skipping", "file", sf.fileName)
			continue
		}
		if err != nil {
			return nil, err
		}

		switch sf.source {
		case v1.SourceUser:
			ds.Users = records
		case v1.SourceDriver:
			ds.Drivers = records
		case v1.SourceVehicle:
			ds.Vehicles = records
		case v1.SourceRide:
			ds.Rides = records
		case v1.SourceRating:
			ds.Ratings = records
		}

		slog.Info("[Ingest] Loaded source file",
			"file", sf.fileName,
			"source", sf.source,
			"records", len(records))
	}

	return ds, nil
}

// loadFile parses one CSV file into raw records.
// The header names become field keys; the configured id column supplies the
// record's natural key and is kept in Fields as well.
func loadFile(path string, sf sourceFile) ([]v1.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parse(f, sf)
}

func parse(r io.Reader, sf sourceFile) ([]v1.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: file is empty", sf.fileName)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read header: %w", sf.fileName, err)
	}

	idIdx := -1
	for i, col := range header {
		if col == sf.idColumn {
			idIdx = i
			break
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("%s: header is missing id column %q", sf.fileName, sf.idColumn)
	}

	var records []v1.RawRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", sf.fileName, line, err)
		}

		fields := make(map[string]interface{}, len(header))
		for i, col := range header {
			if i < len(row) {
				fields[col] = row[i]
			}
		}

		rec := v1.RawRecord{
			Source: sf.source,
			ID:     row[idIdx],
			Fields: fields,
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", sf.fileName, line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}
