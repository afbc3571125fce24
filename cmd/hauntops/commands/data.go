package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hauntops-backend/etl/fieldmap"
)

// readRows loads a portal export, either a JSON array of objects or
// a CSV with a header row. CSV headers are renamed up front, JSON
// keys are renamed later by the batch runner.
func readRows(path string, mapping fieldmap.Mapping) ([]map[string]any, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCsvRows(contents, mapping)
	default:
		return readJsonRows(contents)
	}
}

func readJsonRows(contents []byte) ([]map[string]any, error) {
	var rows []map[string]any
	if err := json.Unmarshal(contents, &rows); err == nil {
		return rows, nil
	}

	// some portal exports wrap the list in a single-key envelope
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(contents, &envelope); err != nil {
		return nil, fmt.Errorf("not a JSON array or object: %w", err)
	}
	for _, raw := range envelope {
		var rows []map[string]any
		if err := json.Unmarshal(raw, &rows); err == nil {
			return rows, nil
		}
	}
	return nil, fmt.Errorf("no row list found in JSON object")
}

func readCsvRows(contents []byte, mapping fieldmap.Mapping) ([]map[string]any, error) {
	reader := csv.NewReader(strings.NewReader(string(contents)))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv file has no header row")
	}

	header := mapping.MapHeader(records[0])
	var rows []map[string]any
	for _, rec := range records[1:] {
		row := make(map[string]any, len(header))
		for i, value := range rec {
			if i >= len(header) {
				break
			}
			row[header[i]] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}
