package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadCSV parses CSV data into a Dataset. The first record is the header
// row. Empty fields become Null; everything else stays String. Typing is
// the coercion layer's job, at rule-evaluation time, not load time.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows surface as shape errors below

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV headers: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	var rows []map[string]any
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV line %d: %w", line, err)
		}
		if len(record) > len(headers) {
			return nil, fmt.Errorf("CSV line %d has %d fields, header has %d", line, len(record), len(headers))
		}

		row := make(map[string]any, len(headers))
		for i, h := range headers {
			if i >= len(record) || record[i] == "" {
				row[h] = nil
				continue
			}
			row[h] = record[i]
		}
		rows = append(rows, row)
	}

	return NewDataset(headers, rows)
}

// LoadCSVFile reads a Dataset from a CSV file on disk.
func LoadCSVFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	ds, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ds, nil
}
