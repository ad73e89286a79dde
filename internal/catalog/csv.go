package catalog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadCSV parses a listing with one (package, function) pair per row after a
// header row. Blank lines are skipped; duplicate rows are returned as-is.
func ReadCSV(r io.Reader) ([]Export, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows []Export
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		line, _ := reader.FieldPos(0)
		if len(record) < 2 {
			return nil, fmt.Errorf("read csv: line %d: expected package,function, got %d field(s)", line, len(record))
		}
		pkg := strings.TrimSpace(record[0])
		fn := strings.TrimSpace(record[1])
		if pkg == "" || fn == "" {
			return nil, fmt.Errorf("read csv: line %d: empty package or function", line)
		}
		rows = append(rows, Export{Package: pkg, Function: fn})
	}
	return rows, nil
}

func readCSVBytes(data []byte) ([]Export, error) {
	return ReadCSV(bytes.NewReader(data))
}
