// Package importer reads blocked sources in bulk from spreadsheets.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/domain"
)

// Default column indices (0-based) when the sheet has no header row.
const (
	colID   = 0
	colName = 1
)

// ErrEmptyWorkbook is returned for a workbook without sheets.
var ErrEmptyWorkbook = errors.New("workbook has no sheets")

// RowError reports a row that could not be imported.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Result is the outcome of reading a workbook.
type Result struct {
	Sources []domain.Source `json:"sources"`
	Errors  []RowError      `json:"errors,omitempty"`
}

// ReadSources reads {id, name} pairs from the first sheet. A first row whose
// cells read "id" and "name" is treated as a header and may place the
// columns in any order. Rows with an empty id are reported and skipped;
// duplicate ids keep their first occurrence.
func ReadSources(r io.Reader) (Result, error) {
	rows, err := openExcelRows(r)
	if err != nil {
		return Result{}, err
	}

	idCol, nameCol, start := colID, colName, 0
	if len(rows) > 0 {
		if i, n, ok := headerColumns(rows[0]); ok {
			idCol, nameCol, start = i, n, 1
		}
	}

	var res Result
	seen := make(map[string]struct{})
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		id := cell(row, idCol)
		if id == "" {
			res.Errors = append(res.Errors, RowError{Row: i + 1, Error: "id is required"})
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		name := cell(row, nameCol)
		if name == "" {
			name = id
		}
		res.Sources = append(res.Sources, domain.Source{ID: id, Name: name})
	}
	return res, nil
}

// Merge appends sources to existing, skipping ids already present. It
// returns the merged list and the number of sources added.
func Merge(existing, sources []domain.Source) ([]domain.Source, int) {
	seen := make(map[string]struct{}, len(existing))
	merged := make([]domain.Source, 0, len(existing)+len(sources))
	for _, s := range existing {
		seen[s.ID] = struct{}{}
		merged = append(merged, s)
	}

	added := 0
	for _, s := range sources {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		merged = append(merged, s)
		added++
	}
	return merged, added
}

func openExcelRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if rows == nil {
		rows = [][]string{}
	}
	return rows, nil
}

func headerColumns(row []string) (idCol, nameCol int, ok bool) {
	idCol, nameCol = -1, -1
	for i, v := range row {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "id":
			idCol = i
		case "name":
			nameCol = i
		}
	}
	if idCol < 0 {
		return colID, colName, false
	}
	if nameCol < 0 {
		nameCol = len(row)
	}
	return idCol, nameCol, true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
