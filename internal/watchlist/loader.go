// Package watchlist reads the symbol → company name file that drives a run.
package watchlist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Adda-Baaj/stock-alerts/internal/domain"
)

// Column names are a fixed contract with the watchlist file.
const (
	SymbolColumn  = "Stock Symbol"
	CompanyColumn = "Company Name"
)

// Load reads the watchlist CSV at path and returns its rows in file order.
// Duplicate symbols are kept.
func Load(path string) ([]domain.WatchlistEntry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, &domain.LoadError{Path: path, Err: errors.New("watchlist file path is empty")}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: fmt.Errorf("open watchlist file: %w", err)}
	}
	defer file.Close()

	entries, err := Parse(file)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: err}
	}
	return entries, nil
}

// Parse decodes watchlist rows from r. The header row must name both required columns.
func Parse(r io.Reader) ([]domain.WatchlistEntry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("watchlist file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	symbolIdx, companyIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case SymbolColumn:
			symbolIdx = i
		case CompanyColumn:
			companyIdx = i
		}
	}

	var missing []string
	if symbolIdx < 0 {
		missing = append(missing, SymbolColumn)
	}
	if companyIdx < 0 {
		missing = append(missing, CompanyColumn)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var entries []domain.WatchlistEntry
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		symbol := field(record, symbolIdx)
		if symbol == "" {
			return nil, fmt.Errorf("line %d: %q is empty", line, SymbolColumn)
		}

		entries = append(entries, domain.WatchlistEntry{
			Symbol:      symbol,
			CompanyName: field(record, companyIdx),
		})
	}

	return entries, nil
}

// field returns the trimmed value at idx, or "" for short rows.
func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
