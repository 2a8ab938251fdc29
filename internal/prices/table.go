package prices

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Quote is the first search hit of one marketplace.
type Quote struct {
	Value *float64 `json:"value"`
	URL   string   `json:"url"`
}

// Entry maps marketplace names to quotes; a nil quote means nothing was found.
type Entry map[string]*Quote

// Table is the content of prices.json keyed by filament id.
type Table map[int]Entry

// LoadFile reads a prices table written by WriteFile.
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prices: read %s: %w", path, err)
	}
	table := Table{}
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("prices: decode %s: %w", path, err)
	}
	return table, nil
}

// WriteFile stores the table atomically.
func WriteFile(path string, table Table) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("prices: encode: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".prices-*.json")
	if err != nil {
		return fmt.Errorf("prices: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("prices: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("prices: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("prices: replace %s: %w", path, err)
	}
	return nil
}

// Lowest returns the cheapest known marketplace price per filament.
func (t Table) Lowest() map[int]float64 {
	out := make(map[int]float64, len(t))
	for id, entry := range t {
		for _, q := range entry {
			if q == nil || q.Value == nil || *q.Value <= 0 {
				continue
			}
			if cur, ok := out[id]; !ok || *q.Value < cur {
				out[id] = *q.Value
			}
		}
	}
	return out
}
