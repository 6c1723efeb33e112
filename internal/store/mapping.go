package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"ukr-pii-masker/internal/masker"
)

// mappingVersion identifies the artifact schema.
const mappingVersion = "1"

// Pair is one original↔placeholder correspondence inside a category.
// Original is the normalized dictionary key; Spelling is the exact
// first-seen text of the span, used to restore casing the key folds away.
// Spelling is omitted when it equals the key.
type Pair struct {
	Original    string `json:"original"`
	Placeholder string `json:"placeholder"`
	Spelling    string `json:"spelling,omitempty"`
}

// MappingFile is the on-disk shape of a masking dictionary: per category an
// ordered list of pairs plus the instance counters, reconstructible into
// both the forward and reverse maps. It is written next to each masked
// output and is the only state unmasking needs.
type MappingFile struct {
	Version    string            `json:"version"`
	RunID      string            `json:"runId"`
	CreatedAt  time.Time         `json:"createdAt"`
	Categories map[string][]Pair `json:"categories"`
	Counters   map[string]int    `json:"counters"`
}

// SaveMapping writes the dictionary to path as a mapping artifact.
func SaveMapping(path string, d *masker.Dictionary, runID string) error {
	mf := MappingFile{
		Version:    mappingVersion,
		RunID:      runID,
		CreatedAt:  time.Now().UTC(),
		Categories: make(map[string][]Pair),
		Counters:   make(map[string]int),
	}
	spellings := d.Spellings()
	for cat, m := range d.Entries() {
		pairs := make([]Pair, 0, len(m))
		for original, placeholder := range m {
			p := Pair{Original: original, Placeholder: placeholder}
			if s := spellings[placeholder]; s != original {
				p.Spelling = s
			}
			pairs = append(pairs, p)
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].Placeholder < pairs[j].Placeholder })
		mf.Categories[string(cat)] = pairs
	}
	for cat, n := range d.Counters() {
		mf.Counters[string(cat)] = n
	}

	data, err := json.MarshalIndent(mf, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write mapping %q: %w", path, err)
	}
	return nil
}

// LoadMapping reads a mapping artifact and rebuilds the dictionary.
func LoadMapping(path string) (*masker.Dictionary, *MappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read mapping %q: %w", path, err)
	}
	var mf MappingFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, nil, fmt.Errorf("parse mapping %q: %w", path, err)
	}

	entries := make(map[masker.Category]map[string]string, len(mf.Categories))
	spellings := make(map[string]string)
	for cat, pairs := range mf.Categories {
		m := make(map[string]string, len(pairs))
		for _, p := range pairs {
			m[p.Original] = p.Placeholder
			if p.Spelling != "" {
				spellings[p.Placeholder] = p.Spelling
			}
		}
		entries[masker.Category(cat)] = m
	}
	counters := make(map[masker.Category]int, len(mf.Counters))
	for cat, n := range mf.Counters {
		counters[masker.Category(cat)] = n
	}

	d, err := masker.Restore(entries, spellings, counters)
	if err != nil {
		return nil, nil, fmt.Errorf("rebuild dictionary from %q: %w", path, err)
	}
	return d, &mf, nil
}
