package masker

import (
	"errors"
	"fmt"
	"sort"
)

// ErrPlaceholderCollision reports that a freshly minted placeholder already
// resolves to a different original. Counters are monotonic so this cannot
// happen on a healthy dictionary; when it does (e.g. a corrupted mapping
// file was loaded), the substitution is aborted instead of silently
// overwriting the reverse map and making unmasking lossy.
var ErrPlaceholderCollision = errors.New("placeholder collision")

// Dictionary is the per-document bidirectional masking store: for each
// category a map of normalized original values to placeholders, the flat
// reverse map used for unmasking, and per-category instance counters.
// The reverse side keeps the exact first-seen spelling of each value, not
// the normalized key, so unmasking can restore spellings the key folding
// would otherwise lose (sentence-case and Title Case multi-word spans).
//
// Invariants:
//   - every forward entry has exactly one reverse entry;
//   - placeholders are unique across the whole dictionary;
//   - a category counter equals the number of distinct originals masked
//     under that category, and advances only when a placeholder is minted.
//
// A Dictionary is not safe for concurrent mutation. Each document gets its
// own; merging across documents is a caller concern (see internal/store).
type Dictionary struct {
	mappings map[Category]map[string]string
	reverse  map[string]string // placeholder → first-seen exact spelling
	counters map[Category]int
}

// NewDictionary returns an empty dictionary for one document or session.
func NewDictionary() *Dictionary {
	return &Dictionary{
		mappings: make(map[Category]map[string]string),
		reverse:  make(map[string]string),
		counters: make(map[Category]int),
	}
}

// GetOrCreatePlaceholder returns the placeholder for key under cat,
// minting a new one on first sight. spelling is the exact text of the span
// being masked; it is recorded on the reverse side at mint time (first seen
// wins) and falls back to key when empty. isNew reports whether the
// placeholder was minted by this call; the category counter advances only
// in that case, which guarantees the same original always maps to the same
// placeholder within a document.
func (d *Dictionary) GetOrCreatePlaceholder(cat Category, key, spelling string) (placeholder string, isNew bool, err error) {
	if key == "" {
		return "", false, nil
	}
	if p, ok := d.mappings[cat][key]; ok {
		return p, false, nil
	}
	next := d.counters[cat] + 1
	placeholder = fmt.Sprintf("%s_%d", cat.Tag(), next)
	if existing, ok := d.reverse[placeholder]; ok {
		return "", false, fmt.Errorf("placeholder %s already maps to %q: %w",
			placeholder, existing, ErrPlaceholderCollision)
	}
	if spelling == "" {
		spelling = key
	}
	d.counters[cat] = next
	if d.mappings[cat] == nil {
		d.mappings[cat] = make(map[string]string)
	}
	d.mappings[cat][key] = placeholder
	d.reverse[placeholder] = spelling
	return placeholder, true, nil
}

// Resolve returns the first-seen spelling of the value a placeholder stands
// for. Pure lookup; an unknown placeholder reports ok=false.
func (d *Dictionary) Resolve(placeholder string) (original string, ok bool) {
	original, ok = d.reverse[placeholder]
	return original, ok
}

// Lookup returns the placeholder already assigned to key under cat, if any.
func (d *Dictionary) Lookup(cat Category, key string) (placeholder string, ok bool) {
	placeholder, ok = d.mappings[cat][key]
	return placeholder, ok
}

// Count returns the number of distinct originals masked under cat.
func (d *Dictionary) Count(cat Category) int { return d.counters[cat] }

// Len returns the total number of distinct originals across all categories.
func (d *Dictionary) Len() int { return len(d.reverse) }

// Categories returns the categories with at least one entry, sorted.
func (d *Dictionary) Categories() []Category {
	cats := make([]Category, 0, len(d.mappings))
	for c := range d.mappings {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

// Entries returns a copy of the forward mappings, suitable for persisting.
func (d *Dictionary) Entries() map[Category]map[string]string {
	out := make(map[Category]map[string]string, len(d.mappings))
	for cat, m := range d.mappings {
		cp := make(map[string]string, len(m))
		for k, v := range m {
			cp[k] = v
		}
		out[cat] = cp
	}
	return out
}

// Counters returns a copy of the per-category instance counters.
func (d *Dictionary) Counters() map[Category]int {
	out := make(map[Category]int, len(d.counters))
	for c, n := range d.counters {
		out[c] = n
	}
	return out
}

// Spellings returns a copy of the reverse map: placeholder → first-seen
// exact spelling. Persisted alongside Entries so a restored dictionary
// unmasks to the same text the original run saw.
func (d *Dictionary) Spellings() map[string]string {
	out := make(map[string]string, len(d.reverse))
	for p, s := range d.reverse {
		out[p] = s
	}
	return out
}

// Restore rebuilds a dictionary from persisted forward mappings, reverse
// spellings and counters, re-checking the uniqueness invariant. spellings
// may be nil or partial (artifacts written before spellings were recorded);
// missing ones fall back to the forward key. A duplicate placeholder in the
// input fails with ErrPlaceholderCollision.
func Restore(entries map[Category]map[string]string, spellings map[string]string, counters map[Category]int) (*Dictionary, error) {
	d := NewDictionary()
	keys := make(map[string]string) // placeholder → forward key, for dup detection
	for cat, m := range entries {
		if len(m) == 0 {
			continue
		}
		d.mappings[cat] = make(map[string]string, len(m))
		for original, placeholder := range m {
			if existing, ok := keys[placeholder]; ok && existing != original {
				return nil, fmt.Errorf("restore category %s: placeholder %s maps to both %q and %q: %w",
					cat, placeholder, existing, original, ErrPlaceholderCollision)
			}
			keys[placeholder] = original
			d.mappings[cat][original] = placeholder
			if s, ok := spellings[placeholder]; ok && s != "" {
				d.reverse[placeholder] = s
			} else {
				d.reverse[placeholder] = original
			}
		}
	}
	for cat, n := range counters {
		d.counters[cat] = n
	}
	// Persisted counters may be missing or stale; never let them fall
	// below the number of entries actually present.
	for cat, m := range d.mappings {
		if d.counters[cat] < len(m) {
			d.counters[cat] = len(m)
		}
	}
	return d, nil
}
