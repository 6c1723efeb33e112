// Package metrics provides lightweight counters for masking runs.
//
// Counters use sync/atomic so the substitution hot path incurs no mutex
// contention. The per-category maps are pre-populated in New(), so
// Snapshot() can iterate a fixed set without racing on map writes.
// A Snapshot is JSON-serialisable and doubles as the run report the CLI
// prints after processing a document.
package metrics

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// knownCategories lists every category tag the engine can emit. Keep in
// sync with the Category constants in internal/masker.
var knownCategories = []string{
	"surname", "name", "patronymic", "patronymic_male", "patronymic_female",
	"rank", "ipn", "passport_id", "military_id", "military_unit",
	"date", "order_number",
}

// Metrics holds the runtime counters of one masking tool instance.
// The zero value is not valid for per-category counters — use New().
type Metrics struct {
	// Document counters
	DocumentsMasked   atomic.Int64
	DocumentsUnmasked atomic.Int64

	// Substitution volume
	SpansReplaced  atomic.Int64
	TokensRestored atomic.Int64

	// Recorded fallbacks and failures
	GenderFallbacks atomic.Int64 // unknown gender → neutral patronymic tag
	UnknownTokens   atomic.Int64 // placeholders left verbatim at unmask
	Collisions      atomic.Int64 // aborted substitutions

	// Per-category counters. Maps are written only in New(); concurrent
	// reads are safe without a lock.
	replaced   map[string]*atomic.Int64
	dictHits   map[string]*atomic.Int64 // repeat value, placeholder reused
	dictMisses map[string]*atomic.Int64 // new value, placeholder minted

	maskMu   sync.Mutex
	maskStat latencyStats

	startTime time.Time
}

// New returns a Metrics with per-category maps pre-populated.
func New() *Metrics {
	m := &Metrics{
		startTime:  time.Now(),
		replaced:   make(map[string]*atomic.Int64, len(knownCategories)),
		dictHits:   make(map[string]*atomic.Int64, len(knownCategories)),
		dictMisses: make(map[string]*atomic.Int64, len(knownCategories)),
	}
	for _, c := range knownCategories {
		m.replaced[c] = new(atomic.Int64)
		m.dictHits[c] = new(atomic.Int64)
		m.dictMisses[c] = new(atomic.Int64)
	}
	return m
}

// RecordReplacement counts one substitution under category. isNew reports
// whether the placeholder was minted (dictionary miss) or reused (hit).
// Unknown categories are silently ignored.
func (m *Metrics) RecordReplacement(category string, isNew bool) {
	m.SpansReplaced.Add(1)
	if c, ok := m.replaced[category]; ok {
		c.Add(1)
	}
	if isNew {
		if c, ok := m.dictMisses[category]; ok {
			c.Add(1)
		}
	} else if c, ok := m.dictHits[category]; ok {
		c.Add(1)
	}
}

// RecordMaskLatency records the duration of one whole-document mask pass.
func (m *Metrics) RecordMaskLatency(d time.Duration) {
	m.maskMu.Lock()
	m.maskStat.record(float64(d.Microseconds()) / 1000.0)
	m.maskMu.Unlock()
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() Snapshot {
	m.maskMu.Lock()
	mask := m.maskStat.snapshot()
	m.maskMu.Unlock()

	collect := func(src map[string]*atomic.Int64) map[string]int64 {
		out := make(map[string]int64, len(src))
		for c, v := range src {
			if n := v.Load(); n > 0 {
				out[c] = n
			}
		}
		return out
	}

	return Snapshot{
		Documents: DocumentSnapshot{
			Masked:   m.DocumentsMasked.Load(),
			Unmasked: m.DocumentsUnmasked.Load(),
		},
		Spans: SpanSnapshot{
			Replaced:   m.SpansReplaced.Load(),
			Restored:   m.TokensRestored.Load(),
			ByCategory: collect(m.replaced),
			DictHits:   collect(m.dictHits),
			DictMisses: collect(m.dictMisses),
		},
		Fallbacks: FallbackSnapshot{
			UnknownGender: m.GenderFallbacks.Load(),
			UnknownTokens: m.UnknownTokens.Load(),
		},
		Collisions: m.Collisions.Load(),
		Latency: LatencyGroup{
			MaskMs: mask,
		},
		UptimeSecs: time.Since(m.startTime).Seconds(),
	}
}

// --- JSON-serialisable snapshot types ---

// Snapshot is a point-in-time view of all counters; the CLI prints it as
// the run report.
type Snapshot struct {
	Documents  DocumentSnapshot `json:"documents"`
	Spans      SpanSnapshot     `json:"spans"`
	Fallbacks  FallbackSnapshot `json:"fallbacks"`
	Collisions int64            `json:"collisions"`
	Latency    LatencyGroup     `json:"latency"`
	UptimeSecs float64          `json:"uptimeSecs"`
}

// DocumentSnapshot holds document-level counters.
type DocumentSnapshot struct {
	Masked   int64 `json:"masked"`
	Unmasked int64 `json:"unmasked"`
}

// SpanSnapshot holds substitution volume and dictionary effectiveness.
type SpanSnapshot struct {
	Replaced int64 `json:"replaced"`
	Restored int64 `json:"restored"`

	// Only categories with non-zero counts appear.
	ByCategory map[string]int64 `json:"byCategory,omitempty"`
	DictHits   map[string]int64 `json:"dictHits,omitempty"`
	DictMisses map[string]int64 `json:"dictMisses,omitempty"`
}

// FallbackSnapshot holds recorded (non-fatal) fallback counts.
type FallbackSnapshot struct {
	UnknownGender int64 `json:"unknownGender"`
	UnknownTokens int64 `json:"unknownTokens"`
}

// LatencyGroup groups latency dimensions.
type LatencyGroup struct {
	MaskMs LatencySnapshot `json:"maskMs"`
}

// LatencySnapshot is a min/mean/max summary for one dimension.
type LatencySnapshot struct {
	Count  int64   `json:"count"`
	MinMs  float64 `json:"minMs"`
	MeanMs float64 `json:"meanMs"`
	MaxMs  float64 `json:"maxMs"`
}

// --- internal accumulator ---

type latencyStats struct {
	count int64
	sum   float64
	min   float64
	max   float64
}

func (s *latencyStats) record(ms float64) {
	s.count++
	s.sum += ms
	if s.count == 1 || ms < s.min {
		s.min = ms
	}
	if ms > s.max {
		s.max = ms
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func (s *latencyStats) snapshot() LatencySnapshot {
	if s.count == 0 {
		return LatencySnapshot{}
	}
	return LatencySnapshot{
		Count:  s.count,
		MinMs:  round2(s.min),
		MeanMs: round2(s.sum / float64(s.count)),
		MaxMs:  round2(s.max),
	}
}
