// Command masker de-identifies PII in Ukrainian-language text files.
//
// Masking replaces names, patronymics, ranks, identifiers, unit codes,
// dates and order numbers with reversible placeholder tokens and writes
// two files: the masked document and the mapping artifact needed to
// restore it later.
//
// Usage:
//
//	# Mask a document
//	masker -in report.txt
//	→ output_20250101_120000.txt + masking_map_20250101_120000.json
//
//	# Restore it (the mapping file is found automatically by timestamp)
//	masker -unmask output_20250101_120000.txt
//
//	# Restore with an explicit mapping file
//	masker -unmask masked.txt -map masking_map_20250101_120000.json
//
//	# Verify a mapping file's integrity
//	masker -check masking_map_20250101_120000.json
//
// Configuration comes from masker-config.yaml and MASKER_* env vars.
// When a store path is configured, recurring values keep the same
// placeholders across runs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"ukr-pii-masker/internal/config"
	"ukr-pii-masker/internal/logger"
	"ukr-pii-masker/internal/masker"
	"ukr-pii-masker/internal/metrics"
	"ukr-pii-masker/internal/store"
)

const timestampLayout = "20060102_150405"

func main() {
	var (
		inPath     = flag.String("in", "", "text file to mask")
		unmaskPath = flag.String("unmask", "", "masked file to restore")
		mapPath    = flag.String("map", "", "mapping file for -unmask (default: matched by timestamp)")
		checkPath  = flag.String("check", "", "mapping file to verify")
		outDir     = flag.String("out", "", "output directory (overrides config)")
	)
	flag.Parse()

	cfg := config.Load()
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	log := logger.New("MASKER", cfg.LogLevel)
	met := metrics.New()

	switch {
	case *inPath != "":
		runMask(cfg, log, met, *inPath)
	case *unmaskPath != "":
		runUnmask(cfg, log, met, *unmaskPath, *mapPath)
	case *checkPath != "":
		runCheck(log, *checkPath)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runMask(cfg *config.Config, log *logger.Logger, met *metrics.Metrics, inPath string) {
	data, err := os.ReadFile(inPath)
	if err != nil {
		log.Fatalf("read_input", "%v", err)
	}

	// Seed the dictionary from the cross-run store when one is configured,
	// so recurring values get the placeholders they had in earlier runs.
	dict := masker.NewDictionary()
	var st store.Store
	if cfg.StorePath != "" {
		st, err = store.Open(cfg.StorePath)
		if err != nil {
			log.Fatalf("open_store", "%v", err)
		}
		defer st.Close() //nolint:errcheck // best-effort close
		if dict, err = st.Load(); err != nil {
			log.Fatalf("load_store", "%v", err)
		}
		log.Infof("store_seeded", "%d known values from %s", dict.Len(), cfg.StorePath)
	}

	m := masker.New(masker.Options{
		PreserveCase:    cfg.PreserveCase,
		MaskNames:       cfg.MaskNames,
		MaskRanks:       cfg.MaskRanks,
		MaskIdentifiers: cfg.MaskIdentifiers,
		MaskDates:       cfg.MaskDates,
	}, log, met)

	start := time.Now()
	masked, err := m.MaskText(string(data), dict)
	met.RecordMaskLatency(time.Since(start))
	if err != nil {
		// Collisions abort the affected substitutions; the rest of the
		// document is still masked, so surface the error but keep going.
		log.Errorf("mask_pass", "%v", err)
	}
	met.DocumentsMasked.Add(1)

	ts := time.Now().Format(timestampLayout)
	runID := uuid.NewString()
	outPath := filepath.Join(cfg.OutputDir, "output_"+ts+".txt")
	mapPath := filepath.Join(cfg.OutputDir, "masking_map_"+ts+".json")

	if err := os.WriteFile(outPath, []byte(masked), 0600); err != nil {
		log.Fatalf("write_output", "%v", err)
	}
	if err := store.SaveMapping(mapPath, dict, runID); err != nil {
		log.Fatalf("write_mapping", "%v", err)
	}
	if st != nil {
		if err := st.Save(dict); err != nil {
			log.Errorf("save_store", "%v", err)
		}
	}

	log.Infof("mask_done", "%s → %s (%d distinct values)", inPath, outPath, dict.Len())
	printReport(runID, outPath, mapPath, met)
}

func runUnmask(cfg *config.Config, log *logger.Logger, met *metrics.Metrics, maskedPath, mapPath string) {
	if mapPath == "" {
		var err error
		mapPath, err = findMappingFor(maskedPath)
		if err != nil {
			log.Fatalf("find_mapping", "%v", err)
		}
		log.Infof("find_mapping", "using %s", mapPath)
	}

	dict, meta, err := store.LoadMapping(mapPath)
	if err != nil {
		log.Fatalf("load_mapping", "%v", err)
	}
	data, err := os.ReadFile(maskedPath)
	if err != nil {
		log.Fatalf("read_masked", "%v", err)
	}

	m := masker.New(masker.DefaultOptions(), log, met)
	restored := m.UnmaskText(string(data), dict)
	met.DocumentsUnmasked.Add(1)

	outPath := filepath.Join(cfg.OutputDir, "recovered_"+time.Now().Format(timestampLayout)+".txt")
	if err := os.WriteFile(outPath, []byte(restored), 0600); err != nil {
		log.Fatalf("write_recovered", "%v", err)
	}
	log.Infof("unmask_done", "%s → %s (run %s)", maskedPath, outPath, meta.RunID)
	printReport(meta.RunID, outPath, mapPath, met)
}

// runCheck verifies a mapping artifact without touching any document:
// parse, structural diagnostics, then a full dictionary rebuild (which
// enforces the placeholder uniqueness invariant). Exits non-zero when the
// file cannot safely drive an unmask run.
func runCheck(log *logger.Logger, mapPath string) {
	data, err := os.ReadFile(mapPath)
	if err != nil {
		log.Fatalf("check_mapping", "%v", err)
	}
	var mf store.MappingFile
	if err := json.Unmarshal(data, &mf); err != nil {
		log.Fatalf("check_mapping", "parse %s: %v", mapPath, err)
	}

	problems := checkMapping(&mf)
	for _, p := range problems {
		log.Errorf("check_mapping", "%s", p)
	}
	if len(problems) > 0 {
		log.Errorf("check_mapping", "%s: %d problem(s)", mapPath, len(problems))
		os.Exit(1)
	}

	dict, _, err := store.LoadMapping(mapPath)
	if err != nil {
		log.Fatalf("check_mapping", "%v", err)
	}
	log.Infof("check_mapping", "%s ok: run %s, %d entries across %d categories",
		mapPath, mf.RunID, dict.Len(), len(mf.Categories))
}

// checkMapping reports structural defects in a mapping artifact: duplicate
// originals or placeholders, placeholders carrying the wrong category tag,
// and counters lagging the entries they are supposed to cover.
func checkMapping(mf *store.MappingFile) []string {
	var problems []string
	claimed := make(map[string]string) // placeholder → original
	for cat, pairs := range mf.Categories {
		tag := strings.ToUpper(cat) + "_"
		originals := make(map[string]bool, len(pairs))
		for _, p := range pairs {
			if !strings.HasPrefix(p.Placeholder, tag) {
				problems = append(problems,
					fmt.Sprintf("category %s: placeholder %s lacks the %s prefix", cat, p.Placeholder, tag))
			}
			if originals[p.Original] {
				problems = append(problems,
					fmt.Sprintf("category %s: original %q listed twice", cat, p.Original))
			}
			originals[p.Original] = true
			if prev, ok := claimed[p.Placeholder]; ok {
				problems = append(problems,
					fmt.Sprintf("placeholder %s claimed by both %q and %q", p.Placeholder, prev, p.Original))
			}
			claimed[p.Placeholder] = p.Original
		}
		if mf.Counters[cat] < len(pairs) {
			problems = append(problems,
				fmt.Sprintf("category %s: counter %d below its %d entries", cat, mf.Counters[cat], len(pairs)))
		}
	}
	return problems
}

// findMappingFor locates the mapping artifact for a masked output file:
// first by the timestamp embedded in the filename, then by falling back
// to the newest masking_map_*.json in the same directory.
func findMappingFor(maskedPath string) (string, error) {
	dir := filepath.Dir(maskedPath)

	if ts := timestampFrom(filepath.Base(maskedPath)); ts != "" {
		candidate := filepath.Join(dir, "masking_map_"+ts+".json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	matches, err := filepath.Glob(filepath.Join(dir, "masking_map_*.json"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no mapping file found next to %s", maskedPath)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil // names embed timestamps, last is newest
}

// timestampFrom extracts the trailing 20060102_150405 timestamp from
// filenames like output_20250101_120000.txt or masking_map_*.json.
// Returns "" when none is present.
func timestampFrom(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if len(base) < len(timestampLayout) {
		return ""
	}
	ts := base[len(base)-len(timestampLayout):]
	if _, err := time.Parse(timestampLayout, ts); err != nil {
		return ""
	}
	return ts
}

func printReport(runID, outPath, mapPath string, met *metrics.Metrics) {
	snap := met.Snapshot()
	report, err := json.MarshalIndent(snap, "  ", "  ")
	if err != nil {
		report = []byte("{}")
	}
	fmt.Printf(`
╔══════════════════════════════════════════════════════╗
║          Ukrainian PII Masker                        ║
╚══════════════════════════════════════════════════════╝
  Run ID   : %s
  Output   : %s
  Mapping  : %s
  Report   : %s
`, runID, outPath, mapPath, report)
}
