package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/csaltikov/kegger/internal/config"
	"github.com/csaltikov/kegger/internal/kegg"
	"github.com/csaltikov/kegger/internal/report"

	"github.com/charmbracelet/log"
)

// version is the program version. It can be overridden at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

// timestampWriter prefixes each flushed line with an RFC3339 timestamp.
type timestampWriter struct {
	w   io.Writer
	buf bytes.Buffer
	mu  sync.Mutex
}

// Write buffers bytes until a newline is found; for each full line, write a timestamped
// line to the underlying writer. Partial lines are kept in the buffer.
func (t *timestampWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _ := t.buf.Write(p)
	total := n
	for {
		line, err := t.buf.ReadString('\n')
		if err != nil {
			break
		}
		ts := time.Now().Format(time.RFC3339)
		if _, err := t.w.Write([]byte(ts + " " + line)); err != nil {
			return total, err
		}
	}
	return total, nil
}

// terminalWriter wraps an io.Writer and exposes an Fd method so libraries that
// inspect the file descriptor (for TTY detection) can work with wrapped writers.
type terminalWriter struct {
	w  io.Writer
	fd uintptr
}

func (tw *terminalWriter) Write(p []byte) (int, error) { return tw.w.Write(p) }

// Fd exposes the underlying file descriptor (e.g., os.Stderr.Fd()).
func (tw *terminalWriter) Fd() uintptr { return tw.fd }

// applyFlagOverrides merges explicitly-set CLI flags into the config, then
// fills remaining gaps with the flag defaults. Values in config.json win
// over flag defaults but lose to flags the user actually passed.
func applyFlagOverrides(cfg *config.Config, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "org":
			cfg.Organism = f.Value.String()
		case "out":
			cfg.OutputJSON = f.Value.String()
		case "gene-report":
			cfg.GeneReportJSON = f.Value.String()
		}
	})
	if cfg.Organism == "" {
		cfg.Organism = fs.Lookup("org").Value.String()
	}
	if cfg.OutputJSON == "" {
		cfg.OutputJSON = fs.Lookup("out").Value.String()
	}
}

// PathwayRecord is one entry of the output database: the listing row plus
// the cleaned flat-file entry.
type PathwayRecord struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	kegg.Pathway
}

func main() {
	// CLI flags
	flag.String("org", "eco", "KEGG organism code (e.g. eco, hsa)")
	pathwayFlag := flag.String("pathway", "", "fetch a single pathway number (e.g. 00190) instead of the whole organism")
	flag.String("out", "database.json", "output JSON file path")
	flag.String("gene-report", "", "also write a genes-to-pathways report JSON to this path")
	limitFlag := flag.Int("limit", 0, "fetch at most N pathways (0 = all)")
	configFlag := flag.String("config", "", "path to config.json (optional)")
	dryRun := flag.Bool("dry-run", false, "perform a dry run without fetching or writing outputs")
	verbose := flag.Bool("verbose", false, "enable verbose (debug) logging")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println("kegger", version)
		return
	}

	// load config (optional file)
	cfg, _ := config.LoadConfig(*configFlag)

	// merge CLI flags into config (only flags the user passed override config)
	applyFlagOverrides(cfg, flag.CommandLine)

	// configure logger output
	var loggerOut io.Writer = os.Stderr
	var logFileHandle *os.File
	if cfg.LogFile != "" {
		if f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			// write to both stderr and file so running interactively still shows logs
			loggerOut = io.MultiWriter(os.Stderr, f)
			logFileHandle = f
			defer func() { _ = logFileHandle.Close() }()
		}
	}
	// If stderr is a terminal-like device, force colors for libraries that honor FORCE_COLOR.
	if fi, err := os.Stderr.Stat(); err == nil {
		if fi.Mode()&os.ModeCharDevice != 0 {
			_ = os.Setenv("FORCE_COLOR", "1")
		}
	}
	// create logger backed by the timestamping writer and expose Fd so charm.log can detect TTY
	tw := &timestampWriter{w: loggerOut}
	termW := &terminalWriter{w: tw, fd: os.Stderr.Fd()}
	logger := log.New(termW)

	// apply log level from flags/config (flags override config)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		switch strings.ToLower(cfg.LogLevel) {
		case "debug":
			logger.SetLevel(log.DebugLevel)
		case "info", "":
			logger.SetLevel(log.InfoLevel)
		case "warn", "warning":
			logger.SetLevel(log.WarnLevel)
		case "error":
			logger.SetLevel(log.ErrorLevel)
		default:
			logger.SetLevel(log.InfoLevel)
			logger.Warn("unknown log_level in config.json, defaulting to info", "provided", cfg.LogLevel)
		}
	}

	logger.Info("starting kegger", "organism", cfg.Organism, "output_json", cfg.OutputJSON, "log_file", cfg.LogFile, "kegg_cache_path", cfg.KeggCachePath, "kegg_cache_ttl_secs", cfg.KeggCacheTTLSecs)

	// apply cache config
	if cfg.KeggCachePath != "" {
		absPath, aerr := filepath.Abs(cfg.KeggCachePath)
		if aerr == nil {
			kegg.SetCacheFilePath(absPath)
			logger.Info("kegg cache path set from config (absolute)", "path", absPath)
		} else {
			kegg.SetCacheFilePath(cfg.KeggCachePath)
			logger.Info("kegg cache path set from config", "path", cfg.KeggCachePath)
		}
	}
	defer kegg.FlushCache()
	if cfg.KeggCacheTTLSecs > 0 {
		kegg.SetCacheTTLSeconds(cfg.KeggCacheTTLSecs)
	}

	ctx := context.Background()

	// resolve the pathway listing to fetch
	var infos []kegg.PathwayInfo
	if *pathwayFlag != "" {
		infos = []kegg.PathwayInfo{{ID: cfg.Organism + *pathwayFlag}}
	} else {
		listCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		listed, err := kegg.ListPathways(listCtx, cfg.Organism)
		cancel()
		if err != nil {
			logger.Fatal("failed to list pathways", "organism", cfg.Organism, "err", err)
		}
		infos = listed
	}
	// older KEGG listings prefix IDs with "path:"
	for i := range infos {
		infos[i].ID = strings.TrimPrefix(infos[i].ID, "path:")
	}
	if *limitFlag > 0 && len(infos) > *limitFlag {
		infos = infos[:*limitFlag]
	}
	logger.Info("resolved pathway listing", "organism", cfg.Organism, "pathways", len(infos))

	if *dryRun {
		logger.Info("dry-run: would fetch pathways and write output JSON", "pathways", len(infos), "path", cfg.OutputJSON)
		return
	}

	// prepare concurrency/qps/batch defaults
	concurrency := cfg.KeggConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	qps := cfg.KeggQPS
	if qps <= 0 {
		qps = 3
	}
	batchSize := cfg.KeggBatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ID)
	}

	logger.Info("starting kegg batch fetch", "pathways", len(ids), "concurrency", concurrency, "qps", qps, "batch_size", batchSize)

	// simple rate limiter: ticker at qps (use NewTicker to avoid leaking goroutine)
	ticker := time.NewTicker(time.Second / time.Duration(qps))
	defer ticker.Stop()

	// worker pool over batches
	tasks := make(chan []string)
	results := make(chan map[string]*kegg.Pathway)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range tasks {
				m := make(map[string]*kegg.Pathway, len(batch))
				for _, id := range batch {
					<-ticker.C // rate limit per request
					fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
					p, err := kegg.GetPathway(fetchCtx, id)
					cancel()
					if err != nil {
						logger.Warn("pathway fetch error", "id", id, "err", err)
						continue
					}
					m[id] = p
				}
				results <- m
			}
		}()
	}

	// dispatch batches
	go func() {
		for i := 0; i < len(ids); i += batchSize {
			end := i + batchSize
			if end > len(ids) {
				end = len(ids)
			}
			tasks <- ids[i:end]
		}
		close(tasks)
	}()

	// collect results
	received := 0
	expected := (len(ids) + batchSize - 1) / batchSize
	merged := map[string]*kegg.Pathway{}
	for received < expected {
		m := <-results
		for k, v := range m {
			merged[k] = v
		}
		received++
	}
	close(results)
	wg.Wait()

	// assemble records in listing order
	records := make([]PathwayRecord, 0, len(infos))
	for _, info := range infos {
		p, ok := merged[info.ID]
		if !ok {
			continue
		}
		records = append(records, PathwayRecord{ID: info.ID, Description: info.Description, Pathway: *p})
	}
	logger.Info("fetched pathways", "requested", len(infos), "fetched", len(records))

	jsonData, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		logger.Fatal("json marshal failed", "err", err)
	}
	outPath := "database.json"
	if cfg.OutputJSON != "" {
		outPath = cfg.OutputJSON
	}
	if err := os.WriteFile(outPath, jsonData, 0o644); err != nil {
		logger.Error("failed to write output JSON", "path", outPath, "err", err)
	} else {
		logger.Info("wrote output JSON", "path", outPath, "pathways", len(records))
	}

	// optional genes-to-pathways report
	if cfg.GeneReportJSON != "" {
		reportCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		links, err := kegg.LinkGenes(reportCtx, cfg.Organism)
		if err != nil {
			logger.Fatal("failed to link genes to pathways", "organism", cfg.Organism, "err", err)
		}
		annotations, err := kegg.ListGenes(reportCtx, cfg.Organism)
		if err != nil {
			logger.Fatal("failed to list gene annotations", "organism", cfg.Organism, "err", err)
		}
		rows := report.BuildGeneReport(links, infos, annotations)
		reportData, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			logger.Fatal("json marshal failed", "err", err)
		}
		if err := os.WriteFile(cfg.GeneReportJSON, reportData, 0o644); err != nil {
			logger.Error("failed to write gene report", "path", cfg.GeneReportJSON, "err", err)
		} else {
			logger.Info("wrote gene report", "path", cfg.GeneReportJSON, "rows", len(rows))
		}
	}
}
