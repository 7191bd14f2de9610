package config

import (
	"encoding/json"
	"os"
)

type Config struct {
	Organism         string `json:"organism"`
	OutputJSON       string `json:"output_json"`
	GeneReportJSON   string `json:"gene_report_json"`
	LogFile          string `json:"log_file"`
	LogLevel         string `json:"log_level"`
	KeggCachePath    string `json:"kegg_cache_path"`
	KeggCacheTTLSecs int64  `json:"kegg_cache_ttl_seconds"`
	KeggConcurrency  int    `json:"kegg_concurrency"`
	KeggQPS          int    `json:"kegg_qps"`
	KeggBatchSize    int    `json:"kegg_batch_size"`
}

// LoadConfig loads a JSON config from the given path. If path is empty, looks for ./config.json.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}
	f, err := os.Open(path)
	if err != nil {
		// not fatal: return defaults
		return &Config{}, nil
	}
	defer f.Close()
	var c Config
	dec := json.NewDecoder(f)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
