package kegg

// Package kegg is a client for the KEGG REST API (https://rest.kegg.jp).
// Responses are cached on disk (see cache.go) and retried on transient
// failures.

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/csaltikov/kegger/internal/flatfile"

	"k8s.io/apimachinery/pkg/util/sets"
)

const baseURL = "https://rest.kegg.jp"

// httpClient performs requests; tests may replace it with a mock transport.
var httpClient = &http.Client{Timeout: 20 * time.Second}

// databaseSet holds the database names accepted by the list endpoint.
// See https://www.kegg.jp/kegg/rest/keggapi.html
var databaseSet = sets.New[string](
	"pathway", "brite", "module", "ko", "genome", "vg", "vp", "ag",
	"compound", "glycan", "reaction", "rclass", "enzyme", "network",
	"variant", "disease", "drug", "dgroup", "organism",
)

// httpStatusMap explains the error statuses documented for the KEGG API.
var httpStatusMap = map[int]string{
	400: "bad request (syntax error in the query)",
	404: "not found (no such database or entry)",
}

// FetchError reports a non-200 response from the KEGG API.
type FetchError struct {
	Status  int
	Message string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("kegg: request failed with status %d: %s", e.Status, e.Message)
}

// sleepCtx waits for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// fetch performs a GET against the KEGG API with caching and retries.
// 429 responses honor Retry-After; other errors back off linearly.
func fetch(ctx context.Context, url string) (string, error) {
	if body, ok := getCached(url); ok {
		return body, nil
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", "kegger/1.0 (https://github.com/csaltikov/kegger)")
		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			if serr := sleepCtx(ctx, time.Duration(attempt*300)*time.Millisecond); serr != nil {
				return "", serr
			}
			continue
		}
		if resp.StatusCode == 200 {
			data, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return "", err
			}
			body := string(data)
			setCached(url, body)
			return body, nil
		}
		if resp.StatusCode == 429 {
			lastErr = fmt.Errorf("kegg: rate limited (429)")
			wait := time.Duration(attempt*500) * time.Millisecond
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, perr := strconv.Atoi(ra); perr == nil {
					wait = time.Duration(secs) * time.Second
				}
			}
			resp.Body.Close()
			if serr := sleepCtx(ctx, wait); serr != nil {
				return "", serr
			}
			continue
		}
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = httpStatusMap[resp.StatusCode]
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &FetchError{Status: resp.StatusCode, Message: msg}
	}
	return "", lastErr
}

// Get retrieves one entry (pathway, module, orthology, ...) in flat-file
// form and parses it.
func Get(ctx context.Context, id string) (*flatfile.Record, error) {
	text, err := fetch(ctx, baseURL+"/get/"+id)
	if err != nil {
		return nil, err
	}
	rec, err := flatfile.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("kegg: entry %s: %w", id, err)
	}
	return rec, nil
}

// GetModule retrieves a module entry by its M number.
func GetModule(ctx context.Context, id string) (*flatfile.Record, error) {
	return Get(ctx, "md:"+id)
}

// GetPathway retrieves a pathway entry (e.g. "eco00190") and normalizes it.
func GetPathway(ctx context.Context, id string) (*Pathway, error) {
	rec, err := Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return Clean(rec), nil
}

// List retrieves the raw tab-separated listing of a database, optionally
// restricted to an organism. The database name is validated before any
// request is made.
func List(ctx context.Context, database, org string) (string, error) {
	if !databaseSet.Has(database) {
		return "", fmt.Errorf("kegg: unknown database %q", database)
	}
	url := baseURL + "/list/" + database
	if org != "" {
		url += "/" + org
	}
	return fetch(ctx, url)
}

// PathwayInfo is one row of a pathway listing.
type PathwayInfo struct {
	ID          string `json:"pathid"`
	Description string `json:"description"`
}

// ListPathways returns every pathway of an organism with its description.
func ListPathways(ctx context.Context, org string) ([]PathwayInfo, error) {
	text, err := List(ctx, "pathway", org)
	if err != nil {
		return nil, err
	}
	var out []PathwayInfo
	for _, row := range splitRows(text) {
		info := PathwayInfo{ID: row[0]}
		if len(row) > 1 {
			info.Description = row[1]
		}
		out = append(out, info)
	}
	return out, nil
}

// GeneAnnotation is one row of an organism's gene listing.
type GeneAnnotation struct {
	Gene       string `json:"gene"`
	Feature    string `json:"feature"`
	Position   string `json:"position"`
	Annotation string `json:"annotation"`
}

// ListGenes returns the gene annotation table of an organism.
func ListGenes(ctx context.Context, org string) ([]GeneAnnotation, error) {
	text, err := fetch(ctx, baseURL+"/list/"+org)
	if err != nil {
		return nil, err
	}
	var out []GeneAnnotation
	for _, row := range splitRows(text) {
		ann := GeneAnnotation{Gene: row[0]}
		if len(row) > 1 {
			ann.Feature = row[1]
		}
		if len(row) > 2 {
			ann.Position = row[2]
		}
		if len(row) > 3 {
			ann.Annotation = row[3]
		}
		out = append(out, ann)
	}
	return out, nil
}

// GeneLink is one pathway membership row from the link endpoint.
type GeneLink struct {
	PathwayID string `json:"pathid"`
	Gene      string `json:"gene"`
}

// LinkGenes returns the pathway->gene membership table of an organism.
func LinkGenes(ctx context.Context, org string) ([]GeneLink, error) {
	text, err := fetch(ctx, baseURL+"/link/"+org+"/pathway")
	if err != nil {
		return nil, err
	}
	var out []GeneLink
	for _, row := range splitRows(text) {
		link := GeneLink{PathwayID: row[0]}
		if len(row) > 1 {
			link.Gene = row[1]
		}
		out = append(out, link)
	}
	return out, nil
}

// splitRows splits a tab-separated response body into rows of fields.
// Blank lines are skipped.
func splitRows(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(line, "\t"))
	}
	return rows
}
