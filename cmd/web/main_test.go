package main

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestDatabase(t *testing.T) string {
	t.Helper()
	records := []PathwayRecord{
		{
			ID:       "eco00020",
			Name:     "Citrate cycle (TCA cycle)",
			Organism: "Escherichia coli K-12 MG1655 [GN:eco]",
			Entry:    Entry{ID: "eco00020", Type: "Pathway"},
			Genes:    []Gene{{ID: "b0114", Ortholog: "aceE"}},
		},
		{
			ID:    "eco00190",
			Name:  "Oxidative phosphorylation",
			Entry: Entry{ID: "eco00190", Type: "Pathway"},
			Genes: []Gene{{ID: "b0428", Ortholog: "cyoE"}, {ID: "b0429", Ortholog: "cyoD"}},
		},
	}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "database.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := log.New(testWriter{t}, "", 0)
	return newRouter(writeTestDatabase(t), logger)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func TestAPIPathways(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest("GET", "/api/pathways?sort=genes", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var records []PathwayRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// sorted by gene count, descending
	if records[0].ID != "eco00190" {
		t.Fatalf("expected eco00190 first, got %s", records[0].ID)
	}
}

func TestPathwayDetail(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest("GET", "/pathway/eco00020", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Citrate cycle (TCA cycle)") || !strings.Contains(body, "b0114") {
		t.Fatalf("detail page missing pathway data: %s", body)
	}
}

func TestPathwayNotFound(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest("GET", "/pathway/zzz99999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPathwaysFragment(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest("GET", "/pathways?q=oxidative&sort=genes", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "eco00190") {
		t.Fatalf("expected fragment to contain eco00190, got %s", body)
	}
	if strings.Contains(body, "eco00020") {
		t.Fatalf("expected fragment to be filtered, got %s", body)
	}
	// fragment only: no surrounding page chrome
	if strings.Contains(body, "<html") {
		t.Fatalf("expected a bare table fragment, got a full page")
	}
}

func TestIndexFilter(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest("GET", "/?q=oxidative", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "eco00190") {
		t.Fatalf("expected filtered index to show eco00190")
	}
	if strings.Contains(body, "eco00020") {
		t.Fatalf("expected filtered index to hide eco00020")
	}
}
