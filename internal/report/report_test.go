package report

import (
	"testing"

	"github.com/csaltikov/kegger/internal/kegg"
)

func TestBuildGeneReport_JoinsTables(t *testing.T) {
	links := []kegg.GeneLink{
		{PathwayID: "path:eco00010", Gene: "eco:b0002"},
		{PathwayID: "path:eco00020", Gene: "eco:b0114"},
		{PathwayID: "path:eco00020", Gene: "eco:b9999"},
	}
	pathways := []kegg.PathwayInfo{
		{ID: "eco00010", Description: "Glycolysis / Gluconeogenesis"},
		{ID: "eco00020", Description: "Citrate cycle (TCA cycle)"},
	}
	genes := []kegg.GeneAnnotation{
		{Gene: "eco:b0002", Feature: "CDS", Position: "337..2799", Annotation: "thrA"},
		{Gene: "eco:b0114", Feature: "CDS", Position: "123017..125680", Annotation: "aceE"},
	}

	rows := BuildGeneReport(links, pathways, genes)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].PathwayID != "eco00010" {
		t.Fatalf("expected path: prefix stripped, got %q", rows[0].PathwayID)
	}
	if rows[0].Description != "Glycolysis / Gluconeogenesis" {
		t.Fatalf("unexpected description: %q", rows[0].Description)
	}
	if rows[1].Annotation != "aceE" {
		t.Fatalf("unexpected annotation: %q", rows[1].Annotation)
	}
	// gene with no annotation row keeps empty fields
	if rows[2].Annotation != "" || rows[2].Feature != "" {
		t.Fatalf("expected empty annotation for unknown gene, got %+v", rows[2])
	}
	if rows[2].Description != "Citrate cycle (TCA cycle)" {
		t.Fatalf("expected description mapped even without annotation, got %+v", rows[2])
	}
}
