package report

// Package report joins the KEGG link and list tables into a per-gene
// pathway membership report.

import (
	"strings"

	"github.com/csaltikov/kegger/internal/kegg"
)

// GeneReportRow is one gene's membership in one pathway, enriched with the
// pathway description and the organism's gene annotation when available.
type GeneReportRow struct {
	Gene        string `json:"gene"`
	PathwayID   string `json:"pathid"`
	Description string `json:"description,omitempty"`
	Feature     string `json:"feature,omitempty"`
	Position    string `json:"position,omitempty"`
	Annotation  string `json:"annotation,omitempty"`
}

// BuildGeneReport merges pathway membership links with pathway descriptions
// and gene annotations. The "path:" prefix on link rows is stripped before
// matching. Genes without an annotation row keep empty annotation fields.
// Row order follows the link table.
func BuildGeneReport(links []kegg.GeneLink, pathways []kegg.PathwayInfo, genes []kegg.GeneAnnotation) []GeneReportRow {
	descByID := make(map[string]string, len(pathways))
	for _, p := range pathways {
		descByID[strings.TrimPrefix(p.ID, "path:")] = p.Description
	}
	annByGene := make(map[string]kegg.GeneAnnotation, len(genes))
	for _, g := range genes {
		annByGene[g.Gene] = g
	}

	rows := make([]GeneReportRow, 0, len(links))
	for _, link := range links {
		pathID := strings.TrimPrefix(link.PathwayID, "path:")
		row := GeneReportRow{
			Gene:        link.Gene,
			PathwayID:   pathID,
			Description: descByID[pathID],
		}
		if ann, ok := annByGene[link.Gene]; ok {
			row.Feature = ann.Feature
			row.Position = ann.Position
			row.Annotation = ann.Annotation
		}
		rows = append(rows, row)
	}
	return rows
}
