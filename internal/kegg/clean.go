package kegg

import (
	"strings"

	"github.com/csaltikov/kegger/internal/flatfile"
)

// Entry identifies a KEGG record, e.g. {ID: "eco00190", Type: "Pathway"}.
type Entry struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// Gene is one GENE line split into locus tag and ortholog description.
type Gene struct {
	ID       string `json:"id"`
	Ortholog string `json:"ortholog,omitempty"`
}

// PathwayMap is the reference map an organism-specific pathway derives from.
type PathwayMap struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Section carries a keyword that Clean has no dedicated field for.
type Section struct {
	Keyword string `json:"keyword"`
	Value   string `json:"value"`
}

// Pathway is a normalized KEGG entry. Keywords without a dedicated field
// are preserved in Sections in order of appearance, so nothing from the
// flat file is lost.
type Pathway struct {
	Entry       Entry      `json:"entry"`
	Name        string     `json:"name,omitempty"`
	Organism    string     `json:"organism,omitempty"`
	PathwayMap  PathwayMap `json:"pathway_map,omitempty"`
	Genes       []Gene     `json:"genes,omitempty"`
	GeneLists   []string   `json:"gene_lists,omitempty"`
	Pathways    []string   `json:"pathways,omitempty"`
	Modules     []string   `json:"modules,omitempty"`
	Reactions   []string   `json:"reactions,omitempty"`
	RelPathways []string   `json:"rel_pathways,omitempty"`
	Sections    []Section  `json:"sections,omitempty"`
}

// Clean normalizes a parsed flat-file record into a Pathway. Section
// handling follows the KEGG entry layout: ENTRY splits into id and type,
// GENE lines split into locus tag and ortholog, PATHWAY_MAP splits on the
// double-space column separator, the list-valued keywords keep one value
// per line, and everything else keeps its first line.
func Clean(rec *flatfile.Record) *Pathway {
	p := &Pathway{}
	for _, keyword := range rec.Keywords() {
		lines := rec.Lines(keyword)
		switch keyword {
		case "ENTRY":
			fields := strings.Fields(lines[0])
			if len(fields) > 0 {
				p.Entry.ID = fields[0]
			}
			if len(fields) > 1 {
				p.Entry.Type = strings.Join(fields[1:], " ")
			}
		case "NAME":
			p.Name = strings.TrimSpace(lines[0])
		case "ORGANISM":
			p.Organism = strings.TrimSpace(lines[0])
		case "GENE":
			for _, line := range lines {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				id, rest, _ := strings.Cut(line, " ")
				p.Genes = append(p.Genes, Gene{ID: id, Ortholog: strings.TrimSpace(rest)})
			}
		case "GENES":
			p.GeneLists = append(p.GeneLists, trimLines(lines)...)
		case "PATHWAY":
			p.Pathways = append(p.Pathways, trimLines(lines)...)
		case "MODULE":
			p.Modules = append(p.Modules, trimLines(lines)...)
		case "REACTION":
			p.Reactions = append(p.Reactions, trimLines(lines)...)
		case "REL_PATHWAY":
			p.RelPathways = append(p.RelPathways, trimLines(lines)...)
		case "PATHWAY_MAP":
			id, name, _ := strings.Cut(lines[0], "  ")
			p.PathwayMap = PathwayMap{ID: strings.TrimSpace(id), Name: strings.TrimSpace(name)}
		default:
			p.Sections = append(p.Sections, Section{Keyword: keyword, Value: strings.TrimSpace(lines[0])})
		}
	}
	return p
}

// trimLines trims each line and drops the blank ones.
func trimLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		if t := strings.TrimSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return out
}
