package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// The nested types mirror the database.json written by cmd/main.go.
type Entry struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

type Gene struct {
	ID       string `json:"id"`
	Ortholog string `json:"ortholog,omitempty"`
}

type PathwayMap struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type Section struct {
	Keyword string `json:"keyword"`
	Value   string `json:"value"`
}

type PathwayRecord struct {
	ID          string     `json:"id"`
	Description string     `json:"description,omitempty"`
	Entry       Entry      `json:"entry"`
	Name        string     `json:"name,omitempty"`
	Organism    string     `json:"organism,omitempty"`
	PathwayMap  PathwayMap `json:"pathway_map,omitempty"`
	Genes       []Gene     `json:"genes,omitempty"`
	RelPathways []string   `json:"rel_pathways,omitempty"`
	Sections    []Section  `json:"sections,omitempty"`
}

// PathwaysPage is used to render the base page and to carry query state
type PathwaysPage struct {
	Pathways []PathwayRecord
	Query    string
	Sort     string
}

const baseTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>KEGG Pathways</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
th { background: #f3f4f6; }
input { padding: 0.3em; }
</style>
</head>
<body>
<h1>KEGG Pathways</h1>
<form method="get" action="/">
<input type="text" name="q" placeholder="filter" value="{{.Query}}">
<select name="sort">
<option value="id" {{if eq .Sort "id"}}selected{{end}}>id</option>
<option value="name" {{if eq .Sort "name"}}selected{{end}}>name</option>
<option value="genes" {{if eq .Sort "genes"}}selected{{end}}>gene count</option>
</select>
<button type="submit">Apply</button>
</form>
{{template "pathways" .Pathways}}
</body>
</html>`

const pathwaysTemplate = `{{define "pathways"}}
<table>
<tr><th>ID</th><th>Name</th><th>Organism</th><th>Genes</th></tr>
{{range .}}
<tr>
<td><a href="/pathway/{{.ID}}">{{.ID}}</a></td>
<td>{{.Name}}</td>
<td>{{.Organism}}</td>
<td>{{len .Genes}}</td>
</tr>
{{end}}
</table>
{{end}}`

const detailTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.ID}} - {{.Name}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.7em; text-align: left; }
</style>
</head>
<body>
<p><a href="/">&larr; all pathways</a></p>
<h1>{{.ID}} - {{.Name}}</h1>
<p>{{.Organism}}</p>
{{if .PathwayMap.ID}}<p>Map: {{.PathwayMap.ID}} {{.PathwayMap.Name}}</p>{{end}}
{{if .Sections}}
<table>
{{range .Sections}}<tr><th>{{.Keyword}}</th><td>{{.Value}}</td></tr>{{end}}
</table>
{{end}}
<h2>Genes ({{len .Genes}})</h2>
<table>
<tr><th>Locus</th><th>Ortholog</th></tr>
{{range .Genes}}<tr><td>{{.ID}}</td><td>{{.Ortholog}}</td></tr>{{end}}
</table>
{{if .RelPathways}}
<h2>Related pathways</h2>
<ul>{{range .RelPathways}}<li>{{.}}</li>{{end}}</ul>
{{end}}
</body>
</html>`

var templates = template.Must(template.Must(template.Must(
	template.New("base").Parse(baseTemplate)).Parse(pathwaysTemplate)).
	New("detail").Parse(detailTemplate))

// statusResponseWriter captures status and bytes written for logging
type statusResponseWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// loggingMiddleware logs each request with method, path, status, size and duration
func loggingMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			srw := &statusResponseWriter{ResponseWriter: w}
			next.ServeHTTP(srw, r)
			if srw.status == 0 {
				srw.status = http.StatusOK
			}
			duration := time.Since(start)
			logger.Printf("%s - %s %s %d %dB %s %q",
				r.RemoteAddr, r.Method, r.URL.RequestURI(), srw.status, srw.written, duration, r.UserAgent())
		})
	}
}

// readDatabase reads and unmarshals the JSON file at path
func readDatabase(path string) ([]PathwayRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []PathwayRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// filterAndSort applies the query filter and sort mode to the records.
func filterAndSort(records []PathwayRecord, query, sortMode string) []PathwayRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	filtered := make([]PathwayRecord, 0, len(records))
	for _, rec := range records {
		if q == "" {
			filtered = append(filtered, rec)
			continue
		}
		if strings.Contains(strings.ToLower(rec.ID), q) ||
			strings.Contains(strings.ToLower(rec.Name), q) ||
			strings.Contains(strings.ToLower(rec.Description), q) {
			filtered = append(filtered, rec)
		}
	}

	switch sortMode {
	case "name":
		sort.Slice(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
		})
	case "genes":
		sort.Slice(filtered, func(i, j int) bool { return len(filtered[i].Genes) > len(filtered[j].Genes) })
	default:
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	}
	return filtered
}

func indexHandler(dbPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := readDatabase(dbPath)
		if err != nil {
			log.Printf("warning: failed to read database for index: %v", err)
			records = []PathwayRecord{}
		}
		query := r.URL.Query().Get("q")
		sortMode := r.URL.Query().Get("sort")
		page := PathwaysPage{
			Pathways: filterAndSort(records, query, sortMode),
			Query:    query,
			Sort:     sortMode,
		}
		if err := templates.ExecuteTemplate(w, "base", page); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func pathwayHandler(dbPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "missing pathway", http.StatusBadRequest)
			return
		}
		records, err := readDatabase(dbPath)
		if err != nil {
			http.Error(w, "failed to read database", http.StatusInternalServerError)
			return
		}
		var found *PathwayRecord
		for _, rec := range records {
			if rec.ID == id {
				rr := rec
				found = &rr
				break
			}
		}
		if found == nil {
			http.Error(w, "pathway not found", http.StatusNotFound)
			return
		}
		if err := templates.ExecuteTemplate(w, "detail", found); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

// pathwaysHandler renders only the table fragment so the index form can
// refresh the listing without a full page reload.
func pathwaysHandler(dbPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := readDatabase(dbPath)
		if err != nil {
			http.Error(w, "failed to read database", http.StatusInternalServerError)
			return
		}
		filtered := filterAndSort(records, r.URL.Query().Get("q"), r.URL.Query().Get("sort"))
		if err := templates.ExecuteTemplate(w, "pathways", filtered); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func apiPathwaysHandler(dbPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := readDatabase(dbPath)
		if err != nil {
			http.Error(w, "failed to read database", http.StatusInternalServerError)
			return
		}
		records = filterAndSort(records, r.URL.Query().Get("q"), r.URL.Query().Get("sort"))
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			log.Printf("warning: failed to encode pathways: %v", err)
		}
	}
}

func newRouter(dbPath string, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(logger))
	r.Get("/", indexHandler(dbPath))
	r.Get("/pathways", pathwaysHandler(dbPath))
	r.Get("/pathway/{id}", pathwayHandler(dbPath))
	r.Get("/api/pathways", apiPathwaysHandler(dbPath))
	return r
}

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "listen address")
	dbPath := flag.String("db", "database.json", "path to database.json written by the fetcher")
	logFile := flag.String("log", "", "optional log file (appended)")
	flag.Parse()

	var out io.Writer = os.Stdout
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("failed to open log file: %v", err)
		}
		out = io.MultiWriter(os.Stdout, f)
	}
	logger := log.New(out, "kegger: ", log.LstdFlags)

	handler := newRouter(*dbPath, logger)

	srv := &http.Server{Addr: *addr, Handler: handler, ReadTimeout: 5 * time.Second, WriteTimeout: 10 * time.Second}
	fmt.Printf("serving pathway browser at http://%s/ (db=%s)\n", *addr, *dbPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
