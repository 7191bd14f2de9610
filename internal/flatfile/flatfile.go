package flatfile

// Package flatfile parses KEGG flat-file entries. Each line of an entry
// carries a keyword in a fixed-width leading column; lines with a blank
// keyword column continue the most recent section. It intentionally keeps
// parsing simple and conservative.

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// keywordWidth is the width of the keyword column in KEGG flat files.
const keywordWidth = 12

// terminator marks the end of an entry.
const terminator = "///"

// ErrEmptyRecord is returned when the input contains no keyword lines.
var ErrEmptyRecord = errors.New("flatfile: empty record")

// MalformedRecordError reports a continuation line that appears before
// any keyword line.
type MalformedRecordError struct {
	Line int
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("flatfile: continuation line %d before any keyword", e.Line)
}

// Record is a parsed KEGG flat-file entry: an ordered mapping from section
// keyword to the lines of that section. Records are immutable after Parse.
type Record struct {
	keywords []string
	sections map[string][]string
}

// Parse reads one KEGG flat-file entry from r. A "///" line ends the entry
// without contributing a section. Sections for a keyword seen twice are
// merged in order of appearance.
func Parse(r io.Reader) (*Record, error) {
	rec := &Record{sections: make(map[string][]string)}
	scanner := bufio.NewScanner(r)
	current := ""
	row := 0
	for scanner.Scan() {
		row++
		line := scanner.Text()
		if strings.HasPrefix(line, terminator) {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		keyword := line
		value := ""
		if len(line) > keywordWidth {
			keyword = line[:keywordWidth]
			value = strings.TrimSpace(line[keywordWidth:])
		}
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			if current == "" {
				return nil, &MalformedRecordError{Line: row}
			}
		} else {
			current = keyword
			if _, seen := rec.sections[current]; !seen {
				rec.keywords = append(rec.keywords, current)
			}
		}
		rec.sections[current] = append(rec.sections[current], value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rec.keywords) == 0 {
		return nil, ErrEmptyRecord
	}
	return rec, nil
}

// Keywords returns the section keywords in order of first appearance.
func (r *Record) Keywords() []string {
	out := make([]string, len(r.keywords))
	copy(out, r.keywords)
	return out
}

// Has reports whether the record contains the given section.
func (r *Record) Has(keyword string) bool {
	_, ok := r.sections[keyword]
	return ok
}

// Len returns the number of distinct sections.
func (r *Record) Len() int {
	return len(r.keywords)
}

// Lines returns the raw value lines of a section, one entry per input line.
func (r *Record) Lines(keyword string) []string {
	lines, ok := r.sections[keyword]
	if !ok {
		return nil
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}

// Value returns the section content as a single string, with continuation
// lines joined by single spaces.
func (r *Record) Value(keyword string) string {
	return strings.Join(r.sections[keyword], " ")
}

// Tokens splits the accumulated section content on commas and whitespace,
// preserving order. This is the view wanted for gene lists wrapped across
// continuation lines.
func (r *Record) Tokens(keyword string) []string {
	joined := strings.Join(r.sections[keyword], " ")
	return strings.FieldsFunc(joined, func(c rune) bool {
		return c == ',' || unicode.IsSpace(c)
	})
}
