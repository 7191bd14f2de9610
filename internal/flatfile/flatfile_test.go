package flatfile

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseSingleLineSection(t *testing.T) {
	input := "NAME        Oxidative phosphorylation - Escherichia coli K-12 MG1655\n"
	rec, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := rec.Value("NAME")
	want := "Oxidative phosphorylation - Escherichia coli K-12 MG1655"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestParseContinuationTokens(t *testing.T) {
	input := "GENE        b0428, b0429, b0430\n" +
		"            b0431, b0432\n"
	rec, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"b0428", "b0429", "b0430", "b0431", "b0432"}
	if got := rec.Tokens("GENE"); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseKeywordOrderAndLines(t *testing.T) {
	input := "ENTRY       eco00190                    Pathway\n" +
		"NAME        Oxidative phosphorylation\n" +
		"GENE        b0428  cyoE; protoheme IX farnesyltransferase\n" +
		"            b0429  cyoD; cytochrome bo terminal oxidase subunit IV\n"
	rec, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantKeys := []string{"ENTRY", "NAME", "GENE"}
	if got := rec.Keywords(); !reflect.DeepEqual(got, wantKeys) {
		t.Fatalf("expected keywords %v, got %v", wantKeys, got)
	}
	lines := rec.Lines("GENE")
	if len(lines) != 2 {
		t.Fatalf("expected 2 GENE lines, got %d: %v", len(lines), lines)
	}
	if lines[1] != "b0429  cyoD; cytochrome bo terminal oxidase subunit IV" {
		t.Fatalf("unexpected continuation line: %q", lines[1])
	}
}

func TestParseTerminatorStopsEntry(t *testing.T) {
	input := "NAME        Citrate cycle\n" +
		"///\n" +
		"NAME        Next entry, must be ignored\n"
	rec, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Value("NAME"); got != "Citrate cycle" {
		t.Fatalf("expected parsing to stop at ///, got NAME=%q", got)
	}
	if rec.Len() != 1 {
		t.Fatalf("expected 1 section, got %d", rec.Len())
	}
}

func TestParseEmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	if !errors.Is(err, ErrEmptyRecord) {
		t.Fatalf("expected ErrEmptyRecord, got %v", err)
	}
	// blank lines only are equivalent to empty input
	_, err = Parse(strings.NewReader("\n   \n"))
	if !errors.Is(err, ErrEmptyRecord) {
		t.Fatalf("expected ErrEmptyRecord for blank input, got %v", err)
	}
}

func TestParseOrphanContinuation(t *testing.T) {
	input := "            b0428  cyoE\nNAME        whatever\n"
	_, err := Parse(strings.NewReader(input))
	var malformed *MalformedRecordError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedRecordError, got %v", err)
	}
	if malformed.Line != 1 {
		t.Fatalf("expected error on line 1, got %d", malformed.Line)
	}
}

func TestParseDuplicateKeywordMerges(t *testing.T) {
	input := "COMMENT     first\n" +
		"NAME        TCA cycle\n" +
		"COMMENT     second\n"
	rec, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Lines("COMMENT"); !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Fatalf("expected merged COMMENT lines, got %v", got)
	}
	wantKeys := []string{"COMMENT", "NAME"}
	if got := rec.Keywords(); !reflect.DeepEqual(got, wantKeys) {
		t.Fatalf("expected keyword order %v, got %v", wantKeys, got)
	}
}

func TestParseDeterministic(t *testing.T) {
	input := "ENTRY       eco00020            Pathway\n" +
		"NAME        Citrate cycle (TCA cycle)\n" +
		"CLASS       Metabolism; Energy metabolism\n"
	first, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("parsing is not deterministic: %#v vs %#v", first, second)
	}
}
