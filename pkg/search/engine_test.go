package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseEngine(t *testing.T) {
	tests := []struct {
		in      string
		want    Engine
		wantErr bool
	}{
		{"diamond", EngineDiamond, false},
		{"", EngineDiamond, false},
		{"BLASTP", EngineBLASTP, false},
		{"blast", EngineBLASTP, false},
		{"mmseqs", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseEngine(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownEngine) {
				t.Errorf("ParseEngine(%q): expected ErrUnknownEngine, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseEngine(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestSearchDiamond(t *testing.T) {
	bin := t.TempDir()
	writeFakeTool(t, bin, "diamond", true, 0)
	prependPath(t, bin)

	query, ref := writeInputs(t, t.TempDir())
	s := NewSearcher()
	s.Threads = 2
	s.WorkDir = t.TempDir()

	hits, err := s.Search(context.Background(), Request{OrganismID: "eco", QueryFasta: query, ReferenceProteins: ref, Engine: EngineDiamond})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 || hits[0].ReferenceProtein != "gnl|META|HEX-MONOMER" || hits[0].Bitscore != 250 || hits[0].PercentPositive != 80 {
		t.Fatalf("hits = %+v", hits)
	}

	calls, err := os.ReadFile(filepath.Join(bin, "calls.log"))
	if err != nil {
		t.Fatalf("read calls: %v", err)
	}
	log := string(calls)
	if !strings.Contains(log, "diamond makedb --in "+ref) {
		t.Errorf("makedb not called: %s", log)
	}
	if !strings.Contains(log, "--outfmt 6 qseqid sseqid evalue pident length bitscore ppos") || !strings.Contains(log, "--threads 2") {
		t.Errorf("unexpected blastp args: %s", log)
	}

	// work dir is removed afterwards
	entries, _ := os.ReadDir(s.WorkDir)
	if len(entries) != 0 {
		t.Errorf("work dir not cleaned: %v", entries)
	}
}

func TestSearchBLASTP(t *testing.T) {
	bin := t.TempDir()
	writeFakeTool(t, bin, "makeblastdb", false, 0)
	writeFakeTool(t, bin, "blastp", true, 0)
	prependPath(t, bin)

	query, ref := writeInputs(t, t.TempDir())
	s := NewSearcher()
	s.WorkDir = t.TempDir()

	hits, err := s.Search(context.Background(), Request{OrganismID: "eco", QueryFasta: query, ReferenceProteins: ref, Engine: EngineBLASTP})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %+v", hits)
	}

	calls, _ := os.ReadFile(filepath.Join(bin, "calls.log"))
	log := string(calls)
	if !strings.Contains(log, "makeblastdb -in "+ref) || !strings.Contains(log, "-dbtype prot") {
		t.Errorf("makeblastdb args: %s", log)
	}
	if !strings.Contains(log, "-evalue 1e-05") || !strings.Contains(log, "-outfmt 6 qseqid sseqid evalue pident length bitscore ppos") {
		t.Errorf("blastp args: %s", log)
	}
}

func TestSearchFailure(t *testing.T) {
	bin := t.TempDir()
	writeFakeTool(t, bin, "diamond", false, 2)
	prependPath(t, bin)

	query, ref := writeInputs(t, t.TempDir())
	s := NewSearcher()
	s.WorkDir = t.TempDir()

	_, err := s.Search(context.Background(), Request{OrganismID: "eco", QueryFasta: query, ReferenceProteins: ref})
	if err == nil || !strings.Contains(err.Error(), "boom: bad input") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestSearchMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, ref := writeInputs(t, dir)
	s := NewSearcher()

	if _, err := s.Search(context.Background(), Request{QueryFasta: filepath.Join(dir, "nope.faa"), ReferenceProteins: ref}); err == nil {
		t.Fatal("expected error for missing query")
	}
}

func TestSearchCancelled(t *testing.T) {
	bin := t.TempDir()
	writeFakeTool(t, bin, "diamond", true, 0)
	prependPath(t, bin)

	query, ref := writeInputs(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSearcher()
	s.WorkDir = t.TempDir()
	if _, err := s.Search(ctx, Request{QueryFasta: query, ReferenceProteins: ref}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
