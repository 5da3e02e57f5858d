package search

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bebop/poly/io/fasta"
	"github.com/yumyai/metadraft/logger"
	"go.uber.org/zap"
)

var ErrNoSequences = errors.New("no sequences in FASTA input")

// Protein is one FASTA record. ID is the first word of the header, which is
// what the aligners report as qseqid/sseqid.
type Protein struct {
	ID          string
	Description string
	Sequence    string
}

// ReadProteins reads a protein FASTA file.
func ReadProteins(path string) ([]Protein, error) {
	entries, err := fasta.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read FASTA file: %w", err)
	}
	return toProteins(entries)
}

// ParseProteins reads protein FASTA text, e.g. a request body.
func ParseProteins(r io.Reader) ([]Protein, error) {
	entries, err := fasta.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FASTA: %w", err)
	}
	return toProteins(entries)
}

func toProteins(entries []fasta.Fasta) ([]Protein, error) {
	prots := make([]Protein, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		id, desc, _ := strings.Cut(name, " ")
		seq := strings.ToUpper(strings.Join(strings.Fields(e.Sequence), ""))
		if seq == "" {
			logger.Warn("Skipping FASTA record without sequence", zap.String("id", id))
			continue
		}
		if _, dup := seen[id]; dup {
			// the aligner keeps both, so their hits will merge under one gene
			logger.Warn("Duplicate FASTA id", zap.String("id", id))
		}
		seen[id] = struct{}{}
		prots = append(prots, Protein{ID: id, Description: strings.TrimSpace(desc), Sequence: seq})
	}

	if len(prots) == 0 {
		return nil, ErrNoSequences
	}
	return prots, nil
}

// WriteProteins writes records as FASTA with 60 residues per line.
func WriteProteins(w io.Writer, prots []Protein) error {
	bw := bufio.NewWriter(w)
	for _, p := range prots {
		header := p.ID
		if p.Description != "" {
			header += " " + p.Description
		}
		if _, err := fmt.Fprintf(bw, ">%s\n", header); err != nil {
			return err
		}
		for i := 0; i < len(p.Sequence); i += 60 {
			end := min(i+60, len(p.Sequence))
			if _, err := fmt.Fprintln(bw, p.Sequence[i:end]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
