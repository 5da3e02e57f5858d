package search

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yumyai/metadraft/pkg/model"
)

// Columns requested from both aligners, in this order.
var OutputColumns = []string{"qseqid", "sseqid", "evalue", "pident", "length", "bitscore", "ppos"}

// ParseTabular reads outfmt 6 rows with OutputColumns. Blank lines and '#'
// comment lines are skipped.
func ParseTabular(r io.Reader) ([]model.AlignmentHit, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	hits := make([]model.AlignmentHit, 0, 1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) != len(OutputColumns) {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", lineNo, len(OutputColumns), len(cols))
		}

		h := model.AlignmentHit{
			QueryGene:        cols[0],
			ReferenceProtein: cols[1],
		}
		var err error
		if h.Evalue, err = strconv.ParseFloat(cols[2], 64); err != nil {
			return nil, fmt.Errorf("line %d: evalue: %w", lineNo, err)
		}
		if h.Identity, err = strconv.ParseFloat(cols[3], 64); err != nil {
			return nil, fmt.Errorf("line %d: pident: %w", lineNo, err)
		}
		if h.AlignLength, err = strconv.Atoi(cols[4]); err != nil {
			return nil, fmt.Errorf("line %d: length: %w", lineNo, err)
		}
		if h.Bitscore, err = strconv.ParseFloat(cols[5], 64); err != nil {
			return nil, fmt.Errorf("line %d: bitscore: %w", lineNo, err)
		}
		if h.PercentPositive, err = strconv.ParseFloat(cols[6], 64); err != nil {
			return nil, fmt.Errorf("line %d: ppos: %w", lineNo, err)
		}
		hits = append(hits, h)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading alignment output: %w", err)
	}
	return hits, nil
}
