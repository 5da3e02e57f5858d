package model

import (
	"fmt"
	"strings"
)

// TieBreak decides between two hits of one query gene with equal bitscore.
type TieBreak int

const (
	// Longer alignment, then higher percent positive, then smaller reference id.
	TieBreakDeterministic TieBreak = iota
	// Keep whichever hit came first in the input. This reproduces older output.
	TieBreakFirst
)

func (t TieBreak) String() string {
	switch t {
	case TieBreakDeterministic:
		return "deterministic"
	case TieBreakFirst:
		return "first"
	default:
		return "unknown"
	}
}

func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "deterministic":
		return TieBreakDeterministic, nil
	case "first":
		return TieBreakFirst, nil
	default:
		return TieBreakDeterministic, fmt.Errorf("unknown tie break %q", s)
	}
}

const (
	DefaultMinBitscore  = 100.0
	DefaultMinPositives = 45.0
)

type Thresholds struct {
	MinBitscore  float64
	MinPositives float64
	TieBreak     TieBreak
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinBitscore:  DefaultMinBitscore,
		MinPositives: DefaultMinPositives,
		TieBreak:     TieBreakDeterministic,
	}
}

// StripNamespace drops database qualifiers such as "gnl|META|" from a subject id.
func StripNamespace(id string) string {
	if i := strings.LastIndexByte(id, '|'); i >= 0 {
		return id[i+1:]
	}
	return id
}

// passes is written so that NaN scores fail.
func (th Thresholds) passes(h AlignmentHit) bool {
	return h.Bitscore >= th.MinBitscore && h.PercentPositive >= th.MinPositives
}

func (t TieBreak) better(cand, cur BestHit) bool {
	if cand.Bitscore != cur.Bitscore {
		return cand.Bitscore > cur.Bitscore
	}
	if t == TieBreakFirst {
		return false
	}
	if cand.AlignLength != cur.AlignLength {
		return cand.AlignLength > cur.AlignLength
	}
	if cand.PercentPositive != cur.PercentPositive {
		return cand.PercentPositive > cur.PercentPositive
	}
	return cand.ReferenceProtein < cur.ReferenceProtein
}

// FilterBestHits drops hits under the thresholds and keeps the highest scoring
// reference protein per query gene. Output follows the order in which each
// query gene was first seen among the passing hits.
func FilterBestHits(hits []AlignmentHit, th Thresholds) []BestHit {
	order := make([]string, 0)
	best := make(map[string]*BestHit)

	for _, h := range hits {
		if !th.passes(h) {
			continue
		}

		cand := BestHit{
			QueryGene:        h.QueryGene,
			ReferenceProtein: StripNamespace(h.ReferenceProtein),
			Bitscore:         h.Bitscore,
			PercentPositive:  h.PercentPositive,
			AlignLength:      h.AlignLength,
		}

		cur, seen := best[h.QueryGene]
		if !seen {
			best[h.QueryGene] = &cand
			order = append(order, h.QueryGene)
			continue
		}
		if th.TieBreak.better(cand, *cur) {
			*cur = cand
		}
	}

	out := make([]BestHit, 0, len(order))
	for _, q := range order {
		out = append(out, *best[q])
	}
	return out
}
