package model

import (
	"math"
	"reflect"
	"testing"
)

func TestStripNamespace(t *testing.T) {
	tests := map[string]string{
		"gnl|META|ABC-MONOMER": "ABC-MONOMER",
		"ABC-MONOMER":          "ABC-MONOMER",
		"sp|P12345|":           "",
		"":                     "",
	}
	for in, want := range tests {
		if got := StripNamespace(in); got != want {
			t.Errorf("StripNamespace(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFilterBestHits(t *testing.T) {
	tests := []struct {
		name     string
		hits     []AlignmentHit
		th       Thresholds
		expected []BestHit
	}{
		{
			name:     "Empty",
			hits:     nil,
			th:       DefaultThresholds(),
			expected: []BestHit{},
		},
		{
			name: "HighestBitscoreWinsAndOrderKept",
			hits: []AlignmentHit{
				hit("qB", "gnl|META|g1", 120, 60),
				hit("qA", "gnl|META|g2", 150, 60),
				hit("qB", "gnl|META|g3", 200, 50),
				hit("qA", "gnl|META|g4", 140, 90),
			},
			th: DefaultThresholds(),
			expected: []BestHit{
				{QueryGene: "qB", ReferenceProtein: "g3", Bitscore: 200, PercentPositive: 50, AlignLength: 300},
				{QueryGene: "qA", ReferenceProtein: "g2", Bitscore: 150, PercentPositive: 60, AlignLength: 300},
			},
		},
		{
			name: "AllHitsFilteredDropsGene",
			hits: []AlignmentHit{
				hit("qA", "g1", 99.9, 90),
				hit("qA", "g2", 500, 44.9),
				hit("qB", "g1", 100, 45),
			},
			th: DefaultThresholds(),
			expected: []BestHit{
				{QueryGene: "qB", ReferenceProtein: "g1", Bitscore: 100, PercentPositive: 45, AlignLength: 300},
			},
		},
		{
			name: "NaNScoreNeverPasses",
			hits: []AlignmentHit{
				hit("qA", "g1", math.NaN(), 90),
				hit("qB", "g1", 150, math.NaN()),
			},
			th:       DefaultThresholds(),
			expected: []BestHit{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterBestHits(tt.hits, tt.th)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("FilterBestHits() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestFilterBestHitsTieBreak(t *testing.T) {
	short := hit("q", "gnl|META|zeta", 150, 50)
	short.AlignLength = 100
	long := hit("q", "gnl|META|alpha", 150, 50)
	long.AlignLength = 200
	sameLenLater := hit("q", "gnl|META|beta", 150, 50)
	sameLenLater.AlignLength = 200

	hits := []AlignmentHit{short, sameLenLater, long}

	first := FilterBestHits(hits, Thresholds{MinBitscore: 100, MinPositives: 45, TieBreak: TieBreakFirst})
	if first[0].ReferenceProtein != "zeta" {
		t.Errorf("first-seen tie break kept %q, want zeta", first[0].ReferenceProtein)
	}

	det := FilterBestHits(hits, DefaultThresholds())
	if det[0].ReferenceProtein != "alpha" {
		t.Errorf("deterministic tie break kept %q, want alpha", det[0].ReferenceProtein)
	}

	// deterministic choice does not depend on input order
	reversed := []AlignmentHit{long, sameLenLater, short}
	if got := FilterBestHits(reversed, DefaultThresholds()); got[0].ReferenceProtein != "alpha" {
		t.Errorf("reversed input kept %q, want alpha", got[0].ReferenceProtein)
	}
}

func TestFilterBestHitsProperties(t *testing.T) {
	hits := []AlignmentHit{
		hit("q1", "g1", 90, 80), hit("q1", "g2", 130, 40), hit("q1", "g3", 110, 70),
		hit("q2", "g1", 300, 46), hit("q2", "g2", 300, 99),
		hit("q3", "g4", 101, 45), hit("q4", "g5", 50, 50),
		hit("q5", "g1", 250, 60), hit("q5", "g2", 180, 60), hit("q5", "g5", 260, 44),
	}

	prev := -1
	for _, minBits := range []float64{0, 50, 100, 120, 200, 400} {
		for _, minPos := range []float64{0, 45, 60, 100} {
			th := Thresholds{MinBitscore: minBits, MinPositives: minPos}
			best := FilterBestHits(hits, th)

			seen := map[string]bool{}
			for _, b := range best {
				if seen[b.QueryGene] {
					t.Fatalf("duplicate best hit for %s", b.QueryGene)
				}
				seen[b.QueryGene] = true

				top := math.Inf(-1)
				for _, h := range hits {
					if h.QueryGene == b.QueryGene && th.passes(h) && h.Bitscore > top {
						top = h.Bitscore
					}
				}
				if b.Bitscore != top {
					t.Fatalf("best hit for %s has %v, max passing is %v", b.QueryGene, b.Bitscore, top)
				}
			}

			if minPos == 0 {
				if prev >= 0 && len(best) > prev {
					t.Fatalf("raising bitscore to %v increased retained hits %d -> %d", minBits, prev, len(best))
				}
				prev = len(best)
			}
		}
	}

	for _, minBits := range []float64{0, 100, 200} {
		last := len(hits) + 1
		for _, minPos := range []float64{0, 45, 50, 60, 99, 100} {
			n := len(FilterBestHits(hits, Thresholds{MinBitscore: minBits, MinPositives: minPos}))
			if n > last {
				t.Fatalf("raising positives to %v increased retained hits %d -> %d", minPos, last, n)
			}
			last = n
		}
	}
}

func TestParseTieBreak(t *testing.T) {
	for in, want := range map[string]TieBreak{"": TieBreakDeterministic, "First": TieBreakFirst, "deterministic": TieBreakDeterministic} {
		got, err := ParseTieBreak(in)
		if err != nil || got != want {
			t.Errorf("ParseTieBreak(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseTieBreak("random"); err == nil {
		t.Error("expected error for unknown tie break")
	}
}
