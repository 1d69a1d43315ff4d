package ngram

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// skewedModel has context "a" followed by "b" three times and "c" once.
func skewedModel(t *testing.T) *Model {
	t.Helper()
	m, err := Build(strings.Fields("a b a b a b a c"), 2)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return m
}

func TestPredictDeterministicAtLowTemperature(t *testing.T) {
	m := skewedModel(t)
	s := NewSeededSampler(1)

	for i := 0; i < 200; i++ {
		got, err := s.Predict(m, []string{"a"}, 0.01)
		if err != nil {
			t.Fatalf("Predict() failed: %v", err)
		}
		if got != "b" {
			t.Fatalf("Predict() at T=0.01 = %q on draw %d, want %q", got, i, "b")
		}
	}
}

func TestPredictEmpiricalAtTemperatureOne(t *testing.T) {
	m := skewedModel(t)
	s := NewSeededSampler(42)

	const draws = 4000
	var hits int
	for i := 0; i < draws; i++ {
		got, err := s.Predict(m, []string{"a"}, 1.0)
		if err != nil {
			t.Fatalf("Predict() failed: %v", err)
		}
		if got == "b" {
			hits++
		}
	}

	// "b" holds 3 of the 4 observations, so T=1 should reproduce the raw
	// empirical distribution within statistical tolerance.
	freq := float64(hits) / draws
	if math.Abs(freq-0.75) > 0.05 {
		t.Errorf("empirical frequency of %q = %.3f, want 0.75 +/- 0.05", "b", freq)
	}
}

func TestPredictHighTemperatureApproachesUniform(t *testing.T) {
	// Heavily skewed counts: "b" appears 9 times, "c" once.
	corpus := strings.Fields(strings.Repeat("a b ", 9) + "a c")
	m, err := Build(corpus, 2)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	s := NewSeededSampler(7)

	const draws = 4000
	var hits int
	for i := 0; i < draws; i++ {
		got, err := s.Predict(m, []string{"a"}, 100)
		if err != nil {
			t.Fatalf("Predict() failed: %v", err)
		}
		if got == "c" {
			hits++
		}
	}

	freq := float64(hits) / draws
	if math.Abs(freq-0.5) > 0.05 {
		t.Errorf("frequency of rare token at T=100 = %.3f, want 0.5 +/- 0.05", freq)
	}
}

func TestPredictTieBreakUniformAmongTies(t *testing.T) {
	// "b" and "c" both follow "a" exactly once.
	m, err := Build(strings.Fields("a b a c"), 2)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	// The candidate list must be in first-observed order...
	conts, _ := m.Continuations([]string{"a"})
	if conts[0].Token != "b" || conts[1].Token != "c" {
		t.Fatalf("candidate order = %+v, want b before c", conts)
	}

	// ...and the draw among equal weights must be uniform, at any temperature.
	for _, temp := range []float64{0.01, 1.0, 10} {
		s := NewSeededSampler(99)
		const draws = 2000
		var hits int
		for i := 0; i < draws; i++ {
			got, err := s.Predict(m, []string{"a"}, temp)
			if err != nil {
				t.Fatalf("Predict() failed: %v", err)
			}
			if got == "b" {
				hits++
			}
		}
		freq := float64(hits) / draws
		if math.Abs(freq-0.5) > 0.05 {
			t.Errorf("T=%g: tie frequency of %q = %.3f, want 0.5 +/- 0.05", temp, "b", freq)
		}
	}
}

func TestPredictUsesTrailingContext(t *testing.T) {
	m, err := Build(strings.Fields("a b c a b c a b c"), 3)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	s := NewSeededSampler(1)

	// Prefix longer than order-1: only the trailing "a b" matters.
	got, err := s.Predict(m, []string{"x", "y", "a", "b"}, 0.01)
	if err != nil {
		t.Fatalf("Predict() failed: %v", err)
	}
	if got != "c" {
		t.Errorf("Predict() = %q, want %q", got, "c")
	}
}

func TestPredictErrors(t *testing.T) {
	bigram := skewedModel(t)
	trigram, err := Build(strings.Fields("a b c a b c"), 3)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	s := NewSeededSampler(1)

	testCases := []struct {
		name        string
		model       *Model
		prefix      []string
		temperature float64
		wantErr     error
	}{
		{"zero temperature", bigram, []string{"a"}, 0, ErrInvalidParameter},
		{"negative temperature", bigram, []string{"a"}, -0.5, ErrInvalidParameter},
		{"empty prefix", bigram, nil, 1.0, ErrEmptyPrefix},
		{"unknown context", bigram, []string{"z"}, 1.0, ErrUnknownContext},
		{"prefix shorter than trigram context", trigram, []string{"b"}, 1.0, ErrUnknownContext},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Predict(tc.model, tc.prefix, tc.temperature)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Predict() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSeededSamplersAreReproducible(t *testing.T) {
	m := skewedModel(t)
	s1 := NewSeededSampler(1234)
	s2 := NewSeededSampler(1234)

	for i := 0; i < 100; i++ {
		got1, err1 := s1.Predict(m, []string{"a"}, 1.2)
		got2, err2 := s2.Predict(m, []string{"a"}, 1.2)
		if err1 != nil || err2 != nil {
			t.Fatalf("Predict() failed: %v / %v", err1, err2)
		}
		if got1 != got2 {
			t.Fatalf("draw %d diverged: %q vs %q", i, got1, got2)
		}
	}
}

func BenchmarkPredict(b *testing.B) {
	corpus := strings.Fields(strings.Repeat("the quick brown fox jumps over the lazy dog ", 200))
	m, err := Build(corpus, 2)
	if err != nil {
		b.Fatalf("Build() failed: %v", err)
	}
	s := NewSeededSampler(1)
	prefix := []string{"the"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Predict(m, prefix, 0.8); err != nil {
			b.Fatalf("Predict() failed: %v", err)
		}
	}
}
