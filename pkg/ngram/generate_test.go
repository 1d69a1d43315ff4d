package ngram

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestGenerateLengthZeroReturnsSeed(t *testing.T) {
	m, err := Build(strings.Fields("a b a b a b"), 2)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	s := NewSeededSampler(1)

	seed := []string{"a", "b"}
	got, err := s.Generate(m, seed, WithLength(0))
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if !reflect.DeepEqual(got, seed) {
		t.Errorf("Generate() = %v, want seed %v unchanged", got, seed)
	}

	// The result must not alias the caller's seed slice.
	got[0] = "mutated"
	if seed[0] != "a" {
		t.Error("Generate() result aliases the seed slice")
	}
}

func TestGenerateFollowsCycle(t *testing.T) {
	m, err := Build(strings.Fields("a b a b a b"), 2)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	s := NewSeededSampler(1)

	// Both contexts have a single continuation, so the walk is fully
	// determined and the a/b cycle is the expected, unmasked output.
	got, err := s.Generate(m, []string{"a"}, WithLength(6), WithTemperature(0.01))
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	want := []string{"a", "b", "a", "b", "a", "b", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate() = %v, want %v", got, want)
	}
}

func TestGenerateDeadEndReturnsPartial(t *testing.T) {
	// "c" ends the corpus, so the context "c" was never observed and the
	// walk dead-ends after two appended tokens.
	m, err := Build(strings.Fields("a b c"), 2)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	s := NewSeededSampler(1)

	got, err := s.Generate(m, []string{"a"}, WithLength(10))
	if err != nil {
		t.Fatalf("expected partial result, got error: %v", err)
	}
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate() = %v, want partial %v", got, want)
	}
}

func TestGenerateUnknownSeedFails(t *testing.T) {
	m, err := Build(strings.Fields("a b c"), 2)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	s := NewSeededSampler(1)

	// No prediction was ever possible: this is a failure, not a partial
	// result, unlike the mid-generation dead end above.
	_, err = s.Generate(m, []string{"z"}, WithLength(5))
	if !errors.Is(err, ErrUnknownContext) {
		t.Errorf("Generate() error = %v, want ErrUnknownContext", err)
	}
}

func TestGenerateDefaults(t *testing.T) {
	m, err := Build(strings.Fields("a b a b a b"), 2)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	s := NewSeededSampler(1)

	got, err := s.Generate(m, []string{"a"})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if len(got) != 1+DefaultLength {
		t.Errorf("Generate() returned %d tokens, want %d", len(got), 1+DefaultLength)
	}
}

func TestGenerateInvalidParameters(t *testing.T) {
	m, err := Build(strings.Fields("a b a b"), 2)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	s := NewSeededSampler(1)

	testCases := []struct {
		name    string
		seed    []string
		opts    []GenerateOption
		wantErr error
	}{
		{"negative length", []string{"a"}, []GenerateOption{WithLength(-1)}, ErrInvalidParameter},
		{"zero temperature", []string{"a"}, []GenerateOption{WithTemperature(0)}, ErrInvalidParameter},
		{"negative temperature", []string{"a"}, []GenerateOption{WithTemperature(-2)}, ErrInvalidParameter},
		{"empty seed", nil, nil, ErrEmptyPrefix},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Generate(m, tc.seed, tc.opts...)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Generate() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestGenerateTrigram(t *testing.T) {
	m, err := Build(strings.Fields("one fish two fish red fish blue fish one fish two fish"), 3)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	s := NewSeededSampler(3)

	got, err := s.Generate(m, []string{"one", "fish"}, WithLength(2), WithTemperature(0.01))
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	want := []string{"one", "fish", "two", "fish"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate() = %v, want %v", got, want)
	}
}

func BenchmarkGenerate(b *testing.B) {
	corpus := strings.Fields(strings.Repeat("the quick brown fox jumps over the lazy dog ", 500))
	m, err := Build(corpus, 2)
	if err != nil {
		b.Fatalf("Build() failed: %v", err)
	}
	s := NewSeededSampler(1)
	seed := []string{"the"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Generate(m, seed, WithLength(50)); err != nil {
			b.Fatalf("Generate() failed: %v", err)
		}
	}
}
