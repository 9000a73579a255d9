package vocab

import "testing"

func TestCorrectorReplacesMisheardTerms(t *testing.T) {
	t.Parallel()

	c := New([]string{"Kubernetes", "Grafana", "DataDog"})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "phonetic match",
			in:   "deploy it to kuberneties now",
			want: "deploy it to Kubernetes now",
		},
		{
			name: "close spelling",
			in:   "open grafanna please",
			want: "open Grafana please",
		},
		{
			name: "two words collapse to one term",
			in:   "check data dog for alerts",
			want: "check DataDog for alerts",
		},
		{
			name: "no match untouched",
			in:   "the quick brown fox",
			want: "the quick brown fox",
		},
		{
			name: "exact term untouched",
			in:   "restart kubernetes",
			want: "restart kubernetes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := c.Correct(tt.in); got != tt.want {
				t.Errorf("Correct(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCorrectorPreservesPunctuation(t *testing.T) {
	t.Parallel()

	c := New([]string{"Grafana"})
	got := c.Correct("open grafanna, then wait.")
	want := "open Grafana, then wait."
	if got != want {
		t.Errorf("Correct() = %q, want %q", got, want)
	}
}

func TestCorrectorEmptyVocabulary(t *testing.T) {
	t.Parallel()

	c := New(nil)
	if !c.Empty() {
		t.Error("Empty() = false for nil vocabulary")
	}
	if got := c.Correct("anything at all"); got != "anything at all" {
		t.Errorf("Correct() = %q, want input unchanged", got)
	}
}

func TestCorrectorIgnoresBlankAndDuplicateEntries(t *testing.T) {
	t.Parallel()

	c := New([]string{"", "  ", "Grafana", "grafana"})
	if len(c.terms) != 1 {
		t.Errorf("len(terms) = %d, want 1", len(c.terms))
	}
}

func TestCorrectorFuzzyThresholdRejectsWeakMatches(t *testing.T) {
	t.Parallel()

	c := New([]string{"Postgres"}, WithFuzzyThreshold(0.99), WithPhoneticThreshold(0.99))
	if got := c.Correct("post office"); got != "post office" {
		t.Errorf("Correct() = %q, want input unchanged", got)
	}
}
