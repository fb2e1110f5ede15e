package score_test

import (
	"strings"
	"testing"

	"voicebuddy/internal/score"
)

func TestScore_IdenticalTranscript(t *testing.T) {
	t.Parallel()

	targets := []string{
		"The quick brown fox jumps over the lazy dog.",
		"She sells seashells by the seashore.",
		"Red leather, yellow leather!",
		"one",
	}
	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			t.Parallel()

			// Same words, different case and punctuation.
			transcript := strings.ToUpper(strings.NewReplacer(".", "", ",", "", "!", "").Replace(target))
			res := score.Score(target, transcript)
			if res.Percentage != 100 {
				t.Errorf("Score(%q, identical) = %d, want 100", target, res.Percentage)
			}
			for _, w := range res.Words {
				if !w.Matched {
					t.Errorf("word %q unmatched in identical transcript", w.Expected)
				}
			}
		})
	}
}

func TestScore_EmptyTranscript(t *testing.T) {
	t.Parallel()

	res := score.Score("Peter Piper picked a peck of pickled peppers.", "")
	if res.Percentage != 0 {
		t.Errorf("Score(T, \"\") = %d, want 0", res.Percentage)
	}
	if len(res.Words) != 8 {
		t.Fatalf("Words length = %d, want 8", len(res.Words))
	}
	for _, w := range res.Words {
		if w.Matched || w.Heard != "" {
			t.Errorf("word %+v should be unmatched with nothing heard", w)
		}
	}
}

func TestScore_BoundsForArbitraryInputs(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"", ""},
		{"", "some spoken words"},
		{"   ", "\t\n"},
		{"a b c", "x y z"},
		{"...!!!", "???"},
		{"hello world", "hello world hello world hello world"},
	}
	for _, p := range pairs {
		res := score.Score(p[0], p[1])
		if res.Percentage < 0 || res.Percentage > 100 {
			t.Errorf("Score(%q, %q) = %d, out of [0, 100]", p[0], p[1], res.Percentage)
		}
	}
}

func TestScore_SeashellsScenario(t *testing.T) {
	t.Parallel()

	res := score.Score(
		"She sells seashells by the seashore.",
		"she sells sea shells by the seashore",
	)

	// 5 of 6 target words match: "seashells" was heard split in two.
	if res.Percentage != 83 {
		t.Errorf("Percentage = %d, want 83", res.Percentage)
	}

	matched := map[string]bool{}
	for _, w := range res.Words {
		if w.Matched {
			matched[w.Expected] = true
		}
	}
	for _, want := range []string{"she", "sells", "by", "the", "seashore"} {
		if !matched[want] {
			t.Errorf("word %q should be matched", want)
		}
	}
	if matched["seashells"] {
		t.Error(`"seashells" must not count as matched against the split form`)
	}
}

func TestScore_ExtraWordsDoNotPenalize(t *testing.T) {
	t.Parallel()

	target := "how now brown cow"
	res := score.Score(target, "how now brown cow and then some extra words")
	if res.Percentage != 100 {
		t.Errorf("Percentage = %d, want 100 (insertions are free)", res.Percentage)
	}

	// The extras appear as trailing unmatched entries for display.
	var trailing int
	for _, w := range res.Words {
		if w.Expected == "" && w.Heard != "" {
			trailing++
		}
	}
	if trailing != 5 {
		t.Errorf("trailing extra entries = %d, want 5", trailing)
	}
}

func TestScore_SubstitutionAnnotations(t *testing.T) {
	t.Parallel()

	res := score.Score("the weather is nice", "the wether is nice")

	var sub *score.WordMatch
	for i := range res.Words {
		if res.Words[i].Expected == "weather" {
			sub = &res.Words[i]
		}
	}
	if sub == nil {
		t.Fatal(`no entry for target word "weather"`)
	}
	if sub.Matched {
		t.Error(`"weather" vs "wether" must not be a match`)
	}
	if sub.Heard != "wether" {
		t.Errorf("Heard = %q, want %q", sub.Heard, "wether")
	}
	if !sub.Close {
		t.Error(`"wether" should be flagged as close to "weather"`)
	}
	if sub.Similarity <= 0 || sub.Similarity >= 1 {
		t.Errorf("Similarity = %f, want in (0, 1)", sub.Similarity)
	}
}

func TestScore_LeftmostAlignment(t *testing.T) {
	t.Parallel()

	// Two equally-long subsequences exist; the leftmost pairing must win:
	// the first "go" of the transcript aligns to the first "go" of the target.
	res := score.Score("go stop go", "go go")
	if res.Percentage != 67 {
		t.Errorf("Percentage = %d, want 67", res.Percentage)
	}
	if len(res.Words) == 0 || !res.Words[0].Matched || res.Words[0].Expected != "go" {
		t.Fatalf("first entry = %+v, want matched %q", res.Words[0], "go")
	}
}

func TestScore_WordOrderMatters(t *testing.T) {
	t.Parallel()

	// All words present but fully reversed: only one can align.
	res := score.Score("alpha beta gamma", "gamma beta alpha")
	if res.Percentage != 33 {
		t.Errorf("Percentage = %d, want 33", res.Percentage)
	}
}
