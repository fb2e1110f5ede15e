package phrase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Word-count boundaries for the length preference filter.
const (
	shortMaxWords = 8
	longMinWords  = 12
)

// focusDescriptions feed the rationale text per focus area.
var focusDescriptions = map[string]string{
	"general":         "balanced practice with common words",
	"pronunciation":   "challenging consonant and vowel combinations",
	"articulation":    "clear enunciation of difficult sounds",
	"fluency":         "smooth flowing sentences with natural rhythm",
	"consonants":      "emphasis on consonant clarity",
	"vowels":          "vowel sound differentiation",
	"tongue_twisters": "alliterative phrases for agility",
}

// focusPhrases holds the curated phrase tables per focus area.
var focusPhrases = map[string][]string{
	"general": {
		"The bright morning sun shines through the window.",
		"Children laughed as they played in the garden.",
		"Technology helps us connect with people worldwide.",
	},
	"pronunciation": {
		"Thirty-three thousand feathers fell from fifty birds.",
		"The sixth sick sheik's sixth sheep's sick.",
		"How much wood would a woodchuck chuck if a woodchuck could chuck wood?",
	},
	"articulation": {
		"Red leather, yellow leather, red leather, yellow leather.",
		"Unique New York, unique New York, you know you need unique New York.",
		"The lips, the teeth, the tip of the tongue.",
	},
	"fluency": {
		"The rain in Spain stays mainly in the plain, creating beautiful patterns across the landscape.",
		"A successful speech requires proper breathing, clear articulation, and confident delivery.",
		"Modern communication technology bridges distances but cannot replace personal connections.",
	},
	"consonants": {
		"Betty bought some butter but the butter was bitter, so Betty bought some better butter.",
		"Six thick thistle sticks stood still in the thick mist.",
		"The quick brown fox jumps over the lazy dog's back.",
	},
	"vowels": {
		"How now brown cow, eating grass beneath the bough.",
		"The owl hooted through the cool blue moon above the zoo.",
		"Each peach piece teaches speech through reach and beat.",
	},
	"tongue_twisters": {
		"Sally sells seashells by the seashore, surely she shall see some shells soon.",
		"Rubber baby buggy bumpers bounce brightly by the bay.",
		"Fuzzy wuzzy was a bear, fuzzy wuzzy had no hair, fuzzy wuzzy wasn't fuzzy, was he?",
	},
}

// topicPhrases override the focus tables when the user's topic interest
// names one of these subjects.
var topicPhrases = map[string][]string{
	"animals": {
		"The playful dolphins dance through the sparkling ocean waves.",
		"Majestic elephants trumpeted loudly across the African savanna.",
		"Colorful butterflies flutter gracefully among the blooming flowers.",
	},
	"technology": {
		"Artificial intelligence transforms how we process information daily.",
		"Smartphones connect people instantly across vast global distances.",
		"Virtual reality creates immersive experiences beyond imagination.",
	},
	"sports": {
		"Athletes train rigorously to achieve peak physical performance.",
		"The basketball bounced rhythmically against the gymnasium floor.",
		"Swimming strengthens muscles while improving cardiovascular health.",
	},
}

// classicFallbacks is the fixed last-resort phrase set. [Chain] serves one
// of these when every configured provider fails, so a session can always
// proceed.
var classicFallbacks = []Phrase{
	{Text: "The quick brown fox jumps over the lazy dog.", Rationale: "Classic pangram for practicing all letters."},
	{Text: "She sells seashells by the seashore.", Rationale: "Great for practicing 'sh' and 's' sounds."},
	{Text: "Peter Piper picked a peck of pickled peppers.", Rationale: "Excellent alliteration practice."},
}

// Compile-time assertion that Builtin satisfies Provider.
var _ Provider = (*Builtin)(nil)

// Builtin serves phrases from the curated tables above. Selection is
// random but always succeeds, which makes Builtin the canonical terminal
// entry of a [Chain].
type Builtin struct{}

// NewBuiltin returns the table-backed provider.
func NewBuiltin() *Builtin { return &Builtin{} }

// Generate implements Provider. It never returns an error.
func (b *Builtin) Generate(_ context.Context, req Request) (Phrase, error) {
	focus := req.FocusArea
	pool, ok := focusPhrases[focus]
	if !ok {
		focus = "general"
		pool = focusPhrases["general"]
	}

	// Length preference narrows the pool; an empty result falls through to
	// the general table so there is always something to pick.
	if filtered := filterByLength(pool, req.Length); len(filtered) > 0 {
		pool = filtered
	} else if req.Length == "short" || req.Length == "long" {
		pool = focusPhrases["general"]
	}

	text := pool[rand.IntN(len(pool))]

	// A recognised topic interest overrides the focus-area pick.
	topic := strings.ToLower(strings.TrimSpace(req.Topic))
	if topic != "" {
		for name, phrases := range topicPhrases {
			if strings.Contains(topic, name) {
				text = phrases[rand.IntN(len(phrases))]
				break
			}
		}
	}

	return Phrase{Text: text, Rationale: rationale(focus, req)}, nil
}

// filterByLength keeps phrases matching the length preference: short means
// fewer than 8 words, long means more than 12, anything else passes all.
func filterByLength(pool []string, length string) []string {
	switch length {
	case "short":
		return filter(pool, func(p string) bool { return len(strings.Fields(p)) < shortMaxWords })
	case "long":
		return filter(pool, func(p string) bool { return len(strings.Fields(p)) > longMinWords })
	default:
		return pool
	}
}

func filter(in []string, keep func(string) bool) []string {
	var out []string
	for _, p := range in {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// rationale composes the explanation shown beside the phrase.
func rationale(focus string, req Request) string {
	desc, ok := focusDescriptions[focus]
	if !ok {
		desc = focusDescriptions["general"]
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "beginner"
	}
	r := fmt.Sprintf("This phrase focuses on %s at %s level.", desc, difficulty)
	if topic := strings.TrimSpace(req.Topic); topic != "" {
		r += fmt.Sprintf(" Customized for your interest in %s.", topic)
	}
	return r
}
