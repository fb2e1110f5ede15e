// Package profile persists the user's practice history and settings as
// JSON files.
//
// Two documents exist: the [Profile] accumulates one [SessionRecord] per
// completed practice session plus quick stats, and [Settings] holds the
// user's practice preferences. Both are loaded once at startup and written
// back on every mutation through a [Store], which writes atomically so a
// crash mid-write never corrupts the previous state.
package profile

import (
	"time"
)

// SessionRecord is one completed practice session as stored in the
// profile document.
type SessionRecord struct {
	// CompletedAt is when the session reached its scored result.
	CompletedAt time.Time `json:"completed_at"`

	// Phrase is the target phrase the user practiced.
	Phrase string `json:"phrase"`

	// Transcript is what the recognizer heard.
	Transcript string `json:"transcript"`

	// Score is the 0-100 match percentage.
	Score int `json:"score"`
}

// Profile is the user's accumulated practice history. The zero value is a
// valid empty profile.
type Profile struct {
	// Sessions holds every completed session, oldest first.
	Sessions []SessionRecord `json:"sessions"`

	// Scores mirrors the per-session percentages, oldest first. Kept as a
	// flat list so progress displays need no record traversal.
	Scores []int `json:"scores"`

	// TotalSessions counts completed sessions.
	TotalSessions int `json:"total_sessions"`

	// BestScore is the highest percentage achieved so far.
	BestScore int `json:"best_score"`
}

// Record appends a completed session and refreshes the quick stats. The
// caller is responsible for persisting afterwards.
func (p *Profile) Record(rec SessionRecord) {
	p.Sessions = append(p.Sessions, rec)
	p.Scores = append(p.Scores, rec.Score)
	p.TotalSessions++
	if rec.Score > p.BestScore {
		p.BestScore = rec.Score
	}
}

// Average returns the mean of all recorded scores, or 0 for an empty
// profile.
func (p *Profile) Average() float64 {
	if len(p.Scores) == 0 {
		return 0
	}
	var sum int
	for _, s := range p.Scores {
		sum += s
	}
	return float64(sum) / float64(len(p.Scores))
}

// Settings are the user's practice preferences. They may change at any
// time, including mid-session.
type Settings struct {
	// FocusArea selects the practice emphasis, e.g. "general" or
	// "tongue_twisters".
	FocusArea string `json:"focus_area"`

	// DifficultyLevel is the self-assessed level, e.g. "beginner".
	DifficultyLevel string `json:"difficulty_level"`

	// TopicInterest is a free-text subject preference. Empty means none.
	TopicInterest string `json:"topic_interest"`

	// PhraseLength is "short", "medium", or "long".
	PhraseLength string `json:"phrase_length"`

	// RecognizerModelSize selects the speech model: "tiny", "base",
	// "small", or "medium". Changing it triggers an asynchronous reload.
	RecognizerModelSize string `json:"recognizer_model_size"`
}

// DefaultSettings returns the settings used when no settings file exists.
func DefaultSettings() Settings {
	return Settings{
		FocusArea:           "general",
		DifficultyLevel:     "beginner",
		TopicInterest:       "",
		PhraseLength:        "medium",
		RecognizerModelSize: "base",
	}
}
