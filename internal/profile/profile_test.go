package profile_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"voicebuddy/internal/profile"
)

func TestProfile_Record(t *testing.T) {
	t.Parallel()

	var p profile.Profile
	for _, score := range []int{60, 80, 100} {
		p.Record(profile.SessionRecord{
			CompletedAt: time.Now(),
			Phrase:      "She sells seashells by the seashore.",
			Transcript:  "she sells seashells by the seashore",
			Score:       score,
		})
	}

	if p.TotalSessions != 3 {
		t.Errorf("TotalSessions = %d, want 3", p.TotalSessions)
	}
	if p.BestScore != 100 {
		t.Errorf("BestScore = %d, want 100", p.BestScore)
	}
	if avg := p.Average(); avg != 80.0 {
		t.Errorf("Average() = %f, want 80.0", avg)
	}
	if len(p.Sessions) != 3 || len(p.Scores) != 3 {
		t.Errorf("Sessions/Scores lengths = %d/%d, want 3/3", len(p.Sessions), len(p.Scores))
	}
}

func TestProfile_BestScoreNeverDrops(t *testing.T) {
	t.Parallel()

	var p profile.Profile
	p.Record(profile.SessionRecord{Score: 90})
	p.Record(profile.SessionRecord{Score: 40})
	if p.BestScore != 90 {
		t.Errorf("BestScore = %d, want 90", p.BestScore)
	}
}

func TestProfile_AverageEmpty(t *testing.T) {
	t.Parallel()

	var p profile.Profile
	if avg := p.Average(); avg != 0 {
		t.Errorf("Average() of empty profile = %f, want 0", avg)
	}
}

func TestStore_ProfileRoundTrip(t *testing.T) {
	t.Parallel()

	store := profile.NewStore(t.TempDir())

	p, err := store.LoadProfile()
	if err != nil {
		t.Fatalf("LoadProfile() on empty dir error = %v", err)
	}
	if p.TotalSessions != 0 || len(p.Sessions) != 0 {
		t.Errorf("fresh profile = %+v, want empty", p)
	}

	p.Record(profile.SessionRecord{
		CompletedAt: time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC),
		Phrase:      "Red leather, yellow leather.",
		Transcript:  "red leather yellow leather",
		Score:       100,
	})
	if err := store.SaveProfile(p); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	got, err := store.LoadProfile()
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if got.TotalSessions != 1 || got.BestScore != 100 {
		t.Errorf("reloaded profile = %+v", got)
	}
	if got.Sessions[0].Phrase != "Red leather, yellow leather." {
		t.Errorf("Phrase = %q", got.Sessions[0].Phrase)
	}
}

func TestStore_SettingsRoundTrip(t *testing.T) {
	t.Parallel()

	store := profile.NewStore(t.TempDir())

	cfg, err := store.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() on empty dir error = %v", err)
	}
	if cfg != profile.DefaultSettings() {
		t.Errorf("fresh settings = %+v, want defaults", cfg)
	}

	cfg.FocusArea = "tongue_twisters"
	cfg.RecognizerModelSize = "small"
	if err := store.SaveSettings(cfg); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	got, err := store.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if got != cfg {
		t.Errorf("reloaded settings = %+v, want %+v", got, cfg)
	}
}

func TestStore_SettingsJSONShape(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := profile.NewStore(dir)
	if err := store.SaveSettings(profile.DefaultSettings()); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "voicebuddy_settings.json"))
	if err != nil {
		t.Fatalf("read settings file: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("settings file is not valid JSON: %v", err)
	}
	for _, key := range []string{
		"focus_area", "difficulty_level", "topic_interest",
		"phrase_length", "recognizer_model_size",
	} {
		if _, ok := raw[key]; !ok {
			t.Errorf("settings JSON missing key %q", key)
		}
	}
}

func TestStore_CorruptFileIsAnError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "voicebuddy_profile.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := profile.NewStore(dir).LoadProfile(); err == nil {
		t.Error("LoadProfile() on corrupt file should fail")
	}
}
