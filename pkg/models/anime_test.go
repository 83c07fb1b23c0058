package models

import (
	"encoding/json"
	"testing"
)

func TestUnmarshalUpstreamFieldVariants(t *testing.T) {
	var e AnimeEntry
	err := json.Unmarshal([]byte(`{"id":123,"url":"/one-piece/","judul":"One Piece","total_episode":"1071","cover":"x.jpg"}`), &e)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.ID != "123" {
		t.Errorf("ID = %q, want \"123\"", e.ID)
	}
	if e.URL != "/one-piece/" {
		t.Errorf("URL = %q", e.URL)
	}
	if e.Title != "One Piece" {
		t.Errorf("Title = %q", e.Title)
	}
	if e.TotalEpisodes != 1071 {
		t.Errorf("TotalEpisodes = %d, want 1071", e.TotalEpisodes)
	}
}

func TestMarshalKeepsPassthroughFields(t *testing.T) {
	var e AnimeEntry
	if err := json.Unmarshal([]byte(`{"id":"a1","url":"slug","cover":"x.jpg","score":8.5}`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var round map[string]any
	if err := json.Unmarshal(out, &round); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if round["cover"] != "x.jpg" {
		t.Errorf("passthrough field lost: %v", round)
	}
	if round["score"] != 8.5 {
		t.Errorf("numeric passthrough field lost: %v", round)
	}
}

func TestIdentity(t *testing.T) {
	tests := []struct {
		entry  AnimeEntry
		key    string
		hasKey bool
	}{
		{NewAnimeEntry("42", "/One-Piece/", "", 0), "one-piece|42", true},
		{NewAnimeEntry("", "naruto", "", 0), "naruto|", true},
		{NewAnimeEntry("7", "", "", 0), "|7", true},
		{NewAnimeEntry("", "", "Orphan", 0), "", false},
	}
	for _, tt := range tests {
		key, ok := tt.entry.Identity()
		if ok != tt.hasKey || key != tt.key {
			t.Errorf("Identity(%+v) = (%q, %v), want (%q, %v)", tt.entry, key, ok, tt.key, tt.hasKey)
		}
	}
}

func TestEpisodeCountFallback(t *testing.T) {
	if n := NewAnimeEntry("", "x", "", 0).EpisodeCount(); n != DefaultTotalEpisodes {
		t.Fatalf("expected fallback %d, got %d", DefaultTotalEpisodes, n)
	}
	if n := NewAnimeEntry("", "x", "", 24).EpisodeCount(); n != 24 {
		t.Fatalf("expected 24, got %d", n)
	}
}

func TestNormalizeSlug(t *testing.T) {
	tests := map[string]string{
		"/One-Piece/":  "one-piece",
		"  /a/b/  ":    "a/b",
		"plain":        "plain",
		"///":          "",
	}
	for in, want := range tests {
		if got := NormalizeSlug(in); got != want {
			t.Errorf("NormalizeSlug(%q) = %q, want %q", in, got, want)
		}
	}
}
