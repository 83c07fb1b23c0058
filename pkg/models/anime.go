package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// DefaultTotalEpisodes is assumed when upstream does not report a usable
// episode count for an entry.
const DefaultTotalEpisodes = 12

// AnimeEntry is one upstream catalog record as returned by the listing and
// search endpoints. Every upstream field is advisory: ids arrive as strings
// or numbers, titles live under "title" or "judul" depending on endpoint,
// and unknown fields must survive untouched to the browse layer.
//
// The typed fields below are parsed views over the raw object; the raw
// object itself is what gets re-serialized, so nothing upstream sent is lost.
type AnimeEntry struct {
	ID            string
	URL           string
	Title         string
	TotalEpisodes int

	raw map[string]json.RawMessage
}

// NewAnimeEntry builds an entry from explicit fields. Used by tests and by
// code paths that construct entries locally instead of decoding upstream JSON.
func NewAnimeEntry(id, url, title string, totalEpisodes int) AnimeEntry {
	return AnimeEntry{ID: id, URL: url, Title: title, TotalEpisodes: totalEpisodes}
}

func (a *AnimeEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.raw = raw
	a.ID = rawString(raw["id"])
	a.URL = rawString(raw["url"])

	a.Title = rawString(raw["title"])
	if a.Title == "" {
		a.Title = rawString(raw["judul"])
	}

	a.TotalEpisodes = 0
	for _, key := range []string{"total_episode", "totalEpisodes", "total_episodes"} {
		if n, ok := rawInt(raw[key]); ok {
			a.TotalEpisodes = n
			break
		}
	}
	return nil
}

// MarshalJSON re-emits the original upstream object when one was decoded,
// so passthrough fields reach the presentation layer. Locally constructed
// entries serialize their typed fields.
func (a AnimeEntry) MarshalJSON() ([]byte, error) {
	if a.raw != nil {
		return json.Marshal(a.raw)
	}
	out := map[string]any{
		"id":    a.ID,
		"url":   a.URL,
		"title": a.Title,
	}
	if a.TotalEpisodes > 0 {
		out["total_episode"] = a.TotalEpisodes
	}
	return json.Marshal(out)
}

// Identity returns the deduplication key for the entry: the normalized
// composite of url and id. Entries missing both fields have no identity
// and are never considered duplicates of anything.
func (a AnimeEntry) Identity() (string, bool) {
	u := NormalizeSlug(a.URL)
	id := strings.ToLower(strings.TrimSpace(a.ID))
	if u == "" && id == "" {
		return "", false
	}
	return u + "|" + id, true
}

// EpisodeCount returns the reported episode total, or DefaultTotalEpisodes
// when upstream gave none.
func (a AnimeEntry) EpisodeCount() int {
	if a.TotalEpisodes > 0 {
		return a.TotalEpisodes
	}
	return DefaultTotalEpisodes
}

// NormalizeSlug lower-cases a slug-like value and trims surrounding slashes
// and whitespace. Both entry URLs and user-typed slugs go through this
// before any comparison.
func NormalizeSlug(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), "/"))
}

// rawString decodes a JSON value that may be a string, number or bool into
// its string form. Upstream is not consistent about id types.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// rawInt decodes a JSON value that may be a number or a numeric string.
func rawInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}
	return 0, false
}
