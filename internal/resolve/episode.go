package resolve

import (
	"context"
	"fmt"
	"strings"

	"animehub/internal/upstream"
	"animehub/pkg/models"
)

// CandidateIDs generates the ordered chapter identifier guesses for an
// entry and episode number. The upstream video endpoint keys episodes by an
// opaque id whose format differs per ingest path, so each known format is
// tried in turn: id-based forms first (unpadded, then zero-padded to 2 and
// 3 digits), then slug-based forms.
func CandidateIDs(e *models.AnimeEntry, episode int) []string {
	var out []string
	if id := strings.TrimSpace(e.ID); id != "" {
		out = append(out,
			fmt.Sprintf("al-%s-%d", id, episode),
			fmt.Sprintf("al-%s-%02d", id, episode),
			fmt.Sprintf("al-%s-%03d", id, episode),
		)
	}
	if u := strings.TrimRight(e.URL, "/"); u != "" {
		out = append(out,
			fmt.Sprintf("%s-episode-%d", u, episode),
			fmt.Sprintf("%s-ep-%d", u, episode),
		)
	}
	return out
}

// EpisodeResolver locates playable video metadata for one episode of a
// resolved entry by probing candidate chapter identifiers in order.
type EpisodeResolver struct {
	Client *upstream.Client
}

func NewEpisodeResolver(client *upstream.Client) *EpisodeResolver {
	return &EpisodeResolver{Client: client}
}

// Resolve probes each candidate identifier exactly once, in order, and
// returns the first response that is an object without an "error" field
// carrying either non-empty "data" or a "stream"/"video" field. ok=false
// means every candidate was exhausted.
func (r *EpisodeResolver) Resolve(ctx context.Context, e *models.AnimeEntry, episode int) (models.VideoData, bool) {
	for _, chapterID := range CandidateIDs(e, episode) {
		v, err := r.Client.Video(ctx, chapterID)
		if err != nil {
			continue
		}
		if usableVideo(v) {
			return v, true
		}
	}
	return nil, false
}

func usableVideo(v models.VideoData) bool {
	if v == nil {
		return false
	}
	if _, bad := v["error"]; bad {
		return false
	}
	if data, ok := v["data"]; ok && !emptyValue(data) {
		return true
	}
	if _, ok := v["stream"]; ok {
		return true
	}
	if _, ok := v["video"]; ok {
		return true
	}
	return false
}

// emptyValue reports whether a decoded JSON value counts as "no data":
// nil, empty string, empty array or empty object.
func emptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
