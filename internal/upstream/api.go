package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"animehub/pkg/models"
)

// ListURL builds the paginated listing URL for a category endpoint
// (latest, ongoing, completed, movie).
func (c *Client) ListURL(endpoint string, page int) string {
	return fmt.Sprintf("%s/anime/%s?page=%d", c.BaseURL, url.PathEscape(endpoint), page)
}

// GenreURL builds the paginated listing URL for a genre.
func (c *Client) GenreURL(genre string, page int) string {
	return fmt.Sprintf("%s/anime/genre/%s?page=%d", c.BaseURL, url.PathEscape(genre), page)
}

// SearchURL builds the free-text search URL.
func (c *Client) SearchURL(query string) string {
	return fmt.Sprintf("%s/anime/search?query=%s", c.BaseURL, url.QueryEscape(query))
}

// VideoURL builds the per-episode video lookup URL for a chapter identifier.
func (c *Client) VideoURL(chapterID string) string {
	return fmt.Sprintf("%s/anime/getvideo?chapterUrlId=%s", c.BaseURL, url.QueryEscape(chapterID))
}

// searchEnvelope is the loose wrapper the search endpoint answers with.
// Results hide either directly under "data" or one level deeper under
// data[0].result, depending on the upstream version.
type searchEnvelope struct {
	Data []json.RawMessage `json:"data"`
}

// Search runs a free-text search and unwraps the envelope into entries.
// A body that does not match any known envelope yields no results rather
// than an error; the search endpoint is as unreliable as the listings.
func (c *Client) Search(ctx context.Context, query string) ([]models.AnimeEntry, error) {
	body, err := c.Get(ctx, c.SearchURL(query))
	if err != nil {
		return nil, err
	}
	return DecodeSearchResults(body), nil
}

// DecodeSearchResults unwraps a search response body into entries.
func DecodeSearchResults(body []byte) []models.AnimeEntry {
	var env searchEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Data) == 0 {
		return nil
	}

	var inner struct {
		Result []models.AnimeEntry `json:"result"`
	}
	if err := json.Unmarshal(env.Data[0], &inner); err == nil && len(inner.Result) > 0 {
		return inner.Result
	}

	out := make([]models.AnimeEntry, 0, len(env.Data))
	for _, raw := range env.Data {
		var e models.AnimeEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Video fetches the video metadata object for one chapter identifier.
// The decoded object is returned as-is; callers decide whether it is usable.
func (c *Client) Video(ctx context.Context, chapterID string) (models.VideoData, error) {
	var v models.VideoData
	if err := c.GetJSON(ctx, c.VideoURL(chapterID), &v); err != nil {
		return nil, err
	}
	return v, nil
}
