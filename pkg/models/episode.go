package models

// EpisodeRef is one item of the derived episode list attached to a detail
// view. It is computed from the entry's episode count at request time and
// never stored in the cache.
type EpisodeRef struct {
	Episode int    `json:"episode"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Date    string `json:"date"`
}

// VideoData is the decoded video-lookup response for one episode. The
// upstream shape varies per host, so it is passed through loosely typed.
type VideoData map[string]any
