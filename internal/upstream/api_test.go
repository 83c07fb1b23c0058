package upstream

import "testing"

func TestURLBuilders(t *testing.T) {
	c := NewClient("https://api.example.com/api", 0, 0)

	tests := map[string]string{
		c.ListURL("latest", 3):   "https://api.example.com/api/anime/latest?page=3",
		c.GenreURL("action", 1):  "https://api.example.com/api/anime/genre/action?page=1",
		c.SearchURL("one piece"): "https://api.example.com/api/anime/search?query=one+piece",
		c.VideoURL("al-12-05"):   "https://api.example.com/api/anime/getvideo?chapterUrlId=al-12-05",
	}
	for got, want := range tests {
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

func TestDecodeSearchResultsNestedEnvelope(t *testing.T) {
	body := []byte(`{"data":[{"result":[{"url":"naruto","id":1},{"url":"bleach","id":2}]}]}`)
	out := DecodeSearchResults(body)
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[0].URL != "naruto" || out[1].URL != "bleach" {
		t.Fatalf("unexpected results: %+v", out)
	}
}

func TestDecodeSearchResultsFlatEnvelope(t *testing.T) {
	body := []byte(`{"data":[{"url":"naruto","id":"n1"},{"url":"bleach","id":"b2"}]}`)
	out := DecodeSearchResults(body)
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[1].ID != "b2" {
		t.Fatalf("unexpected id: %q", out[1].ID)
	}
}

func TestDecodeSearchResultsGarbage(t *testing.T) {
	for _, body := range []string{`[]`, `{"data":[]}`, `not json`, `{"other":1}`} {
		if out := DecodeSearchResults([]byte(body)); len(out) != 0 {
			t.Errorf("body %q: expected no results, got %d", body, len(out))
		}
	}
}
