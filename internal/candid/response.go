package candid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"grant-fetcher/internal/errors"
)

// page is what the client needs to know about one response body. Anything
// else in the body is passed through untouched.
type page struct {
	raw       json.RawMessage
	totalHits int
	numPages  int
	rows      []json.RawMessage
	hasData   bool
}

// parsePage checks the expected shape: a JSON object whose optional "data"
// member is an object, whose optional "rows" is an array, and whose
// optional counters are numbers.
func parsePage(body []byte) (*page, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.NewMalformedResponseError("empty body", nil)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil || top == nil {
		return nil, errors.NewMalformedResponseError("body is not a JSON object", err)
	}

	p := &page{raw: json.RawMessage(trimmed)}
	rawData, ok := top["data"]
	if !ok || isNull(rawData) {
		return p, nil
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(rawData, &data); err != nil {
		return nil, errors.NewMalformedResponseError(`"data" is not an object`, err)
	}
	p.hasData = true

	var err error
	if p.totalHits, err = optionalCount(data, "total_hits"); err != nil {
		return nil, err
	}
	if p.numPages, err = optionalCount(data, "num_pages"); err != nil {
		return nil, err
	}
	if rawRows, ok := data["rows"]; ok && !isNull(rawRows) {
		if err := json.Unmarshal(rawRows, &p.rows); err != nil {
			return nil, errors.NewMalformedResponseError(`"data.rows" is not an array`, err)
		}
	}
	return p, nil
}

func optionalCount(data map[string]json.RawMessage, key string) (int, error) {
	raw, ok := data[key]
	if !ok || isNull(raw) {
		return 0, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, errors.NewMalformedResponseError(fmt.Sprintf("%q is not a number", "data."+key), err)
	}
	return int(n), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// maxErrorText caps how many bytes of a raw error body reach the user.
const maxErrorText = 200

// errorMessage pulls a human readable message out of an error body,
// falling back to the status text.
func errorMessage(body []byte, status string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, m := range []string{payload.Message, payload.Error, payload.Detail} {
			if m != "" {
				return m
			}
		}
	}

	text := string(bytes.TrimSpace(body))
	if text == "" {
		return status
	}
	if len(text) > maxErrorText {
		cut := maxErrorText
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}

// aggregate is the document written when several pages are combined.
type aggregate struct {
	TotalHits    int               `json:"total_hits"`
	NumPages     int               `json:"num_pages"`
	FirstPage    int               `json:"first_page"`
	LastPage     int               `json:"last_page"`
	PagesFetched int               `json:"pages_fetched"`
	Grants       []json.RawMessage `json:"grants"`
}
