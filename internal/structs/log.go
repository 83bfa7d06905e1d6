package structs

import (
	"bytes"
	"encoding/json"
)

// LogEntry is a single moderation-log record as returned by the
// /r/{subreddit}/about/log listing.
//
// Only the fields documented by the Reddit API are modelled. Any attribute the
// API adds later is kept in Extra when its value is a JSON scalar and dropped
// when it is an object or an array, so a flattened entry can never carry a
// nested structure.
type LogEntry struct {
	ID                    string  `json:"id"`
	CreatedUTC            float64 `json:"created_utc"`
	Action                string  `json:"action"`
	Moderator             string  `json:"mod"`
	ModeratorID           string  `json:"mod_id36"`
	TargetAuthor          *string `json:"target_author"`
	TargetFullname        *string `json:"target_fullname"`
	TargetTitle           *string `json:"target_title"`
	TargetPermalink       *string `json:"target_permalink"`
	TargetBody            *string `json:"target_body"`
	Subreddit             string  `json:"subreddit"`
	SubredditNamePrefixed string  `json:"subreddit_name_prefixed"`
	SubredditID           string  `json:"sr_id36"`
	Details               *string `json:"details"`
	Description           *string `json:"description"`

	Extra map[string]interface{} `json:"-"`
}

// knownLogFields lists the keys decoded into LogEntry's typed fields.
var knownLogFields = map[string]bool{
	"id":                      true,
	"created_utc":             true,
	"action":                  true,
	"mod":                     true,
	"mod_id36":                true,
	"target_author":           true,
	"target_fullname":         true,
	"target_title":            true,
	"target_permalink":        true,
	"target_body":             true,
	"subreddit":               true,
	"subreddit_name_prefixed": true,
	"sr_id36":                 true,
	"details":                 true,
	"description":             true,
}

func (e *LogEntry) UnmarshalJSON(data []byte) error {
	// Alias drops the method set so the typed fields decode normally.
	type alias LogEntry
	var typed alias
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = LogEntry(typed)
	for key, value := range raw {
		if knownLogFields[key] {
			continue
		}
		scalar, ok := decodeScalar(value)
		if !ok {
			continue
		}
		if e.Extra == nil {
			e.Extra = make(map[string]interface{})
		}
		e.Extra[key] = scalar
	}

	return nil
}

// decodeScalar decodes a JSON string, number, bool or null. Objects and arrays
// are rejected.
func decodeScalar(value json.RawMessage) (interface{}, bool) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || trimmed[0] == '{' || trimmed[0] == '[' {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}
