package export

import (
	"redditlogs/internal/structs"
	"redditlogs/internal/util"
)

// Record is one flattened log entry, ready to be written as a JSON object.
type Record map[string]interface{}

type fieldMapping struct {
	key   string
	value func(e *structs.LogEntry) interface{}
}

// logFields is the output shape of an entry. The moderator always goes out
// under "mod". Attributes Reddit adds beyond these are passed through only when
// they are scalars (see structs.LogEntry), so a record never holds a nested
// value.
var logFields = []fieldMapping{
	{"id", func(e *structs.LogEntry) interface{} { return e.ID }},
	{"created_utc", func(e *structs.LogEntry) interface{} { return e.CreatedUTC }},
	{"action", func(e *structs.LogEntry) interface{} { return e.Action }},
	{"mod", func(e *structs.LogEntry) interface{} { return e.Moderator }},
	{"mod_id36", func(e *structs.LogEntry) interface{} { return e.ModeratorID }},
	{"target_author", func(e *structs.LogEntry) interface{} { return nullable(e.TargetAuthor) }},
	{"target_fullname", func(e *structs.LogEntry) interface{} { return nullable(e.TargetFullname) }},
	{"target_title", func(e *structs.LogEntry) interface{} { return nullable(e.TargetTitle) }},
	{"target_permalink", func(e *structs.LogEntry) interface{} { return nullable(e.TargetPermalink) }},
	{"target_body", func(e *structs.LogEntry) interface{} { return nullable(e.TargetBody) }},
	{"subreddit", func(e *structs.LogEntry) interface{} { return e.Subreddit }},
	{"subreddit_name_prefixed", func(e *structs.LogEntry) interface{} { return e.SubredditNamePrefixed }},
	{"sr_id36", func(e *structs.LogEntry) interface{} { return e.SubredditID }},
	{"details", func(e *structs.LogEntry) interface{} { return nullable(e.Details) }},
	{"description", func(e *structs.LogEntry) interface{} { return nullable(e.Description) }},
}

// Flatten maps entry onto a Record. Known fields take precedence over
// pass-through attributes of the same name.
func Flatten(entry *structs.LogEntry) Record {
	record := make(Record, len(logFields)+len(entry.Extra))
	for key, value := range entry.Extra {
		record[key] = value
	}
	for _, field := range logFields {
		record[field.key] = field.value(entry)
	}
	return record
}

// ReencodeUnicode returns a copy of record with every string value escaped to
// pure ASCII. Other values are copied unchanged.
func ReencodeUnicode(record Record) Record {
	out := make(Record, len(record))
	for key, value := range record {
		if s, ok := value.(string); ok {
			out[key] = util.EscapeNonASCII(s)
			continue
		}
		out[key] = value
	}
	return out
}

func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
