package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redditlogs/internal/structs"
)

const rawEntry = `{
	"id": "ModAction_8f2c",
	"created_utc": 1700000000.0,
	"action": "removecomment",
	"mod": "AutoModerator",
	"mod_id36": "6l4z3",
	"target_author": "spammer",
	"target_fullname": "t1_abc",
	"target_title": null,
	"target_permalink": "/r/testsub/comments/x/y/abc/",
	"target_body": "buy cheap stuff",
	"subreddit": "testsub",
	"subreddit_name_prefixed": "r/testsub",
	"sr_id36": "2qh1i",
	"details": "remove",
	"description": null,
	"new_scalar": 3,
	"new_flag": true,
	"new_object": {"a": 1},
	"new_list": [1, 2]
}`

func decodeEntry(t *testing.T) *structs.LogEntry {
	t.Helper()

	var entry structs.LogEntry
	require.NoError(t, json.Unmarshal([]byte(rawEntry), &entry))
	return &entry
}

func TestFlatten(t *testing.T) {
	record := Flatten(decodeEntry(t))

	assert.Equal(t, "AutoModerator", record["mod"])
	assert.NotContains(t, record, "_mod")
	assert.NotContains(t, record, "moderator")
	assert.Equal(t, "ModAction_8f2c", record["id"])
	assert.Equal(t, 1700000000.0, record["created_utc"])
	assert.Equal(t, "buy cheap stuff", record["target_body"])

	assert.Contains(t, record, "target_title")
	assert.Nil(t, record["target_title"])
	assert.Contains(t, record, "description")
	assert.Nil(t, record["description"])

	assert.Equal(t, json.Number("3"), record["new_scalar"])
	assert.Equal(t, true, record["new_flag"])
	assert.NotContains(t, record, "new_object")
	assert.NotContains(t, record, "new_list")

	assert.Len(t, record, len(logFields)+2)
}

func TestFlatten_OnlyPrimitiveValues(t *testing.T) {
	for key, value := range Flatten(decodeEntry(t)) {
		switch value.(type) {
		case nil, string, float64, bool, json.Number:
		default:
			t.Errorf("key %q holds non-primitive %T", key, value)
		}
	}
}

func TestFlatten_KnownFieldsWinOverExtras(t *testing.T) {
	entry := decodeEntry(t)
	entry.Extra["mod"] = "impostor"

	assert.Equal(t, "AutoModerator", Flatten(entry)["mod"])
}

func TestReencodeUnicode_ASCIIUnchanged(t *testing.T) {
	record := Flatten(decodeEntry(t))

	assert.Equal(t, record, ReencodeUnicode(record))
}

func TestReencodeUnicode(t *testing.T) {
	record := Record{
		"title":   "Ünïcödé 🎉",
		"created": 1700000000.0,
		"null":    nil,
	}

	once := ReencodeUnicode(record)
	assert.Equal(t, `\xdcn\xefc\xf6d\xe9 \U0001f389`, once["title"])
	assert.Equal(t, 1700000000.0, once["created"])
	assert.Nil(t, once["null"])

	assert.Equal(t, once, ReencodeUnicode(once))
	assert.Equal(t, "Ünïcödé 🎉", record["title"], "input must not be modified")
}

func TestReencodeUnicode_MalformedText(t *testing.T) {
	record := Record{"body": "half \xed\xa0\xbd surrogate"}

	assert.NotPanics(t, func() {
		assert.Equal(t, `half \xed\xa0\xbd surrogate`, ReencodeUnicode(record)["body"])
	})
}
