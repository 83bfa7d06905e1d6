package logs

import (
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeFormatter_Format(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC),
		Level:   logrus.ErrorLevel,
		Message: "unable to read logs for /r/badsub: not found",
		Caller:  &runtime.Frame{Function: "redditlogs/internal/export.(*Exporter).readLogs"},
	}
	entry.Logger.SetReportCaller(true)

	out, err := (&PipeFormatter{}).Format(entry)
	require.NoError(t, err)

	assert.Equal(t,
		"2024-03-01T12:30:45 | ERROR | (*Exporter).readLogs | unable to read logs for /r/badsub: not found\n",
		string(out))
}

func TestPipeFormatter_WithoutCaller(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "hello",
		Data:    logrus.Fields{"subreddit": "testsub"},
	}

	out, err := (&PipeFormatter{}).Format(entry)
	require.NoError(t, err)

	line := string(out)
	assert.True(t, strings.HasPrefix(line, "2024-03-01T00:00:00 | INFO | - | hello"))
	assert.Contains(t, line, "subreddit=testsub")
}

func TestShortFuncName(t *testing.T) {
	assert.Equal(t, "main", shortFuncName("main.main"))
	assert.Equal(t, "Run", shortFuncName("redditlogs/internal/cli.Run"))
	assert.Equal(t, "(*Session).ModLog", shortFuncName("redditlogs/internal/reddit.(*Session).ModLog"))
	assert.Equal(t, "plain", shortFuncName("plain"))
}

func TestSetLevel(t *testing.T) {
	defer logrus.SetLevel(logrus.GetLevel())

	SetLevel("debug")
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	SetLevel("nonsense")
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}
