package logs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02T15:04:05"

func InitLogrus() {
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetReportCaller(true)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&PipeFormatter{})
}

// SetOutput redirects diagnostics, used when stderr is replaced by the caller.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

// SetLevel applies a configured level name, keeping the current level when the
// name does not parse.
func SetLevel(name string) {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		logrus.Warnf("unknown log level %q, keeping %s", name, logrus.GetLevel())
		return
	}
	logrus.SetLevel(level)
}

// PipeFormatter renders "time | LEVEL | function | message" lines.
type PipeFormatter struct {
}

func (f *PipeFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	caller := "-"
	if entry.HasCaller() {
		caller = shortFuncName(entry.Caller.Function)
	}

	fmt.Fprintf(b, "%s | %s | %s | %s",
		entry.Time.Format(timestampFormat),
		strings.ToUpper(entry.Level.String()),
		caller,
		entry.Message)

	for key, value := range entry.Data {
		fmt.Fprintf(b, " %s=%v", key, value)
	}
	b.WriteByte('\n')

	return b.Bytes(), nil
}

// shortFuncName strips the package path from a runtime function name:
// "redditlogs/internal/export.(*Exporter).Run" becomes "(*Exporter).Run".
func shortFuncName(function string) string {
	if slash := strings.LastIndex(function, "/"); slash >= 0 {
		function = function[slash+1:]
	}
	if dot := strings.Index(function, "."); dot >= 0 {
		function = function[dot+1:]
	}
	return function
}
