package export

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"redditlogs/internal/structs"
)

var (
	// ErrInterrupted ends a run when its context is cancelled.
	ErrInterrupted = errors.New("interrupted")
	// ErrOutput ends a run when standard output can no longer be written.
	ErrOutput = errors.New("output error")
)

// Feed yields log entries newest first and io.EOF at the end.
type Feed interface {
	Next(ctx context.Context) (*structs.LogEntry, error)
}

// Source opens the moderation log of one subreddit.
type Source func(subreddit string, criteria structs.FilterCriteria) Feed

type Decision int

const (
	Keep Decision = iota
	Stop
)

// ApplyAgeCutoff stops at the first entry older than the cutoff. Feeds are
// newest first, so nothing after that entry can qualify.
func ApplyAgeCutoff(entry *structs.LogEntry, criteria structs.FilterCriteria) Decision {
	if criteria.HasCutoff() && entry.CreatedUTC < criteria.Cutoff {
		return Stop
	}
	return Keep
}

type Exporter struct {
	source   Source
	criteria structs.FilterCriteria
	emitter  *Emitter
	unicode  bool
}

func NewExporter(source Source, criteria structs.FilterCriteria, out io.Writer, unicode bool) *Exporter {
	return &Exporter{
		source:   source,
		criteria: criteria,
		emitter:  NewEmitter(out),
		unicode:  unicode,
	}
}

// Run exports each subreddit in turn. A subreddit whose feed fails is logged
// and skipped; only cancellation and output failures end the run early.
func (x *Exporter) Run(ctx context.Context, subreddits []string) error {
	for _, name := range subreddits {
		if ctx.Err() != nil {
			return errors.Wrap(ErrInterrupted, ctx.Err().Error())
		}

		err := x.readLogs(ctx, name)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return errors.Wrapf(ErrInterrupted, "reading /r/%s: %v", name, ctx.Err())
		case errors.Is(err, ErrOutput):
			return err
		default:
			logrus.Errorf("unable to read logs for /r/%s: %v", name, err)
		}
	}
	return nil
}

func (x *Exporter) readLogs(ctx context.Context, name string) error {
	feed := x.source(name, x.criteria)

	emitted := 0
	for {
		entry, err := feed.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if ApplyAgeCutoff(entry, x.criteria) == Stop {
			logrus.Debugf("reached entries older than %g days in /r/%s", x.criteria.MaxAgeDays, name)
			break
		}

		record := Flatten(entry)
		if x.unicode {
			record = ReencodeUnicode(record)
		}
		if err := x.emitter.Emit(record); err != nil {
			return err
		}
		emitted++
	}

	logrus.Debugf("exported %d entries from /r/%s", emitted, name)
	return nil
}
