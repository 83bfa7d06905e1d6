package reddit

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"redditlogs/internal/structs"
)

// Feed is a lazy, forward-only view of one subreddit's moderation log in the
// order Reddit returns it, newest first. Pages are requested only when the
// previous one is exhausted, so a caller that stops early never triggers
// further requests. A Feed cannot be restarted; once Next has returned an
// error every later call returns the same error.
type Feed struct {
	session   *Session
	subreddit string
	query     url.Values

	page  []structs.LogEntry
	pos   int
	after string
	pages int
	done  bool
	err   error
}

// ModLog opens the moderation log of subreddit. The action and moderator
// criteria are applied by Reddit.
func (s *Session) ModLog(subreddit string, criteria structs.FilterCriteria) *Feed {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(s.PageSize))
	query.Set("raw_json", "1")
	if criteria.Action != "" {
		query.Set("type", criteria.Action)
	}
	if criteria.Moderator != "" {
		query.Set("mod", criteria.Moderator)
	}

	return &Feed{
		session:   s,
		subreddit: subreddit,
		query:     query,
	}
}

// Next returns the next entry, or io.EOF once the log is exhausted.
func (f *Feed) Next(ctx context.Context) (*structs.LogEntry, error) {
	if f.err != nil {
		return nil, f.err
	}

	for f.pos >= len(f.page) {
		if f.done {
			return nil, io.EOF
		}
		if err := f.fetch(ctx); err != nil {
			f.err = err
			return nil, err
		}
	}

	entry := &f.page[f.pos]
	f.pos++
	return entry, nil
}

// Pages reports how many listing pages have been requested so far.
func (f *Feed) Pages() int {
	return f.pages
}

func (f *Feed) fetch(ctx context.Context) error {
	query := url.Values{}
	for k, v := range f.query {
		query[k] = v
	}
	if f.after != "" {
		query.Set("after", f.after)
	}

	var listing structs.Listing
	path := fmt.Sprintf(modLogPathFmt, url.PathEscape(f.subreddit))
	if err := f.session.getJSON(ctx, path, query, &listing); err != nil {
		return err
	}
	f.pages++

	page := make([]structs.LogEntry, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		page = append(page, child.Data)
	}
	f.page = page
	f.pos = 0
	f.after = listing.Data.After

	// An empty page with a cursor would otherwise loop forever.
	if f.after == "" || len(f.page) == 0 {
		f.done = true
	}

	logrus.Debugf("fetched page %d of /r/%s mod log (%d entries)", f.pages, f.subreddit, len(f.page))

	return nil
}
