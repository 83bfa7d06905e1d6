package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"redditlogs/internal/structs"
)

type Options struct {
	Timeout           time.Duration
	RequestsPerMinute float64
	PageSize          int
}

// Session is an authenticated Reddit API client. It is used from a single
// goroutine.
type Session struct {
	Site      string
	OAuthURL  string
	UserAgent string
	PageSize  int
	LoggedIn  bool

	client     *http.Client
	limiter    *rate.Limiter
	resetAfter time.Time
}

// NewSession logs in eagerly so bad credentials surface before any subreddit
// is read.
func NewSession(ctx context.Context, creds *structs.Credentials, opts Options) (*Session, error) {
	if creds == nil || creds.ClientID == "" || creds.UserAgent == "" || creds.OAuthURL == "" || creds.RedditURL == "" {
		return nil, errors.New("missing parameters for reddit login")
	}

	base := &http.Client{
		Timeout:   opts.Timeout,
		Transport: &userAgentTransport{agent: creds.UserAgent, base: http.DefaultTransport},
	}
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, base)

	source := tokenSource(tokenCtx, creds)
	token, err := source.Token()
	if err != nil {
		return nil, errors.Wrapf(ErrAuthentication, "login for site %s with %s grant: %v", creds.Site, creds.Grant(), err)
	}

	client := oauth2.NewClient(tokenCtx, oauth2.ReuseTokenSource(token, source))
	client.Timeout = opts.Timeout
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Limit(opts.RequestsPerMinute / 60)
	}

	logrus.Debugf("logged in to %s as site %s", creds.OAuthURL, creds.Site)

	return &Session{
		Site:      creds.Site,
		OAuthURL:  creds.OAuthURL,
		UserAgent: creds.UserAgent,
		PageSize:  pageSize,
		LoggedIn:  true,
		client:    client,
		limiter:   rate.NewLimiter(limit, 1),
	}, nil
}

func tokenSource(ctx context.Context, creds *structs.Credentials) oauth2.TokenSource {
	endpoint := oauth2.Endpoint{
		TokenURL:  creds.RedditURL + accessTokenPath,
		AuthStyle: oauth2.AuthStyleInHeader,
	}
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     endpoint,
	}

	switch creds.Grant() {
	case structs.RefreshTokenGrant:
		return conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
	case structs.PasswordGrant:
		return &passwordTokenSource{
			ctx:      ctx,
			conf:     conf,
			username: creds.Username,
			password: creds.Password,
		}
	default:
		cc := &clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     endpoint.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		return cc.TokenSource(ctx)
	}
}

// passwordTokenSource logs in again whenever the token expires; script-app
// tokens carry no refresh token.
type passwordTokenSource struct {
	ctx      context.Context
	conf     *oauth2.Config
	username string
	password string
}

func (p *passwordTokenSource) Token() (*oauth2.Token, error) {
	return p.conf.PasswordCredentialsToken(p.ctx, p.username, p.password)
}

type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(clone)
}

// getJSON issues a GET against the OAuth host and decodes a successful body
// into out.
func (s *Session) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	target := s.OAuthURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	resp, err := s.buildRequest(ctx, http.MethodGet, target, map[string]string{"Accept": "application/json"}, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Kind:       kindForStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			URL:        path,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(ErrMalformedResponse, "decoding %s: %v", path, err)
	}

	return nil
}

func (s *Session) buildRequest(ctx context.Context, method, target string, headers map[string]string, data io.Reader) (*http.Response, error) {
	if err := s.waitForRatelimit(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, data)
	if err != nil {
		return nil, errors.Wrap(err, "error building request")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "request cancelled")
		}
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, errors.Wrapf(ErrAuthentication, "token refresh: %v", retrieveErr)
		}
		return nil, errors.Wrapf(ErrTransport, "%s %s: %v", method, req.URL.Path, err)
	}

	s.updateRatelimit(resp.Header)

	return resp, nil
}

func (s *Session) waitForRatelimit(ctx context.Context) error {
	if wait := time.Until(s.resetAfter); wait > 0 {
		logrus.Debugf("rate limit exhausted, sleeping %s", wait.Round(time.Second))
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "waiting for rate limit reset")
		case <-timer.C:
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "waiting for rate limiter")
		}
		return errors.Wrap(err, "rate limiter")
	}
	return nil
}

// updateRatelimit pauses further requests until the window resets once Reddit
// reports no remaining requests.
func (s *Session) updateRatelimit(header http.Header) {
	remaining, err := strconv.ParseFloat(header.Get(ratelimitRemainingHeader), 64)
	if err != nil || remaining >= 1 {
		return
	}
	reset, err := strconv.ParseFloat(header.Get(ratelimitResetHeader), 64)
	if err != nil {
		return
	}
	s.resetAfter = time.Now().Add(time.Duration(reset * float64(time.Second)))
}

func (s *Session) String() string {
	return fmt.Sprintf("reddit session %s (%s)", s.Site, s.OAuthURL)
}
