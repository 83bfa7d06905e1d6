// Package reddittest runs an in-process stand-in for the parts of the Reddit
// API the mod-log export uses.
package reddittest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"redditlogs/internal/structs"
)

const (
	ClientID     = "client-id"
	ClientSecret = "client-secret"
	Username     = "modbot"
	Password     = "hunter2"
	UserAgent    = "reddit-logs tests"
)

type Server struct {
	*httptest.Server

	mu            sync.Mutex
	logs          map[string][]map[string]interface{}
	failures      map[string]int
	malformed     map[string]bool
	rejectLogin   bool
	tokenRequests int
	logRequests   map[string]int
	queries       []url.Values
	userAgents    []string
}

func NewServer() *Server {
	s := &Server{
		logs:        make(map[string][]map[string]interface{}),
		failures:    make(map[string]int),
		malformed:   make(map[string]bool),
		logRequests: make(map[string]int),
	}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/api/v1/access_token", s.accessToken).Methods(http.MethodPost)
	router.HandleFunc("/r/{subreddit}/about/log", s.modLog).Methods(http.MethodGet)

	s.Server = httptest.NewServer(router)
	return s
}

// Credentials points a session at this server using the password grant.
func (s *Server) Credentials() *structs.Credentials {
	return &structs.Credentials{
		Site:         "test",
		ClientID:     ClientID,
		ClientSecret: ClientSecret,
		Username:     Username,
		Password:     Password,
		UserAgent:    UserAgent,
		OAuthURL:     s.URL,
		RedditURL:    s.URL,
	}
}

// PrawIni renders a praw.ini with one site named site pointing at this server.
func (s *Server) PrawIni(site string) string {
	return fmt.Sprintf(`[%s]
client_id = %s
client_secret = %s
username = %s
password = %s
user_agent = %s
oauth_url = %s
reddit_url = %s
`, site, ClientID, ClientSecret, Username, Password, UserAgent, s.URL, s.URL)
}

// AddEntries appends entries to a subreddit's log. Entries must be added
// newest first.
func (s *Server) AddEntries(subreddit string, entries ...map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[strings.ToLower(subreddit)] = append(s.logs[strings.ToLower(subreddit)], entries...)
}

// Fail makes every log request for subreddit answer with status.
func (s *Server) Fail(subreddit string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[strings.ToLower(subreddit)] = status
}

// Malformed makes log requests for subreddit answer with an undecodable body.
func (s *Server) Malformed(subreddit string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.malformed[strings.ToLower(subreddit)] = true
}

func (s *Server) RejectLogin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectLogin = true
}

func (s *Server) TokenRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenRequests
}

func (s *Server) LogRequests(subreddit string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logRequests[strings.ToLower(subreddit)]
}

// Queries returns the query strings of every log request, in order.
func (s *Server) Queries() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.queries...)
}

func (s *Server) UserAgents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.userAgents...)
}

// Entry builds a raw modaction record the way Reddit serialises it.
func Entry(id string, created float64, action, mod string) map[string]interface{} {
	return map[string]interface{}{
		"id":                      "ModAction_" + id,
		"created_utc":             created,
		"action":                  action,
		"mod":                     mod,
		"mod_id36":                "m" + id,
		"target_author":           "someone",
		"target_fullname":         "t3_" + id,
		"target_title":            "a post",
		"target_permalink":        "/r/testsub/comments/" + id + "/",
		"target_body":             nil,
		"subreddit":               "testsub",
		"subreddit_name_prefixed": "r/testsub",
		"sr_id36":                 "2qh1i",
		"details":                 "remove",
		"description":             nil,
	}
}

func (s *Server) accessToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.tokenRequests++
	s.userAgents = append(s.userAgents, r.UserAgent())
	reject := s.rejectLogin
	s.mu.Unlock()

	id, secret, ok := r.BasicAuth()
	if err := r.ParseForm(); err != nil || !ok || id != ClientID || secret != ClientSecret || reject {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_grant"})
		return
	}

	if r.PostForm.Get("grant_type") == "password" &&
		(r.PostForm.Get("username") != Username || r.PostForm.Get("password") != Password) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_grant"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": "test-token",
		"token_type":   "bearer",
		"expires_in":   3600,
		"scope":        "*",
	})
}

func (s *Server) modLog(w http.ResponseWriter, r *http.Request) {
	subreddit := strings.ToLower(mux.Vars(r)["subreddit"])

	s.mu.Lock()
	s.logRequests[subreddit]++
	s.queries = append(s.queries, r.URL.Query())
	s.userAgents = append(s.userAgents, r.UserAgent())
	status, failing := s.failures[subreddit]
	malformed := s.malformed[subreddit]
	entries := append([]map[string]interface{}(nil), s.logs[subreddit]...)
	s.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer test-token" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}
	if failing {
		writeJSON(w, status, map[string]interface{}{"message": http.StatusText(status), "error": status})
		return
	}
	if malformed {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"kind": "Listing", "data": {"children": [`))
		return
	}

	query := r.URL.Query()
	var filtered []map[string]interface{}
	for _, entry := range entries {
		if action := query.Get("type"); action != "" && entry["action"] != action {
			continue
		}
		if mod := query.Get("mod"); mod != "" && entry["mod"] != mod {
			continue
		}
		filtered = append(filtered, entry)
	}

	start := 0
	if after := query.Get("after"); after != "" {
		for i, entry := range filtered {
			if entry["id"] == after {
				start = i + 1
				break
			}
		}
	}

	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 25
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	children := make([]map[string]interface{}, 0, end-start)
	for _, entry := range filtered[start:end] {
		children = append(children, map[string]interface{}{"kind": "modaction", "data": entry})
	}

	var after interface{}
	if end < len(filtered) {
		after = filtered[end-1]["id"]
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kind": "Listing",
		"data": map[string]interface{}{
			"after":    after,
			"before":   nil,
			"children": children,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
