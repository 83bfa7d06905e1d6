package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"redditlogs/internal/structs"
)

const prawIniName = "praw.ini"

// PrawIniPaths returns the praw.ini files to read, lowest precedence first.
// An explicit path replaces the search.
func PrawIniPaths(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}

	var paths []string
	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, prawIniName))
	}
	return append(paths, prawIniName)
}

// ResolveCredentials loads the named site from praw.ini. An empty site selects
// the DEFAULT section. Values from the DEFAULT section fill keys the site
// leaves out, and praw_<key> environment variables override both.
func ResolveCredentials(site, prawIni string) (*structs.Credentials, error) {
	if site == "" {
		site = structs.DefaultSite
	}

	paths := PrawIniPaths(prawIni)
	sources := make([]interface{}, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, p)
	}

	file, err := ini.LoadSources(ini.LoadOptions{
		Loose:           prawIni == "",
		InsensitiveKeys: true,
	}, sources[0], sources[1:]...)
	if err != nil {
		return nil, errors.Wrapf(ErrSite, "unable to read %s: %v", strings.Join(paths, ", "), err)
	}

	section, err := file.GetSection(site)
	if err != nil {
		return nil, errors.Wrapf(ErrSite, "no section %q in %s", site, prawIniName)
	}
	defaults, _ := file.GetSection(ini.DefaultSection)

	lookup := func(key string) string {
		if value, ok := os.LookupEnv("praw_" + key); ok && value != "" {
			return value
		}
		if section.HasKey(key) {
			return section.Key(key).String()
		}
		if defaults != nil && defaults.HasKey(key) {
			return defaults.Key(key).String()
		}
		return ""
	}

	creds := &structs.Credentials{
		Site:         site,
		ClientID:     lookup("client_id"),
		ClientSecret: lookup("client_secret"),
		Username:     lookup("username"),
		Password:     lookup("password"),
		RefreshToken: lookup("refresh_token"),
		UserAgent:    lookup("user_agent"),
		OAuthURL:     strings.TrimSuffix(lookup("oauth_url"), "/"),
		RedditURL:    strings.TrimSuffix(lookup("reddit_url"), "/"),
	}

	if creds.ClientID == "" {
		return nil, errors.Wrapf(ErrSite, "required setting client_id missing for site %q", site)
	}
	if creds.UserAgent == "" {
		return nil, errors.Wrapf(ErrSite, "required setting user_agent missing for site %q", site)
	}
	if creds.OAuthURL == "" {
		creds.OAuthURL = structs.DefaultOAuthURL
	}
	if creds.RedditURL == "" {
		creds.RedditURL = structs.DefaultRedditURL
	}

	logrus.Debugf("resolved credentials for site %s (grant %s)", site, creds.Grant())

	return creds, nil
}
