package structs

// Credentials holds one praw.ini site.
type Credentials struct {
	Site         string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	RefreshToken string
	UserAgent    string
	OAuthURL     string
	RedditURL    string
}

// HasPassword reports whether the script-app password grant can be used.
func (c Credentials) HasPassword() bool {
	return c.Username != "" && c.Password != ""
}
