package structs

type Grant = string

const (
	PasswordGrant          Grant = "password"
	RefreshTokenGrant      Grant = "refresh_token"
	ClientCredentialsGrant Grant = "client_credentials"

	DefaultSite      = "DEFAULT"
	DefaultOAuthURL  = "https://oauth.reddit.com"
	DefaultRedditURL = "https://www.reddit.com"
)

// Grant picks the OAuth flow the credentials support, in the order praw
// prefers them.
func (c Credentials) Grant() Grant {
	switch {
	case c.RefreshToken != "":
		return RefreshTokenGrant
	case c.HasPassword():
		return PasswordGrant
	default:
		return ClientCredentialsGrant
	}
}
