package reddit

const (
	accessTokenPath = "/api/v1/access_token"
	modLogPathFmt   = "/r/%s/about/log"

	ratelimitRemainingHeader = "X-Ratelimit-Remaining"
	ratelimitResetHeader     = "X-Ratelimit-Reset"

	// maxPageSize is the largest limit a listing endpoint honours.
	maxPageSize = 100

	// maxErrorBody caps how much of an error response ends up in a message.
	maxErrorBody = 512
)
