package twitter

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the default API host
	BaseURL = "https://api.twitter.com"

	// StatusEndpoint looks up a single post by id
	StatusEndpoint = "/1.1/statuses/show.json"

	// WebURL is the public site used for source links
	WebURL = "https://twitter.com"
)

// GetStatusURL constructs the lookup URL for a post with the full text
// rendering requested
func GetStatusURL(baseURL, id string) string {
	if baseURL == "" {
		baseURL = BaseURL
	}

	params := url.Values{}
	params.Set("id", id)
	params.Set("tweet_mode", "extended")

	return fmt.Sprintf("%s%s?%s", strings.TrimRight(baseURL, "/"), StatusEndpoint, params.Encode())
}

// GetTweetURL constructs the public URL for a post
func GetTweetURL(screenName, id string) string {
	if screenName == "" || id == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/status/%s", WebURL, screenName, id)
}
