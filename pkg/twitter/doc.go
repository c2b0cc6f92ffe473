// Package twitter looks up posts through the v1.1 status endpoint.
//
// The client sends a bearer token, asks for the extended text rendering and
// decodes only the fields the thread walker needs: reply and quote links,
// author display names and attached video variants.
//
// Example usage:
//
//	client := twitter.NewClient(apiKey, 30*time.Second, failures, log,
//	    twitter.WithLimiter(ratelimit.PerMinute(60, 5)))
//
//	tweet, err := client.FetchTweet(ctx, "1629307668568475652")
//	var fe *errors.FetchError
//	if stderrors.As(err, &fe) {
//	    // already recorded as "<status> HTTP error"
//	}
package twitter
