// Package ratelimit paces outbound API requests.
//
// TokenBucket wraps golang.org/x/time/rate. It allows a burst of requests
// and then refills one token per interval. PerMinute builds one from the
// configured requests-per-minute, returning Unlimited when pacing is off.
//
// Pacing is not retrying. A request that fails is not reissued.
//
//	limiter := ratelimit.PerMinute(60, 5)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err // context cancelled
//	}
package ratelimit
