package parser

import "time"

// SetRetryBackoff overrides the retry delay and returns a restore func.
func SetRetryBackoff(d time.Duration) func() {
	prev := retryBackoff
	retryBackoff = d
	return func() { retryBackoff = prev }
}
