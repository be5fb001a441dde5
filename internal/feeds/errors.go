package feeds

import "fmt"

// TransportError reports an HTTP fetch that failed after all in-request
// retries: a network or timeout failure, or a non-2xx response. The job
// layer owns any retry policy beyond that.
type TransportError struct {
	FeedID     int64
	URL        string
	StatusCode int // zero when the request never produced a response
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching feed %d from %s: unexpected status %d", e.FeedID, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching feed %d from %s: %v", e.FeedID, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports a feed body that was empty or not well-formed XML.
// A failed parse leaves the feed's stored metadata and items untouched.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
