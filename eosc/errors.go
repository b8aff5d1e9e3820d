package eosc

import "fmt"

// RemoteError reports an unexpected status from the providers portal or the
// AAI token endpoint.
type RemoteError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// AuthError reports that no usable access token could be obtained, even
// after refreshing.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("portal authentication failed: %s", e.Reason)
}
