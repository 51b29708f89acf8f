package middleware

import "net/http"

// callerHeader carries the authenticated account ID resolved by the identity
// proxy in front of this service.
const callerHeader = "X-User-ID"

// CallerID returns the account ID of the request's caller, or an empty string
// when the request is anonymous.
func CallerID(r *http.Request) string {
	return r.Header.Get(callerHeader)
}
