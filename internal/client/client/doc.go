// Package client is the HTTP gateway to the onboarding backend.
//
// # Overview
//
// Every domain call goes through one pipeline:
//  1. The outbound interceptor reads the access token from durable storage
//     and attaches it as a bearer credential. It also stamps an
//     X-Request-ID and waits on the optional rate limiter.
//  2. The request is sent with the client's bounded timeout.
//  3. The inbound interceptor passes 2xx answers through. A 401 on a call
//     that has not been retried triggers exactly one refresh with the stored
//     refresh token and then re-issues the call. Failures of the refresh
//     endpoint itself are returned unchanged.
//
// When the refresh fails the client purges access_token, refresh_token and
// the persisted user snapshot, reports the login path through the
// session-invalidated callback and returns the refresh error. Concurrent
// refreshes are coalesced so one expiry produces one refresh call.
//
// The client shares durable storage with the session store but never calls
// into it.
//
// # Error Handling
//
// Non-2xx answers are returned as *APIError, which matches the sentinels
// ErrUnauthorized, ErrNotFound, ErrValidation and ErrUnavailable under
// errors.Is. Transport failures wrap ErrUnavailable.
//
// See Also
//
//   - Groups: AuthService, FormsService, SubmissionsService
//   - Errors: APIError, FieldError
package client
