// Package services holds the client's application services: the session
// store that owns the authentication lifecycle, the notifier it reports
// through, and the route guard that turns session state into an access
// decision.
package services
