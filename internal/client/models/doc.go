// Package models defines the records exchanged with the onboarding backend:
// users and tokens, forms and their fields, submissions and review stats.
//
// Decoders are lenient where the backend is: list endpoints may return a
// paginated envelope or a bare array, and a submission's form may be an id
// or an embedded object.
package models
