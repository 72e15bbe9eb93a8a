// Package cli provides the interactive onboarding command-line client.
//
// It wires configuration, durable token storage, the API client, and the
// session store into a REPL. Typical flow: restore the stored session,
// start a background connectivity watcher, and execute user commands.
//
// Key features:
//   - Register / Login / Logout / WhoAmI
//   - Clients: browse active forms and submit answers, including file uploads
//   - Admins: manage forms and review submissions
//
// Every command except the auth ones is gated by the route guard for its
// role. When the API client gives up on a session it is dropped here as
// well and the user is pointed back to the login entry point.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
