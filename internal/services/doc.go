// Package services implements HTTP clients for the RadioCMS backend.
//
// [Library] is the interface the rest of the application consumes; [RadioCMSService]
// is the concrete implementation speaking the /api/v3 REST surface with bearer
// authentication. [APIService] is a raw escape hatch used by the `api` debug command.
//
// Every call takes a [context.Context], carries the configured bearer token via an
// [golang.org/x/oauth2] token source, and is throttled by a shared client-side
// rate limiter. A 401 from any endpoint maps to [shared.ErrNotAuthenticated] so
// callers can route the user back to `airdeck login`.
package services
