// Package client talks to the todo server's JSON API.
//
// HTTPClient exchanges credentials for a bearer token at /api/token and
// sends that token with every later call. A 401 answer, for an expired or
// revoked token, is reported as ErrUnauthorized and the token is dropped;
// the caller logs in again.
package client
