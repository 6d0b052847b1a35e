// Package cli provides the interactive todo command-line client.
//
// It wires configuration, the JSON API client and a REPL. A background
// watcher polls the server's health endpoint and switches the prompt
// between online and offline.
//
// Commands:
//   - login / logout (bearer token from /api/token)
//   - list, add, import <file.json> (bulk insert)
//   - status
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
