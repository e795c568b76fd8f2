// Package cli provides the interactive CFDI vault command-line client.
//
// It wires configuration, the local encrypted store, the remote table store,
// and an interactive REPL that keeps working when the remote side is down.
// Typical flow: prompt for credentials, start a background connectivity
// watcher, and execute user commands.
//
// Key features:
//   - Login / Logout against the sealed account roster
//   - Upload extracted invoice records, with duplicate flagging
//   - List / Delete invoices, dashboard metrics
//   - User management (admin only)
//   - Sync with the remote store, passphrase rotation
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
