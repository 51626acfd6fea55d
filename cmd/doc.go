// Package cmd implements the command-line interface for the tycho game
// server. It provides a hierarchical command structure with operations
// for running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - game: Client commands for game operations (worlds, users, inventories, messages)
//   - serve: Commands for starting and configuring the tycho server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See tycho -help for a list of all commands.
package cmd
