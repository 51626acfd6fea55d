// Package common provides core data structures and utilities shared across
// the game server's RPC system. It defines fundamental types, configuration
// structures, and protocol elements used by other packages.
//
// The package focuses on:
//   - Message protocol definition for client/server communication
//   - Configuration structures for client and server components
//   - Leveled logging with a shared named-logger registry
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication between
//     components, with a flexible structure that adapts to different
//     operation types. Includes factory methods for creating the various
//     request and response messages.
//
//   - MessageType: Enumeration defining all supported operation types in the
//     system, categorized into world, user, inventory, message-queue and
//     control messages.
//
//   - ServerConfig: Configuration for the game server, covering the network
//     endpoint, transport and serializer selection, storage backend and
//     logging.
//
//   - ClientConfig: Configuration for client components, controlling
//     connection parameters, timeouts, and retry behavior.
//
//   - ILogger: Leveled logger with consistent formatting across the
//     application, handed out by a per-name registry.
package common
