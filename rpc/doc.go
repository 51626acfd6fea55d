// Package rpc provides a comprehensive framework for remote procedure calls
// in the game system. It acts as the communication layer between clients and
// the game server, enabling operations across network boundaries.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets, HTTP).
//
//   - serializer: Message serialization with multiple format options (JSON, GOB)
//     for converting between Message objects and byte arrays.
//
//   - client: The typed RPC client, allowing applications to interact with a
//     remote game server transparently.
//
//   - server: RPC server components that handle incoming requests, including
//     the adapter that routes messages into the state manager.
package rpc
