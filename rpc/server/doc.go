// Package server implements the RPC server for the game system. It provides
// an adapter for handling RPC requests against the shared state manager,
// along with the core server implementation that wires storage, state and
// transport together.
//
// The package focuses on:
//   - Server-side RPC request handling for all game operations
//   - Adapter pattern to decouple application logic from RPC mechanisms
//   - Storage backend selection (in-memory or sqlite) from configuration
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for server adapters,
//     with the Handle method that processes incoming requests against a
//     state.Manager.
//
//   - NewGameServerAdapter: Factory function creating the adapter that
//     translates RPC messages to state.Manager operations. Every request
//     starts from an empty lock context and walks its own ascending rank
//     chain, so concurrent requests cannot deadlock.
//
//   - NewRPCServer: Factory function creating a configured server with the
//     specified transport and serializer mechanisms.
//
// Usage Example:
//
//	// Create server configuration
//	config := common.ServerConfig{
//	  Endpoint:      "0.0.0.0:8080",
//	  Backend:       common.StorageBackendMemory,
//	  TimeoutSecond: 5,
//	  LogLevel:      "info",
//	}
//
//	// Create and start the server
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPDefaultServerTransport(),
//	  serializer.NewJSONSerializer(),
//	)
//
//	// Start the server
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent requests
//	across multiple connections. Each request is processed independently.
//	The Listen method is not thread-safe and should be called only once.
package server
