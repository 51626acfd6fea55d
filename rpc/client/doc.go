// Package client implements the RPC client for the game server. It provides
// a typed IGameClient implementation that communicates with a remote server
// via RPC.
//
// The package focuses on:
//   - Transparent RPC access to the game server's operations
//   - Integration with the transport and serialization layers
//   - Error handling and conversion between RPC and domain errors
//
// Key Components:
//
//   - NewGameClient: Factory function that creates a client implementing the
//     IGameClient interface. This client forwards all operations to remote
//     servers via the configured transport layer.
//
// Usage Example:
//
//	// Configure the client
//	config := common.ClientConfig{
//	  Endpoints:              []string{"localhost:5000"},
//	  TimeoutSecond:          5,
//	  RetryCount:             3,
//	  ConnectionsPerEndpoint: 1,
//	}
//
//	// Create a serializer
//	serializer := serializer.NewJSONSerializer()
//
//	// Create the client
//	c, _ := client.NewGameClient(config, tcp.NewTCPClientTransport(), serializer)
//
//	// Use the client
//	user, _ := c.CreateUser(1, "kepler")
//	user, _ = c.GainExperience(user.ID, 100)
//
// Performance Considerations:
//
//   - For applications that frequently send large payloads, increasing ConnectionsPerEndpoint
//     can improve throughput by allowing parallel requests.
//
//   - For small messages, a single connection per endpoint is often more efficient due to
//     reduced connection overhead.
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently from
//	multiple goroutines without additional synchronization.
package client
