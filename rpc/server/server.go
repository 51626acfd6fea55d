package server

import (
	"fmt"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/tychodev/tycho/lib/state"
	"github.com/tychodev/tycho/lib/storage"
	"github.com/tychodev/tycho/lib/storage/memory"
	"github.com/tychodev/tycho/lib/storage/sqlite"
	"github.com/tychodev/tycho/rpc/common"
	"github.com/tychodev/tycho/rpc/serializer"
	"github.com/tychodev/tycho/rpc/transport"
)

var Logger = common.GetLogger("rpc")

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	// Create the RPC server
	return rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		adapter:    NewGameServerAdapter(),
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	adapter    IRPCServerAdapter
	manager    *state.Manager
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		// Decode the request
		err := s.serializer.Deserialize(req, &msg)

		if err != nil {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to deserialize request: %s", err),
			}
		} else {
			// Let the adapter handle the request
			respMsg = *s.adapter.Handle(&msg, s.manager)
		}

		// Return result
		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			Logger.Errorf("failed to serialize response: %v", err)
			return nil
		}
		return val
	})
}

func (s *rpcServer) init() error {

	// Init logger
	common.InitLoggers(s.config)

	// Create the storage backend
	var store storage.IStorage
	var err error
	switch s.config.Backend {
	case common.StorageBackendSQLite:
		store, err = sqlite.NewSQLiteStorage(s.config.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		Logger.Infof("created sqlite storage at %s", s.config.SQLitePath)
	case common.StorageBackendMemory, "":
		store = memory.NewMemoryStorage()
		Logger.Infof("created in-memory storage")
	default:
		return fmt.Errorf("invalid storage backend: %s", s.config.Backend)
	}

	// Create the state manager on top of the storage
	s.manager = state.NewManager(store)

	Logger.Infof("game state setup completed successfully")

	// Configure the transport layer
	s.registerTransportHandler()

	return nil
}

// Serve starts the RPC server
// This function will also initialize the state manager and start the transport layer
func (s *rpcServer) Serve() error {
	err := s.init()
	if err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}
