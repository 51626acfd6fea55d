package serve

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cmdUtil "github.com/tychodev/tycho/cmd/util"
	"github.com/tychodev/tycho/rpc/common"
	"github.com/tychodev/tycho/rpc/serializer"
	"github.com/tychodev/tycho/rpc/server"
	"github.com/tychodev/tycho/rpc/transport"
	"github.com/tychodev/tycho/rpc/transport/http"
	"github.com/tychodev/tycho/rpc/transport/tcp"
	"github.com/tychodev/tycho/rpc/transport/unix"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the tycho server",
		Long:    `Start the tycho server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is TYCHO_<flag> (e.g. TYCHO_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/tycho.sock, ...)"))

	key = "storage"
	ServeCmd.PersistentFlags().String(key, "memory", cmdUtil.WrapString("The storage backend to use (memory, sqlite)"))

	key = "sqlite-path"
	ServeCmd.PersistentFlags().String(key, "tycho.db", cmdUtil.WrapString("Path of the sqlite database file (only used with the sqlite backend)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Timeout in seconds for a single request"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// parse the storage backend
	switch viper.GetString("storage") {
	case "memory":
		serveCmdConfig.Backend = common.StorageBackendMemory
	case "sqlite":
		serveCmdConfig.Backend = common.StorageBackendSQLite
	default:
		return fmt.Errorf("invalid storage backend: %s (expected one of: memory, sqlite)", viper.GetString("storage"))
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.Transport = viper.GetString("transport")
	serveCmdConfig.Serializer = viper.GetString("serializer")
	serveCmdConfig.SQLitePath = viper.GetString("sqlite-path")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	if serveCmdConfig.Backend == common.StorageBackendSQLite && serveCmdConfig.SQLitePath == "" {
		return fmt.Errorf("sqlite-path is required for the sqlite backend")
	}

	return nil
}

// run starts the tycho server
func run(_ *cobra.Command, _ []string) error {

	// parse the serializer
	var s serializer.IRPCSerializer
	switch serveCmdConfig.Serializer {
	case "json":
		s = serializer.NewJSONSerializer()
	case "gob":
		s = serializer.NewGOBSerializer()
	default:
		return fmt.Errorf("invalid serializer %s", serveCmdConfig.Serializer)
	}

	// Parse the transport
	var t transport.IRPCServerTransport
	switch serveCmdConfig.Transport {
	case "http":
		t = http.NewHttpServerTransport()
	case "tcp":
		t = tcp.NewTCPDefaultServerTransport()
	case "unix":
		t = unix.NewUnixDefaultServerTransport()
	default:
		return fmt.Errorf("invalid transport %s", serveCmdConfig.Transport)
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		s,
	)

	return serv.Serve()
}

// initConfig reads in serveCmdConfig file and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("tycho")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
