package serve

import (
	"fmt"
	cmdUtil "github.com/ValentinKolb/tKV/cmd/util"
	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/serializer"
	"github.com/ValentinKolb/tKV/rpc/server"
	"github.com/ValentinKolb/tKV/rpc/transport"
	"github.com/ValentinKolb/tKV/rpc/transport/http"
	"github.com/ValentinKolb/tKV/rpc/transport/tcp"
	"github.com/ValentinKolb/tKV/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strconv"
	"strings"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the tKV server",
		Long:    `Start the tKV server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is TKV_<flag> (e.g. TKV_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "stores"
	ServeCmd.PersistentFlags().String(key, "100=store", cmdUtil.WrapString("Comma-separated list of stores to serve. Format: ID=TYPE where TYPE is one of: store, observed"))

	key = "delimiter"
	ServeCmd.PersistentFlags().String(key, ":", cmdUtil.WrapString("The delimiter used to split keys into namespace and path segments (single character)"))

	key = "max-memory"
	ServeCmd.PersistentFlags().Uint64(key, 0, cmdUtil.WrapString("The memory budget of each store in MB. Writes that would exceed the budget are rejected. 0 disables the limit"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Timeout in seconds for request handling"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/tkv.sock, ...)"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("The address on which store metrics are exposed in Prometheus format (e.g. localhost:2112). Empty disables the metrics endpoint"))

	key = "transport-buffer"
	ServeCmd.PersistentFlags().Int(key, 64, cmdUtil.WrapString("The size of the connection read buffer for the tcp and unix transports (in KB)"))

	key = "transport-workers"
	ServeCmd.PersistentFlags().Int(key, 16, cmdUtil.WrapString("The maximum number of concurrent workers per connection for the tcp and unix transports"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "log-json"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("Whether to output logs as JSON instead of plain text"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// parse stores
	storesConfig := viper.GetString("stores")
	serveCmdConfig.Stores = []common.ServerStore{}
	for _, storeConfig := range strings.Split(storesConfig, ",") {
		parts := strings.Split(storeConfig, "=")
		if len(parts) != 2 {
			return fmt.Errorf("invalid store format: %s (expected ID=TYPE)", storeConfig)
		}

		// Parse store ID
		storeID, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid store ID %s: %v", parts[0], err)
		}

		// Parse store type
		storeType := strings.TrimSpace(parts[1])
		var serverStoreType common.ServerStoreType

		switch storeType {
		case "store":
			serverStoreType = common.StoreTypePlain
		case "observed":
			serverStoreType = common.StoreTypeObserved
		default:
			return fmt.Errorf("invalid store type: %s (expected one of: store, observed)", storeType)
		}

		serveCmdConfig.Stores = append(serveCmdConfig.Stores, common.ServerStore{
			StoreID: storeID,
			Type:    serverStoreType,
		})
	}

	// parse the delimiter
	if delimiter := viper.GetString("delimiter"); len(delimiter) != 1 {
		return fmt.Errorf("invalid delimiter %q (expected a single character)", delimiter)
	} else {
		serveCmdConfig.Delimiter = delimiter
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.MaxMemoryMB = viper.GetUint64("max-memory")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.LogJSON = viper.GetBool("log-json")

	// observed stores export their numbers via the metrics endpoint, without
	// one the collected metrics would never be visible
	if serveCmdConfig.HasObservedStore() && !serveCmdConfig.HasMetricsEndpoint() {
		return fmt.Errorf("a metrics endpoint is required when observed stores are configured")
	}

	return nil
}

// run starts the tKV server
func run(_ *cobra.Command, _ []string) error {

	// parse the serializer
	var s serializer.IRPCSerializer
	switch viper.GetString("serializer") {
	case "json":
		s = serializer.NewJSONSerializer()
	case "gob":
		s = serializer.NewGOBSerializer()
	case "binary":
		s = serializer.NewBinarySerializer()
	default:
		return fmt.Errorf("invalid serializer %s", viper.GetString("serializer"))
	}

	// Parse the transport
	bufferSize := viper.GetInt("transport-buffer") * 1024
	maxWorkers := viper.GetInt("transport-workers")
	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "http":
		t = http.NewHttpServerTransport()
	case "tcp":
		t = tcp.NewTCPServerTransport(bufferSize, maxWorkers)
	case "unix":
		t = unix.NewUnixServerTransport(bufferSize, maxWorkers)
	default:
		return fmt.Errorf("invalid transport %s", viper.GetString("transport"))
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
	viper.SetEnvPrefix("tkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

}
