package util

import (
	"fmt"
	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/serializer"
	"github.com/ValentinKolb/tKV/rpc/transport"
	"github.com/ValentinKolb/tKV/rpc/transport/http"
	"github.com/ValentinKolb/tKV/rpc/transport/tcp"
	"github.com/ValentinKolb/tKV/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

// Wrap is the column the flag help texts are wrapped at
const Wrap = 50

// WrapString wraps a help text at Wrap characters, breaking on spaces
func WrapString(text string) string {
	var b strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		switch {
		case lineWidth == 0:
			// first word on the line, no separator
		case lineWidth+1+len(word) > Wrap:
			b.WriteByte('\n')
			lineWidth = 0
		default:
			b.WriteByte(' ')
			lineWidth++
		}

		b.WriteString(word)
		lineWidth += len(word)
	}

	return b.String()
}

// SetupRPCClientFlags adds common RPC connection flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.Int("timeout", 10,
		WrapString("The timeout in seconds of the client"))
	flags.String("transport-endpoints", "http://localhost:8080",
		WrapString("The address of the tKV server. For transports that support load balancing, multiple endpoints can be specified as a comma-separated list"))
	flags.Int("transport-conn-per-endpoint", 1,
		WrapString("Simultaneous connections per endpoint - for transports that support this feature"))
	flags.Int("transport-retries", 3,
		WrapString("How many times to retry the request"))
	flags.Int("transport-write-buffer", 512,
		WrapString("The size of the write buffer for the transport (in KB, ignored for http)"))
	flags.Int("transport-read-buffer", 512,
		WrapString("The size of the read buffer for the transport (in KB, ignored for http)"))
	flags.Bool("transport-tcp-nodelay", true,
		WrapString("Whether to enable TCP_NODELAY for the transport (only for tcp)"))
	flags.Int("transport-tcp-keepalive", 0,
		WrapString("The keepalive interval for the transport (in seconds, only for tcp)"))
	flags.Int("transport-tcp-linger", 0,
		WrapString("The linger time for the transport (in seconds, only for tcp)"))
}

// InitClientConfig loads .env files and wires viper to TKV_* environment
// variables, so every flag can also be set via the environment
func InitClientConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("tkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	return &common.ClientConfig{
		TimeoutSecond: viper.GetInt("timeout"),
		Transport: common.ClientTransportConfig{
			RetryCount:             viper.GetInt("transport-retries"),
			Endpoints:              strings.Split(viper.GetString("transport-endpoints"), ","),
			ConnectionsPerEndpoint: viper.GetInt("transport-conn-per-endpoint"),
			SocketConf: common.SocketConf{
				WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
				ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
			},
			TCPConf: common.TCPConf{
				TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
				TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
				TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
			},
		},
	}
}

// GetSerializer creates the configured serializer
func GetSerializer() (serializer.IRPCSerializer, error) {
	switch name := viper.GetString("serializer"); name {
	case "json":
		return serializer.NewJSONSerializer(), nil
	case "gob":
		return serializer.NewGOBSerializer(), nil
	case "binary":
		return serializer.NewBinarySerializer(), nil
	default:
		return nil, fmt.Errorf("invalid serializer %s", name)
	}
}

// GetTransport creates the configured client transport
func GetTransport() (transport.IRPCClientTransport, error) {
	switch name := viper.GetString("transport"); name {
	case "http":
		return http.NewHttpClientTransport(), nil
	case "tcp":
		return tcp.NewTCPClientTransport(), nil
	case "unix":
		return unix.NewUnixClientTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", name)
	}
}

// GetStoreID retrieves the configured store ID
func GetStoreID() uint64 {
	return uint64(viper.GetInt("store"))
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
