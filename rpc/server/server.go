package server

import (
	"fmt"
	"net/http"

	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/db/engines/birch"
	"github.com/ValentinKolb/tKV/lib/hooks"
	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/ValentinKolb/tKV/lib/store/lstore"
	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/serializer"
	"github.com/ValentinKolb/tKV/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = common.GetLogger("rpc")

// serverStore is a struct that represents a single store hosted by the RPC
// server. It contains the store itself and the adapter that handles
// requests for it
type serverStore struct {
	Store   store.IStore
	Adapter IRPCServerAdapter
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		tcp.NewTCPDefaultServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) rpcServer {
	// Create stores map
	storeMap := xsync.NewMapOf[uint64, serverStore]()

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	// Create the RPC server
	return rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		stores:     storeMap,
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	stores     *xsync.MapOf[uint64, serverStore]
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(storeID uint64, req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		// Get appropriate store
		st, ok := s.stores.Load(storeID)

		// Case store does not exist -> error
		if !ok {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     "store not found",
			}
		} else {
			// Decode the request
			err := s.serializer.Deserialize(req, &msg)

			if err != nil {
				respMsg = common.Message{
					MsgType: common.MsgTError,
					Err:     fmt.Sprintf("failed to deserialize request: %s", err),
				}
			} else {
				// Let the adapter handle the request
				respMsg = *st.Adapter.Handle(&msg, st.Store)
			}
		}

		// Return result
		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			Logger.Errorf("Failed to serialize response: %v", err)

			// Fall back to a plain error response. If even that fails the
			// client runs into its timeout
			val, _ = s.serializer.Serialize(common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to serialize response: %s", err),
			})
		}
		return val
	})
}

func (s *rpcServer) init() error {

	// Init logger
	common.InitLoggers(s.config)

	// Engine options shared by all stores of this server
	opts := birch.DefaultOptions()
	if s.config.Delimiter != "" {
		opts.Delimiter = s.config.Delimiter[0]
	}
	opts.MaxMemoryBytes = s.config.MaxMemoryMB * 1024 * 1024

	// Function to create a new database instance
	dbFactory := func() db.KVDB { return birch.NewBirchDB(opts) }

	// CREATE STORES

	/*
		Note: A single RPC server can host any number of stores. Each store is
		backed by its own database instance. An observed store additionally
		wraps its database with the hooks package so that every operation is
		counted and timed under the store's name. The following loop creates
		all the stores and registers them for the RPC server.
	*/

	for _, storeConfig := range s.config.Stores {

		// Reject duplicate IDs early, requests could otherwise end up at
		// the wrong store
		if _, exists := s.stores.Load(storeConfig.StoreID); exists {
			return fmt.Errorf("duplicate store ID: %d", storeConfig.StoreID)
		}

		switch storeConfig.Type {

		// Case plain store
		case common.StoreTypePlain:
			st, err := lstore.NewLocalStore(dbFactory)
			if err != nil {
				return fmt.Errorf("failed to create store %d: %w", storeConfig.StoreID, err)
			}
			s.stores.Store(storeConfig.StoreID, serverStore{
				Store:   st,
				Adapter: NewIStoreServerAdapter(),
			})
			Logger.Infof("created store for store ID %d", storeConfig.StoreID)

		// Case observed store
		case common.StoreTypeObserved:
			mgr := hooks.NewHookManager()
			mgr.RegisterAll(hooks.PhaseAfter, hooks.NewMetricsHook(fmt.Sprintf("store-%d", storeConfig.StoreID)))

			observedFactory := func() db.KVDB {
				return hooks.NewHookedDB(birch.NewBirchDB(opts), mgr)
			}

			st, err := lstore.NewLocalStore(observedFactory)
			if err != nil {
				return fmt.Errorf("failed to create observed store %d: %w", storeConfig.StoreID, err)
			}
			s.stores.Store(storeConfig.StoreID, serverStore{
				Store:   st,
				Adapter: NewIStoreServerAdapter(),
			})
			Logger.Infof("created observed store for store ID %d", storeConfig.StoreID)

		default:
			return fmt.Errorf("invalid store type: %s", storeConfig.Type)
		}
	}

	// Start the metrics endpoint if configured
	if s.config.HasMetricsEndpoint() {
		go s.serveMetrics()
	}

	Logger.Infof("server setup completed successfully")

	// Configure the transport layer
	s.registerTransportHandler()

	return nil
}

// serveMetrics exposes the collected metrics in prometheus format
func (s *rpcServer) serveMetrics() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	Logger.Infof("Starting metrics endpoint on %s", s.config.MetricsEndpoint)
	if err := http.ListenAndServe(s.config.MetricsEndpoint, mux); err != nil {
		Logger.Errorf("Metrics endpoint failed: %v", err)
	}
}

// Serve starts the RPC server
// This function will also initialize the server plus the stores and start the transport layer
func (s *rpcServer) Serve() error {
	err := s.init()
	if err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}
