package kv

import (
	"github.com/ValentinKolb/tKV/cmd/util"
	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/ValentinKolb/tKV/rpc/client"
	"github.com/spf13/cobra"
)

var (
	// rpcStore is the client store all kv subcommands operate on, connected
	// lazily by setupKVClient before the first command runs
	rpcStore store.IStore

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:               "kv",
		Short:             "Perform key-value store operations",
		PersistentPreRunE: setupKVClient,
	}
)

func init() {
	cobra.OnInitialize(util.InitClientConfig)

	util.SetupRPCClientFlags(KeyValueCommands)
	KeyValueCommands.PersistentFlags().Int("store", 100, util.WrapString("ID of the store to connect to"))

	KeyValueCommands.AddCommand(
		setCmd,
		setIfUnsetCmd,
		getCmd,
		delCmd,
		hasCmd,
		infoCmd,
		perfTestCmd,
	)
}

// setupKVClient connects the RPC store client using the configured
// transport and serializer
func setupKVClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()
	storeID := util.GetStoreID()

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	rpcStore, err = client.NewRPCStore(storeID, *config, t, s)
	return err
}
