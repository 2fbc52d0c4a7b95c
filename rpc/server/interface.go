package server

import (
	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/ValentinKolb/tKV/rpc/common"
)

// IRPCServerAdapter translates decoded request messages into operations on
// a store. Implementations never return an error directly, failures are
// encoded into the response message so they travel back to the client.
type IRPCServerAdapter interface {
	// Handle executes one request against the given store and returns the
	// response to send back
	Handle(req *common.Message, store store.IStore) (resp *common.Message)
}
