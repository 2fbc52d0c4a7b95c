package client

import (
	"fmt"
	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/serializer"
	"github.com/ValentinKolb/tKV/rpc/transport"
)

// rpcClientAdapter bundles everything a single remote store handle needs:
// the target store ID plus the transport and serializer to reach it with.
type rpcClientAdapter struct {
	storeID    uint64
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invokeRPCRequest runs one request/response round trip: serialize, send,
// deserialize, then vet the response before handing it to the caller.
//
// Two kinds of failure are distinguished. Error responses that carry a
// database code are rebuilt as typed db errors so client-side code can match
// them with db.CodeOf exactly like local callers. Everything else (transport
// failures, decode failures, mismatched response types) surfaces as a plain
// error.
func invokeRPCRequest(storeID uint64, req *common.Message, transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) (*common.Message, error) {
	reqBytes, err := serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	respBytes, err := transport.Send(storeID, reqBytes)
	if err != nil {
		return nil, err
	}

	resp := &common.Message{}
	if err := serializer.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("RPC IStoreAdapter - Error: %s", err)
	}

	if resp.MsgType == common.MsgTError || resp.Err != "" {
		if resp.Code != 0 {
			return nil, db.NewError(db.RetCode(resp.Code), resp.Err)
		}
		return nil, fmt.Errorf("RPC IStoreAdapter - Error: %s", resp.Err)
	}

	// a response of the wrong type means server and client disagree about
	// the protocol, better to fail loudly than to misread the payload
	if resp.MsgType != req.MsgType {
		return nil, fmt.Errorf("RPC IStoreAdapter - Unexpected message type: %s, expected %s", resp.MsgType, req.MsgType)
	}

	return resp, nil
}
