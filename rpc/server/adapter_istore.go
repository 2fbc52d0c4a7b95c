package server

import (
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/ValentinKolb/tKV/rpc/common"
)

func NewIStoreServerAdapter() IRPCServerAdapter {
	return &iStoreServerAdapterImpl{}
}

type iStoreServerAdapterImpl struct{}

func (adapter *iStoreServerAdapterImpl) Handle(req *common.Message, store store.IStore) *common.Message {
	if store == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	switch req.MsgType {
	case common.MsgTKVSet:
		return common.NewSetResponse(store.Set(req.Key, req.Value))
	case common.MsgTKVSetIfUnset:
		return common.NewSetIfUnsetResponse(store.SetIfUnset(req.Key, req.Value))
	case common.MsgTKVDelete:
		return common.NewDeleteResponse(store.Delete(req.Key))
	case common.MsgTKVGet:
		val, loaded, err := store.Get(req.Key)
		return common.NewGetResponse(val, loaded, err)
	case common.MsgTKVHas:
		loaded, err := store.Has(req.Key)
		return common.NewHasResponse(loaded, err)
	case common.MsgTKVInfo:
		info, err := store.GetDBInfo()
		if err != nil {
			return common.NewInfoResponse(nil, err)
		}
		meta, err := json.Marshal(info)
		return common.NewInfoResponse(meta, err)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC IStoreAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}
