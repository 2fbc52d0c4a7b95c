package client

import (
	"encoding/json"

	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/serializer"
	"github.com/ValentinKolb/tKV/rpc/transport"
)

// NewRPCStore returns a store.IStore backed by a remote server. It connects
// the given transport immediately, so a returned store is ready for use and
// a connection problem surfaces here instead of on the first operation.
func NewRPCStore(
	storeID uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IStore, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &rpcStore{
		rpcClientAdapter{
			storeID:    storeID,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

type rpcStore struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcStore) Set(key string, value []byte) (err error) {
	req := common.NewSetRequest(key, value)
	_, err = invokeRPCRequest(i.storeID, req, i.transport, i.serializer)
	return err
}

func (i *rpcStore) SetIfUnset(key string, value []byte) (err error) {
	req := common.NewSetIfUnsetRequest(key, value)
	_, err = invokeRPCRequest(i.storeID, req, i.transport, i.serializer)
	return err
}

func (i *rpcStore) Delete(key string) (err error) {
	req := common.NewDeleteRequest(key)
	_, err = invokeRPCRequest(i.storeID, req, i.transport, i.serializer)
	return err
}

func (i *rpcStore) Get(key string) (value []byte, loaded bool, err error) {
	req := common.NewGetRequest(key)
	resp, err := invokeRPCRequest(i.storeID, req, i.transport, i.serializer)
	if err != nil {
		return nil, false, err
	}
	return resp.Value, resp.Found, nil
}

func (i *rpcStore) Has(key string) (loaded bool, err error) {
	req := common.NewHasRequest(key)
	resp, err := invokeRPCRequest(i.storeID, req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Found, nil
}

// GetDBInfo fetches the engine info of the remote store. The server ships the
// info as a JSON document in the Meta field of the response.
func (i *rpcStore) GetDBInfo() (info db.DatabaseInfo, err error) {
	req := common.NewInfoRequest()
	resp, err := invokeRPCRequest(i.storeID, req, i.transport, i.serializer)
	if err != nil {
		return db.DatabaseInfo{}, err
	}
	if err := json.Unmarshal(resp.Meta, &info); err != nil {
		return db.DatabaseInfo{}, err
	}
	return info, nil
}

// Close shuts down the underlying transport and all its connections.
func (i *rpcStore) Close() error {
	return i.transport.Close()
}
