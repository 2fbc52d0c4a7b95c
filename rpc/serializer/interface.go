package serializer

import "github.com/ValentinKolb/tKV/rpc/common"

// IRPCSerializer is the interface for all Message serializers
type IRPCSerializer interface {
	// Serialize encodes a Message into its wire representation
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize decodes wire data into msg, overwriting every field so
	// the target struct can be reused between calls
	Deserialize(b []byte, msg *common.Message) error
}
