package serializer

import (
	"encoding/json"
	"github.com/ValentinKolb/tKV/rpc/common"
)

// NewJSONSerializer returns a serializer that encodes messages as JSON.
// The format is the slowest and largest of the three but human readable,
// which makes it the right choice for debugging wire traffic.
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{}
}

type jsonSerializerImpl struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (j jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	return json.Unmarshal(b, msg)
}
