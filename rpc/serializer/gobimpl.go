package serializer

import (
	"bytes"
	"encoding/gob"
	"github.com/ValentinKolb/tKV/rpc/common"
)

// NewGOBSerializer returns a serializer backed by encoding/gob. It exists
// mainly as a stdlib baseline to benchmark the other formats against.
func NewGOBSerializer() IRPCSerializer {
	return &gobSerializerImpl{}
}

type gobSerializerImpl struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// a fresh encoder per message keeps the serializer stateless, gob
	// streams would otherwise share type information between messages
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g gobSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	return gob.NewDecoder(bytes.NewReader(b)).Decode(msg)
}
