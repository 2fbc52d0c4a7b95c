package serializer

import (
	"github.com/ValentinKolb/tKV/rpc/common"
	"testing"
)

// benchCase pairs a label with a message shaped like real store traffic
type benchCase struct {
	name string
	msg  common.Message
}

func benchmarkCases() []benchCase {
	return []benchCase{
		{"Success", common.Message{
			MsgType: common.MsgTSuccess,
			Ok:      true,
		}},
		{"GetRequest", common.Message{
			MsgType: common.MsgTKVGet,
			Key:     "users:alice:profile",
		}},
		{"GetRequestDeepPath", common.Message{
			MsgType: common.MsgTKVGet,
			Key:     "tenants:eu-central:accounts:2024:invoices:outstanding:batch-007:line-items",
		}},
		{"SetTinyValue", common.Message{
			MsgType: common.MsgTKVSet,
			Key:     "sessions:abc123",
			Value:   []byte("1"),
		}},
		{"SetJSONValue", common.Message{
			MsgType: common.MsgTKVSet,
			Key:     "users:alice:profile",
			Value:   []byte(`{"name":"alice","mail":"alice@example.com","roles":["admin","dev"],"active":true}`),
		}},
		{"Set4KValue", common.Message{
			MsgType: common.MsgTKVSet,
			Key:     "blobs:chunk-01",
			Value:   make([]byte, 4*1024),
		}},
		{"Set64KValue", common.Message{
			MsgType: common.MsgTKVSet,
			Key:     "blobs:chunk-02",
			Value:   make([]byte, 64*1024),
		}},
		{"FoundResponse", common.Message{
			MsgType: common.MsgTSuccess,
			Value:   []byte(`{"name":"alice"}`),
			Ok:      true,
			Found:   true,
		}},
		{"ErrorResponse", common.Message{
			MsgType: common.MsgTError,
			Code:    1,
			Err:     "KVStoreError (code INTERNAL_ERROR): trie is out of memory",
		}},
		{"InfoResponse", common.Message{
			MsgType: common.MsgTSuccess,
			Ok:      true,
			Meta:    []byte(`{"impl":"birch","num_entries":1204,"num_namespaces":8,"avg_value_size":512}`),
		}},
	}
}

// BenchmarkSerialize measures encoding speed per implementation and message shape
func BenchmarkSerialize(b *testing.B) {
	for name, factory := range testSerializers {
		s := factory()

		for _, c := range benchmarkCases() {
			b.Run(name+"/"+c.name, func(b *testing.B) {
				b.ReportAllocs()

				for i := 0; i < b.N; i++ {
					if _, err := s.Serialize(c.msg); err != nil {
						b.Fatalf("Failed to serialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkDeserialize measures decoding speed. The message struct is reused
// across iterations, matching how the rpc server decodes into a pooled value.
func BenchmarkDeserialize(b *testing.B) {
	for name, factory := range testSerializers {
		s := factory()

		for _, c := range benchmarkCases() {
			data, err := s.Serialize(c.msg)
			if err != nil {
				b.Fatalf("Failed to serialize %s with %s: %v", c.name, name, err)
			}

			b.Run(name+"/"+c.name, func(b *testing.B) {
				b.ReportAllocs()

				var msg common.Message
				for i := 0; i < b.N; i++ {
					if err := s.Deserialize(data, &msg); err != nil {
						b.Fatalf("Failed to deserialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkSize reports the encoded size per implementation and message shape
func BenchmarkSize(b *testing.B) {
	for name, factory := range testSerializers {
		s := factory()

		for _, c := range benchmarkCases() {
			b.Run(name+"/"+c.name, func(b *testing.B) {
				data, err := s.Serialize(c.msg)
				if err != nil {
					b.Fatalf("Failed to serialize: %v", err)
				}

				b.ReportMetric(float64(len(data)), "bytes")

				for i := 0; i < b.N; i++ {
					_ = data
				}
			})
		}
	}
}
