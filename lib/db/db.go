package db

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplBirch Implementation = "birch"
)

// Feature represents database features as bit flags
type Feature uint64

const (
	FeatureSet        Feature = 1 << iota // Support for Set operations
	FeatureSetIfUnset                     // Support for SetIfUnset operations
	FeatureGet                            // Support for Get operations
	FeatureDelete                         // Support for Delete operations
	FeatureHas                            // Support for Has operations
	FeatureNamespaces                     // Support for delimiter-separated hierarchical keys
	FeatureTiering                        // Support for a two-tier keyspace with promotion
)

func (f Feature) String() string {
	switch f {
	case FeatureSet:
		return "Set"
	case FeatureSetIfUnset:
		return "SetIfUnset"
	case FeatureGet:
		return "Get"
	case FeatureDelete:
		return "Delete"
	case FeatureHas:
		return "Has"
	case FeatureNamespaces:
		return "Namespaces"
	case FeatureTiering:
		return "Tiering"
	default:
		return "Unknown"
	}
}

type DatabaseInfo struct {
	SizeBytes         int            `json:"size_bytes"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB defines an interface for key-value database implementations.
// It provides methods for basic operations like Set, Get, Delete, and various utility functions.
// Any implementation of this interface must manage keys in a consistent way.
// Implementations can vary in their feature support, which can be queried with SupportsFeature.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Lifecycle Operations
	// --------------------------------------------------------------------------

	// Init prepares the database for use. It must be called once before any
	// other operation; until then all data operations return a NotInitialized
	// error. Calling Init on an already initialized database is a no-op.
	Init() (err error)

	// Teardown releases all entries and the internal storage of the database.
	// After Teardown, data operations return a NotInitialized error until
	// Init is called again.
	Teardown()

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Set inserts or updates an entry with the given key and value.
	// If the key already exists, the old value is overwritten.
	// Keys containing the delimiter are stored hierarchically, one level per
	// key segment.
	Set(key string, value []byte) (err error)

	// SetIfUnset inserts an entry with the given key and value.
	// If the key already holds a value, the old value is not updated.
	// No error is returned if the key already holds a value.
	SetIfUnset(key string, value []byte) (err error)

	// Delete removes the entry with the specified key together with any
	// hierarchical children stored below it.
	// A KeyNotFound error is returned if the key does not exist.
	Delete(key string) (err error)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for an exact key.
	// The boolean return value indicates whether a value for the key was
	// found: (nil, false, nil) means the key addresses an existing path
	// element that holds no value, while a KeyNotFound error means the key
	// does not resolve at all. The returned slice is a copy and safe to
	// modify.
	Get(key string) (value []byte, found bool, err error)

	// Has checks whether a key currently holds a value.
	// Unlike Get, this probe never updates access metadata.
	Has(key string) (found bool, err error)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the database implementation supports the specified feature.
	// Returns true if the feature is supported, false otherwise.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	// It may be called in any lifecycle state.
	GetInfo() (info DatabaseInfo)
}
