package testing

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ValentinKolb/tKV/lib/db"
)

// DBFactory is a function that creates a new instance of a KVDB implementation.
// The returned database must not be initialized, the suite manages the lifecycle.
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Lifecycle", func(t *testing.T) {
			testLifecycle(t, factory())
		})

		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, mustInit(t, factory))
		})

		t.Run("Namespaces", func(t *testing.T) {
			testNamespaces(t, mustInit(t, factory))
		})

		t.Run("PathWithoutValue", func(t *testing.T) {
			testPathWithoutValue(t, mustInit(t, factory))
		})

		t.Run("InvalidKeys", func(t *testing.T) {
			testInvalidKeys(t, mustInit(t, factory))
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, mustInit(t, factory))
		})

		t.Run("DeleteSubtree", func(t *testing.T) {
			testDeleteSubtree(t, mustInit(t, factory))
		})

		t.Run("Supersede", func(t *testing.T) {
			testSupersede(t, mustInit(t, factory))
		})

		t.Run("SetIfUnset", func(t *testing.T) {
			testSetIfUnset(t, mustInit(t, factory))
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, mustInit(t, factory))
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, mustInit(t, factory))
		})

		t.Run("ManyKeys", func(t *testing.T) {
			testManyKeys(t, mustInit(t, factory))
		})

		t.Run("GetInfo", func(t *testing.T) {
			testGetInfo(t, factory())
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, mustInit(t, factory))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// Creates and initializes a database instance
func mustInit(t testing.TB, factory DBFactory) db.KVDB {
	database := factory()
	if err := database.Init(); err != nil {
		t.Fatalf("Unexpected error during Init: %v", err)
	}
	return database
}

// Checks that err carries the expected typed error code
func expectErrorCode(t *testing.T, err error, code db.RetCode, context string) {
	if err == nil {
		t.Errorf("%s: expected error with code %d, got nil", context, code)
		return
	}
	got, ok := db.CodeOf(err)
	if !ok {
		t.Errorf("%s: expected typed error with code %d, got %v", context, code, err)
		return
	}
	if got != code {
		t.Errorf("%s: expected error code %d, got %d (%v)", context, code, got, err)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testLifecycle(t *testing.T, database db.KVDB) {
	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)

	testKey := "lifecycle-key"
	testValue := []byte("lifecycle-value")

	// every data operation must fail before Init
	err := database.Set(testKey, testValue)
	expectErrorCode(t, err, db.RetCNotInitialized, "Set before Init")

	_, _, err = database.Get(testKey)
	expectErrorCode(t, err, db.RetCNotInitialized, "Get before Init")

	err = database.Delete(testKey)
	expectErrorCode(t, err, db.RetCNotInitialized, "Delete before Init")

	_, err = database.Has(testKey)
	expectErrorCode(t, err, db.RetCNotInitialized, "Has before Init")

	if err := database.Init(); err != nil {
		t.Fatalf("Unexpected error during Init: %v", err)
	}

	// a second Init must be a harmless no-op
	if err := database.Init(); err != nil {
		t.Errorf("Expected second Init to be a no-op, got %v", err)
	}

	if err := database.Set(testKey, testValue); err != nil {
		t.Errorf("Unexpected error during Set: %v", err)
	}

	result, found, err := database.Get(testKey)
	if err != nil || !found {
		t.Errorf("Expected key %s to exist after Set (found=%v, err=%v)", testKey, found, err)
	}
	if !bytes.Equal(result, testValue) {
		t.Errorf("Expected value %s, got %s", testValue, result)
	}

	database.Teardown()

	_, _, err = database.Get(testKey)
	expectErrorCode(t, err, db.RetCNotInitialized, "Get after Teardown")

	// re-initialization yields an empty database
	if err := database.Init(); err != nil {
		t.Fatalf("Unexpected error during re-Init: %v", err)
	}
	defer database.Teardown()

	_, _, err = database.Get(testKey)
	expectErrorCode(t, err, db.RetCKeyNotFound, "Get after re-Init")
}

func testSetGet(t *testing.T, database db.KVDB) {
	defer database.Teardown()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)

	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	if err := database.Set(testKey, testValue1); err != nil {
		t.Fatalf("Unexpected error during Set: %v", err)
	}

	result, found, err := database.Get(testKey)
	if err != nil {
		t.Errorf("Unexpected error during Get: %v", err)
	}
	if !found {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	database.Set(testKey, testValue2)

	result, found, _ = database.Get(testKey)
	if !found {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	// a missing key is a typed error, not just found=false
	_, _, err = database.Get("nonexistent-key")
	expectErrorCode(t, err, db.RetCKeyNotFound, "Get nonexistent key")

	// the returned slice must be a copy
	retrievedValue, _, _ := database.Get(testKey)
	retrievedValue[0] = 'X'

	originalValue, _, _ := database.Get(testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}
}

func testNamespaces(t *testing.T, database db.KVDB) {
	defer database.Teardown()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureNamespaces)

	database.Set("user:1001:name", []byte("Alice"))
	database.Set("user:1001:mail", []byte("alice@example.com"))
	database.Set("user:1002:name", []byte("Bob"))
	database.Set("session:abc", []byte("token-1"))

	cases := []struct {
		key   string
		value string
	}{
		{"user:1001:name", "Alice"},
		{"user:1001:mail", "alice@example.com"},
		{"user:1002:name", "Bob"},
		{"session:abc", "token-1"},
	}

	for _, c := range cases {
		result, found, err := database.Get(c.key)
		if err != nil || !found {
			t.Errorf("Expected key %s to exist (found=%v, err=%v)", c.key, found, err)
			continue
		}
		if string(result) != c.value {
			t.Errorf("Expected value %s for key %s, got %s", c.value, c.key, result)
		}
	}

	// empty segments are dropped during tokenization, these spellings all
	// address the same path
	for _, alias := range []string{"user:1001::name", "user::1001:name", "user:1001:name:"} {
		result, found, err := database.Get(alias)
		if err != nil || !found {
			t.Errorf("Expected alias %q to resolve (found=%v, err=%v)", alias, found, err)
			continue
		}
		if string(result) != "Alice" {
			t.Errorf("Expected value Alice for alias %q, got %s", alias, result)
		}
	}

	// a miss below an existing namespace is a typed error
	_, _, err := database.Get("user:9999:name")
	expectErrorCode(t, err, db.RetCKeyNotFound, "Get missing path")

	// a namespace is not reachable as a flat key
	_, _, err = database.Get("user")
	expectErrorCode(t, err, db.RetCKeyNotFound, "flat Get of namespace")
}

func testPathWithoutValue(t *testing.T, database db.KVDB) {
	defer database.Teardown()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureNamespaces)

	database.Set("user:1001:name", []byte("Alice"))

	// "user:1001" exists as a path element but holds no value: no error,
	// but found=false
	result, found, err := database.Get("user:1001")
	if err != nil {
		t.Errorf("Expected no error for valueless path element, got %v", err)
	}
	if found {
		t.Errorf("Expected found=false for valueless path element, got value %s", result)
	}

	// once a value is written to the path element, it is found
	database.Set("user:1001", []byte("meta"))

	result, found, err = database.Get("user:1001")
	if err != nil || !found {
		t.Errorf("Expected path element to hold a value after Set (found=%v, err=%v)", found, err)
	}
	if string(result) != "meta" {
		t.Errorf("Expected value meta, got %s", result)
	}

	// the child below it is untouched
	result, found, _ = database.Get("user:1001:name")
	if !found || string(result) != "Alice" {
		t.Errorf("Expected child value Alice to survive, got found=%v value=%s", found, result)
	}
}

func testInvalidKeys(t *testing.T, database db.KVDB) {
	defer database.Teardown()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureNamespaces)

	invalidKeys := []string{
		"",     // empty key
		":",    // empty namespace, empty path
		":x",   // empty namespace
		"x:",   // namespace without any path segment
		"x::",  // namespace whose path tokenizes to nothing
		":::",  // nothing but delimiters
		"::ab", // empty namespace with a later segment
	}

	for _, key := range invalidKeys {
		err := database.Set(key, []byte("value"))
		expectErrorCode(t, err, db.RetCInvalidKey, fmt.Sprintf("Set %q", key))

		_, _, err = database.Get(key)
		expectErrorCode(t, err, db.RetCInvalidKey, fmt.Sprintf("Get %q", key))

		err = database.Delete(key)
		expectErrorCode(t, err, db.RetCInvalidKey, fmt.Sprintf("Delete %q", key))

		_, err = database.Has(key)
		expectErrorCode(t, err, db.RetCInvalidKey, fmt.Sprintf("Has %q", key))
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Teardown()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureDelete)

	testKey := "delete-test-key"
	testValue := []byte("delete-test-value")

	database.Set(testKey, testValue)

	if err := database.Delete(testKey); err != nil {
		t.Errorf("Unexpected error during Delete: %v", err)
	}

	_, _, err := database.Get(testKey)
	expectErrorCode(t, err, db.RetCKeyNotFound, "Get after Delete")

	// deleting a missing key is a typed error
	err = database.Delete("nonexistent-key")
	expectErrorCode(t, err, db.RetCKeyNotFound, "Delete nonexistent key")

	// namespaced leaf delete
	database.Set("user:1001:name", []byte("Alice"))
	database.Set("user:1001:mail", []byte("alice@example.com"))

	if err := database.Delete("user:1001:name"); err != nil {
		t.Errorf("Unexpected error during namespaced Delete: %v", err)
	}

	_, _, err = database.Get("user:1001:name")
	expectErrorCode(t, err, db.RetCKeyNotFound, "Get after namespaced Delete")

	// the sibling survives
	result, found, _ := database.Get("user:1001:mail")
	if !found || string(result) != "alice@example.com" {
		t.Errorf("Expected sibling to survive Delete, got found=%v value=%s", found, result)
	}

	// deleting a missing path below an existing namespace is a typed error
	err = database.Delete("user:1001:name")
	expectErrorCode(t, err, db.RetCKeyNotFound, "Delete already deleted path")
}

func testDeleteSubtree(t *testing.T, database db.KVDB) {
	defer database.Teardown()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureDelete)
	requireFeature(t, database, db.FeatureNamespaces)

	database.Set("user:1001:name", []byte("Alice"))
	database.Set("user:1001:mail", []byte("alice@example.com"))
	database.Set("user:1001:prefs:theme", []byte("dark"))
	database.Set("user:1002:name", []byte("Bob"))

	// deleting an inner path element removes its entire subtree
	if err := database.Delete("user:1001"); err != nil {
		t.Errorf("Unexpected error during subtree Delete: %v", err)
	}

	for _, key := range []string{"user:1001:name", "user:1001:mail", "user:1001:prefs:theme"} {
		_, _, err := database.Get(key)
		expectErrorCode(t, err, db.RetCKeyNotFound, fmt.Sprintf("Get %q after subtree Delete", key))
	}

	// the other branch of the namespace is untouched
	result, found, _ := database.Get("user:1002:name")
	if !found || string(result) != "Bob" {
		t.Errorf("Expected other branch to survive, got found=%v value=%s", found, result)
	}

	// the namespace stays usable after deleting its last branch
	if err := database.Delete("user:1002"); err != nil {
		t.Errorf("Unexpected error deleting last branch: %v", err)
	}
	if err := database.Set("user:2001:name", []byte("Carol")); err != nil {
		t.Errorf("Unexpected error writing into emptied namespace: %v", err)
	}
	result, found, _ = database.Get("user:2001:name")
	if !found || string(result) != "Carol" {
		t.Errorf("Expected emptied namespace to accept new writes, got found=%v value=%s", found, result)
	}
}

func testSupersede(t *testing.T, database db.KVDB) {
	defer database.Teardown()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureDelete)
	requireFeature(t, database, db.FeatureNamespaces)

	// flat write over an existing namespace replaces the whole namespace
	database.Set("user:1001:name", []byte("Alice"))
	database.Set("user", []byte("flat"))

	result, found, err := database.Get("user")
	if err != nil || !found {
		t.Errorf("Expected flat key to exist after supersede (found=%v, err=%v)", found, err)
	}
	if string(result) != "flat" {
		t.Errorf("Expected value flat, got %s", result)
	}

	_, _, err = database.Get("user:1001:name")
	expectErrorCode(t, err, db.RetCKeyNotFound, "Get namespaced key after flat supersede")

	// namespaced write over an existing flat key replaces the flat key
	database.Set("cfg", []byte("flat"))
	database.Set("cfg:net:port", []byte("5379"))

	result, found, err = database.Get("cfg:net:port")
	if err != nil || !found {
		t.Errorf("Expected namespaced key to exist after supersede (found=%v, err=%v)", found, err)
	}
	if string(result) != "5379" {
		t.Errorf("Expected value 5379, got %s", result)
	}

	_, _, err = database.Get("cfg")
	expectErrorCode(t, err, db.RetCKeyNotFound, "flat Get after namespaced supersede")

	// a flat delete removes the slot regardless of its kind
	if err := database.Delete("user"); err != nil {
		t.Errorf("Unexpected error deleting flat key: %v", err)
	}
	if err := database.Delete("cfg"); err != nil {
		t.Errorf("Unexpected error deleting namespace via flat key: %v", err)
	}
	_, _, err = database.Get("cfg:net:port")
	expectErrorCode(t, err, db.RetCKeyNotFound, "Get after namespace dropped via flat Delete")
}

func testSetIfUnset(t *testing.T, database db.KVDB) {
	defer database.Teardown()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureSetIfUnset)
	requireFeature(t, database, db.FeatureGet)

	testKey := "test-key"
	testValue1 := []byte("test-value")
	testValue2 := []byte("test-value2")

	if err := database.SetIfUnset(testKey, testValue1); err != nil {
		t.Errorf("Unexpected error during SetIfUnset: %v", err)
	}

	result, found, _ := database.Get(testKey)
	if !found {
		t.Errorf("Expected key %s to exist after SetIfUnset", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	// a second conditional set keeps the first value
	if err := database.SetIfUnset(testKey, testValue2); err != nil {
		t.Errorf("Unexpected error during second SetIfUnset: %v", err)
	}

	result, _, _ = database.Get(testKey)
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	// namespaced conditional set fills a valueless path element
	database.Set("user:1001:name", []byte("Alice"))
	if err := database.SetIfUnset("user:1001", []byte("meta")); err != nil {
		t.Errorf("Unexpected error during namespaced SetIfUnset: %v", err)
	}
	result, found, _ = database.Get("user:1001")
	if !found || string(result) != "meta" {
		t.Errorf("Expected valueless path element to be filled, got found=%v value=%s", found, result)
	}

	// unlike Set, a conditional set never supersedes an entry of the other
	// kind
	if err := database.SetIfUnset("user", []byte("flat")); err != nil {
		t.Errorf("Unexpected error during kind-colliding SetIfUnset: %v", err)
	}
	result, found, _ = database.Get("user:1001:name")
	if !found || string(result) != "Alice" {
		t.Errorf("Expected namespace to survive kind-colliding SetIfUnset, got found=%v value=%s", found, result)
	}
}

func testHas(t *testing.T, database db.KVDB) {
	defer database.Teardown()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureDelete)
	requireFeature(t, database, db.FeatureHas)

	testKey := "has-exists-test-key"
	testValue := []byte("has-exists-test-value")

	found, err := database.Has(testKey)
	if err != nil {
		t.Errorf("Unexpected error during Has: %v", err)
	}
	if found {
		t.Errorf("Expected Has to return false for nonexistent key")
	}

	database.Set(testKey, testValue)

	found, _ = database.Has(testKey)
	if !found {
		t.Errorf("Expected Has to return true after Set")
	}

	database.Delete(testKey)

	found, _ = database.Has(testKey)
	if found {
		t.Errorf("Expected Has to return false after Delete")
	}

	// a valueless path element does not count as present
	database.Set("user:1001:name", testValue)

	found, err = database.Has("user:1001")
	if err != nil {
		t.Errorf("Unexpected error during Has on valueless path: %v", err)
	}
	if found {
		t.Errorf("Expected Has to return false for valueless path element")
	}

	found, _ = database.Has("user:1001:name")
	if !found {
		t.Errorf("Expected Has to return true for namespaced key")
	}

	// a namespace is not visible as a flat key
	found, _ = database.Has("user")
	if found {
		t.Errorf("Expected Has to return false for flat probe of a namespace")
	}
}

func testEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Teardown()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)

	// empty and nil values are stored and found, distinct from "no value"
	emptyValueKey := "empty-value-key"
	var emptyValue []byte

	database.Set(emptyValueKey, emptyValue)

	result, found, err := database.Get(emptyValueKey)
	if err != nil || !found {
		t.Errorf("Key for empty value not found after Set (found=%v, err=%v)", found, err)
	} else if len(result) != 0 {
		t.Errorf("Empty value resulted in non-empty value: %v", result)
	}

	has, _ := database.Has(emptyValueKey)
	if !has {
		t.Errorf("Expected Has to return true for empty value")
	}

	// long flat key
	largeKey := strings.Repeat("k", 1000)
	largeKeyValue := []byte("value for large key")

	database.Set(largeKey, largeKeyValue)

	result, found, _ = database.Get(largeKey)
	if !found {
		t.Errorf("Large key not found after Set")
	} else if !bytes.Equal(result, largeKeyValue) {
		t.Errorf("Value mismatch for large key")
	}

	// unicode keys and values
	unicodeKey := "stätte:größe:名前"
	unicodeValue := []byte("höhenmeter 🌲")

	database.Set(unicodeKey, unicodeValue)

	result, found, _ = database.Get(unicodeKey)
	if !found {
		t.Errorf("Unicode key not found after Set")
	} else if !bytes.Equal(result, unicodeValue) {
		t.Errorf("Value mismatch for unicode key")
	}

	// deeply nested path
	segments := make([]string, 50)
	for i := range segments {
		segments[i] = fmt.Sprintf("s%d", i)
	}
	deepKey := strings.Join(segments, ":")
	deepValue := []byte("deep value")

	if err := database.Set(deepKey, deepValue); err != nil {
		t.Errorf("Unexpected error setting deeply nested key: %v", err)
	}

	result, found, _ = database.Get(deepKey)
	if !found {
		t.Errorf("Deeply nested key not found after Set")
	} else if !bytes.Equal(result, deepValue) {
		t.Errorf("Value mismatch for deeply nested key")
	}

	// large value round trip
	largeValueKey := "large-value-key"
	largeValue := make([]byte, 4*1024*1024)
	for i := range largeValue {
		largeValue[i] = byte(i % 256)
	}

	database.Set(largeValueKey, largeValue)

	result, found, _ = database.Get(largeValueKey)
	if !found {
		t.Errorf("Key for large value not found after Set")
	} else if !bytes.Equal(result, largeValue) {
		headMismatch := !bytes.Equal(result[:10], largeValue[:10])
		tailMismatch := !bytes.Equal(result[len(result)-10:], largeValue[len(largeValue)-10:])
		t.Errorf("Large value mismatch: Head mismatch=%v, Tail mismatch=%v, Size mismatch=%v",
			headMismatch, tailMismatch, len(result) != len(largeValue))
	}
}

func testManyKeys(t *testing.T, database db.KVDB) {
	defer database.Teardown()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureDelete)

	numKeys := 1000

	// flat keys with a shared prefix and namespaced keys sharing one trie
	for i := 0; i < numKeys; i++ {
		flatKey := fmt.Sprintf("flat-key-%d", i)
		database.Set(flatKey, []byte(fmt.Sprintf("flat-value-%d", i)))

		nsKey := fmt.Sprintf("bulk:%d:value", i)
		database.Set(nsKey, []byte(fmt.Sprintf("ns-value-%d", i)))
	}

	for i := 0; i < numKeys; i++ {
		flatKey := fmt.Sprintf("flat-key-%d", i)
		expected := []byte(fmt.Sprintf("flat-value-%d", i))

		actual, found, err := database.Get(flatKey)
		if err != nil || !found {
			t.Errorf("Key %s not found (found=%v, err=%v)", flatKey, found, err)
			continue
		}
		if !bytes.Equal(actual, expected) {
			t.Errorf("Value for key %s does not match: expected %s, got %s", flatKey, expected, actual)
		}

		nsKey := fmt.Sprintf("bulk:%d:value", i)
		expected = []byte(fmt.Sprintf("ns-value-%d", i))

		actual, found, err = database.Get(nsKey)
		if err != nil || !found {
			t.Errorf("Key %s not found (found=%v, err=%v)", nsKey, found, err)
			continue
		}
		if !bytes.Equal(actual, expected) {
			t.Errorf("Value for key %s does not match: expected %s, got %s", nsKey, expected, actual)
		}
	}

	// delete every second key of both shapes
	for i := 0; i < numKeys; i += 2 {
		database.Delete(fmt.Sprintf("flat-key-%d", i))
		database.Delete(fmt.Sprintf("bulk:%d", i))
	}

	for i := 0; i < numKeys; i++ {
		_, flatFound, _ := database.Get(fmt.Sprintf("flat-key-%d", i))
		_, nsFound, _ := database.Get(fmt.Sprintf("bulk:%d:value", i))

		if i%2 == 0 {
			if flatFound {
				t.Errorf("Key flat-key-%d should be deleted", i)
			}
			if nsFound {
				t.Errorf("Key bulk:%d:value should be deleted", i)
			}
		} else {
			if !flatFound {
				t.Errorf("Key flat-key-%d should still exist", i)
			}
			if !nsFound {
				t.Errorf("Key bulk:%d:value should still exist", i)
			}
		}
	}
}

func testGetInfo(t *testing.T, database db.KVDB) {
	// GetInfo must be callable before Init without panicking
	info := database.GetInfo()
	if info.DbType == "" {
		t.Errorf("Expected DbType to be set before Init")
	}

	if err := database.Init(); err != nil {
		t.Fatalf("Unexpected error during Init: %v", err)
	}
	defer database.Teardown()

	requireFeature(t, database, db.FeatureSet)

	for i := 0; i < 100; i++ {
		database.Set(fmt.Sprintf("info:%d:value", i), []byte(strings.Repeat("x", 128)))
	}

	info = database.GetInfo()

	if info.DbType == "" {
		t.Errorf("Expected DbType to be set")
	}
	if info.SizeBytes <= 0 {
		t.Errorf("Expected positive SizeBytes, got %d", info.SizeBytes)
	}
	if len(info.SupportedFeatures) == 0 {
		t.Errorf("Expected supported features to be reported")
	}
	if info.Metadata == nil {
		t.Errorf("Expected implementation metadata to be set")
	}

	// reported features must agree with SupportsFeature
	for _, feature := range info.SupportedFeatures {
		if !database.SupportsFeature(feature) {
			t.Errorf("Feature %v reported in GetInfo but not via SupportsFeature", feature)
		}
	}
}

func testRealisticUsage(t *testing.T, database db.KVDB) {
	defer database.Teardown()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureDelete)
	requireFeature(t, database, db.FeatureNamespaces)

	type operation struct {
		op    string
		key   string
		value []byte
	}

	numOperations := 10_000
	operations := make([]operation, numOperations)

	for i := 0; i < numOperations; i++ {
		var op string
		switch i % 10 {
		case 0, 1, 2, 3, 4, 5, 6:
			op = "set"
		case 7, 8:
			op = "get"
		case 9:
			op = "delete"
		}

		// mix flat keys, namespaced keys, and a small hot set
		var key string
		switch {
		case i%5 == 0:
			key = fmt.Sprintf("hot:%d:counter", i%50)
		case i%2 == 0:
			key = fmt.Sprintf("user:%d:name", i)
		default:
			key = fmt.Sprintf("key-%d", i)
		}

		var value []byte
		if op == "set" {
			valueSize := 64
			if i%10 == 0 {
				valueSize = 1024
			}
			value = make([]byte, valueSize)
			for j := 0; j < valueSize; j++ {
				value[j] = byte((i + j) % 256)
			}
		}

		operations[i] = operation{op, key, value}
	}

	allKeys := make(map[string]bool)
	for _, op := range operations {
		allKeys[op.key] = true
	}

	numWorkers := 8
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	opsPerWorker := numOperations / numWorkers

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()

			start := workerId * opsPerWorker
			end := start + opsPerWorker

			for i := start; i < end; i++ {
				op := operations[i]

				switch op.op {
				case "set":
					database.Set(op.key, op.value)
				case "get":
					database.Get(op.key)
				case "delete":
					database.Delete(op.key)
				}
			}
		}(w)
	}

	wg.Wait()

	// two sequential verification passes must agree with each other
	keyStatus := make(map[string]bool)
	keyValues := make(map[string][]byte)

	for key := range allKeys {
		value, found, _ := database.Get(key)
		keyStatus[key] = found
		if found {
			keyValues[key] = value
		}
	}

	for key := range allKeys {
		value, found, _ := database.Get(key)

		if found != keyStatus[key] {
			t.Errorf("Consistency error: Key %s existence changed during verification", key)
			continue
		}

		if found && !bytes.Equal(value, keyValues[key]) {
			t.Errorf("Value mismatch for key %s between verification passes", key)
		}
	}
}
