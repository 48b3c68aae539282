package discordpod

// Store is a key-value persistence abstraction over byte blobs. The pod uses
// it to keep per-thread conversation history and thread ownership records.
// Implementations must be safe for concurrent use; concurrent writers to the
// same key are last-write-wins.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound if absent.
	Get(key string) ([]byte, error)

	// Set writes the value for key, creating or replacing it.
	Set(key string, value []byte) error

	// Delete removes the entry for key. Deleting an absent key is not an error.
	Delete(key string) error

	// Namespace returns a view of the store scoped to the given name. Keys in
	// different namespaces never collide.
	Namespace(name string) (Store, error)
}
