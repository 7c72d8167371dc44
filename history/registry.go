package history

import (
	"context"
	"hash/fnv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxClients is the number of client stores a Registry keeps
// loaded when no capacity is given.
const DefaultMaxClients = 1024

// lockStripes is the number of mutexes client operations are spread over.
const lockStripes = 64

// Registry hands out one Store per client, all sharing a BlobStore.
//
// At most capacity stores stay loaded; the least recently used one is
// dropped when a new client arrives. Stores persist on every mutation,
// so a dropped store is reloaded from the BlobStore on next use. Calls
// for the same client are serialized, which keeps a reloaded store from
// racing the one it replaced.
type Registry struct {
	blobs  BlobStore
	opts   []Option
	stores *lru.Cache[string, *Store]
	locks  [lockStripes]sync.Mutex
}

// NewRegistry creates a registry over blobs keeping at most capacity
// stores loaded (<= 0 means DefaultMaxClients). opts apply to every
// Store; the key is always derived from the client id.
func NewRegistry(blobs BlobStore, capacity int, opts ...Option) *Registry {
	if capacity <= 0 {
		capacity = DefaultMaxClients
	}
	stores, err := lru.New[string, *Store](capacity)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &Registry{
		blobs:  blobs,
		opts:   opts,
		stores: stores,
	}
}

// ClientKey returns the blob key holding clientID's history.
func ClientKey(clientID string) string {
	return StorageKey + ":" + clientID
}

// Len returns the number of stores currently loaded.
func (r *Registry) Len() int {
	return r.stores.Len()
}

// View calls fn with clientID's store. A client with no history is not
// retained, so reads from unknown clients do not grow the registry.
// fn must not modify the store.
func (r *Registry) View(ctx context.Context, clientID string, fn func(*Store) error) error {
	mu := r.lock(clientID)
	mu.Lock()
	defer mu.Unlock()

	s, err := r.load(ctx, clientID)
	if err != nil {
		return err
	}
	if s.Len() > 0 {
		r.stores.Add(clientID, s)
	}
	return fn(s)
}

// Update calls fn with clientID's store, loading it on first use.
func (r *Registry) Update(ctx context.Context, clientID string, fn func(*Store) error) error {
	mu := r.lock(clientID)
	mu.Lock()
	defer mu.Unlock()

	s, err := r.load(ctx, clientID)
	if err != nil {
		return err
	}
	r.stores.Add(clientID, s)
	return fn(s)
}

// load must be called with the client's lock held.
func (r *Registry) load(ctx context.Context, clientID string) (*Store, error) {
	if s, ok := r.stores.Get(clientID); ok {
		return s, nil
	}
	opts := append(append([]Option(nil), r.opts...), WithKey(ClientKey(clientID)))
	return Open(ctx, r.blobs, opts...)
}

func (r *Registry) lock(clientID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(clientID))
	return &r.locks[h.Sum32()%lockStripes]
}
