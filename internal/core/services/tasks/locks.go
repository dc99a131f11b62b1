package tasks

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// shardedLocks serializes writes per task id without a lock per id.
// Ids hashing to the same shard share a mutex.
type shardedLocks struct {
	shards []sync.Mutex
}

func newShardedLocks(n int) *shardedLocks {
	return &shardedLocks{shards: make([]sync.Mutex, n)}
}

func (l *shardedLocks) get(id string) *sync.Mutex {
	return &l.shards[xxhash.Sum64String(id)%uint64(len(l.shards))]
}
