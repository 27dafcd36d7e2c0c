package services

import "sync"

// AssetLocks serializes mutations per asset so concurrent buy/sell/price
// writes against the same asset never interleave, while different assets
// proceed independently. One instance is shared by every service that
// mutates asset state.
type AssetLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewAssetLocks creates an empty lock table.
func NewAssetLocks() *AssetLocks {
	return &AssetLocks{locks: make(map[uint]*sync.Mutex)}
}

// Lock acquires the mutex for the given asset ID, creating it on first use,
// and returns the unlock function.
func (l *AssetLocks) Lock(assetID uint) func() {
	l.mu.Lock()
	lock, ok := l.locks[assetID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[assetID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
