// Package lock serializes critical sections by key, in process or across
// instances through Redis.
package lock

import (
	"context"
	"sync"
)

// Locker acquires an exclusive lock on key, blocking until it is held or
// ctx ends. The returned func releases it and is safe to call once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// KeyedMutex is an in-process Locker with one slot per key.
type KeyedMutex struct {
	mu sync.Mutex
	m  map[string]chan struct{}
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{m: make(map[string]chan struct{})}
}

func (k *KeyedMutex) slotFor(key string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()

	if ch, ok := k.m[key]; ok {
		return ch
	}
	ch := make(chan struct{}, 1)
	k.m[key] = ch
	return ch
}

func (k *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	ch := k.slotFor(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() { once.Do(func() { <-ch }) }, nil
}
