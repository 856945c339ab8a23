package testutil

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// World is the scenario state shared by the steps of one test.
// Values are stored under a key, or under their type name when no key is given.
type World struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewWorld creates an empty World.
func NewWorld() *World {
	return &World{values: make(map[string]any)}
}

// Clear removes every value.
func (w *World) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.values)
}

// Len returns the number of stored values.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.values)
}

func (w *World) put(key string, value any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.values[key] = value
}

func (w *World) lookup(key string) (any, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	v, ok := w.values[key]
	return v, ok
}

func typeKey[T any]() string {
	return reflect.TypeFor[T]().String()
}

// Add stores value under key and returns it.
func Add[T any](w *World, key string, value T) T {
	w.put(key, value)
	return value
}

// AddTyped stores value under its type name and returns it.
func AddTyped[T any](w *World, value T) T {
	return Add(w, typeKey[T](), value)
}

// Get returns the value stored under key.
// ok is false when the key is missing or holds a value of another type.
func Get[T any](w *World, key string) (T, bool) {
	v, ok := w.lookup(key)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// GetTyped returns the value stored under the type name of T.
func GetTyped[T any](w *World) (T, bool) {
	return Get[T](w, typeKey[T]())
}

// MustGet fails the test when key is missing or holds a value of another type.
func MustGet[T any](t *testing.T, w *World, key string) T {
	t.Helper()
	v, ok := Get[T](w, key)
	require.True(t, ok, "%s", fmt.Sprintf("world has no %s under %q", typeKey[T](), key))
	return v
}
