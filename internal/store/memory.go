// ABOUTME: In-memory Store implementation for ephemeral sessions and tests
// ABOUTME: Shares the FileStore contract, including injectable storage failures

package store

import "sync"

// Memory is a Store that lives only as long as the process.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
	fail   error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

// FailWith makes every subsequent call return a StorageError wrapping err.
// Passing nil restores normal behaviour.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

// Get returns the value for key. A missing key is not an error.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", false, &StorageError{Op: "get", Key: key, Err: m.fail}
	}
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key, replacing any previous value.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return &StorageError{Op: "set", Key: key, Err: m.fail}
	}
	m.values[key] = value
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (m *Memory) Remove(key string) error {
	return m.RemoveMany(key)
}

// RemoveMany deletes every key in keys under one lock.
func (m *Memory) RemoveMany(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return &StorageError{Op: "remove", Err: m.fail}
	}
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// Len reports how many keys are stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}
