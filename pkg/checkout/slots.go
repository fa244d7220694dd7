// Package checkout implements the client-side checkout coordination flow:
// idempotent invoice creation, the transaction status subscription, and the
// navigation decisions taken on terminal status transitions, plus the
// auth-gated redirect state machine that funnels anonymous users through
// login and back to where they were headed.
package checkout

import (
	"encoding/json"
	"os"
	"sync"
)

// Slot keys. Each key holds at most one value; a later write overwrites an
// earlier one (last-writer-wins, not a queue).
const (
	slotPostAuthRedirect = "postAuthRedirect"
	slotPendingCheckout  = "pendingCheckout"
)

// SlotStore is the persisted client-local key/value store backing the
// single-slot values. Implementations assume a single writer at a time
// (one flow driving the store); there is no cross-instance coordination.
type SlotStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Clear(key string)
}

// PendingCheckout is the selection persisted across reloads and auth
// redirects so checkout can resume with the right invoice.
type PendingCheckout struct {
	TemplateID string `json:"templateId"`
	OptionID   string `json:"optionId"`
}

// Slots wraps a SlotStore with typed accessors for the two logical slots.
type Slots struct {
	store SlotStore
}

// NewSlots creates typed slot accessors over a store.
func NewSlots(store SlotStore) *Slots {
	return &Slots{store: store}
}

// SetPostAuthRedirect records the path to return to after sign-in,
// overwriting any earlier value.
func (s *Slots) SetPostAuthRedirect(path string) {
	s.store.Set(slotPostAuthRedirect, path)
}

// PostAuthRedirect returns the pending redirect path without consuming it.
func (s *Slots) PostAuthRedirect() (string, bool) {
	return s.store.Get(slotPostAuthRedirect)
}

// ConsumePostAuthRedirect reads and deletes the pending redirect path.
// A second call returns false until the slot is written again.
func (s *Slots) ConsumePostAuthRedirect() (string, bool) {
	v, ok := s.store.Get(slotPostAuthRedirect)
	if ok {
		s.store.Clear(slotPostAuthRedirect)
	}
	return v, ok
}

// SetPendingCheckout persists the template/option selection.
func (s *Slots) SetPendingCheckout(pc PendingCheckout) {
	raw, err := json.Marshal(pc)
	if err != nil {
		return
	}
	s.store.Set(slotPendingCheckout, string(raw))
}

// PendingCheckout returns the persisted selection without consuming it.
func (s *Slots) PendingCheckout() (PendingCheckout, bool) {
	raw, ok := s.store.Get(slotPendingCheckout)
	if !ok {
		return PendingCheckout{}, false
	}
	var pc PendingCheckout
	if err := json.Unmarshal([]byte(raw), &pc); err != nil {
		return PendingCheckout{}, false
	}
	return pc, true
}

// ConsumePendingCheckout reads and deletes the persisted selection.
func (s *Slots) ConsumePendingCheckout() (PendingCheckout, bool) {
	pc, ok := s.PendingCheckout()
	if ok {
		s.store.Clear(slotPendingCheckout)
	}
	return pc, ok
}

// ClearPendingCheckout deletes the persisted selection.
func (s *Slots) ClearPendingCheckout() {
	s.store.Clear(slotPendingCheckout)
}

// MemoryStore is an in-memory SlotStore.
type MemoryStore struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *MemoryStore) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

// FileStore is a SlotStore persisted as a JSON file, surviving process
// restarts the way browser local storage survives reloads. Write errors
// are swallowed: a slot that fails to persist degrades to the default
// post-auth destination, it does not break the flow.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() map[string]string {
	m := make(map[string]string)
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return m
	}
	_ = json.Unmarshal(raw, &m)
	return m
}

func (s *FileStore) save(m map[string]string) {
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	_ = os.WriteFile(s.path, raw, 0o600)
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.load()[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	m[key] = value
	s.save(m)
}

func (s *FileStore) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	delete(m, key)
	s.save(m)
}
