package game

import (
	"sync"
	"time"

	"github.com/DeafWorld/story-clash/internal/types"
)

// RoomStore holds room aggregates keyed by code. Implementations must be
// safe for concurrent use; callers are responsible for room-level mutation
// discipline.
type RoomStore interface {
	Get(code string) (*types.Room, bool)
	Put(room *types.Room)
	Delete(code string)
	Codes() []string
	Len() int
}

// MemoryStore is the in-memory RoomStore used in production. Rooms are
// ephemeral, so nothing persists across restarts.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*types.Room
}

var _ RoomStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*types.Room)}
}

func (s *MemoryStore) Get(code string) (*types.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	return room, ok
}

func (s *MemoryStore) Put(room *types.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.Code] = room
}

func (s *MemoryStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

func (s *MemoryStore) Codes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	codes := make([]string, 0, len(s.rooms))
	for code := range s.rooms {
		codes = append(codes, code)
	}
	return codes
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// ExpiredCodes returns the codes of rooms whose TTL has elapsed as of now.
func ExpiredCodes(store RoomStore, now time.Time) []string {
	var expired []string
	for _, code := range store.Codes() {
		room, ok := store.Get(code)
		if ok && now.After(room.ExpiresAt) {
			expired = append(expired, code)
		}
	}
	return expired
}
