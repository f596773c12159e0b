// internal/game/registry.go
package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultSweepInterval is how often the registry scans for empty
// rooms. Rooms are normally deleted as soon as their last player
// leaves; the sweep catches anything that slipped through.
const DefaultSweepInterval = time.Hour

// Registry owns the in-memory map of live rooms. Rooms are keyed by
// their shareable id and exist only for the lifetime of the process.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	log   *logrus.Logger
}

// NewRegistry returns an empty in-memory registry.
func NewRegistry(log *logrus.Logger) *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		log:   log,
	}
}

// Add registers a new room, rejecting duplicate ids.
func (s *Registry) Add(room *Room) *ActionError {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[room.ID]; exists {
		return errRoomExists
	}
	s.rooms[room.ID] = room
	return nil
}

// Get retrieves a room if it exists.
func (s *Registry) Get(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

// Delete removes a room from the registry.
func (s *Registry) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// Len returns the number of live rooms.
func (s *Registry) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// FindByConnection returns the room whose roster contains the given
// connection id. A connection is in at most one room.
func (s *Registry) FindByConnection(connID uuid.UUID) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range s.rooms {
		room.Mu.Lock()
		found := room.findPlayer(connID) != nil
		room.Mu.Unlock()
		if found {
			return room
		}
	}
	return nil
}

// Sweep deletes every room with an empty roster and returns how many
// were removed.
func (s *Registry) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, room := range s.rooms {
		room.Mu.Lock()
		empty := len(room.Players) == 0
		room.Mu.Unlock()
		if empty {
			delete(s.rooms, id)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps on a fixed interval until the context is
// cancelled. Run it on its own goroutine.
func (s *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				s.log.WithFields(logrus.Fields{
					"removed": removed,
					"total":   s.Len(),
				}).Info("Cleaned up empty rooms")
			}
		}
	}
}
