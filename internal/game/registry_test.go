// internal/game/registry_test.go
package game

import (
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/pauloqueiros/codinomes/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRegistry(logger)
}

func TestRegistryAddRejectsDuplicates(t *testing.T) {
	reg := newTestRegistry()
	room := NewRoom("party", &models.Player{ID: uuid.New(), Username: "alice"})

	require.Nil(t, reg.Add(room))
	err := reg.Add(NewRoom("party", &models.Player{ID: uuid.New(), Username: "bob"}))
	require.NotNil(t, err)
	assert.Equal(t, KindRoomExists, err.Kind)

	got, ok := reg.Get("party")
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestRegistryGetMissing(t *testing.T) {
	reg := newTestRegistry()
	_, ok := reg.Get("nope")
	assert.False(t, ok)
}

func TestRegistryDelete(t *testing.T) {
	reg := newTestRegistry()
	require.Nil(t, reg.Add(NewRoom("party", &models.Player{ID: uuid.New(), Username: "alice"})))
	reg.Delete("party")
	_, ok := reg.Get("party")
	assert.False(t, ok)
	assert.Zero(t, reg.Len())
}

func TestRegistryFindByConnection(t *testing.T) {
	reg := newTestRegistry()
	conn := uuid.New()
	room := NewRoom("party", &models.Player{ID: conn, Username: "alice"})
	require.Nil(t, reg.Add(room))
	require.Nil(t, reg.Add(NewRoom("other", &models.Player{ID: uuid.New(), Username: "bob"})))

	assert.Same(t, room, reg.FindByConnection(conn))
	assert.Nil(t, reg.FindByConnection(uuid.New()))
}

func TestRegistrySweepRemovesOnlyEmptyRooms(t *testing.T) {
	reg := newTestRegistry()
	occupied := NewRoom("occupied", &models.Player{ID: uuid.New(), Username: "alice"})
	require.Nil(t, reg.Add(occupied))

	empty := NewRoom("empty", &models.Player{ID: uuid.New(), Username: "bob"})
	empty.removePlayer(empty.Players[0].ID)
	require.Nil(t, reg.Add(empty))

	assert.Equal(t, 1, reg.Sweep())
	_, ok := reg.Get("empty")
	assert.False(t, ok)
	_, ok = reg.Get("occupied")
	assert.True(t, ok)
}
