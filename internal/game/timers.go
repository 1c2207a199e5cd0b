package game

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DeafWorld/story-clash/internal/types"
)

// timerSet tracks the cancellable timers a room can hold: one turn clock
// per room and one disconnect grace timer per player. Timers always
// re-validate room state when they fire; cancellation is best effort.
type timerSet struct {
	mu    sync.Mutex
	turn  map[string]chan struct{}
	grace map[string]*time.Timer
}

func newTimerSet() *timerSet {
	return &timerSet{
		turn:  make(map[string]chan struct{}),
		grace: make(map[string]*time.Timer),
	}
}

func (t *timerSet) startTurn(code string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.turn[code]; ok {
		close(existing)
	}
	stop := make(chan struct{})
	t.turn[code] = stop
	return stop
}

func (t *timerSet) cancelTurn(code string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if stop, ok := t.turn[code]; ok {
		close(stop)
		delete(t.turn, code)
	}
}

func (t *timerSet) scheduleGrace(code, playerID string, grace time.Duration, fn func()) {
	key := code + ":" + playerID
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.grace[key]; ok {
		existing.Stop()
	}
	t.grace[key] = time.AfterFunc(grace, fn)
}

func (t *timerSet) cancelGrace(code, playerID string) {
	key := code + ":" + playerID
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.grace[key]; ok {
		existing.Stop()
		delete(t.grace, key)
	}
}

// scheduleTurnTimer starts the once-per-second countdown for an open turn
// and forces a timeout when the deadline passes. The goroutine exits when
// the turn resolves, the deadline fires, or the timer is replaced.
func (m *RoomManager) scheduleTurnTimer(code, playerID string, deadline time.Time) {
	stop := m.timers.startTurn(code)

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				remaining := time.Until(deadline)
				if remaining <= 0 {
					m.fireTurnTimeout(code, playerID)
					return
				}
				if m.broadcaster != nil {
					m.broadcaster.BroadcastRoom(code, types.EventTurnTimer, types.TurnTimerPayload{
						PlayerID:    playerID,
						RemainingMS: remaining.Milliseconds(),
					})
				}
			}
		}
	}()
}

// busyRetryDelay is how long a timeout handler waits before retrying after
// colliding with a concurrent mutation holding the room's busy flag.
const busyRetryDelay = 250 * time.Millisecond

// fireTurnTimeout resolves the turn with a random choice if it is still the
// same player's open turn when the deadline lands. A busy collision re-arms
// a retry; the revalidation on the next attempt makes repeats safe.
func (m *RoomManager) fireTurnTimeout(code, playerID string) {
	var result *TurnResult
	err := m.withRoom(code, func(room *types.Room) error {
		if room.Phase != types.PhaseGame || room.TurnState != types.TurnChoicesOpen {
			return newError(ErrInvalidState, "turn already resolved")
		}
		if activePlayerID(room) != playerID {
			return newError(ErrInvalidState, "turn already rotated")
		}
		if room.TurnDeadline == nil || time.Now().Before(*room.TurnDeadline) {
			return newError(ErrInvalidState, "deadline not reached")
		}
		var err error
		result, err = m.resolveTurn(room, playerID, "", "", true)
		return err
	})
	if err != nil {
		kind := KindOf(err)
		if kind == ErrBusy {
			time.AfterFunc(busyRetryDelay, func() { m.fireTurnTimeout(code, playerID) })
			return
		}
		if kind != ErrInvalidState && kind != ErrNotFound {
			m.Logger.Error("Turn timeout failed", zap.String("code", code), zap.Error(err))
		}
		return
	}
	m.broadcastTurnResult(code, result, "Random choice made due to timeout.")
}

// forceDisconnectTimeout ends the active player's turn after the grace
// period if they are still gone. It fires even while choices are locked so
// a vanished player cannot stall the readiness gate.
func (m *RoomManager) forceDisconnectTimeout(code, playerID string) {
	var result *TurnResult
	err := m.withRoom(code, func(room *types.Room) error {
		if room.Phase != types.PhaseGame || activePlayerID(room) != playerID {
			return newError(ErrInvalidState, "turn already rotated")
		}
		player := findPlayer(room, playerID)
		if player == nil || player.Connected {
			return newError(ErrInvalidState, "player reconnected")
		}
		if room.TurnState == types.TurnChoicesLocked {
			deadline := time.Now()
			room.TurnState = types.TurnChoicesOpen
			room.TurnDeadline = &deadline
		}
		var err error
		result, err = m.resolveTurn(room, playerID, "", "", true)
		return err
	})
	if err != nil {
		if KindOf(err) == ErrBusy {
			time.AfterFunc(busyRetryDelay, func() { m.forceDisconnectTimeout(code, playerID) })
		}
		return
	}
	m.broadcastTurnResult(code, result, "Random choice made after disconnect.")
}

func (m *RoomManager) broadcastTurnResult(code string, result *TurnResult, message string) {
	if m.broadcaster == nil || result == nil {
		return
	}
	m.broadcaster.BroadcastRoom(code, types.EventTurnTimeout, types.TurnTimeoutPayload{
		PlayerID: result.PlayerID,
		Message:  message,
	})
	for _, line := range result.Narration {
		m.broadcaster.BroadcastRoom(code, types.EventNarratorUpdate, line)
	}
	if result.Ended {
		m.broadcaster.BroadcastRoom(code, types.EventGameEnd, types.GameEndPayload{
			EndingScene: result.EndingScene,
			EndingType:  result.EndingType,
			History:     result.View.History,
		})
		m.broadcaster.BroadcastRoom(code, types.EventRoomUpdated, result.View)
		return
	}
	m.broadcaster.BroadcastRoom(code, types.EventSceneUpdate, result.View)
}

// StartSweeper expires idle rooms once a minute until the context ends.
func (m *RoomManager) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireRooms()
			}
		}
	}()
}

func (m *RoomManager) expireRooms() {
	for _, code := range ExpiredCodes(m.store, time.Now()) {
		if !m.acquire(code) {
			continue
		}
		lock := m.roomLock(code)
		lock.Lock()
		room, ok := m.store.Get(code)
		expired := ok && time.Now().After(room.ExpiresAt)
		if expired {
			m.timers.cancelTurn(code)
			m.store.Delete(code)
		}
		lock.Unlock()
		if expired {
			m.dropLock(code)
			m.Logger.Info("Room expired", zap.String("code", code))
			if m.broadcaster != nil {
				m.broadcaster.CloseRoom(code, "Room expired")
			}
		}
		m.release(code)
	}
}
