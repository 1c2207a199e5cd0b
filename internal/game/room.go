package game

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/DeafWorld/story-clash/internal/types"
)

// Avatars are handed out in join order and wrap after six players.
var avatars = []string{
	"circle-cyan", "diamond-red", "hex-green",
	"triangle-blue", "square-gold", "ring-white",
}

func newPlayer(name string, isHost bool, orderIndex int) *types.Player {
	return &types.Player{
		ID:         uuid.New().String(),
		Name:       name,
		Avatar:     avatars[orderIndex%len(avatars)],
		IsHost:     isHost,
		OrderIndex: orderIndex,
		Connected:  true,
		Rounds:     []int{},
		JoinedAt:   time.Now(),
	}
}

func findPlayer(room *types.Room, playerID string) *types.Player {
	for _, p := range room.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// ensureHostAssigned promotes the earliest-joined connected player to host
// if no connected host remains.
func ensureHostAssigned(room *types.Room) {
	for _, p := range room.Players {
		if p.IsHost && p.Connected {
			return
		}
	}
	for _, p := range room.Players {
		if p.Connected {
			for _, other := range room.Players {
				other.IsHost = false
			}
			p.IsHost = true
			return
		}
	}
}

func activePlayerID(room *types.Room) string {
	if len(room.TurnOrder) == 0 {
		return ""
	}
	idx := room.ActivePlayerIndex % len(room.TurnOrder)
	return room.TurnOrder[idx]
}

// advanceTurn rotates to the next connected player in turn order. With no
// eligible target the index stays where it is.
func advanceTurn(room *types.Room) {
	if len(room.TurnOrder) == 0 {
		return
	}
	for i := 1; i <= len(room.TurnOrder); i++ {
		idx := (room.ActivePlayerIndex + i) % len(room.TurnOrder)
		p := findPlayer(room, room.TurnOrder[idx])
		if p != nil && p.Connected {
			room.ActivePlayerIndex = idx
			return
		}
	}
}

func connectedPlayerIDs(room *types.Room) []string {
	ids := make([]string, 0, len(room.Players))
	for _, p := range room.Players {
		if p.Connected {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func computeMVP(room *types.Room) types.MVP {
	if len(room.Players) == 0 {
		return types.MVP{Player: "Unknown", Reason: "Nobody stayed for the credits"}
	}

	byScore := make([]*types.Player, len(room.Players))
	copy(byScore, room.Players)
	sort.SliceStable(byScore, func(i, j int) bool {
		return byScore[i].Score > byScore[j].Score
	})
	top := byScore[0]

	switch room.EndingType {
	case types.EndingTriumph:
		return types.MVP{Player: top.Name, Reason: "Made the decisive call that secured victory"}
	case types.EndingSurvival:
		return types.MVP{Player: top.Name, Reason: "Kept the team alive under pressure"}
	}

	name := top.Name
	if len(room.History) > 0 {
		name = room.History[len(room.History)-1].PlayerName
	}
	return types.MVP{Player: name, Reason: "Owned the wildest move in a doomed run"}
}
