package interfaces

import (
	"github.com/DeafWorld/story-clash/internal/game"
	"github.com/DeafWorld/story-clash/internal/types"
)

// RoomService defines the interface for room operations
type RoomService interface {
	CreateRoom(hostName string) (*types.RoomView, *types.Player, error)
	JoinRoom(code, name string) (*types.RoomView, *types.Player, error)
	RoomView(code string) (*types.RoomView, error)
	Recap(code string) (*types.RecapPayload, error)
	ConnectPlayer(code, playerID string) (*types.RoomView, bool, error)
	DisconnectPlayer(code, playerID string) (*types.RoomView, error)
	StartGame(code, playerID string) (*game.StartResult, error)
	RecordMinigameScore(code, playerID string, round, score int) (*game.MinigameResult, error)
	MinigameSpin(code, playerID string) (*game.MinigameResult, error)
	SelectGenre(code, playerID string, genre types.GenreID) (*game.GenreResult, error)
	SceneReady(code, playerID string) (*game.SceneReadyResult, error)
	SubmitChoice(code, playerID, choiceID, freeText string) (*game.TurnResult, error)
	RestartSession(code, playerID string) (*types.RoomView, error)
}

