package gateway

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/DeafWorld/story-clash/internal/game"
	"github.com/DeafWorld/story-clash/internal/types"
)

// dispatch routes one validated envelope to its room operation. Operation
// errors go back to the offending connection only; state changes fan out to
// the whole room.
func (g *Gateway) dispatch(c *client, env types.ClientEnvelope) {
	var err error
	switch env.Event {
	case types.EventJoinRoom:
		err = g.handleJoinRoom(c, env)
	case types.EventLeaveRoom:
		err = g.handleLeaveRoom(c, env)
	case types.EventStartGame:
		err = g.handleStartGame(c, env)
	case types.EventMinigameScore:
		err = g.handleMinigameScore(c, env)
	case types.EventMinigameSpin:
		err = g.handleMinigameSpin(c, env)
	case types.EventGenreSelected:
		err = g.handleGenreSelected(c, env)
	case types.EventSceneReady:
		err = g.handleSceneReady(c, env)
	case types.EventSubmitChoice:
		err = g.handleSubmitChoice(c, env)
	case types.EventRestartSession:
		err = g.handleRestartSession(c, env)
	default:
		c.sendError(env.ID, string(game.ErrValidation), "unknown event")
		return
	}

	if err != nil {
		kind := game.KindOf(err)
		if kind == game.ErrBusy {
			g.logger.Debug("Room busy",
				zap.String("code", c.code),
				zap.String("event", env.Event))
		}
		c.sendError(env.ID, string(kind), err.Error())
	}
}

func decodePayload[T any](env types.ClientEnvelope) (T, error) {
	var payload T
	if len(env.Data) == 0 {
		return payload, game.NewValidationError("missing payload")
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return payload, game.NewValidationError("malformed payload")
	}
	return payload, nil
}

func (g *Gateway) handleJoinRoom(c *client, env types.ClientEnvelope) error {
	payload, err := decodePayload[types.JoinRoomPayload](env)
	if err != nil {
		return err
	}
	view, fresh, err := g.rooms.ConnectPlayer(c.code, payload.PlayerID)
	if err != nil {
		return err
	}
	c.bindPlayer(payload.PlayerID)

	if fresh {
		g.broadcast(c.code, types.ServerEnvelope{
			Event: types.EventPlayerJoined,
			Data: types.PlayerJoinedPayload{
				PlayerID:   payload.PlayerID,
				PlayerName: playerNameFromView(view, payload.PlayerID),
			},
			ID: env.ID,
		})
	}
	g.broadcast(c.code, types.ServerEnvelope{Event: types.EventRoomUpdated, Data: view, ID: env.ID})
	c.sendEnvelope(types.ServerEnvelope{Event: types.EventReconnectState, Data: view, ID: env.ID})
	return nil
}

func (g *Gateway) handleLeaveRoom(c *client, env types.ClientEnvelope) error {
	payload, err := decodePayload[types.LeaveRoomPayload](env)
	if err != nil {
		return err
	}
	view, err := g.rooms.DisconnectPlayer(c.code, payload.PlayerID)
	if err != nil {
		return err
	}
	g.broadcast(c.code, types.ServerEnvelope{
		Event: types.EventPlayerLeft,
		Data:  types.PlayerLeftPayload{PlayerID: payload.PlayerID},
		ID:    env.ID,
	})
	g.broadcast(c.code, types.ServerEnvelope{Event: types.EventRoomUpdated, Data: view, ID: env.ID})
	return nil
}

func (g *Gateway) handleStartGame(c *client, env types.ClientEnvelope) error {
	payload, err := decodePayload[types.StartGamePayload](env)
	if err != nil {
		return err
	}
	result, err := g.rooms.StartGame(c.code, payload.PlayerID)
	if err != nil {
		return err
	}
	g.broadcast(c.code, types.ServerEnvelope{Event: types.EventGameStarted, Data: result.View, ID: env.ID})
	g.broadcast(c.code, types.ServerEnvelope{
		Event: types.EventMinigameStart,
		Data: types.MinigameStartPayload{
			StartAt: result.StartAt.UnixMilli(),
			Rounds:  g.rooms.MinigameRounds(),
		},
		ID: env.ID,
	})
	return nil
}

func (g *Gateway) handleMinigameScore(c *client, env types.ClientEnvelope) error {
	payload, err := decodePayload[types.MinigameScorePayload](env)
	if err != nil {
		return err
	}
	result, err := g.rooms.RecordMinigameScore(c.code, payload.PlayerID, payload.Round, payload.Score)
	if err != nil {
		return err
	}
	g.broadcast(c.code, types.ServerEnvelope{Event: types.EventRoomUpdated, Data: result.View, ID: env.ID})
	if result.Ready {
		g.broadcastMinigameComplete(c.code, result, env.ID)
	}
	return nil
}

func (g *Gateway) handleMinigameSpin(c *client, env types.ClientEnvelope) error {
	payload, err := decodePayload[types.MinigameSpinPayload](env)
	if err != nil {
		return err
	}
	result, err := g.rooms.MinigameSpin(c.code, payload.PlayerID)
	if err != nil {
		return err
	}
	g.broadcastMinigameComplete(c.code, result, env.ID)
	return nil
}

func (g *Gateway) broadcastMinigameComplete(code string, result *game.MinigameResult, id string) {
	g.broadcast(code, types.ServerEnvelope{
		Event: types.EventMinigameComplete,
		Data: types.MinigameOutcomePayload{
			Players:  result.Leaderboard,
			TieBreak: result.TieBreak,
			WinnerID: result.WinnerID,
		},
		ID: id,
	})
}

func (g *Gateway) handleGenreSelected(c *client, env types.ClientEnvelope) error {
	payload, err := decodePayload[types.GenreSelectedPayload](env)
	if err != nil {
		return err
	}
	result, err := g.rooms.SelectGenre(c.code, payload.PlayerID, payload.Genre)
	if err != nil {
		return err
	}
	g.broadcast(c.code, types.ServerEnvelope{
		Event: types.EventGenreSelected,
		Data:  types.GenreSelectedPayload{PlayerID: payload.PlayerID, Genre: result.Genre},
		ID:    env.ID,
	})
	g.broadcast(c.code, types.ServerEnvelope{Event: types.EventSceneUpdate, Data: result.View, ID: env.ID})
	g.broadcast(c.code, types.ServerEnvelope{Event: types.EventNarratorUpdate, Data: result.Narration, ID: env.ID})
	return nil
}

func (g *Gateway) handleSceneReady(c *client, env types.ClientEnvelope) error {
	payload, err := decodePayload[types.SceneReadyPayload](env)
	if err != nil {
		return err
	}
	result, err := g.rooms.SceneReady(c.code, payload.PlayerID)
	if err != nil {
		return err
	}
	g.broadcast(c.code, types.ServerEnvelope{Event: types.EventRoomUpdated, Data: result.View, ID: env.ID})
	return nil
}

func (g *Gateway) handleSubmitChoice(c *client, env types.ClientEnvelope) error {
	payload, err := decodePayload[types.SubmitChoicePayload](env)
	if err != nil {
		return err
	}
	result, err := g.rooms.SubmitChoice(c.code, payload.PlayerID, payload.ChoiceID, payload.FreeText)
	if err != nil {
		return err
	}

	for _, line := range result.Narration {
		g.broadcast(c.code, types.ServerEnvelope{Event: types.EventNarratorUpdate, Data: line, ID: env.ID})
	}
	if result.Ended {
		g.broadcast(c.code, types.ServerEnvelope{
			Event: types.EventGameEnd,
			Data: types.GameEndPayload{
				EndingScene: result.EndingScene,
				EndingType:  result.EndingType,
				History:     result.View.History,
			},
			ID: env.ID,
		})
		g.broadcast(c.code, types.ServerEnvelope{Event: types.EventRoomUpdated, Data: result.View, ID: env.ID})
		return nil
	}
	g.broadcast(c.code, types.ServerEnvelope{Event: types.EventSceneUpdate, Data: result.View, ID: env.ID})
	return nil
}

func (g *Gateway) handleRestartSession(c *client, env types.ClientEnvelope) error {
	payload, err := decodePayload[types.RestartSessionPayload](env)
	if err != nil {
		return err
	}
	view, err := g.rooms.RestartSession(c.code, payload.PlayerID)
	if err != nil {
		return err
	}
	g.broadcast(c.code, types.ServerEnvelope{Event: types.EventSessionRestarted, Data: view, ID: env.ID})
	g.broadcast(c.code, types.ServerEnvelope{Event: types.EventRoomUpdated, Data: view, ID: env.ID})
	return nil
}

func playerNameFromView(view *types.RoomView, playerID string) string {
	for _, p := range view.Players {
		if p.ID == playerID {
			return p.Name
		}
	}
	return ""
}
