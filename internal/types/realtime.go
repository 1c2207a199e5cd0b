package types

import "encoding/json"

// Client-originated event names.
const (
	EventJoinRoom       = "join_room"
	EventLeaveRoom      = "leave_room"
	EventStartGame      = "start_game"
	EventMinigameScore  = "minigame_score"
	EventMinigameSpin   = "minigame_spin"
	EventGenreSelected  = "genre_selected"
	EventSceneReady     = "scene_ready"
	EventSubmitChoice   = "submit_choice"
	EventRestartSession = "restart_session"
)

// Server-originated event names.
const (
	EventRoomUpdated      = "room_updated"
	EventSceneUpdate      = "scene_update"
	EventReconnectState   = "reconnect_state"
	EventNarratorUpdate   = "narrator_update"
	EventTurnTimer        = "turn_timer"
	EventTurnTimeout      = "turn_timeout"
	EventGameStarted      = "game_started"
	EventMinigameStart    = "minigame_start"
	EventMinigameComplete = "minigame_complete"
	EventGameEnd          = "game_end"
	EventSessionRestarted = "session_restarted"
	EventPlayerJoined     = "player_joined"
	EventPlayerLeft       = "player_left"
	EventServerError      = "server_error"
)

// ClientEnvelope frames a client-originated message. Data is decoded per
// event once the envelope itself validates.
type ClientEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	ID    string          `json:"id,omitempty"`
}

// ServerEnvelope frames a server-originated message. The ID, when present,
// echoes the client action that produced it.
type ServerEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
	ID    string `json:"id,omitempty"`
}

// JoinRoomPayload attaches a connection to a known player.
type JoinRoomPayload struct {
	PlayerID string `json:"playerId"`
}

// LeaveRoomPayload detaches a player without closing the socket.
type LeaveRoomPayload struct {
	PlayerID string `json:"playerId"`
}

// StartGamePayload begins the session (host only).
type StartGamePayload struct {
	PlayerID string `json:"playerId"`
}

// MinigameScorePayload records one mini-game round score.
type MinigameScorePayload struct {
	PlayerID string `json:"playerId"`
	Round    int    `json:"round"`
	Score    int    `json:"score"`
}

// MinigameSpinPayload requests a deterministic tie-break spin.
type MinigameSpinPayload struct {
	PlayerID string `json:"playerId"`
}

// GenreSelectedPayload picks the story flavor (Story Master only).
type GenreSelectedPayload struct {
	PlayerID string  `json:"playerId"`
	Genre    GenreID `json:"genre"`
}

// SceneReadyPayload signals the player has seen the current scene.
type SceneReadyPayload struct {
	PlayerID string `json:"playerId"`
}

// SubmitChoicePayload resolves the active player's turn.
type SubmitChoicePayload struct {
	PlayerID string `json:"playerId"`
	ChoiceID string `json:"choiceId,omitempty"`
	FreeText string `json:"freeText,omitempty"`
}

// RestartSessionPayload returns the room to the lobby.
type RestartSessionPayload struct {
	PlayerID string `json:"playerId"`
}

// TurnTimerPayload is the once-per-second countdown tick.
type TurnTimerPayload struct {
	PlayerID    string `json:"playerId"`
	RemainingMS int64  `json:"remainingMs"`
}

// TurnTimeoutPayload announces an auto-resolved turn.
type TurnTimeoutPayload struct {
	PlayerID string `json:"playerId"`
	Message  string `json:"message"`
}

// ServerErrorPayload is sent only to the offending connection.
type ServerErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// MinigameStartPayload schedules the client-side mini-game countdown.
type MinigameStartPayload struct {
	StartAt int64 `json:"startAt"`
	Rounds  int   `json:"rounds"`
}

// PlayerJoinedPayload announces a player connecting for the first time.
type PlayerJoinedPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// PlayerLeftPayload announces a disconnect.
type PlayerLeftPayload struct {
	PlayerID string `json:"playerId"`
}

// GameEndPayload closes out the story phase.
type GameEndPayload struct {
	EndingScene *Scene         `json:"endingScene"`
	EndingType  EndingType     `json:"endingType"`
	History     []HistoryEntry `json:"history"`
}

// MinigameOutcomePayload announces the final mini-game standings.
type MinigameOutcomePayload struct {
	Players  []*Player `json:"players"`
	TieBreak bool      `json:"tieBreak"`
	WinnerID string    `json:"winnerId"`
}
