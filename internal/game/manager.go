package game

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DeafWorld/story-clash/config"
	"github.com/DeafWorld/story-clash/internal/stablehash"
	"github.com/DeafWorld/story-clash/internal/story"
	"github.com/DeafWorld/story-clash/internal/types"
)

const maxFreeTextLength = 60

// Broadcaster pushes timer-driven events out to a room's connections. The
// gateway implements it; tests stub it.
type Broadcaster interface {
	BroadcastRoom(code, event string, data any)
	CloseRoom(code, reason string)
}

// RoomManager owns every room aggregate and enforces the per-room mutation
// discipline: at most one mutating operation per room at a time, rejected
// immediately with a busy error rather than queued.
type RoomManager struct {
	cfg      config.Config
	store    RoomStore
	catalog  *story.Catalog
	rift     *RiftEngine
	world    *WorldEngine
	director *Director
	narrator *Narrator
	Logger   *zap.Logger

	mu    sync.Mutex
	busy  map[string]bool
	locks map[string]*sync.Mutex

	timers      *timerSet
	broadcaster Broadcaster
}

// NewRoomManager creates a new room manager
func NewRoomManager(cfg config.Config, store RoomStore, catalog *story.Catalog, generator LineGenerator, logger *zap.Logger) *RoomManager {
	return &RoomManager{
		cfg:      cfg,
		store:    store,
		catalog:  catalog,
		rift:     NewRiftEngine(cfg.Rift),
		world:    NewWorldEngine(),
		director: NewDirector(),
		narrator: NewNarrator(cfg.Narrator, generator),
		Logger:   logger,
		busy:     make(map[string]bool),
		locks:    make(map[string]*sync.Mutex),
		timers:   newTimerSet(),
	}
}

// SetBroadcaster wires the transport fan-out used by timers and expiry.
func (m *RoomManager) SetBroadcaster(b Broadcaster) {
	m.broadcaster = b
}

// MinigameRounds reports how many scoring rounds the mini-game runs.
func (m *RoomManager) MinigameRounds() int {
	return m.cfg.Game.MinigameRounds
}

func (m *RoomManager) acquire(code string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy[code] {
		return false
	}
	m.busy[code] = true
	return true
}

func (m *RoomManager) release(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.busy, code)
}

// roomLock returns the mutex guarding one room's memory. Mutations hold it
// for their whole critical section; snapshot reads hold it only while
// copying, so they never observe a half-applied mutation.
func (m *RoomManager) roomLock(code string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[code]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[code] = lock
	}
	return lock
}

func (m *RoomManager) dropLock(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, code)
}

// withRoom runs one mutating operation under the room's busy lock. A second
// concurrent mutation on the same room fails fast with a busy error. On
// success the sliding TTL is refreshed.
func (m *RoomManager) withRoom(code string, fn func(*types.Room) error) error {
	code = NormalizeRoomCode(code)
	if !ValidRoomCode(code) {
		return newError(ErrValidation, "invalid room code")
	}
	if !m.acquire(code) {
		return newError(ErrBusy, "room is processing another action")
	}
	defer m.release(code)

	lock := m.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, ok := m.store.Get(code)
	if !ok || time.Now().After(room.ExpiresAt) {
		return newError(ErrNotFound, "room not found")
	}

	if err := fn(room); err != nil {
		return err
	}
	room.ExpiresAt = time.Now().Add(m.cfg.Game.RoomTTL())
	m.store.Put(room)
	return nil
}

// snapshotRoom copies the aggregate under its lock. Reads never consult the
// busy set, so they cannot fail with a busy error; they block only for the
// duration of an in-flight mutation.
func (m *RoomManager) snapshotRoom(code string) (*types.Room, error) {
	code = NormalizeRoomCode(code)
	if !ValidRoomCode(code) {
		return nil, newError(ErrNotFound, "room not found")
	}
	lock := m.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, ok := m.store.Get(code)
	if !ok || time.Now().After(room.ExpiresAt) {
		return nil, newError(ErrNotFound, "room not found")
	}
	return room.Clone(), nil
}

// View builds the derived read model from a deep copy of the room, so the
// result can cross into writer goroutines and be marshaled while later
// mutations run. The caller must hold the room's lock.
func (m *RoomManager) View(room *types.Room) *types.RoomView {
	return m.viewOf(room.Clone())
}

// viewOf wraps an already-detached snapshot.
func (m *RoomManager) viewOf(snapshot *types.Room) *types.RoomView {
	return &types.RoomView{
		Room:           snapshot,
		StoryTitle:     m.catalog.Title(snapshot.Genre),
		CurrentScene:   m.currentScene(snapshot),
		ActivePlayerID: activePlayerID(snapshot),
	}
}

func (m *RoomManager) currentScene(room *types.Room) *types.Scene {
	if room.Genre == "" {
		return nil
	}
	return m.catalog.Scene(room.Genre, room.CurrentSceneID)
}

// CreateRoom opens a new lobby with the given host.
func (m *RoomManager) CreateRoom(hostName string) (*types.RoomView, *types.Player, error) {
	if ContainsProfanity(hostName) {
		return nil, nil, newError(ErrValidation, "display name contains blocked language")
	}
	name := SanitizeName(hostName)
	host := newPlayer(name, true, 0)

	now := time.Now()
	room := &types.Room{
		ID:             uuid.New().String(),
		CreatedAt:      now,
		ExpiresAt:      now.Add(m.cfg.Game.RoomTTL()),
		Phase:          types.PhaseLobby,
		Players:        []*types.Player{host},
		TurnOrder:      []string{},
		CurrentSceneID: "start",
		TensionLevel:   1,
		History:        []types.HistoryEntry{},
		TurnState:      types.TurnChoicesLocked,
		ReadyPlayers:   map[string]bool{},
		GenrePower:     InitialGenrePower(),
		World:          NewWorldState(),
	}

	// Claiming the code and storing the room happen under the manager lock
	// so two concurrent creates cannot win the same code.
	m.mu.Lock()
	for i := 0; i < 64 && room.Code == ""; i++ {
		candidate := NewRoomCode()
		if _, taken := m.store.Get(candidate); !taken {
			room.Code = candidate
			m.store.Put(room)
		}
	}
	m.mu.Unlock()
	if room.Code == "" {
		return nil, nil, newError(ErrInvalidState, "could not allocate a room code")
	}
	code := room.Code

	lock := m.roomLock(code)
	lock.Lock()
	view := m.View(room)
	hostSnapshot := host.Clone()
	lock.Unlock()

	m.Logger.Info("Room created",
		zap.String("code", code),
		zap.String("host_id", host.ID),
		zap.String("host_name", host.Name))
	return view, hostSnapshot, nil
}

// JoinRoom adds a player to a lobby. Blocked display names are rejected
// outright rather than masked.
func (m *RoomManager) JoinRoom(code, name string) (*types.RoomView, *types.Player, error) {
	if ContainsProfanity(name) {
		return nil, nil, newError(ErrValidation, "display name contains blocked language")
	}

	var view *types.RoomView
	var player *types.Player
	err := m.withRoom(code, func(room *types.Room) error {
		if room.Phase != types.PhaseLobby {
			return newError(ErrInvalidState, "game already in progress")
		}
		if len(room.Players) >= m.cfg.Game.MaxPlayers {
			return newError(ErrInvalidState, "room is full")
		}
		joined := newPlayer(UniqueName(SanitizeName(name), room.Players), false, len(room.Players))
		room.Players = append(room.Players, joined)
		view = m.View(room)
		player = joined.Clone()
		m.Logger.Info("Player joined room",
			zap.String("code", room.Code),
			zap.String("player_id", joined.ID),
			zap.String("player_name", joined.Name))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return view, player, nil
}

// RoomView returns the current read model without touching the busy set.
func (m *RoomManager) RoomView(code string) (*types.RoomView, error) {
	snapshot, err := m.snapshotRoom(code)
	if err != nil {
		return nil, err
	}
	return m.viewOf(snapshot), nil
}

// Recap returns the session summary once the story ended.
func (m *RoomManager) Recap(code string) (*types.RecapPayload, error) {
	snapshot, err := m.snapshotRoom(code)
	if err != nil {
		return nil, err
	}
	if snapshot.Phase != types.PhaseRecap || snapshot.EndingScene == nil {
		return nil, newError(ErrInvalidState, "recap is not ready")
	}
	return &types.RecapPayload{
		EndingScene: snapshot.EndingScene,
		EndingType:  snapshot.EndingType,
		History:     snapshot.History,
		MVP:         computeMVP(snapshot),
		Genre:       snapshot.Genre,
		StoryTitle:  m.catalog.Title(snapshot.Genre),
	}, nil
}

// ConnectPlayer marks a player connected. The bool reports whether this is a
// fresh connection rather than a duplicate socket.
func (m *RoomManager) ConnectPlayer(code, playerID string) (*types.RoomView, bool, error) {
	var view *types.RoomView
	var fresh bool
	err := m.withRoom(code, func(room *types.Room) error {
		player := findPlayer(room, playerID)
		if player == nil {
			return newError(ErrNotFound, "player not found")
		}
		fresh = !player.Connected
		player.Connected = true
		ensureHostAssigned(room)
		m.timers.cancelGrace(room.Code, playerID)
		view = m.View(room)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return view, fresh, nil
}

// DisconnectPlayer marks a player disconnected. If they held the active turn
// during the story phase, a grace timer is armed before the turn is forced.
// A disconnect can also shrink the readiness gate to completion, so the
// unlock check reruns here.
func (m *RoomManager) DisconnectPlayer(code, playerID string) (*types.RoomView, error) {
	var view *types.RoomView
	err := m.withRoom(code, func(room *types.Room) error {
		player := findPlayer(room, playerID)
		if player == nil {
			return newError(ErrNotFound, "player not found")
		}
		player.Connected = false
		ensureHostAssigned(room)
		m.maybeOpenChoices(room)
		view = m.View(room)

		if room.Phase == types.PhaseGame && activePlayerID(room) == playerID {
			m.timers.scheduleGrace(room.Code, playerID, m.cfg.Game.DisconnectGrace(), func() {
				m.forceDisconnectTimeout(room.Code, playerID)
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// StartResult carries the host's game start acknowledgement.
type StartResult struct {
	StartAt time.Time
	View    *types.RoomView
}

// StartGame moves a lobby into the mini-game phase. Host only.
func (m *RoomManager) StartGame(code, playerID string) (*StartResult, error) {
	var result *StartResult
	err := m.withRoom(code, func(room *types.Room) error {
		if room.Phase != types.PhaseLobby {
			return newError(ErrInvalidState, "game already started")
		}
		player := findPlayer(room, playerID)
		if player == nil {
			return newError(ErrNotFound, "player not found")
		}
		if !player.IsHost {
			return newError(ErrForbidden, "only the host can start the game")
		}
		if len(room.Players) < m.cfg.Game.MinPlayers {
			return newError(ErrValidation, "need at least %d players", m.cfg.Game.MinPlayers)
		}

		room.Phase = types.PhaseMinigame
		for _, p := range room.Players {
			p.Score = 0
			p.Rounds = []int{}
		}
		room.TurnOrder = []string{}
		room.ActivePlayerIndex = 0
		room.TurnDeadline = nil

		result = &StartResult{StartAt: time.Now().Add(1200 * time.Millisecond), View: m.View(room)}
		m.Logger.Info("Game started", zap.String("code", room.Code), zap.Int("players", len(room.Players)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MinigameResult reports mini-game progress. Ready flips once every player
// has a score for every round.
type MinigameResult struct {
	Ready       bool
	Leaderboard []*types.Player
	TieBreak    bool
	WinnerID    string
	View        *types.RoomView
}

// RecordMinigameScore stores one player's round score and, once all scores
// are in, freezes the turn order from the leaderboard.
func (m *RoomManager) RecordMinigameScore(code, playerID string, round, score int) (*MinigameResult, error) {
	var result *MinigameResult
	err := m.withRoom(code, func(room *types.Room) error {
		if room.Phase != types.PhaseMinigame {
			return newError(ErrInvalidState, "minigame is not active")
		}
		player := findPlayer(room, playerID)
		if player == nil {
			return newError(ErrNotFound, "player not found")
		}
		if round < 1 || round > m.cfg.Game.MinigameRounds {
			return newError(ErrValidation, "invalid round")
		}

		for len(player.Rounds) < m.cfg.Game.MinigameRounds {
			player.Rounds = append(player.Rounds, -1)
		}
		if score < 0 {
			score = 0
		}
		player.Rounds[round-1] = score
		player.Score = 0
		for _, v := range player.Rounds {
			if v > 0 {
				player.Score += v
			}
		}

		complete := true
		for _, p := range room.Players {
			if len(p.Rounds) < m.cfg.Game.MinigameRounds {
				complete = false
				break
			}
			for _, v := range p.Rounds {
				if v < 0 {
					complete = false
					break
				}
			}
		}
		if !complete {
			result = &MinigameResult{Ready: false, View: m.View(room)}
			return nil
		}

		result = m.finalizeMinigame(room, "")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// finalizeMinigame freezes the turn order from scores. When the top score is
// tied, the winner among the tied contenders is decided by a stable hash of
// the room code and contender ids, so every spin replays identically.
func (m *RoomManager) finalizeMinigame(room *types.Room, _ string) *MinigameResult {
	leaderboard := make([]*types.Player, len(room.Players))
	copy(leaderboard, room.Players)
	sortPlayersByScore(leaderboard)

	tie := len(leaderboard) > 1 && leaderboard[0].Score == leaderboard[1].Score
	if tie {
		var contenders []*types.Player
		for _, p := range leaderboard {
			if p.Score == leaderboard[0].Score {
				contenders = append(contenders, p)
			}
		}
		ids := make([]string, len(contenders))
		for i, p := range contenders {
			ids[i] = p.ID
		}
		winner := contenders[stablehash.Pick(len(contenders), room.Code+":spin:"+strings.Join(ids, ","))]
		reordered := []*types.Player{winner}
		for _, p := range leaderboard {
			if p.ID != winner.ID {
				reordered = append(reordered, p)
			}
		}
		leaderboard = reordered
	}

	room.TurnOrder = make([]string, len(leaderboard))
	for i, p := range leaderboard {
		room.TurnOrder[i] = p.ID
		p.OrderIndex = i
	}
	room.ActivePlayerIndex = 0

	// The announced standings are detached copies, like every other payload
	// that leaves the room lock.
	standings := make([]*types.Player, len(leaderboard))
	for i, p := range leaderboard {
		standings[i] = p.Clone()
	}

	return &MinigameResult{
		Ready:       true,
		Leaderboard: standings,
		TieBreak:    tie,
		WinnerID:    room.TurnOrder[0],
		View:        m.View(room),
	}
}

// MinigameSpin replays the deterministic tie-break and re-announces the
// standings. It is only valid once every score is in.
func (m *RoomManager) MinigameSpin(code, playerID string) (*MinigameResult, error) {
	var result *MinigameResult
	err := m.withRoom(code, func(room *types.Room) error {
		if room.Phase != types.PhaseMinigame {
			return newError(ErrInvalidState, "minigame is not active")
		}
		if findPlayer(room, playerID) == nil {
			return newError(ErrNotFound, "player not found")
		}
		if len(room.TurnOrder) == 0 {
			return newError(ErrInvalidState, "minigame scores are not complete")
		}
		result = m.finalizeMinigame(room, playerID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GenreResult is the story kick-off after the Story Master picks a flavor.
type GenreResult struct {
	Genre     types.GenreID
	Scene     *types.Scene
	Directed  *types.DirectedScene
	Narration types.NarrationLine
	View      *types.RoomView
}

// SelectGenre starts the story phase. Only the mini-game winner, first in
// turn order, may choose.
func (m *RoomManager) SelectGenre(code, playerID string, genre types.GenreID) (*GenreResult, error) {
	var result *GenreResult
	err := m.withRoom(code, func(room *types.Room) error {
		if room.Phase != types.PhaseMinigame {
			return newError(ErrInvalidState, "minigame is not complete")
		}
		if len(room.TurnOrder) == 0 {
			return newError(ErrInvalidState, "minigame scores are not complete")
		}
		if m.catalog.Story(genre) == nil {
			return newError(ErrValidation, "invalid genre")
		}
		if room.TurnOrder[0] != playerID {
			return newError(ErrForbidden, "only the story master can choose a genre")
		}

		startScene := m.catalog.StartScene(genre)
		room.Genre = genre
		room.Phase = types.PhaseGame
		room.History = []types.HistoryEntry{}
		room.EndingScene = nil
		room.EndingType = ""
		room.ActivePlayerIndex = 0
		room.CurrentSceneID = startScene.ID
		room.TensionLevel = startScene.TensionLevel
		room.GenrePower = BoostedGenrePower(genre)
		room.ChaosLevel = ComputeChaosLevel(room.GenrePower, genre, startScene.TensionLevel, false, 0)
		room.RiftHistory = nil
		room.NarrativeThreads = nil
		room.ActiveThreadID = ""
		room.DirectorTimeline = nil
		room.TurnState = types.TurnChoicesLocked
		room.ReadyPlayers = map[string]bool{}
		room.TurnDeadline = nil

		directed := m.director.Direct(room, startScene, 0)
		appendWorldTimeline(room.World, directed.Events)

		result = &GenreResult{
			Genre:    genre,
			Scene:    startScene,
			Directed: directed.Scene,
			Narration: m.narrator.Narrate(NarrationContext{
				Code:       room.Code,
				Trigger:    types.TriggerSceneEnter,
				Genre:      genre,
				SceneID:    startScene.ID,
				Tension:    startScene.TensionLevel,
				PlayerID:   activePlayerID(room),
				PlayerName: playerName(room, activePlayerID(room)),
			}),
			View: m.View(room),
		}
		m.Logger.Info("Genre selected",
			zap.String("code", room.Code),
			zap.String("genre", string(genre)),
			zap.String("story_master", playerID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SceneReadyResult reports readiness progress and, once everyone is ready,
// the opened turn deadline.
type SceneReadyResult struct {
	Unlocked       bool
	ActivePlayerID string
	TurnDeadline   *time.Time
	View           *types.RoomView
}

// SceneReady records one player's readiness for the current scene. Choices
// unlock, and the turn clock starts, once every connected player is ready.
func (m *RoomManager) SceneReady(code, playerID string) (*SceneReadyResult, error) {
	var result *SceneReadyResult
	err := m.withRoom(code, func(room *types.Room) error {
		if room.Phase != types.PhaseGame {
			return newError(ErrInvalidState, "game is not active")
		}
		if findPlayer(room, playerID) == nil {
			return newError(ErrNotFound, "player not found")
		}
		if room.TurnState == types.TurnChoicesOpen {
			result = &SceneReadyResult{
				Unlocked:       true,
				ActivePlayerID: activePlayerID(room),
				TurnDeadline:   room.TurnDeadline,
				View:           m.View(room),
			}
			return nil
		}
		if room.TurnState != types.TurnChoicesLocked {
			return newError(ErrInvalidState, "scene is not awaiting readiness")
		}

		if room.ReadyPlayers == nil {
			room.ReadyPlayers = map[string]bool{}
		}
		room.ReadyPlayers[playerID] = true

		if !m.maybeOpenChoices(room) {
			result = &SceneReadyResult{Unlocked: false, View: m.View(room)}
			return nil
		}

		result = &SceneReadyResult{
			Unlocked:       true,
			ActivePlayerID: activePlayerID(room),
			TurnDeadline:   room.TurnDeadline,
			View:           m.View(room),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// maybeOpenChoices opens the turn clock once every connected player is
// ready. It runs from SceneReady and after disconnects, so a vanished
// holdout cannot stall the gate.
func (m *RoomManager) maybeOpenChoices(room *types.Room) bool {
	if room.Phase != types.PhaseGame || room.TurnState != types.TurnChoicesLocked {
		return false
	}
	connected := connectedPlayerIDs(room)
	if len(connected) == 0 {
		return false
	}
	for _, id := range connected {
		if !room.ReadyPlayers[id] {
			return false
		}
	}

	deadline := time.Now().Add(m.cfg.Game.TurnDuration())
	room.TurnState = types.TurnChoicesOpen
	room.TurnDeadline = &deadline
	m.scheduleTurnTimer(room.Code, activePlayerID(room), deadline)
	return true
}

// TurnResult is everything one resolved turn produced.
type TurnResult struct {
	Ended          bool
	Timeout        bool
	PlayerID       string
	NextScene      *types.Scene
	Directed       *types.DirectedScene
	RiftEvent      *types.RiftEventRecord
	Narration      []types.NarrationLine
	ActivePlayerID string
	TurnDeadline   *time.Time
	EndingScene    *types.Scene
	EndingType     types.EndingType
	View           *types.RoomView
}

// SubmitChoice resolves the active player's turn.
func (m *RoomManager) SubmitChoice(code, playerID, choiceID, freeText string) (*TurnResult, error) {
	var result *TurnResult
	err := m.withRoom(code, func(room *types.Room) error {
		var err error
		result, err = m.resolveTurn(room, playerID, choiceID, freeText, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveTurn is the single path for player submissions and forced
// timeouts. The caller holds the room's busy lock.
func (m *RoomManager) resolveTurn(room *types.Room, playerID, choiceID, freeText string, timeout bool) (*TurnResult, error) {
	if room.Phase != types.PhaseGame {
		return nil, newError(ErrInvalidState, "game is not active")
	}
	if room.TurnState != types.TurnChoicesOpen {
		return nil, newError(ErrInvalidState, "choices are locked")
	}
	if activePlayerID(room) != playerID {
		return nil, newError(ErrNotYourTurn, "not your turn")
	}
	player := findPlayer(room, playerID)
	if player == nil {
		return nil, newError(ErrNotFound, "player not found")
	}
	scene := m.currentScene(room)
	if scene == nil || len(scene.Choices) == 0 {
		return nil, newError(ErrInvalidState, "scene has no choices")
	}

	choice := scene.Choices[0]
	label := choice.Label
	nextSceneID := choice.NextID
	freeChoice := false

	switch {
	case strings.TrimSpace(freeText) != "":
		trimmed := strings.TrimSpace(freeText)
		if ContainsProfanity(trimmed) {
			return nil, newError(ErrValidation, "free choice contains blocked language")
		}
		if len(trimmed) > maxFreeTextLength {
			trimmed = trimmed[:maxFreeTextLength]
		}
		freeChoice = true
		label = trimmed
		nextSceneID = story.FreeChoiceNextID(scene, trimmed)
	case timeout:
		picked := scene.Choices[rand.Intn(len(scene.Choices))]
		label = picked.Label
		nextSceneID = picked.NextID
		choice = picked
	default:
		picked := story.ChoiceByID(scene, choiceID)
		label = picked.Label
		nextSceneID = picked.NextID
		choice = *picked
	}

	step := len(room.History) + 1
	profile := AnalyzeChoice(scene.Text, label, timeout)

	rift := m.rift.Evaluate(RiftInput{
		RoomCode:    room.Code,
		Genre:       room.Genre,
		Step:        step,
		Scene:       scene,
		ChoiceID:    choice.ID,
		ChoiceLabel: label,
		NextSceneID: nextSceneID,
		PlayerID:    playerID,
		Timeout:     timeout,
		Risky:       profile.Risky,
	}, room.GenrePower, scene.TensionLevel)

	nextSceneID = rift.NextSceneID
	room.GenrePower = rift.GenrePower
	room.ChaosLevel = rift.ChaosLevel
	if rift.Event != nil {
		room.RiftHistory = append(room.RiftHistory, *rift.Event)
		if len(room.RiftHistory) > m.cfg.Rift.HistoryLimit {
			room.RiftHistory = room.RiftHistory[len(room.RiftHistory)-m.cfg.Rift.HistoryLimit:]
		}
		appendWorldTimeline(room.World, []types.WorldEvent{RiftWorldEvent(rift.Event)})
	}

	nextScene := m.catalog.Scene(room.Genre, nextSceneID)
	if nextScene == nil {
		return nil, newError(ErrInvalidState, "next scene not found")
	}

	entry := types.HistoryEntry{
		SceneID:      scene.ID,
		SceneText:    scene.Text,
		PlayerID:     playerID,
		PlayerName:   player.Name,
		ChoiceLabel:  label,
		IsFreeChoice: freeChoice,
		NextSceneID:  nextSceneID,
		TensionLevel: scene.TensionLevel,
		Timeout:      timeout,
		Timestamp:    time.Now(),
	}
	if freeChoice {
		entry.FreeText = label
	}
	room.History = append(room.History, entry)

	endingType := types.EndingType("")
	if nextScene.Ending {
		endingType = nextScene.EndingType
		if endingType == "" {
			endingType = types.EndingDoom
		}
	}

	evolved := m.world.Evolve(room.World, room.NarrativeThreads, EvolveInput{
		RoomCode:    room.Code,
		Step:        len(room.History),
		Scene:       scene,
		ChoiceLabel: label,
		Tension:     scene.TensionLevel,
		ChaosLevel:  room.ChaosLevel,
		Timeout:     timeout,
		Profile:     profile,
		EndingType:  endingType,
	})
	room.NarrativeThreads = evolved.Threads
	room.ActiveThreadID = evolved.ActiveThreadID
	room.ChaosLevel = evolved.ChaosLevel

	m.timers.cancelTurn(room.Code)

	trigger := types.TriggerChoiceSubmitted
	if timeout {
		trigger = types.TriggerTurnTimeout
	}
	narration := []types.NarrationLine{m.narrator.Narrate(NarrationContext{
		Code:        room.Code,
		Trigger:     trigger,
		Genre:       room.Genre,
		SceneID:     scene.ID,
		HistoryLen:  len(room.History),
		Tension:     scene.TensionLevel,
		PlayerID:    playerID,
		PlayerName:  player.Name,
		ChoiceLabel: label,
		FreeText:    entry.FreeText,
	})}

	room.CurrentSceneID = nextScene.ID
	room.TensionLevel = nextScene.TensionLevel

	if nextScene.Ending {
		room.Phase = types.PhaseRecap
		room.EndingScene = nextScene
		room.EndingType = endingType
		room.TurnState = types.TurnEnded
		room.TurnDeadline = nil

		narration = append(narration, m.narrator.Narrate(NarrationContext{
			Code:       room.Code,
			Trigger:    types.TriggerEnding,
			Genre:      room.Genre,
			SceneID:    nextScene.ID,
			HistoryLen: len(room.History),
			Tension:    nextScene.TensionLevel,
			EndingType: endingType,
		}))

		m.Logger.Info("Story ended",
			zap.String("code", room.Code),
			zap.String("ending", string(endingType)),
			zap.Int("turns", len(room.History)))

		return &TurnResult{
			Ended:       true,
			Timeout:     timeout,
			PlayerID:    playerID,
			EndingScene: nextScene,
			EndingType:  endingType,
			Narration:   narration,
			View:        m.View(room),
		}, nil
	}

	advanceTurn(room)
	room.TurnState = types.TurnChoicesLocked
	room.ReadyPlayers = map[string]bool{}
	room.TurnDeadline = nil

	directed := m.director.Direct(room, nextScene, len(room.History))
	appendWorldTimeline(room.World, directed.Events)

	active := activePlayerID(room)
	narration = append(narration, m.narrator.Narrate(NarrationContext{
		Code:       room.Code,
		Trigger:    types.TriggerSceneEnter,
		Genre:      room.Genre,
		SceneID:    nextScene.ID,
		HistoryLen: len(room.History),
		Tension:    nextScene.TensionLevel,
		PlayerID:   active,
		PlayerName: playerName(room, active),
	}))

	return &TurnResult{
		Ended:          false,
		Timeout:        timeout,
		PlayerID:       playerID,
		NextScene:      nextScene,
		Directed:       directed.Scene,
		RiftEvent:      rift.Event,
		Narration:      narration,
		ActivePlayerID: active,
		TurnDeadline:   room.TurnDeadline,
		View:           m.View(room),
	}, nil
}

// RestartSession returns a finished or in-flight room to the lobby. Players
// stay; the world resets to its baseline with only the cross-run meta
// carried over, so resource scars and depleted pools never leak into the
// next run.
func (m *RoomManager) RestartSession(code, playerID string) (*types.RoomView, error) {
	var view *types.RoomView
	err := m.withRoom(code, func(room *types.Room) error {
		if findPlayer(room, playerID) == nil {
			return newError(ErrNotFound, "player not found")
		}

		m.timers.cancelTurn(room.Code)
		room.Phase = types.PhaseLobby
		room.Genre = ""
		room.CurrentSceneID = "start"
		room.TensionLevel = 1
		room.History = []types.HistoryEntry{}
		room.EndingScene = nil
		room.EndingType = ""
		room.TurnState = types.TurnChoicesLocked
		room.ReadyPlayers = map[string]bool{}
		room.TurnDeadline = nil
		room.ActivePlayerIndex = 0
		room.GenrePower = InitialGenrePower()
		room.ChaosLevel = 0
		room.RiftHistory = nil
		room.NarrativeThreads = nil
		room.ActiveThreadID = ""
		room.DirectorTimeline = nil
		room.DirectedScene = nil

		meta := room.World.Meta
		room.World = NewWorldState()
		room.World.Meta = meta

		room.TurnOrder = make([]string, len(room.Players))
		for i, p := range room.Players {
			room.TurnOrder[i] = p.ID
			p.Score = 0
			p.Rounds = []int{}
			p.OrderIndex = i
		}

		view = m.View(room)
		m.Logger.Info("Session restarted", zap.String("code", room.Code))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func playerName(room *types.Room, playerID string) string {
	if p := findPlayer(room, playerID); p != nil {
		return p.Name
	}
	return ""
}

func sortPlayersByScore(players []*types.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})
}
