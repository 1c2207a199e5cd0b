package types

import (
	"time"
)

// GenreID identifies one of the three story flavors.
type GenreID string

const (
	GenreZombie  GenreID = "zombie"
	GenreAlien   GenreID = "alien"
	GenreHaunted GenreID = "haunted"
)

// Genres lists every genre in canonical order.
var Genres = []GenreID{GenreZombie, GenreAlien, GenreHaunted}

// EndingType classifies how a story run concluded.
type EndingType string

const (
	EndingTriumph  EndingType = "triumph"
	EndingSurvival EndingType = "survival"
	EndingDoom     EndingType = "doom"
)

// RoomPhase is the coarse lifecycle phase of a session.
type RoomPhase string

const (
	PhaseLobby    RoomPhase = "lobby"
	PhaseMinigame RoomPhase = "minigame"
	PhaseGame     RoomPhase = "game"
	PhaseRecap    RoomPhase = "recap"
)

// TurnState tracks the readiness gate within a single scene.
type TurnState string

const (
	TurnChoicesLocked TurnState = "choices_locked"
	TurnChoicesOpen   TurnState = "choices_open"
	TurnResolved      TurnState = "resolved"
	TurnEnded         TurnState = "ended"
)

// Choice is a selectable branch out of a scene.
type Choice struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	NextID string `json:"nextId"`
}

// Scene is a single node of a story tree.
type Scene struct {
	ID                 string            `json:"id"`
	Text               string            `json:"text"`
	TensionLevel       int               `json:"tensionLevel"`
	Choices            []Choice          `json:"choices,omitempty"`
	FreeChoiceTargetID string            `json:"freeChoiceTargetId,omitempty"`
	FreeChoiceKeywords map[string]string `json:"freeChoiceKeywords,omitempty"`
	Ending             bool              `json:"ending,omitempty"`
	EndingType         EndingType        `json:"endingType,omitempty"`
}

// StoryTree is a read-only branching scene graph for one genre.
type StoryTree struct {
	Genre  GenreID `json:"genre"`
	Title  string  `json:"title"`
	Scenes []Scene `json:"scenes"`
}

// Player is a session participant.
type Player struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Avatar     string    `json:"avatar"`
	IsHost     bool      `json:"isHost"`
	Score      int       `json:"score"`
	OrderIndex int       `json:"orderIndex"`
	Connected  bool      `json:"connected"`
	Rounds     []int     `json:"rounds"`
	JoinedAt   time.Time `json:"joinedAt"`
}

// HistoryEntry is one resolved turn of the session transcript. Entries are
// immutable once appended.
type HistoryEntry struct {
	SceneID      string    `json:"sceneId"`
	SceneText    string    `json:"sceneText"`
	PlayerID     string    `json:"playerId"`
	PlayerName   string    `json:"playerName"`
	ChoiceLabel  string    `json:"choiceLabel"`
	IsFreeChoice bool      `json:"isFreeChoice"`
	FreeText     string    `json:"freeText,omitempty"`
	NextSceneID  string    `json:"nextSceneId"`
	TensionLevel int       `json:"tensionLevel"`
	Timeout      bool      `json:"timeout"`
	Timestamp    time.Time `json:"timestamp"`
}

// GenrePower is the three-way weighting steering procedural events. The
// weights always sum to exactly 100.
type GenrePower struct {
	Zombie  int `json:"zombie"`
	Alien   int `json:"alien"`
	Haunted int `json:"haunted"`
}

// Get returns the weight for a genre.
func (p GenrePower) Get(genre GenreID) int {
	switch genre {
	case GenreZombie:
		return p.Zombie
	case GenreAlien:
		return p.Alien
	case GenreHaunted:
		return p.Haunted
	}
	return 0
}

// Set replaces the weight for a genre.
func (p *GenrePower) Set(genre GenreID, value int) {
	switch genre {
	case GenreZombie:
		p.Zombie = value
	case GenreAlien:
		p.Alien = value
	case GenreHaunted:
		p.Haunted = value
	}
}

// RiftEventType distinguishes the two procedural trigger outcomes.
type RiftEventType string

const (
	RiftReroute    RiftEventType = "rift_reroute"
	RiftGenreSurge RiftEventType = "rift_genre_surge"
)

// RiftEventRecord is an immutable record of a fired procedural event.
type RiftEventRecord struct {
	ID                  string        `json:"id"`
	Type                RiftEventType `json:"type"`
	Title               string        `json:"title"`
	Description         string        `json:"description"`
	Step                int           `json:"step"`
	SceneID             string        `json:"sceneId"`
	PlayerID            string        `json:"playerId"`
	ChoiceID            string        `json:"choiceId,omitempty"`
	TargetGenre         GenreID       `json:"targetGenre,omitempty"`
	OriginalNextSceneID string        `json:"originalNextSceneId,omitempty"`
	NextSceneID         string        `json:"nextSceneId,omitempty"`
	ChaosLevel          int           `json:"chaosLevel"`
	CreatedAt           time.Time     `json:"createdAt"`
}

// Room is the aggregate root for one session.
type Room struct {
	ID                string               `json:"id"`
	Code              string               `json:"code"`
	CreatedAt         time.Time            `json:"createdAt"`
	ExpiresAt         time.Time            `json:"expiresAt"`
	Phase             RoomPhase            `json:"phase"`
	Players           []*Player            `json:"players"`
	TurnOrder         []string             `json:"turnOrder"`
	ActivePlayerIndex int                  `json:"activePlayerIndex"`
	Genre             GenreID              `json:"genre,omitempty"`
	CurrentSceneID    string               `json:"currentSceneId"`
	TensionLevel      int                  `json:"tensionLevel"`
	History           []HistoryEntry       `json:"history"`
	TurnState         TurnState            `json:"turnState"`
	ReadyPlayers      map[string]bool      `json:"readyPlayers"`
	TurnDeadline      *time.Time           `json:"turnDeadline,omitempty"`
	EndingScene       *Scene               `json:"endingScene,omitempty"`
	EndingType        EndingType           `json:"endingType,omitempty"`
	ChaosLevel        int                  `json:"chaosLevel"`
	GenrePower        GenrePower           `json:"genrePower"`
	RiftHistory       []RiftEventRecord    `json:"riftHistory"`
	NarrativeThreads  []*NarrativeThread   `json:"narrativeThreads"`
	ActiveThreadID    string               `json:"activeThreadId,omitempty"`
	DirectorTimeline  []DirectorBeatRecord `json:"directorTimeline"`
	DirectedScene     *DirectedScene       `json:"directedScene,omitempty"`
	World             *WorldState          `json:"worldState"`
}

// RoomView is a Room plus derived fields recomputed on every read and never
// persisted on the aggregate.
type RoomView struct {
	*Room
	StoryTitle     string `json:"storyTitle,omitempty"`
	CurrentScene   *Scene `json:"currentScene,omitempty"`
	ActivePlayerID string `json:"activePlayerId,omitempty"`
}

// MVP names the recap's most valuable player.
type MVP struct {
	Player string `json:"player"`
	Reason string `json:"reason"`
}

// RecapPayload is the session summary once the story ends.
type RecapPayload struct {
	EndingScene *Scene         `json:"endingScene"`
	EndingType  EndingType     `json:"endingType"`
	History     []HistoryEntry `json:"history"`
	MVP         MVP            `json:"mvp"`
	Genre       GenreID        `json:"genre"`
	StoryTitle  string         `json:"storyTitle"`
}
