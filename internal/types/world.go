package types

import "time"

// ResourceTrend is the direction a resource pool is heading.
type ResourceTrend string

const (
	TrendStable    ResourceTrend = "stable"
	TrendDeclining ResourceTrend = "declining"
	TrendCritical  ResourceTrend = "critical"
)

// Resource is a shared pool the crew draws down over the session.
type Resource struct {
	Amount      int           `json:"amount"`
	Trend       ResourceTrend `json:"trend"`
	CrisisPoint int           `json:"crisisPoint"`
}

// Faction is one of the three groups reacting to the crew's choices.
type Faction struct {
	Loyalty       int            `json:"loyalty"`
	Power         int            `json:"power"`
	Leader        string         `json:"leader,omitempty"`
	Traits        []string       `json:"traits"`
	Relationships map[string]int `json:"relationships"`
}

// WorldEventSeverity grades a timeline event.
type WorldEventSeverity string

const (
	SeverityLow      WorldEventSeverity = "low"
	SeverityMedium   WorldEventSeverity = "medium"
	SeverityHigh     WorldEventSeverity = "high"
	SeverityCritical WorldEventSeverity = "critical"
)

// WorldEvent is an append-only entry on the world timeline.
type WorldEvent struct {
	ID        string             `json:"id"`
	Type      string             `json:"type"`
	Title     string             `json:"title"`
	Detail    string             `json:"detail"`
	Severity  WorldEventSeverity `json:"severity"`
	Source    string             `json:"source"`
	CreatedAt time.Time          `json:"createdAt"`
}

// WorldMeta carries session-level bookkeeping across restarts.
type WorldMeta struct {
	GamesPlayed      int        `json:"gamesPlayed"`
	MostCommonEnding EndingType `json:"mostCommonEnding,omitempty"`
	RarePath         bool       `json:"rarePath"`
}

// WorldState is the evolving backdrop the procedural engines mutate.
type WorldState struct {
	Factions  map[string]*Faction  `json:"factions"`
	Resources map[string]*Resource `json:"resources"`

	// Scars records one-shot crisis markers so a resource crisis only ever
	// notifies once.
	Scars []string `json:"scars"`

	Tensions map[string]int `json:"tensions"`
	Timeline []WorldEvent   `json:"timeline"`
	Meta     WorldMeta      `json:"meta"`
}

// ThreadType classifies a narrative thread.
type ThreadType string

const (
	ThreadMystery      ThreadType = "mystery"
	ThreadRelationship ThreadType = "relationship"
	ThreadSurvival     ThreadType = "survival"
	ThreadConflict     ThreadType = "conflict"
	ThreadQuest        ThreadType = "quest"
)

// ThreadStatus is the lifecycle state of a narrative thread.
type ThreadStatus string

const (
	ThreadActive    ThreadStatus = "active"
	ThreadResolved  ThreadStatus = "resolved"
	ThreadAbandoned ThreadStatus = "abandoned"
	ThreadDormant   ThreadStatus = "dormant"
)

// ThreadDevelopment is one touch on a narrative thread.
type ThreadDevelopment struct {
	SceneID   string    `json:"sceneId"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

// NarrativeThread is a tracked story thread seeded by player choices and
// eventually paid off by the director. A thread is resolved exactly once and
// never re-opened.
type NarrativeThread struct {
	ID                 string              `json:"id"`
	Type               ThreadType          `json:"type"`
	Priority           int                 `json:"priority"`
	Status             ThreadStatus        `json:"status"`
	Developments       []ThreadDevelopment `json:"developments"`
	Payoff             *ThreadDevelopment  `json:"payoff,omitempty"`
	Clues              []string            `json:"clues"`
	PlayerAwareness    int                 `json:"playerAwareness"`
	CreatedAt          time.Time           `json:"createdAt"`
	LastMention        time.Time           `json:"lastMention"`
	ScenesSinceMention int                 `json:"scenesSinceMention"`
}
