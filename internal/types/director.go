package types

import "time"

// PressureBand is the director's coarse read of session pressure.
type PressureBand string

const (
	BandCalm     PressureBand = "calm"
	BandRising   PressureBand = "rising"
	BandCritical PressureBand = "critical"
)

// BeatType is the director-assigned pacing label for a scene.
type BeatType string

const (
	BeatSetup      BeatType = "setup"
	BeatEscalation BeatType = "escalation"
	BeatPayoff     BeatType = "payoff"
	BeatCooldown   BeatType = "cooldown"
	BeatFracture   BeatType = "fracture"
)

// TransitionStyle hints how the presentation layer should cut between scenes.
type TransitionStyle string

const (
	TransitionDrift   TransitionStyle = "drift"
	TransitionSurge   TransitionStyle = "surge"
	TransitionHardCut TransitionStyle = "hard_cut"
)

// MotionCue is a pure rendering hint for the presentation layer.
type MotionCue struct {
	Intensity       int             `json:"intensity"`
	Beat            BeatType        `json:"beat"`
	EffectProfile   string          `json:"effectProfile"`
	TransitionStyle TransitionStyle `json:"transitionStyle"`
	PressureBand    PressureBand    `json:"pressureBand"`
}

// DirectedScene is the director's rendering of the current scene.
type DirectedScene struct {
	SceneID        string       `json:"sceneId"`
	BaseText       string       `json:"baseText"`
	RenderedText   string       `json:"renderedText"`
	BeatType       BeatType     `json:"beatType"`
	PressureBand   PressureBand `json:"pressureBand"`
	Intensity      int          `json:"intensity"`
	ActiveThreadID string       `json:"activeThreadId,omitempty"`
	PayoffThreadID string       `json:"payoffThreadId,omitempty"`
	MotionCue      MotionCue    `json:"motionCue"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// DirectorBeatRecord is one entry in the capped beat history.
type DirectorBeatRecord struct {
	ID             string       `json:"id"`
	SceneID        string       `json:"sceneId"`
	BeatType       BeatType     `json:"beatType"`
	PressureBand   PressureBand `json:"pressureBand"`
	Intensity      int          `json:"intensity"`
	EffectProfile  string       `json:"effectProfile"`
	PayoffThreadID string       `json:"payoffThreadId,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// NarrationTone colors a narrator line.
type NarrationTone string

const (
	ToneCalm      NarrationTone = "calm"
	ToneUneasy    NarrationTone = "uneasy"
	ToneUrgent    NarrationTone = "urgent"
	ToneDesperate NarrationTone = "desperate"
	ToneHopeful   NarrationTone = "hopeful"
	ToneGrim      NarrationTone = "grim"
)

// NarrationTrigger names the moment that produced a narrator line.
type NarrationTrigger string

const (
	TriggerSceneEnter      NarrationTrigger = "scene_enter"
	TriggerChoiceSubmitted NarrationTrigger = "choice_submitted"
	TriggerTurnTimeout     NarrationTrigger = "turn_timeout"
	TriggerEnding          NarrationTrigger = "ending"
)

// NarrationLine is one narrator banner line pushed to clients.
type NarrationLine struct {
	ID           string           `json:"id"`
	Text         string           `json:"text"`
	Tone         NarrationTone    `json:"tone"`
	Trigger      NarrationTrigger `json:"trigger"`
	RoomCode     string           `json:"roomCode"`
	SceneID      string           `json:"sceneId,omitempty"`
	PlayerID     string           `json:"playerId,omitempty"`
	TensionLevel int              `json:"tensionLevel"`
	Genre        GenreID          `json:"genre,omitempty"`
	EndingType   EndingType       `json:"endingType,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}
