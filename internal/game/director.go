package game

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/DeafWorld/story-clash/internal/stablehash"
	"github.com/DeafWorld/story-clash/internal/types"
)

const maxDirectorTimeline = 40

// Director assigns a pacing beat, pressure band, and motion cue to every
// scene entry, and decides when a matured narrative thread pays off.
type Director struct{}

func NewDirector() *Director {
	return &Director{}
}

// DefaultMotionCue is the cue clients get before the first directed scene.
func DefaultMotionCue() types.MotionCue {
	return types.MotionCue{
		Intensity:       20,
		Beat:            types.BeatSetup,
		EffectProfile:   "rift_drift",
		TransitionStyle: types.TransitionDrift,
		PressureBand:    types.BandCalm,
	}
}

func pressureBand(chaos, tension, unresolvedThreads int) types.PressureBand {
	score := float64(chaos)*0.62 + float64(tension)*7 + float64(unresolvedThreads)*6
	if score >= 82 {
		return types.BandCritical
	}
	if score >= 46 {
		return types.BandRising
	}
	return types.BandCalm
}

func beatFromContext(chaos int, band types.PressureBand, hasPayoff bool, recent []types.DirectorBeatRecord) types.BeatType {
	if hasPayoff {
		return types.BeatPayoff
	}
	if chaos >= 92 {
		return types.BeatFracture
	}
	if len(recent) > 0 {
		last := recent[len(recent)-1].BeatType
		if (last == types.BeatPayoff || last == types.BeatFracture) && band != types.BandCritical {
			return types.BeatCooldown
		}
	}
	if band == types.BandCritical {
		if chaos >= 84 {
			return types.BeatFracture
		}
		return types.BeatEscalation
	}
	if band == types.BandRising {
		return types.BeatEscalation
	}
	return types.BeatSetup
}

func motionCue(beat types.BeatType, band types.PressureBand, chaos, tension int) types.MotionCue {
	base := clampInt(int(math.Round(float64(chaos)*0.74+float64(tension)*9)), 8, 100)
	boost := 0
	switch beat {
	case types.BeatPayoff:
		boost = 14
	case types.BeatFracture:
		boost = 20
	case types.BeatCooldown:
		boost = -16
	case types.BeatEscalation:
		boost = 6
	}

	profile := "rift_drift"
	switch beat {
	case types.BeatPayoff:
		profile = "shockwave"
	case types.BeatFracture:
		profile = "void_hum"
	case types.BeatCooldown:
		profile = "cooldown_breath"
	}

	transition := types.TransitionDrift
	switch beat {
	case types.BeatFracture:
		transition = types.TransitionHardCut
	case types.BeatPayoff:
		transition = types.TransitionSurge
	}

	return types.MotionCue{
		Intensity:       clampInt(base+boost, 0, 100),
		Beat:            beat,
		EffectProfile:   profile,
		TransitionStyle: transition,
		PressureBand:    band,
	}
}

// choosePayoffThread picks the highest-priority mature thread: active, at
// least two developments, idle for at least two scenes.
func choosePayoffThread(threads []*types.NarrativeThread) *types.NarrativeThread {
	var best *types.NarrativeThread
	for _, thread := range threads {
		if thread.Status != types.ThreadActive || len(thread.Developments) < 2 || thread.ScenesSinceMention < 2 {
			continue
		}
		if best == nil ||
			thread.Priority > best.Priority ||
			(thread.Priority == best.Priority && thread.ScenesSinceMention > best.ScenesSinceMention) {
			best = thread
		}
	}
	return best
}

func threadLabel(threadID string) string {
	return strings.ReplaceAll(strings.TrimPrefix(threadID, "thread-"), "-", " ")
}

var beatLeadLines = map[types.BeatType][]string{
	types.BeatSetup: {
		"A thin calm settles over the crew.",
		"The moment stretches, quiet and watchful.",
		"Small details sharpen in the stillness.",
	},
	types.BeatEscalation: {
		"The pressure line spikes higher.",
		"Every exit looks narrower than it did.",
		"The air tightens around the next move.",
	},
	types.BeatPayoff: {
		"The Rift cashes in a long-buried thread.",
		"An old debt comes due all at once.",
		"What was planted finally turns and blooms.",
	},
	types.BeatCooldown: {
		"The aftershock slows to a dangerous calm.",
		"The noise recedes, but nothing relaxes.",
		"A breath, borrowed rather than earned.",
	},
	types.BeatFracture: {
		"Reality fractures and the room twists.",
		"The scene splits along a seam no one saw.",
		"Something structural gives way.",
	},
}

func renderDirectedText(beat types.BeatType, activeThreadID, payoffThreadID, sceneText, seed string) string {
	bank, ok := beatLeadLines[beat]
	if !ok {
		bank = beatLeadLines[types.BeatSetup]
	}
	lead := stablehash.PickString(bank, seed)

	thread := ""
	if payoffThreadID != "" {
		thread = fmt.Sprintf("Payoff: %s.", threadLabel(payoffThreadID))
	} else if activeThreadID != "" {
		thread = fmt.Sprintf("Thread pressure: %s.", threadLabel(activeThreadID))
	}

	parts := []string{lead}
	if thread != "" {
		parts = append(parts, thread)
	}
	parts = append(parts, sceneText)
	return strings.Join(parts, " ")
}

// DirectResult is one directed scene plus its side effects.
type DirectResult struct {
	Scene      *types.DirectedScene
	BeatRecord types.DirectorBeatRecord
	Events     []types.WorldEvent
}

// Direct stages a scene entry against the room's current pressure. When a
// payoff fires, the thread is resolved in place and a timeline event is
// emitted; a resolved thread never pays off twice.
func (d *Director) Direct(room *types.Room, scene *types.Scene, historyLen int) DirectResult {
	now := time.Now()

	unresolved := 0
	for _, thread := range room.NarrativeThreads {
		if thread.Status == types.ThreadActive {
			unresolved++
		}
	}

	tension := scene.TensionLevel
	if tension == 0 {
		tension = clampInt(room.TensionLevel, 1, 5)
	}
	band := pressureBand(room.ChaosLevel, tension, unresolved)

	payoffThreadID := ""
	var events []types.WorldEvent
	if room.ChaosLevel >= 55 && historyLen >= 4 {
		if payoff := choosePayoffThread(room.NarrativeThreads); payoff != nil {
			payoffThreadID = payoff.ID
			payoff.Status = types.ThreadResolved
			payoff.Payoff = &types.ThreadDevelopment{
				SceneID:   scene.ID,
				Detail:    fmt.Sprintf("Resolved during %s", scene.ID),
				Timestamp: now,
			}
			severity := types.SeverityMedium
			if band == types.BandCritical {
				severity = types.SeverityHigh
			}
			events = append(events, types.WorldEvent{
				ID:        fmt.Sprintf("evt-%s-%d-thread-resolved-%s", room.Code, historyLen, payoff.ID),
				Type:      "thread_resolved",
				Title:     "Thread payoff",
				Detail:    fmt.Sprintf("Narrative thread %s reached payoff state.", payoff.ID),
				Severity:  severity,
				Source:    "director",
				CreatedAt: now,
			})
		}
	}

	beat := beatFromContext(room.ChaosLevel, band, payoffThreadID != "", room.DirectorTimeline)
	cue := motionCue(beat, band, room.ChaosLevel, tension)

	activeThreadID := ""
	if active := topActiveThread(room.NarrativeThreads); active != nil {
		activeThreadID = active.ID
	}
	room.ActiveThreadID = activeThreadID

	directed := &types.DirectedScene{
		SceneID:        scene.ID,
		BaseText:       scene.Text,
		RenderedText: renderDirectedText(beat, activeThreadID, payoffThreadID, scene.Text,
			fmt.Sprintf("%s:%s:%s:lead", room.Code, scene.ID, beat)),
		BeatType:       beat,
		PressureBand:   band,
		Intensity:      cue.Intensity,
		ActiveThreadID: activeThreadID,
		PayoffThreadID: payoffThreadID,
		MotionCue:      cue,
		UpdatedAt:      now,
	}

	record := types.DirectorBeatRecord{
		ID: fmt.Sprintf("beat-%s-%d-%x", room.Code, historyLen,
			stablehash.Sum32(fmt.Sprintf("%s:%s:%d", scene.ID, beat, historyLen))),
		SceneID:        scene.ID,
		BeatType:       beat,
		PressureBand:   band,
		Intensity:      cue.Intensity,
		EffectProfile:  cue.EffectProfile,
		PayoffThreadID: payoffThreadID,
		CreatedAt:      now,
	}

	room.DirectorTimeline = append(room.DirectorTimeline, record)
	if len(room.DirectorTimeline) > maxDirectorTimeline {
		room.DirectorTimeline = room.DirectorTimeline[len(room.DirectorTimeline)-maxDirectorTimeline:]
	}
	room.DirectedScene = directed

	return DirectResult{Scene: directed, BeatRecord: record, Events: events}
}
