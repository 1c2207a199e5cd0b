package game

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/DeafWorld/story-clash/internal/types"
)

func TestPressureBandThresholds(t *testing.T) {
	assert.Equal(t, types.BandCalm, pressureBand(0, 1, 0))
	assert.Equal(t, types.BandCalm, pressureBand(20, 2, 1))
	assert.Equal(t, types.BandRising, pressureBand(50, 3, 0))
	assert.Equal(t, types.BandCritical, pressureBand(80, 4, 1))
	assert.Equal(t, types.BandCritical, pressureBand(100, 5, 5))
}

func TestBeatFromContextOrdering(t *testing.T) {
	// Payoff outranks everything, even a fracture-grade chaos reading.
	assert.Equal(t, types.BeatPayoff, beatFromContext(95, types.BandCritical, true, nil))

	assert.Equal(t, types.BeatFracture, beatFromContext(92, types.BandRising, false, nil))
	assert.Equal(t, types.BeatFracture, beatFromContext(85, types.BandCritical, false, nil))
	assert.Equal(t, types.BeatEscalation, beatFromContext(80, types.BandCritical, false, nil))
	assert.Equal(t, types.BeatEscalation, beatFromContext(50, types.BandRising, false, nil))
	assert.Equal(t, types.BeatSetup, beatFromContext(10, types.BandCalm, false, nil))

	// A payoff cools down on the next beat unless pressure stays critical.
	recent := []types.DirectorBeatRecord{{BeatType: types.BeatPayoff}}
	assert.Equal(t, types.BeatCooldown, beatFromContext(50, types.BandRising, false, recent))
	assert.Equal(t, types.BeatEscalation, beatFromContext(80, types.BandCritical, false, recent))
}

func TestMotionCueProfiles(t *testing.T) {
	payoff := motionCue(types.BeatPayoff, types.BandRising, 60, 3)
	assert.Equal(t, "shockwave", payoff.EffectProfile)
	assert.Equal(t, types.TransitionSurge, payoff.TransitionStyle)

	fracture := motionCue(types.BeatFracture, types.BandCritical, 95, 5)
	assert.Equal(t, "void_hum", fracture.EffectProfile)
	assert.Equal(t, types.TransitionHardCut, fracture.TransitionStyle)
	assert.Equal(t, 100, fracture.Intensity)

	cooldown := motionCue(types.BeatCooldown, types.BandCalm, 20, 1)
	assert.Less(t, cooldown.Intensity, payoff.Intensity)
	assert.Equal(t, "cooldown_breath", cooldown.EffectProfile)
}

func matureThread(id string, priority, idle int) *types.NarrativeThread {
	now := time.Now()
	return &types.NarrativeThread{
		ID:       id,
		Type:     types.ThreadMystery,
		Priority: priority,
		Status:   types.ThreadActive,
		Developments: []types.ThreadDevelopment{
			{SceneID: "a", Detail: "one", Timestamp: now},
			{SceneID: "b", Detail: "two", Timestamp: now},
		},
		ScenesSinceMention: idle,
		CreatedAt:          now,
		LastMention:        now,
	}
}

func TestChoosePayoffThreadPicksMaturePriority(t *testing.T) {
	young := matureThread("thread-young", 10, 1)
	strong := matureThread("thread-strong", 9, 3)
	weak := matureThread("thread-weak", 5, 6)

	// Idle for only one scene keeps the highest-priority thread out.
	picked := choosePayoffThread([]*types.NarrativeThread{young, strong, weak})
	assert.Equal(t, "thread-strong", picked.ID)

	assert.Nil(t, choosePayoffThread(nil))
	assert.Nil(t, choosePayoffThread([]*types.NarrativeThread{young}))
}

func TestDirectResolvesPayoffThreadOnce(t *testing.T) {
	director := NewDirector()
	thread := matureThread("thread-mystery-lab", 8, 3)
	room := &types.Room{
		Code:             "ABCD",
		ChaosLevel:       60,
		TensionLevel:     3,
		NarrativeThreads: []*types.NarrativeThread{thread},
	}
	scene := &types.Scene{ID: "vault", Text: "The vault door hangs open.", TensionLevel: 3}

	result := director.Direct(room, scene, 5)
	assert.Equal(t, types.BeatPayoff, result.Scene.BeatType)
	assert.Equal(t, "thread-mystery-lab", result.Scene.PayoffThreadID)
	assert.Equal(t, types.ThreadResolved, thread.Status)
	assert.NotNil(t, thread.Payoff)
	assert.True(t, hasEventType(result.Events, "thread_resolved"))

	// The same thread never pays off again.
	next := director.Direct(room, scene, 6)
	assert.Empty(t, next.Scene.PayoffThreadID)
	assert.Empty(t, next.Events)
}

func TestDirectPayoffNeedsChaosAndHistory(t *testing.T) {
	director := NewDirector()
	scene := &types.Scene{ID: "vault", Text: "The vault door hangs open.", TensionLevel: 3}

	calm := &types.Room{
		Code:             "ABCD",
		ChaosLevel:       30,
		NarrativeThreads: []*types.NarrativeThread{matureThread("thread-a", 8, 3)},
	}
	result := director.Direct(calm, scene, 5)
	assert.Empty(t, result.Scene.PayoffThreadID)

	early := &types.Room{
		Code:             "ABCD",
		ChaosLevel:       70,
		NarrativeThreads: []*types.NarrativeThread{matureThread("thread-b", 8, 3)},
	}
	result = director.Direct(early, scene, 2)
	assert.Empty(t, result.Scene.PayoffThreadID)
}

func TestDirectRendersThreadPressureIntoText(t *testing.T) {
	director := NewDirector()
	thread := matureThread("thread-faction-war", 9, 1)
	room := &types.Room{
		Code:             "ABCD",
		ChaosLevel:       20,
		TensionLevel:     2,
		NarrativeThreads: []*types.NarrativeThread{thread},
	}
	scene := &types.Scene{ID: "garage", Text: "Engines tick in the dark.", TensionLevel: 2}

	result := director.Direct(room, scene, 1)
	assert.Equal(t, "thread-faction-war", room.ActiveThreadID)
	assert.Contains(t, result.Scene.RenderedText, "faction war")
	assert.Contains(t, result.Scene.RenderedText, scene.Text)
	assert.Equal(t, scene.Text, result.Scene.BaseText)
}

func TestDirectedLeadLineIsStablePick(t *testing.T) {
	leadOf := func(seed string) string {
		return renderDirectedText(types.BeatEscalation, "", "", "The corridor narrows.", seed)
	}

	first := leadOf("ABCD:garage:escalation:lead")
	assert.Equal(t, first, leadOf("ABCD:garage:escalation:lead"))

	inBank := func(text string) bool {
		for _, lead := range beatLeadLines[types.BeatEscalation] {
			if strings.HasPrefix(text, lead) {
				return true
			}
		}
		return false
	}
	assert.True(t, inBank(first))
	assert.True(t, inBank(leadOf("ZZZZ:vault:escalation:lead")))
}

func TestDirectCapsTimeline(t *testing.T) {
	director := NewDirector()
	room := &types.Room{Code: "ABCD", ChaosLevel: 10, TensionLevel: 1}
	scene := &types.Scene{ID: "loop", Text: "The hall repeats.", TensionLevel: 1}

	for i := 0; i < maxDirectorTimeline+10; i++ {
		director.Direct(room, scene, i)
	}
	assert.Len(t, room.DirectorTimeline, maxDirectorTimeline)
}
