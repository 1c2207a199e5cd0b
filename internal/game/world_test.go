package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/DeafWorld/story-clash/internal/types"
)

func evolveScene() *types.Scene {
	return &types.Scene{ID: "mall_siege", Text: "The mall shudders under the siege.", TensionLevel: 3}
}

func TestNewWorldStateBaseline(t *testing.T) {
	world := NewWorldState()
	assert.Len(t, world.Factions, 3)
	assert.Len(t, world.Resources, 4)
	assert.Len(t, world.Tensions, 5)
	assert.Equal(t, 45, world.Resources["food"].Amount)
	assert.Equal(t, 20, world.Resources["fuel"].Amount)
	assert.Equal(t, -20, world.Factions["survivors"].Relationships["scientists"])
	assert.Empty(t, world.Timeline)
}

func TestEvolveCooperativeChoiceEasesFactionTension(t *testing.T) {
	engine := NewWorldEngine()
	world := NewWorldState()
	world.Tensions["faction_conflict"] = 20

	loyaltyBefore := world.Factions["survivors"].Loyalty
	engine.Evolve(world, nil, EvolveInput{
		RoomCode:    "ABCD",
		Step:        1,
		Scene:       evolveScene(),
		ChoiceLabel: "Help the wounded together",
		Tension:     3,
		ChaosLevel:  30,
		Profile:     ChoiceProfile{Cooperative: true},
	})

	assert.Greater(t, world.Factions["survivors"].Loyalty, loyaltyBefore)
	assert.Equal(t, 15, world.Tensions["faction_conflict"])
	// Cooperative crews burn less food: tick -1, choice -1.
	assert.Equal(t, 43, world.Resources["food"].Amount)
}

func TestEvolveRiskyChoiceRaisesExternalThreat(t *testing.T) {
	engine := NewWorldEngine()
	world := NewWorldState()

	engine.Evolve(world, nil, EvolveInput{
		RoomCode:    "ABCD",
		Step:        1,
		Scene:       evolveScene(),
		ChoiceLabel: "Charge the barricade",
		Tension:     4,
		ChaosLevel:  40,
		Profile:     ChoiceProfile{Risky: true},
	})

	// Risky +7 plus the scaled tension term clamp(4,1,5)*2.
	assert.Equal(t, 15, world.Tensions["external_threat"])
	// Risky choices double the ammunition spend.
	assert.Equal(t, 57, world.Resources["ammunition"].Amount)
}

func TestEvolveResourceCrisisScarsOnce(t *testing.T) {
	engine := NewWorldEngine()
	world := NewWorldState()
	world.Resources["fuel"].Amount = 9

	in := EvolveInput{
		RoomCode:    "ABCD",
		Step:        1,
		Scene:       evolveScene(),
		ChoiceLabel: "Hold the line",
		Tension:     2,
		ChaosLevel:  20,
	}
	first := engine.Evolve(world, nil, in)
	assert.True(t, hasEventType(first.Events, "resource_crisis"))
	assert.Contains(t, world.Scars, "crisis_fuel")

	in.Step = 2
	second := engine.Evolve(world, nil, in)
	for _, event := range second.Events {
		assert.NotEqual(t, "fuel crisis", event.Title)
	}
}

func TestEvolveTensionOverflowIsCritical(t *testing.T) {
	engine := NewWorldEngine()
	world := NewWorldState()
	world.Tensions["external_threat"] = 84

	result := engine.Evolve(world, nil, EvolveInput{
		RoomCode:    "ABCD",
		Step:        3,
		Scene:       evolveScene(),
		ChoiceLabel: "Charge",
		Tension:     5,
		ChaosLevel:  50,
		Profile:     ChoiceProfile{Risky: true},
	})

	assert.True(t, hasEventType(result.Events, "tension_overflow"))
	for _, event := range result.Events {
		if event.Type == "tension_overflow" {
			assert.Equal(t, types.SeverityCritical, event.Severity)
		}
	}
}

func TestEvolveSeedsAndTouchesThreads(t *testing.T) {
	engine := NewWorldEngine()
	world := NewWorldState()

	in := EvolveInput{
		RoomCode:    "ABCD",
		Step:        1,
		Scene:       &types.Scene{ID: "lab", Text: "Rows of specimen tanks.", TensionLevel: 3},
		ChoiceLabel: "Read the research logs",
		Tension:     3,
		ChaosLevel:  30,
		Profile:     ChoiceProfile{Investigative: true},
	}
	result := engine.Evolve(world, nil, in)
	assert.Len(t, result.Threads, 1)

	thread := result.Threads[0]
	assert.Equal(t, "thread-mystery-lab", thread.ID)
	assert.Equal(t, types.ThreadActive, thread.Status)
	assert.Equal(t, 20, thread.PlayerAwareness)
	assert.Equal(t, thread.ID, result.ActiveThreadID)

	// A second investigative turn on the same scene touches the thread
	// instead of duplicating it.
	in.Step = 2
	result = engine.Evolve(world, result.Threads, in)
	assert.Len(t, result.Threads, 1)
	assert.Equal(t, 28, result.Threads[0].PlayerAwareness)
	assert.Len(t, result.Threads[0].Developments, 2)
}

func TestEvolveNeverReopensResolvedThread(t *testing.T) {
	engine := NewWorldEngine()
	world := NewWorldState()
	resolved := &types.NarrativeThread{
		ID:     "thread-mystery-lab",
		Type:   types.ThreadMystery,
		Status: types.ThreadResolved,
		Payoff: &types.ThreadDevelopment{SceneID: "lab", Detail: "done", Timestamp: time.Now()},
	}

	result := engine.Evolve(world, []*types.NarrativeThread{resolved}, EvolveInput{
		RoomCode:    "ABCD",
		Step:        5,
		Scene:       &types.Scene{ID: "lab", Text: "Back in the lab.", TensionLevel: 2},
		ChoiceLabel: "Dig through the research again",
		Tension:     2,
		ChaosLevel:  20,
		Profile:     ChoiceProfile{Investigative: true},
	})

	assert.Len(t, result.Threads, 1)
	assert.Equal(t, types.ThreadResolved, result.Threads[0].Status)
	assert.Empty(t, result.ActiveThreadID)
}

func TestEvolveEndingUpdatesMeta(t *testing.T) {
	engine := NewWorldEngine()
	world := NewWorldState()

	engine.Evolve(world, nil, EvolveInput{
		RoomCode:    "ABCD",
		Step:        4,
		Scene:       evolveScene(),
		ChoiceLabel: "Board the helicopter",
		Tension:     3,
		ChaosLevel:  75,
		EndingType:  types.EndingSurvival,
	})

	assert.Equal(t, 1, world.Meta.GamesPlayed)
	assert.Equal(t, types.EndingSurvival, world.Meta.MostCommonEnding)
	assert.True(t, world.Meta.RarePath)
}

func TestRiftWorldEventSeverityTracksChaos(t *testing.T) {
	record := &types.RiftEventRecord{ID: "rift-1", Type: types.RiftReroute, ChaosLevel: 90}
	assert.Equal(t, types.SeverityCritical, RiftWorldEvent(record).Severity)

	record.ChaosLevel = 50
	assert.Equal(t, types.SeverityMedium, RiftWorldEvent(record).Severity)

	record.ChaosLevel = 10
	assert.Equal(t, types.SeverityLow, RiftWorldEvent(record).Severity)
}

func TestWorldTimelineIsCapped(t *testing.T) {
	world := NewWorldState()
	events := make([]types.WorldEvent, 70)
	for i := range events {
		events[i] = types.WorldEvent{ID: string(rune('a' + i%26))}
	}
	appendWorldTimeline(world, events)
	assert.Len(t, world.Timeline, maxWorldTimeline)
}
