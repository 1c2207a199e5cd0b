package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DeafWorld/story-clash/config"
	"github.com/DeafWorld/story-clash/internal/types"
)

func powerSum(p types.GenrePower) int {
	return p.Zombie + p.Alien + p.Haunted
}

func TestInitialGenrePowerSumsToHundred(t *testing.T) {
	power := InitialGenrePower()
	assert.Equal(t, 100, powerSum(power))
	assert.Equal(t, 34, power.Zombie)
}

func TestBoostedGenrePowerFavorsSelection(t *testing.T) {
	power := BoostedGenrePower(types.GenreHaunted)
	assert.Equal(t, 100, powerSum(power))
	assert.Equal(t, types.GenreHaunted, DominantGenre(power))
	assert.Greater(t, power.Haunted, power.Zombie)
	assert.Greater(t, power.Haunted, power.Alien)
}

func TestApplyGenrePowerShiftAlwaysNormalizes(t *testing.T) {
	power := InitialGenrePower()
	shifts := []map[types.GenreID]int{
		{types.GenreZombie: 50},
		{types.GenreZombie: -200, types.GenreAlien: -200},
		{types.GenreAlien: 3, types.GenreHaunted: -3},
		{},
	}
	for _, shift := range shifts {
		power = ApplyGenrePowerShift(power, shift)
		assert.Equal(t, 100, powerSum(power))
		assert.GreaterOrEqual(t, power.Zombie, 1)
		assert.GreaterOrEqual(t, power.Alien, 1)
		assert.GreaterOrEqual(t, power.Haunted, 1)
	}
}

func TestApplyGenrePowerShiftFloorsAtOne(t *testing.T) {
	power := ApplyGenrePowerShift(InitialGenrePower(), map[types.GenreID]int{
		types.GenreZombie: -500,
		types.GenreAlien:  -500,
	})
	assert.Equal(t, 100, powerSum(power))
	assert.GreaterOrEqual(t, power.Zombie, 1)
	assert.GreaterOrEqual(t, power.Alien, 1)
	assert.Equal(t, types.GenreHaunted, DominantGenre(power))
}

func TestDominantGenrePrefersCanonicalOrderOnTies(t *testing.T) {
	power := types.GenrePower{Zombie: 33, Alien: 33, Haunted: 34}
	assert.Equal(t, types.GenreHaunted, DominantGenre(power))

	tied := types.GenrePower{Zombie: 40, Alien: 40, Haunted: 20}
	assert.Equal(t, types.GenreZombie, DominantGenre(tied))
}

func TestChoiceGenreShiftRewardsKeywordGenre(t *testing.T) {
	shift := ChoiceGenreShift(types.GenreZombie, "The horde swarms the barricade.", "Fight with the crowbar", false)
	// Selected genre also dominates the keywords: decay -2, selection +4,
	// primary +7.
	assert.Equal(t, 9, shift[types.GenreZombie])
	assert.Greater(t, shift[types.GenreZombie], shift[types.GenreAlien])
	assert.Greater(t, shift[types.GenreZombie], shift[types.GenreHaunted])
}

func TestChoiceGenreShiftTimeoutBleedsOffGenre(t *testing.T) {
	plain := ChoiceGenreShift(types.GenreZombie, "The horde swarms.", "Fight", false)
	timed := ChoiceGenreShift(types.GenreZombie, "The horde swarms.", "Fight", true)
	total := 0
	for _, g := range types.Genres {
		total += timed[g] - plain[g]
	}
	assert.Equal(t, 4, total)
	assert.Equal(t, plain[types.GenreZombie], timed[types.GenreZombie])
}

func TestComputeChaosLevel(t *testing.T) {
	// Perfectly on-genre, minimum tension: chaos stays low.
	focused := types.GenrePower{Zombie: 98, Alien: 1, Haunted: 1}
	low := ComputeChaosLevel(focused, types.GenreZombie, 1, false, 0)
	assert.Less(t, low, 40)

	// Heavy drift plus max tension plus a timeout pushes chaos up hard.
	drifted := types.GenrePower{Zombie: 20, Alien: 60, Haunted: 20}
	high := ComputeChaosLevel(drifted, types.GenreZombie, 5, true, 0)
	assert.Greater(t, high, low)
	assert.LessOrEqual(t, high, 100)

	// No genre selected yet means no chaos.
	assert.Equal(t, 0, ComputeChaosLevel(focused, "", 5, true, 0))
}

func riftScene() *types.Scene {
	return &types.Scene{
		ID:           "crossroads",
		Text:         "The corridor splits under the emergency lights.",
		TensionLevel: 4,
		Choices: []types.Choice{
			{ID: "a", Label: "Charge the horde", NextID: "left_wing"},
			{ID: "b", Label: "Slip through the vents", NextID: "vents"},
			{ID: "c", Label: "Seal the door", NextID: "holdout"},
		},
	}
}

func TestEvaluateReroutesRiskyChoiceUnderHighChaos(t *testing.T) {
	engine := NewRiftEngine(config.DefaultConfig().Rift)
	// Power already far off the selected genre so chaos clears the gate.
	power := types.GenrePower{Zombie: 10, Alien: 45, Haunted: 45}
	in := RiftInput{
		RoomCode:    "ABCD",
		Genre:       types.GenreZombie,
		Step:        3,
		Scene:       riftScene(),
		ChoiceID:    "a",
		ChoiceLabel: "Charge the horde",
		NextSceneID: "left_wing",
		PlayerID:    "p1",
		Risky:       true,
	}

	out := engine.Evaluate(in, power, 5)
	assert.NotNil(t, out.Event)
	assert.Equal(t, types.RiftReroute, out.Event.Type)
	assert.NotEqual(t, "left_wing", out.NextSceneID)
	assert.Equal(t, "left_wing", out.Event.OriginalNextSceneID)
	assert.Equal(t, out.NextSceneID, out.Event.NextSceneID)
	assert.Equal(t, 100, powerSum(out.GenrePower))

	// Same inputs, same reroute target.
	again := engine.Evaluate(in, power, 5)
	assert.Equal(t, out.NextSceneID, again.NextSceneID)
	assert.Equal(t, out.Event.ID, again.Event.ID)
}

func TestEvaluateNeverReroutesCautiousChoice(t *testing.T) {
	engine := NewRiftEngine(config.DefaultConfig().Rift)
	power := types.GenrePower{Zombie: 10, Alien: 45, Haunted: 45}
	in := RiftInput{
		RoomCode:    "ABCD",
		Genre:       types.GenreZombie,
		Step:        3,
		Scene:       riftScene(),
		ChoiceID:    "c",
		ChoiceLabel: "Seal the door",
		NextSceneID: "holdout",
		PlayerID:    "p1",
		Risky:       false,
	}

	out := engine.Evaluate(in, power, 5)
	if out.Event != nil {
		assert.NotEqual(t, types.RiftReroute, out.Event.Type)
	}
	assert.Equal(t, "holdout", out.NextSceneID)
}

func TestEvaluateRerouteNeedsMinimumStep(t *testing.T) {
	engine := NewRiftEngine(config.DefaultConfig().Rift)
	power := types.GenrePower{Zombie: 10, Alien: 45, Haunted: 45}
	in := RiftInput{
		RoomCode:    "ABCD",
		Genre:       types.GenreZombie,
		Step:        1,
		Scene:       riftScene(),
		ChoiceID:    "a",
		ChoiceLabel: "Charge the horde",
		NextSceneID: "left_wing",
		PlayerID:    "p1",
		Risky:       true,
	}

	out := engine.Evaluate(in, power, 5)
	if out.Event != nil {
		assert.NotEqual(t, types.RiftReroute, out.Event.Type)
	}
	assert.Equal(t, "left_wing", out.NextSceneID)
}

func TestEvaluateSurgesOnEvenStepsOnly(t *testing.T) {
	engine := NewRiftEngine(config.DefaultConfig().Rift)
	power := types.GenrePower{Zombie: 70, Alien: 15, Haunted: 15}
	base := RiftInput{
		RoomCode:    "ABCD",
		Genre:       types.GenreZombie,
		Scene:       riftScene(),
		ChoiceID:    "c",
		ChoiceLabel: "Seal the door",
		NextSceneID: "holdout",
		PlayerID:    "p1",
	}

	even := base
	even.Step = 2
	out := engine.Evaluate(even, power, 1)
	assert.NotNil(t, out.Event)
	assert.Equal(t, types.RiftGenreSurge, out.Event.Type)
	assert.Equal(t, "holdout", out.NextSceneID)
	assert.Equal(t, 100, powerSum(out.GenrePower))

	odd := base
	odd.Step = 1
	quiet := engine.Evaluate(odd, power, 1)
	assert.Nil(t, quiet.Event)
}

func TestEvaluateFiresAtMostOneEvent(t *testing.T) {
	engine := NewRiftEngine(config.DefaultConfig().Rift)
	// Both triggers are armed: even step, dominant genre, high chaos, risky
	// choice. The reroute must win.
	power := types.GenrePower{Zombie: 8, Alien: 72, Haunted: 20}
	in := RiftInput{
		RoomCode:    "ABCD",
		Genre:       types.GenreZombie,
		Step:        4,
		Scene:       riftScene(),
		ChoiceID:    "a",
		ChoiceLabel: "Charge the horde",
		NextSceneID: "left_wing",
		PlayerID:    "p1",
		Timeout:     true,
		Risky:       true,
	}

	out := engine.Evaluate(in, power, 5)
	assert.NotNil(t, out.Event)
	assert.Equal(t, types.RiftReroute, out.Event.Type)
}
