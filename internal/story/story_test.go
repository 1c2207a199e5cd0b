package story

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DeafWorld/story-clash/internal/types"
)

func TestBuiltinTreesAreValid(t *testing.T) {
	catalog := NewCatalog()

	for _, genre := range types.Genres {
		tree := catalog.Story(genre)
		assert.NotNil(t, tree, "missing tree for genre %s", genre)
		assert.NoError(t, Validate(tree), "genre %s", genre)
		assert.NotEmpty(t, tree.Title)
	}
}

func TestBuiltinTreesReachAllEndingTypes(t *testing.T) {
	catalog := NewCatalog()

	for _, genre := range types.Genres {
		tree := catalog.Story(genre)
		found := map[types.EndingType]bool{}
		for i := range tree.Scenes {
			if tree.Scenes[i].Ending {
				found[tree.Scenes[i].EndingType] = true
			}
		}
		assert.True(t, found[types.EndingTriumph], "genre %s has no triumph ending", genre)
		assert.True(t, found[types.EndingSurvival], "genre %s has no survival ending", genre)
		assert.True(t, found[types.EndingDoom], "genre %s has no doom ending", genre)
	}
}

func TestZombieFirstChoicePathEndsInSurvival(t *testing.T) {
	catalog := NewCatalog()

	scene := catalog.StartScene(types.GenreZombie)
	assert.NotNil(t, scene)

	steps := 0
	for !scene.Ending {
		assert.NotEmpty(t, scene.Choices)
		scene = catalog.Scene(types.GenreZombie, scene.Choices[0].NextID)
		assert.NotNil(t, scene)
		steps++
	}

	assert.Equal(t, 4, steps)
	assert.Equal(t, "ending_survival", scene.ID)
	assert.Equal(t, types.EndingSurvival, scene.EndingType)
}

func TestChoiceByIDFallsBackToFirstChoice(t *testing.T) {
	scene := &types.Scene{
		ID: "s",
		Choices: []types.Choice{
			{ID: "a", Label: "First", NextID: "x"},
			{ID: "b", Label: "Second", NextID: "y"},
		},
	}

	assert.Equal(t, "b", ChoiceByID(scene, "b").ID)
	assert.Equal(t, "a", ChoiceByID(scene, "nope").ID)
	assert.Nil(t, ChoiceByID(&types.Scene{ID: "empty"}, "a"))
}

func TestNeutralNextIDPicksMiddleChoice(t *testing.T) {
	scene := &types.Scene{
		ID: "s",
		Choices: []types.Choice{
			{ID: "a", NextID: "left"},
			{ID: "b", NextID: "middle"},
			{ID: "c", NextID: "right"},
		},
	}
	assert.Equal(t, "middle", NeutralNextID(scene))

	two := &types.Scene{
		ID: "s2",
		Choices: []types.Choice{
			{ID: "a", NextID: "left"},
			{ID: "b", NextID: "right"},
		},
	}
	assert.Equal(t, "right", NeutralNextID(two))
}

func TestMapFreeChoiceMatchesWholeWords(t *testing.T) {
	keywords := map[string]string{
		"fight|weapon": "armory",
		"run|sprint":   "exit",
		"default":      "hall",
	}

	assert.Equal(t, "armory", MapFreeChoice("we FIGHT them here", keywords))
	assert.Equal(t, "exit", MapFreeChoice("sprint!", keywords))
	// Substrings must not match.
	assert.Equal(t, "hall", MapFreeChoice("the firefighter runs", keywords))
	assert.Equal(t, "hall", MapFreeChoice("do something else", keywords))
}

func TestFreeChoiceNextIDFallbackOrder(t *testing.T) {
	scene := &types.Scene{
		ID: "s",
		Choices: []types.Choice{
			{ID: "a", NextID: "left"},
			{ID: "b", NextID: "middle"},
			{ID: "c", NextID: "right"},
		},
		FreeChoiceTargetID: "secret",
		FreeChoiceKeywords: map[string]string{"whisper": "vault"},
	}

	assert.Equal(t, "vault", FreeChoiceNextID(scene, "a whisper in the dark"))
	assert.Equal(t, "secret", FreeChoiceNextID(scene, "no keyword here"))

	noTarget := &types.Scene{
		ID:      "s2",
		Choices: scene.Choices,
	}
	assert.Equal(t, "middle", FreeChoiceNextID(noTarget, "anything"))
}

func TestValidateRejectsBrokenTrees(t *testing.T) {
	assert.Error(t, Validate(&types.StoryTree{}))

	noStart := &types.StoryTree{Scenes: []types.Scene{
		{ID: "only", Ending: true, EndingType: types.EndingDoom},
	}}
	assert.Error(t, Validate(noStart))

	danglingChoice := &types.StoryTree{Scenes: []types.Scene{
		{ID: "start", Choices: []types.Choice{{ID: "a", NextID: "missing"}}},
	}}
	assert.Error(t, Validate(danglingChoice))

	deadEnd := &types.StoryTree{Scenes: []types.Scene{
		{ID: "start"},
	}}
	assert.Error(t, Validate(deadEnd))
}
