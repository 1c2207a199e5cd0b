package game

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/DeafWorld/story-clash/config"
	"github.com/DeafWorld/story-clash/internal/types"
)

func TestDeriveTone(t *testing.T) {
	assert.Equal(t, types.ToneCalm, DeriveTone(types.GenreZombie, 1, types.TriggerSceneEnter, ""))
	assert.Equal(t, types.ToneGrim, DeriveTone(types.GenreHaunted, 1, types.TriggerSceneEnter, ""))
	assert.Equal(t, types.ToneUneasy, DeriveTone(types.GenreZombie, 3, types.TriggerSceneEnter, ""))
	assert.Equal(t, types.ToneUrgent, DeriveTone(types.GenreZombie, 4, types.TriggerSceneEnter, ""))
	assert.Equal(t, types.ToneDesperate, DeriveTone(types.GenreZombie, 5, types.TriggerSceneEnter, ""))

	assert.Equal(t, types.ToneUrgent, DeriveTone(types.GenreZombie, 2, types.TriggerTurnTimeout, ""))
	assert.Equal(t, types.ToneDesperate, DeriveTone(types.GenreZombie, 5, types.TriggerTurnTimeout, ""))

	assert.Equal(t, types.ToneHopeful, DeriveTone(types.GenreAlien, 3, types.TriggerEnding, types.EndingTriumph))
	assert.Equal(t, types.ToneUneasy, DeriveTone(types.GenreAlien, 3, types.TriggerEnding, types.EndingSurvival))
	assert.Equal(t, types.ToneGrim, DeriveTone(types.GenreAlien, 3, types.TriggerEnding, types.EndingDoom))
}

func TestNarrateIsDeterministicForContext(t *testing.T) {
	narrator := NewNarrator(config.DefaultConfig().Narrator, nil)
	nc := NarrationContext{
		Code:       "ABCD",
		Trigger:    types.TriggerSceneEnter,
		Genre:      types.GenreZombie,
		SceneID:    "mall_siege",
		HistoryLen: 2,
		Tension:    3,
		PlayerID:   "p1",
		PlayerName: "Maya",
	}

	first := narrator.Narrate(nc)
	second := narrator.Narrate(nc)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Tone, second.Tone)
	assert.Contains(t, first.Text, "Maya")
	assert.NotContains(t, first.Text, "{player}")
}

func TestNarrateSubstitutesChoiceEcho(t *testing.T) {
	narrator := NewNarrator(config.DefaultConfig().Narrator, nil)
	line := narrator.Narrate(NarrationContext{
		Code:        "ABCD",
		Trigger:     types.TriggerChoiceSubmitted,
		Genre:       types.GenreZombie,
		SceneID:     "mall_siege",
		Tension:     2,
		PlayerName:  "Maya",
		ChoiceLabel: "Barricade the doors",
	})
	assert.Contains(t, line.Text, "Barricade the doors")
	assert.NotContains(t, line.Text, "{choice}")
}

func TestNarrateMasksProfaneEcho(t *testing.T) {
	narrator := NewNarrator(config.DefaultConfig().Narrator, nil)
	line := narrator.Narrate(NarrationContext{
		Code:       "ABCD",
		Trigger:    types.TriggerChoiceSubmitted,
		Genre:      types.GenreZombie,
		SceneID:    "mall_siege",
		Tension:    2,
		PlayerName: "Maya",
		FreeText:   "fuck the horde",
	})
	assert.Contains(t, line.Text, "an unspoken move")
	assert.NotContains(t, strings.ToLower(line.Text), "fuck")
}

func TestNarrateCapsLineLength(t *testing.T) {
	narrator := NewNarrator(config.DefaultConfig().Narrator, nil)
	line := narrator.Narrate(NarrationContext{
		Code:       "ABCD",
		Trigger:    types.TriggerChoiceSubmitted,
		Genre:      types.GenreHaunted,
		SceneID:    "mirror_gallery",
		Tension:    5,
		PlayerName: strings.Repeat("Long Name ", 10),
		FreeText:   strings.Repeat("circle the gallery and check every mirror twice ", 4),
	})
	assert.LessOrEqual(t, utf8.RuneCountInString(line.Text), 140)
}

func TestNarrateFallsBackWhenNoPlayer(t *testing.T) {
	narrator := NewNarrator(config.DefaultConfig().Narrator, nil)
	line := narrator.Narrate(NarrationContext{
		Code:    "ABCD",
		Trigger: types.TriggerSceneEnter,
		Genre:   types.GenreZombie,
		SceneID: "start",
		Tension: 1,
	})
	assert.Contains(t, line.Text, "The crew")
}

func TestNarrateEndingBank(t *testing.T) {
	narrator := NewNarrator(config.DefaultConfig().Narrator, nil)
	line := narrator.Narrate(NarrationContext{
		Code:       "ABCD",
		Trigger:    types.TriggerEnding,
		Genre:      types.GenreZombie,
		SceneID:    "ending_survival",
		Tension:    3,
		EndingType: types.EndingSurvival,
	})
	assert.Equal(t, types.ToneUneasy, line.Tone)
	assert.Contains(t, endingBank[types.EndingSurvival], line.Text)
}

type stubGenerator struct {
	line string
	err  error
}

func (s *stubGenerator) GenerateLine(_ context.Context, _ NarrationContext, _ types.NarrationTone) (string, error) {
	return s.line, s.err
}

func TestNarrateUsesGeneratorWhenEnabled(t *testing.T) {
	cfg := config.DefaultConfig().Narrator
	cfg.GeneratorEnabled = true
	narrator := NewNarrator(cfg, &stubGenerator{line: "The rift hums a warning for {player}."})

	line := narrator.Narrate(NarrationContext{
		Code:       "ABCD",
		Trigger:    types.TriggerSceneEnter,
		Genre:      types.GenreZombie,
		SceneID:    "start",
		Tension:    1,
		PlayerName: "Maya",
	})
	assert.Equal(t, "The rift hums a warning for Maya.", line.Text)
}

func TestNarrateFallsBackOnGeneratorFailure(t *testing.T) {
	cfg := config.DefaultConfig().Narrator
	cfg.GeneratorEnabled = true

	failing := NewNarrator(cfg, &stubGenerator{err: errors.New("upstream down")})
	line := failing.Narrate(NarrationContext{
		Code:    "ABCD",
		Trigger: types.TriggerSceneEnter,
		Genre:   types.GenreZombie,
		SceneID: "start",
		Tension: 1,
	})
	assert.NotEmpty(t, line.Text)

	profane := NewNarrator(cfg, &stubGenerator{line: "shit happens"})
	clean := profane.Narrate(NarrationContext{
		Code:    "ABCD",
		Trigger: types.TriggerSceneEnter,
		Genre:   types.GenreZombie,
		SceneID: "start",
		Tension: 1,
	})
	assert.NotContains(t, clean.Text, "shit")
}
