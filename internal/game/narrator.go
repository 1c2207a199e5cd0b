package game

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/DeafWorld/story-clash/config"
	"github.com/DeafWorld/story-clash/internal/stablehash"
	"github.com/DeafWorld/story-clash/internal/types"
)

const maxNarrationLength = 140

var unsafeWordPattern = regexp.MustCompile(`(?i)\b(fuck|shit|bitch|asshole|nigger|faggot)\b`)

var sceneBank = map[types.NarrationTone][]string{
	types.ToneCalm: {
		"The air settles for a breath. {player} reads the room.",
		"A fragile calm hangs over the crew. {player} takes point.",
	},
	types.ToneUneasy: {
		"Something shifts just out of sight. {player}, your call.",
		"The room feels wrong in a new way. {player} steps in.",
	},
	types.ToneUrgent: {
		"Pressure climbs fast. {player} has seconds to decide.",
		"Heartbeat pace rises. {player} is on deck.",
	},
	types.ToneDesperate: {
		"No margin left. {player} moves or everyone pays.",
		"The edge is here. {player} must act now.",
	},
	types.ToneHopeful: {
		"A narrow opening appears. {player} can push it wider.",
		"The odds still bite, but {player} sees a line forward.",
	},
	types.ToneGrim: {
		"The silence feels heavy. {player} walks into it.",
		"The scene darkens. {player} braces for impact.",
	},
}

var choiceBank = map[types.NarrationTone][]string{
	types.ToneCalm:      {"{player} commits to {choice}.", "{player} keeps it steady with {choice}."},
	types.ToneUneasy:    {"{player} chooses {choice}, and the mood tilts.", "A careful gamble: {player} goes with {choice}."},
	types.ToneUrgent:    {"No hesitation. {player} locks in {choice}.", "Clock ticking, {player} fires off {choice}."},
	types.ToneDesperate: {"At the brink, {player} throws everything at {choice}.", "Under full pressure, {player} calls {choice}."},
	types.ToneHopeful:   {"The team leans in as {player} picks {choice}.", "Momentum swings when {player} selects {choice}."},
	types.ToneGrim:      {"{player} takes the hard road: {choice}.", "The cost is visible as {player} chooses {choice}."},
}

var timeoutBank = map[types.NarrationTone][]string{
	types.ToneCalm:      {"Silence wins the turn. Fate makes the move.", "No call in time. The story chooses for the crew."},
	types.ToneUneasy:    {"The clock steals the turn. Random fate steps in.", "Hesitation costs dearly. Chance decides this beat."},
	types.ToneUrgent:    {"Timer hit zero. Control slips to chaos.", "Too late. The room answers with a random move."},
	types.ToneDesperate: {"Time is up. Panic takes the wheel.", "The deadline snaps shut. Survival mode picks for you."},
	types.ToneHopeful:   {"A missed moment, but the story still moves.", "The turn times out. There is still a path ahead."},
	types.ToneGrim:      {"No decision landed. The dark made one anyway.", "The timer dies, and the story turns colder."},
}

var endingBank = map[types.EndingType][]string{
	types.EndingTriumph:  {"Against the odds, the crew carves out a win.", "The plan holds. Hope survives this chapter."},
	types.EndingSurvival: {"Barely breathing, but still standing. The crew lives on.", "It is not pretty, but the crew escapes the worst."},
	types.EndingDoom:     {"The night takes its payment. This run ends in ruin.", "The story closes hard. Nobody forgets this ending."},
}

// NarrationContext is everything a narrator line derives from.
type NarrationContext struct {
	Code        string
	Trigger     types.NarrationTrigger
	Genre       types.GenreID
	SceneID     string
	HistoryLen  int
	Tension     int
	PlayerID    string
	PlayerName  string
	ChoiceLabel string
	FreeText    string
	EndingType  types.EndingType
}

// LineGenerator is an optional text source for narrator lines. A generator
// gets a hard deadline via its context; failure or silence falls back to the
// local template banks.
type LineGenerator interface {
	GenerateLine(ctx context.Context, nc NarrationContext, tone types.NarrationTone) (string, error)
}

// Narrator produces the one-line banners pushed alongside scene updates.
// Output is deterministic for a given context unless a generator is wired.
type Narrator struct {
	cfg       config.NarratorConfig
	generator LineGenerator
}

func NewNarrator(cfg config.NarratorConfig, generator LineGenerator) *Narrator {
	return &Narrator{cfg: cfg, generator: generator}
}

// DeriveTone maps trigger, tension, and genre to a narration tone.
func DeriveTone(genre types.GenreID, tension int, trigger types.NarrationTrigger, ending types.EndingType) types.NarrationTone {
	if trigger == types.TriggerEnding {
		switch ending {
		case types.EndingTriumph:
			return types.ToneHopeful
		case types.EndingSurvival:
			return types.ToneUneasy
		}
		return types.ToneGrim
	}
	if trigger == types.TriggerTurnTimeout {
		if tension >= 4 {
			return types.ToneDesperate
		}
		return types.ToneUrgent
	}
	switch {
	case tension >= 5:
		return types.ToneDesperate
	case tension >= 4:
		return types.ToneUrgent
	case tension >= 3:
		return types.ToneUneasy
	}
	if genre == types.GenreHaunted {
		return types.ToneGrim
	}
	return types.ToneCalm
}

// Narrate renders one narrator line for the context.
func (n *Narrator) Narrate(nc NarrationContext) types.NarrationLine {
	tension := clampInt(nc.Tension, 1, 5)
	tone := DeriveTone(nc.Genre, tension, nc.Trigger, nc.EndingType)

	text := ""
	if n.cfg.GeneratorEnabled && n.generator != nil {
		text = n.generateWithDeadline(nc, tone)
	}
	if text == "" {
		text = n.templateLine(nc, tone)
	}

	player := normalizeSpacing(nc.PlayerName)
	if player == "" {
		player = "The crew"
	}
	if len(player) > 22 {
		player = strings.TrimSpace(player[:22])
	}
	choice := sanitizeChoiceEcho(nc.ChoiceLabel, nc.FreeText)

	text = strings.ReplaceAll(text, "{player}", player)
	text = strings.ReplaceAll(text, "{choice}", choice)
	text = trimToLength(normalizeSpacing(text), maxNarrationLength)

	now := time.Now()
	seed := narrationSeed(nc, tone)
	return types.NarrationLine{
		ID:           fmt.Sprintf("nar-%x", stablehash.Sum32(fmt.Sprintf("%s|%d", seed, now.UnixMilli()))),
		Text:         text,
		Tone:         tone,
		Trigger:      nc.Trigger,
		RoomCode:     nc.Code,
		SceneID:      nc.SceneID,
		PlayerID:     nc.PlayerID,
		TensionLevel: tension,
		Genre:        nc.Genre,
		EndingType:   nc.EndingType,
		CreatedAt:    now,
	}
}

func (n *Narrator) generateWithDeadline(nc NarrationContext, tone types.NarrationTone) string {
	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.GeneratorDeadline())
	defer cancel()

	line, err := n.generator.GenerateLine(ctx, nc, tone)
	if err != nil {
		return ""
	}
	line = normalizeSpacing(line)
	if line == "" || unsafeWordPattern.MatchString(line) {
		return ""
	}
	return line
}

func (n *Narrator) templateLine(nc NarrationContext, tone types.NarrationTone) string {
	seed := narrationSeed(nc, tone)
	switch nc.Trigger {
	case types.TriggerSceneEnter:
		return stablehash.PickString(sceneBank[tone], seed)
	case types.TriggerChoiceSubmitted:
		return stablehash.PickString(choiceBank[tone], seed)
	case types.TriggerTurnTimeout:
		return stablehash.PickString(timeoutBank[tone], seed)
	case types.TriggerEnding:
		ending := nc.EndingType
		if ending == "" {
			ending = types.EndingDoom
		}
		return stablehash.PickString(endingBank[ending], seed)
	}
	return "The story moves."
}

func narrationSeed(nc NarrationContext, tone types.NarrationTone) string {
	return strings.Join([]string{
		nc.Code,
		orNone(nc.SceneID),
		fmt.Sprintf("%d", nc.HistoryLen),
		string(nc.Trigger),
		string(tone),
		orNone(string(nc.Genre)),
		orNone(string(nc.EndingType)),
		orNone(nc.PlayerID),
	}, "|")
}

func orNone(v string) string {
	if v == "" {
		return "none"
	}
	return v
}

var (
	narrationSpacing = regexp.MustCompile(`\s+`)
	echoAllowed      = regexp.MustCompile(`[^a-zA-Z0-9 ,.?!:-]`)
)

func normalizeSpacing(text string) string {
	return strings.TrimSpace(narrationSpacing.ReplaceAllString(text, " "))
}

func trimToLength(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimRight(string(runes[:max-1]), " ") + "…"
}

// sanitizeChoiceEcho prepares a choice label or free text for quoting back
// inside a narrator line. Free text wins when present.
func sanitizeChoiceEcho(choiceLabel, freeText string) string {
	candidate := choiceLabel
	if strings.TrimSpace(freeText) != "" {
		candidate = freeText
	}
	if candidate == "" {
		return "a risky call"
	}

	normalized := normalizeSpacing(candidate)
	normalized = strings.NewReplacer(`"`, "", "'", "", "`", "").Replace(normalized)
	normalized = echoAllowed.ReplaceAllString(normalized, "")
	if len(normalized) > 52 {
		normalized = strings.TrimSpace(normalized[:52])
	}

	if normalized == "" {
		return "a risky call"
	}
	if unsafeWordPattern.MatchString(normalized) {
		return "an unspoken move"
	}
	return normalized
}
