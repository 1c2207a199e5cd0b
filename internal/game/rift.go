package game

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/DeafWorld/story-clash/config"
	"github.com/DeafWorld/story-clash/internal/stablehash"
	"github.com/DeafWorld/story-clash/internal/types"
)

var genreKeywords = map[types.GenreID][]string{
	types.GenreZombie: {
		"fight", "charge", "weapon", "swarm", "horde", "barricade",
		"crowbar", "flare", "bleed", "outbreak", "escape",
	},
	types.GenreAlien: {
		"reactor", "uplink", "beacon", "fleet", "drone", "signal",
		"comms", "code", "relay", "plasma", "orbit",
	},
	types.GenreHaunted: {
		"spirit", "whisper", "mirror", "crypt", "ritual", "ghost",
		"chapel", "candles", "lullaby", "vault", "manor",
	},
}

// RiftEngine drives the deterministic procedural event layer: genre power
// drift, chaos tracking, scene reroutes, and genre surges. Every decision is
// a pure function of room state, so replaying the same turns reproduces the
// same events.
type RiftEngine struct {
	cfg config.RiftConfig
}

func NewRiftEngine(cfg config.RiftConfig) *RiftEngine {
	return &RiftEngine{cfg: cfg}
}

// InitialGenrePower returns the pre-selection power split.
func InitialGenrePower() types.GenrePower {
	return types.GenrePower{Zombie: 34, Alien: 33, Haunted: 33}
}

// BoostedGenrePower applies the genre-selection boost: the chosen genre
// gains 18 and the others lose 9 before renormalization.
func BoostedGenrePower(selected types.GenreID) types.GenrePower {
	shift := map[types.GenreID]int{}
	for _, g := range types.Genres {
		if g == selected {
			shift[g] = 18
		} else {
			shift[g] = -9
		}
	}
	return ApplyGenrePowerShift(InitialGenrePower(), shift)
}

// ApplyGenrePowerShift adds a shift to each weight, floors at 1, and
// renormalizes so the weights sum to exactly 100. Rounding residue goes to
// the strongest genres first.
func ApplyGenrePowerShift(current types.GenrePower, shift map[types.GenreID]int) types.GenrePower {
	raw := make([]int, len(types.Genres))
	for i, g := range types.Genres {
		v := current.Get(g) + shift[g]
		if v < 1 {
			v = 1
		}
		raw[i] = v
	}

	total := 0
	for _, v := range raw {
		total += v
	}

	normalized := make([]int, len(raw))
	sum := 0
	for i, v := range raw {
		normalized[i] = int(math.Round(float64(v) / float64(total) * 100))
		sum += normalized[i]
	}

	order := make([]int, len(raw))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return raw[order[a]] > raw[order[b]]
	})

	diff := 100 - sum
	cursor := 0
	for diff != 0 {
		idx := order[cursor%len(order)]
		if diff > 0 {
			normalized[idx]++
			diff--
		} else if normalized[idx] > 1 {
			normalized[idx]--
			diff++
		} else {
			cursor++
			continue
		}
		cursor++
	}

	var out types.GenrePower
	for i, g := range types.Genres {
		out.Set(g, normalized[i])
	}
	return out
}

// DominantGenre returns the strongest genre, preferring canonical order on
// ties.
func DominantGenre(power types.GenrePower) types.GenreID {
	best := types.Genres[0]
	for _, g := range types.Genres[1:] {
		if power.Get(g) > power.Get(best) {
			best = g
		}
	}
	return best
}

func dominantGenreScore(power types.GenrePower) int {
	return power.Get(DominantGenre(power))
}

func genreSpread(power types.GenrePower) int {
	min, max := power.Get(types.Genres[0]), power.Get(types.Genres[0])
	for _, g := range types.Genres[1:] {
		v := power.Get(g)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return max - min
}

func scoreGenreText(text string, genre types.GenreID) int {
	lower := strings.ToLower(text)
	score := 0
	for _, keyword := range genreKeywords[genre] {
		if strings.Contains(lower, keyword) {
			score++
		}
	}
	return score
}

// ChoiceGenreShift derives the per-turn power drift from the wording of the
// resolved scene and choice. Every genre pays a small decay; the room's
// selected genre, the keyword-dominant genre, and the runner-up earn it
// back. Timeouts bleed power toward the off-genre.
func ChoiceGenreShift(selected types.GenreID, sceneText, choiceLabel string, timeout bool) map[types.GenreID]int {
	combined := sceneText + " " + choiceLabel
	scores := map[types.GenreID]int{}
	for _, g := range types.Genres {
		scores[g] = scoreGenreText(combined, g)
	}

	biased := types.GenrePower{}
	for _, g := range types.Genres {
		bonus := 0
		if g == selected {
			bonus = 1
		}
		biased.Set(g, scores[g]+bonus)
	}
	primary := DominantGenre(biased)

	var secondary types.GenreID
	bestScore := -1
	for _, g := range types.Genres {
		if g == primary {
			continue
		}
		if scores[g] > bestScore {
			secondary = g
			bestScore = scores[g]
		}
	}

	shift := map[types.GenreID]int{}
	for _, g := range types.Genres {
		shift[g] = -2
	}
	shift[selected] += 4
	shift[primary] += 7
	shift[secondary] += 2

	if timeout {
		bias := selected
		for _, g := range types.Genres {
			if g != primary {
				bias = g
				break
			}
		}
		shift[bias] += 4
	}
	return shift
}

// ComputeChaosLevel derives chaos from how far the room has drifted off its
// selected genre: spillover into the other genres, spread between the
// extremes, current tension, and a timeout penalty.
func ComputeChaosLevel(power types.GenrePower, selected types.GenreID, tension int, timeout bool, bonus int) int {
	if selected == "" {
		return 0
	}
	spillover := float64(100 - power.Get(selected))
	spread := float64(genreSpread(power))
	tensionTerm := float64(clampInt(tension, 1, 5) * 8)
	timeoutTerm := 0.0
	if timeout {
		timeoutTerm = 10
	}
	chaos := spillover*0.5 + spread*0.25 + tensionTerm + timeoutTerm + float64(bonus)
	return clampInt(int(math.Round(chaos)), 0, 100)
}

// RiftInput is one resolved turn as the rift engine sees it.
type RiftInput struct {
	RoomCode    string
	Genre       types.GenreID
	Step        int
	Scene       *types.Scene
	ChoiceID    string
	ChoiceLabel string
	NextSceneID string
	PlayerID    string
	Timeout     bool
	Risky       bool
}

// RiftOutcome is the engine's verdict for one turn. NextSceneID is the
// (possibly rerouted) scene to enter; GenrePower and ChaosLevel are the
// updated room values.
type RiftOutcome struct {
	Event       *types.RiftEventRecord
	NextSceneID string
	GenrePower  types.GenrePower
	ChaosLevel  int
}

// Evaluate applies the per-turn genre drift and then checks the two
// procedural triggers. At most one event fires per turn; a reroute outranks
// a surge.
func (e *RiftEngine) Evaluate(in RiftInput, power types.GenrePower, tension int) RiftOutcome {
	power = ApplyGenrePowerShift(power, ChoiceGenreShift(in.Genre, in.Scene.Text, in.ChoiceLabel, in.Timeout))
	chaos := ComputeChaosLevel(power, in.Genre, tension, in.Timeout, 0)

	if event, rerouted, shifted, nextChaos := e.tryReroute(in, power, chaos); event != nil {
		return RiftOutcome{Event: event, NextSceneID: rerouted, GenrePower: shifted, ChaosLevel: nextChaos}
	}
	if event, shifted, nextChaos := e.trySurge(in, power, chaos); event != nil {
		return RiftOutcome{Event: event, NextSceneID: in.NextSceneID, GenrePower: shifted, ChaosLevel: nextChaos}
	}
	return RiftOutcome{NextSceneID: in.NextSceneID, GenrePower: power, ChaosLevel: chaos}
}

func (e *RiftEngine) tryReroute(in RiftInput, power types.GenrePower, chaos int) (*types.RiftEventRecord, string, types.GenrePower, int) {
	if in.Step < e.cfg.RerouteMinStep || chaos < e.cfg.RerouteChaosThreshold {
		return nil, "", power, chaos
	}
	if len(in.Scene.Choices) < 2 {
		return nil, "", power, chaos
	}
	if !in.Risky && !in.Timeout {
		return nil, "", power, chaos
	}

	var alternatives []types.Choice
	for _, c := range in.Scene.Choices {
		if c.ID != in.ChoiceID && c.NextID != in.NextSceneID {
			alternatives = append(alternatives, c)
		}
	}
	if len(alternatives) == 0 {
		return nil, "", power, chaos
	}

	seed := fmt.Sprintf("%s:%s:%d:reroute", in.RoomCode, in.Scene.ID, in.Step)
	selected := alternatives[stablehash.Pick(len(alternatives), seed)]

	ranked := make([]types.GenreID, len(types.Genres))
	copy(ranked, types.Genres)
	sort.SliceStable(ranked, func(a, b int) bool {
		return power.Get(ranked[a]) > power.Get(ranked[b])
	})
	shifted := ApplyGenrePowerShift(power, map[types.GenreID]int{
		ranked[0]: -8,
		ranked[1]: 6,
		ranked[2]: 6,
	})

	nextChaos := clampInt(chaos+e.cfg.RerouteChaosDelta, 0, 100)
	event := &types.RiftEventRecord{
		ID:                  fmt.Sprintf("rift-reroute-%s-%d", in.Scene.ID, in.Step),
		Type:                types.RiftReroute,
		Title:               "Reality Fracture",
		Description:         fmt.Sprintf("The Rift tears open and reroutes fate toward %q.", selected.Label),
		Step:                in.Step,
		SceneID:             in.Scene.ID,
		PlayerID:            in.PlayerID,
		ChoiceID:            in.ChoiceID,
		OriginalNextSceneID: in.NextSceneID,
		NextSceneID:         selected.NextID,
		ChaosLevel:          nextChaos,
		CreatedAt:           time.Now(),
	}
	return event, selected.NextID, shifted, nextChaos
}

func (e *RiftEngine) trySurge(in RiftInput, power types.GenrePower, chaos int) (*types.RiftEventRecord, types.GenrePower, int) {
	if in.Step%2 != 0 {
		return nil, power, chaos
	}
	dominant := DominantGenre(power)
	if power.Get(dominant) < e.cfg.SurgePowerThreshold {
		return nil, power, chaos
	}

	strength := clampInt(int(math.Round(float64(dominantGenreScore(power))/7)), 8, 14)
	shift := map[types.GenreID]int{}
	for _, g := range types.Genres {
		if g == dominant {
			shift[g] = strength
		} else {
			shift[g] = -int(math.Round(float64(strength) / 2))
		}
	}
	shifted := ApplyGenrePowerShift(power, shift)

	nextChaos := clampInt(chaos+e.cfg.SurgeChaosDelta, 0, 100)
	event := &types.RiftEventRecord{
		ID:          fmt.Sprintf("rift-surge-%s-%d", in.Scene.ID, in.Step),
		Type:        types.RiftGenreSurge,
		Title:       fmt.Sprintf("Rift Surge: %s", genreTitle(dominant)),
		Description: fmt.Sprintf("%s pressure surges and warps the room's momentum.", genreTitle(dominant)),
		Step:        in.Step,
		SceneID:     in.Scene.ID,
		PlayerID:    in.PlayerID,
		ChoiceID:    in.ChoiceID,
		TargetGenre: dominant,
		ChaosLevel:  nextChaos,
		CreatedAt:   time.Now(),
	}
	return event, shifted, nextChaos
}

func genreTitle(genre types.GenreID) string {
	switch genre {
	case types.GenreZombie:
		return "Outbreak"
	case types.GenreAlien:
		return "Invasion"
	}
	return "Haunting"
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
