package game

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/DeafWorld/story-clash/internal/stablehash"
	"github.com/DeafWorld/story-clash/internal/types"
)

const (
	maxWorldTimeline = 60
	maxThreads       = 30
)

// NewWorldState seeds the backdrop every room starts from: three factions
// with strained relationships, four dwindling resources, and five tension
// tracks at zero.
func NewWorldState() *types.WorldState {
	return &types.WorldState{
		Factions: map[string]*types.Faction{
			"survivors": {
				Loyalty: 50,
				Power:   30,
				Traits:  []string{"desperate", "paranoid"},
				Relationships: map[string]int{
					"scientists": -20,
					"military":   15,
				},
			},
			"scientists": {
				Loyalty: 70,
				Power:   40,
				Leader:  "Dr. Chen",
				Traits:  []string{"rational", "secretive"},
				Relationships: map[string]int{
					"survivors": -20,
					"military":   30,
				},
			},
			"military": {
				Loyalty: 80,
				Power:   60,
				Leader:  "Commander Shaw",
				Traits:  []string{"authoritarian", "pragmatic"},
				Relationships: map[string]int{
					"survivors":  15,
					"scientists": 30,
				},
			},
		},
		Resources: map[string]*types.Resource{
			"food":       {Amount: 45, Trend: types.TrendDeclining, CrisisPoint: 20},
			"medicine":   {Amount: 30, Trend: types.TrendStable, CrisisPoint: 15},
			"ammunition": {Amount: 60, Trend: types.TrendDeclining, CrisisPoint: 25},
			"fuel":       {Amount: 20, Trend: types.TrendCritical, CrisisPoint: 10},
		},
		Scars: []string{},
		Tensions: map[string]int{
			"food_shortage":    0,
			"faction_conflict": 0,
			"external_threat":  0,
			"morale_crisis":    0,
			"disease_outbreak": 0,
		},
		Timeline: []types.WorldEvent{},
	}
}

// WorldEngine evolves a room's world state and narrative threads one
// resolved turn at a time.
type WorldEngine struct{}

func NewWorldEngine() *WorldEngine {
	return &WorldEngine{}
}

// EvolveInput is one resolved turn as the world engine sees it.
type EvolveInput struct {
	RoomCode    string
	Step        int
	Scene       *types.Scene
	ChoiceLabel string
	Tension     int
	ChaosLevel  int
	Timeout     bool
	Profile     ChoiceProfile
	EndingType  types.EndingType
}

// EvolveResult carries the thread and chaos updates back to the caller. The
// world state itself is mutated in place.
type EvolveResult struct {
	Threads        []*types.NarrativeThread
	ActiveThreadID string
	ChaosLevel     int
	Events         []types.WorldEvent
}

// Evolve runs one world tick, applies the choice's consequences, emits
// crisis and conflict events, and re-prioritizes narrative threads.
func (e *WorldEngine) Evolve(world *types.WorldState, threads []*types.NarrativeThread, in EvolveInput) EvolveResult {
	now := time.Now()

	e.tick(world)
	e.applyChoice(world, in)

	events := e.crisisEvents(world, in.RoomCode, in.Step, now)
	if conflict := e.factionConflictEvent(world, in.RoomCode, in.Step, now); conflict != nil {
		events = append(events, *conflict)
	}
	if overflow := e.tensionOverflowEvent(world, in.RoomCode, in.Step, now); overflow != nil {
		events = append(events, *overflow)
	}
	appendWorldTimeline(world, events)

	for _, thread := range threads {
		thread.ScenesSinceMention++
	}

	if in.Profile.Investigative {
		threads = ensureThread(threads, threadSeed{
			ID:       fmt.Sprintf("thread-mystery-%s", in.Scene.ID),
			Type:     types.ThreadMystery,
			Priority: 8,
			SceneID:  in.Scene.ID,
			Detail:   "A hidden layer of the Rift was uncovered.",
			Clue:     in.ChoiceLabel,
			Now:      now,
		})
	}
	if in.Profile.Cooperative {
		threads = ensureThread(threads, threadSeed{
			ID:       "thread-alliance-balance",
			Type:     types.ThreadRelationship,
			Priority: 6,
			SceneID:  in.Scene.ID,
			Detail:   "Crew alliances shifted under pressure.",
			Clue:     "Trust was negotiated in real time.",
			Now:      now,
		})
	}
	for _, event := range events {
		switch event.Type {
		case "resource_crisis":
			threads = ensureThread(threads, threadSeed{
				ID:       fmt.Sprintf("thread-%s", event.ID),
				Type:     types.ThreadSurvival,
				Priority: 9,
				SceneID:  in.Scene.ID,
				Detail:   event.Detail,
				Clue:     event.Title,
				Now:      now,
			})
		case "faction_conflict":
			threads = ensureThread(threads, threadSeed{
				ID:       "thread-faction-war",
				Type:     types.ThreadConflict,
				Priority: 9,
				SceneID:  in.Scene.ID,
				Detail:   event.Detail,
				Clue:     "Rift diplomacy is failing.",
				Now:      now,
			})
		case "tension_overflow":
			threads = ensureThread(threads, threadSeed{
				ID:       "thread-timeline-fracture",
				Type:     types.ThreadQuest,
				Priority: 10,
				SceneID:  in.Scene.ID,
				Detail:   event.Detail,
				Clue:     "Reality is no longer stable.",
				Now:      now,
			})
		}
	}

	if len(threads) > maxThreads {
		threads = threads[len(threads)-maxThreads:]
	}

	activeThreadID := ""
	if active := topActiveThread(threads); active != nil {
		active.ScenesSinceMention = 0
		active.LastMention = now
		activeThreadID = active.ID
	}

	if in.EndingType != "" {
		world.Meta.GamesPlayed++
		world.Meta.MostCommonEnding = in.EndingType
		world.Meta.RarePath = in.ChaosLevel >= 70 || hasEventType(events, "tension_overflow")
	}

	pressure := world.Tensions["external_threat"] +
		world.Tensions["faction_conflict"] +
		world.Tensions["food_shortage"] +
		world.Tensions["morale_crisis"]
	evolvedChaos := clampInt(int(math.Round(float64(in.ChaosLevel)*0.7+float64(pressure)*0.08+float64(len(events))*3)), 0, 100)

	return EvolveResult{
		Threads:        threads,
		ActiveThreadID: activeThreadID,
		ChaosLevel:     evolvedChaos,
		Events:         events,
	}
}

// tick decays trending resources and tracks the food shortage tension.
func (e *WorldEngine) tick(world *types.WorldState) {
	for _, resource := range world.Resources {
		switch resource.Trend {
		case types.TrendDeclining:
			resource.Amount = clampInt(resource.Amount-1, 0, 100)
		case types.TrendCritical:
			resource.Amount = clampInt(resource.Amount-2, 0, 100)
		}
	}
	if world.Resources["food"].Amount < 30 {
		world.Tensions["food_shortage"] = clampInt(world.Tensions["food_shortage"]+3, 0, 100)
	} else {
		world.Tensions["food_shortage"] = clampInt(world.Tensions["food_shortage"]-2, 0, 100)
	}
}

func (e *WorldEngine) applyChoice(world *types.WorldState, in EvolveInput) {
	p := in.Profile

	foodDelta, ammoDelta := -2, -1
	if p.Cooperative {
		foodDelta = -1
	}
	if p.Risky {
		ammoDelta = -2
	}
	medicineDelta := 0
	if p.Moral {
		medicineDelta = -1
	}
	adjustResource(world, "food", foodDelta)
	adjustResource(world, "medicine", medicineDelta)
	adjustResource(world, "ammunition", ammoDelta)
	adjustResource(world, "fuel", ammoDelta)

	if p.Cooperative {
		adjustLoyalty(world, "survivors", 4)
		adjustRelationship(world, "military", "survivors", 3)
		adjustTension(world, "faction_conflict", -5)
		adjustTension(world, "morale_crisis", -3)
	} else {
		adjustLoyalty(world, "survivors", -2)
		adjustTension(world, "faction_conflict", 4)
	}

	if p.Moral {
		adjustLoyalty(world, "scientists", 3)
		adjustRelationship(world, "survivors", "scientists", 2)
	} else {
		adjustTension(world, "morale_crisis", 3)
	}

	if p.Risky {
		adjustTension(world, "external_threat", 7)
	} else {
		adjustTension(world, "external_threat", 2)
	}
	if p.Emotional {
		adjustTension(world, "disease_outbreak", 2)
	}
	if in.Timeout {
		adjustTension(world, "morale_crisis", 8)
	}
	adjustTension(world, "external_threat", clampInt(in.Tension, 1, 5)*2)

	for _, resource := range world.Resources {
		switch {
		case resource.Amount <= resource.CrisisPoint:
			resource.Trend = types.TrendCritical
		case resource.Amount <= resource.CrisisPoint+10:
			resource.Trend = types.TrendDeclining
		default:
			resource.Trend = types.TrendStable
		}
	}
}

// crisisEvents emits one event per resource the first time it crosses its
// crisis point; scars keep repeats out.
func (e *WorldEngine) crisisEvents(world *types.WorldState, roomCode string, step int, now time.Time) []types.WorldEvent {
	var events []types.WorldEvent
	for _, resourceID := range sortedKeys(world.Resources) {
		resource := world.Resources[resourceID]
		if resource.Amount > resource.CrisisPoint {
			continue
		}
		scarID := "crisis_" + resourceID
		if containsString(world.Scars, scarID) {
			continue
		}
		world.Scars = append(world.Scars, scarID)
		events = append(events, types.WorldEvent{
			ID:        fmt.Sprintf("evt-%s-%d-%s-crisis", roomCode, step, resourceID),
			Type:      "resource_crisis",
			Title:     fmt.Sprintf("%s crisis", resourceID),
			Detail:    fmt.Sprintf("%s dropped to %d. Crew stability is collapsing.", strings.ToUpper(resourceID), resource.Amount),
			Severity:  crisisSeverity(resource.Amount, resource.CrisisPoint),
			Source:    "world",
			CreatedAt: now,
		})
	}
	return events
}

func (e *WorldEngine) factionConflictEvent(world *types.WorldState, roomCode string, step int, now time.Time) *types.WorldEvent {
	type pair struct {
		a, b  string
		value int
	}
	var pairs []pair
	for _, name := range sortedKeys(world.Factions) {
		faction := world.Factions[name]
		for _, other := range sortedKeys(faction.Relationships) {
			pairs = append(pairs, pair{a: name, b: other, value: faction.Relationships[other]})
		}
	}
	if len(pairs) == 0 {
		return nil
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].value < pairs[j].value })
	worst := pairs[0]
	if worst.value > -40 {
		return nil
	}
	seed := fmt.Sprintf("%s:%d:faction:%s:%s", roomCode, step, worst.a, worst.b)
	if stablehash.Sum32(seed)%100 >= 35 {
		return nil
	}

	severity := types.SeverityHigh
	if worst.value <= -70 {
		severity = types.SeverityCritical
	}
	return &types.WorldEvent{
		ID:        fmt.Sprintf("evt-%s-%d-faction-%s-%s", roomCode, step, worst.a, worst.b),
		Type:      "faction_conflict",
		Title:     "Faction conflict",
		Detail:    fmt.Sprintf("%s and %s escalate toward open conflict.", worst.a, worst.b),
		Severity:  severity,
		Source:    "world",
		CreatedAt: now,
	}
}

func (e *WorldEngine) tensionOverflowEvent(world *types.WorldState, roomCode string, step int, now time.Time) *types.WorldEvent {
	strongest, value := "", -1
	for _, key := range sortedKeys(world.Tensions) {
		if world.Tensions[key] > value {
			strongest, value = key, world.Tensions[key]
		}
	}
	if value < 85 {
		return nil
	}
	return &types.WorldEvent{
		ID:        fmt.Sprintf("evt-%s-%d-overflow-%s", roomCode, step, strongest),
		Type:      "tension_overflow",
		Title:     "Timeline fracture",
		Detail:    fmt.Sprintf("Rift pressure overflowed on %s and destabilized reality.", strings.ReplaceAll(strongest, "_", " ")),
		Severity:  types.SeverityCritical,
		Source:    "world",
		CreatedAt: now,
	}
}

// RiftWorldEvent adapts a fired rift record onto the world timeline.
func RiftWorldEvent(event *types.RiftEventRecord) types.WorldEvent {
	severity := types.SeverityLow
	switch {
	case event.ChaosLevel >= 82:
		severity = types.SeverityCritical
	case event.ChaosLevel >= 66:
		severity = types.SeverityHigh
	case event.ChaosLevel >= 45:
		severity = types.SeverityMedium
	}
	return types.WorldEvent{
		ID:        "world-" + event.ID,
		Type:      string(event.Type),
		Title:     event.Title,
		Detail:    event.Description,
		Severity:  severity,
		Source:    "rift",
		CreatedAt: event.CreatedAt,
	}
}

func appendWorldTimeline(world *types.WorldState, events []types.WorldEvent) {
	if len(events) == 0 {
		return
	}
	world.Timeline = append(world.Timeline, events...)
	if len(world.Timeline) > maxWorldTimeline {
		world.Timeline = world.Timeline[len(world.Timeline)-maxWorldTimeline:]
	}
}

type threadSeed struct {
	ID       string
	Type     types.ThreadType
	Priority int
	SceneID  string
	Detail   string
	Clue     string
	Now      time.Time
}

// ensureThread touches an existing thread or seeds a new one. Touching
// re-activates, appends a development, and raises awareness.
func ensureThread(threads []*types.NarrativeThread, seed threadSeed) []*types.NarrativeThread {
	for _, thread := range threads {
		if thread.ID != seed.ID {
			continue
		}
		if thread.Status == types.ThreadResolved {
			return threads
		}
		thread.Status = types.ThreadActive
		thread.Developments = append(thread.Developments, types.ThreadDevelopment{
			SceneID:   seed.SceneID,
			Detail:    seed.Detail,
			Timestamp: seed.Now,
		})
		if seed.Clue != "" {
			thread.Clues = append(thread.Clues, seed.Clue)
		}
		thread.PlayerAwareness = clampInt(thread.PlayerAwareness+8, 0, 100)
		thread.LastMention = seed.Now
		thread.ScenesSinceMention = 0
		return threads
	}

	return append(threads, &types.NarrativeThread{
		ID:       seed.ID,
		Type:     seed.Type,
		Priority: clampInt(seed.Priority, 1, 10),
		Status:   types.ThreadActive,
		Developments: []types.ThreadDevelopment{{
			SceneID:   seed.SceneID,
			Detail:    seed.Detail,
			Timestamp: seed.Now,
		}},
		Clues:           appendClue(nil, seed.Clue),
		PlayerAwareness: 20,
		CreatedAt:       seed.Now,
		LastMention:     seed.Now,
	})
}

func appendClue(clues []string, clue string) []string {
	if clue == "" {
		return clues
	}
	return append(clues, clue)
}

// topActiveThread returns the active thread with the highest priority,
// preferring the most idle on ties.
func topActiveThread(threads []*types.NarrativeThread) *types.NarrativeThread {
	var best *types.NarrativeThread
	for _, thread := range threads {
		if thread.Status != types.ThreadActive {
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

func crisisSeverity(amount, crisisPoint int) types.WorldEventSeverity {
	switch {
	case amount*2 <= crisisPoint:
		return types.SeverityCritical
	case amount <= crisisPoint:
		return types.SeverityHigh
	case amount <= crisisPoint+8:
		return types.SeverityMedium
	}
	return types.SeverityLow
}

func adjustResource(world *types.WorldState, id string, delta int) {
	if r := world.Resources[id]; r != nil {
		r.Amount = clampInt(r.Amount+delta, 0, 100)
	}
}

func adjustLoyalty(world *types.WorldState, faction string, delta int) {
	if f := world.Factions[faction]; f != nil {
		f.Loyalty = clampInt(f.Loyalty+delta, 0, 100)
	}
}

func adjustRelationship(world *types.WorldState, faction, other string, delta int) {
	if f := world.Factions[faction]; f != nil {
		f.Relationships[other] = clampInt(f.Relationships[other]+delta, -100, 100)
	}
}

func adjustTension(world *types.WorldState, key string, delta int) {
	world.Tensions[key] = clampInt(world.Tensions[key]+delta, 0, 100)
}

func hasEventType(events []types.WorldEvent, eventType string) bool {
	for _, e := range events {
		if e.Type == eventType {
			return true
		}
	}
	return false
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
