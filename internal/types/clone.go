package types

// Clone returns a deep copy of the player.
func (p *Player) Clone() *Player {
	cp := *p
	cp.Rounds = append([]int(nil), p.Rounds...)
	return &cp
}

// Clone returns a deep copy of the thread, including its developments and
// payoff record.
func (n *NarrativeThread) Clone() *NarrativeThread {
	cp := *n
	cp.Developments = append([]ThreadDevelopment(nil), n.Developments...)
	cp.Clues = append([]string(nil), n.Clues...)
	if n.Payoff != nil {
		payoff := *n.Payoff
		cp.Payoff = &payoff
	}
	return &cp
}

// Clone returns a deep copy of the world backdrop.
func (w *WorldState) Clone() *WorldState {
	if w == nil {
		return nil
	}
	cp := &WorldState{
		Factions:  make(map[string]*Faction, len(w.Factions)),
		Resources: make(map[string]*Resource, len(w.Resources)),
		Scars:     append([]string(nil), w.Scars...),
		Tensions:  make(map[string]int, len(w.Tensions)),
		Timeline:  append([]WorldEvent(nil), w.Timeline...),
		Meta:      w.Meta,
	}
	for name, faction := range w.Factions {
		fc := *faction
		fc.Traits = append([]string(nil), faction.Traits...)
		fc.Relationships = make(map[string]int, len(faction.Relationships))
		for other, standing := range faction.Relationships {
			fc.Relationships[other] = standing
		}
		cp.Factions[name] = &fc
	}
	for name, resource := range w.Resources {
		rc := *resource
		cp.Resources[name] = &rc
	}
	for name, level := range w.Tensions {
		cp.Tensions[name] = level
	}
	return cp
}

// Clone returns a deep copy of the room detached from the live aggregate, so
// a snapshot can be marshaled or inspected while later mutations run. Scenes
// are immutable catalog data and stay shared.
func (r *Room) Clone() *Room {
	cp := *r
	if r.Players != nil {
		cp.Players = make([]*Player, len(r.Players))
		for i, p := range r.Players {
			cp.Players[i] = p.Clone()
		}
	}
	cp.TurnOrder = append([]string(nil), r.TurnOrder...)
	cp.History = append([]HistoryEntry(nil), r.History...)
	if r.ReadyPlayers != nil {
		cp.ReadyPlayers = make(map[string]bool, len(r.ReadyPlayers))
		for id, ready := range r.ReadyPlayers {
			cp.ReadyPlayers[id] = ready
		}
	}
	if r.TurnDeadline != nil {
		deadline := *r.TurnDeadline
		cp.TurnDeadline = &deadline
	}
	cp.RiftHistory = append([]RiftEventRecord(nil), r.RiftHistory...)
	if r.NarrativeThreads != nil {
		cp.NarrativeThreads = make([]*NarrativeThread, len(r.NarrativeThreads))
		for i, thread := range r.NarrativeThreads {
			cp.NarrativeThreads[i] = thread.Clone()
		}
	}
	cp.DirectorTimeline = append([]DirectorBeatRecord(nil), r.DirectorTimeline...)
	if r.DirectedScene != nil {
		directed := *r.DirectedScene
		cp.DirectedScene = &directed
	}
	cp.World = r.World.Clone()
	return &cp
}
