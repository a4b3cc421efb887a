// Package state holds the mutable aggregates of a playthrough: the player,
// the live enemy, the run itself, and cross-run meta progression.
//
// Everything here serializes to JSON so the run layer can persist it as an
// opaque blob.
package state

import (
	"slices"
	"time"

	"github.com/vovakirdan/stardust/internal/rng"
)

// Starting values for a fresh run.
const (
	StartingHP     = 70
	StartingGold   = 99
	StartingEnergy = 3
	BaseStrikes    = 5
	BaseDefends    = 5
)

// Node is one choice on a map floor.
type Node struct {
	ID      string   `json:"id"`
	Type    NodeType `json:"type"`
	Visited bool     `json:"visited"`
}

// Floor is the set of choices offered at one step of the climb.
type Floor []Node

// Potion is a consumable heal.
type Potion struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
}

// LogEntry is one tagged action in the ghost log. T is unix milliseconds.
type LogEntry struct {
	T      int64  `json:"t"`
	Action string `json:"action"`
}

// Unlocks lists content ids made available to future runs.
type Unlocks struct {
	Cards  []string `json:"cards"`
	Relics []string `json:"relics"`
}

// Encounter is the combat in progress, if any.
type Encounter struct {
	Enemy Enemy `json:"enemy"`
	Turn  int   `json:"turn"`
}

// Run is the root aggregate for one playthrough.
type Run struct {
	Player       Player     `json:"player"`
	Relics       []string   `json:"relics"`
	Gold         int        `json:"gold"`
	Potions      []Potion   `json:"potions"`
	Map          []Floor    `json:"map"`
	NodeIndex    int        `json:"nodeIndex"`
	ModifierHand int        `json:"modifierHand"`
	RunSeed      string     `json:"runSeed"`
	GhostLog     []LogEntry `json:"ghostLog"`
	StartDeck    []string   `json:"startDeck"`
	Unlocked     Unlocks    `json:"unlocked"`
	Encounter    *Encounter `json:"encounter,omitempty"`
}

// StartingDeck returns the canonical opening deck for a hand bonus.
// A negative bonus counts as zero.
func StartingDeck(modifierHand int) []string {
	modifierHand = max(0, modifierHand)
	deck := make([]string, 0, BaseStrikes+BaseDefends+2*modifierHand+2)
	for range BaseStrikes + modifierHand {
		deck = append(deck, "strike")
	}
	for range BaseDefends + modifierHand {
		deck = append(deck, "defend")
	}
	return append(deck, "nova", "star_draw")
}

// NewRun builds a fresh run. The draw pile is a shuffled copy of the
// starting deck; StartDeck keeps the canonical order.
func NewRun(r rng.Source, modifierHand int) *Run {
	deck := StartingDeck(modifierHand)
	draw := rng.Shuffle(r, slices.Clone(deck))

	return &Run{
		Player: Player{
			Vitals:        Vitals{HP: StartingHP, MaxHP: StartingHP},
			Energy:        StartingEnergy,
			EnergyPerTurn: StartingEnergy,
			DrawPile:      draw,
			Hand:          []string{},
			DiscardPile:   []string{},
			ExhaustPile:   []string{},
		},
		Relics:       []string{},
		Gold:         StartingGold,
		Potions:      []Potion{},
		ModifierHand: modifierHand,
		GhostLog:     []LogEntry{},
		StartDeck:    deck,
		Unlocked: Unlocks{
			Cards:  []string{"supernova", "meteor"},
			Relics: []string{"meteor_core"},
		},
	}
}

// HasRelic reports whether the relic is owned.
func (r *Run) HasRelic(id string) bool {
	return slices.Contains(r.Relics, id)
}

// AddRelic adds a relic unless already owned. It reports whether it was added.
func (r *Run) AddRelic(id string) bool {
	if r.HasRelic(id) {
		return false
	}
	r.Relics = append(r.Relics, id)
	return true
}

// AddCard puts a newly acquired card into the deck: the discard pile for
// play and StartDeck for the canonical list.
func (r *Run) AddCard(id string) {
	r.Player.DiscardPile = append(r.Player.DiscardPile, id)
	r.StartDeck = append(r.StartDeck, id)
}

// RemoveCard removes one copy of id from StartDeck and from the first pile
// holding it. It reports whether a copy was found.
func (r *Run) RemoveCard(id string) bool {
	i := slices.Index(r.StartDeck, id)
	if i < 0 {
		return false
	}
	r.StartDeck = slices.Delete(r.StartDeck, i, i+1)

	p := &r.Player
	for _, pile := range []*[]string{&p.DrawPile, &p.DiscardPile, &p.Hand, &p.ExhaustPile} {
		if j := slices.Index(*pile, id); j >= 0 {
			*pile = slices.Delete(*pile, j, j+1)
			break
		}
	}
	return true
}

// ReplaceCard swaps one copy of from with to in StartDeck and in the pile
// holding it.
func (r *Run) ReplaceCard(from, to string) bool {
	i := slices.Index(r.StartDeck, from)
	if i < 0 {
		return false
	}
	r.StartDeck[i] = to

	p := &r.Player
	for _, pile := range [][]string{p.DrawPile, p.DiscardPile, p.Hand, p.ExhaustPile} {
		if j := slices.Index(pile, from); j >= 0 {
			pile[j] = to
			break
		}
	}
	return true
}

// Log appends an action tag to the ghost log.
func (r *Run) Log(at time.Time, action string) {
	r.GhostLog = append(r.GhostLog, LogEntry{T: at.UnixMilli(), Action: action})
}

// CurrentFloor returns the node choices at NodeIndex, or nil past the end.
func (r *Run) CurrentFloor() Floor {
	if r.NodeIndex < 0 || r.NodeIndex >= len(r.Map) {
		return nil
	}
	return r.Map[r.NodeIndex]
}

// Meta is progression that survives across runs.
type Meta struct {
	Stardust   int     `json:"stardust"`
	Unlocks    Unlocks `json:"unlocks"`
	RunsPlayed int     `json:"runsPlayed"`
	RunsWon    int     `json:"runsWon"`
}

// NewMeta returns empty meta progression.
func NewMeta() Meta {
	return Meta{Unlocks: Unlocks{Cards: []string{}, Relics: []string{}}}
}

// Unlock merges run unlocks into meta, skipping ids already present.
func (m *Meta) Unlock(u Unlocks) {
	for _, id := range u.Cards {
		if !slices.Contains(m.Unlocks.Cards, id) {
			m.Unlocks.Cards = append(m.Unlocks.Cards, id)
		}
	}
	for _, id := range u.Relics {
		if !slices.Contains(m.Unlocks.Relics, id) {
			m.Unlocks.Relics = append(m.Unlocks.Relics, id)
		}
	}
}
