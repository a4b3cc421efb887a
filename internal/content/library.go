// Package content provides the immutable definitions a run is played with:
// cards, relics, enemies and events. The default tables are embedded YAML
// and are validated once at load.
package content

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"
)

// UpgradeSuffix marks the upgraded variant of a card id.
const UpgradeSuffix = "+"

//go:embed data/*.yaml
var dataFS embed.FS

// Library is a validated, read-only set of content tables.
type Library struct {
	cards   []Card
	relics  []Relic
	enemies []Enemy
	events  []Event

	cardByID  map[string]int
	relicByID map[string]int
	enemyByID map[string]int
	eventByID map[string]int
}

// New validates the tables and builds a library over them.
func New(cards []Card, relics []Relic, enemies []Enemy, events []Event) (*Library, error) {
	if err := validate(cards, relics, enemies, events); err != nil {
		return nil, err
	}

	l := &Library{
		cards:     cards,
		relics:    relics,
		enemies:   enemies,
		events:    events,
		cardByID:  make(map[string]int, len(cards)),
		relicByID: make(map[string]int, len(relics)),
		enemyByID: make(map[string]int, len(enemies)),
		eventByID: make(map[string]int, len(events)),
	}
	for i, c := range cards {
		l.cardByID[c.ID] = i
	}
	for i, r := range relics {
		l.relicByID[r.ID] = i
	}
	for i, e := range enemies {
		l.enemyByID[e.ID] = i
	}
	for i, e := range events {
		l.eventByID[e.ID] = i
	}
	return l, nil
}

// Load reads cards.yaml, relics.yaml, enemies.yaml and events.yaml from fsys.
func Load(fsys fs.FS) (*Library, error) {
	read := func(name string) ([]byte, error) {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("content: read %s: %w", name, err)
		}
		return data, nil
	}

	data, err := read("cards.yaml")
	if err != nil {
		return nil, err
	}
	cards, err := ParseCards(data)
	if err != nil {
		return nil, fmt.Errorf("content: cards: %w", err)
	}

	if data, err = read("relics.yaml"); err != nil {
		return nil, err
	}
	relics, err := ParseRelics(data)
	if err != nil {
		return nil, fmt.Errorf("content: relics: %w", err)
	}

	if data, err = read("enemies.yaml"); err != nil {
		return nil, err
	}
	enemies, err := ParseEnemies(data)
	if err != nil {
		return nil, fmt.Errorf("content: enemies: %w", err)
	}

	if data, err = read("events.yaml"); err != nil {
		return nil, err
	}
	events, err := ParseEvents(data)
	if err != nil {
		return nil, fmt.Errorf("content: events: %w", err)
	}

	return New(cards, relics, enemies, events)
}

var loadDefault = sync.OnceValues(func() (*Library, error) {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
})

// Default returns the embedded library. It is loaded once.
func Default() (*Library, error) {
	return loadDefault()
}

// MustDefault is Default for callers that treat broken embedded data as a
// programming error.
func MustDefault() *Library {
	l, err := Default()
	if err != nil {
		panic(err)
	}
	return l
}

// Card looks up a card. An id ending in "+" resolves to the upgraded variant
// of the base card, if it has one.
func (l *Library) Card(id string) (Card, bool) {
	if base, ok := strings.CutSuffix(id, UpgradeSuffix); ok {
		c, found := l.Card(base)
		if !found || c.Upgrade == nil || c.Upgraded {
			return Card{}, false
		}
		return c.upgraded(), true
	}
	i, ok := l.cardByID[id]
	if !ok {
		return Card{}, false
	}
	return l.cards[i], true
}

// Cards returns every base card in table order.
func (l *Library) Cards() []Card {
	return append([]Card(nil), l.cards...)
}

// CardIDs returns every base card id in table order.
func (l *Library) CardIDs() []string {
	ids := make([]string, len(l.cards))
	for i, c := range l.cards {
		ids[i] = c.ID
	}
	return ids
}

// Relic looks up a relic.
func (l *Library) Relic(id string) (Relic, bool) {
	i, ok := l.relicByID[id]
	if !ok {
		return Relic{}, false
	}
	return l.relics[i], true
}

// Relics returns every relic in table order.
func (l *Library) Relics() []Relic {
	return append([]Relic(nil), l.relics...)
}

// Enemy looks up an enemy definition.
func (l *Library) Enemy(id string) (Enemy, bool) {
	i, ok := l.enemyByID[id]
	if !ok {
		return Enemy{}, false
	}
	return l.enemies[i], true
}

// Enemies returns the enemies of one tier in table order.
func (l *Library) Enemies(tier Tier) []Enemy {
	var out []Enemy
	for _, e := range l.enemies {
		if e.Tier == tier {
			out = append(out, e)
		}
	}
	return out
}

// Event looks up an event.
func (l *Library) Event(id string) (Event, bool) {
	i, ok := l.eventByID[id]
	if !ok {
		return Event{}, false
	}
	return l.events[i], true
}

// Events returns every event in table order.
func (l *Library) Events() []Event {
	return append([]Event(nil), l.events...)
}

// Upgradable reports whether id names a base card with an upgrade.
func (l *Library) Upgradable(id string) bool {
	c, ok := l.Card(id)
	return ok && !c.Upgraded && c.Upgrade != nil
}

// upgraded applies the delta over the base card.
func (c Card) upgraded() Card {
	d := c.Upgrade
	out := c
	out.ID = c.ID + UpgradeSuffix
	out.Upgraded = true
	out.Upgrade = nil
	if d.Cost != nil {
		out.Cost = *d.Cost
	}
	if d.Damage != nil {
		out.Damage = *d.Damage
	}
	if d.Block != nil {
		out.Block = *d.Block
	}
	if d.Hits != nil {
		out.Hits = max(1, *d.Hits)
	}
	if d.Draw != nil {
		out.Draw = *d.Draw
	}
	if d.Value != nil && out.Effect.Kind != EffectNone {
		out.Effect.Value = *d.Value
	}
	return out
}
