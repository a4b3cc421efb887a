// Package modifier provides a registry of run modifiers: rulesets that alter
// a run's starting conditions. Modifiers register themselves in init(),
// allowing the CLI and TUI to list and apply them by id.
package modifier

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vovakirdan/stardust/internal/rng"
)

// Built-in modifier ids.
const (
	Standard = "standard"
	Daily    = "daily"
)

// MaxHandBonus is the largest HandBonus a run accepts.
const MaxHandBonus = 3

// Modifier is the persisted form of a ruleset, embedded in saves and share
// tokens.
type Modifier struct {
	ID        string `json:"id"`
	HandBonus int    `json:"handBonus"`
}

// Definition describes a registered modifier.
type Definition struct {
	ID       string
	TitleKey string
	// HandBonus adds copies of strike and defend to the starting deck and
	// cards to the opening hand.
	HandBonus int
	// Seed derives a fixed seed for the ruleset. Nil means the player
	// chooses, or a random seed is rolled.
	Seed func(now time.Time) string
}

// Modifier returns the persisted form of the definition.
func (d Definition) Modifier() Modifier {
	return Modifier{ID: d.ID, HandBonus: d.HandBonus}
}

// SeedFor returns the ruleset's seed for now, or "" when it has none.
func (d Definition) SeedFor(now time.Time) string {
	if d.Seed == nil {
		return ""
	}
	return d.Seed(now)
}

var (
	definitions = make(map[string]Definition)
	mu          sync.RWMutex
)

func init() {
	Register(Definition{ID: Standard, TitleKey: "modifier.standard"})
	Register(Definition{ID: Daily, TitleKey: "modifier.daily", HandBonus: 1, Seed: rng.DailySeed})
}

// Register adds a modifier to the registry.
// Panics if a modifier with the same ID is already registered.
func Register(d Definition) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := definitions[d.ID]; exists {
		panic(fmt.Sprintf("modifier: %q already registered", d.ID))
	}
	if d.HandBonus < 0 || d.HandBonus > MaxHandBonus {
		panic(fmt.Sprintf("modifier: %q hand bonus %d out of range", d.ID, d.HandBonus))
	}
	definitions[d.ID] = d
}

// List returns all registered modifiers, sorted by ID.
func List() []Definition {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Definition, 0, len(definitions))
	for _, d := range definitions {
		result = append(result, d)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Lookup returns the modifier registered under id.
// Returns an error if the id is not registered.
func Lookup(id string) (Definition, error) {
	mu.RLock()
	defer mu.RUnlock()

	d, ok := definitions[id]
	if !ok {
		return Definition{}, fmt.Errorf("modifier: unknown modifier %q", id)
	}
	return d, nil
}

// Exists checks if a modifier with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := definitions[id]
	return ok
}

// Resolve replaces a persisted modifier with the registered definition of
// the same id, so only registered rulesets can be played. An empty id means
// the standard ruleset.
func Resolve(m Modifier) (Modifier, error) {
	id := m.ID
	if id == "" {
		id = Standard
	}
	d, err := Lookup(id)
	if err != nil {
		return Modifier{}, err
	}
	return d.Modifier(), nil
}
