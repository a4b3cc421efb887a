package battle

import (
	"slices"

	"github.com/vovakirdan/stardust/internal/content"
	"github.com/vovakirdan/stardust/internal/state"
)

// Snapshot is a deep copy of everything visible about a battle. Two engines
// fed the same seed and actions produce equal snapshots.
type Snapshot struct {
	Phase  Phase
	Turn   int
	Player state.Player
	Enemy  *state.Enemy
	Intent content.Intent
}

// Snapshot captures the current battle state.
func (e *Engine) Snapshot() Snapshot {
	p := e.run.Player
	p.Powers = p.Powers.Clone()
	p.Statuses = p.Statuses.Clone()
	p.Hand = slices.Clone(p.Hand)
	p.DrawPile = slices.Clone(p.DrawPile)
	p.DiscardPile = slices.Clone(p.DiscardPile)
	p.ExhaustPile = slices.Clone(p.ExhaustPile)

	snap := Snapshot{
		Phase:  e.Phase(),
		Turn:   e.Turn(),
		Player: p,
	}
	if enc := e.run.Encounter; enc != nil {
		enemy := enc.Enemy
		enemy.Statuses = enemy.Statuses.Clone()
		snap.Enemy = &enemy
		snap.Intent, _ = e.Intent()
	}
	return snap
}
