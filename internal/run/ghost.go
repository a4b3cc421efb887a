package run

import (
	"context"
	"slices"
	"strings"

	"github.com/vovakirdan/stardust/internal/battle"
	"github.com/vovakirdan/stardust/internal/state"
)

// StepKind is the kind of move a ghost replays.
type StepKind int

const (
	StepCard StepKind = iota
	StepEndTurn
)

// Step is one replayable ghost move.
type Step struct {
	Kind   StepKind
	CardID string
}

// Ghost walks a previous run's log to suggest the moves that run made
// against the same enemy. It is best effort: plays whose card is not in the
// current hand are skipped.
type Ghost struct {
	log   []state.LogEntry
	idx   int
	ready bool
}

// NewGhost returns a ghost over log. An empty log is never ready.
func NewGhost(log []state.LogEntry) *Ghost {
	return &Ghost{log: log, ready: len(log) > 0}
}

// Ready reports whether the ghost still has moves to offer.
func (g *Ghost) Ready() bool {
	return g.ready
}

// Prepare seeks past the next battle against enemyID. If the log holds no
// such battle the ghost is spent.
func (g *Ghost) Prepare(enemyID string) bool {
	if !g.ready {
		return false
	}
	want := battle.TagBattleStart + enemyID
	for g.idx < len(g.log) {
		action := g.log[g.idx].Action
		g.idx++
		if action == want {
			return true
		}
	}
	g.ready = false
	return false
}

// Next returns the next move that can be replayed with hand. It stops,
// without consuming it, at the start of the ghost's next battle.
func (g *Ghost) Next(hand []string) (Step, bool) {
	if !g.ready {
		return Step{}, false
	}
	for g.idx < len(g.log) {
		action := g.log[g.idx].Action
		if strings.HasPrefix(action, battle.TagBattleStart) {
			return Step{}, false
		}
		g.idx++

		if id, ok := strings.CutPrefix(action, battle.TagCard); ok && slices.Contains(hand, id) {
			return Step{Kind: StepCard, CardID: id}, true
		}
		if strings.HasPrefix(action, battle.TagEnemyIntent) {
			return Step{Kind: StepEndTurn}, true
		}
	}
	g.ready = false
	return Step{}, false
}

// AttachGhost sets the ghost replayed in upcoming battles.
func (m *Manager) AttachGhost(g *Ghost) {
	m.ghost = g
}

// Ghost returns the attached ghost, or nil.
func (m *Manager) Ghost() *Ghost {
	return m.ghost
}

// PlayGhost replays the ghost's next move in the current battle. It reports
// false when the ghost has nothing to offer.
func (m *Manager) PlayGhost(ctx context.Context) (bool, error) {
	if err := m.require(SceneBattle); err != nil {
		return false, err
	}
	if m.ghost == nil {
		return false, nil
	}
	step, ok := m.ghost.Next(m.run.Player.Hand)
	if !ok {
		return false, nil
	}

	switch step.Kind {
	case StepCard:
		return m.PlayCard(ctx, step.CardID)
	default:
		return true, m.EndTurn(ctx)
	}
}
