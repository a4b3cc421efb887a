// Package battle is the combat state machine. An Engine mutates the run it
// is bound to in place; every exported operation either applies fully or is
// rejected before touching any state.
//
// The engine never decides who won. Callers poll Phase after each action.
package battle

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/vovakirdan/stardust/internal/content"
	"github.com/vovakirdan/stardust/internal/core"
	"github.com/vovakirdan/stardust/internal/rng"
	"github.com/vovakirdan/stardust/internal/state"
)

// Hand sizes.
const (
	OpeningHand = 5
	TurnDraw    = 5
)

// Log tag prefixes written to the ghost log.
const (
	TagBattleStart = "battle_start:"
	TagCard        = "card:"
	TagEnemyIntent = "enemy_intent:"
)

// ErrNoEnemies is returned by Start when the library has no enemy for the
// requested encounter kind.
var ErrNoEnemies = errors.New("battle: no enemies for encounter")

// Phase is the state of the combat state machine.
type Phase int

const (
	NotStarted Phase = iota
	Active
	Victory
	Defeat
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case Active:
		return "active"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// Engine runs one encounter at a time against a run.
type Engine struct {
	run *state.Run
	rng rng.Source
	lib *content.Library
	svc core.Services

	def content.Enemy
}

// New binds an engine to a run. If the run was saved mid-combat the engine
// resumes that encounter.
func New(run *state.Run, r rng.Source, lib *content.Library, svc core.Services) *Engine {
	e := &Engine{run: run, rng: r, lib: lib, svc: svc.WithDefaults()}
	if run.Encounter != nil {
		if def, ok := lib.Enemy(run.Encounter.Enemy.ID); ok {
			e.def = def
		} else {
			run.Encounter = nil
		}
	}
	return e
}

// Start begins an encounter of the given kind. Boss encounters fall back to
// the elite pool when the library defines no boss.
func (e *Engine) Start(kind content.Tier) error {
	pool := e.lib.Enemies(kind)
	if len(pool) == 0 && kind == content.TierBoss {
		pool = e.lib.Enemies(content.TierElite)
	}
	if len(pool) == 0 {
		return fmt.Errorf("%w: %s", ErrNoEnemies, kind)
	}

	var def content.Enemy
	if slices.ContainsFunc(pool, func(d content.Enemy) bool { return d.Weight > 0 }) {
		def = rng.WeightedChoose(e.rng, pool, func(d content.Enemy) float64 { return d.Weight })
	} else {
		def = rng.Choose(e.rng, pool)
	}

	e.StartAgainst(def)
	return nil
}

// StartAgainst begins an encounter against a specific enemy definition.
func (e *Engine) StartAgainst(def content.Enemy) {
	e.def = def
	e.run.Encounter = &state.Encounter{
		Enemy: state.Enemy{
			Vitals: state.Vitals{HP: def.HP, MaxHP: def.HP},
			ID:     def.ID,
		},
	}

	p := &e.run.Player
	p.Block = 0
	p.EnergyPerTurn = state.StartingEnergy + e.relicValue(content.RelicExtraEnergy)
	p.Energy = p.EnergyPerTurn
	p.Strength = 0
	p.Powers = state.Counters[state.Power]{}
	p.Statuses = state.Counters[state.Status]{}

	pool := make([]string, 0, p.CardCount())
	pool = append(pool, p.DrawPile...)
	pool = append(pool, p.DiscardPile...)
	pool = append(pool, p.Hand...)
	pool = append(pool, p.ExhaustPile...)
	p.DrawPile = rng.Shuffle(e.rng, pool)
	p.Hand = []string{}
	p.DiscardPile = []string{}
	p.ExhaustPile = []string{}

	e.DrawCards(OpeningHand + e.run.ModifierHand)
	p.Strength += e.relicValue(content.RelicBattleStrength)

	e.log(TagBattleStart + def.ID)
}

// End detaches the finished encounter from the run.
func (e *Engine) End() {
	e.run.Encounter = nil
	e.def = content.Enemy{}
}

// NextTurn starts a new player turn. The enemy's next intent is not cached;
// Intent reads it from the definition on demand.
func (e *Engine) NextTurn() {
	if e.run.Encounter == nil {
		return
	}
	e.run.Encounter.Turn++

	p := &e.run.Player
	p.Energy = p.EnergyPerTurn
	p.Block = p.Powers.Get(state.PowerPlating)
	if extra := p.Powers.Get(state.PowerExtraEnergy); extra > 0 {
		p.Energy += extra
		delete(p.Powers, state.PowerExtraEnergy)
	}
	p.Statuses.Decay(state.StatusWeak, 1)

	e.DrawCards(TurnDraw)
}

// DrawCards moves up to n cards from the front of the draw pile into the
// hand, reshuffling the discard pile when the draw pile runs out.
func (e *Engine) DrawCards(n int) {
	p := &e.run.Player
	for range n {
		if len(p.DrawPile) == 0 {
			p.DrawPile = rng.Shuffle(e.rng, p.DiscardPile)
			p.DiscardPile = []string{}
		}
		if len(p.DrawPile) == 0 {
			return
		}
		p.Hand = append(p.Hand, p.DrawPile[0])
		p.DrawPile = p.DrawPile[1:]
	}
}

// PlayCard plays one copy of id from the hand. It reports false, with no
// state change, when the card is not in hand, is unknown, the player cannot
// pay for it, or no encounter is in progress.
func (e *Engine) PlayCard(id string) bool {
	if e.Phase() != Active {
		return false
	}
	p := &e.run.Player
	idx := slices.Index(p.Hand, id)
	if idx < 0 {
		return false
	}
	card, ok := e.lib.Card(id)
	if !ok {
		return false
	}

	if card.Type == content.CardPower &&
		e.relicValue(content.RelicFirstPowerFree) > 0 &&
		p.Powers.Get(state.PowerFirstPowerFree) == 0 {
		p.AddPower(state.PowerFirstPowerFree, 1)
	} else if p.Energy < card.Cost {
		return false
	} else {
		p.Energy -= card.Cost
	}

	p.Hand = slices.Delete(p.Hand, idx, idx+1)
	e.resolve(card)
	p.DiscardPile = append(p.DiscardPile, id)
	e.log(TagCard + id)
	e.svc.Audio.Play(core.CueAttack)
	return true
}

func (e *Engine) resolve(card content.Card) {
	p := &e.run.Player
	enemy := &e.run.Encounter.Enemy

	// Strength adds to every card, so a skill hits for strength alone.
	if amount := card.Damage + p.Strength; amount > 0 {
		for range max(1, card.Hits) {
			e.DealDamage(&enemy.Vitals, amount)
		}
	}
	if card.Block > 0 {
		p.Block += card.Block
	}
	if card.Draw > 0 {
		e.DrawCards(card.Draw)
	}

	v := card.Effect.Value
	switch card.Effect.Kind {
	case content.EffectGainStrength:
		p.Strength += v
	case content.EffectReflect:
		p.AddPower(state.PowerReflect, v)
	case content.EffectApplyBurn:
		enemy.AddStatus(state.StatusBurn, v)
	case content.EffectPhase:
		p.AddStatus(state.StatusPhase, v)
	case content.EffectGainPlating:
		p.AddPower(state.PowerPlating, v)
	case content.EffectWeak:
		enemy.AddStatus(state.StatusWeak, v)
	case content.EffectExtraEnergy:
		p.AddPower(state.PowerExtraEnergy, v)
	case content.EffectLifesteal:
		p.AddPower(state.PowerLifesteal, v)
	}
}

// DealDamage routes amount through target's block and then its hp. Damage to
// the enemy heals the player by the lifesteal percentage. Hp may go
// negative.
func (e *Engine) DealDamage(target *state.Vitals, amount int) {
	actual := max(0, amount-target.Block)
	target.Block = max(0, target.Block-amount)
	target.HP -= actual

	if enc := e.run.Encounter; enc != nil && target == &enc.Enemy.Vitals {
		if pct := e.run.Player.Powers.Get(state.PowerLifesteal); pct > 0 {
			heal := int(math.Round(float64(actual) * float64(pct) / 100))
			e.run.Player.Heal(heal)
		}
	}
	if target.Dead() {
		e.svc.Audio.Play(core.CueHit)
	}
}

// EnemyTurn ticks burn, then carries out the current intent and advances
// to the next one.
func (e *Engine) EnemyTurn() {
	if e.Phase() != Active {
		return
	}
	enemy := &e.run.Encounter.Enemy

	if burn := enemy.Statuses.Get(state.StatusBurn); burn > 0 {
		e.DealDamage(&enemy.Vitals, burn)
		enemy.Statuses.Decay(state.StatusBurn, 1)
		if enemy.Dead() {
			return
		}
	}

	intent, _ := e.Intent()
	switch intent.Type {
	case content.IntentAttack:
		for range max(1, intent.Hits) {
			e.EnemyAttack(intent.Value)
		}
	case content.IntentBlock:
		enemy.Block += intent.Value
	case content.IntentBuff:
		enemy.AddStatus(intent.Status, intent.Value)
	case content.IntentDebuff:
		e.run.Player.AddStatus(intent.Status, intent.Value)
	case content.IntentHeal:
		enemy.Heal(intent.Value)
	}

	enemy.IntentIndex = (enemy.IntentIndex + 1) % len(e.def.Intents)
	e.log(TagEnemyIntent + string(intent.Type))
}

// EnemyAttack resolves one enemy attack instance against the player.
func (e *Engine) EnemyAttack(value int) {
	if e.run.Encounter == nil {
		return
	}
	enemy := &e.run.Encounter.Enemy
	p := &e.run.Player

	damage := value + enemy.Statuses.Get(state.StatusStrength)
	if enemy.Statuses.Get(state.StatusWeak) > 0 {
		damage = int(math.Floor(float64(damage) * 0.75))
		enemy.Statuses.Decay(state.StatusWeak, 1)
	}
	if p.Statuses.Get(state.StatusWeak) > 0 {
		damage = int(math.Ceil(float64(damage) * 1.25))
	}

	if p.Statuses.Get(state.StatusPhase) > 0 {
		p.Statuses.Decay(state.StatusPhase, 1)
		return
	}

	absorbed := min(p.Block, damage)
	p.Block = max(0, p.Block-damage)
	hpDamage := damage - absorbed
	p.HP -= hpDamage

	if reflect := p.Powers.Get(state.PowerReflect); reflect > 0 && hpDamage > 0 {
		e.DealDamage(&enemy.Vitals, reflect)
	}
	e.svc.Audio.Play(core.CueHit)
}

// Intent returns the enemy's current intent. Conditions on the intent are
// informational and never change which intent comes next.
func (e *Engine) Intent() (content.Intent, bool) {
	if e.run.Encounter == nil || len(e.def.Intents) == 0 {
		return content.Intent{}, false
	}
	idx := e.run.Encounter.Enemy.IntentIndex % len(e.def.Intents)
	return e.def.Intents[idx], true
}

// Phase derives the state machine position from hp.
func (e *Engine) Phase() Phase {
	enc := e.run.Encounter
	switch {
	case enc == nil:
		return NotStarted
	case enc.Enemy.Dead():
		return Victory
	case e.run.Player.Dead():
		return Defeat
	default:
		return Active
	}
}

// Enemy returns the live enemy, or nil outside combat.
func (e *Engine) Enemy() *state.Enemy {
	if e.run.Encounter == nil {
		return nil
	}
	return &e.run.Encounter.Enemy
}

// Definition returns the definition of the current enemy.
func (e *Engine) Definition() content.Enemy {
	return e.def
}

// Turn returns the number of completed turn transitions this encounter.
func (e *Engine) Turn() int {
	if e.run.Encounter == nil {
		return 0
	}
	return e.run.Encounter.Turn
}

// Conserved reports whether every card of the deck sits in exactly one pile.
func (e *Engine) Conserved() bool {
	return e.run.Player.CardCount() == len(e.run.StartDeck)
}

func (e *Engine) relicValue(effect content.RelicEffect) int {
	total := 0
	for _, id := range e.run.Relics {
		if r, ok := e.lib.Relic(id); ok && r.Effect == effect {
			total += r.Value
		}
	}
	return total
}

func (e *Engine) log(action string) {
	e.run.Log(e.svc.Now(), action)
}
