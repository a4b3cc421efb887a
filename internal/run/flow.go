package run

import (
	"context"
	"fmt"
	"slices"

	"github.com/vovakirdan/stardust/internal/battle"
	"github.com/vovakirdan/stardust/internal/content"
	"github.com/vovakirdan/stardust/internal/core"
	"github.com/vovakirdan/stardust/internal/rng"
	"github.com/vovakirdan/stardust/internal/state"
)

// Economy.
const (
	BattleGold    = 20
	RewardChoices = 3
	ShopChoices   = 3
	CardPrice     = 60
	RemovePrice   = 75
	PotionPrice   = 50
	PotionHeal    = 20
)

// keepInDeck lists cards the shop never removes.
var keepInDeck = []string{"nova", "star_draw"}

// SelectNode visits node i of the current floor.
func (m *Manager) SelectNode(ctx context.Context, i int) error {
	if err := m.require(SceneMap); err != nil {
		return err
	}
	floor := m.CurrentOptions()
	if i < 0 || i >= len(floor) {
		return fmt.Errorf("%w: %d", ErrInvalidNode, i)
	}
	node := &m.run.Map[m.run.NodeIndex][i]
	node.Visited = true
	m.logger.Debug("node selected", "floor", m.run.NodeIndex, "node", node.ID, "type", node.Type)

	switch node.Type {
	case state.NodeBattle:
		return m.startBattle(ctx, content.TierNormal)
	case state.NodeElite:
		return m.startBattle(ctx, content.TierElite)
	case state.NodeBoss:
		return m.startBattle(ctx, content.TierBoss)
	case state.NodeTreasure:
		if id := m.randomUnownedRelic(); id != "" {
			m.grantRelic(id)
		}
		return m.Advance(ctx)
	case state.NodeEvent:
		events := m.lib.Events()
		if len(events) == 0 {
			return m.Advance(ctx)
		}
		m.event = rng.Choose(m.rng, events).ID
		m.scene = SceneEvent
	case state.NodeShop:
		m.shop = m.rollCards(ShopChoices)
		m.scene = SceneShop
	}
	return m.Save(ctx)
}

func (m *Manager) startBattle(ctx context.Context, kind content.Tier) error {
	if err := m.battle.Start(kind); err != nil {
		return err
	}
	m.scene = SceneBattle
	if m.ghost != nil {
		m.ghost.Prepare(m.battle.Enemy().ID)
	}
	return m.Save(ctx)
}

// PlayCard plays a card in the current battle. It reports false when the
// engine rejects the play.
func (m *Manager) PlayCard(ctx context.Context, id string) (bool, error) {
	if err := m.require(SceneBattle); err != nil {
		return false, err
	}
	if !m.battle.PlayCard(id) {
		return false, nil
	}
	return true, m.settle(ctx)
}

// EndTurn lets the enemy act and, if the battle goes on, starts the next
// player turn.
func (m *Manager) EndTurn(ctx context.Context) error {
	if err := m.require(SceneBattle); err != nil {
		return err
	}
	m.battle.EnemyTurn()
	if m.battle.Phase() == battle.Active {
		m.battle.NextTurn()
	}
	return m.settle(ctx)
}

// settle reacts to the battle outcome after an action.
func (m *Manager) settle(ctx context.Context) error {
	switch m.battle.Phase() {
	case battle.Victory:
		enemy := m.battle.Enemy().ID
		m.battle.End()
		m.run.Gold += BattleGold
		m.rewards = m.rollCards(RewardChoices + m.relicValue(content.RelicExtraReward))
		m.scene = SceneReward
		m.logger.Debug("battle won", "enemy", enemy, "gold", m.run.Gold)
		return m.Save(ctx)
	case battle.Defeat:
		m.logger.Debug("battle lost", "enemy", m.battle.Enemy().ID)
		_, err := m.CompleteRun(ctx, false)
		return err
	default:
		return m.Save(ctx)
	}
}

// TakeReward adds an offered card to the deck and moves on.
func (m *Manager) TakeReward(ctx context.Context, id string) error {
	if err := m.require(SceneReward); err != nil {
		return err
	}
	if !slices.Contains(m.rewards, id) {
		return fmt.Errorf("%w: %s", ErrNotOffered, id)
	}
	m.run.AddCard(id)
	m.rewards = nil
	return m.Advance(ctx)
}

// SkipReward moves on without a card.
func (m *Manager) SkipReward(ctx context.Context) error {
	if err := m.require(SceneReward); err != nil {
		return err
	}
	m.rewards = nil
	return m.Advance(ctx)
}

// BuyCard buys one of the offered cards.
func (m *Manager) BuyCard(ctx context.Context, id string) error {
	if err := m.require(SceneShop); err != nil {
		return err
	}
	i := slices.Index(m.shop, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotOffered, id)
	}
	if m.run.Gold < CardPrice {
		return ErrInsufficientGold
	}
	m.run.Gold -= CardPrice
	m.run.AddCard(id)
	m.shop = slices.Delete(m.shop, i, i+1)
	return m.Save(ctx)
}

// RemoveCard pays to remove the first removable card of the deck and
// returns its id.
func (m *Manager) RemoveCard(ctx context.Context) (string, error) {
	if err := m.require(SceneShop); err != nil {
		return "", err
	}
	if m.run.Gold < RemovePrice {
		return "", ErrInsufficientGold
	}
	i := slices.IndexFunc(m.run.StartDeck, func(id string) bool {
		return !slices.Contains(keepInDeck, id)
	})
	if i < 0 {
		return "", ErrNothingToRemove
	}
	id := m.run.StartDeck[i]
	m.run.RemoveCard(id)
	m.run.Gold -= RemovePrice
	return id, m.Save(ctx)
}

// BuyPotion buys a healing potion.
func (m *Manager) BuyPotion(ctx context.Context) error {
	if err := m.require(SceneShop); err != nil {
		return err
	}
	if m.run.Gold < PotionPrice {
		return ErrInsufficientGold
	}
	m.run.Gold -= PotionPrice
	m.run.Potions = append(m.run.Potions, state.Potion{ID: "heal", Value: PotionHeal})
	return m.Save(ctx)
}

// LeaveShop moves on from the shop.
func (m *Manager) LeaveShop(ctx context.Context) error {
	if err := m.require(SceneShop); err != nil {
		return err
	}
	m.shop = nil
	return m.Advance(ctx)
}

// ResolveEvent applies the chosen option of the current event and moves on.
// An option the player cannot pay for is rejected without changes.
func (m *Manager) ResolveEvent(ctx context.Context, optionID string) error {
	if err := m.require(SceneEvent); err != nil {
		return err
	}
	ev, _ := m.lib.Event(m.event)
	opt, ok := ev.Option(optionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotOffered, optionID)
	}

	p := &m.run.Player
	switch opt.Type {
	case content.OptionHeal:
		p.Heal(opt.Value)
	case content.OptionTransform:
		for range max(1, opt.Value) {
			if len(m.run.StartDeck) == 0 {
				break
			}
			from := rng.Choose(m.rng, m.run.StartDeck)
			to := rng.Choose(m.rng, m.lib.CardIDs())
			m.run.ReplaceCard(from, to)
		}
	case content.OptionGainRelic:
		if m.run.Gold < opt.Cost {
			return ErrInsufficientGold
		}
		m.run.Gold -= opt.Cost
		id := opt.RelicID
		if id == "" {
			id = m.randomUnownedRelic()
		}
		if id != "" {
			m.grantRelic(id)
		}
	case content.OptionAddCard:
		m.run.AddCard(opt.CardID)
	case content.OptionUpgrade:
		for range max(1, opt.Value) {
			var candidates []string
			for _, id := range m.run.StartDeck {
				if m.lib.Upgradable(id) {
					candidates = append(candidates, id)
				}
			}
			if len(candidates) == 0 {
				break
			}
			id := rng.Choose(m.rng, candidates)
			m.run.ReplaceCard(id, id+content.UpgradeSuffix)
		}
	}

	m.logger.Debug("event resolved", "event", ev.ID, "option", opt.ID)
	m.event = ""
	return m.Advance(ctx)
}

// UsePotion drinks potion i. Potions can be used in any scene.
func (m *Manager) UsePotion(ctx context.Context, i int) error {
	if m.run == nil {
		return ErrNoRun
	}
	if i < 0 || i >= len(m.run.Potions) {
		return fmt.Errorf("%w: %d", ErrNoPotion, i)
	}
	m.run.Player.Heal(m.run.Potions[i].Value)
	m.run.Potions = slices.Delete(m.run.Potions, i, i+1)
	return m.Save(ctx)
}

// Advance moves to the next floor. Climbing past the last floor wins the
// run.
func (m *Manager) Advance(ctx context.Context) error {
	if m.run == nil {
		return ErrNoRun
	}
	m.run.NodeIndex++
	m.scene = SceneMap
	if m.run.NodeIndex >= len(m.run.Map) {
		_, err := m.CompleteRun(ctx, true)
		return err
	}
	return m.Save(ctx)
}

// Apply performs a player command. Rejected card plays return ErrRejected.
func (m *Manager) Apply(ctx context.Context, cmd core.Command) error {
	switch cmd.Kind {
	case core.CmdSelectNode:
		return m.SelectNode(ctx, cmd.Index)
	case core.CmdPlayCard:
		ok, err := m.PlayCard(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrRejected, cmd)
		}
		return nil
	case core.CmdEndTurn:
		return m.EndTurn(ctx)
	case core.CmdTakeReward:
		return m.TakeReward(ctx, cmd.ID)
	case core.CmdSkipReward:
		return m.SkipReward(ctx)
	case core.CmdBuyCard:
		return m.BuyCard(ctx, cmd.ID)
	case core.CmdRemoveCard:
		_, err := m.RemoveCard(ctx)
		return err
	case core.CmdBuyPotion:
		return m.BuyPotion(ctx)
	case core.CmdLeaveShop:
		return m.LeaveShop(ctx)
	case core.CmdResolveEvent:
		return m.ResolveEvent(ctx, cmd.ID)
	case core.CmdUsePotion:
		return m.UsePotion(ctx, cmd.Index)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrRejected, cmd.Kind)
	}
}

func (m *Manager) rollCards(n int) []string {
	ids := rng.Shuffle(m.rng, m.lib.CardIDs())
	return ids[:min(n, len(ids))]
}

func (m *Manager) randomUnownedRelic() string {
	var candidates []string
	for _, r := range m.lib.Relics() {
		if !m.run.HasRelic(r.ID) {
			candidates = append(candidates, r.ID)
		}
	}
	return rng.Choose(m.rng, candidates)
}

// grantRelic adds a relic and pays out its gold if it has any.
func (m *Manager) grantRelic(id string) {
	r, ok := m.lib.Relic(id)
	if !ok || !m.run.AddRelic(id) {
		return
	}
	if r.Effect == content.RelicExtraGold {
		m.run.Gold += r.Value
	}
	m.logger.Debug("relic gained", "relic", id)
}

func (m *Manager) relicValue(effect content.RelicEffect) int {
	total := 0
	for _, id := range m.run.Relics {
		if r, ok := m.lib.Relic(id); ok && r.Effect == effect {
			total += r.Value
		}
	}
	return total
}
