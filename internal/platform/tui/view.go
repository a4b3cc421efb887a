package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/stardust/internal/content"
	"github.com/vovakirdan/stardust/internal/mapgen"
	"github.com/vovakirdan/stardust/internal/run"
	"github.com/vovakirdan/stardust/internal/state"
)

const hpBarWidth = 20

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.mode {
	case modeTitle:
		body = m.viewTitle()
	case modeHistory:
		body = m.viewHistory()
	default:
		body = m.viewRun()
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n")
	if m.toast != "" {
		b.WriteString(m.theme.Toast.Render(m.toast))
		b.WriteString("\n")
	}
	b.WriteString(m.theme.Help.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) viewTitle() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(centerText(m.l.T("ui.title", nil), m.width)))
	b.WriteString("\n\n")

	for i, item := range m.titleItems() {
		label := m.l.T(titleKeys[item], nil)
		if i == m.cursor {
			b.WriteString(m.theme.ItemActive.Render("> " + label))
		} else {
			b.WriteString(m.theme.Item.Render("  " + label))
		}
		b.WriteString("\n")
	}

	meta := m.mgr.Meta()
	b.WriteString("\n")
	b.WriteString(m.theme.HUDLabel.Render(m.l.T("ui.stardustTotal", map[string]any{"stardust": meta.Stardust})))
	return b.String()
}

func (m Model) viewRun() string {
	if m.mgr.State() == nil {
		return ""
	}

	var body string
	switch m.mgr.Scene() {
	case run.SceneMap:
		body = m.viewMap()
	case run.SceneBattle:
		body = m.viewBattle()
	case run.SceneReward:
		body = m.viewReward()
	case run.SceneShop:
		body = m.viewShop()
	case run.SceneEvent:
		body = m.viewEvent()
	case run.SceneResult:
		return m.viewResult()
	}
	return m.viewHeader() + "\n\n" + body
}

// viewHeader renders floor, hp, gold, potions and relics.
func (m Model) viewHeader() string {
	r := m.mgr.State()
	p := r.Player
	sep := m.theme.Separator.Render(" | ")

	hpStyle := m.theme.HP
	if p.HP*4 <= p.MaxHP {
		hpStyle = m.theme.HPLow
	}

	parts := []string{
		m.theme.HUDValue.Render(m.l.T("ui.floor", map[string]any{"floor": min(r.NodeIndex+1, mapgen.Floors), "floors": mapgen.Floors})),
		hpStyle.Render(m.l.T("ui.hp", map[string]any{"hp": p.HP, "max": p.MaxHP}) + " " + bar(p.HP, p.MaxHP, hpBarWidth)),
		m.theme.Gold.Render(m.l.T("ui.gold", map[string]any{"gold": r.Gold})),
		m.theme.HUDLabel.Render(m.l.T("ui.potions", map[string]any{"count": len(r.Potions)})),
	}
	line := strings.Join(parts, sep)

	if len(r.Relics) > 0 {
		names := make([]string, len(r.Relics))
		for i, id := range r.Relics {
			names[i] = m.relicName(id)
		}
		line += "\n" + m.theme.HUDLabel.Render(m.l.T("ui.relics", nil)+": ") + m.theme.HUDValue.Render(strings.Join(names, ", "))
	}
	return line
}

func (m Model) viewMap() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.l.T("ui.map.choose", nil)))
	b.WriteString("\n\n")

	for i, node := range m.mgr.CurrentOptions() {
		label := m.l.T("node."+string(node.Type), nil)
		b.WriteString(m.item(i, label))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render(m.l.T("tutorial.map", nil)))
	return b.String()
}

func (m Model) viewBattle() string {
	eng := m.mgr.Battle()
	r := m.mgr.State()
	p := r.Player

	var b strings.Builder

	if enemy := eng.Enemy(); enemy != nil {
		def := eng.Definition()
		b.WriteString(m.theme.Enemy.Render(m.l.T(def.NameKey, nil)))
		b.WriteString("  ")
		b.WriteString(m.theme.HP.Render(fmt.Sprintf("%d/%d %s", enemy.HP, enemy.MaxHP, bar(enemy.HP, enemy.MaxHP, hpBarWidth))))
		if enemy.Block > 0 {
			b.WriteString("  " + m.theme.Block.Render(m.l.T("ui.block", map[string]any{"block": enemy.Block})))
		}
		if st := m.statusLine(enemy.Statuses); st != "" {
			b.WriteString("\n" + m.theme.HUDLabel.Render(st))
		}
		if intent, ok := eng.Intent(); ok {
			b.WriteString("\n" + m.theme.Intent.Render("» "+m.intentText(intent)))
		}
		b.WriteString("\n\n")
	}

	stats := []string{
		m.theme.Energy.Render(m.l.T("ui.energy", map[string]any{"energy": p.Energy, "max": p.EnergyPerTurn})),
		m.theme.Block.Render(m.l.T("ui.block", map[string]any{"block": p.Block})),
		m.theme.HUDLabel.Render(m.l.T("ui.turn", map[string]any{"turn": eng.Turn() + 1})),
	}
	if p.Strength != 0 {
		stats = append(stats, m.theme.HUDValue.Render(m.l.T("ui.strength", map[string]any{"value": p.Strength})))
	}
	b.WriteString(strings.Join(stats, m.theme.Separator.Render(" | ")))
	if st := m.powerLine(p.Powers); st != "" {
		b.WriteString("\n" + m.theme.HUDLabel.Render(st))
	}
	if st := m.statusLine(p.Statuses); st != "" {
		b.WriteString("\n" + m.theme.HUDLabel.Render(st))
	}
	b.WriteString("\n\n")

	cards := make([]string, len(p.Hand))
	for i, id := range p.Hand {
		cards[i] = m.renderCard(i, id, p.Energy)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n")
	b.WriteString(m.theme.HUDLabel.Render(m.l.T("ui.piles", map[string]any{"draw": len(p.DrawPile), "discard": len(p.DiscardPile)})))

	if g := m.mgr.Ghost(); g != nil && g.Ready() {
		b.WriteString(m.theme.Separator.Render(" | "))
		b.WriteString(m.theme.Toast.Render(m.l.T("ui.ghostShort", nil)))
	}
	return b.String()
}

// renderCard draws one hand card; cards that cost more than energy are dimmed.
func (m Model) renderCard(i int, id string, energy int) string {
	card, ok := m.mgr.Library().Card(id)
	if !ok {
		return m.theme.CardDim.Render(id)
	}

	style := m.theme.Card
	switch {
	case i == m.cursor:
		style = m.theme.CardActive
	case card.Cost > energy:
		style = m.theme.CardDim
	}

	text := fmt.Sprintf("(%d) %s\n%s", card.Cost, m.cardName(id), m.theme.CardText.Render(m.cardText(card)))
	return style.Render(text)
}

func (m Model) viewReward() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.l.T("ui.reward", nil)))
	b.WriteString("\n\n")

	for i, id := range m.mgr.Rewards() {
		label := m.cardName(id)
		if card, ok := m.mgr.Library().Card(id); ok {
			label += " - " + m.cardText(card)
		}
		b.WriteString(m.item(i, label))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.theme.HUDLabel.Render("[s] " + m.l.T("ui.reward.skip", nil)))
	return b.String()
}

func (m Model) viewShop() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.l.T("ui.shop", nil)))
	b.WriteString("\n\n")

	offer := m.mgr.ShopOffer()
	rows := make([]string, 0, len(offer)+3)
	for _, id := range offer {
		rows = append(rows, m.l.T("ui.shop.buy", map[string]any{"card": m.cardName(id), "price": run.CardPrice}))
	}
	rows = append(rows,
		m.l.T("ui.shop.remove", map[string]any{"price": run.RemovePrice}),
		m.l.T("ui.shop.potion", map[string]any{"price": run.PotionPrice}),
		m.l.T("ui.shop.leave", nil),
	)
	for i, row := range rows {
		b.WriteString(m.item(i, row))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render(m.l.T("tutorial.shop", nil)))
	return b.String()
}

func (m Model) viewEvent() string {
	ev, ok := m.mgr.Event()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.l.T(ev.NameKey, nil)))
	b.WriteString("\n\n")
	for i, opt := range ev.Options {
		label := m.l.T(opt.TextKey, map[string]any{"value": opt.Value, "cost": opt.Cost})
		b.WriteString(m.item(i, label))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewResult() string {
	res := m.mgr.Result()
	if res == nil {
		return ""
	}

	var b strings.Builder
	if res.Victory {
		b.WriteString(m.theme.Victory.Render(m.l.T("ui.result.win", nil)))
	} else {
		b.WriteString(m.theme.Defeat.Render(m.l.T("ui.result.lose", nil)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.theme.Gold.Render(m.l.T("ui.reward.stardust", map[string]any{"stardust": res.Reward})))
	b.WriteString("\n")
	b.WriteString(m.theme.HUDLabel.Render(m.l.T("ui.stardustTotal", map[string]any{"stardust": m.mgr.Meta().Stardust})))
	b.WriteString("\n\n")

	b.WriteString(m.theme.HUDLabel.Render(m.l.T("ui.token", nil) + ": "))
	b.WriteString(res.Token)
	b.WriteString("\n")
	b.WriteString(m.theme.HUDLabel.Render(m.l.T("ui.link", nil) + ": "))
	b.WriteString(res.Fragment())
	b.WriteString("\n\n")
	b.WriteString(m.theme.Help.Render(m.l.T("tutorial.result", nil)))
	return b.String()
}

func (m Model) item(i int, label string) string {
	if i == m.cursor {
		return m.theme.ItemActive.Render("> " + label)
	}
	return m.theme.Item.Render("  " + label)
}

func (m Model) cardName(id string) string {
	card, ok := m.mgr.Library().Card(id)
	if !ok {
		return id
	}
	name := m.l.T(card.NameKey, nil)
	if card.Upgraded {
		name += "+"
	}
	return name
}

func (m Model) cardText(c content.Card) string {
	return m.l.T(c.DescriptionKey, map[string]any{
		"damage": c.Damage,
		"block":  c.Block,
		"hits":   c.Hits,
		"draw":   c.Draw,
		"value":  c.Effect.Value,
	})
}

func (m Model) relicName(id string) string {
	relic, ok := m.mgr.Library().Relic(id)
	if !ok {
		return id
	}
	return m.l.T(relic.NameKey, nil)
}

func (m Model) intentText(in content.Intent) string {
	params := map[string]any{"value": in.Value, "hits": in.Hits}
	if in.Status != "" {
		params["status"] = m.l.T("status."+string(in.Status), nil)
	}
	k := "intent." + string(in.Type)
	if in.Type == content.IntentAttack && in.Hits > 1 {
		k = "intent.attackMulti"
	}
	return m.l.T(k, params)
}

func (m Model) statusLine(c state.Counters[state.Status]) string {
	var parts []string
	for _, s := range state.Statuses() {
		if n := c.Get(s); n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", m.l.T("status."+string(s), nil), n))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) powerLine(c state.Counters[state.Power]) string {
	var parts []string
	for _, p := range state.Powers() {
		if p == state.PowerFirstPowerFree {
			continue
		}
		if n := c.Get(p); n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", m.l.T("power."+string(p), nil), n))
		}
	}
	return strings.Join(parts, "  ")
}
