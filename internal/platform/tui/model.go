package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/stardust/internal/core"
	"github.com/vovakirdan/stardust/internal/modifier"
	"github.com/vovakirdan/stardust/internal/run"
	"github.com/vovakirdan/stardust/internal/storage"
)

type mode int

const (
	modeTitle mode = iota
	modeRun
	modeHistory
)

type titleItem int

const (
	itemNewRun titleItem = iota
	itemDaily
	itemContinue
	itemHistory
	itemQuit
)

var titleKeys = map[titleItem]string{
	itemNewRun:   "ui.start",
	itemDaily:    "ui.daily",
	itemContinue: "ui.load",
	itemHistory:  "ui.history",
	itemQuit:     "ui.quit",
}

// HistorySource lists a player's finished runs.
type HistorySource interface {
	RecentRuns(ctx context.Context, limit int) ([]run.Summary, error)
	Stats(ctx context.Context) (storage.Stats, error)
}

// Options configures a Model.
type Options struct {
	Manager   *run.Manager
	Localizer core.Localizer
	History   HistorySource // optional
	Width     int
	Height    int
}

// Model is the Bubble Tea model for a stardust session: title menu, the
// run itself, and the history table.
type Model struct {
	ctx     context.Context
	mgr     *run.Manager
	l       core.Localizer
	history HistorySource
	keys    KeyMap
	help    help.Model
	theme   Theme

	mode     mode
	cursor   int
	scene    run.Scene
	toast    string
	toastSeq int

	table table.Model
	stats string

	width    int
	height   int
	quitting bool
}

// NewModel creates a session model. It opens on the run when the manager
// already holds one, on the title menu otherwise.
func NewModel(ctx context.Context, opts Options) Model {
	l := opts.Localizer
	if l == nil {
		l = core.KeyLocalizer{}
	}
	h := help.New()
	h.Width = opts.Width

	m := Model{
		ctx:     ctx,
		mgr:     opts.Manager,
		l:       l,
		history: opts.History,
		keys:    DefaultKeyMap(),
		help:    h,
		theme:   DefaultTheme(),
		width:   opts.Width,
		height:  opts.Height,
	}
	if m.mgr.State() != nil {
		m.mode = modeRun
		m.scene = m.mgr.Scene()
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.mode == modeHistory {
			m.table = m.newTable()
			m.loadHistory()
		}
		return m, nil

	case toastExpiredMsg:
		if int(msg) == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Help) {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		action := m.keys.Action(msg)
		if action == core.ActionQuit {
			m.quitting = true
			return m, tea.Quit
		}

		switch m.mode {
		case modeTitle:
			return m.updateTitle(action)
		case modeHistory:
			if action == core.ActionBack {
				m.mode = modeTitle
				m.cursor = 0
				return m, nil
			}
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		default:
			return m.updateRun(action)
		}
	}

	return m, nil
}

func (m Model) titleItems() []titleItem {
	items := []titleItem{itemNewRun, itemDaily, itemContinue}
	if m.history != nil {
		items = append(items, itemHistory)
	}
	return append(items, itemQuit)
}

// updateTitle handles the title menu.
func (m Model) updateTitle(action core.Action) (tea.Model, tea.Cmd) {
	items := m.titleItems()
	switch action {
	case core.ActionUp, core.ActionLeft:
		m.cursor = clamp(m.cursor-1, len(items))
	case core.ActionDown, core.ActionRight:
		m.cursor = clamp(m.cursor+1, len(items))
	case core.ActionConfirm:
		var err error
		switch items[m.cursor] {
		case itemNewRun:
			err = m.mgr.NewRun(m.ctx, "", modifier.Modifier{})
		case itemDaily:
			err = m.mgr.StartModifier(m.ctx, modifier.Daily, "")
		case itemContinue:
			var ok bool
			ok, err = m.mgr.LoadRun(m.ctx)
			if err == nil && !ok {
				return m.flash(m.l.T("ui.noSave", nil))
			}
		case itemHistory:
			m.mode = modeHistory
			m.table = m.newTable()
			m.loadHistory()
			return m, nil
		case itemQuit:
			m.quitting = true
			return m, tea.Quit
		}
		if err != nil {
			return m.flash(m.errorText(err))
		}
		m.mode = modeRun
		m.scene = m.mgr.Scene()
		m.cursor = 0
	}
	return m, nil
}

// updateRun routes an action to the current scene.
func (m Model) updateRun(action core.Action) (tea.Model, tea.Cmd) {
	scene := m.mgr.Scene()

	switch action {
	case core.ActionBack:
		m.mode = modeTitle
		m.cursor = 0
		return m, nil
	case core.ActionPotion:
		if scene != run.SceneResult {
			return m.apply(core.Command{Kind: core.CmdUsePotion, Index: 0})
		}
	}

	n := m.choiceCount()
	switch action {
	case core.ActionUp, core.ActionLeft:
		m.cursor = clamp(m.cursor-1, n)
		return m, nil
	case core.ActionDown, core.ActionRight:
		m.cursor = clamp(m.cursor+1, n)
		return m, nil
	}

	switch scene {
	case run.SceneMap:
		if action == core.ActionConfirm {
			return m.apply(core.Command{Kind: core.CmdSelectNode, Index: m.cursor})
		}

	case run.SceneBattle:
		switch action {
		case core.ActionConfirm:
			hand := m.mgr.State().Player.Hand
			if m.cursor < len(hand) {
				return m.apply(core.Command{Kind: core.CmdPlayCard, ID: hand[m.cursor]})
			}
		case core.ActionEndTurn:
			return m.apply(core.Command{Kind: core.CmdEndTurn})
		case core.ActionGhost:
			ok, err := m.mgr.PlayGhost(m.ctx)
			if err == nil && !ok {
				return m, nil
			}
			return m.settle(err)
		}

	case run.SceneReward:
		switch action {
		case core.ActionConfirm:
			rewards := m.mgr.Rewards()
			if m.cursor < len(rewards) {
				id := rewards[m.cursor]
				if err := m.mgr.TakeReward(m.ctx, id); err != nil {
					return m.settle(err)
				}
				m, _ = m.settle(nil)
				return m.flash(m.l.T("ui.reward.added", map[string]any{"card": m.cardName(id)}))
			}
		case core.ActionSkip:
			return m.apply(core.Command{Kind: core.CmdSkipReward})
		}

	case run.SceneShop:
		switch action {
		case core.ActionConfirm:
			return m.confirmShop()
		case core.ActionSkip:
			return m.apply(core.Command{Kind: core.CmdLeaveShop})
		}

	case run.SceneEvent:
		if action == core.ActionConfirm {
			ev, ok := m.mgr.Event()
			if ok && m.cursor < len(ev.Options) {
				return m.apply(core.Command{Kind: core.CmdResolveEvent, ID: ev.Options[m.cursor].ID})
			}
		}

	case run.SceneResult:
		if action == core.ActionConfirm || action == core.ActionSkip {
			m.mode = modeTitle
			m.cursor = 0
		}
	}

	return m, nil
}

// Shop rows are the offered cards followed by remove, potion and leave.
func (m Model) confirmShop() (tea.Model, tea.Cmd) {
	offer := m.mgr.ShopOffer()
	switch i := m.cursor; {
	case i < len(offer):
		return m.apply(core.Command{Kind: core.CmdBuyCard, ID: offer[i]})
	case i == len(offer):
		id, err := m.mgr.RemoveCard(m.ctx)
		if err != nil {
			return m.settle(err)
		}
		return m.flash(m.l.T("ui.shop.removed", map[string]any{"card": m.cardName(id)}))
	case i == len(offer)+1:
		return m.apply(core.Command{Kind: core.CmdBuyPotion})
	default:
		return m.apply(core.Command{Kind: core.CmdLeaveShop})
	}
}

// choiceCount is the number of selectable rows in the current scene.
func (m Model) choiceCount() int {
	switch m.mgr.Scene() {
	case run.SceneMap:
		return len(m.mgr.CurrentOptions())
	case run.SceneBattle:
		return len(m.mgr.State().Player.Hand)
	case run.SceneReward:
		return len(m.mgr.Rewards())
	case run.SceneShop:
		return len(m.mgr.ShopOffer()) + 3
	case run.SceneEvent:
		ev, _ := m.mgr.Event()
		return len(ev.Options)
	}
	return 0
}

func (m Model) apply(cmd core.Command) (Model, tea.Cmd) {
	return m.settle(m.mgr.Apply(m.ctx, cmd))
}

// settle resets the cursor on scene changes and reports err.
func (m Model) settle(err error) (Model, tea.Cmd) {
	if s := m.mgr.Scene(); s != m.scene {
		m.scene = s
		m.cursor = 0
	}
	m.cursor = clamp(m.cursor, m.choiceCount())
	if err != nil {
		return m.flash(m.errorText(err))
	}
	return m, nil
}

func (m Model) flash(text string) (Model, tea.Cmd) {
	m.toastSeq++
	m.toast = text
	return m, toastCmd(m.toastSeq)
}

func (m Model) errorText(err error) string {
	switch {
	case errors.Is(err, run.ErrInsufficientGold):
		return m.l.T("ui.shop.poor", nil)
	case errors.Is(err, run.ErrNothingToRemove):
		return m.l.T("ui.shop.nothing", nil)
	case errors.Is(err, run.ErrRejected):
		return m.l.T("ui.rejected", nil)
	case errors.Is(err, run.ErrNoPotion):
		return m.l.T("ui.noPotion", nil)
	}
	return m.l.T("ui.error", map[string]any{"error": err.Error()})
}

// clamp keeps i within [0, n).
func clamp(i, n int) int {
	if n <= 0 {
		return 0
	}
	return min(max(i, 0), n-1)
}

// Run starts the Bubble Tea program with a model built from opts.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(
		NewModel(ctx, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
