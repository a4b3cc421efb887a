// Package run orchestrates a playthrough: it owns the run state, the random
// stream and the battle engine, routes node choices to encounters, shops and
// events, and persists everything through a Persistence after each action.
package run

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/stardust/internal/battle"
	"github.com/vovakirdan/stardust/internal/content"
	"github.com/vovakirdan/stardust/internal/core"
	"github.com/vovakirdan/stardust/internal/mapgen"
	"github.com/vovakirdan/stardust/internal/modifier"
	"github.com/vovakirdan/stardust/internal/rng"
	"github.com/vovakirdan/stardust/internal/share"
	"github.com/vovakirdan/stardust/internal/state"
)

// Scene is the screen a run is currently on.
type Scene string

const (
	SceneNone   Scene = ""
	SceneMap    Scene = "map"
	SceneBattle Scene = "battle"
	SceneReward Scene = "reward"
	SceneShop   Scene = "shop"
	SceneEvent  Scene = "event"
	SceneResult Scene = "result"
)

// Meta rewards for finishing a run.
const (
	VictoryStardust = 30
	DefeatStardust  = 10
)

var (
	ErrNoRun            = errors.New("run: no run in progress")
	ErrWrongScene       = errors.New("run: action not available in this scene")
	ErrInvalidNode      = errors.New("run: no such node")
	ErrInsufficientGold = errors.New("run: not enough gold")
	ErrNotOffered       = errors.New("run: not offered")
	ErrNothingToRemove  = errors.New("run: no removable card")
	ErrNoPotion         = errors.New("run: no such potion")
	ErrRejected         = errors.New("run: action rejected")
	ErrCorruptSave      = errors.New("run: corrupt save")
	ErrInvalidModifier  = errors.New("run: invalid modifier")
	ErrInvalidToken     = errors.New("run: invalid share token")
)

// Result is what a finished run hands back to the player.
type Result struct {
	Victory bool
	Reward  int
	Token   string
	Ghost   string
	Summary Summary
}

// Fragment returns the share link fragment for the result.
func (r Result) Fragment() string {
	return share.Fragment{Run: r.Token, Ghost: r.Ghost}.String()
}

// saveFile is the blob written through Persistence.
type saveFile struct {
	State     *state.Run        `json:"state"`
	Modifier  modifier.Modifier `json:"modifier"`
	SeedValue uint32            `json:"seedValue"`
	RNGState  uint32            `json:"rngState"`
	Scene     Scene             `json:"scene"`
	Rewards   []string          `json:"rewards,omitempty"`
	Shop      []string          `json:"shop,omitempty"`
	Event     string            `json:"event,omitempty"`
}

// Manager drives one player's runs. It is not safe for concurrent use;
// each session owns its own Manager.
type Manager struct {
	store  Persistence
	lib    *content.Library
	svc    core.Services
	logger *log.Logger

	meta      state.Meta
	run       *state.Run
	rng       *rng.Rand
	battle    *battle.Engine
	mod       modifier.Modifier
	seedValue uint32

	scene   Scene
	rewards []string
	shop    []string
	event   string
	ghost   *Ghost
	result  *Result
}

// NewManager creates a manager with no run loaded. A nil logger discards
// output.
func NewManager(store Persistence, lib *content.Library, svc core.Services, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{
		store:  store,
		lib:    lib,
		svc:    svc.WithDefaults(),
		logger: logger,
		meta:   state.NewMeta(),
	}
}

// Init loads meta progression. A store with no meta yet starts fresh.
func (m *Manager) Init(ctx context.Context) error {
	blob, err := m.store.LoadMeta(ctx)
	if errors.Is(err, ErrNoData) {
		m.meta = state.NewMeta()
		return nil
	}
	if err != nil {
		return fmt.Errorf("run: load meta: %w", err)
	}

	meta := state.NewMeta()
	if err := json.Unmarshal(blob, &meta); err != nil {
		return fmt.Errorf("run: decode meta: %w", err)
	}
	m.meta = meta
	m.logger.Debug("meta loaded", "stardust", meta.Stardust, "runs", meta.RunsPlayed)
	return nil
}

// NewRun starts a fresh run and persists it. An empty seed rolls a random
// one; a zero modifier means the standard ruleset.
func (m *Manager) NewRun(ctx context.Context, seed string, mod modifier.Modifier) error {
	if seed == "" {
		s, err := rng.RandomSeedString()
		if err != nil {
			return fmt.Errorf("run: random seed: %w", err)
		}
		seed = s
	}
	if mod.ID == "" {
		mod = modifier.Modifier{ID: modifier.Standard}
	}
	if mod.HandBonus < 0 || mod.HandBonus > modifier.MaxHandBonus {
		return fmt.Errorf("%w: hand bonus %d", ErrInvalidModifier, mod.HandBonus)
	}

	m.seedValue = rng.HashSeed(seed)
	m.rng = rng.New(m.seedValue)
	m.run = state.NewRun(m.rng, mod.HandBonus)
	m.run.RunSeed = seed
	m.run.Map = mapgen.Generate(m.rng)
	m.mod = mod
	m.battle = battle.New(m.run, m.rng, m.lib, m.svc)
	m.scene = SceneMap
	m.rewards, m.shop, m.event, m.result = nil, nil, "", nil

	m.logger.Info("run started", "seed", seed, "modifier", mod.ID)
	return m.Save(ctx)
}

// StartModifier starts a run under a registered modifier. When seed is
// empty the modifier's own seed is used, if it has one.
func (m *Manager) StartModifier(ctx context.Context, id, seed string) error {
	def, err := modifier.Lookup(id)
	if err != nil {
		return err
	}
	if seed == "" {
		seed = def.SeedFor(m.svc.Now())
	}
	return m.NewRun(ctx, seed, def.Modifier())
}

// NewRunFromToken replays a shared run: same seed, same modifier, and the
// shared deck in place of the starting one. Unknown card ids are dropped.
// The token's modifier is replaced by the registered one of the same id;
// unknown ids are rejected.
func (m *Manager) NewRunFromToken(ctx context.Context, tok *share.RunToken) error {
	if tok == nil || tok.Seed == "" {
		return fmt.Errorf("%w: no seed", ErrInvalidToken)
	}
	var mod modifier.Modifier
	if tok.Modifier != nil {
		mod = *tok.Modifier
	}
	mod, err := modifier.Resolve(mod)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if err := m.NewRun(ctx, tok.Seed, mod); err != nil {
		return err
	}

	deck := make([]string, 0, len(tok.Deck))
	for _, id := range tok.Deck {
		if _, ok := m.lib.Card(id); ok {
			deck = append(deck, id)
		}
	}
	if len(deck) == 0 {
		return nil
	}
	m.run.StartDeck = deck
	m.run.Player.DrawPile = slices.Clone(deck)
	m.run.Player.Hand = []string{}
	m.run.Player.DiscardPile = []string{}
	m.run.Player.ExhaustPile = []string{}
	return m.Save(ctx)
}

// LoadRun restores the saved run. It reports false when there is none.
func (m *Manager) LoadRun(ctx context.Context) (bool, error) {
	blob, err := m.store.LoadRun(ctx)
	if errors.Is(err, ErrNoData) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("run: load: %w", err)
	}

	var sf saveFile
	if err := json.Unmarshal(blob, &sf); err != nil {
		return false, fmt.Errorf("%w: %v", ErrCorruptSave, err)
	}
	if sf.State == nil {
		return false, ErrCorruptSave
	}

	m.run = sf.State
	m.mod = sf.Modifier
	m.seedValue = sf.SeedValue
	m.rng = rng.New(sf.SeedValue)
	m.rng.Restore(sf.RNGState)
	m.battle = battle.New(m.run, m.rng, m.lib, m.svc)
	m.scene = sf.Scene
	m.rewards = sf.Rewards
	m.shop = sf.Shop
	m.event = sf.Event
	m.result = nil

	if m.scene == SceneBattle && m.battle.Phase() == battle.NotStarted {
		m.scene = SceneMap
	}
	if m.scene == SceneNone {
		m.scene = SceneMap
	}

	m.logger.Info("run loaded", "seed", m.run.RunSeed, "floor", m.run.NodeIndex, "scene", m.scene)
	return true, nil
}

// Save persists the current run.
func (m *Manager) Save(ctx context.Context) error {
	if m.run == nil {
		return ErrNoRun
	}
	blob, err := json.Marshal(saveFile{
		State:     m.run,
		Modifier:  m.mod,
		SeedValue: m.seedValue,
		RNGState:  m.rng.State(),
		Scene:     m.scene,
		Rewards:   m.rewards,
		Shop:      m.shop,
		Event:     m.event,
	})
	if err != nil {
		return fmt.Errorf("run: encode: %w", err)
	}
	if err := m.store.SaveRun(ctx, blob); err != nil {
		return fmt.Errorf("run: save: %w", err)
	}
	return nil
}

// CompleteRun pays out stardust, builds share tokens, records history and
// clears the saved run.
func (m *Manager) CompleteRun(ctx context.Context, victory bool) (Result, error) {
	if m.run == nil {
		return Result{}, ErrNoRun
	}

	reward := DefeatStardust
	if victory {
		reward = VictoryStardust
	}

	mod := m.mod
	token, err := share.EncodeRun(share.RunToken{
		Seed:     m.run.RunSeed,
		Modifier: &mod,
		Deck:     m.run.StartDeck,
	})
	if err != nil {
		return Result{}, fmt.Errorf("run: encode token: %w", err)
	}
	ghost, err := share.EncodeGhost(m.run.GhostLog)
	if err != nil {
		return Result{}, fmt.Errorf("run: encode ghost: %w", err)
	}

	if err := m.store.ClearRun(ctx); err != nil {
		return Result{}, fmt.Errorf("run: clear: %w", err)
	}

	// Meta is paid last and rolled back on failure, so a retry pays once.
	prev := m.meta
	prev.Unlocks = state.Unlocks{
		Cards:  slices.Clone(m.meta.Unlocks.Cards),
		Relics: slices.Clone(m.meta.Unlocks.Relics),
	}
	m.meta.Stardust += reward
	m.meta.RunsPlayed++
	if victory {
		m.meta.RunsWon++
		m.meta.Unlock(m.run.Unlocked)
	}
	if err := m.saveMeta(ctx); err != nil {
		m.meta = prev
		return Result{}, err
	}

	res := Result{
		Victory: victory,
		Reward:  reward,
		Token:   token,
		Ghost:   ghost,
		Summary: Summary{
			Seed:       m.run.RunSeed,
			Modifier:   m.mod.ID,
			Victory:    victory,
			Floor:      m.run.NodeIndex,
			Reward:     reward,
			Deck:       slices.Clone(m.run.StartDeck),
			Relics:     slices.Clone(m.run.Relics),
			Token:      token,
			Ghost:      ghost,
			FinishedAt: m.svc.Now(),
		},
	}

	if rec, ok := m.store.(Recorder); ok {
		if err := rec.RecordRun(ctx, res.Summary); err != nil {
			m.logger.Warn("run history not recorded", "err", err)
		}
	}

	m.logger.Info("run complete", "victory", victory, "reward", reward, "floor", m.run.NodeIndex)
	m.run = nil
	m.battle = nil
	m.scene = SceneResult
	m.rewards, m.shop, m.event = nil, nil, ""
	m.result = &res
	return res, nil
}

func (m *Manager) saveMeta(ctx context.Context) error {
	blob, err := json.Marshal(m.meta)
	if err != nil {
		return fmt.Errorf("run: encode meta: %w", err)
	}
	if err := m.store.SaveMeta(ctx, blob); err != nil {
		return fmt.Errorf("run: save meta: %w", err)
	}
	return nil
}

// Meta returns meta progression.
func (m *Manager) Meta() state.Meta { return m.meta }

// State returns the run in progress, or nil.
func (m *Manager) State() *state.Run { return m.run }

// Battle returns the battle engine bound to the run, or nil.
func (m *Manager) Battle() *battle.Engine { return m.battle }

// Library returns the content the run is played with.
func (m *Manager) Library() *content.Library { return m.lib }

// Services returns the capability bundle.
func (m *Manager) Services() core.Services { return m.svc }

// Modifier returns the active ruleset.
func (m *Manager) Modifier() modifier.Modifier { return m.mod }

// Scene returns the current scene.
func (m *Manager) Scene() Scene { return m.scene }

// Rewards returns the card ids offered after the last victory.
func (m *Manager) Rewards() []string { return slices.Clone(m.rewards) }

// ShopOffer returns the cards still for sale in the current shop.
func (m *Manager) ShopOffer() []string { return slices.Clone(m.shop) }

// Event returns the event being resolved.
func (m *Manager) Event() (content.Event, bool) {
	if m.event == "" {
		return content.Event{}, false
	}
	return m.lib.Event(m.event)
}

// Result returns the outcome of the last completed run, or nil.
func (m *Manager) Result() *Result { return m.result }

// CurrentOptions returns the nodes on the current floor.
func (m *Manager) CurrentOptions() state.Floor {
	if m.run == nil {
		return state.Floor{}
	}
	return mapgen.CurrentOptions(m.run.Map, m.run.NodeIndex)
}

func (m *Manager) require(scene Scene) error {
	if m.run == nil {
		return ErrNoRun
	}
	if m.scene != scene {
		return fmt.Errorf("%w: in %s, need %s", ErrWrongScene, m.scene, scene)
	}
	return nil
}
