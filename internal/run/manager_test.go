package run

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/stardust/internal/battle"
	"github.com/vovakirdan/stardust/internal/content"
	"github.com/vovakirdan/stardust/internal/core"
	"github.com/vovakirdan/stardust/internal/mapgen"
	"github.com/vovakirdan/stardust/internal/modifier"
	"github.com/vovakirdan/stardust/internal/share"
	"github.com/vovakirdan/stardust/internal/state"
)

var testNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

// memStore is an in-memory Persistence and Recorder.
type memStore struct {
	run     []byte
	meta    []byte
	history []Summary

	failClear error
	failMeta  error
}

func (s *memStore) SaveRun(_ context.Context, blob []byte) error {
	s.run = slices.Clone(blob)
	return nil
}

func (s *memStore) LoadRun(context.Context) ([]byte, error) {
	if s.run == nil {
		return nil, ErrNoData
	}
	return s.run, nil
}

func (s *memStore) ClearRun(context.Context) error {
	if s.failClear != nil {
		return s.failClear
	}
	s.run = nil
	return nil
}

func (s *memStore) SaveMeta(_ context.Context, blob []byte) error {
	if s.failMeta != nil {
		return s.failMeta
	}
	s.meta = slices.Clone(blob)
	return nil
}

func (s *memStore) LoadMeta(context.Context) ([]byte, error) {
	if s.meta == nil {
		return nil, ErrNoData
	}
	return s.meta, nil
}

func (s *memStore) RecordRun(_ context.Context, sum Summary) error {
	s.history = append(s.history, sum)
	return nil
}

func testLibrary(t *testing.T, events ...content.Event) *content.Library {
	t.Helper()
	base := content.MustDefault()
	enemies := []content.Enemy{
		{ID: "dummy", HP: 12, Tier: content.TierNormal,
			Intents: []content.Intent{{Type: content.IntentAttack, Value: 5, Hits: 1}}},
		{ID: "brute", HP: 30, Tier: content.TierElite,
			Intents: []content.Intent{{Type: content.IntentAttack, Value: 8, Hits: 1}}},
		{ID: "titan", HP: 50, Tier: content.TierBoss,
			Intents: []content.Intent{{Type: content.IntentAttack, Value: 100, Hits: 1}}},
	}
	if events == nil {
		events = base.Events()
	}
	lib, err := content.New(base.Cards(), base.Relics(), enemies, events)
	if err != nil {
		t.Fatalf("content.New: %v", err)
	}
	return lib
}

func newManager(t *testing.T, lib *content.Library) (*Manager, *memStore) {
	t.Helper()
	store := &memStore{}
	m := NewManager(store, lib, core.Services{Now: core.FixedClock(testNow)}, nil)
	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return m, store
}

func startRun(t *testing.T, m *Manager, seed string) {
	t.Helper()
	if err := m.NewRun(context.Background(), seed, modifier.Modifier{}); err != nil {
		t.Fatalf("NewRun: %v", err)
	}
}

// setFloor replaces the current floor's nodes with the given types.
func setFloor(m *Manager, types ...state.NodeType) {
	floor := make(state.Floor, len(types))
	for i, typ := range types {
		floor[i] = state.Node{ID: "test", Type: typ}
	}
	m.run.Map[m.run.NodeIndex] = floor
}

// strikeDeck swaps the deck for twelve strikes.
func strikeDeck(m *Manager) {
	deck := slices.Repeat([]string{"strike"}, 12)
	m.run.StartDeck = slices.Clone(deck)
	m.run.Player.DrawPile = slices.Clone(deck)
	m.run.Player.Hand = []string{}
	m.run.Player.DiscardPile = []string{}
}

func TestInitLoadsMeta(t *testing.T) {
	store := &memStore{meta: []byte(`{"stardust":45,"unlocks":{"cards":["meteor"],"relics":[]},"runsPlayed":3,"runsWon":1}`)}
	m := NewManager(store, testLibrary(t), core.Services{}, nil)
	if err := m.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := m.Meta(); got.Stardust != 45 || got.RunsPlayed != 3 || !slices.Equal(got.Unlocks.Cards, []string{"meteor"}) {
		t.Errorf("Meta = %+v", got)
	}

	store.meta = []byte("{broken")
	if err := m.Init(context.Background()); err == nil {
		t.Error("expected decode error")
	}
}

func TestNewRun(t *testing.T) {
	m, store := newManager(t, testLibrary(t))
	startRun(t, m, "abc")

	run := m.State()
	if run.RunSeed != "abc" || m.Modifier().ID != modifier.Standard {
		t.Errorf("seed %q modifier %+v", run.RunSeed, m.Modifier())
	}
	if len(run.Map) != mapgen.Floors || len(run.StartDeck) != 12 {
		t.Errorf("map %d deck %d", len(run.Map), len(run.StartDeck))
	}
	if run.Player.HP != 70 || run.Gold != 99 {
		t.Errorf("hp %d gold %d", run.Player.HP, run.Gold)
	}
	if m.Scene() != SceneMap || len(m.CurrentOptions()) != mapgen.Choices {
		t.Errorf("scene %s options %v", m.Scene(), m.CurrentOptions())
	}
	if store.run == nil {
		t.Error("run not persisted")
	}
}

func TestNewRunRandomSeed(t *testing.T) {
	m, _ := newManager(t, testLibrary(t))
	startRun(t, m, "")
	if m.State().RunSeed == "" {
		t.Error("no seed rolled")
	}
}

func TestNewRunDeterministic(t *testing.T) {
	a, _ := newManager(t, testLibrary(t))
	b, _ := newManager(t, testLibrary(t))
	startRun(t, a, "same")
	startRun(t, b, "same")

	if !reflect.DeepEqual(a.State().Map, b.State().Map) {
		t.Error("maps differ")
	}
	if !slices.Equal(a.State().Player.DrawPile, b.State().Player.DrawPile) {
		t.Error("draw piles differ")
	}
}

func TestStartModifierDaily(t *testing.T) {
	m, _ := newManager(t, testLibrary(t))
	if err := m.StartModifier(context.Background(), modifier.Daily, ""); err != nil {
		t.Fatal(err)
	}
	if m.State().RunSeed != "1421808134" {
		t.Errorf("seed = %q", m.State().RunSeed)
	}
	if m.Modifier().HandBonus != 1 || len(m.State().StartDeck) != 14 {
		t.Errorf("modifier %+v deck %d", m.Modifier(), len(m.State().StartDeck))
	}

	if err := m.StartModifier(context.Background(), "hardcore", ""); err == nil {
		t.Error("unknown modifier accepted")
	}
}

func TestLoadRun(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		m, _ := newManager(t, testLibrary(t))
		ok, err := m.LoadRun(context.Background())
		if ok || err != nil {
			t.Errorf("LoadRun = %v, %v", ok, err)
		}
	})

	t.Run("corrupt", func(t *testing.T) {
		m, store := newManager(t, testLibrary(t))
		store.run = []byte("not json")
		if _, err := m.LoadRun(context.Background()); !errors.Is(err, ErrCorruptSave) {
			t.Errorf("err = %v", err)
		}
		store.run = []byte(`{"scene":"map"}`)
		if _, err := m.LoadRun(context.Background()); !errors.Is(err, ErrCorruptSave) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestLoadRunResumesBattleDeterministically(t *testing.T) {
	ctx := context.Background()
	lib := testLibrary(t)
	a, store := newManager(t, lib)
	startRun(t, a, "resume")
	setFloor(a, state.NodeElite)
	if err := a.SelectNode(ctx, 0); err != nil {
		t.Fatal(err)
	}

	b := NewManager(store, lib, core.Services{Now: core.FixedClock(testNow)}, nil)
	ok, err := b.LoadRun(ctx)
	if !ok || err != nil {
		t.Fatalf("LoadRun = %v, %v", ok, err)
	}
	if b.Scene() != SceneBattle || b.Battle().Phase() != battle.Active {
		t.Fatalf("scene %s phase %v", b.Scene(), b.Battle().Phase())
	}
	if !reflect.DeepEqual(a.Battle().Snapshot(), b.Battle().Snapshot()) {
		t.Fatal("snapshots differ after load")
	}

	// The restored stream must continue where the saved one stopped.
	for range 2 {
		if err := a.EndTurn(ctx); err != nil {
			t.Fatal(err)
		}
		if err := b.EndTurn(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if !reflect.DeepEqual(a.Battle().Snapshot(), b.Battle().Snapshot()) {
		t.Error("snapshots diverged after turns")
	}
}

func TestBattleVictoryAndReward(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, testLibrary(t))
	startRun(t, m, "win")
	strikeDeck(m)
	setFloor(m, state.NodeBattle, state.NodeBattle)

	if err := m.SelectNode(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if !m.State().Map[0][1].Visited {
		t.Error("node not marked visited")
	}
	for range 2 {
		ok, err := m.PlayCard(ctx, "strike")
		if !ok || err != nil {
			t.Fatalf("PlayCard = %v, %v", ok, err)
		}
	}

	if m.Scene() != SceneReward {
		t.Fatalf("scene = %s, want reward", m.Scene())
	}
	if m.State().Gold != 99+BattleGold {
		t.Errorf("gold = %d", m.State().Gold)
	}
	if m.State().Encounter != nil {
		t.Error("encounter not cleared")
	}
	rewards := m.Rewards()
	if len(rewards) != RewardChoices {
		t.Fatalf("rewards = %v", rewards)
	}

	if err := m.TakeReward(ctx, "not-offered"); !errors.Is(err, ErrNotOffered) {
		t.Errorf("err = %v", err)
	}
	if err := m.TakeReward(ctx, rewards[0]); err != nil {
		t.Fatal(err)
	}
	run := m.State()
	if len(run.StartDeck) != 13 || run.StartDeck[12] != rewards[0] {
		t.Errorf("deck = %v", run.StartDeck)
	}
	if run.NodeIndex != 1 || m.Scene() != SceneMap {
		t.Errorf("node %d scene %s", run.NodeIndex, m.Scene())
	}
}

func TestExtraRewardRelic(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, testLibrary(t))
	startRun(t, m, "lens")
	strikeDeck(m)
	m.State().AddRelic("cosmic_lens")
	setFloor(m, state.NodeBattle)

	if err := m.SelectNode(ctx, 0); err != nil {
		t.Fatal(err)
	}
	m.PlayCard(ctx, "strike")
	m.PlayCard(ctx, "strike")
	if got := len(m.Rewards()); got != RewardChoices+1 {
		t.Errorf("rewards = %d, want %d", got, RewardChoices+1)
	}
	if err := m.SkipReward(ctx); err != nil || m.State().NodeIndex != 1 {
		t.Errorf("SkipReward = %v, node %d", err, m.State().NodeIndex)
	}
}

func TestDefeatCompletesRun(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t, testLibrary(t))
	startRun(t, m, "lose")
	setFloor(m, state.NodeBoss)

	if err := m.SelectNode(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if m.Battle().Enemy().ID != "titan" {
		t.Fatalf("enemy = %s", m.Battle().Enemy().ID)
	}
	if err := m.EndTurn(ctx); err != nil {
		t.Fatal(err)
	}

	if m.Scene() != SceneResult || m.State() != nil {
		t.Fatalf("scene %s state %v", m.Scene(), m.State())
	}
	res := m.Result()
	if res == nil || res.Victory || res.Reward != DefeatStardust {
		t.Fatalf("result = %+v", res)
	}
	if m.Meta().Stardust != DefeatStardust || m.Meta().RunsPlayed != 1 || m.Meta().RunsWon != 0 {
		t.Errorf("meta = %+v", m.Meta())
	}
	if store.run != nil {
		t.Error("saved run not cleared")
	}
	if store.meta == nil {
		t.Error("meta not saved")
	}
	if len(store.history) != 1 || store.history[0].Seed != "lose" {
		t.Errorf("history = %+v", store.history)
	}
	if _, err := m.PlayCard(ctx, "strike"); !errors.Is(err, ErrNoRun) {
		t.Errorf("PlayCard after completion err = %v", err)
	}
}

func TestAdvancePastLastFloorWins(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t, testLibrary(t))
	startRun(t, m, "climb")
	deck := slices.Clone(m.State().StartDeck)
	log := []state.LogEntry{{T: 1, Action: "battle_start:dummy"}}
	m.State().GhostLog = log
	m.State().NodeIndex = mapgen.Floors - 1

	if err := m.Advance(ctx); err != nil {
		t.Fatal(err)
	}
	res := m.Result()
	if res == nil || !res.Victory || res.Reward != VictoryStardust {
		t.Fatalf("result = %+v", res)
	}
	meta := m.Meta()
	if meta.Stardust != VictoryStardust || meta.RunsWon != 1 {
		t.Errorf("meta = %+v", meta)
	}
	if !slices.Contains(meta.Unlocks.Cards, "supernova") || !slices.Contains(meta.Unlocks.Relics, "meteor_core") {
		t.Errorf("unlocks = %+v", meta.Unlocks)
	}

	tok, ok := share.DecodeRun(res.Token)
	if !ok || tok.Seed != "climb" || tok.Modifier == nil || tok.Modifier.ID != modifier.Standard {
		t.Fatalf("token = %+v, %v", tok, ok)
	}
	if !slices.Equal(tok.Deck, deck) {
		t.Errorf("deck = %v", tok.Deck)
	}
	if got := share.DecodeGhost(res.Ghost); !reflect.DeepEqual(got, log) {
		t.Errorf("ghost = %+v", got)
	}
	if !strings.HasPrefix(res.Fragment(), "run="+res.Token+"&ghost=") {
		t.Errorf("fragment = %q", res.Fragment())
	}
	if store.history[0].Floor != mapgen.Floors || !store.history[0].FinishedAt.Equal(testNow) {
		t.Errorf("summary = %+v", store.history[0])
	}

	// Meta survives into the next session.
	next := NewManager(store, testLibrary(t), core.Services{}, nil)
	if err := next.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if next.Meta().Stardust != VictoryStardust {
		t.Errorf("reloaded meta = %+v", next.Meta())
	}
}

func TestShop(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, testLibrary(t))
	startRun(t, m, "shop")
	setFloor(m, state.NodeShop)

	if err := m.SelectNode(ctx, 0); err != nil {
		t.Fatal(err)
	}
	offer := m.ShopOffer()
	if m.Scene() != SceneShop || len(offer) != ShopChoices {
		t.Fatalf("scene %s offer %v", m.Scene(), offer)
	}

	if err := m.BuyCard(ctx, offer[0]); err != nil {
		t.Fatal(err)
	}
	run := m.State()
	if run.Gold != 99-CardPrice || len(run.StartDeck) != 13 || !slices.Contains(run.Player.DiscardPile, offer[0]) {
		t.Errorf("gold %d deck %v", run.Gold, run.StartDeck)
	}
	if len(m.ShopOffer()) != ShopChoices-1 {
		t.Errorf("offer after buy = %v", m.ShopOffer())
	}
	if err := m.BuyCard(ctx, offer[0]); !errors.Is(err, ErrNotOffered) {
		t.Errorf("rebuy err = %v", err)
	}
	if err := m.BuyCard(ctx, offer[1]); !errors.Is(err, ErrInsufficientGold) {
		t.Errorf("broke buy err = %v", err)
	}
	if _, err := m.RemoveCard(ctx); !errors.Is(err, ErrInsufficientGold) {
		t.Errorf("broke remove err = %v", err)
	}

	run.Gold = 200
	removed, err := m.RemoveCard(ctx)
	if err != nil || removed != "strike" {
		t.Fatalf("RemoveCard = %q, %v", removed, err)
	}
	if run.Gold != 200-RemovePrice || len(run.StartDeck) != 12 || run.Player.CardCount() != 12 {
		t.Errorf("gold %d deck %d cards %d", run.Gold, len(run.StartDeck), run.Player.CardCount())
	}

	if err := m.BuyPotion(ctx); err != nil {
		t.Fatal(err)
	}
	if len(run.Potions) != 1 || run.Potions[0].Value != PotionHeal || run.Gold != 200-RemovePrice-PotionPrice {
		t.Errorf("potions %v gold %d", run.Potions, run.Gold)
	}

	if err := m.LeaveShop(ctx); err != nil {
		t.Fatal(err)
	}
	if run.NodeIndex != 1 || m.Scene() != SceneMap || m.ShopOffer() != nil {
		t.Errorf("node %d scene %s", run.NodeIndex, m.Scene())
	}
}

func TestRemoveCardKeepsCoreCards(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, testLibrary(t))
	startRun(t, m, "keep")
	setFloor(m, state.NodeShop)
	if err := m.SelectNode(ctx, 0); err != nil {
		t.Fatal(err)
	}
	run := m.State()
	run.Gold = 500

	run.StartDeck = []string{"nova", "star_draw"}
	run.Player.DrawPile = slices.Clone(run.StartDeck)
	if _, err := m.RemoveCard(ctx); !errors.Is(err, ErrNothingToRemove) {
		t.Errorf("err = %v", err)
	}
	if run.Gold != 500 {
		t.Errorf("charged for nothing: %d", run.Gold)
	}

	run.StartDeck = []string{"nova", "meteor", "star_draw"}
	run.Player.DrawPile = slices.Clone(run.StartDeck)
	if removed, err := m.RemoveCard(ctx); err != nil || removed != "meteor" {
		t.Errorf("RemoveCard = %q, %v", removed, err)
	}
}

func TestEvents(t *testing.T) {
	tests := []struct {
		name   string
		option content.Option
		setup  func(run *state.Run)
		err    error
		check  func(t *testing.T, run *state.Run)
	}{
		{
			name:   "heal",
			option: content.Option{ID: "o", Type: content.OptionHeal, Value: 20},
			setup:  func(run *state.Run) { run.Player.HP = 30 },
			check: func(t *testing.T, run *state.Run) {
				if run.Player.HP != 50 {
					t.Errorf("hp = %d", run.Player.HP)
				}
			},
		},
		{
			name:   "heal capped",
			option: content.Option{ID: "o", Type: content.OptionHeal, Value: 20},
			setup:  func(run *state.Run) { run.Player.HP = 65 },
			check: func(t *testing.T, run *state.Run) {
				if run.Player.HP != 70 {
					t.Errorf("hp = %d", run.Player.HP)
				}
			},
		},
		{
			name:   "gain relic",
			option: content.Option{ID: "o", Type: content.OptionGainRelic, Cost: 40},
			check: func(t *testing.T, run *state.Run) {
				if len(run.Relics) != 1 {
					t.Errorf("relics = %v", run.Relics)
				}
				if run.Gold != 59 && run.Gold != 59+50 {
					t.Errorf("gold = %d", run.Gold)
				}
			},
		},
		{
			name:   "gain named relic",
			option: content.Option{ID: "o", Type: content.OptionGainRelic, RelicID: "golden_comet"},
			check: func(t *testing.T, run *state.Run) {
				if !run.HasRelic("golden_comet") || run.Gold != 99+50 {
					t.Errorf("relics %v gold %d", run.Relics, run.Gold)
				}
			},
		},
		{
			name:   "gain relic too poor",
			option: content.Option{ID: "o", Type: content.OptionGainRelic, Cost: 40},
			setup:  func(run *state.Run) { run.Gold = 10 },
			err:    ErrInsufficientGold,
			check: func(t *testing.T, run *state.Run) {
				if len(run.Relics) != 0 || run.Gold != 10 || run.NodeIndex != 0 {
					t.Errorf("relics %v gold %d node %d", run.Relics, run.Gold, run.NodeIndex)
				}
			},
		},
		{
			name:   "add card",
			option: content.Option{ID: "o", Type: content.OptionAddCard, CardID: "meteor"},
			check: func(t *testing.T, run *state.Run) {
				if !slices.Contains(run.StartDeck, "meteor") || !slices.Contains(run.Player.DiscardPile, "meteor") {
					t.Errorf("deck %v", run.StartDeck)
				}
			},
		},
		{
			name:   "upgrade",
			option: content.Option{ID: "o", Type: content.OptionUpgrade, Value: 2},
			check: func(t *testing.T, run *state.Run) {
				n := 0
				for _, id := range run.StartDeck {
					if strings.HasSuffix(id, content.UpgradeSuffix) {
						n++
					}
				}
				if n != 2 || run.Player.CardCount() != len(run.StartDeck) {
					t.Errorf("upgraded %d of %v", n, run.StartDeck)
				}
			},
		},
		{
			name:   "transform",
			option: content.Option{ID: "o", Type: content.OptionTransform, Value: 1},
			check: func(t *testing.T, run *state.Run) {
				if len(run.StartDeck) != 12 || run.Player.CardCount() != 12 {
					t.Errorf("deck %d cards %d", len(run.StartDeck), run.Player.CardCount())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ev := content.Event{ID: "ev", Options: []content.Option{tt.option}}
			m, _ := newManager(t, testLibrary(t, ev))
			startRun(t, m, "event")
			setFloor(m, state.NodeEvent)
			if err := m.SelectNode(ctx, 0); err != nil {
				t.Fatal(err)
			}
			if got, ok := m.Event(); !ok || got.ID != "ev" {
				t.Fatalf("Event = %+v, %v", got, ok)
			}
			run := m.State()
			if tt.setup != nil {
				tt.setup(run)
			}

			err := m.ResolveEvent(ctx, "o")
			if !errors.Is(err, tt.err) {
				t.Fatalf("ResolveEvent err = %v, want %v", err, tt.err)
			}
			tt.check(t, run)
			if tt.err == nil && (m.Scene() != SceneMap || run.NodeIndex != 1) {
				t.Errorf("scene %s node %d", m.Scene(), run.NodeIndex)
			}
		})
	}
}

func TestResolveEventUnknownOption(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, testLibrary(t))
	startRun(t, m, "event")
	setFloor(m, state.NodeEvent)
	if err := m.SelectNode(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if err := m.ResolveEvent(ctx, "nope"); !errors.Is(err, ErrNotOffered) {
		t.Errorf("err = %v", err)
	}
}

func TestTreasure(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, testLibrary(t))
	startRun(t, m, "loot")
	setFloor(m, state.NodeTreasure)
	for _, r := range m.Library().Relics() {
		if r.ID != "golden_comet" {
			m.State().AddRelic(r.ID)
		}
	}

	if err := m.SelectNode(ctx, 0); err != nil {
		t.Fatal(err)
	}
	run := m.State()
	if !run.HasRelic("golden_comet") || run.Gold != 99+50 {
		t.Errorf("relics %v gold %d", run.Relics, run.Gold)
	}
	if run.NodeIndex != 1 || m.Scene() != SceneMap {
		t.Errorf("node %d scene %s", run.NodeIndex, m.Scene())
	}

	// Nothing left to find: the node still advances.
	setFloor(m, state.NodeTreasure)
	if err := m.SelectNode(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if run.NodeIndex != 2 || run.Gold != 99+50 {
		t.Errorf("node %d gold %d", run.NodeIndex, run.Gold)
	}
}

func TestUsePotion(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, testLibrary(t))
	startRun(t, m, "potion")
	run := m.State()
	run.Potions = []state.Potion{{ID: "heal", Value: 20}, {ID: "heal", Value: 20}}
	run.Player.HP = 40

	if err := m.UsePotion(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if run.Player.HP != 60 || len(run.Potions) != 1 {
		t.Errorf("hp %d potions %v", run.Player.HP, run.Potions)
	}
	if err := m.UsePotion(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if run.Player.HP != 70 {
		t.Errorf("hp = %d, want capped 70", run.Player.HP)
	}
	if err := m.UsePotion(ctx, 0); !errors.Is(err, ErrNoPotion) {
		t.Errorf("err = %v", err)
	}
}

func TestSceneGuards(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, testLibrary(t))

	if err := m.SelectNode(ctx, 0); !errors.Is(err, ErrNoRun) {
		t.Errorf("no run err = %v", err)
	}
	if err := m.Save(ctx); !errors.Is(err, ErrNoRun) {
		t.Errorf("save err = %v", err)
	}

	startRun(t, m, "guards")
	if err := m.TakeReward(ctx, "strike"); !errors.Is(err, ErrWrongScene) {
		t.Errorf("reward err = %v", err)
	}
	if err := m.EndTurn(ctx); !errors.Is(err, ErrWrongScene) {
		t.Errorf("end turn err = %v", err)
	}
	if err := m.SelectNode(ctx, 7); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("node err = %v", err)
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, testLibrary(t))
	startRun(t, m, "apply")
	strikeDeck(m)
	setFloor(m, state.NodeBattle)

	if err := m.Apply(ctx, core.Command{Kind: core.CmdSelectNode, Index: 0}); err != nil {
		t.Fatal(err)
	}
	if err := m.Apply(ctx, core.Command{Kind: core.CmdPlayCard, ID: "meteor"}); !errors.Is(err, ErrRejected) {
		t.Errorf("rejected play err = %v", err)
	}
	if err := m.Apply(ctx, core.Command{Kind: core.CmdPlayCard, ID: "strike"}); err != nil {
		t.Errorf("play err = %v", err)
	}
	if err := m.Apply(ctx, core.Command{Kind: core.CmdEndTurn}); err != nil {
		t.Errorf("end turn err = %v", err)
	}
	if m.Battle().Turn() != 1 {
		t.Errorf("turn = %d", m.Battle().Turn())
	}
	if err := m.Apply(ctx, core.Command{Kind: "dance"}); !errors.Is(err, ErrRejected) {
		t.Errorf("unknown command err = %v", err)
	}
}

func TestNewRunFromToken(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, testLibrary(t))
	tok := &share.RunToken{
		Seed:     "shared",
		Modifier: &modifier.Modifier{ID: modifier.Daily, HandBonus: 1},
		Deck:     []string{"meteor", "strike+", "bogus", "nova"},
	}
	if err := m.NewRunFromToken(ctx, tok); err != nil {
		t.Fatal(err)
	}
	run := m.State()
	want := []string{"meteor", "strike+", "nova"}
	if !slices.Equal(run.StartDeck, want) || run.Player.CardCount() != len(want) {
		t.Errorf("deck %v cards %d", run.StartDeck, run.Player.CardCount())
	}
	if run.RunSeed != "shared" || m.Modifier().HandBonus != 1 {
		t.Errorf("seed %q modifier %+v", run.RunSeed, m.Modifier())
	}
}

func TestNewRunFromTokenRejectsBadModifier(t *testing.T) {
	tests := []struct {
		name string
		tok  *share.RunToken
	}{
		{name: "nil token", tok: nil},
		{name: "no seed", tok: &share.RunToken{Deck: []string{"strike"}}},
		{name: "unknown modifier", tok: &share.RunToken{
			Seed:     "1",
			Modifier: &modifier.Modifier{ID: "x", HandBonus: -100},
			Deck:     []string{},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, store := newManager(t, testLibrary(t))
			err := m.NewRunFromToken(context.Background(), tt.tok)
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, want ErrInvalidToken", err)
			}
			if m.State() != nil || store.run != nil {
				t.Errorf("run started from a rejected token")
			}
		})
	}
}

func TestNewRunFromTokenUsesRegisteredModifier(t *testing.T) {
	tests := []struct {
		name string
		in   modifier.Modifier
		want int
	}{
		{name: "inflated daily", in: modifier.Modifier{ID: modifier.Daily, HandBonus: 1 << 30}, want: 1},
		{name: "negative standard", in: modifier.Modifier{ID: modifier.Standard, HandBonus: -100}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newManager(t, testLibrary(t))
			mod := tt.in
			if err := m.NewRunFromToken(context.Background(), &share.RunToken{Seed: "1", Modifier: &mod}); err != nil {
				t.Fatal(err)
			}
			if got := m.Modifier().HandBonus; got != tt.want {
				t.Errorf("HandBonus = %d, want %d", got, tt.want)
			}
			if got, want := len(m.State().StartDeck), len(state.StartingDeck(tt.want)); got != want {
				t.Errorf("deck size = %d, want %d", got, want)
			}
		})
	}
}

func TestNewRunRejectsHandBonusOutOfRange(t *testing.T) {
	for _, bonus := range []int{-1, modifier.MaxHandBonus + 1} {
		m, _ := newManager(t, testLibrary(t))
		err := m.NewRun(context.Background(), "1", modifier.Modifier{ID: "custom", HandBonus: bonus})
		if !errors.Is(err, ErrInvalidModifier) {
			t.Errorf("hand bonus %d: err = %v, want ErrInvalidModifier", bonus, err)
		}
	}
}

func TestCompleteRunRetryPaysOnce(t *testing.T) {
	tests := []struct {
		name string
		fail func(*memStore, error)
	}{
		{name: "clear fails", fail: func(s *memStore, err error) { s.failClear = err }},
		{name: "meta save fails", fail: func(s *memStore, err error) { s.failMeta = err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m, store := newManager(t, testLibrary(t))
			startRun(t, m, "retry")

			boom := errors.New("disk full")
			tt.fail(store, boom)
			if _, err := m.CompleteRun(ctx, true); !errors.Is(err, boom) {
				t.Fatalf("CompleteRun err = %v, want %v", err, boom)
			}
			if got := m.Meta(); got.Stardust != 0 || got.RunsPlayed != 0 || got.RunsWon != 0 {
				t.Errorf("meta after failure = %+v", got)
			}

			tt.fail(store, nil)
			res, err := m.CompleteRun(ctx, true)
			if err != nil {
				t.Fatal(err)
			}
			if res.Reward != VictoryStardust {
				t.Errorf("reward = %d", res.Reward)
			}
			got := m.Meta()
			if got.Stardust != VictoryStardust || got.RunsPlayed != 1 || got.RunsWon != 1 {
				t.Errorf("meta after retry = %+v", got)
			}
		})
	}
}
