package content

import "github.com/vovakirdan/stardust/internal/state"

// CardType classifies a card.
type CardType string

const (
	CardAttack CardType = "attack"
	CardSkill  CardType = "skill"
	CardPower  CardType = "power"
)

// EffectKind is the closed set of named card effects.
type EffectKind string

const (
	EffectNone         EffectKind = ""
	EffectGainStrength EffectKind = "gainStrength"
	EffectReflect      EffectKind = "reflect"
	EffectApplyBurn    EffectKind = "applyBurn"
	EffectPhase        EffectKind = "phase"
	EffectGainPlating  EffectKind = "gainPlating"
	EffectWeak         EffectKind = "weak"
	EffectExtraEnergy  EffectKind = "extraEnergy"
	EffectLifesteal    EffectKind = "lifesteal"
)

var effectKinds = []EffectKind{
	EffectGainStrength, EffectReflect, EffectApplyBurn, EffectPhase,
	EffectGainPlating, EffectWeak, EffectExtraEnergy, EffectLifesteal,
}

// CardEffect is a card's single optional effect. Value is always positive
// when Kind is set.
type CardEffect struct {
	Kind  EffectKind
	Value int
}

// CardDelta is a sparse upgrade patch. Nil fields leave the base value.
type CardDelta struct {
	Cost   *int `yaml:"cost,omitempty"`
	Damage *int `yaml:"damage,omitempty"`
	Block  *int `yaml:"block,omitempty"`
	Hits   *int `yaml:"hits,omitempty"`
	Draw   *int `yaml:"draw,omitempty"`
	Value  *int `yaml:"value,omitempty"`
}

// Card is an immutable card definition.
type Card struct {
	ID             string
	NameKey        string
	DescriptionKey string
	Type           CardType
	Cost           int
	Damage         int
	Block          int
	Hits           int // always >= 1
	Draw           int
	Effect         CardEffect
	Upgrade        *CardDelta
	Upgraded       bool
}

// RelicEffect is the closed set of relic behaviors.
type RelicEffect string

const (
	// RelicExtraEnergy raises energy per turn by Value.
	RelicExtraEnergy RelicEffect = "extraEnergy"
	// RelicBattleStrength grants Value strength at battle start.
	RelicBattleStrength RelicEffect = "battleStrength"
	// RelicFirstPowerFree makes the first power card of each battle free.
	RelicFirstPowerFree RelicEffect = "firstPowerFree"
	// RelicExtraReward adds Value card choices to battle rewards.
	RelicExtraReward RelicEffect = "extraReward"
	// RelicExtraGold pays Value gold when the relic is found.
	RelicExtraGold RelicEffect = "extraGold"
)

var relicEffects = []RelicEffect{
	RelicExtraEnergy, RelicBattleStrength, RelicFirstPowerFree, RelicExtraReward, RelicExtraGold,
}

// Relic is an immutable relic definition.
type Relic struct {
	ID             string
	NameKey        string
	DescriptionKey string
	Effect         RelicEffect
	Value          int
}

// Tier is the encounter pool an enemy belongs to.
type Tier string

const (
	TierNormal Tier = "normal"
	TierElite  Tier = "elite"
	TierBoss   Tier = "boss"
)

// IntentType is what an enemy does on its turn.
type IntentType string

const (
	IntentAttack IntentType = "attack"
	IntentBlock  IntentType = "block"
	IntentBuff   IntentType = "buff"
	IntentDebuff IntentType = "debuff"
	IntentHeal   IntentType = "heal"
)

var intentTypes = []IntentType{IntentAttack, IntentBlock, IntentBuff, IntentDebuff, IntentHeal}

// IntentCondition is a telegraph hint attached to an intent. Conditions are
// descriptive only; intent order never depends on them.
type IntentCondition string

const (
	ConditionNone           IntentCondition = ""
	ConditionPlayerBlockLow IntentCondition = "playerBlockLow"
	ConditionHPBelowHalf    IntentCondition = "hpBelowHalf"
)

// Intent is one step of an enemy's cyclic action list.
type Intent struct {
	Type      IntentType
	Value     int
	Hits      int // always >= 1
	Condition IntentCondition
	Status    state.Status // set for buff and debuff
}

// Enemy is an immutable enemy definition.
type Enemy struct {
	ID      string
	NameKey string
	HP      int
	Tier    Tier
	Weight  float64
	Intents []Intent
}

// OptionType is the closed set of event outcomes.
type OptionType string

const (
	OptionHeal      OptionType = "heal"
	OptionTransform OptionType = "transform"
	OptionGainRelic OptionType = "gainRelic"
	OptionAddCard   OptionType = "addCard"
	OptionUpgrade   OptionType = "upgrade"
)

var optionTypes = []OptionType{OptionHeal, OptionTransform, OptionGainRelic, OptionAddCard, OptionUpgrade}

// Option is one choice inside an event.
type Option struct {
	ID      string
	Type    OptionType
	Value   int
	Cost    int
	CardID  string
	RelicID string // empty means a random unowned relic
	TextKey string
}

// Event is an immutable event definition.
type Event struct {
	ID      string
	NameKey string
	Options []Option
}

// Option returns the option with the given id.
func (e Event) Option(id string) (Option, bool) {
	for _, o := range e.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}
