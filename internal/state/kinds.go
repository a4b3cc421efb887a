package state

// Power is a persistent per-battle modifier on the player. Powers reset at
// battle start and otherwise only change when cards add to them.
type Power string

const (
	// PowerPlating is additive. Player block is reset to this value at the
	// start of every turn instead of to zero.
	PowerPlating Power = "plating"
	// PowerReflect is additive. Whenever an enemy attack deals hp damage,
	// the enemy takes this much damage back.
	PowerReflect Power = "reflect"
	// PowerExtraEnergy is additive but one-shot: it is added to energy at
	// the next turn start and then cleared.
	PowerExtraEnergy Power = "extraEnergy"
	// PowerLifesteal is an additive percentage of hp damage dealt to the
	// enemy that heals the player.
	PowerLifesteal Power = "lifesteal"
	// PowerFirstPowerFree is a flag (0 or 1) recording that the relic's free
	// power play has been used this battle.
	PowerFirstPowerFree Power = "firstPowerFree"
)

// Powers lists every known power kind.
func Powers() []Power {
	return []Power{PowerPlating, PowerReflect, PowerExtraEnergy, PowerLifesteal, PowerFirstPowerFree}
}

// ParsePower converts a content key into a Power.
func ParsePower(s string) (Power, bool) {
	for _, p := range Powers() {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// Status is a counter on a combatant that decays over turns or is consumed.
type Status string

const (
	// StatusWeak decays by one per turn. A weak enemy deals 25% less attack
	// damage (and loses a stack per attack); a weak player takes 25% more.
	StatusWeak Status = "weak"
	// StatusPhase is consumed one stack per incoming attack, negating it.
	StatusPhase Status = "phase"
	// StatusBurn damages the enemy at the start of its turn, then decays by one.
	StatusBurn Status = "burn"
	// StatusStrength is additive and adds to every enemy attack.
	StatusStrength Status = "strength"
)

// Statuses lists every known status kind.
func Statuses() []Status {
	return []Status{StatusWeak, StatusPhase, StatusBurn, StatusStrength}
}

// ParseStatus converts a content key into a Status.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses() {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// NodeType is the kind of encounter behind a map node.
type NodeType string

const (
	NodeBattle   NodeType = "battle"
	NodeEvent    NodeType = "event"
	NodeShop     NodeType = "shop"
	NodeTreasure NodeType = "treasure"
	NodeElite    NodeType = "elite"
	NodeBoss     NodeType = "boss"
)
