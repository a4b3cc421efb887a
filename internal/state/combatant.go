package state

// Vitals holds the hit points and block shared by the player and enemies.
type Vitals struct {
	HP    int `json:"hp"`
	MaxHP int `json:"maxHp"`
	Block int `json:"block"`
}

// Dead reports whether hp has dropped to zero or below.
func (v *Vitals) Dead() bool {
	return v.HP <= 0
}

// Heal restores hp up to MaxHP.
func (v *Vitals) Heal(amount int) {
	v.HP = min(v.MaxHP, v.HP+amount)
}

// Counters is a stack count per kind. The zero value is ready to use
// for reads; Add allocates on first write.
type Counters[K ~string] map[K]int

// Get returns the stack count for k.
func (c Counters[K]) Get(k K) int {
	return c[k]
}

// Decay lowers k by n, flooring at zero.
func (c Counters[K]) Decay(k K, n int) {
	if c[k] == 0 {
		return
	}
	c[k] = max(0, c[k]-n)
}

// Add stacks n onto k and returns the updated map.
func (c Counters[K]) Add(k K, n int) Counters[K] {
	if c == nil {
		c = make(Counters[K])
	}
	c[k] += n
	return c
}

// Clone returns a copy safe to mutate independently.
func (c Counters[K]) Clone() Counters[K] {
	if c == nil {
		return nil
	}
	out := make(Counters[K], len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Player is the mutable player side of a run.
type Player struct {
	Vitals
	Energy        int              `json:"energy"`
	EnergyPerTurn int              `json:"energyPerTurn"`
	Strength      int              `json:"strength"`
	Powers        Counters[Power]  `json:"powers"`
	Statuses      Counters[Status] `json:"statuses"`
	Hand          []string         `json:"hand"`
	DrawPile      []string         `json:"drawPile"`
	DiscardPile   []string         `json:"discardPile"`
	ExhaustPile   []string         `json:"exhaustPile"`
}

// CardCount is the number of cards across all four piles.
func (p *Player) CardCount() int {
	return len(p.Hand) + len(p.DrawPile) + len(p.DiscardPile) + len(p.ExhaustPile)
}

// AddPower stacks a power.
func (p *Player) AddPower(k Power, n int) {
	p.Powers = p.Powers.Add(k, n)
}

// AddStatus stacks a status.
func (p *Player) AddStatus(k Status, n int) {
	p.Statuses = p.Statuses.Add(k, n)
}

// Enemy is one live enemy, created fresh from a definition for each encounter.
type Enemy struct {
	Vitals
	ID          string           `json:"id"`
	IntentIndex int              `json:"intentIndex"`
	Statuses    Counters[Status] `json:"statuses"`
}

// AddStatus stacks a status.
func (e *Enemy) AddStatus(k Status, n int) {
	e.Statuses = e.Statuses.Add(k, n)
}
