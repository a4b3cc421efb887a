package content

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/stardust/internal/state"
)

// yamlCard is the on-disk shape of a card.
type yamlCard struct {
	ID             string     `yaml:"id"`
	NameKey        string     `yaml:"name_key"`
	DescriptionKey string     `yaml:"description_key"`
	Type           string     `yaml:"type"`
	Cost           int        `yaml:"cost"`
	Damage         int        `yaml:"damage"`
	Block          int        `yaml:"block"`
	Hits           int        `yaml:"hits,omitempty"`
	Draw           int        `yaml:"draw,omitempty"`
	Effect         string     `yaml:"effect,omitempty"`
	Value          int        `yaml:"value,omitempty"`
	Upgrade        *CardDelta `yaml:"upgrade,omitempty"`
}

type yamlRelic struct {
	ID             string `yaml:"id"`
	NameKey        string `yaml:"name_key"`
	DescriptionKey string `yaml:"description_key"`
	Effect         string `yaml:"effect"`
	Value          int    `yaml:"value"`
}

type yamlIntent struct {
	Type      string `yaml:"type"`
	Value     int    `yaml:"value"`
	Hits      int    `yaml:"hits,omitempty"`
	Condition string `yaml:"condition,omitempty"`
	Status    string `yaml:"status,omitempty"`
}

type yamlEnemy struct {
	ID      string       `yaml:"id"`
	NameKey string       `yaml:"name_key"`
	HP      int          `yaml:"hp"`
	Tier    string       `yaml:"tier"`
	Weight  float64      `yaml:"weight,omitempty"`
	Intents []yamlIntent `yaml:"intents"`
}

type yamlOption struct {
	ID      string `yaml:"id"`
	Type    string `yaml:"type"`
	Value   int    `yaml:"value,omitempty"`
	Cost    int    `yaml:"cost,omitempty"`
	CardID  string `yaml:"card_id,omitempty"`
	RelicID string `yaml:"relic_id,omitempty"`
	TextKey string `yaml:"text_key"`
}

type yamlEvent struct {
	ID      string       `yaml:"id"`
	NameKey string       `yaml:"name_key"`
	Options []yamlOption `yaml:"options"`
}

// ParseCards decodes a YAML card table.
func ParseCards(data []byte) ([]Card, error) {
	var raw []yamlCard
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}

	cards := make([]Card, 0, len(raw))
	for _, c := range raw {
		card := Card{
			ID:             c.ID,
			NameKey:        c.NameKey,
			DescriptionKey: c.DescriptionKey,
			Type:           CardType(c.Type),
			Cost:           c.Cost,
			Damage:         c.Damage,
			Block:          c.Block,
			Hits:           max(1, c.Hits),
			Draw:           c.Draw,
			Upgrade:        c.Upgrade,
		}

		if c.Effect != "" {
			kind := EffectKind(c.Effect)
			if !slices.Contains(effectKinds, kind) {
				return nil, ValidationError{
					Code:    "UNKNOWN_EFFECT",
					Message: fmt.Sprintf("card %q has unknown effect %q", c.ID, c.Effect),
				}
			}
			value := c.Value
			if value <= 0 {
				value = 1
			}
			card.Effect = CardEffect{Kind: kind, Value: value}
		}

		cards = append(cards, card)
	}
	return cards, nil
}

// ParseRelics decodes a YAML relic table.
func ParseRelics(data []byte) ([]Relic, error) {
	var raw []yamlRelic
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}

	relics := make([]Relic, 0, len(raw))
	for _, r := range raw {
		relics = append(relics, Relic{
			ID:             r.ID,
			NameKey:        r.NameKey,
			DescriptionKey: r.DescriptionKey,
			Effect:         RelicEffect(r.Effect),
			Value:          r.Value,
		})
	}
	return relics, nil
}

// ParseEnemies decodes a YAML enemy table.
func ParseEnemies(data []byte) ([]Enemy, error) {
	var raw []yamlEnemy
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}

	enemies := make([]Enemy, 0, len(raw))
	for _, e := range raw {
		intents := make([]Intent, 0, len(e.Intents))
		for _, in := range e.Intents {
			intent := Intent{
				Type:      IntentType(in.Type),
				Value:     in.Value,
				Hits:      max(1, in.Hits),
				Condition: IntentCondition(in.Condition),
			}
			if in.Status != "" {
				st, ok := state.ParseStatus(in.Status)
				if !ok {
					return nil, ValidationError{
						Code:    "UNKNOWN_STATUS",
						Message: fmt.Sprintf("enemy %q intent uses unknown status %q", e.ID, in.Status),
					}
				}
				intent.Status = st
			}
			intents = append(intents, intent)
		}

		enemies = append(enemies, Enemy{
			ID:      e.ID,
			NameKey: e.NameKey,
			HP:      e.HP,
			Tier:    Tier(e.Tier),
			Weight:  e.Weight,
			Intents: intents,
		})
	}
	return enemies, nil
}

// ParseEvents decodes a YAML event table.
func ParseEvents(data []byte) ([]Event, error) {
	var raw []yamlEvent
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}

	events := make([]Event, 0, len(raw))
	for _, e := range raw {
		options := make([]Option, 0, len(e.Options))
		for _, o := range e.Options {
			options = append(options, Option{
				ID:      o.ID,
				Type:    OptionType(o.Type),
				Value:   o.Value,
				Cost:    o.Cost,
				CardID:  o.CardID,
				RelicID: o.RelicID,
				TextKey: o.TextKey,
			})
		}
		events = append(events, Event{ID: e.ID, NameKey: e.NameKey, Options: options})
	}
	return events, nil
}
