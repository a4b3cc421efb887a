package content

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError contains details about a content table that failed to load.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// validate checks the four tables for internal consistency.
// Checks:
//   - ids are non-empty, unique per table, and never end in "+"
//   - enums are members of their closed sets
//   - events only reference cards and relics that exist
func validate(cards []Card, relics []Relic, enemies []Enemy, events []Event) error {
	if err := validateCards(cards); err != nil {
		return err
	}
	if err := validateRelics(relics); err != nil {
		return err
	}
	if err := validateEnemies(enemies); err != nil {
		return err
	}
	return validateEvents(events, cards, relics)
}

func validateID(kind, id string, seen map[string]bool) error {
	if id == "" {
		return ValidationError{Code: "EMPTY_ID", Message: kind + " with empty id"}
	}
	if strings.HasSuffix(id, UpgradeSuffix) {
		return ValidationError{
			Code:    "INVALID_ID",
			Message: fmt.Sprintf("%s id %q must not end in %q", kind, id, UpgradeSuffix),
		}
	}
	if seen[id] {
		return ValidationError{
			Code:    "DUPLICATE_ID",
			Message: fmt.Sprintf("%s id %q defined twice", kind, id),
		}
	}
	seen[id] = true
	return nil
}

func validateCards(cards []Card) error {
	seen := make(map[string]bool, len(cards))
	for _, c := range cards {
		if err := validateID("card", c.ID, seen); err != nil {
			return err
		}
		if !slices.Contains([]CardType{CardAttack, CardSkill, CardPower}, c.Type) {
			return ValidationError{
				Code:    "UNKNOWN_CARD_TYPE",
				Message: fmt.Sprintf("card %q has unknown type %q", c.ID, c.Type),
			}
		}
		if c.Cost < 0 {
			return ValidationError{
				Code:    "NEGATIVE_COST",
				Message: fmt.Sprintf("card %q costs %d", c.ID, c.Cost),
			}
		}
		if c.Effect.Kind != EffectNone {
			if !slices.Contains(effectKinds, c.Effect.Kind) {
				return ValidationError{
					Code:    "UNKNOWN_EFFECT",
					Message: fmt.Sprintf("card %q has unknown effect %q", c.ID, c.Effect.Kind),
				}
			}
			if c.Effect.Value <= 0 {
				return ValidationError{
					Code:    "INVALID_EFFECT_VALUE",
					Message: fmt.Sprintf("card %q effect value %d", c.ID, c.Effect.Value),
				}
			}
		}
	}
	return nil
}

func validateRelics(relics []Relic) error {
	seen := make(map[string]bool, len(relics))
	for _, r := range relics {
		if err := validateID("relic", r.ID, seen); err != nil {
			return err
		}
		if !slices.Contains(relicEffects, r.Effect) {
			return ValidationError{
				Code:    "UNKNOWN_RELIC_EFFECT",
				Message: fmt.Sprintf("relic %q has unknown effect %q", r.ID, r.Effect),
			}
		}
	}
	return nil
}

func validateEnemies(enemies []Enemy) error {
	seen := make(map[string]bool, len(enemies))
	for _, e := range enemies {
		if err := validateID("enemy", e.ID, seen); err != nil {
			return err
		}
		if e.HP <= 0 {
			return ValidationError{
				Code:    "INVALID_HP",
				Message: fmt.Sprintf("enemy %q has hp %d", e.ID, e.HP),
			}
		}
		if !slices.Contains([]Tier{TierNormal, TierElite, TierBoss}, e.Tier) {
			return ValidationError{
				Code:    "UNKNOWN_TIER",
				Message: fmt.Sprintf("enemy %q has unknown tier %q", e.ID, e.Tier),
			}
		}
		if len(e.Intents) == 0 {
			return ValidationError{
				Code:    "NO_INTENTS",
				Message: fmt.Sprintf("enemy %q has no intents", e.ID),
			}
		}
		for i, in := range e.Intents {
			if !slices.Contains(intentTypes, in.Type) {
				return ValidationError{
					Code:    "UNKNOWN_INTENT",
					Message: fmt.Sprintf("enemy %q intent %d has unknown type %q", e.ID, i, in.Type),
				}
			}
			switch in.Condition {
			case ConditionNone, ConditionPlayerBlockLow, ConditionHPBelowHalf:
			default:
				return ValidationError{
					Code:    "UNKNOWN_CONDITION",
					Message: fmt.Sprintf("enemy %q intent %d has unknown condition %q", e.ID, i, in.Condition),
				}
			}
			if (in.Type == IntentBuff || in.Type == IntentDebuff) && in.Status == "" {
				return ValidationError{
					Code:    "MISSING_STATUS",
					Message: fmt.Sprintf("enemy %q intent %d is a %s without a status", e.ID, i, in.Type),
				}
			}
		}
	}
	return nil
}

func validateEvents(events []Event, cards []Card, relics []Relic) error {
	cardIDs := make(map[string]bool, len(cards))
	for _, c := range cards {
		cardIDs[c.ID] = true
	}
	relicIDs := make(map[string]bool, len(relics))
	for _, r := range relics {
		relicIDs[r.ID] = true
	}

	seen := make(map[string]bool, len(events))
	for _, e := range events {
		if err := validateID("event", e.ID, seen); err != nil {
			return err
		}
		if len(e.Options) == 0 {
			return ValidationError{
				Code:    "NO_OPTIONS",
				Message: fmt.Sprintf("event %q has no options", e.ID),
			}
		}
		for _, o := range e.Options {
			if !slices.Contains(optionTypes, o.Type) {
				return ValidationError{
					Code:    "UNKNOWN_OPTION",
					Message: fmt.Sprintf("event %q option %q has unknown type %q", e.ID, o.ID, o.Type),
				}
			}
			if o.Type == OptionAddCard && !cardIDs[o.CardID] {
				return ValidationError{
					Code:    "UNKNOWN_CARD",
					Message: fmt.Sprintf("event %q option %q adds unknown card %q", e.ID, o.ID, o.CardID),
				}
			}
			if o.Type == OptionGainRelic && o.RelicID != "" && !relicIDs[o.RelicID] {
				return ValidationError{
					Code:    "UNKNOWN_RELIC",
					Message: fmt.Sprintf("event %q option %q grants unknown relic %q", e.ID, o.ID, o.RelicID),
				}
			}
		}
	}
	return nil
}
