package core

import "strconv"

// Action represents a semantic UI action, abstracted from physical key presses.
// Front-ends translate keys into actions and actions into Commands.
type Action int

const (
	ActionNone    Action = iota
	ActionUp             // K, Up arrow - move cursor up
	ActionDown           // J, Down arrow - move cursor down
	ActionLeft           // H, Left arrow - previous card
	ActionRight          // L, Right arrow - next card
	ActionConfirm        // Enter, Space - play card / choose option
	ActionEndTurn        // E - end the player turn
	ActionSkip           // S - skip reward / leave shop
	ActionPotion         // P - drink the first potion
	ActionGhost          // G - step the ghost replay
	ActionBack           // Esc - go back
	ActionQuit           // Q, Ctrl+C - exit session
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionConfirm:
		return "Confirm"
	case ActionEndTurn:
		return "EndTurn"
	case ActionSkip:
		return "Skip"
	case ActionPotion:
		return "Potion"
	case ActionGhost:
		return "Ghost"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// CommandKind names a game-level move the player can make.
type CommandKind string

const (
	CmdSelectNode   CommandKind = "select_node"
	CmdPlayCard     CommandKind = "play_card"
	CmdEndTurn      CommandKind = "end_turn"
	CmdTakeReward   CommandKind = "take_reward"
	CmdSkipReward   CommandKind = "skip_reward"
	CmdBuyCard      CommandKind = "buy_card"
	CmdRemoveCard   CommandKind = "remove_card"
	CmdBuyPotion    CommandKind = "buy_potion"
	CmdLeaveShop    CommandKind = "leave_shop"
	CmdResolveEvent CommandKind = "resolve_event"
	CmdUsePotion    CommandKind = "use_potion"
)

// Command is the "play this action" input contract: one fully specified
// player move. ID carries a card or option id, Index a node or potion slot.
type Command struct {
	Kind  CommandKind
	ID    string
	Index int
}

// String formats the command for logs.
func (c Command) String() string {
	switch c.Kind {
	case CmdSelectNode, CmdUsePotion:
		return string(c.Kind) + "#" + strconv.Itoa(c.Index)
	case CmdPlayCard, CmdTakeReward, CmdBuyCard, CmdResolveEvent:
		return string(c.Kind) + ":" + c.ID
	default:
		return string(c.Kind)
	}
}
