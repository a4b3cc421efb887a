// Package mapgen builds the branching floor map a run climbs.
package mapgen

import (
	"fmt"

	"github.com/vovakirdan/stardust/internal/rng"
	"github.com/vovakirdan/stardust/internal/state"
)

const (
	// Floors is the number of steps in a climb. The last floor is the boss.
	Floors = 10
	// Choices is the number of nodes offered on every floor but the last.
	Choices = 3
)

// nodeTypes are the kinds a regular floor can roll, uniformly.
var nodeTypes = []state.NodeType{
	state.NodeBattle,
	state.NodeEvent,
	state.NodeShop,
	state.NodeTreasure,
	state.NodeElite,
}

// Generate rolls a fresh map. Nodes are rolled floor by floor, left to
// right, one draw each; the boss floor consumes no randomness.
func Generate(r rng.Source) []state.Floor {
	floors := make([]state.Floor, 0, Floors)
	for i := range Floors {
		if i == Floors-1 {
			floors = append(floors, state.Floor{
				{ID: nodeID(i, 0), Type: state.NodeBoss},
			})
			continue
		}

		floor := make(state.Floor, 0, Choices)
		for j := range Choices {
			floor = append(floor, state.Node{
				ID:   nodeID(i, j),
				Type: rng.Choose(r, nodeTypes),
			})
		}
		floors = append(floors, floor)
	}
	return floors
}

// CurrentOptions returns the nodes on floor nodeIndex, or an empty floor
// when the index is out of range.
func CurrentOptions(m []state.Floor, nodeIndex int) state.Floor {
	if nodeIndex < 0 || nodeIndex >= len(m) {
		return state.Floor{}
	}
	return m[nodeIndex]
}

func nodeID(floor, index int) string {
	return fmt.Sprintf("%d-%d", floor, index)
}
