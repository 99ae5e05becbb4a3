package contractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDijkstraWitnessCalculator(t *testing.T) {
	g := NewGraph(t)
	p, v, q, w, r := int32(0), int32(1), int32(2), int32(3), int32(4)

	tests := []struct {
		name     string
		calc     *DijkstraWitnessCalculator
		targets  []WitnessTarget
		excluded map[int32]struct{}
		expected []bool
	}{
		{
			name:     "q-w-r is longer than q-v-r",
			calc:     NewDefaultWitnessCalculator(),
			targets:  []WitnessTarget{{NodeID: r, Weight: 9}},
			expected: []bool{false},
		},
		{
			name:     "equal cost path is a witness",
			calc:     NewDefaultWitnessCalculator(),
			targets:  []WitnessTarget{{NodeID: r, Weight: 10}},
			expected: []bool{true},
		},
		{
			name:     "several targets in one search",
			calc:     NewDefaultWitnessCalculator(),
			targets:  []WitnessTarget{{NodeID: r, Weight: 11}, {NodeID: p, Weight: 16}, {NodeID: w, Weight: 5}},
			expected: []bool{true, false, true},
		},
		{
			name:     "hop limit",
			calc:     NewDijkstraWitnessCalculator(500, 1),
			targets:  []WitnessTarget{{NodeID: r, Weight: 10}},
			expected: []bool{false},
		},
		{
			name:     "settled node limit",
			calc:     NewDijkstraWitnessCalculator(1, 0),
			targets:  []WitnessTarget{{NodeID: r, Weight: 10}},
			expected: []bool{false},
		},
		{
			name:     "excluded vertex is never visited",
			calc:     NewDefaultWitnessCalculator(),
			targets:  []WitnessTarget{{NodeID: r, Weight: 10}},
			excluded: map[int32]struct{}{w: {}},
			expected: []bool{false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := tt.calc.FindWitnesses(g, q, v, tt.targets, tt.excluded)
			assert.Equal(t, tt.expected, found)
		})
	}
}

func TestWitnessCalculatorClone(t *testing.T) {
	calc := NewDijkstraWitnessCalculator(42, 3)
	clone, ok := calc.Clone().(*DijkstraWitnessCalculator)
	assert.True(t, ok)
	assert.Equal(t, 42, clone.MaxSettledNodes)
	assert.Equal(t, 3, clone.MaxHops)
	assert.NotSame(t, calc.pq, clone.pq)
}
