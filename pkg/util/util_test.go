package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReverseG(t *testing.T) {
	arr := []int32{1, 2, 3, 4}
	reversed := ReverseG(arr)

	assert.Equal(t, []int32{4, 3, 2, 1}, reversed)
	assert.Equal(t, []int32{1, 2, 3, 4}, arr)
}

func TestBitPackInt64(t *testing.T) {
	tests := []struct {
		a, b int64
	}{
		{0, 0},
		{1, 2},
		{2147483647, 2147483647},
		{12345, 0},
	}

	for _, tt := range tests {
		packed := BitPackInt64(tt.a, tt.b, 32)
		a, b := BitUnpackInt64(packed, 32)
		assert.Equal(t, int32(tt.a), a)
		assert.Equal(t, int32(tt.b), b)
	}

	assert.NotEqual(t, BitPackInt64(1, 2, 32), BitPackInt64(2, 1, 32))
}

func TestIDMap(t *testing.T) {
	m := NewIdMap()

	highway := m.GetID("highway")
	name := m.GetID("name")

	assert.Equal(t, 0, highway)
	assert.Equal(t, 1, name)
	assert.Equal(t, highway, m.GetID("highway"))
	assert.Equal(t, "name", m.GetStr(name))
	assert.Equal(t, "", m.GetStr(99))
	assert.Equal(t, 2, m.Len())

	restored := NewIdMapFrom(m.Strings())
	assert.Equal(t, name, restored.GetID("name"))
}

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 1.23, RoundFloat(1.2345, 2))
	assert.Equal(t, 2.0, RoundFloat(1.99999, 3))
}
