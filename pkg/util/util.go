package util

import (
	"math"
	"sync"
)

func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

func ReverseG[T any](arr []T) []T {
	copyArr := make([]T, len(arr)) // should do on the copy )
	copy(copyArr, arr)
	for i, j := 0, len(copyArr)-1; i < j; i, j = i+1, j-1 {
		copyArr[i], copyArr[j] = copyArr[j], copyArr[i]
	}
	return copyArr
}

// BitPackInt64 packs b above the lowest offset bits holding a. a must be non-negative and fit in offset bits.
func BitPackInt64(a int64, b int64, offset int) int64 {
	return b<<offset | a
}

func BitUnpackInt64(packed int64, offset int) (int32, int32) {
	mask := int64(1)<<offset - 1
	return int32(packed & mask), int32(packed >> offset)
}

// IDMap interns strings into dense int ids.
type IDMap struct {
	mu      sync.RWMutex
	strToID map[string]int
	idToStr []string
}

func NewIdMap() *IDMap {
	return &IDMap{
		strToID: make(map[string]int),
		idToStr: make([]string, 0),
	}
}

func NewIdMapFrom(strs []string) *IDMap {
	m := NewIdMap()
	for _, s := range strs {
		m.GetID(s)
	}
	return m
}

func (m *IDMap) GetID(s string) int {
	m.mu.RLock()
	id, ok := m.strToID[s]
	m.mu.RUnlock()
	if ok {
		return id
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.strToID[s]; ok {
		return id
	}
	id = len(m.idToStr)
	m.strToID[s] = id
	m.idToStr = append(m.idToStr, s)
	return id
}

func (m *IDMap) GetStr(id int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 0 || id >= len(m.idToStr) {
		return ""
	}
	return m.idToStr[id]
}

func (m *IDMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.idToStr)
}

// Strings returns the interned strings ordered by id.
func (m *IDMap) Strings() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.idToStr))
	copy(out, m.idToStr)
	return out
}
