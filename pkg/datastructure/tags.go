package datastructure

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/lintang-b-s/chroute/pkg/util"
)

type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func NewTag(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

/*
TagTable. shared table of arc tag sets. arcs hanya simpan handle (TagsRef) ke tag set di table ini.
tag set yang sama dapat handle yang sama.
*/
type TagTable struct {
	mu      sync.RWMutex
	strings *util.IDMap
	sets    [][]int32 // key id, value id, key id, value id, ...
	index   map[string]int32
}

func NewTagTable() *TagTable {
	return &TagTable{
		strings: util.NewIdMap(),
		sets:    make([][]int32, 0),
		index:   make(map[string]int32),
	}
}

// NewTagTableFrom rebuilds a table from its interned strings and encoded sets.
func NewTagTableFrom(strs []string, sets [][]int32) *TagTable {
	t := NewTagTable()
	t.strings = util.NewIdMapFrom(strs)
	for i, set := range sets {
		encoded := append([]int32{}, set...)
		t.sets = append(t.sets, encoded)
		t.index[setKey(encoded)] = int32(i)
	}
	return t
}

func setKey(set []int32) string {
	var sb strings.Builder
	for i, id := range set {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(id)))
	}
	return sb.String()
}

// Add stores tags and returns its handle. empty tag sets get NoTags.
func (t *TagTable) Add(tags []Tag) int32 {
	if len(tags) == 0 {
		return NoTags
	}
	sorted := append([]Tag{}, tags...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Key != sorted[j].Key {
			return sorted[i].Key < sorted[j].Key
		}
		return sorted[i].Value < sorted[j].Value
	})

	encoded := make([]int32, 0, 2*len(sorted))
	for _, tag := range sorted {
		encoded = append(encoded, int32(t.strings.GetID(tag.Key)), int32(t.strings.GetID(tag.Value)))
	}
	key := setKey(encoded)

	t.mu.Lock()
	defer t.mu.Unlock()
	if ref, ok := t.index[key]; ok {
		return ref
	}
	ref := int32(len(t.sets))
	t.sets = append(t.sets, encoded)
	t.index[key] = ref
	return ref
}

func (t *TagTable) Get(ref int32) []Tag {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if ref < 0 || int(ref) >= len(t.sets) {
		return []Tag{}
	}
	set := t.sets[ref]
	tags := make([]Tag, 0, len(set)/2)
	for i := 0; i+1 < len(set); i += 2 {
		tags = append(tags, NewTag(t.strings.GetStr(int(set[i])), t.strings.GetStr(int(set[i+1]))))
	}
	return tags
}

// Find returns the value of key in the tag set ref, or "".
func (t *TagTable) Find(ref int32, key string) string {
	for _, tag := range t.Get(ref) {
		if tag.Key == key {
			return tag.Value
		}
	}
	return ""
}

func (t *TagTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sets)
}

func (t *TagTable) Strings() []string {
	return t.strings.Strings()
}

func (t *TagTable) EncodedSets() [][]int32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([][]int32, len(t.sets))
	for i, set := range t.sets {
		out[i] = append([]int32{}, set...)
	}
	return out
}
