package datastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagTable(t *testing.T) {
	table := NewTagTable()

	ref := table.Add([]Tag{NewTag("highway", "residential"), NewTag("name", "Jalan Slamet Riyadi")})
	same := table.Add([]Tag{NewTag("name", "Jalan Slamet Riyadi"), NewTag("highway", "residential")})
	other := table.Add([]Tag{NewTag("highway", "primary")})

	assert.Equal(t, ref, same)
	assert.NotEqual(t, ref, other)
	assert.Equal(t, NoTags, table.Add(nil))
	assert.Equal(t, 2, table.Len())

	assert.Equal(t, "Jalan Slamet Riyadi", table.Find(ref, "name"))
	assert.Equal(t, "", table.Find(other, "name"))
	assert.ElementsMatch(t, []Tag{NewTag("highway", "primary")}, table.Get(other))
	assert.Empty(t, table.Get(NoTags))

	restored := NewTagTableFrom(table.Strings(), table.EncodedSets())
	assert.Equal(t, table.Get(ref), restored.Get(ref))
	assert.Equal(t, ref, restored.Add([]Tag{NewTag("highway", "residential"), NewTag("name", "Jalan Slamet Riyadi")}))
}
