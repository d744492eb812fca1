package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}

	parts := chunk(ids, firestoreInLimit)

	assert.Len(t, parts, 2)
	assert.Len(t, parts[0], 10)
	assert.Equal(t, []string{"k", "l"}, parts[1])
	assert.Empty(t, chunk(nil, firestoreInLimit))
	assert.Len(t, chunk(ids[:10], firestoreInLimit), 1)
}

func TestSlugDocID(t *testing.T) {
	assert.Equal(t, "categories:aromaterapia", slugDocID("categories", "aromaterapia"))
	assert.Equal(t, "subcategories_cat1:jabones", slugDocID("subcategories/cat1", "jabones"))
}
