package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest_StableAcrossEqualContent(t *testing.T) {
	a := &Report{Roots: []string{"a"}, Live: []FunctionRef{{Label: "f"}, {Label: "g"}}}
	b := &Report{Roots: []string{"a"}, Live: []FunctionRef{{Label: "f"}, {Label: "g"}}}

	da, err := a.Digest()
	require.NoError(t, err)
	db, err := b.Digest()
	require.NoError(t, err)

	assert.Equal(t, da, db)
}

func TestDigest_DiffersOnDifferentLiveSet(t *testing.T) {
	a := &Report{Roots: []string{"a"}, Live: []FunctionRef{{Label: "f"}}}
	b := &Report{Roots: []string{"a"}, Live: []FunctionRef{{Label: "f"}, {Label: "g"}}}

	da, err := a.Digest()
	require.NoError(t, err)
	db, err := b.Digest()
	require.NoError(t, err)

	assert.NotEqual(t, da, db)
}
