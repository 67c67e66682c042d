package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_SingleGoFile(t *testing.T) {
	dir := t.TempDir()
	src := `package p

func f() {}

var a = f
var b = a
`
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	g, roots, err := analyze(context.Background(), path)
	require.NoError(t, err)
	assert.NotEmpty(t, roots)
	assert.NotNil(t, g)
}
