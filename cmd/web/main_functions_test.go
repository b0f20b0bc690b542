package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-while/go-paradigmas/internal/content"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRouteTable(t *testing.T) {
	store, err := content.Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	writeRouteTable(&buf, store, content.AllRoutes(), 200)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 16)
	assert.True(t, strings.HasPrefix(lines[1], "/python "))
	assert.True(t, strings.HasSuffix(lines[1], "Python"))

	buf.Reset()
	writeRouteTable(&buf, store, []string{"/python/historico"}, 20)
	assert.Equal(t, 20, len([]rune(strings.TrimRight(buf.String(), "\n"))))
}

func TestWriteContentExport(t *testing.T) {
	store, err := content.Load()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "content.json")
	require.NoError(t, writeContentExport(path, store))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var export contentExport
	require.NoError(t, json.Unmarshal(data, &export))
	assert.Len(t, export.Routes, 16)
	assert.Len(t, export.Pages, 15)
	assert.Equal(t, "Guido van Rossum", export.Pages["/python/historico"].Creator)
	assert.Equal(t, store.Cover().Title, export.Cover.Title)
}
