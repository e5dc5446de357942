package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"quickaccess/internal/handle"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	root := t.TempDir()
	rootSlash := filepath.ToSlash(root)
	resolver := handle.NewMapResolver(map[string]string{
		"Assets/Textures/hero.png":               "g-hero",
		"Packages/com.example.tools/Runtime/a.cs": "g-pkg",
	})

	objs, external, unindexed := Classify([]string{
		"Assets/Textures/hero.png",
		rootSlash + "/Packages/com.example.tools/Runtime/a.cs",
		`Assets\Textures\hero.png`,
		"/opt/shared/reference.pdf",
		rootSlash + "/Assets/NotIndexed.txt",
		"/opt/shared/reference.pdf",
	}, root, resolver)

	assert.Equal(t, []handle.Object{
		{AssetPath: "Assets/Textures/hero.png"},
		{AssetPath: "Packages/com.example.tools/Runtime/a.cs"},
	}, objs)
	assert.Equal(t, []string{"/opt/shared/reference.pdf"}, external)
	assert.Equal(t, []string{"Assets/NotIndexed.txt"}, unindexed)
}

func TestClassify_NoResolver(t *testing.T) {
	root := t.TempDir()
	objs, external, unindexed := Classify([]string{"/tmp/a", "", "Assets/hero.png"}, root, nil)
	assert.Empty(t, objs)
	assert.Empty(t, unindexed)
	// Project paths resolve against the project, not the working directory.
	assert.Equal(t, []string{"/tmp/a", "", filepath.ToSlash(root) + "/Assets/hero.png"}, external)
}

func TestAddPaths_RefreshesUnindexedAssets(t *testing.T) {
	resolver := handle.NewMapResolver(map[string]string{"Assets/hero.png": "g-hero"})
	s, p := newTestStore(t, WithResolver(resolver))
	ext := writeFiles(t, "notes.txt")[0]

	refreshes := 0
	refresh := func(ctx context.Context) error {
		refreshes++
		resolver.Set("Assets/villain.png", "g-villain")
		return nil
	}

	added, errs := s.AddPaths(context.Background(),
		[]string{"Assets/hero.png", "Assets/villain.png", "Assets/ghost.png", ext}, "", refresh)
	assert.True(t, added)
	assert.Equal(t, 1, refreshes)
	assert.Equal(t, []string{"Asset is not in the asset database. Assets/ghost.png"}, errs)
	assert.Equal(t, []string{"g-hero", "g-villain", ext}, identities(s.Handles()))
	assert.Equal(t, handle.KindProjectAsset, s.Handles()[1].Kind)
	assert.Equal(t, 2, p.Saves)
}

func TestAddPaths_NoRefreshWhenAllKnown(t *testing.T) {
	resolver := handle.NewMapResolver(map[string]string{"Assets/hero.png": "g-hero"})
	s, _ := newTestStore(t, WithResolver(resolver))

	refresh := func(ctx context.Context) error {
		t.Fatal("refresh must not run")
		return nil
	}
	added, errs := s.AddPaths(context.Background(), []string{"Assets/hero.png"}, "", refresh)
	assert.True(t, added)
	assert.Empty(t, errs)
}

func TestAddPaths_RefreshFails(t *testing.T) {
	s, _ := newTestStore(t, WithResolver(handle.NewMapResolver(nil)))

	refresh := func(ctx context.Context) error { return errors.New("disk on fire") }
	added, errs := s.AddPaths(context.Background(), []string{"Assets/hero.png"}, "", refresh)
	assert.False(t, added)
	assert.Equal(t, []string{
		"Failed to refresh the asset database: disk on fire",
		"Asset is not in the asset database. Assets/hero.png",
	}, errs)
	assert.Equal(t, 0, s.Len())
}

func TestAddPaths_NilRefresh(t *testing.T) {
	s, _ := newTestStore(t, WithResolver(handle.NewMapResolver(nil)))

	added, errs := s.AddPaths(context.Background(), []string{"Assets/hero.png"}, "", nil)
	assert.False(t, added)
	assert.Equal(t, []string{"Asset is not in the asset database. Assets/hero.png"}, errs)
}
