package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quickaccess/internal/launch"
)

const heroGUID = "0123456789abcdef0123456789abcdef"

// setupWorkspace creates a small Unity project and points the global flags at it.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	logger = zap.NewNop()

	ws := t.TempDir()
	workspace = ws
	configPath = ""
	t.Cleanup(func() {
		workspace = ""
		configPath = ""
		listCategory = ""
		listJSON = false
		clearYes = false
		addTitle = ""
		infoState = false
		sceneObjScene, sceneObjHierarchy = "", ""
		sceneObjFileID, sceneObjInstanceID = 0, 0
	})

	write := func(rel, content string) {
		p := filepath.Join(ws, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	write("Assets/hero.png", "png")
	write("Assets/hero.png.meta", "fileFormatVersion: 2\nguid: "+heroGUID+"\n")
	write("Assets/Scenes/Main.unity", "scene")
	write("Assets/Scenes/Main.unity.meta", "fileFormatVersion: 2\nguid: fedcba9876543210fedcba9876543210\n")
	return ws
}

func newCmd(stdin string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	return cmd, &out, &errOut
}

func externalFile(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(name), 0644))
	return p
}

func listEntries(t *testing.T) []listEntry {
	t.Helper()
	listJSON = true
	defer func() { listJSON = false }()

	cmd, out, _ := newCmd("")
	require.NoError(t, runList(cmd, nil))
	var entries []listEntry
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	return entries
}

func TestAddClassifiesAndLists(t *testing.T) {
	ws := setupWorkspace(t)
	notes := externalFile(t, "notes.txt")

	cmd, out, _ := newCmd("")
	require.NoError(t, runAdd(cmd, []string{"Assets/hero.png", notes}))
	assert.Contains(t, out.String(), "Added 2 item(s)")

	entries := listEntries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, "project_asset", entries[0].Kind)
	assert.Equal(t, heroGUID, entries[0].Identity)
	assert.Equal(t, "hero.png", entries[0].Name)
	assert.Equal(t, "ok", entries[0].Status)
	assert.Equal(t, "external_file", entries[1].Kind)
	assert.Equal(t, filepath.ToSlash(notes), entries[1].Identity)

	// The list and the asset database live under Library/.
	_, err := os.Stat(filepath.Join(ws, "Library", "quickaccess", "local_cache.yaml"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(ws, "Library", "quickaccess", "assetdb.sqlite"))
	assert.NoError(t, err)
}

func TestAddDuplicateReportsAndFails(t *testing.T) {
	setupWorkspace(t)
	notes := externalFile(t, "notes.txt")

	cmd, _, _ := newCmd("")
	require.NoError(t, runAdd(cmd, []string{"Assets/hero.png"}))

	cmd, _, _ = newCmd("")
	err := runAdd(cmd, []string{"Assets/hero.png"})
	require.Error(t, err, "nothing added")
	assert.Equal(t, "Asset already exists.", err.Error())

	// Partial success prints the errors but does not fail.
	cmd, out, errOut := newCmd("")
	require.NoError(t, runAdd(cmd, []string{"Assets/hero.png", notes}))
	assert.Contains(t, out.String(), "Added 1 item(s)")
	assert.Contains(t, errOut.String(), "Asset already exists.")
}

func TestAddReindexesNewAssets(t *testing.T) {
	ws := setupWorkspace(t)

	cmd, _, _ := newCmd("")
	require.NoError(t, runAdd(cmd, []string{"Assets/hero.png"}))

	// Created after the first index.
	require.NoError(t, os.WriteFile(filepath.Join(ws, "Assets", "villain.png"), []byte("png"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(ws, "Assets", "villain.png.meta"),
		[]byte("fileFormatVersion: 2\nguid: aaaabbbbccccddddeeeeffff00001111\n"), 0644))

	cmd, out, _ := newCmd("")
	require.NoError(t, runAdd(cmd, []string{"Assets/villain.png"}))
	assert.Contains(t, out.String(), "Added 1 item(s)")

	// A project path without a .meta file is reported, not pinned.
	require.NoError(t, os.WriteFile(filepath.Join(ws, "Assets", "ghost.png"), []byte("png"), 0644))
	cmd, _, _ = newCmd("")
	err := runAdd(cmd, []string{"Assets/ghost.png"})
	require.Error(t, err)
	assert.Equal(t, "Asset is not in the asset database. Assets/ghost.png", err.Error())

	entries := listEntries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, "project_asset", entries[1].Kind)
	assert.Equal(t, "aaaabbbbccccddddeeeeffff00001111", entries[1].Identity)
	assert.Equal(t, "villain.png", entries[1].Name)
}

func TestAddURLAndMenu(t *testing.T) {
	setupWorkspace(t)

	cmd, _, _ := newCmd("")
	err := runAddURL(cmd, []string{"https://docs.unity3d.com"})
	require.Error(t, err)
	assert.Equal(t, "Title is null or empty.", err.Error())

	addTitle = "Docs"
	require.NoError(t, runAddURL(cmd, []string{"https://docs.unity3d.com"}))
	err = runAddURL(cmd, []string{"https://docs.unity3d.com"})
	assert.EqualError(t, err, "URL already exists.")

	addTitle = "Console"
	require.NoError(t, runAddMenu(cmd, []string{"Window/General/Console"}))

	entries := listEntries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, "url", entries[0].Kind)
	assert.Equal(t, "Docs", entries[0].Name)
	assert.Equal(t, "menu_command", entries[1].Kind)
	assert.Equal(t, "External Files", entries[1].Category)
}

func TestAddSceneObject(t *testing.T) {
	setupWorkspace(t)

	sceneObjScene = "Assets/Scenes/Main.unity"
	sceneObjHierarchy = "Level/Spawn Point"
	sceneObjFileID = 118394720

	cmd, _, _ := newCmd("")
	require.NoError(t, runAddSceneObject(cmd, nil))

	entries := listEntries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, "scene_object", entries[0].Kind)
	assert.Equal(t, "GlobalObjectId_V1-2-fedcba9876543210fedcba9876543210-118394720-0", entries[0].Identity)
	assert.Equal(t, "Spawn Point", entries[0].Name)
	assert.Equal(t, "unverifiable", entries[0].Status)

	err := runAddSceneObject(cmd, nil)
	assert.EqualError(t, err, "Object already exists.")

	sceneObjScene, sceneObjHierarchy, sceneObjFileID = "", "", 0
	err = runAddSceneObject(cmd, nil)
	assert.EqualError(t, err, "Object is null.")
}

func TestRemoveMoveAndFilter(t *testing.T) {
	setupWorkspace(t)
	a := externalFile(t, "a.txt")
	b := externalFile(t, "b.txt")

	cmd, out, _ := newCmd("")
	require.NoError(t, runAdd(cmd, []string{"Assets/hero.png", a, b}))

	require.NoError(t, runMove(cmd, []string{"1", "3"}))
	names := func() []string {
		var out []string
		for _, e := range listEntries(t) {
			out = append(out, e.Name)
		}
		return out
	}
	assert.Equal(t, []string{"a.txt", "b.txt", "hero.png"}, names())

	err := runMove(cmd, []string{"0", "2"})
	assert.Error(t, err)
	assert.Error(t, runMove(cmd, []string{"one", "2"}))

	// The saved filter drives list when no --category is given.
	out.Reset()
	require.NoError(t, runFilter(cmd, []string{"assets"}))
	assert.Contains(t, out.String(), "Filter set to Assets (1 of 3 items)")
	assert.Equal(t, []string{"hero.png"}, names())

	listCategory = "external"
	assert.Equal(t, []string{"a.txt", "b.txt"}, names())
	listCategory = ""

	out.Reset()
	require.NoError(t, runFilter(cmd, nil))
	assert.Equal(t, "assets\n", out.String())
	assert.Error(t, runFilter(cmd, []string{"bogus"}))

	// Positions refer to the list before removal.
	out.Reset()
	require.NoError(t, runRemove(cmd, []string{"1", "2"}))
	assert.Contains(t, out.String(), "Removed a.txt")
	assert.Contains(t, out.String(), "Removed b.txt")

	listCategory = "all"
	entries := listEntries(t)
	require.Len(t, entries, 1)

	require.NoError(t, runRemove(cmd, []string{entries[0].ID[:8]}))
	assert.Empty(t, listEntries(t))

	assert.Error(t, runRemove(cmd, []string{"7"}))
}

func TestClearAsksForConfirmation(t *testing.T) {
	setupWorkspace(t)

	cmd, _, _ := newCmd("")
	require.NoError(t, runAdd(cmd, []string{"Assets/hero.png"}))

	cmd, out, _ := newCmd("n\n")
	require.NoError(t, runClear(cmd, nil))
	assert.Contains(t, out.String(), "Cancelled.")
	assert.Len(t, listEntries(t), 1)

	cmd, out, _ = newCmd("y\n")
	require.NoError(t, runClear(cmd, nil))
	assert.Contains(t, out.String(), "Removed 1 item(s).")
	assert.Empty(t, listEntries(t))

	require.NoError(t, runAdd(cmd, []string{"Assets/hero.png"}))
	clearYes = true
	cmd, _, _ = newCmd("")
	require.NoError(t, runClear(cmd, nil))
	assert.Empty(t, listEntries(t))
}

func TestInfo(t *testing.T) {
	setupWorkspace(t)

	cmd, _, _ := newCmd("")
	require.NoError(t, runAdd(cmd, []string{"Assets/hero.png"}))
	id := listEntries(t)[0].ID

	cmd, out, _ := newCmd("")
	require.NoError(t, runInfo(cmd, []string{"1"}))
	assert.Contains(t, out.String(), id)
	assert.Contains(t, out.String(), "Assets/hero.png")

	infoState = true
	cmd, out, _ = newCmd("")
	require.NoError(t, runInfo(cmd, nil))
	assert.Contains(t, out.String(), "State file:")
	assert.Contains(t, out.String(), "version: 2")
	assert.Contains(t, out.String(), heroGUID)

	infoState = false
	assert.Error(t, runInfo(cmd, nil))
}

func TestIndexAndDoctor(t *testing.T) {
	ws := setupWorkspace(t)
	notes := externalFile(t, "notes.txt")

	cmd, _, _ := newCmd("")
	require.NoError(t, runAdd(cmd, []string{"Assets/hero.png", notes}))

	// Asset deleted from the project, external file deleted from disk.
	require.NoError(t, os.Remove(filepath.Join(ws, "Assets", "hero.png")))
	require.NoError(t, os.Remove(filepath.Join(ws, "Assets", "hero.png.meta")))
	require.NoError(t, os.Remove(notes))

	cmd, out, _ := newCmd("")
	require.NoError(t, runIndex(cmd, nil))
	assert.Contains(t, out.String(), "Indexed 1 assets")

	cmd, out, _ = newCmd("")
	require.NoError(t, runDoctor(cmd, nil))
	assert.Contains(t, out.String(), "Asset database: 1 entries")
	assert.Contains(t, out.String(), "2 item(s): 0 ok, 2 missing, 0 unverifiable.")
	assert.Contains(t, out.String(), "notes.txt")

	// Missing items are reported, never pruned.
	assert.Len(t, listEntries(t), 2)
}

func TestOpenMenuRequiresCommand(t *testing.T) {
	setupWorkspace(t)

	addTitle = "Console"
	cmd, _, _ := newCmd("")
	require.NoError(t, runAddMenu(cmd, []string{"Window/General/Console"}))

	err := runOpen(cmd, []string{"1"})
	assert.True(t, errors.Is(err, launch.ErrMenuDisabled))
}

func TestInvalidConfigFails(t *testing.T) {
	ws := setupWorkspace(t)

	path := filepath.Join(ws, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ui:\n  theme: neon\n"), 0644))
	configPath = path

	cmd, _, _ := newCmd("")
	err := runList(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ui.theme")
}

func TestAssetDBDisabled(t *testing.T) {
	ws := setupWorkspace(t)

	path := filepath.Join(ws, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("asset_db:\n  enabled: false\n"), 0644))
	configPath = path

	notes := externalFile(t, "notes.txt")
	cmd, _, _ := newCmd("")
	require.NoError(t, runAdd(cmd, []string{"Assets/hero.png", notes}))

	// Without the asset database project paths are pinned as plain files
	// inside the project.
	entries := listEntries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, "external_file", entries[0].Kind)
	assert.Equal(t, filepath.ToSlash(filepath.Join(ws, "Assets", "hero.png")), entries[0].Identity)
	assert.Equal(t, "ok", entries[0].Status)

	assert.Error(t, runIndex(cmd, nil))
}
