package store

import (
	"os"
	"path/filepath"
	"testing"

	"quickaccess/internal/handle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFilePersister_MissingFileIsEmpty(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "Library", "quickaccess", "local_cache.yaml"))
	s, err := Open(p)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, handle.CategoryNone, s.Filter())

	_, err = os.Stat(p.Path())
	assert.True(t, os.IsNotExist(err), "opening must not create the file")
}

func TestFilePersister_RoundTripPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "local_cache.yaml")
	s, err := Open(NewFilePersister(path))
	require.NoError(t, err)

	s.AddURLs([]URLEntry{
		{URL: "https://c.example", Title: "C"},
		{URL: "https://a.example", Title: "A"},
	})
	s.AddMenuItems([]MenuEntry{{Path: "Edit/Project Settings", Title: "Settings"}})
	require.NoError(t, s.Move(2, 0))
	s.SetFilter(handle.CategoryExternalFile)

	reopened, err := Open(NewFilePersister(path))
	require.NoError(t, err)
	assert.Equal(t, handle.CategoryExternalFile, reopened.Filter())
	assert.Equal(t, identities(s.Handles()), identities(reopened.Handles()))
	for i, h := range reopened.Handles() {
		assert.Equal(t, s.Handles()[i].ID, h.ID)
		assert.Equal(t, s.Handles()[i].Title, h.Title)
	}
}

func TestFilePersister_LegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local_cache.yaml")
	legacy := `
selected_category: 0
handles:
  - guid: 0123456789abcdef0123456789abcdef
  - path: 'D:\Art\Concepts'
  - url: https://docs.unity3d.com
    title: Manual
  - kind: teleporter
    menu_path: Window/Teleport
    title: Teleport
  -
`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	p := NewFilePersister(path)
	s, err := Open(p)
	require.NoError(t, err)
	require.Equal(t, 4, s.Len())

	kinds := []handle.Kind{}
	for _, h := range s.Handles() {
		kinds = append(kinds, h.Kind)
		assert.NotEmpty(t, h.ID)
	}
	assert.Equal(t, []handle.Kind{
		handle.KindProjectAsset,
		handle.KindExternalFile,
		handle.KindURL,
		handle.KindMenuCommand,
	}, kinds)
	assert.Equal(t, "D:/Art/Concepts", s.Handles()[1].Path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kind: project_asset")
	assert.Contains(t, string(data), "version: 2")

	modified, err := p.Modified()
	require.NoError(t, err)
	assert.False(t, modified, "the upgrade write is remembered")
}

func TestFilePersister_CoercesBadRecords(t *testing.T) {
	const valid = `
  - id: 11111111-1111-1111-1111-111111111111
    kind: url
    url: https://a.example
    title: A`

	tests := []struct {
		name     string
		record   string
		wantKind handle.Kind
		wantID   string
	}{
		{
			name: "bad timestamp",
			record: `
  - id: 22222222-2222-2222-2222-222222222222
    kind: external_file
    path: /tmp/notes.txt
    added_at: yesterday`,
			wantKind: handle.KindExternalFile,
			wantID:   "/tmp/notes.txt",
		},
		{
			name: "title is a list",
			record: `
  - kind: menu_command
    menu_path: Window/General/Console
    title: [x, y]`,
			wantKind: handle.KindMenuCommand,
			wantID:   "Window/General/Console",
		},
		{
			name:     "bare scalar path",
			record:   "\n  - D:\\Art\\hero.png",
			wantKind: handle.KindExternalFile,
			wantID:   "D:/Art/hero.png",
		},
		{
			name:     "bare scalar guid",
			record:   "\n  - 0123456789ABCDEF0123456789ABCDEF",
			wantKind: handle.KindProjectAsset,
			wantID:   "0123456789abcdef0123456789abcdef",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "local_cache.yaml")
			content := "version: 2\nselected_category: external\nhandles:" + valid + tt.record + "\n"
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))

			p := NewFilePersister(path)
			s, err := Open(p)
			require.NoError(t, err)
			require.Equal(t, 2, s.Len())
			assert.Equal(t, handle.CategoryExternalFile, s.Filter())

			assert.Equal(t, "11111111-1111-1111-1111-111111111111", s.Handles()[0].ID)
			assert.Equal(t, "A", s.Handles()[0].Title)

			h := s.Handles()[1]
			assert.Equal(t, tt.wantKind, h.Kind)
			assert.Equal(t, tt.wantID, h.Identity())
			assert.NotEmpty(t, h.ID)

			// The repaired list is written back once and loads cleanly.
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			var clean State
			require.NoError(t, yaml.Unmarshal(data, &clean))
			assert.Len(t, clean.Handles, 2)

			modified, err := p.Modified()
			require.NoError(t, err)
			assert.False(t, modified)
		})
	}
}

func TestFilePersister_HandlesNotAList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local_cache.yaml")
	require.NoError(t, os.WriteFile(path, []byte("selected_category: assets\nhandles: oops\n"), 0644))

	s, err := Open(NewFilePersister(path))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, handle.CategoryProjectAsset, s.Filter())
}

// Only YAML syntax errors fail the load.
func TestFilePersister_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local_cache.yaml")
	require.NoError(t, os.WriteFile(path, []byte("handles: [oops"), 0644))

	_, err := Open(NewFilePersister(path))
	assert.Error(t, err)
}

func TestReload_PicksUpExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local_cache.yaml")
	first, err := Open(NewFilePersister(path))
	require.NoError(t, err)
	first.AddURLs([]URLEntry{{URL: "https://a.example", Title: "A"}})

	require.NoError(t, first.Reload())
	assert.Equal(t, 1, first.Len(), "unchanged file is not reloaded")

	second, err := Open(NewFilePersister(path))
	require.NoError(t, err)
	second.AddURLs([]URLEntry{{URL: "https://b.example", Title: "B"}})

	require.NoError(t, first.Reload())
	assert.Equal(t, 2, first.Len())
}
