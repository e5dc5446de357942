package handle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNullObject   = errors.New("Object is null.")
	ErrEmptyPath    = errors.New("Path is null or empty.")
	ErrEmptyURL     = errors.New("URL is null or empty.")
	ErrEmptyMenu    = errors.New("Menu path is null or empty.")
	ErrEmptyTitle   = errors.New("Title is null or empty.")
	ErrNoResolver   = errors.New("Asset database is not available.")
	ErrUnresolvable = errors.New("Cannot resolve asset GUID.")
)

// now is replaced in tests.
var now = time.Now

// NormalizePath converts Windows separators to forward slashes.
func NormalizePath(p string) string {
	return strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
}

func newHandle(kind Kind) *Handle {
	return &Handle{
		ID:      uuid.NewString(),
		Kind:    kind,
		AddedAt: now().UTC(),
	}
}

// FromObject builds a handle for a persistable asset or a scene object.
func FromObject(obj Object, resolver Resolver) (*Handle, error) {
	if obj.IsZero() {
		return nil, ErrNullObject
	}

	if obj.IsPersistent() {
		if resolver == nil {
			return nil, ErrNoResolver
		}
		assetPath := NormalizePath(obj.AssetPath)
		guid, ok := resolver.GUIDForPath(assetPath)
		if !ok || guid == "" {
			return nil, fmt.Errorf("%w %s", ErrUnresolvable, assetPath)
		}
		h := newHandle(KindProjectAsset)
		h.GUID = guid
		return h, nil
	}

	scenePath := NormalizePath(obj.ScenePath)
	var sceneGUID string
	if resolver != nil && scenePath != "" {
		sceneGUID, _ = resolver.GUIDForPath(scenePath)
	}

	h := newHandle(KindSceneObject)
	h.GUID = GlobalObjectID(sceneGUID, obj.localFileID())
	h.ScenePath = scenePath
	h.HierarchyPath = NormalizePath(obj.HierarchyPath)
	h.instanceID = obj.InstanceID
	return h, nil
}

// FromExternalPath builds a handle for a file or folder outside the project.
// A path that does not exist still yields a handle, flagged Missing.
func FromExternalPath(p string) (*Handle, error) {
	p = NormalizePath(p)
	if p == "" {
		return nil, ErrEmptyPath
	}

	h := newHandle(KindExternalFile)
	h.Path = p
	if _, err := os.Stat(filepath.FromSlash(p)); err != nil {
		h.missing = true
	}
	return h, nil
}

// FromURL builds a handle for a URL with its display title.
func FromURL(url, title string) (*Handle, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrEmptyURL
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	h := newHandle(KindURL)
	h.URL = url
	h.Title = title
	return h, nil
}

// FromMenuPath builds a handle for an invokable editor menu command.
func FromMenuPath(menuPath, title string) (*Handle, error) {
	menuPath = strings.TrimSpace(menuPath)
	if menuPath == "" {
		return nil, ErrEmptyMenu
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	h := newHandle(KindMenuCommand)
	h.MenuPath = menuPath
	h.Title = title
	return h, nil
}
