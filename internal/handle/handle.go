package handle

import (
	"path"
	"strings"
	"time"
)

// Handle is one pinned reference. Exactly one identity field is meaningful
// for a given Kind:
//
//	KindProjectAsset  GUID (asset guid from the .meta sidecar)
//	KindSceneObject   GUID (global object id) plus a best-effort label
//	KindExternalFile  Path
//	KindURL           URL
//	KindMenuCommand   MenuPath
type Handle struct {
	ID       string `yaml:"id,omitempty"`
	Kind     Kind   `yaml:"kind,omitempty"`
	GUID     string `yaml:"guid,omitempty"`
	Path     string `yaml:"path,omitempty"`
	URL      string `yaml:"url,omitempty"`
	MenuPath string `yaml:"menu_path,omitempty"`
	Title    string `yaml:"title,omitempty"`

	// Scene objects only. Kept so the item still has a readable name after
	// the in-memory object is gone.
	ScenePath     string `yaml:"scene_path,omitempty"`
	HierarchyPath string `yaml:"hierarchy_path,omitempty"`

	AddedAt time.Time `yaml:"added_at,omitempty"`

	instanceID int64
	missing    bool
}

// Category is the filter group of the handle.
func (h *Handle) Category() Category {
	return h.Kind.Category()
}

// InstanceID is the in-process object identity of a scene object handle.
// It is zero for every other kind and after a reload.
func (h *Handle) InstanceID() int64 {
	return h.instanceID
}

// Missing reports whether the referenced path was absent when the handle
// was built. Status re-checks lazily.
func (h *Handle) Missing() bool {
	return h.missing
}

// Identity returns the kind-specific identity string.
func (h *Handle) Identity() string {
	switch h.Kind {
	case KindProjectAsset, KindSceneObject:
		return h.GUID
	case KindExternalFile:
		return h.Path
	case KindURL:
		return h.URL
	case KindMenuCommand:
		return h.MenuPath
	default:
		for _, v := range []string{h.GUID, h.Path, h.URL, h.MenuPath} {
			if v != "" {
				return v
			}
		}
		return ""
	}
}

// SameIdentity reports whether two handles reference the same thing.
// Handles of different kinds never collide.
func (h *Handle) SameIdentity(other *Handle) bool {
	if h == nil || other == nil || h.Kind != other.Kind {
		return false
	}
	id := h.Identity()
	return id != "" && id == other.Identity()
}

// DisplayName returns the title override or a name derived from the identity.
func (h *Handle) DisplayName(resolver Resolver) string {
	if h.Title != "" {
		return h.Title
	}
	switch h.Kind {
	case KindProjectAsset:
		if resolver != nil {
			if p, ok := resolver.PathForGUID(h.GUID); ok {
				return path.Base(p)
			}
		}
		return "Missing Asset <" + h.GUID + ">"
	case KindSceneObject:
		if h.HierarchyPath != "" {
			return path.Base(strings.TrimSuffix(h.HierarchyPath, "/"))
		}
		return h.GUID
	case KindExternalFile:
		trimmed := strings.TrimSuffix(h.Path, "/")
		if trimmed == "" {
			return h.Path
		}
		return path.Base(trimmed)
	default:
		return h.Identity()
	}
}

// Clone returns a copy that keeps runtime-only state.
func (h *Handle) Clone() *Handle {
	if h == nil {
		return nil
	}
	c := *h
	return &c
}
