package handle

import "github.com/google/uuid"

// NeedsUpgrade reports whether the record predates the current schema.
func (h *Handle) NeedsUpgrade() bool {
	return h.Kind == KindUnknown || h.ID == ""
}

// UpgradeLegacy brings a record written by an older version up to date in
// place. The kind is inferred from whichever identity field is populated.
// It returns true when the record changed.
func (h *Handle) UpgradeLegacy() bool {
	changed := false
	if h.ID == "" {
		h.ID = uuid.NewString()
		changed = true
	}
	if h.Kind != KindUnknown {
		return changed
	}

	switch {
	case h.GUID != "" && IsGlobalObjectID(h.GUID):
		h.Kind = KindSceneObject
	case h.GUID != "":
		h.Kind = KindProjectAsset
	case h.Path != "":
		h.Path = NormalizePath(h.Path)
		h.Kind = KindExternalFile
	case h.URL != "":
		h.Kind = KindURL
	case h.MenuPath != "":
		h.Kind = KindMenuCommand
	default:
		// Nothing to infer from. Left as unknown so the user can remove it.
		return changed
	}
	return true
}
