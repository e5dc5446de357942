package handle

import (
	"os"
	"path/filepath"
)

// Status is the display-time health of a handle.
type Status int

const (
	StatusOK Status = iota
	StatusMissing
	// StatusUnverifiable covers kinds that cannot be checked offline:
	// scene objects, URLs and menu commands.
	StatusUnverifiable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	default:
		return "unverifiable"
	}
}

// Status checks whether the referenced resource still exists. It is
// evaluated lazily and never removes anything.
func (h *Handle) Status(resolver Resolver) Status {
	switch h.Kind {
	case KindExternalFile:
		if _, err := os.Stat(filepath.FromSlash(h.Path)); err != nil {
			return StatusMissing
		}
		return StatusOK
	case KindProjectAsset:
		if resolver == nil {
			return StatusUnverifiable
		}
		if _, ok := resolver.PathForGUID(h.GUID); !ok {
			return StatusMissing
		}
		return StatusOK
	case KindUnknown:
		if h.Identity() == "" {
			return StatusMissing
		}
		return StatusUnverifiable
	default:
		return StatusUnverifiable
	}
}
