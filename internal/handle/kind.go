// Package handle models a single pinned quick access reference.
//
// A Handle is one record with a Kind tag and kind-specific identity fields
// (GUID, external path, URL or menu path). Handles are persisted by the store
// package; runtime-only object identity for scene objects is never written.
package handle

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind tags which identity field of a Handle is meaningful.
type Kind int

const (
	// KindUnknown marks records written before the kind tag existed.
	KindUnknown Kind = iota
	KindProjectAsset
	KindSceneObject
	KindExternalFile
	KindURL
	KindMenuCommand
)

var kindNames = map[Kind]string{
	KindUnknown:      "unknown",
	KindProjectAsset: "project_asset",
	KindSceneObject:  "scene_object",
	KindExternalFile: "external_file",
	KindURL:          "url",
	KindMenuCommand:  "menu_command",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Category returns the filter group a kind belongs to.
// URLs and menu commands are listed with external files.
func (k Kind) Category() Category {
	switch k {
	case KindProjectAsset:
		return CategoryProjectAsset
	case KindSceneObject:
		return CategorySceneObject
	case KindExternalFile, KindURL, KindMenuCommand:
		return CategoryExternalFile
	default:
		return CategoryNone
	}
}

// MarshalYAML writes the kind as its name.
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// UnmarshalYAML reads a kind name. Unrecognized names decode to KindUnknown
// so the record can be upgraded instead of failing the whole load.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	*k = KindUnknown
	var n int
	if err := value.Decode(&n); err == nil {
		if _, ok := kindNames[Kind(n)]; ok {
			*k = Kind(n)
		}
		return nil
	}
	var name string
	if err := value.Decode(&name); err != nil {
		return nil
	}
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, candidate := range kindNames {
		if candidate == name {
			*k = kind
			break
		}
	}
	return nil
}

// Category is the filter applied to the quick access list.
// CategoryNone shows everything.
type Category int

const (
	CategoryNone Category = iota
	CategoryProjectAsset
	CategorySceneObject
	CategoryExternalFile
)

// Categories lists every filter value in tab order.
var Categories = []Category{
	CategoryNone,
	CategoryProjectAsset,
	CategorySceneObject,
	CategoryExternalFile,
}

var categoryNames = map[Category]string{
	CategoryNone:         "all",
	CategoryProjectAsset: "assets",
	CategorySceneObject:  "scene",
	CategoryExternalFile: "external",
}

var categoryLabels = map[Category]string{
	CategoryNone:         "All",
	CategoryProjectAsset: "Assets",
	CategorySceneObject:  "Scene Objects",
	CategoryExternalFile: "External Files",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return categoryNames[CategoryNone]
}

// Label is the human readable tab title.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return categoryLabels[CategoryNone]
}

// Next returns the following category in tab order, wrapping around.
func (c Category) Next() Category {
	return Categories[(c.index()+1)%len(Categories)]
}

// Prev returns the preceding category in tab order, wrapping around.
func (c Category) Prev() Category {
	return Categories[(c.index()+len(Categories)-1)%len(Categories)]
}

func (c Category) index() int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return 0
}

// ParseCategory accepts the names used on the command line.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "none":
		return CategoryNone, nil
	case "assets", "asset", "project", "project_asset", "project-assets":
		return CategoryProjectAsset, nil
	case "scene", "scene_object", "scene-objects", "scene_objects", "objects":
		return CategorySceneObject, nil
	case "external", "external_file", "external-files", "files":
		return CategoryExternalFile, nil
	default:
		return CategoryNone, fmt.Errorf("unknown category %q (valid: all, assets, scene, external)", s)
	}
}

// MarshalYAML writes the category as its name.
func (c Category) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// UnmarshalYAML reads a category name, falling back to CategoryNone.
func (c *Category) UnmarshalYAML(value *yaml.Node) error {
	*c = CategoryNone
	var n int
	if err := value.Decode(&n); err == nil {
		if _, ok := categoryNames[Category(n)]; ok {
			*c = Category(n)
		}
		return nil
	}
	var name string
	if err := value.Decode(&name); err != nil {
		return nil
	}
	parsed, err := ParseCategory(name)
	if err != nil {
		parsed = CategoryNone
	}
	*c = parsed
	return nil
}
