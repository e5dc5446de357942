package handle

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Resolver maps project asset paths to GUIDs and back.
// The asset database implements it over .meta sidecar files.
type Resolver interface {
	GUIDForPath(assetPath string) (string, bool)
	PathForGUID(guid string) (string, bool)
}

// Object describes an editor object offered for pinning.
//
// Persistable objects live on disk and carry an AssetPath. Scene objects
// carry ScenePath and HierarchyPath; LocalFileID is the object's id inside
// the scene file when known.
type Object struct {
	InstanceID    int64
	AssetPath     string
	ScenePath     string
	HierarchyPath string
	LocalFileID   int64
}

// IsZero reports whether the object carries no identity at all.
func (o Object) IsZero() bool {
	return o.InstanceID == 0 && o.AssetPath == "" && o.ScenePath == "" && o.HierarchyPath == ""
}

// IsPersistent reports whether the object is backed by an asset on disk.
func (o Object) IsPersistent() bool {
	return o.AssetPath != "" && o.ScenePath == "" && o.HierarchyPath == ""
}

const (
	globalObjectIDPrefix = "GlobalObjectId_V1-"
	unsavedSceneGUID     = "00000000000000000000000000000000"
	sceneObjectIDType    = 2
)

// GlobalObjectID builds the stable library id of a scene object. Distinct
// in-memory objects with the same scene and local file id share it.
func GlobalObjectID(sceneGUID string, localFileID int64) string {
	if sceneGUID == "" {
		sceneGUID = unsavedSceneGUID
	}
	return fmt.Sprintf("%s%d-%s-%d-0", globalObjectIDPrefix, sceneObjectIDType, sceneGUID, localFileID)
}

// IsGlobalObjectID reports whether guid was produced by GlobalObjectID.
func IsGlobalObjectID(guid string) bool {
	return strings.HasPrefix(guid, globalObjectIDPrefix)
}

// localFileID falls back to a hash of the hierarchy path when the scene has
// not assigned a file id yet.
func (o Object) localFileID() int64 {
	if o.LocalFileID != 0 {
		return o.LocalFileID
	}
	h := fnv.New64a()
	h.Write([]byte(NormalizePath(o.HierarchyPath)))
	return int64(h.Sum64() >> 1)
}

// MapResolver is an in-memory Resolver.
type MapResolver struct {
	byPath map[string]string
	byGUID map[string]string
}

// NewMapResolver builds a resolver from asset path -> guid pairs.
func NewMapResolver(pathToGUID map[string]string) *MapResolver {
	r := &MapResolver{
		byPath: make(map[string]string, len(pathToGUID)),
		byGUID: make(map[string]string, len(pathToGUID)),
	}
	for p, guid := range pathToGUID {
		r.Set(p, guid)
	}
	return r
}

// Set records one asset.
func (r *MapResolver) Set(assetPath, guid string) {
	assetPath = NormalizePath(assetPath)
	r.byPath[assetPath] = guid
	r.byGUID[guid] = assetPath
}

// Delete forgets an asset, as if it were removed from the project.
func (r *MapResolver) Delete(assetPath string) {
	assetPath = NormalizePath(assetPath)
	if guid, ok := r.byPath[assetPath]; ok {
		delete(r.byGUID, guid)
	}
	delete(r.byPath, assetPath)
}

func (r *MapResolver) GUIDForPath(assetPath string) (string, bool) {
	guid, ok := r.byPath[NormalizePath(assetPath)]
	return guid, ok
}

func (r *MapResolver) PathForGUID(guid string) (string, bool) {
	p, ok := r.byGUID[guid]
	return p, ok
}
