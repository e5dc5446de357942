package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"quickaccess/internal/handle"
	"quickaccess/internal/logging"
)

// projectRoots are the top-level folders whose contents are project assets.
var projectRoots = []string{"Assets", "Packages"}

// Classify splits dropped or typed paths into project assets and external
// paths. A path is a project path when it is project-relative (or lies
// inside projectRoot) under Assets/ or Packages/. Project paths the resolver
// knows become objects; the rest are returned as unindexed asset paths.
// Without a resolver, project paths are made absolute under projectRoot and
// treated as external. Duplicates in the input are collapsed, keeping
// first-seen order.
func Classify(paths []string, projectRoot string, resolver handle.Resolver) (objs []handle.Object, external, unindexed []string) {
	seenObj := make(map[string]bool)
	seenExt := make(map[string]bool)

	root := handle.NormalizePath(projectRoot)
	if root != "" {
		if abs, err := filepath.Abs(filepath.FromSlash(root)); err == nil {
			root = filepath.ToSlash(abs)
		}
	}

	for _, raw := range paths {
		p := handle.NormalizePath(raw)
		if p == "" {
			external = append(external, raw)
			continue
		}

		if assetPath, ok := projectRelative(p, root); ok {
			if resolver != nil {
				if !seenObj[assetPath] {
					seenObj[assetPath] = true
					if _, known := resolver.GUIDForPath(assetPath); known {
						objs = append(objs, handle.Object{AssetPath: assetPath})
					} else {
						unindexed = append(unindexed, assetPath)
					}
				}
				continue
			}
			if root != "" {
				p = root + "/" + assetPath
			}
		}

		// Drive-letter paths are absolute on Windows only.
		if !filepath.IsAbs(filepath.FromSlash(p)) && !strings.Contains(p, ":/") {
			if abs, err := filepath.Abs(filepath.FromSlash(p)); err == nil {
				p = filepath.ToSlash(abs)
			}
		}
		if !seenExt[p] {
			seenExt[p] = true
			external = append(external, p)
		}
	}
	return objs, external, unindexed
}

// AddPaths classifies paths and pins them as project assets or external
// paths. When some project paths are not indexed, refresh is called once and
// they are classified again. Paths still unknown are reported and not
// pinned. A nil refresh skips the retry.
func (s *Store) AddPaths(ctx context.Context, paths []string, projectRoot string, refresh func(context.Context) error) (bool, []string) {
	objs, external, unindexed := Classify(paths, projectRoot, s.resolver)

	var refreshErrs []string
	if len(unindexed) > 0 && refresh != nil {
		logging.StoreDebug("%d project paths not indexed, refreshing", len(unindexed))
		if err := refresh(ctx); err != nil {
			refreshErrs = append(refreshErrs, fmt.Sprintf("Failed to refresh the asset database: %v", err))
		} else {
			var more []handle.Object
			more, _, unindexed = Classify(unindexed, projectRoot, s.resolver)
			objs = append(objs, more...)
		}
	}

	addedObjs, errs := s.AddObjects(objs)
	addedPaths, pathErrs := s.AddExternalPaths(external)
	errs = append(errs, pathErrs...)
	errs = append(errs, refreshErrs...)
	for _, p := range unindexed {
		errs = append(errs, fmt.Sprintf("%s %s", msgNotIndexed, p))
	}
	return addedObjs || addedPaths, errs
}

func projectRelative(p, root string) (string, bool) {
	if root != "" && strings.HasPrefix(p, root+"/") {
		p = strings.TrimPrefix(p, root+"/")
	}
	p = strings.TrimPrefix(p, "./")
	for _, r := range projectRoots {
		if p == r || strings.HasPrefix(p, r+"/") {
			return p, true
		}
	}
	return "", false
}
