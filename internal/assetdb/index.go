package assetdb

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"quickaccess/internal/logging"
)

const metaExt = ".meta"

// IndexResult summarizes a rebuild.
type IndexResult struct {
	Assets   int
	Folders  int
	Orphans  []string // .meta files whose asset is gone
	Skipped  int      // duplicate GUIDs and unparsable files
	Duration time.Duration

	// Warnings holds per-file parse errors. Rows that parsed are still committed.
	Warnings error
}

type metaFile struct {
	GUID        string `yaml:"guid"`
	FolderAsset string `yaml:"folderAsset"`
}

type entry struct {
	guid     string
	path     string
	isFolder bool
}

// Index rescans roots (project-relative) under projectRoot and replaces the
// stored index in a single transaction. Missing roots are skipped.
func (d *DB) Index(ctx context.Context, projectRoot string, roots []string, workers int) (*IndexResult, error) {
	start := time.Now()
	if workers < 1 {
		workers = 1
	}

	metas, err := collectMetaFiles(ctx, projectRoot, roots)
	if err != nil {
		return nil, err
	}
	logging.AssetDBDebug("found %d .meta files under %s", len(metas), projectRoot)

	var (
		warnMu   sync.Mutex
		warnings *multierror.Error
		orphans  []string
	)
	results := make([]*entry, len(metas))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, rel := range metas {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			e, orphan, err := parseMeta(projectRoot, rel)
			warnMu.Lock()
			defer warnMu.Unlock()
			switch {
			case err != nil:
				warnings = multierror.Append(warnings, err)
			case orphan:
				orphans = append(orphans, rel)
			default:
				results[i] = e
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("indexing cancelled: %w", err)
	}

	res := &IndexResult{Skipped: len(warnings.WrappedErrors())}
	sort.Strings(orphans)
	res.Orphans = orphans

	seen := make(map[string]string, len(results))
	var rows []*entry
	for _, e := range results {
		if e == nil {
			continue
		}
		if prev, dup := seen[e.guid]; dup {
			warnings = multierror.Append(warnings, fmt.Errorf("%s: duplicate guid %s (first seen at %s)", e.path, e.guid, prev))
			res.Skipped++
			continue
		}
		seen[e.guid] = e.path
		rows = append(rows, e)
		if e.isFolder {
			res.Folders++
		} else {
			res.Assets++
		}
	}

	if err := d.replace(ctx, rows); err != nil {
		return nil, err
	}

	res.Warnings = warnings.ErrorOrNil()
	res.Duration = time.Since(start)
	logging.AssetDB("indexed %d assets and %d folders in %s (%d orphans, %d skipped)",
		res.Assets, res.Folders, res.Duration, len(res.Orphans), res.Skipped)
	return res, nil
}

func (d *DB) replace(ctx context.Context, rows []*entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM assets"); err != nil {
		return fmt.Errorf("failed to clear assets: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO assets (guid, path, is_folder) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range rows {
		folder := 0
		if e.isFolder {
			folder = 1
		}
		if _, err := stmt.ExecContext(ctx, e.guid, e.path, folder); err != nil {
			return fmt.Errorf("failed to insert %s: %w", e.path, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO index_meta (key, value) VALUES ('indexed_at', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to record index time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index: %w", err)
	}
	return nil
}

// collectMetaFiles returns slash-separated project-relative .meta paths.
func collectMetaFiles(ctx context.Context, projectRoot string, roots []string) ([]string, error) {
	var metas []string
	for _, root := range roots {
		base := filepath.Join(projectRoot, filepath.FromSlash(root))
		if _, err := os.Stat(base); os.IsNotExist(err) {
			logging.AssetDBDebug("skipping missing root %s", root)
			continue
		}
		err := filepath.WalkDir(base, func(p string, de fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			name := de.Name()
			if de.IsDir() {
				// Unity ignores hidden folders and folders ending in ~
				if p != base && (strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(name, metaExt) {
				return nil
			}
			rel, err := filepath.Rel(projectRoot, p)
			if err != nil {
				return err
			}
			metas = append(metas, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", root, err)
		}
	}
	sort.Strings(metas)
	return metas, nil
}

// parseMeta reads one .meta file. orphan is true when the asset it
// describes no longer exists.
func parseMeta(projectRoot, rel string) (*entry, bool, error) {
	assetRel := strings.TrimSuffix(rel, metaExt)
	full := filepath.Join(projectRoot, filepath.FromSlash(rel))

	info, err := os.Stat(filepath.Join(projectRoot, filepath.FromSlash(assetRel)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("%s: %w", assetRel, err)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", rel, err)
	}
	var m metaFile
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, false, fmt.Errorf("%s: %w", rel, err)
	}
	guid := strings.ToLower(strings.TrimSpace(m.GUID))
	if guid == "" {
		return nil, false, fmt.Errorf("%s: missing guid", rel)
	}

	return &entry{
		guid:     guid,
		path:     assetRel,
		isFolder: info.IsDir() || strings.EqualFold(m.FolderAsset, "yes"),
	}, false, nil
}
