// Package store holds the ordered quick access list and the selected
// category filter.
//
// The store is owned by a single goroutine (the CLI command or the TUI event
// loop). Every mutation that changes content is saved synchronously before
// the call returns; batch operations save once.
package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"quickaccess/internal/handle"
	"quickaccess/internal/logging"
)

var (
	// ErrOutOfRange is returned by Move for an invalid position.
	ErrOutOfRange = errors.New("position out of range")
	// ErrNotFound is returned by Find when nothing matches.
	ErrNotFound = errors.New("item not found")
	// ErrAmbiguous is returned by Find when an id prefix matches several items.
	ErrAmbiguous = errors.New("ambiguous item id")
)

const (
	msgPathExists   = "File or folder already exists."
	msgAssetExists  = "Asset already exists."
	msgObjectExists = "Object already exists."
	msgURLExists    = "URL already exists."
	msgMenuExists   = "Menu item already exists."
	msgNotIndexed   = "Asset is not in the asset database."
)

// URLEntry is a URL with its display title.
type URLEntry struct {
	URL   string
	Title string
}

// MenuEntry is a menu command path with its display title.
type MenuEntry struct {
	Path  string
	Title string
}

// Store is the ordered collection of handles plus the active filter.
type Store struct {
	persister Persister
	resolver  handle.Resolver

	handles []*handle.Handle
	filter  handle.Category
}

// Option configures a Store.
type Option func(*Store)

// WithResolver sets the asset resolver used when adding objects.
func WithResolver(r handle.Resolver) Option {
	return func(s *Store) { s.resolver = r }
}

// Open loads the store from the persister. Records from older versions are
// upgraded and, if any changed, written back once.
func Open(p Persister, opts ...Option) (*Store, error) {
	s := &Store{persister: p}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	st, err := s.persister.Load()
	if err != nil {
		return err
	}

	s.filter = st.Filter
	s.handles = make([]*handle.Handle, 0, len(st.Handles))
	upgraded := st.Coerced
	for _, h := range st.Handles {
		if h == nil {
			upgraded++
			continue
		}
		if h.NeedsUpgrade() && h.UpgradeLegacy() {
			upgraded++
		}
		s.handles = append(s.handles, h)
	}

	logging.StoreDebug("loaded %d items (filter=%s)", len(s.handles), s.filter)
	if upgraded > 0 {
		logging.Store("upgraded %d items from an older version", upgraded)
		s.save()
	}
	return nil
}

// Reload re-reads the persisted state, discarding in-memory content. It is a
// no-op when the persister can tell nothing changed on disk.
func (s *Store) Reload() error {
	if m, ok := s.persister.(interface{ Modified() (bool, error) }); ok {
		changed, err := m.Modified()
		if err != nil {
			return fmt.Errorf("failed to check state: %w", err)
		}
		if !changed {
			return nil
		}
	}
	return s.load()
}

func (s *Store) save() error {
	st := State{
		Version: StateVersion,
		Filter:  s.filter,
		Handles: append([]*handle.Handle(nil), s.handles...),
	}
	if err := s.persister.Save(st); err != nil {
		logging.Get(logging.CategoryStore).Error("save failed: %v", err)
		return err
	}
	return nil
}

// Handles returns the full list in user order.
func (s *Store) Handles() []*handle.Handle {
	return append([]*handle.Handle(nil), s.handles...)
}

// Len returns the number of items.
func (s *Store) Len() int {
	return len(s.handles)
}

// Filter returns the selected category.
func (s *Store) Filter() handle.Category {
	return s.filter
}

// Resolver returns the asset resolver, which may be nil.
func (s *Store) Resolver() handle.Resolver {
	return s.resolver
}

// Filtered returns the items visible under the selected category. With no
// filter it is the full list in user order.
func (s *Store) Filtered() []*handle.Handle {
	return FilterHandles(s.handles, s.filter)
}

// FilterHandles returns the subsequence of hs in category c.
func FilterHandles(hs []*handle.Handle, c handle.Category) []*handle.Handle {
	if c == handle.CategoryNone {
		return append([]*handle.Handle(nil), hs...)
	}
	out := make([]*handle.Handle, 0, len(hs))
	for _, h := range hs {
		if h.Category() == c {
			out = append(out, h)
		}
	}
	return out
}

func (s *Store) contains(match func(*handle.Handle) bool) bool {
	for _, h := range s.handles {
		if match(h) {
			return true
		}
	}
	return false
}

// AddExternalPaths pins files or folders outside the project. It returns
// whether anything was added and one message per rejected input.
func (s *Store) AddExternalPaths(paths []string) (bool, []string) {
	var errs []string
	added := false
	for _, p := range paths {
		normalized := handle.NormalizePath(p)
		if normalized != "" && s.contains(func(h *handle.Handle) bool {
			return h.Kind == handle.KindExternalFile && h.Path == normalized
		}) {
			errs = append(errs, msgPathExists)
			continue
		}

		h, err := handle.FromExternalPath(p)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if h.Missing() {
			logging.StoreDebug("pinned missing path %s", h.Path)
		}
		s.handles = append(s.handles, h)
		added = true
	}

	if added {
		s.save()
	}
	return added, errs
}

// AddObjects pins project assets and scene objects.
//
// Assets are deduplicated by GUID. Scene objects are deduplicated by
// in-process identity first and then by global object id, since distinct
// in-memory objects can map to the same id after a reload.
func (s *Store) AddObjects(objs []handle.Object) (bool, []string) {
	var errs []string
	added := false
	for _, obj := range objs {
		if obj.IsPersistent() {
			if s.resolver != nil {
				if guid, ok := s.resolver.GUIDForPath(handle.NormalizePath(obj.AssetPath)); ok &&
					s.contains(func(h *handle.Handle) bool {
						return h.Kind == handle.KindProjectAsset && h.GUID == guid
					}) {
					errs = append(errs, msgAssetExists)
					continue
				}
			}

			h, err := handle.FromObject(obj, s.resolver)
			if err != nil {
				errs = append(errs, err.Error())
				continue
			}
			s.handles = append(s.handles, h)
			added = true
			continue
		}

		if obj.InstanceID != 0 && s.contains(func(h *handle.Handle) bool {
			return h.Kind == handle.KindSceneObject && h.InstanceID() == obj.InstanceID
		}) {
			errs = append(errs, msgObjectExists)
			continue
		}

		h, err := handle.FromObject(obj, s.resolver)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if s.contains(h.SameIdentity) {
			errs = append(errs, msgObjectExists)
			continue
		}
		s.handles = append(s.handles, h)
		added = true
	}

	if added {
		s.save()
	}
	return added, errs
}

// AddURLs pins URLs. Duplicates are matched on the exact URL string.
func (s *Store) AddURLs(entries []URLEntry) (bool, []string) {
	var errs []string
	added := false
	for _, e := range entries {
		url := strings.TrimSpace(e.URL)
		if url != "" && s.contains(func(h *handle.Handle) bool {
			return h.Kind == handle.KindURL && h.URL == url
		}) {
			errs = append(errs, msgURLExists)
			continue
		}

		h, err := handle.FromURL(e.URL, e.Title)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		s.handles = append(s.handles, h)
		added = true
	}

	if added {
		s.save()
	}
	return added, errs
}

// AddMenuItems pins menu commands. Duplicates are matched on the exact path.
func (s *Store) AddMenuItems(entries []MenuEntry) (bool, []string) {
	var errs []string
	added := false
	for _, e := range entries {
		menuPath := strings.TrimSpace(e.Path)
		if menuPath != "" && s.contains(func(h *handle.Handle) bool {
			return h.Kind == handle.KindMenuCommand && h.MenuPath == menuPath
		}) {
			errs = append(errs, msgMenuExists)
			continue
		}

		h, err := handle.FromMenuPath(e.Path, e.Title)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		s.handles = append(s.handles, h)
		added = true
	}

	if added {
		s.save()
	}
	return added, errs
}

// Remove deletes that exact handle instance. It saves only when something
// was removed.
func (s *Store) Remove(target *handle.Handle) bool {
	for i, h := range s.handles {
		if h == target {
			s.handles = append(s.handles[:i], s.handles[i+1:]...)
			s.save()
			return true
		}
	}
	return false
}

// RemoveByID deletes the handle with the given id.
func (s *Store) RemoveByID(id string) bool {
	for _, h := range s.handles {
		if h.ID == id {
			return s.Remove(h)
		}
	}
	return false
}

// RemoveAll clears the list and saves unconditionally.
func (s *Store) RemoveAll() {
	s.handles = s.handles[:0]
	s.save()
	logging.Store("All quick access items removed.")
}

// SetFilter changes the selected category. Setting the current value does
// not write.
func (s *Store) SetFilter(c handle.Category) {
	if s.filter == c {
		return
	}
	s.filter = c
	s.save()
}

// Move reorders the full list, taking the item at from and inserting it at
// to. Both are zero-based.
func (s *Store) Move(from, to int) error {
	n := len(s.handles)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d with %d items", ErrOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}

	h := s.handles[from]
	s.handles = append(s.handles[:from], s.handles[from+1:]...)
	s.handles = append(s.handles[:to], append([]*handle.Handle{h}, s.handles[to:]...)...)
	return s.save()
}

// IndexOf returns the position of h in the full list, or -1.
func (s *Store) IndexOf(target *handle.Handle) int {
	for i, h := range s.handles {
		if h == target {
			return i
		}
	}
	return -1
}

// Find resolves a one-based position, a full id, or a unique id prefix.
func (s *Store) Find(query string) (*handle.Handle, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNotFound
	}
	if pos, err := strconv.Atoi(query); err == nil {
		if pos < 1 || pos > len(s.handles) {
			return nil, fmt.Errorf("%w: position %d", ErrNotFound, pos)
		}
		return s.handles[pos-1], nil
	}

	var match *handle.Handle
	for _, h := range s.handles {
		if h.ID == query {
			return h, nil
		}
		if strings.HasPrefix(h.ID, query) {
			if match != nil {
				return nil, fmt.Errorf("%w: %s", ErrAmbiguous, query)
			}
			match = h
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, query)
	}
	return match, nil
}

// JoinErrors formats accumulated validation messages as one notification.
func JoinErrors(errs []string) string {
	return strings.Join(errs, "\n")
}
