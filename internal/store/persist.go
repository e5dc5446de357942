package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"quickaccess/internal/handle"
	"quickaccess/internal/logging"

	"gopkg.in/yaml.v3"
)

// StateVersion is written into every state file.
const StateVersion = 2

// State is the persisted form of a Store.
type State struct {
	Version int              `yaml:"version"`
	Filter  handle.Category  `yaml:"selected_category"`
	Handles []*handle.Handle `yaml:"handles"`

	// Coerced counts records that did not decode cleanly and were repaired
	// or dropped on load. The store writes a clean copy back when it is set.
	Coerced int `yaml:"-"`
}

// rawState defers decoding so one bad record cannot fail the whole file.
type rawState struct {
	Version yaml.Node `yaml:"version"`
	Filter  yaml.Node `yaml:"selected_category"`
	Handles yaml.Node `yaml:"handles"`
}

// Persister loads and saves store state.
type Persister interface {
	Load() (State, error)
	Save(State) error
}

// FilePersister keeps state in a YAML file inside the local project state
// directory. Writes go through a temp file and a rename.
type FilePersister struct {
	path string

	mu   sync.Mutex
	last []byte
}

// NewFilePersister returns a persister for the given file path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Path returns the state file path.
func (p *FilePersister) Path() string {
	return p.path
}

// Load reads the state file. A missing file is an empty state.
func (p *FilePersister) Load() (State, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			p.remember(nil)
			return State{Version: StateVersion}, nil
		}
		return State{}, fmt.Errorf("failed to read state: %w", err)
	}

	var raw rawState
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return State{}, fmt.Errorf("failed to parse state %s: %w", p.path, err)
	}
	st := decodeState(&raw)
	p.remember(data)
	return st, nil
}

func decodeState(raw *rawState) State {
	st := State{Version: StateVersion}
	if raw.Version.Kind != 0 {
		if err := raw.Version.Decode(&st.Version); err != nil {
			st.Version = 0
		}
	}
	if raw.Filter.Kind != 0 {
		// Category decoding falls back to CategoryNone and never fails.
		_ = raw.Filter.Decode(&st.Filter)
	}

	n := &raw.Handles
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	switch {
	case n.Kind == 0 || n.Tag == "!!null":
	case n.Kind == yaml.SequenceNode:
		for i, item := range n.Content {
			h, ok := decodeHandle(item)
			if !ok {
				logging.Get(logging.CategoryStore).Warn("record %d (line %d) coerced", i, item.Line)
				st.Coerced++
			}
			// An empty entry stays nil; the store drops it as a legacy record.
			if h != nil || ok {
				st.Handles = append(st.Handles, h)
			}
		}
	default:
		logging.Get(logging.CategoryStore).Warn("handles is not a list (line %d), ignored", n.Line)
		st.Coerced++
	}
	return st
}

// decodeHandle decodes one record. A record that does not decode cleanly
// keeps every field that does; ok is false in that case. A nil handle with
// ok false means nothing could be recovered.
func decodeHandle(n *yaml.Node) (*handle.Handle, bool) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}

	switch n.Kind {
	case yaml.MappingNode:
		h := &handle.Handle{}
		if err := n.Decode(h); err == nil {
			return h, true
		}

		h = &handle.Handle{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			pair := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: n.Content[i : i+2]}
			if err := pair.Decode(h); err != nil {
				logging.StoreDebug("dropped field %q: %v", n.Content[i].Value, err)
			}
		}
		return h, false

	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, true
		}
		return handleFromScalar(n.Value), false

	default:
		return nil, false
	}
}

// handleFromScalar turns a bare string entry into a legacy record so the
// kind can be inferred on upgrade.
func handleFromScalar(v string) *handle.Handle {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	h := &handle.Handle{}
	switch {
	case strings.Contains(v, "://"):
		h.URL = v
	case isAssetGUID(v):
		h.GUID = strings.ToLower(v)
	case handle.IsGlobalObjectID(v):
		h.GUID = v
	default:
		h.Path = v
	}
	return h
}

func isAssetGUID(v string) bool {
	if len(v) != 32 {
		return false
	}
	for _, r := range strings.ToLower(v) {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// Save writes the state file.
func (p *FilePersister) Save(st State) error {
	st.Version = StateVersion
	if st.Handles == nil {
		st.Handles = []*handle.Handle{}
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".local_cache-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmpName, p.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state: %w", err)
	}

	p.remember(data)
	return nil
}

// Modified reports whether the file on disk differs from what this
// persister last read or wrote.
func (p *FilePersister) Modified() (bool, error) {
	data, err := os.ReadFile(p.path)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return !bytes.Equal(data, p.last), nil
}

func (p *FilePersister) remember(data []byte) {
	p.mu.Lock()
	p.last = data
	p.mu.Unlock()
}
