package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"quickaccess/internal/handle"
	"quickaccess/internal/logging"
	"quickaccess/internal/store"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// Opener opens a handle. *launch.Launcher satisfies it.
type Opener interface {
	Open(ctx context.Context, h *handle.Handle) error
}

// StoreChangedMsg tells the model the persisted list changed on disk.
// The watcher sends it through Program.Send so the reload runs on the
// event loop.
type StoreChangedMsg struct{}

type openedMsg struct {
	name string
	err  error
}

// Options configures the list page.
type Options struct {
	ProjectRoot  string
	ConfirmClear bool
	Theme        string

	// Reindex refreshes the asset database when a dropped project path is
	// not indexed. Nil disables the retry.
	Reindex func(context.Context) error
}

// Model is the interactive quick access list.
type Model struct {
	ctx    context.Context
	store  *store.Store
	opener Opener
	opts   Options
	list   list.Model
	styles Styles
	width  int
	height int
	keys   keyMap

	confirmingClear bool
}

type keyMap struct {
	nextTab, prevTab   []string
	remove             []string
	moveUp, moveDown   []string
	open, copy, reload []string
	clear, quit        []string
}

var defaultKeys = keyMap{
	nextTab:  []string{"tab", "right"},
	prevTab:  []string{"shift+tab", "left"},
	remove:   []string{"x", "delete", "backspace"},
	moveUp:   []string{"K", "shift+up"},
	moveDown: []string{"J", "shift+down"},
	open:     []string{"enter", "o"},
	copy:     []string{"y", "c"},
	reload:   []string{"r"},
	clear:    []string{"C"},
	quit:     []string{"q", "ctrl+c"},
}

func matches(key string, bindings []string) bool {
	for _, b := range bindings {
		if key == b {
			return true
		}
	}
	return false
}

// handleItem adapts handle.Handle to list.Item.
type handleItem struct {
	h        *handle.Handle
	position int // one-based position in the full list
	name     string
	status   handle.Status
}

func (i handleItem) Title() string {
	if i.status == handle.StatusMissing {
		return i.name + " (missing)"
	}
	return i.name
}

func (i handleItem) Description() string {
	return fmt.Sprintf("#%d [%s] %s", i.position, i.h.Category().Label(), i.h.Identity())
}

func (i handleItem) FilterValue() string { return i.name + " " + i.h.Identity() }

// New creates the list page over st.
func New(ctx context.Context, st *store.Store, opener Opener, opts Options) Model {
	styles := NewStyles(ThemeByName(opts.Theme))

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(styles.Theme.Accent).
		BorderForeground(styles.Theme.Accent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		BorderForeground(styles.Theme.Accent)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Quick Access"
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("item", "items")
	l.Styles.Title = styles.Title

	m := Model{
		ctx:    ctx,
		store:  st,
		opener: opener,
		opts:   opts,
		list:   l,
		styles: styles,
		keys:   defaultKeys,
	}
	m.refresh()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.EnableBracketedPaste
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case StoreChangedMsg:
		if err := m.store.Reload(); err != nil {
			cmd := m.status(m.styles.Error, "Reload failed: "+err.Error())
			return m, cmd
		}
		logging.UI("reloaded after external change")
		m.refresh()
		return m, nil

	case openedMsg:
		if msg.err != nil {
			cmd := m.status(m.styles.Error, msg.err.Error())
			return m, cmd
		}
		cmd := m.status(m.styles.Success, "Opened "+msg.name)
		return m, cmd

	case tea.KeyMsg:
		if msg.Paste {
			return m.handleDrop(string(msg.Runes))
		}
		if m.confirmingClear {
			return m.handleConfirm(msg)
		}
		if m.list.FilterState() != list.Filtering {
			if next, cmd, handled := m.handleKey(msg); handled {
				return next, cmd
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	key := msg.String()
	switch {
	case matches(key, m.keys.quit):
		return m, tea.Quit, true

	case matches(key, m.keys.nextTab):
		m.store.SetFilter(m.store.Filter().Next())
		m.refresh()
		return m, nil, true

	case matches(key, m.keys.prevTab):
		m.store.SetFilter(m.store.Filter().Prev())
		m.refresh()
		return m, nil, true

	case matches(key, m.keys.reload):
		if err := m.store.Reload(); err != nil {
			cmd := m.status(m.styles.Error, "Reload failed: "+err.Error())
			return m, cmd, true
		}
		m.refresh()
		return m, nil, true

	case matches(key, m.keys.clear):
		if m.store.Len() == 0 {
			return m, nil, true
		}
		if m.opts.ConfirmClear {
			m.confirmingClear = true
			return m, nil, true
		}
		return m.clearAll()
	}

	sel := m.selected()
	if sel == nil {
		return m, nil, false
	}

	switch {
	case matches(key, m.keys.remove):
		idx := m.list.Index()
		if m.store.Remove(sel) {
			m.refresh()
			m.selectIndex(idx)
		}
		return m, nil, true

	case matches(key, m.keys.moveUp), matches(key, m.keys.moveDown):
		if m.store.Filter() != handle.CategoryNone {
			cmd := m.status(m.styles.Warning, "Reorder is only available in the All tab")
			return m, cmd, true
		}
		from := m.store.IndexOf(sel)
		to := from + 1
		if matches(key, m.keys.moveUp) {
			to = from - 1
		}
		if to < 0 || to >= m.store.Len() {
			return m, nil, true
		}
		if err := m.store.Move(from, to); err != nil {
			cmd := m.status(m.styles.Error, err.Error())
			return m, cmd, true
		}
		m.refresh()
		m.selectIndex(to)
		return m, nil, true

	case matches(key, m.keys.open):
		return m, m.openCmd(sel), true

	case matches(key, m.keys.copy):
		if err := clipboardWriteAll(sel.Identity()); err != nil {
			cmd := m.status(m.styles.Error, "Failed to copy to clipboard")
			return m, cmd, true
		}
		cmd := m.status(m.styles.Success, "Copied "+sel.Identity())
		return m, cmd, true
	}

	return m, nil, false
}

func (m Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirmingClear = false
	switch msg.String() {
	case "y", "Y", "enter":
		next, cmd, _ := m.clearAll()
		return next, cmd
	default:
		return m, nil
	}
}

func (m Model) clearAll() (tea.Model, tea.Cmd, bool) {
	m.store.RemoveAll()
	m.refresh()
	cmd := m.status(m.styles.Success, "All items removed")
	return m, cmd, true
}

// handleDrop adds paths pasted into the terminal. Most terminals paste the
// paths of files dropped onto the window.
func (m Model) handleDrop(text string) (tea.Model, tea.Cmd) {
	paths := splitDropped(text)
	if len(paths) == 0 {
		return m, nil
	}

	before := m.store.Len()
	_, errs := m.store.AddPaths(m.ctx, paths, m.opts.ProjectRoot, m.opts.Reindex)
	added := m.store.Len() - before
	logging.UI("drop of %d paths: %d added, %d errors", len(paths), added, len(errs))

	m.refresh()
	if len(errs) > 0 {
		cmd := m.status(m.styles.Warning, strings.ReplaceAll(store.JoinErrors(errs), "\n", " | "))
		return m, cmd
	}
	if added > 0 {
		cmd := m.status(m.styles.Success, fmt.Sprintf("Added %d item(s)", added))
		return m, cmd
	}
	return m, nil
}

// splitDropped splits pasted text into paths. Lines are separate paths;
// a line may hold several shell-quoted or backslash-escaped paths.
func splitDropped(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		out = append(out, splitShellWords(strings.TrimSpace(line))...)
	}
	return out
}

func splitShellWords(line string) []string {
	const escapable = " \t'\"\\()&;"
	var (
		words  []string
		cur    strings.Builder
		quote  rune
		inWord bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && quote != '\'' && i+1 < len(runes) && strings.ContainsRune(escapable, runes[i+1]):
			// Other backslashes are literal (Windows paths)
			i++
			cur.WriteRune(runes[i])
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words
}

func (m Model) openCmd(h *handle.Handle) tea.Cmd {
	opener, ctx := m.opener, m.ctx
	name := h.DisplayName(m.store.Resolver())
	return func() tea.Msg {
		if opener == nil {
			return openedMsg{name: name, err: fmt.Errorf("opening is not available")}
		}
		return openedMsg{name: name, err: opener.Open(ctx, h)}
	}
}

func (m *Model) status(style lipgloss.Style, text string) tea.Cmd {
	return m.list.NewStatusMessage(style.Render(text))
}

func (m Model) selected() *handle.Handle {
	sel := m.list.SelectedItem()
	if sel == nil {
		return nil
	}
	return sel.(handleItem).h
}

func (m *Model) selectIndex(idx int) {
	n := len(m.list.Items())
	if n == 0 {
		return
	}
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	m.list.Select(idx)
}

// refresh rebuilds the visible items from the store's filtered projection.
func (m *Model) refresh() {
	resolver := m.store.Resolver()
	visible := m.store.Filtered()
	items := make([]list.Item, 0, len(visible))
	for _, h := range visible {
		items = append(items, handleItem{
			h:        h,
			position: m.store.IndexOf(h) + 1,
			name:     h.DisplayName(resolver),
			status:   h.Status(resolver),
		})
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	m.selectIndex(idx)
	m.list.Title = fmt.Sprintf("Quick Access (%d)", m.store.Len())
}

// SetSize updates the size.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	// Tabs(1) + Footer(1) + Frame border(2)
	m.list.SetSize(w-4, h-4)
}

// View renders the page.
func (m Model) View() string {
	var tabs []string
	for _, c := range handle.Categories {
		style := m.styles.Tab
		if c == m.store.Filter() {
			style = m.styles.ActiveTab
		}
		tabs = append(tabs, style.Render(c.Label()))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	body := m.list.View()
	if m.store.Len() == 0 {
		body = m.styles.Muted.Render("No items yet. Drop files here or run `quickaccess add <path>`.")
	}

	footer := m.styles.Footer.Render("tab: category • enter: open • x: remove • J/K: reorder • y: copy • C: clear • /: filter • q: quit")
	if m.confirmingClear {
		footer = m.styles.Warning.Render(fmt.Sprintf("Remove all %d items? (y/n)", m.store.Len()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.styles.Frame.Render(body),
		footer,
	)
}
