// Package launch opens quick access items with the platform's tools.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"quickaccess/internal/config"
	"quickaccess/internal/handle"
	"quickaccess/internal/logging"
)

var (
	// ErrMenuDisabled is returned for menu items when no menu command is configured.
	ErrMenuDisabled = errors.New("menu commands are not configured (set launch.menu_command)")
	// ErrCannotOpen is returned when a handle carries nothing that can be opened.
	ErrCannotOpen = errors.New("item cannot be opened")
)

// Runner starts an external command without waiting for it.
type Runner func(ctx context.Context, name string, args ...string) error

// Launcher resolves handles to commands and starts them.
type Launcher struct {
	cfg         config.LaunchConfig
	projectRoot string
	resolver    handle.Resolver
	goos        string
	run         Runner
}

// New creates a Launcher. resolver may be nil when no asset database is available.
func New(cfg config.LaunchConfig, projectRoot string, resolver handle.Resolver) *Launcher {
	return &Launcher{
		cfg:         cfg,
		projectRoot: projectRoot,
		resolver:    resolver,
		goos:        runtime.GOOS,
		run:         startDetached,
	}
}

// WithRunner replaces the process starter.
func (l *Launcher) WithRunner(r Runner) *Launcher {
	l.run = r
	return l
}

// Command returns the command line that Open would start.
func (l *Launcher) Command(h *handle.Handle) ([]string, error) {
	if h == nil {
		return nil, ErrCannotOpen
	}

	switch h.Kind {
	case handle.KindProjectAsset:
		if l.resolver == nil {
			return nil, handle.ErrNoResolver
		}
		p, ok := l.resolver.PathForGUID(h.GUID)
		if !ok {
			return nil, fmt.Errorf("%w %s", handle.ErrUnresolvable, h.GUID)
		}
		return l.openerFor(l.projectPath(p)), nil

	case handle.KindSceneObject:
		// The object itself only exists inside the editor; open its scene.
		if h.ScenePath == "" {
			return nil, fmt.Errorf("%w: scene object has no scene", ErrCannotOpen)
		}
		return l.openerFor(l.projectPath(h.ScenePath)), nil

	case handle.KindExternalFile:
		target := filepath.FromSlash(h.Path)
		if _, err := os.Stat(target); err != nil {
			return nil, fmt.Errorf("file not found: %s", h.Path)
		}
		return l.openerFor(target), nil

	case handle.KindURL:
		if h.URL == "" {
			return nil, handle.ErrEmptyURL
		}
		if l.cfg.Browser != "" {
			return append(strings.Fields(l.cfg.Browser), h.URL), nil
		}
		return append(l.platformOpener(), h.URL), nil

	case handle.KindMenuCommand:
		if l.cfg.MenuCommand == "" {
			return nil, ErrMenuDisabled
		}
		fields := strings.Fields(l.cfg.MenuCommand)
		for i, f := range fields {
			fields[i] = strings.ReplaceAll(f, "{path}", h.MenuPath)
		}
		return fields, nil

	default:
		return nil, fmt.Errorf("%w: unknown kind %s", ErrCannotOpen, h.Kind)
	}
}

// Open starts the command for h.
func (l *Launcher) Open(ctx context.Context, h *handle.Handle) error {
	if h == nil {
		return ErrCannotOpen
	}
	argv, err := l.Command(h)
	if err != nil {
		logging.Get(logging.CategoryLaunch).Warn("cannot open %s: %v", h.Identity(), err)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	logging.Launch("opening %s with %s", h.Identity(), strings.Join(argv, " "))
	if err := l.run(ctx, argv[0], argv[1:]...); err != nil {
		return fmt.Errorf("failed to start %s: %w", argv[0], err)
	}
	return nil
}

func (l *Launcher) projectPath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(l.projectRoot, filepath.FromSlash(rel))
}

func (l *Launcher) openerFor(target string) []string {
	if l.cfg.Opener != "" {
		return append(strings.Fields(l.cfg.Opener), target)
	}
	return append(l.platformOpener(), target)
}

func (l *Launcher) platformOpener() []string {
	switch l.goos {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	default:
		return []string{"xdg-open"}
	}
}

func startDetached(_ context.Context, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
