package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quickaccess/cmd/quickaccess/ui"
	"quickaccess/internal/watch"
)

// runInteractive opens the interactive list and reloads it when the state
// file is changed by another process.
func runInteractive(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd.SetContext(ctx)
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	model := ui.New(ctx, a.store, a.launcher, ui.Options{
		ProjectRoot:  a.ws,
		ConfirmClear: a.cfg.UI.ConfirmClear,
		Theme:        a.cfg.UI.Theme,
		Reindex:      a.refresher(),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	w, err := watch.New(a.persister.Path(), func() { p.Send(ui.StoreChangedMsg{}) })
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		logger.Warn("State file watcher disabled", zap.Error(err))
	}
	defer w.Stop()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("interactive list failed: %w", err)
	}
	return nil
}
