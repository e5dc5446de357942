package main

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quickaccess/internal/handle"
)

var clearYes bool

var removeCmd = &cobra.Command{
	Use:   "remove <id|position>...",
	Short: "Unpin items",
	Long: `Unpins items by one-based position (as shown by list) or by id.
An id prefix is accepted when it is unique. Positions refer to the list
before any removal.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Unpin everything",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var filterCmd = &cobra.Command{
	Use:   "filter [all|assets|scene|external]",
	Short: "Show or set the saved category filter",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFilter,
}

var moveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Reorder an item (one-based positions)",
	Args:  cobra.ExactArgs(2),
	RunE:  runMove,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(removeCmd, clearCmd, filterCmd, moveCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	// Resolve everything first so positions stay stable.
	var targets []*handle.Handle
	var errs []string
	for _, q := range args {
		h, err := a.store.Find(q)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		targets = append(targets, h)
	}

	removed := 0
	for _, h := range targets {
		name := h.DisplayName(a.resolver)
		if a.store.Remove(h) {
			removed++
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", name)
		}
	}
	logger.Debug("Removed items", zap.Int("count", removed))

	if len(errs) > 0 {
		if removed == 0 {
			return errors.New(strings.Join(errs, "\n"))
		}
		fmt.Fprintln(cmd.ErrOrStderr(), strings.Join(errs, "\n"))
	}
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	n := a.store.Len()
	if !clearYes && a.cfg.UI.ConfirmClear {
		fmt.Fprintf(cmd.OutOrStdout(), "Remove all %d items? [y/N] ", n)
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
		default:
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	a.store.RemoveAll()
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d item(s).\n", n)
	return nil
}

func runFilter(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), a.store.Filter().String())
		return nil
	}

	c, err := handle.ParseCategory(args[0])
	if err != nil {
		return err
	}
	a.store.SetFilter(c)
	fmt.Fprintf(cmd.OutOrStdout(), "Filter set to %s (%d of %d items).\n", c.Label(), len(a.store.Filtered()), a.store.Len())
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	from, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid position %q", args[0])
	}
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid position %q", args[1])
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.Move(from-1, to-1); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Moved item %d to %d.\n", from, to)
	return nil
}
