package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"quickaccess/internal/assetdb"
	"quickaccess/internal/handle"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the asset database from .meta files",
	Long: `Rescans the configured asset roots (asset_db.roots) and rebuilds the
GUID <-> path index used to resolve pinned project assets.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report missing references",
	Long: `Checks every pinned item and reports the ones whose target is gone.
Nothing is removed.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(indexCmd, doctorCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.db == nil {
		return fmt.Errorf("asset database is disabled (asset_db.enabled: false)")
	}

	res, err := a.reindex(commandContext(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Indexed %d assets and %d folders in %s.\n", res.Assets, res.Folders, res.Duration.Round(time.Millisecond))
	if len(res.Orphans) > 0 {
		fmt.Fprintf(out, "%d orphaned .meta file(s):\n", len(res.Orphans))
		for _, o := range res.Orphans {
			fmt.Fprintf(out, "  %s\n", o)
		}
	}
	if res.Warnings != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), res.Warnings)
	}
	return nil
}

func runDoctor(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	switch {
	case a.db == nil:
		fmt.Fprintln(out, "Asset database: disabled")
	default:
		ts, err := a.db.LastIndexed()
		switch {
		case errors.Is(err, assetdb.ErrNotIndexed):
			fmt.Fprintln(out, "Asset database: not indexed (run `quickaccess index`)")
		case err != nil:
			return err
		default:
			n, err := a.db.Count()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Asset database: %d entries, indexed %s\n", n, ts.Local().Format("2006-01-02 15:04"))
		}
	}

	counts := map[handle.Status]int{}
	for i, h := range a.store.Handles() {
		s := h.Status(a.resolver)
		counts[s]++
		if s == handle.StatusMissing {
			fmt.Fprintf(out, "  missing  #%d %s (%s)\n", i+1, h.DisplayName(a.resolver), h.Identity())
		}
	}
	fmt.Fprintf(out, "%d item(s): %d ok, %d missing, %d unverifiable.\n",
		a.store.Len(), counts[handle.StatusOK], counts[handle.StatusMissing], counts[handle.StatusUnverifiable])
	return nil
}
