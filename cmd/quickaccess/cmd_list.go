package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quickaccess/internal/handle"
	"quickaccess/internal/store"
)

var (
	listCategory string
	listJSON     bool
)

// listCmd prints the pinned items
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List pinned items",
	Long: `Lists pinned items in order. Without --category the saved filter is used,
the same one the interactive list shows.

Missing references are marked but never removed.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listCategory, "category", "", "Category: all, assets, scene, external (default: saved filter)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(listCmd)
}

type listEntry struct {
	Position int    `json:"position"`
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Identity string `json:"identity"`
	Status   string `json:"status"`
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	category := a.store.Filter()
	if listCategory != "" {
		if category, err = handle.ParseCategory(listCategory); err != nil {
			return err
		}
	}

	entries := buildEntries(a, store.FilterHandles(a.store.Handles(), category))
	out := cmd.OutOrStdout()

	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintf(out, "No items in %s.\n", category.Label())
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tCATEGORY\tNAME\tSTATUS\tID\n")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.Position, e.Category, e.Name, e.Status, shortID(e.ID))
	}
	return tw.Flush()
}

func buildEntries(a *app, hs []*handle.Handle) []listEntry {
	entries := make([]listEntry, 0, len(hs))
	for _, h := range hs {
		entries = append(entries, listEntry{
			Position: a.store.IndexOf(h) + 1,
			ID:       h.ID,
			Kind:     h.Kind.String(),
			Category: h.Category().Label(),
			Name:     h.DisplayName(a.resolver),
			Identity: h.Identity(),
			Status:   h.Status(a.resolver).String(),
		})
	}
	return entries
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
