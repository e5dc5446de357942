package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"quickaccess/internal/handle"
)

var infoState bool

var openCmd = &cobra.Command{
	Use:   "open <id|position>",
	Short: "Open an item with its default application",
	Long: `Opens the item: project assets and scenes with the configured opener,
URLs with the browser, and menu items through launch.menu_command.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

var infoCmd = &cobra.Command{
	Use:   "info [id|position]",
	Short: "Show details of an item",
	Long: `Shows the stored record of an item and the result of its missing-reference
check. With --state, prints the location and content of the persisted list.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoState, "state", false, "Print the persisted state file")
	rootCmd.AddCommand(openCmd, infoCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := a.store.Find(args[0])
	if err != nil {
		return err
	}
	if err := a.launcher.Open(commandContext(cmd), h); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", h.DisplayName(a.resolver))
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if infoState {
		return printState(cmd, a)
	}
	if len(args) == 0 {
		return fmt.Errorf("an id or position is required (or use --state)")
	}

	h, err := a.store.Find(args[0])
	if err != nil {
		return err
	}

	out, err := renderMarkdown(itemMarkdown(a, h), a.cfg.UI.Theme)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func printState(cmd *cobra.Command, a *app) error {
	out := cmd.OutOrStdout()
	path := a.persister.Path()
	fmt.Fprintf(out, "State file: %s\n", path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		fmt.Fprintln(out, "(not written yet)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}
	fmt.Fprintf(out, "\n%s", data)
	return nil
}

func itemMarkdown(a *app, h *handle.Handle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", h.DisplayName(a.resolver))
	fmt.Fprintf(&sb, "- **Position:** %d\n", a.store.IndexOf(h)+1)
	fmt.Fprintf(&sb, "- **ID:** `%s`\n", h.ID)
	fmt.Fprintf(&sb, "- **Kind:** %s\n", h.Kind)
	fmt.Fprintf(&sb, "- **Category:** %s\n", h.Category().Label())
	fmt.Fprintf(&sb, "- **Identity:** `%s`\n", h.Identity())

	switch h.Kind {
	case handle.KindProjectAsset:
		if a.resolver != nil {
			if p, ok := a.resolver.PathForGUID(h.GUID); ok {
				fmt.Fprintf(&sb, "- **Asset path:** `%s`\n", p)
			}
		}
	case handle.KindSceneObject:
		if h.ScenePath != "" {
			fmt.Fprintf(&sb, "- **Scene:** `%s`\n", h.ScenePath)
		}
		if h.HierarchyPath != "" {
			fmt.Fprintf(&sb, "- **Hierarchy:** `%s`\n", h.HierarchyPath)
		}
	}
	if h.Title != "" {
		fmt.Fprintf(&sb, "- **Title:** %s\n", h.Title)
	}
	if !h.AddedAt.IsZero() {
		fmt.Fprintf(&sb, "- **Added:** %s\n", h.AddedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&sb, "- **Status:** %s\n", h.Status(a.resolver))
	return sb.String()
}

// renderMarkdown renders md for the terminal. It falls back to the raw
// markdown when no renderer can be built.
func renderMarkdown(md, theme string) (string, error) {
	style := "dark"
	if theme == "light" {
		style = "light"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md, nil
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render: %w", err)
	}
	return out, nil
}
