package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quickaccess/internal/handle"
	"quickaccess/internal/store"
)

var (
	// add-scene-object flags
	sceneObjScene      string
	sceneObjHierarchy  string
	sceneObjFileID     int64
	sceneObjInstanceID int64

	// add-url / add-menu flags
	addTitle string
)

// addCmd pins paths, classifying them as project assets or external files
var addCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Pin project assets or external files and folders",
	Long: `Pins each path. Paths under Assets/ or Packages/ that are known to the
asset database are pinned by GUID; everything else is pinned as an
external file or folder.

Example:
  quickaccess add Assets/Prefabs/Player.prefab ~/Downloads/reference.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var addSceneObjectCmd = &cobra.Command{
	Use:   "add-scene-object",
	Short: "Pin an object inside a scene",
	Long: `Pins a scene object by its global object id.

Example:
  quickaccess add-scene-object --scene Assets/Scenes/Main.unity --hierarchy "Level/Spawn Point" --file-id 118394720`,
	Args: cobra.NoArgs,
	RunE: runAddSceneObject,
}

var addURLCmd = &cobra.Command{
	Use:   "add-url <url>",
	Short: "Pin a URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddURL,
}

var addMenuCmd = &cobra.Command{
	Use:   "add-menu <menu/path>",
	Short: "Pin an editor menu command",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddMenu,
}

func init() {
	addSceneObjectCmd.Flags().StringVar(&sceneObjScene, "scene", "", "Project-relative scene path")
	addSceneObjectCmd.Flags().StringVar(&sceneObjHierarchy, "hierarchy", "", "Hierarchy path of the object (e.g. Level/Spawn Point)")
	addSceneObjectCmd.Flags().Int64Var(&sceneObjFileID, "file-id", 0, "Local file id of the object in the scene")
	addSceneObjectCmd.Flags().Int64Var(&sceneObjInstanceID, "instance-id", 0, "Editor instance id")

	addURLCmd.Flags().StringVar(&addTitle, "title", "", "Display title (required)")
	addMenuCmd.Flags().StringVar(&addTitle, "title", "", "Display title (required)")

	rootCmd.AddCommand(addCmd, addSceneObjectCmd, addURLCmd, addMenuCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	before := a.store.Len()
	_, errs := a.store.AddPaths(commandContext(cmd), args, a.ws, a.refresher())
	logger.Debug("Added paths", zap.Int("paths", len(args)), zap.Int("errors", len(errs)))

	return reportAdd(cmd, a, before, errs)
}

func runAddSceneObject(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	before := a.store.Len()
	_, errs := a.store.AddObjects([]handle.Object{{
		InstanceID:    sceneObjInstanceID,
		ScenePath:     sceneObjScene,
		HierarchyPath: sceneObjHierarchy,
		LocalFileID:   sceneObjFileID,
	}})
	return reportAdd(cmd, a, before, errs)
}

func runAddURL(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	before := a.store.Len()
	_, errs := a.store.AddURLs([]store.URLEntry{{URL: args[0], Title: addTitle}})
	return reportAdd(cmd, a, before, errs)
}

func runAddMenu(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	before := a.store.Len()
	_, errs := a.store.AddMenuItems([]store.MenuEntry{{Path: args[0], Title: addTitle}})
	return reportAdd(cmd, a, before, errs)
}

// reportAdd prints one aggregated notification. It fails only when nothing
// was added and there were errors.
func reportAdd(cmd *cobra.Command, a *app, before int, errs []string) error {
	added := a.store.Len() - before
	if added > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d item(s). %d pinned.\n", added, a.store.Len())
	}
	if len(errs) == 0 {
		return nil
	}
	msg := store.JoinErrors(errs)
	if added == 0 {
		return errors.New(msg)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), msg)
	return nil
}
