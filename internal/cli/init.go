package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/user/podboard/internal/model"
	"github.com/user/podboard/internal/session"
	"github.com/user/podboard/internal/storage"
)

var initCollections []string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a podboard workspace",
	Long: `Create a .podboard directory in the current directory.

The workspace holds one directory per collection, roles.json, an optional
catalog.yaml overriding the permission catalog, and cache.db.

Use --create to add starter collections as name:kind pairs.

Examples:
  podboard init
  podboard init --create orders:orders --create shops:stores`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringArrayVar(&initCollections, "create", nil, "Create a collection, as name:kind (can be repeated)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cols := make([]*model.Collection, 0, len(initCollections))
	for _, arg := range initCollections {
		col, err := parseCollectionArg(arg)
		if err != nil {
			ExitValidationError(err.Error(), map[string]interface{}{"create": arg})
			return nil
		}
		cols = append(cols, col)
	}

	baseDir, err := filepath.Abs(session.DirName)
	if err != nil {
		return fmt.Errorf("failed to resolve workspace path: %w", err)
	}
	if info, err := os.Stat(baseDir); err == nil && info.IsDir() {
		ExitWithError(1, ErrCodeConflict,
			fmt.Sprintf("workspace already exists at %s", baseDir),
			map[string]interface{}{"path": baseDir})
		return nil
	}

	store, err := storage.NewStore(baseDir)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	actor := session.ResolveActor(GetActorName())
	created := make([]string, 0, len(cols))
	for _, col := range cols {
		col.CreatedBy = actor
		if err := store.CreateCollection(col); err != nil {
			exitForError(err, map[string]interface{}{"collection": col.Name})
			return nil
		}
		created = append(created, col.Name)
	}

	if GetJSONOutput() {
		printJSON(map[string]interface{}{
			"path":        baseDir,
			"collections": created,
			"actor":       actor,
		})
	} else if !IsQuiet() {
		fmt.Printf("Initialized podboard workspace in %s\n", baseDir)
		for _, name := range created {
			fmt.Printf("  created collection '%s'\n", name)
		}
	}
	return nil
}
