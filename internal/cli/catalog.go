package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/podboard/internal/model"
	"github.com/user/podboard/internal/selection"
)

var catalogValidate string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show the permission catalog",
	Long: `Show the modules and permissions roles are built from.

The built-in catalog is used unless the workspace has a catalog.yaml.
Use --validate to check a catalog file before installing it.

Examples:
  podboard catalog
  podboard catalog --json
  podboard catalog --validate ./catalog.yaml`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogValidate, "validate", "", "Check a catalog file instead of showing the active one")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	if catalogValidate != "" {
		f, err := os.Open(catalogValidate)
		if err != nil {
			ExitValidationError(fmt.Sprintf("failed to open %s: %v", catalogValidate, err), map[string]interface{}{"file": catalogValidate})
			return nil
		}
		defer f.Close()
		modules, err := model.LoadCatalog(f)
		if err != nil {
			exitForError(err, map[string]interface{}{"file": catalogValidate})
			return nil
		}
		if GetJSONOutput() {
			printJSON(map[string]interface{}{"valid": true, "modules": len(modules), "permissions": countLeaves(modules)})
		} else if !IsQuiet() {
			fmt.Printf("%s: %d modules, %d permissions\n", catalogValidate, len(modules), countLeaves(modules))
		}
		return nil
	}

	_, store, ok := openWorkspace()
	if !ok {
		return nil
	}
	defer store.Close()

	modules, err := store.Catalog()
	if err != nil {
		exitForError(err, map[string]interface{}{"file": store.CatalogPath()})
		return nil
	}
	if GetJSONOutput() {
		printJSON(modules)
		return nil
	}

	if _, err := os.Stat(store.CatalogPath()); err == nil {
		logf("catalog from %s", store.CatalogPath())
	}
	for _, m := range modules {
		fmt.Printf("%s  %s\n", m.Key, m.Label)
		for _, l := range m.Leaves {
			if l.Description != "" {
				fmt.Printf("    %-20s %s (%s)\n", l.ID, l.Label, l.Description)
				continue
			}
			fmt.Printf("    %-20s %s\n", l.ID, l.Label)
		}
	}
	return nil
}

func countLeaves(modules []selection.Module) int {
	n := 0
	for _, m := range modules {
		n += len(m.Leaves)
	}
	return n
}
