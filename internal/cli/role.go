package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/user/podboard/internal/model"
	"github.com/user/podboard/internal/selection"
)

// grantAll selects or clears every permission in the catalog.
const grantAll = "all"

var (
	roleGrants []string
	roleYes    bool
	roleURL    string
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Edit roles and their permissions",
	Long: `Roles are named permission sets. Permissions come from the catalog and
are grouped into modules; a module is full, partial or empty depending on
how many of its permissions a role holds.

Grant and revoke take any mix of:
  <permission id>   a single permission, e.g. order.view
  <module key>      every permission in the module, e.g. order
  all               every permission in the catalog`,
}

var roleCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a role",
	Long: `Create a role, optionally granting permissions.

Examples:
  podboard role create Support --grant order.view --grant store.view
  podboard role create Admin --grant all`,
	Args: cobra.ExactArgs(1),
	RunE: runRoleCreate,
}

var roleShowCmd = &cobra.Command{
	Use:   "show <role>",
	Short: "Show a role's permissions by module",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoleShow,
}

var roleGrantCmd = &cobra.Command{
	Use:   "grant <role> <permission|module|all>...",
	Short: "Grant permissions to a role",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRoleToggle(args, true)
	},
}

var roleRevokeCmd = &cobra.Command{
	Use:   "revoke <role> <permission|module|all>...",
	Short: "Revoke permissions from a role",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRoleToggle(args, false)
	},
}

var roleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List roles",
	Args:  cobra.NoArgs,
	RunE:  runRoleList,
}

var roleDeleteCmd = &cobra.Command{
	Use:   "delete <role>",
	Short: "Delete a role",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoleDelete,
}

var roleImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import roles from a listing",
	Long: `Import roles from a JSON listing, merging by id. Permissions may be
given as strings or as objects carrying an id or name.

Examples:
  podboard role import roles.json
  podboard role import --url /v1/roles`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoleImport,
}

func init() {
	roleCreateCmd.Flags().StringArrayVar(&roleGrants, "grant", nil, "Grant a permission, module or 'all' (can be repeated)")
	roleDeleteCmd.Flags().BoolVarP(&roleYes, "yes", "y", false, "Confirm deletion")
	roleImportCmd.Flags().StringVar(&roleURL, "url", "", "Fetch the listing from this URL or API path")

	roleCmd.AddCommand(roleCreateCmd, roleShowCmd, roleGrantCmd, roleRevokeCmd,
		roleListCmd, roleDeleteCmd, roleImportCmd)
	rootCmd.AddCommand(roleCmd)
}

// applyPermissionRefs toggles each ref on sel. A ref is matched as a
// permission id first, then as a module key, then as "all". When
// revoking, a selected id outside the catalog is removed as well.
func applyPermissionRefs(sel *selection.Selector, refs []string, checked bool) error {
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if leaf, ok := sel.Leaf(ref); ok {
			sel.ToggleLeaf(leaf, checked)
			continue
		}
		if m, ok := sel.Module(ref); ok {
			sel.ToggleModule(m, checked)
			continue
		}
		if strings.EqualFold(ref, grantAll) {
			sel.ToggleAll(checked)
			continue
		}
		if !checked && sel.IsSelected(ref) {
			sel.ToggleLeaf(selection.Leaf{ID: ref}, false)
			continue
		}
		return fmt.Errorf("%w: %q", model.ErrUnknownPermission, ref)
	}
	return nil
}

func runRoleCreate(cmd *cobra.Command, args []string) error {
	_, store, ok := openWorkspace()
	if !ok {
		return nil
	}
	defer store.Close()

	catalog, err := store.Catalog()
	if err != nil {
		exitForError(err, nil)
		return nil
	}
	sel := selection.NewSelector(catalog, nil)
	if err := applyPermissionRefs(sel, roleGrants, true); err != nil {
		exitForError(err, map[string]interface{}{"grant": roleGrants})
		return nil
	}

	role, err := store.CreateRole(args[0], sel.Set().IDs())
	if err != nil {
		exitForError(err, map[string]interface{}{"role": args[0]})
		return nil
	}

	if GetJSONOutput() {
		printJSON(role)
	} else if !IsQuiet() {
		fmt.Printf("Created role '%s' (%s) with %d permissions\n", role.Name, role.ID, len(role.Permissions))
	}
	return nil
}

func runRoleToggle(args []string, checked bool) error {
	ref, refs := args[0], args[1:]

	_, store, ok := openWorkspace()
	if !ok {
		return nil
	}
	defer store.Close()

	role, err := store.GetRole(ref)
	if err != nil {
		exitForError(err, map[string]interface{}{"role": ref})
		return nil
	}
	catalog, err := store.Catalog()
	if err != nil {
		exitForError(err, nil)
		return nil
	}

	sel := selection.NewSelector(catalog, selection.NewSet(role.Permissions...))
	if err := applyPermissionRefs(sel, refs, checked); err != nil {
		exitForError(err, map[string]interface{}{"role": role.ID, "permissions": refs})
		return nil
	}
	before := len(role.Permissions)
	role.Permissions = sel.Set().IDs()
	if err := store.SaveRole(role); err != nil {
		return fmt.Errorf("failed to save role: %w", err)
	}

	if GetJSONOutput() {
		printJSON(roleView(role, sel))
		return nil
	}
	if !IsQuiet() {
		verb := "Granted"
		if !checked {
			verb = "Revoked"
		}
		fmt.Printf("%s on '%s': %d -> %d permissions\n", verb, role.Name, before, len(role.Permissions))
	}
	return nil
}

func runRoleShow(cmd *cobra.Command, args []string) error {
	_, store, ok := openWorkspace()
	if !ok {
		return nil
	}
	defer store.Close()

	role, err := store.GetRole(args[0])
	if err != nil {
		exitForError(err, map[string]interface{}{"role": args[0]})
		return nil
	}
	catalog, err := store.Catalog()
	if err != nil {
		exitForError(err, nil)
		return nil
	}
	sel := selection.NewSelector(catalog, selection.NewSet(role.Permissions...))

	if GetJSONOutput() {
		printJSON(roleView(role, sel))
		return nil
	}

	fmt.Printf("Role: %s (%s)\n", role.Name, role.ID)
	if role.UpdatedBy != "" {
		fmt.Printf("Updated by %s at %s\n", role.UpdatedBy, role.UpdatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("%s all permissions\n", checkbox(allState(sel)))
	for _, m := range sel.Modules() {
		fmt.Printf("  %s %s  %s\n", checkbox(sel.ModuleState(m)), m.Key, m.Label)
		for _, l := range m.Leaves {
			st := selection.Empty
			if sel.IsSelected(l.ID) {
				st = selection.Full
			}
			fmt.Printf("      %s %s  %s\n", checkbox(st), l.ID, l.Label)
		}
	}
	if unknown := sel.Unknown(); len(unknown) > 0 {
		fmt.Printf("Not in catalog: %s\n", strings.Join(unknown, ", "))
	}
	return nil
}

// allState folds the whole catalog into one tri-state.
func allState(sel *selection.Selector) selection.State {
	if sel.AllSelected() {
		return selection.Full
	}
	for _, m := range sel.Modules() {
		if sel.ModuleState(m) != selection.Empty {
			return selection.Partial
		}
	}
	return selection.Empty
}

func checkbox(s selection.State) string {
	switch s {
	case selection.Full:
		return "[x]"
	case selection.Partial:
		return "[-]"
	default:
		return "[ ]"
	}
}

type leafView struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type moduleView struct {
	Key    string     `json:"key"`
	Label  string     `json:"label"`
	State  string     `json:"state"`
	Leaves []leafView `json:"leaves"`
}

func roleView(role *model.Role, sel *selection.Selector) map[string]interface{} {
	modules := make([]moduleView, 0, len(sel.Modules()))
	for _, m := range sel.Modules() {
		mv := moduleView{Key: m.Key, Label: m.Label, State: sel.ModuleState(m).String(), Leaves: []leafView{}}
		for _, l := range m.Leaves {
			mv.Leaves = append(mv.Leaves, leafView{ID: l.ID, Label: l.Label, Selected: sel.IsSelected(l.ID)})
		}
		modules = append(modules, mv)
	}
	unknown := sel.Unknown()
	if unknown == nil {
		unknown = []string{}
	}
	return map[string]interface{}{
		"role":         role,
		"all_selected": sel.AllSelected(),
		"modules":      modules,
		"unknown":      unknown,
	}
}

func runRoleList(cmd *cobra.Command, args []string) error {
	_, store, ok := openWorkspace()
	if !ok {
		return nil
	}
	defer store.Close()

	roles, err := store.Roles()
	if err != nil {
		return fmt.Errorf("failed to list roles: %w", err)
	}
	if GetJSONOutput() {
		printJSON(roles)
		return nil
	}
	if len(roles) == 0 {
		if !IsQuiet() {
			fmt.Println("No roles")
		}
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPERMISSIONS\tUPDATED BY")
	for _, r := range roles {
		by := r.UpdatedBy
		if by == "" {
			by = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.ID, r.Name, len(r.Permissions), by)
	}
	return tw.Flush()
}

func runRoleDelete(cmd *cobra.Command, args []string) error {
	ref := args[0]
	if !roleYes {
		ExitValidationError(fmt.Sprintf("deleting role '%s' cannot be undone; pass --yes to confirm", ref),
			map[string]interface{}{"role": ref})
		return nil
	}

	_, store, ok := openWorkspace()
	if !ok {
		return nil
	}
	defer store.Close()

	if err := store.DeleteRole(ref); err != nil {
		exitForError(err, map[string]interface{}{"role": ref})
		return nil
	}
	if GetJSONOutput() {
		printJSON(map[string]interface{}{"deleted": ref})
	} else if !IsQuiet() {
		fmt.Printf("Deleted role '%s'\n", ref)
	}
	return nil
}

func runRoleImport(cmd *cobra.Command, args []string) error {
	file := ""
	if len(args) == 1 {
		file = args[0]
	}
	if (file == "") == (roleURL == "") {
		ExitValidationError("give exactly one of a file or --url", nil)
		return nil
	}

	sess, store, ok := openWorkspace()
	if !ok {
		return nil
	}
	defer store.Close()

	var payloads []model.Payload
	var err error
	source := file
	if file != "" {
		payloads, err = readListing(cmd, file)
	} else {
		source = roleURL
		payloads, err = fetchListing(cmd.Context(), sess, roleURL)
	}
	if err != nil {
		exitForError(err, map[string]interface{}{"source": source})
		return nil
	}

	result, err := store.ImportRoles(payloads)
	if err != nil {
		exitForError(err, map[string]interface{}{"source": source})
		return nil
	}
	if GetJSONOutput() {
		printJSON(map[string]interface{}{
			"source":    source,
			"added":     result.Added,
			"updated":   result.Updated,
			"unchanged": result.Unchanged,
			"total":     result.Total,
		})
	} else if !IsQuiet() {
		fmt.Printf("Imported roles: %d added, %d updated, %d unchanged (%d total)\n",
			result.Added, result.Updated, result.Unchanged, result.Total)
	}
	return nil
}
