// Package cli provides the command-line interface for podboard.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/podboard/internal/session"
	"github.com/user/podboard/internal/storage"
)

// Global flags
var (
	jsonOutput     bool
	collectionName string
	actorName      string
	quiet          bool
	verbose        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "podboard",
	Short: "Browse print-on-demand orders, stores and roles from the terminal",
	Long: `Podboard keeps local snapshots of the ops backend's listings and lets you
filter and page through them the way the dashboard does.

Features:
  - Collections: named snapshots of orders or stores, imported from files or the API
  - Cascading filters: platform > account > store, plus status and free-text search
  - Windowed pagination synced to a ?page= URL parameter
  - Role editor: tri-state permission modules over a YAML catalog`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&collectionName, "collection", "", "Target collection (default: auto-detect or $PODBOARD_COLLECTION)")
	rootCmd.PersistentFlags().StringVar(&actorName, "actor", "", "Override actor recorded on writes (default: $PODBOARD_ACTOR or $USER)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug output")
}

// ExitCode is used to communicate exit codes for testing
var ExitCode int

// ExitFunc is the function called to exit the program
// Can be overridden for testing
var ExitFunc = os.Exit

// Exit sets the exit code and calls the exit function
func Exit(code int) {
	ExitCode = code
	ExitFunc(code)
}

// GetJSONOutput returns whether JSON output is enabled
func GetJSONOutput() bool {
	return jsonOutput
}

// GetCollectionName returns the target collection name
func GetCollectionName() string {
	return collectionName
}

// GetActorName returns the actor name override
func GetActorName() string {
	return actorName
}

// IsQuiet returns whether quiet mode is enabled
func IsQuiet() bool {
	return quiet
}

// IsVerbose returns whether verbose mode is enabled
func IsVerbose() bool {
	return verbose
}

// logf writes a debug line to stderr when --verbose is set.
func logf(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// openWorkspace resolves the session and opens its store. On failure it
// reports the error, exits, and returns ok=false.
func openWorkspace() (sess *session.Session, store *storage.Store, ok bool) {
	sess, err := session.ResolveRequired(GetActorName(), GetCollectionName())
	if err != nil {
		if errors.Is(err, session.ErrNoWorkspace) {
			ExitNoWorkspace()
			return nil, nil, false
		}
		ExitWithError(1, ErrCodeInternal, err.Error(), nil)
		return nil, nil, false
	}

	store, err = storage.Open(sess)
	if err != nil {
		ExitWithError(1, ErrCodeInternal, fmt.Sprintf("failed to open storage: %v", err), nil)
		return nil, nil, false
	}
	if verbose {
		store.SetLogger(logf)
	}
	return sess, store, true
}

// targetCollection picks the positional collection argument, falling back
// to --collection and auto-detection.
func targetCollection(sess *session.Session, args []string) (string, bool) {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	name, err := sess.RequireCollection(arg)
	if err != nil {
		ExitWithError(1, ErrCodeNoCollection, err.Error(), nil)
		return "", false
	}
	return name, true
}
