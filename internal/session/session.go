// Package session resolves who is running podboard, against which
// workspace and backend. The resolved Session is handed to storage and
// fetch at construction; nothing reads credentials from the environment
// after that.
package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DirName is the workspace directory searched for from the working directory up.
const DirName = ".podboard"

// Environment variables consulted during resolution.
const (
	EnvActor      = "PODBOARD_ACTOR"
	EnvToken      = "PODBOARD_TOKEN"
	EnvCollection = "PODBOARD_COLLECTION"
	EnvAPI        = "PODBOARD_API"
)

// ErrNoWorkspace is returned when no .podboard directory is found
var ErrNoWorkspace = errors.New("no .podboard directory found")

// ErrNoCollection is returned when no collection is selected and none can be auto-detected
var ErrNoCollection = errors.New("no collection specified and multiple collections exist (use --collection)")

// Session holds the resolved runtime identity and location.
type Session struct {
	Actor      string // Resolved actor name, recorded on writes
	Token      string // Bearer token for the backend (may be empty)
	APIBase    string // Backend base URL (may be empty)
	Dir        string // Path to .podboard directory (may be empty)
	Collection string // Default or selected collection name (may be empty)
}

// Resolve builds a Session from flags and environment.
//
// Parameters:
//   - actorFlag: value of --actor flag (empty if not provided)
//   - collectionFlag: value of --collection flag (empty if not provided)
func Resolve(actorFlag, collectionFlag string) *Session {
	s := &Session{
		Actor:   ResolveActor(actorFlag),
		Token:   os.Getenv(EnvToken),
		APIBase: strings.TrimRight(os.Getenv(EnvAPI), "/"),
		Dir:     FindDir(),
	}
	if collectionFlag != "" {
		s.Collection = collectionFlag
	} else {
		s.Collection = DefaultCollection(s.Dir)
	}
	return s
}

// ResolveRequired is like Resolve but fails when there is no workspace.
func ResolveRequired(actorFlag, collectionFlag string) (*Session, error) {
	s := Resolve(actorFlag, collectionFlag)
	if s.Dir == "" {
		return nil, ErrNoWorkspace
	}
	return s, nil
}

// RequireCollection returns the named collection, falling back to the
// session default. It fails when neither is set.
func (s *Session) RequireCollection(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	if s.Collection == "" {
		return "", ErrNoCollection
	}
	return s.Collection, nil
}

// ResolveActor returns the actor name following priority order:
// 1. flagValue (--actor flag) if non-empty
// 2. $PODBOARD_ACTOR environment variable if set
// 3. $USER environment variable if set
// 4. "unknown" as fallback
func ResolveActor(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if actor := os.Getenv(EnvActor); actor != "" {
		return actor
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "unknown"
}

// FindDir returns the path to the .podboard directory, searching the
// current directory and its parents. Returns empty string if not found.
func FindDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findDirFrom(dir)
}

func findDirFrom(startDir string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// DefaultCollection returns the default collection name:
// 1. $PODBOARD_COLLECTION if set
// 2. The only collection if exactly one exists
// 3. Empty string (requires --collection)
func DefaultCollection(dir string) string {
	if name := os.Getenv(EnvCollection); name != "" {
		return name
	}
	if dir == "" {
		return ""
	}
	names := listCollections(dir)
	if len(names) == 1 {
		return names[0]
	}
	return ""
}

// listCollections returns subdirectories of dir that hold a config.json.
func listCollections(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, entry.Name(), "config.json")); err == nil {
			names = append(names, entry.Name())
		}
	}
	return names
}
