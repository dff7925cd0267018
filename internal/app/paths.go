package app

import (
	"path/filepath"
)

// Paths holds the files repostflow keeps under its data directory
type Paths struct {
	Home    string // data directory, .repostflow by default
	History string // <home>/history.db
	Journal string // <home>/journal.ndjson
}

// DefaultHome is used when no data directory is configured
const DefaultHome = ".repostflow"

// ResolvePaths returns all paths below home
func ResolvePaths(home string) Paths {
	if home == "" {
		home = DefaultHome
	}
	return Paths{
		Home:    home,
		History: filepath.Join(home, "history.db"),
		Journal: filepath.Join(home, "journal.ndjson"),
	}
}
