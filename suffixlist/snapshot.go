package suffixlist

import (
	_ "embed"
)

// The snapshot is a copy of https://publicsuffix.org/list/public_suffix_list.dat,
// used if no configured source can be resolved. It is refreshed on
// release, never at runtime.
//
//go:embed public_suffix_list_snapshot.dat
var snapshotData string

// Snapshot returns the bundled suffix list text.
func Snapshot() string {
	return snapshotData
}
