package profile

import "github.com/kalambet/autoreply/internal/style"

// SchemaVersion is the version written to every saved style document.
// Documents without a version are treated as version 1.
const SchemaVersion = 1

// Document is the on-disk form of the style profile: the profile fields at
// the top level plus a schema version.
type Document struct {
	SchemaVersion int `json:"schema_version"`
	style.Profile
}
