package models

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// canonicalVersion adds the "v" prefix semver expects.
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}

	return v
}

// CheckSchemaVersion reports whether a document written with version v can
// be imported. Documents are compatible when they share the major version.
func CheckSchemaVersion(v string) error {
	cv := canonicalVersion(v)
	if !semver.IsValid(cv) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrIncompatibleSchema, v)
	}

	if semver.Major(cv) != semver.Major(canonicalVersion(SchemaVersion)) {
		return fmt.Errorf("%w: document version %s, supported %s.x",
			ErrIncompatibleSchema, v, semver.Major(canonicalVersion(SchemaVersion)))
	}

	return nil
}

// ValidationReport describes whether a document could be imported.
type ValidationReport struct {
	Valid         bool         `json:"valid"`
	SchemaVersion string       `json:"schemaVersion"`
	Compatible    bool         `json:"compatible"`
	EntityCounts  map[Kind]int `json:"entityCounts"`
	Problems      []string     `json:"problems"`
}
