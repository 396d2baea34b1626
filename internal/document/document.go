// Package document decodes persisted game state documents.
//
// State documents are stored as JSON. Older documents may predate the
// schema_version field; those are treated as version 0 and brought forward
// by a chain of migrations operating on the generic map form before the
// strict, typed decode runs.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/alextwoods/woodsgames/internal/gameerr"
)

// VersionField is the top-level key carrying the schema version.
const VersionField = "schema_version"

// Migration upgrades a raw document from one version to the next in place.
type Migration func(doc map[string]any) error

// Migrations maps a source version to the migration that upgrades it by one.
type Migrations map[int]Migration

// Decode migrates data up to version current and strictly decodes it into v.
// Unknown fields are rejected, as are documents newer than current.
func Decode(data []byte, current int, migrations Migrations, v any) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return gameerr.Invalid("malformed document: %v", err)
	}
	if raw == nil {
		return gameerr.Invalid("empty document")
	}

	version, err := Version(raw)
	if err != nil {
		return err
	}
	if version > current {
		return gameerr.Invalid("document schema version %d is newer than supported version %d", version, current)
	}

	for version < current {
		migrate, ok := migrations[version]
		if !ok {
			return gameerr.Invalid("no migration from schema version %d", version)
		}
		if err := migrate(raw); err != nil {
			return fmt.Errorf("migrating from schema version %d: %w", version, err)
		}
		version++
		raw[VersionField] = version
	}

	migrated, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("re-encoding migrated document: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(migrated))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return gameerr.Invalid("decoding document: %v", err)
	}
	return nil
}

// Version reads the schema version of a raw document; a missing field is
// version 0.
func Version(raw map[string]any) (int, error) {
	v, ok := raw[VersionField]
	if !ok || v == nil {
		return 0, nil
	}
	n, ok := v.(float64)
	if !ok || n != float64(int(n)) || n < 0 {
		return 0, gameerr.Invalid("schema_version must be a non-negative integer, got %v", v)
	}
	return int(n), nil
}

// Map returns the nested object stored under key, or nil.
func Map(doc map[string]any, key string) map[string]any {
	m, _ := doc[key].(map[string]any)
	return m
}
