package models

import (
	"encoding/json"
	"fmt"
)

// Permission encoding versions. New shapes get a new tag; old rows stay
// decodable forever.
const (
	PermissionVersionV1 = "v1"
)

// PermissionVersions is the versioned storage encoding of a permission set.
// Writers always encode the latest version; readers accept any known
// version and upgrade to the latest shape via Latest(). This keeps rows
// written by older deployments decodable without migration.
type PermissionVersions struct {
	Version string
	V1      PermissionSet
}

// VersionedPermissions wraps a permission set in the latest encoding.
func VersionedPermissions(set PermissionSet) PermissionVersions {
	return PermissionVersions{Version: PermissionVersionV1, V1: set}
}

// Latest upgrades whatever version was stored to the current shape. All
// permission checks go through this; no caller ever branches on Version.
func (p PermissionVersions) Latest() PermissionSet {
	switch p.Version {
	case PermissionVersionV1:
		return p.V1
	default:
		// Unknown versions decode to the deny-all set rather than
		// granting anything by accident.
		return PermissionSet{}
	}
}

type permissionEnvelope struct {
	Version string          `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// MarshalJSON encodes the tagged envelope form used in storage.
func (p PermissionVersions) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(p.V1)
	if err != nil {
		return nil, err
	}
	return json.Marshal(permissionEnvelope{Version: p.Version, Data: data})
}

// UnmarshalJSON decodes any known version tag.
func (p *PermissionVersions) UnmarshalJSON(b []byte) error {
	var env permissionEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return fmt.Errorf("decode permission envelope: %w", err)
	}
	switch env.Version {
	case PermissionVersionV1:
		var set PermissionSet
		if err := json.Unmarshal(env.Data, &set); err != nil {
			return fmt.Errorf("decode permission set %s: %w", env.Version, err)
		}
		*p = PermissionVersions{Version: env.Version, V1: set}
		return nil
	default:
		return fmt.Errorf("unknown permission encoding version %q", env.Version)
	}
}
