package openapi

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/basher83/Proxmox-OpenAPI/internal/apidoc"
	"github.com/basher83/Proxmox-OpenAPI/internal/profile"
)

// Shared component schema names. Parameters whose shape matches one of these
// are emitted as references instead of inline definitions, so the document
// carries each common identifier exactly once.
const (
	schemaError        = "ProxmoxError"
	schemaTask         = "ProxmoxTask"
	schemaSuccess      = "ProxmoxSuccess"
	schemaNodeID       = "ProxmoxNodeId"
	schemaVMID         = "ProxmoxVmId"
	schemaStorageID    = "ProxmoxStorageId"
	schemaEmail        = "ProxmoxEmail"
	schemaUserID       = "ProxmoxUserId"
	schemaResourceName = "ProxmoxResourceName"
	schemaSha256       = "ProxmoxSha256"
	schemaBackupID     = "ProxmoxBackupId"
	schemaDatastore    = "ProxmoxDatastoreName"
)

// Source-text pattern constants matched by the reuse rules. These compare
// against the raw pattern string as it appears in the recovered schema,
// before any delimiter unwrapping.
const (
	nodePattern          = `^[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?$`
	emailPattern         = `^[^@]+@[^@]+$`
	sha256Pattern        = `^[a-f0-9]{64}$`
	resourcePattern      = `^[A-Za-z0-9_][A-Za-z0-9._\-]*$`
	resourceGroupPattern = `^(?:[A-Za-z0-9_][A-Za-z0-9._\-]*)$`
)

// registry owns the component schemas for one document, handing out refs
// that carry both the reference path and the shared value so in-memory
// validation can resolve them.
type registry struct {
	schemas openapi3.Schemas
}

func newRegistry(family profile.Family) *registry {
	return &registry{schemas: standardSchemas(family)}
}

func (r *registry) ref(name string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Ref:   "#/components/schemas/" + name,
		Value: r.schemas[name].Value,
	}
}

func standardSchemas(family profile.Family) openapi3.Schemas {
	schemas := openapi3.Schemas{
		schemaError: {Value: &openapi3.Schema{
			Type:        "object",
			Description: "Standard Proxmox API error response",
			Properties: openapi3.Schemas{
				"data": {Value: &openapi3.Schema{
					Type:        "object",
					Nullable:    true,
					Description: "Additional error context data",
				}},
				"errors": {Value: &openapi3.Schema{
					Type: "object",
					AdditionalProperties: openapi3.AdditionalProperties{
						Schema: &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
					},
					Description: "Detailed error messages keyed by field or error type",
				}},
				"message": {Value: &openapi3.Schema{
					Type:        "string",
					Description: "Human-readable error message",
				}},
			},
		}},
		schemaTask: {Value: &openapi3.Schema{
			Type:        "object",
			Description: "Proxmox async task response",
			Properties: openapi3.Schemas{
				"data": {Value: &openapi3.Schema{
					Type:        "string",
					Description: "Task ID for tracking async operations",
					Pattern:     `^UPID:[^:]+:[0-9A-F]+:[^:]*:[^:]+:[^:]*:[^:]*:$`,
				}},
			},
			Required: []string{"data"},
		}},
		schemaSuccess: {Value: &openapi3.Schema{
			Type:        "object",
			Description: "Standard success response",
			Properties: openapi3.Schemas{
				"data": {Value: &openapi3.Schema{
					Description: "Response data (varies by endpoint)",
				}},
				"success": {Value: &openapi3.Schema{
					Type:        "boolean",
					Description: "Operation success indicator",
				}},
			},
		}},
		schemaNodeID: {Value: &openapi3.Schema{
			Type:        "string",
			Description: "Proxmox node identifier following DNS hostname standards",
			Pattern:     nodePattern,
			MinLength:   1,
			MaxLength:   openapi3.Uint64Ptr(63),
			Example:     "pve-node-01",
		}},
		schemaVMID: {Value: &openapi3.Schema{
			Type:        "integer",
			Description: "Virtual machine or container ID",
			Min:         openapi3.Float64Ptr(1),
			Max:         openapi3.Float64Ptr(999999999),
			Example:     100,
		}},
		schemaStorageID: {Value: &openapi3.Schema{
			Type:        "string",
			Description: "Storage identifier",
			Pattern:     `^[A-Za-z][A-Za-z0-9\-_]+$`,
			MinLength:   1,
			MaxLength:   openapi3.Uint64Ptr(64),
			Example:     "local-lvm",
		}},
		schemaEmail: {Value: &openapi3.Schema{
			Type:        "string",
			Description: "Email address format",
			Pattern:     emailPattern,
			Format:      "email",
			Example:     "admin@example.com",
		}},
		schemaUserID: {Value: &openapi3.Schema{
			Type:        "string",
			Description: "User ID in format user@realm",
			Pattern:     emailPattern,
			Example:     "admin@pve",
		}},
		schemaResourceName: {Value: &openapi3.Schema{
			Type:        "string",
			Description: "General resource name following Proxmox naming conventions",
			Pattern:     resourcePattern,
			MinLength:   1,
			MaxLength:   openapi3.Uint64Ptr(64),
			Example:     "my-resource",
		}},
	}
	if family == profile.PBS {
		schemas[schemaSha256] = &openapi3.SchemaRef{Value: &openapi3.Schema{
			Type:        "string",
			Description: "SHA256 hash for backup integrity verification",
			Pattern:     sha256Pattern,
			MinLength:   64,
			MaxLength:   openapi3.Uint64Ptr(64),
			Example:     "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		}}
		schemas[schemaBackupID] = &openapi3.SchemaRef{Value: &openapi3.Schema{
			Type:        "string",
			Description: "Backup ID following PBS naming conventions",
			Pattern:     resourceGroupPattern,
			Example:     "vm-100-disk-0",
		}}
		schemas[schemaDatastore] = &openapi3.SchemaRef{Value: &openapi3.Schema{
			Type:        "string",
			Description: "Datastore name in PBS",
			Pattern:     resourcePattern,
			MinLength:   1,
			MaxLength:   openapi3.Uint64Ptr(32),
			Example:     "backup-storage",
		}}
	}
	return schemas
}

// reuseRule maps a parameter signature onto a shared component schema. Rules
// are evaluated in order and the first match wins; ordering preserves the
// precedence of the matching logic (for example user-described email
// patterns resolve to the user schema, not the email schema).
type reuseRule struct {
	schema string
	match  func(f *apidoc.Field, desc string) bool
}

func reuseRules(family profile.Family) []reuseRule {
	isResource := func(pattern string) bool {
		return pattern == resourcePattern || pattern == resourceGroupPattern
	}
	rules := []reuseRule{
		{schemaNodeID, func(f *apidoc.Field, _ string) bool {
			return f.Pattern == nodePattern
		}},
		{schemaUserID, func(f *apidoc.Field, desc string) bool {
			return f.Pattern == emailPattern && strings.Contains(desc, "user")
		}},
		{schemaEmail, func(f *apidoc.Field, desc string) bool {
			return f.Pattern == emailPattern && strings.Contains(desc, "email")
		}},
		{schemaVMID, func(f *apidoc.Field, _ string) bool {
			return f.Type == "integer" &&
				f.Minimum != nil && *f.Minimum == 1 &&
				f.Maximum != nil && *f.Maximum > 100000
		}},
	}
	if family == profile.PBS {
		rules = append(rules,
			reuseRule{schemaSha256, func(f *apidoc.Field, _ string) bool {
				return f.Pattern == sha256Pattern
			}},
			reuseRule{schemaDatastore, func(f *apidoc.Field, desc string) bool {
				return isResource(f.Pattern) && (strings.Contains(desc, "datastore") || strings.Contains(desc, "store"))
			}},
			reuseRule{schemaBackupID, func(f *apidoc.Field, desc string) bool {
				return isResource(f.Pattern) && strings.Contains(desc, "backup")
			}},
		)
	}
	return append(rules,
		reuseRule{schemaStorageID, func(f *apidoc.Field, desc string) bool {
			return isResource(f.Pattern) && strings.Contains(desc, "storage")
		}},
		reuseRule{schemaResourceName, func(f *apidoc.Field, _ string) bool {
			return isResource(f.Pattern)
		}},
	)
}

// pathParamSchema maps well-known path parameter names onto shared schemas;
// anything unrecognized falls back to a described string.
func (r *registry) pathParamSchema(name string, family profile.Family) *openapi3.SchemaRef {
	switch {
	case name == "vmid" || name == "ctid":
		return r.ref(schemaVMID)
	case name == "node":
		return r.ref(schemaNodeID)
	case name == "storage":
		return r.ref(schemaStorageID)
	case name == "userid":
		return r.ref(schemaUserID)
	case (name == "datastore" || name == "store") && family == profile.PBS:
		return r.ref(schemaDatastore)
	case (name == "backup-id" || name == "backup_id") && family == profile.PBS:
		return r.ref(schemaBackupID)
	case (name == "digest" || name == "checksum") && family == profile.PBS:
		return r.ref(schemaSha256)
	case name == "poolid" || name == "realm" || name == "group" || name == "role":
		return r.ref(schemaResourceName)
	}
	return &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type:        "string",
		Description: fmt.Sprintf("The %s parameter", name),
	}}
}
