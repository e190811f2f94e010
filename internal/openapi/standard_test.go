package openapi

import (
	"testing"

	"github.com/basher83/Proxmox-OpenAPI/internal/apidoc"
	"github.com/basher83/Proxmox-OpenAPI/internal/profile"
)

// refName extracts the component name from a schema ref, or "" for an
// inline schema.
func refName(s *Synthesizer, f *apidoc.Field) string {
	ref := s.paramSchema(f)
	if ref.Ref == "" {
		return ""
	}
	return ref.Ref[len("#/components/schemas/"):]
}

func TestReuseRulesResolveSharedSchemas(t *testing.T) {
	t.Parallel()
	s := NewSynthesizer(profile.VE())
	cases := []struct {
		name  string
		field *apidoc.Field
		want  string
	}{
		{"node pattern", &apidoc.Field{Type: "string", Pattern: nodePattern}, schemaNodeID},
		{"email pattern with email description", &apidoc.Field{Type: "string", Pattern: emailPattern, Description: "Contact email."}, schemaEmail},
		{"email pattern without hint", &apidoc.Field{Type: "string", Pattern: emailPattern, Description: "Some address."}, ""},
		{"vm id range", &apidoc.Field{Type: "integer", Minimum: floatPtr(1), Maximum: floatPtr(999999999)}, schemaVMID},
		{"small integer range", &apidoc.Field{Type: "integer", Minimum: floatPtr(1), Maximum: floatPtr(100000)}, ""},
		{"vm id range on a string", &apidoc.Field{Type: "string", Minimum: floatPtr(1), Maximum: floatPtr(999999999)}, ""},
		{"resource with storage description", &apidoc.Field{Type: "string", Pattern: resourcePattern, Description: "Storage volume name."}, schemaStorageID},
		{"plain resource", &apidoc.Field{Type: "string", Pattern: resourcePattern, Description: "Pool name."}, schemaResourceName},
		{"grouped resource", &apidoc.Field{Type: "string", Pattern: resourceGroupPattern}, schemaResourceName},
		{"sha256 outside backup family", &apidoc.Field{Type: "string", Pattern: sha256Pattern}, ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := refName(s, tc.field); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUserRuleWinsOverEmail(t *testing.T) {
	t.Parallel()
	s := NewSynthesizer(profile.VE())
	f := &apidoc.Field{
		Type:        "string",
		Pattern:     emailPattern,
		Description: "User email address.",
	}
	if got := refName(s, f); got != schemaUserID {
		t.Fatalf("description mentioning both user and email should pick the user schema, got %q", got)
	}
}

func TestBackupFamilyRules(t *testing.T) {
	t.Parallel()
	pbs := NewSynthesizer(profile.BackupServer())
	cases := []struct {
		name  string
		field *apidoc.Field
		want  string
	}{
		{"sha256", &apidoc.Field{Type: "string", Pattern: sha256Pattern}, schemaSha256},
		{"datastore description", &apidoc.Field{Type: "string", Pattern: resourcePattern, Description: "The datastore to query."}, schemaDatastore},
		{"backup group", &apidoc.Field{Type: "string", Pattern: resourceGroupPattern, Description: "Backup group id."}, schemaBackupID},
		// "storage" contains "store", so the datastore rule fires before
		// the storage rule on this family.
		{"storage description", &apidoc.Field{Type: "string", Pattern: resourcePattern, Description: "Storage for sync jobs."}, schemaDatastore},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := refName(pbs, tc.field); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}

	ve := NewSynthesizer(profile.VE())
	f := &apidoc.Field{Type: "string", Pattern: resourcePattern, Description: "The datastore to query."}
	if got := refName(ve, f); got != schemaResourceName {
		t.Fatalf("datastore rule must stay inactive outside the backup family, got %q", got)
	}
}

func TestPathParamSchemaWellKnownNames(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		family profile.Family
		want   string
	}{
		{"vmid", profile.PVE, schemaVMID},
		{"vmid", profile.PBS, schemaVMID},
		{"ctid", profile.PVE, schemaVMID},
		{"node", profile.PVE, schemaNodeID},
		{"storage", profile.PVE, schemaStorageID},
		{"userid", profile.PVE, schemaUserID},
		{"poolid", profile.PVE, schemaResourceName},
		{"realm", profile.PVE, schemaResourceName},
		{"group", profile.PVE, schemaResourceName},
		{"role", profile.PVE, schemaResourceName},
		{"datastore", profile.PBS, schemaDatastore},
		{"store", profile.PBS, schemaDatastore},
		{"backup-id", profile.PBS, schemaBackupID},
		{"backup_id", profile.PBS, schemaBackupID},
		{"digest", profile.PBS, schemaSha256},
		{"checksum", profile.PBS, schemaSha256},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.family)+"/"+tc.name, func(t *testing.T) {
			t.Parallel()
			r := newRegistry(tc.family)
			ref := r.pathParamSchema(tc.name, tc.family)
			if ref.Ref != "#/components/schemas/"+tc.want {
				t.Fatalf("got %q, want %s", ref.Ref, tc.want)
			}
			if ref.Value == nil {
				t.Fatalf("reference must carry the shared value")
			}
		})
	}
}

func TestPathParamSchemaFallsBackToDescribedString(t *testing.T) {
	t.Parallel()
	r := newRegistry(profile.PVE)

	ref := r.pathParamSchema("snapname", profile.PVE)
	if ref.Ref != "" {
		t.Fatalf("unknown names should inline, got ref %q", ref.Ref)
	}
	if ref.Value.Type != "string" || ref.Value.Description != "The snapname parameter" {
		t.Fatalf("fallback schema: got %+v", ref.Value)
	}

	// Backup-only names stay generic outside that family.
	if got := r.pathParamSchema("datastore", profile.PVE); got.Ref != "" {
		t.Fatalf("datastore should not resolve for pve, got %q", got.Ref)
	}
}

func TestStandardSchemasPerFamily(t *testing.T) {
	t.Parallel()
	pve := standardSchemas(profile.PVE)
	if len(pve) != 9 {
		t.Fatalf("pve schema count: got %d", len(pve))
	}
	for _, name := range []string{schemaSha256, schemaBackupID, schemaDatastore} {
		if _, ok := pve[name]; ok {
			t.Fatalf("%s must not exist outside the backup family", name)
		}
	}
	if pve[schemaNodeID].Value.Pattern != nodePattern {
		t.Fatalf("node schema pattern: got %q", pve[schemaNodeID].Value.Pattern)
	}
	if pve[schemaVMID].Value.Type != "integer" || *pve[schemaVMID].Value.Max != 999999999 {
		t.Fatalf("vm id schema: got %+v", pve[schemaVMID].Value)
	}

	pbs := standardSchemas(profile.PBS)
	if len(pbs) != 12 {
		t.Fatalf("pbs schema count: got %d", len(pbs))
	}
	if pbs[schemaDatastore].Value.MaxLength == nil || *pbs[schemaDatastore].Value.MaxLength != 32 {
		t.Fatalf("datastore schema: got %+v", pbs[schemaDatastore].Value)
	}
	if pbs[schemaSha256].Value.MinLength != 64 {
		t.Fatalf("sha256 schema: got %+v", pbs[schemaSha256].Value)
	}
}

func TestRegistryRefCarriesValue(t *testing.T) {
	t.Parallel()
	r := newRegistry(profile.PVE)
	ref := r.ref(schemaError)
	if ref.Ref != "#/components/schemas/ProxmoxError" {
		t.Fatalf("ref path: got %q", ref.Ref)
	}
	if ref.Value == nil || ref.Value != r.schemas[schemaError].Value {
		t.Fatalf("ref must share the registered value")
	}
}
