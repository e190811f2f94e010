// Package profile holds the per-product configuration consumed by document
// synthesis. Profiles are pure data; selecting one never changes how the
// schema is recovered, only how the document is dressed.
package profile

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Family names a Proxmox product line.
type Family string

const (
	PVE Family = "pve"
	PBS Family = "pbs"
)

// ServerName is the display name used for the server entry.
func (f Family) ServerName() string {
	if f == PBS {
		return "Proxmox Backup Server"
	}
	return "Proxmox VE Server"
}

// Profile carries everything product-specific about a generated document.
type Profile struct {
	Family       Family
	Title        string
	Description  string
	Version      string
	DefaultPort  int
	ServerPath   string
	ContactEmail string
	AuthSchemes  map[string]*openapi3.SecurityScheme
	TagMapping   map[string]string
	Security     openapi3.SecurityRequirements
}

// ByName resolves "pve" or "pbs" to its profile.
func ByName(name string) (*Profile, error) {
	switch Family(name) {
	case PVE:
		return VE(), nil
	case PBS:
		return BackupServer(), nil
	}
	return nil, fmt.Errorf("unknown api %q (want pve or pbs)", name)
}

// VE is the Proxmox Virtual Environment profile.
func VE() *Profile {
	return &Profile{
		Family: PVE,
		Title:  "Proxmox VE API",
		Description: `Complete Proxmox Virtual Environment API specification for managing virtualized infrastructure.

This specification covers all aspects of Proxmox VE management including:
- **Virtual Machine Management**: Create, configure, and manage VMs
- **Container Management**: LXC container lifecycle management
- **Storage Management**: Configure and manage storage backends
- **Network Configuration**: Virtual networks and firewall rules
- **Cluster Operations**: Multi-node cluster management
- **User Management**: Authentication, authorization, and access control
- **Backup & Restore**: Data protection and recovery
- **Monitoring**: System status and performance metrics

The API supports both token-based authentication and session-based authentication with CSRF protection.`,
		Version:      "8.0.0",
		DefaultPort:  8006,
		ServerPath:   "/api2/json",
		ContactEmail: "support@proxmox.com",
		AuthSchemes: map[string]*openapi3.SecurityScheme{
			"ProxmoxApiToken": {
				Type:        "apiKey",
				In:          "header",
				Name:        "Authorization",
				Description: "API token authentication. Format: PVEAPIToken=USER@REALM!TOKENID=UUID",
			},
			"ProxmoxSessionCookie": {
				Type:        "apiKey",
				In:          "cookie",
				Name:        "PVEAuthCookie",
				Description: "Session cookie authentication obtained from /access/ticket",
			},
			"ProxmoxCSRFToken": {
				Type:        "apiKey",
				In:          "header",
				Name:        "CSRFPreventionToken",
				Description: "CSRF prevention token required for state-changing operations when using cookie auth",
			},
		},
		TagMapping: map[string]string{
			"nodes":   "Nodes",
			"cluster": "Cluster",
			"access":  "Access Control",
			"storage": "Storage",
			"pools":   "Resource Pools",
			"version": "System Info",
		},
		Security: openapi3.SecurityRequirements{
			{"ProxmoxApiToken": []string{}},
			{"ProxmoxSessionCookie": []string{}, "ProxmoxCSRFToken": []string{}},
		},
	}
}

// BackupServer is the Proxmox Backup Server profile.
func BackupServer() *Profile {
	return &Profile{
		Family: PBS,
		Title:  "Proxmox Backup Server API",
		Description: `Complete Proxmox Backup Server API specification for comprehensive data protection and backup management.

This specification covers all aspects of Proxmox Backup Server operations including:
- **Backup Operations**: Create, manage, and monitor backup jobs
- **Data Store Management**: Configure and manage backup storage
- **Access Control**: User authentication and authorization
- **Sync & Replication**: Cross-site backup synchronization
- **Prune & GC**: Automated cleanup and garbage collection
- **Encryption**: Client-side encryption and key management
- **Monitoring**: Backup status and performance tracking
- **Configuration**: Server and client configuration management

The API supports token-based authentication with CSRF protection for secure backup operations.`,
		Version:      "3.0.0",
		DefaultPort:  8007,
		ServerPath:   "",
		ContactEmail: "support@proxmox.com",
		AuthSchemes: map[string]*openapi3.SecurityScheme{
			"ProxmoxApiToken": {
				Type:        "apiKey",
				In:          "header",
				Name:        "Authorization",
				Description: "API token authentication. Format: PBSAPIToken=USER@REALM!TOKENID=UUID",
			},
			"ProxmoxCSRFToken": {
				Type:        "apiKey",
				In:          "header",
				Name:        "CSRFPreventionToken",
				Description: "CSRF prevention token required for state-changing operations",
			},
		},
		TagMapping: map[string]string{
			"access":    "Access Control",
			"admin":     "Administration",
			"backup":    "Backup Operations",
			"config":    "Configuration",
			"datastore": "Data Store Management",
			"status":    "Status & Monitoring",
		},
		Security: openapi3.SecurityRequirements{
			{"ProxmoxApiToken": []string{}, "ProxmoxCSRFToken": []string{}},
		},
	}
}
