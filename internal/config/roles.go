package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"storefront-backend-go/internal/models"
)

type rolesFile struct {
	Roles []models.Role `yaml:"roles"`
}

// LoadRoles reads the role definitions seeded at startup.
func LoadRoles(path string) ([]models.Role, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roles file %s: %w", path, err)
	}
	return ParseRoles(raw)
}

// ParseRoles decodes a roles document. Every role needs an id.
func ParseRoles(raw []byte) ([]models.Role, error) {
	var doc rolesFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse roles: %w", err)
	}
	seen := make(map[string]bool, len(doc.Roles))
	for i, role := range doc.Roles {
		if role.ID == "" {
			return nil, fmt.Errorf("role #%d has no id", i+1)
		}
		if seen[role.ID] {
			return nil, fmt.Errorf("duplicate role id %q", role.ID)
		}
		seen[role.ID] = true
		if role.Permissions == nil {
			doc.Roles[i].Permissions = []string{}
		}
	}
	return doc.Roles, nil
}
