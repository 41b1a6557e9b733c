package auth

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Permissions maps role -> []console section
type Permissions map[string][]string

type rolesFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// LoadPermissions loads a roles.yml file and returns a role->sections map
// used by the web console to decide which dashboards a role may open.
func LoadPermissions(path string) (Permissions, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rf rolesFile
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return nil, err
	}
	return Permissions(rf.Roles), nil
}

// Allows reports whether role may access section.
func (p Permissions) Allows(role, section string) bool {
	for _, s := range p[role] {
		if s == section {
			return true
		}
	}
	return false
}
