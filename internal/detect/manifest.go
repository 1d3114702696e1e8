package detect

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ManifestName is the dependency manifest read in every candidate directory.
const ManifestName = "package.json"

type manifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// readDependencies parses the manifest at dir and merges production and
// development dependencies into one name set. A missing or malformed
// manifest yields nil: detection then proceeds without dependency data.
func readDependencies(dir string) map[string]string {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}

	deps := make(map[string]string, len(m.Dependencies)+len(m.DevDependencies))
	for name, version := range m.Dependencies {
		deps[name] = version
	}
	for name, version := range m.DevDependencies {
		deps[name] = version
	}
	return deps
}
