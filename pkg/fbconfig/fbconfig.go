// Package fbconfig reads the Firebase project metadata shipped with the
// companion mobile application.
package fbconfig

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the minimal configuration extracted from google-services.json.
type Config struct {
	ProjectID string
}

type googleServices struct {
	ProjectInfo struct {
		ProjectID string `json:"project_id"`
	} `json:"project_info"`
}

// FromGoogleServices loads the Firebase project metadata from the
// google-services.json file at path.
func FromGoogleServices(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("google-services.json not found at %s", path)
		}
		return Config{}, fmt.Errorf("reading google-services.json: %w", err)
	}

	var parsed googleServices
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Config{}, fmt.Errorf("parsing google-services.json: %w", err)
	}
	if parsed.ProjectInfo.ProjectID == "" {
		return Config{}, fmt.Errorf("google-services.json is missing project_info.project_id")
	}

	return Config{ProjectID: parsed.ProjectInfo.ProjectID}, nil
}
