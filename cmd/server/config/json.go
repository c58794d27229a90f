package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// configFilePath scans args for the -c/-config flag without consuming the
// rest of the command line, so the JSON overlay can be applied before the
// full flag pass runs.
func configFilePath(args []string) string {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-c", "-config", "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		default:
			for _, prefix := range []string{"-c=", "-config=", "--config="} {
				if len(args[i]) > len(prefix) && args[i][:len(prefix)] == prefix {
					return args[i][len(prefix):]
				}
			}
		}
	}
	return ""
}

// parseJSON overlays values from the JSON file named by -c/-config, if any.
// Absent keys keep their current (default) values.
func parseJSON(cfg *Config) error {
	path := configFilePath(os.Args[1:])
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := json.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	return nil
}
