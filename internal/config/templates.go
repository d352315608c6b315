package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "server":
		return serverTemplate, nil
	case "layout":
		return layoutTemplate, nil
	default:
		return "", fmt.Errorf("unknown template kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("file already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const serverTemplate = `name = "packd"
addr = ":9200"
cors_origins = ["http://localhost:3000"]
layouts = ["layouts/telemetry.toml"]
`

const layoutTemplate = `name = "telemetry"

[[field]]
name = "version"
kind = "uint"
width = 3

[[field]]
name = "active"
kind = "bool"

[[field]]
name = "delta"
kind = "int"
width = 12

[[field]]
name = "readings"
kind = "uint"
width = 4
length = 3
`
