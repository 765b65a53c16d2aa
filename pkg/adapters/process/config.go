package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Command is an allow-listed external command exposed as an action function.
type Command struct {
	Name        string            `yaml:"name" json:"name" validate:"required"`
	Command     string            `yaml:"command" json:"command" validate:"required"`
	Args        []string          `yaml:"args" json:"args"`
	Env         map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// File is the layout of a commands file.
type File struct {
	Commands []Command `yaml:"commands" json:"commands" validate:"dive"`
}

// LoadCommands reads a YAML or JSON commands file keyed by command name.
func LoadCommands(path string) (map[string]Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read commands file: %w", err)
	}

	var file File
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("invalid commands file %s: %w", path, err)
	}

	commands := make(map[string]Command, len(file.Commands))
	for _, cmd := range file.Commands {
		if _, exists := commands[cmd.Name]; exists {
			return nil, fmt.Errorf("invalid commands file %s: duplicate command '%s'", path, cmd.Name)
		}
		commands[cmd.Name] = cmd
	}
	return commands, nil
}
