// Package prompts holds the language model prompt templates. Each embedded
// JSON file maps a prompt key to a template with {{.Name}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// catalog parses every embedded file once, keyed by file name.
var catalog = sync.OnceValues(func() (map[string]map[string]string, error) {
	names, err := fs.Glob(promptFiles, "*.json")
	if err != nil {
		return nil, err
	}

	all := make(map[string]map[string]string, len(names))
	for _, name := range names {
		data, err := promptFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
		}
		var templates map[string]string
		if err := json.Unmarshal(data, &templates); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
		}
		all[name] = templates
	}
	return all, nil
})

// Get returns the template stored under key in file, e.g. ("forms.json", "resolve-form").
func Get(file, key string) (string, error) {
	all, err := catalog()
	if err != nil {
		return "", err
	}

	templates, ok := all[file]
	if !ok {
		return "", fmt.Errorf("failed to read prompt file %s: not embedded", file)
	}
	template, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, file)
	}
	return template, nil
}

// Format replaces placeholders of the form {{.Key}} with values from data.
// Replacement is a single pass, so substituted values are never re-expanded.
func Format(template string, data map[string]string) string {
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
