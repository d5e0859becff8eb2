// Package prompts serves the role personas and stage task templates that
// drive the analysis pipeline. The templates live in JSON files next to
// this package and are compiled into the binary, so a deployment never
// depends on prompt files being present on disk.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var templateFS embed.FS

var (
	loadedMu sync.RWMutex
	loaded   = make(map[string]map[string]string)
)

// Get returns the template stored under key in the named file. The name is
// bare, without a directory ("tasks.json").
func Get(filename, key string) (string, error) {
	entries, err := load(filename)
	if err != nil {
		return "", err
	}
	text, ok := entries[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return text, nil
}

// MustGet is Get for templates the pipeline cannot run without. A missing
// entry here is a packaging bug, so it panics.
func MustGet(filename, key string) string {
	text, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return text
}

// Format substitutes {{.Key}} placeholders with the matching values.
// Placeholders with no matching key are left as-is.
func Format(template string, data map[string]string) string {
	out := template
	for key, value := range data {
		out = strings.ReplaceAll(out, "{{."+key+"}}", value)
	}
	return out
}

// load parses a template file once and serves later calls from memory.
func load(filename string) (map[string]string, error) {
	loadedMu.RLock()
	entries, ok := loaded[filename]
	loadedMu.RUnlock()
	if ok {
		return entries, nil
	}

	data, err := templateFS.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read prompt file %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse prompt file %s: %w", filename, err)
	}

	loadedMu.Lock()
	loaded[filename] = entries
	loadedMu.Unlock()
	return entries, nil
}

// ClearCache drops the parsed templates. Tests use it to force a reload.
func ClearCache() {
	loadedMu.Lock()
	loaded = make(map[string]map[string]string)
	loadedMu.Unlock()
}
