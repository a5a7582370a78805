package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alexmglover/Deep/pkg/core"
)

// parseParams turns repeated --param key=value flags into ordered tag
// parameters.
func parseParams(raw []string) (*core.Params, error) {
	params := core.NewParams()
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", kv)
		}
		params.Set(key, value)
	}
	return params, nil
}

// readTemplate returns the inline template, or the contents of file when
// inline is empty.
func readTemplate(inline, file string) (string, error) {
	if inline != "" && file != "" {
		return "", fmt.Errorf("--template and --template-file are mutually exclusive")
	}
	if file == "" {
		if inline == "" {
			return "", fmt.Errorf("a template is required (--template or --template-file)")
		}
		return inline, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return string(data), nil
}
