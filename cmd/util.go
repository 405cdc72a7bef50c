package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"

	"github.com/finlync/taxgate/internal/config"
	"github.com/finlync/taxgate/internal/core"
)

var (
	redCross   = color.New(color.FgRed).Sprint("✗")
	greenCheck = color.New(color.FgGreen).Sprint("✓")
	yellowWarn = color.New(color.FgYellow).Sprint("!")
)

// BeQuietError signals that the failure was already presented to the user
// and the root handler should not log it again.
type BeQuietError struct{}

func (BeQuietError) Error() string {
	return "command failed"
}

func httpClientFor(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Portal.Timeout}
}

// readDocument loads a document payload from a YAML or JSON file.
func readDocument(path string) (*core.DocumentPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document file: %w", err)
	}

	var doc core.DocumentPayload
	switch filepath.Ext(path) {
	case ".json":
		err = json.Unmarshal(data, &doc)
	default:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing document file '%s': %w", path, err)
	}
	return &doc, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
