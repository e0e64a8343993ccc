package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"plp-monitor/internal/model"
)

// TargetsFile is the layout of a targets YAML file.
//
//	targets:
//	  - url: https://www.example.com/eu/mens/
//	  - url: https://www.example.com/eu/womens/
//	    label: women
type TargetsFile struct {
	Targets []model.Target `yaml:"targets"`
}

// LoadTargets reads target definitions from the specified YAML file.
// Labels left empty are derived from the URL path.
func LoadTargets(targetsPath string) ([]model.Target, error) {
	if targetsPath == "" {
		return nil, fmt.Errorf("targets file path is required")
	}

	if _, err := os.Stat(targetsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("targets file not found: %s", targetsPath)
	}

	data, err := os.ReadFile(targetsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file: %w", err)
	}

	var file TargetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse targets file: %w", err)
	}

	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in file: %s", targetsPath)
	}

	seen := make(map[string]bool, len(file.Targets))
	for i := range file.Targets {
		t := &file.Targets[i]
		if err := checkTargetURL(t.URL); err != nil {
			return nil, fmt.Errorf("target at index %d: %w", i, err)
		}
		if seen[t.URL] {
			return nil, fmt.Errorf("duplicate target url: %s", t.URL)
		}
		seen[t.URL] = true
		if t.Label == "" {
			t.Label = model.LabelFromURL(t.URL)
		}
	}

	return file.Targets, nil
}

// ResolveTargets returns the targets to monitor: the targets file when one
// is configured, otherwise the URL list from the monitor section.
// Duplicate URLs are dropped so each URL maps to at most one alert record.
func ResolveTargets(cfg *MonitorConfig) ([]model.Target, error) {
	if cfg.TargetsFile != "" {
		return LoadTargets(cfg.TargetsFile)
	}

	targets := make([]model.Target, 0, len(cfg.Targets))
	seen := make(map[string]bool, len(cfg.Targets))
	for _, u := range cfg.Targets {
		if seen[u] {
			continue
		}
		seen[u] = true
		targets = append(targets, model.NewTarget(u))
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets configured")
	}
	return targets, nil
}

// checkTargetURL requires an absolute http(s) URL.
func checkTargetURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url must be absolute http(s): %q", raw)
	}
	return nil
}
