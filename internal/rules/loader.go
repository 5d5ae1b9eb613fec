package rules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// LoadRules reads custom rule files from the user and project directories.
// A project rule replaces a user rule with the same id. Missing directories
// are not an error.
func LoadRules(userDir, projectDir string) (CustomRules, error) {
	userRules, err := loadDir(userDir)
	if err != nil {
		return nil, fmt.Errorf("loading user rules from %s: %w", userDir, err)
	}
	projectRules, err := loadDir(projectDir)
	if err != nil {
		return nil, fmt.Errorf("loading project rules from %s: %w", projectDir, err)
	}
	return merge(userRules, projectRules), nil
}

func loadDir(dir string) (CustomRules, error) {
	if dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var all CustomRules
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		parsed, err := ParseRuleFile(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		all = merge(all, parsed)
	}
	return all, nil
}

// merge overlays later rules on earlier ones by id, keeping first-seen order.
func merge(base, overlay CustomRules) CustomRules {
	out := slices.Clone(base)
	for _, r := range overlay {
		if i := slices.IndexFunc(out, func(existing CustomRule) bool { return existing.ID == r.ID }); i >= 0 {
			out[i] = r
			continue
		}
		out = append(out, r)
	}
	return out
}
