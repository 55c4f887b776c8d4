package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/On-Jun9/NamePipe/internal/filelock"
	"github.com/On-Jun9/NamePipe/pkg/types"
)

// PresetManager stores named rule presets, one JSON file each.
type PresetManager struct {
	presetsDir string
}

// NewPresetManager keeps presets under dataDir/presets. An empty dataDir
// means DefaultDataDir().
func NewPresetManager(dataDir string) (*PresetManager, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	presetsDir := filepath.Join(dataDir, "presets")
	if err := os.MkdirAll(presetsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create presets directory: %w", err)
	}

	return &PresetManager{presetsDir: presetsDir}, nil
}

// validatePresetName keeps preset names inside the presets directory.
func validatePresetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "preset name cannot be empty"}
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("invalid preset name %q", name)}
	}
	if len(name) > 128 {
		return &ValidationError{Field: "name", Message: "preset name too long (max 128 characters)"}
	}
	return nil
}

// PresetFromConfig captures the rule-related part of cfg.
func PresetFromConfig(cfg *Config, name, description string) *types.RulePreset {
	return &types.RulePreset{
		Name:             name,
		Description:      description,
		Rules:            cfg.Rules,
		ConflictStrategy: cfg.ConflictStrategy,
		Sort:             cfg.Sort,
		CreatedAt:        time.Now(),
	}
}

// ApplyPreset overwrites the rule-related fields of cfg with preset.
func ApplyPreset(cfg *Config, preset *types.RulePreset) {
	cfg.Rules = preset.Rules
	if preset.ConflictStrategy != "" {
		cfg.ConflictStrategy = preset.ConflictStrategy
	}
	cfg.Sort = preset.Sort
}

func (pm *PresetManager) path(name string) string {
	return filepath.Join(pm.presetsDir, name+".json")
}

// SavePreset writes preset, replacing any preset with the same name.
func (pm *PresetManager) SavePreset(ctx context.Context, preset *types.RulePreset) error {
	if err := validatePresetName(preset.Name); err != nil {
		return err
	}

	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	if err := filelock.Write(ctx, pm.path(preset.Name), data); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}
	return nil
}

func (pm *PresetManager) LoadPreset(name string) (*types.RulePreset, error) {
	if err := validatePresetName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(pm.path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var preset types.RulePreset
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preset: %w", err)
	}
	return &preset, nil
}

func (pm *PresetManager) DeletePreset(name string) error {
	if err := validatePresetName(name); err != nil {
		return err
	}
	if err := os.Remove(pm.path(name)); err != nil {
		return fmt.Errorf("failed to delete preset file: %w", err)
	}
	os.Remove(pm.path(name) + ".lock")
	return nil
}

// ListPresets returns every readable preset sorted by name. Unreadable
// files are skipped.
func (pm *PresetManager) ListPresets() ([]types.RulePreset, error) {
	entries, err := os.ReadDir(pm.presetsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets directory: %w", err)
	}

	presets := []types.RulePreset{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		preset, err := pm.LoadPreset(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		presets = append(presets, *preset)
	}

	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets, nil
}
