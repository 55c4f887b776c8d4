package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/On-Jun9/NamePipe/pkg/types"
)

// TestPresetFromConfigAndApply는 Config <-> Preset 변환을 검증합니다.
func TestPresetFromConfigAndApply(t *testing.T) {
	// 규칙/충돌 전략/정렬 필드가 보존되고 source 등 나머지는 덮어쓰지 않아야 한다.
	cfg := DefaultConfig()
	cfg.Source = "/src"
	cfg.ConflictStrategy = types.ConflictStrategySkip
	cfg.Sort = types.SortSpec{By: types.SortByDate, Order: types.SortDesc}
	cfg.Rules = types.RuleSpec{Prefix: "p_", Case: types.CaseUpper}

	preset := PresetFromConfig(cfg, "my-preset", "desc")
	if preset.Name != "my-preset" || preset.Description != "desc" || preset.CreatedAt.IsZero() {
		t.Fatalf("unexpected preset header: %+v", preset)
	}

	target := DefaultConfig()
	target.Source = "/other"
	ApplyPreset(target, preset)

	if target.Source != "/other" {
		t.Fatalf("source should not change: %s", target.Source)
	}
	if target.Rules.Prefix != "p_" || target.Rules.Case != types.CaseUpper {
		t.Fatalf("rules not applied: %+v", target.Rules)
	}
	if target.ConflictStrategy != types.ConflictStrategySkip || target.Sort.By != types.SortByDate {
		t.Fatalf("strategy/sort not applied: %+v", target)
	}
}

// TestPresetManager_SaveLoadListDelete는 기본 저장 흐름을 검증합니다.
func TestPresetManager_SaveLoadListDelete(t *testing.T) {
	// 저장/로드/목록/삭제 기본 플로우가 정상 동작해야 한다.
	dir := t.TempDir()
	pm := &PresetManager{presetsDir: dir}
	ctx := context.Background()

	preset := &types.RulePreset{
		Name:  "photos",
		Rules: types.RuleSpec{Sequence: &types.SequenceRule{Start: 1, Padding: 3}},
	}
	if err := pm.SavePreset(ctx, preset); err != nil {
		t.Fatalf("save preset failed: %v", err)
	}
	if err := pm.SavePreset(ctx, &types.RulePreset{Name: "archive"}); err != nil {
		t.Fatalf("save preset failed: %v", err)
	}

	loaded, err := pm.LoadPreset("photos")
	if err != nil {
		t.Fatalf("load preset failed: %v", err)
	}
	if loaded.Rules.Sequence == nil || loaded.Rules.Sequence.Padding != 3 {
		t.Fatalf("unexpected loaded preset: %+v", loaded)
	}

	presets, err := pm.ListPresets()
	if err != nil {
		t.Fatalf("list presets failed: %v", err)
	}
	if len(presets) != 2 || presets[0].Name != "archive" || presets[1].Name != "photos" {
		t.Fatalf("expected presets sorted by name, got %+v", presets)
	}

	if err := pm.DeletePreset("photos"); err != nil {
		t.Fatalf("delete preset failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "photos.json")); !os.IsNotExist(err) {
		t.Fatalf("expected preset file to be deleted, stat error=%v", err)
	}
}

// TestPresetManager_RejectsInvalidNames는 경로 탈출 이름 거부를 검증합니다.
func TestPresetManager_RejectsInvalidNames(t *testing.T) {
	// 빈 이름과 경로 구분자가 포함된 이름은 ValidationError로 거부되어야 한다.
	pm := &PresetManager{presetsDir: t.TempDir()}

	for _, name := range []string{"", "  ", "../escape", `a\b`, ".."} {
		err := pm.SavePreset(context.Background(), &types.RulePreset{Name: name})
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError for %q, got %v", name, err)
		}
	}

	if _, err := pm.LoadPreset("../x"); err == nil {
		t.Fatal("expected error loading invalid name")
	}
}

// TestPresetManager_ListPresets_SkipsInvalidJSON는 손상된 파일 무시를 검증합니다.
func TestPresetManager_ListPresets_SkipsInvalidJSON(t *testing.T) {
	// 깨진 JSON 파일은 목록에서 건너뛰고 정상 preset만 반환해야 한다.
	dir := t.TempDir()
	pm := &PresetManager{presetsDir: dir}

	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644); err != nil {
		t.Fatalf("failed to write broken preset: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "note.txt"), []byte("ignore"), 0644); err != nil {
		t.Fatalf("failed to write txt file: %v", err)
	}
	if err := pm.SavePreset(context.Background(), &types.RulePreset{Name: "ok"}); err != nil {
		t.Fatalf("save good preset failed: %v", err)
	}

	presets, err := pm.ListPresets()
	if err != nil {
		t.Fatalf("list presets failed: %v", err)
	}
	if len(presets) != 1 || presets[0].Name != "ok" {
		t.Fatalf("unexpected presets result: %+v", presets)
	}
}

// TestNewPresetManager_CreatesDefaultDirectory는 기본 디렉터리 생성을 검증합니다.
func TestNewPresetManager_CreatesDefaultDirectory(t *testing.T) {
	// 빈 dataDir이면 HOME 기준 ~/.namepipe/presets 디렉터리를 생성해야 한다.
	home := t.TempDir()
	t.Setenv("HOME", home)

	pm, err := NewPresetManager("")
	if err != nil {
		t.Fatalf("new preset manager failed: %v", err)
	}
	if pm == nil {
		t.Fatal("expected non-nil preset manager")
	}
	if _, err := os.Stat(filepath.Join(home, ".namepipe", "presets")); err != nil {
		t.Fatalf("expected presets dir to exist: %v", err)
	}
}

// TestNewPresetManager_ReturnsErrorWhenDataDirIsFile는 디렉터리 생성 실패를 검증합니다.
func TestNewPresetManager_ReturnsErrorWhenDataDirIsFile(t *testing.T) {
	// dataDir이 파일이면 presets 디렉터리 생성에 실패해야 한다.
	blocker := filepath.Join(t.TempDir(), "data-file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create blocker file: %v", err)
	}

	if _, err := NewPresetManager(blocker); err == nil {
		t.Fatal("expected NewPresetManager error")
	}
}

// TestPresetManager_SavePreset_ReturnsWriteError는 쓰기 실패를 검증합니다.
func TestPresetManager_SavePreset_ReturnsWriteError(t *testing.T) {
	// presetsDir가 파일이면 preset 저장 시 write 에러가 발생해야 한다.
	blocker := filepath.Join(t.TempDir(), "not-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create blocker file: %v", err)
	}

	pm := &PresetManager{presetsDir: blocker}
	if err := pm.SavePreset(context.Background(), &types.RulePreset{Name: "demo"}); err == nil {
		t.Fatal("expected save preset write error")
	}
}

// TestPresetManager_DeletePreset_ReturnsErrorWhenMissing는 없는 preset 삭제를 검증합니다.
func TestPresetManager_DeletePreset_ReturnsErrorWhenMissing(t *testing.T) {
	// 없는 preset 삭제는 remove 에러를 반환해야 한다.
	pm := &PresetManager{presetsDir: t.TempDir()}
	if err := pm.DeletePreset("missing"); err == nil {
		t.Fatal("expected delete preset error")
	}
}

// TestPresetManager_ListPresets_ReturnsReadDirError는 목록 실패를 검증합니다.
func TestPresetManager_ListPresets_ReturnsReadDirError(t *testing.T) {
	// presetsDir가 없으면 ReadDir 에러를 반환해야 한다.
	pm := &PresetManager{presetsDir: filepath.Join(t.TempDir(), "not-exists")}
	if _, err := pm.ListPresets(); err == nil {
		t.Fatal("expected list presets read dir error")
	}
}
