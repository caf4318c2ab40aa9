package db_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	dbpkg "github.com/yungbote/lingobridge-backend/internal/data/db"
	"github.com/yungbote/lingobridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lingobridge-backend/internal/domain"
)

func TestLoadCatalogSeedEmbedded(t *testing.T) {
	t.Setenv("CATALOG_SEED_YAML", "")
	seed, err := dbpkg.LoadCatalogSeed()
	if err != nil {
		t.Fatalf("LoadCatalogSeed: %v", err)
	}
	if len(seed.Modules) != 40 {
		t.Fatalf("expected 40 modules, got %d", len(seed.Modules))
	}
	for i, m := range seed.Modules {
		if m.Number != i+1 {
			t.Fatalf("module %d out of order: number=%d", i, m.Number)
		}
	}
	if len(seed.Achievements) == 0 || len(seed.Exams) == 0 {
		t.Fatalf("expected achievements and exams in embedded catalog")
	}
}

func TestLoadCatalogSeedOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	raw := "modules:\n  - {number: 1, title: Only, level: b2, duration_minutes: 30}\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write override: %v", err)
	}
	t.Setenv("CATALOG_SEED_YAML", path)

	seed, err := dbpkg.LoadCatalogSeed()
	if err != nil {
		t.Fatalf("LoadCatalogSeed: %v", err)
	}
	if len(seed.Modules) != 1 || seed.Modules[0].Title != "Only" {
		t.Fatalf("override not used: %+v", seed.Modules)
	}
}

func TestParseCatalogSeedRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"non-positive number": "modules:\n  - {number: 0, title: x, level: A1}\n",
		"duplicate number":    "modules:\n  - {number: 1, title: x, level: A1}\n  - {number: 1, title: y, level: A1}\n",
		"bad level":           "modules:\n  - {number: 1, title: x, level: Z9}\n",
		"unknown rule":        "achievements:\n  - {code: x, rule: moon_landing, threshold: 1}\n",
		"option out of range": "exams:\n  - title: t\n    questions:\n      - {prompt: p, options: [a, b], correct_option: 2}\n",
		"malformed yaml":      "modules: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := dbpkg.ParseCatalogSeed([]byte(raw)); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestSeedCatalogIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)

	raw := strings.Join([]string{
		"modules:",
		"  - {number: 1, title: One, level: A1, duration_minutes: 45}",
		"  - {number: 2, title: Two, level: A1, duration_minutes: 45}",
		"achievements:",
		"  - {code: first_module, title: First, rule: module_completed, threshold: 1, points: 10}",
		"exams:",
		"  - title: Check",
		"    module_number: 2",
		"    level: A1",
		"    passing_score: 60",
		"    questions:",
		"      - {prompt: p, options: [a, b], correct_option: 1, points: 1}",
		"",
	}, "\n")
	seed, err := dbpkg.ParseCatalogSeed([]byte(raw))
	if err != nil {
		t.Fatalf("ParseCatalogSeed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := dbpkg.SeedCatalog(ctx, db, log, seed); err != nil {
			t.Fatalf("SeedCatalog run %d: %v", i+1, err)
		}
	}

	var modules, rules, exams, questions int64
	db.Model(&types.Module{}).Count(&modules)
	db.Model(&types.Achievement{}).Count(&rules)
	db.Model(&types.Exam{}).Count(&exams)
	db.Model(&types.ExamQuestion{}).Count(&questions)
	if modules != 2 || rules != 1 || exams != 1 || questions != 1 {
		t.Fatalf("unexpected counts: modules=%d rules=%d exams=%d questions=%d", modules, rules, exams, questions)
	}

	var ex types.Exam
	if err := db.First(&ex).Error; err != nil {
		t.Fatalf("load exam: %v", err)
	}
	if ex.ModuleID == nil {
		t.Fatalf("exam not linked to module 2")
	}
}
