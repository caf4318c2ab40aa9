package db

import (
	"context"
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/domain/achievement"
	"github.com/yungbote/lingobridge-backend/internal/domain/catalog"
	"github.com/yungbote/lingobridge-backend/internal/domain/exam"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

// CATALOG_SEED_YAML points at a file that replaces the embedded catalog.
const catalogSeedEnv = "CATALOG_SEED_YAML"

//go:embed catalog.yaml
var catalogFS embed.FS

type CatalogSeed struct {
	Modules      []ModuleSeed      `yaml:"modules"`
	Achievements []AchievementSeed `yaml:"achievements"`
	Exams        []ExamSeed        `yaml:"exams"`
}

type ModuleSeed struct {
	Number          int    `yaml:"number"`
	Title           string `yaml:"title"`
	Description     string `yaml:"description"`
	Level           string `yaml:"level"`
	DurationMinutes int    `yaml:"duration_minutes"`
}

type AchievementSeed struct {
	Code        string `yaml:"code"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Rule        string `yaml:"rule"`
	Threshold   int    `yaml:"threshold"`
	Points      int    `yaml:"points"`
}

type ExamSeed struct {
	Title            string         `yaml:"title"`
	Description      string         `yaml:"description"`
	ModuleNumber     int            `yaml:"module_number"`
	Level            string         `yaml:"level"`
	PassingScore     int            `yaml:"passing_score"`
	TimeLimitMinutes int            `yaml:"time_limit_minutes"`
	Questions        []QuestionSeed `yaml:"questions"`
}

type QuestionSeed struct {
	Prompt        string   `yaml:"prompt"`
	Options       []string `yaml:"options"`
	CorrectOption int      `yaml:"correct_option"`
	Points        int      `yaml:"points"`
}

// LoadCatalogSeed reads the override file if configured, else the embedded catalog.
func LoadCatalogSeed() (*CatalogSeed, error) {
	var raw []byte
	if path := strings.TrimSpace(os.Getenv(catalogSeedEnv)); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		raw = b
	} else {
		b, err := catalogFS.ReadFile("catalog.yaml")
		if err != nil {
			return nil, fmt.Errorf("read embedded catalog: %w", err)
		}
		raw = b
	}
	return ParseCatalogSeed(raw)
}

func ParseCatalogSeed(raw []byte) (*CatalogSeed, error) {
	var seed CatalogSeed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	seen := map[int]bool{}
	for _, m := range seed.Modules {
		if m.Number <= 0 {
			return nil, fmt.Errorf("module %q: number must be positive", m.Title)
		}
		if seen[m.Number] {
			return nil, fmt.Errorf("duplicate module number %d", m.Number)
		}
		seen[m.Number] = true
		if _, ok := catalog.ParseLevel(m.Level); !ok {
			return nil, fmt.Errorf("module %d: invalid level %q", m.Number, m.Level)
		}
	}
	for _, a := range seed.Achievements {
		if !achievement.KnownRule(achievement.RuleKind(a.Rule)) {
			return nil, fmt.Errorf("achievement %q: unknown rule %q", a.Code, a.Rule)
		}
	}
	for _, e := range seed.Exams {
		for i, q := range e.Questions {
			if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
				return nil, fmt.Errorf("exam %q question %d: correct_option out of range", e.Title, i)
			}
		}
	}
	return &seed, nil
}

// SeedCatalog inserts whatever part of the catalog is missing.
func SeedCatalog(ctx context.Context, db *gorm.DB, log *logger.Logger, seed *CatalogSeed) error {
	if seed == nil {
		return nil
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		modules := make([]*types.Module, 0, len(seed.Modules))
		for _, m := range seed.Modules {
			lvl, _ := catalog.ParseLevel(m.Level)
			modules = append(modules, &types.Module{
				Number:          m.Number,
				Title:           m.Title,
				Description:     m.Description,
				Level:           lvl,
				DurationMinutes: m.DurationMinutes,
				Published:       true,
			})
		}
		if len(modules) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:     []clause.Column{{Name: "number"}},
				TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "deleted_at IS NULL"}}},
				DoNothing:   true,
			}).Create(&modules).Error; err != nil {
				return fmt.Errorf("seed modules: %w", err)
			}
		}

		rules := make([]*types.Achievement, 0, len(seed.Achievements))
		for _, a := range seed.Achievements {
			rules = append(rules, &types.Achievement{
				Code:        a.Code,
				Title:       a.Title,
				Description: a.Description,
				Icon:        a.Icon,
				Rule:        achievement.RuleKind(a.Rule),
				Threshold:   a.Threshold,
				Points:      a.Points,
			})
		}
		if len(rules) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoNothing: true,
			}).Create(&rules).Error; err != nil {
				return fmt.Errorf("seed achievements: %w", err)
			}
		}

		for _, e := range seed.Exams {
			var count int64
			if err := tx.Model(&types.Exam{}).Where("title = ?", e.Title).Count(&count).Error; err != nil {
				return fmt.Errorf("lookup exam %q: %w", e.Title, err)
			}
			if count > 0 {
				continue
			}
			ex := &types.Exam{
				Title:            e.Title,
				Description:      e.Description,
				Level:            catalog.Level(strings.ToUpper(e.Level)),
				PassingScore:     e.PassingScore,
				TimeLimitMinutes: e.TimeLimitMinutes,
				Published:        true,
			}
			if e.ModuleNumber > 0 {
				var mod types.Module
				if err := tx.Where("number = ?", e.ModuleNumber).First(&mod).Error; err == nil {
					ex.ModuleID = &mod.ID
				}
			}
			for i, q := range e.Questions {
				ex.Questions = append(ex.Questions, &types.ExamQuestion{
					Position:      i + 1,
					Prompt:        q.Prompt,
					Options:       exam.OptionsJSON(q.Options),
					CorrectOption: q.CorrectOption,
					Points:        q.Points,
				})
			}
			if err := tx.Create(ex).Error; err != nil {
				return fmt.Errorf("seed exam %q: %w", e.Title, err)
			}
		}

		if log != nil {
			log.Info("Catalog seeded", "modules", len(modules), "achievements", len(rules), "exams", len(seed.Exams))
		}
		return nil
	})
}
