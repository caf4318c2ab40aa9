package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/domain/catalog"
	"github.com/yungbote/lingobridge-backend/internal/platform/apierr"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

type CreateModuleInput struct {
	Number          int    `json:"number" binding:"required,min=1"`
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Level           string `json:"level" binding:"required,cefr"`
	DurationMinutes int    `json:"duration_minutes" binding:"min=0"`
	Published       *bool  `json:"published"`
}

type UpdateModuleInput struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Level           *string `json:"level" binding:"omitempty,cefr"`
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,min=0"`
	Published       *bool   `json:"published"`
}

type CatalogService interface {
	ListModules(ctx context.Context, level string, includeUnpublished bool) ([]*types.Module, error)
	GetModule(ctx context.Context, moduleID uuid.UUID, includeUnpublished bool) (*types.Module, error)
	CreateModule(ctx context.Context, in CreateModuleInput) (*types.Module, error)
	UpdateModule(ctx context.Context, moduleID uuid.UUID, in UpdateModuleInput) (*types.Module, error)
	DeleteModule(ctx context.Context, moduleID uuid.UUID) error
}

type catalogService struct {
	db         *gorm.DB
	log        *logger.Logger
	moduleRepo repos.ModuleRepo
}

func NewCatalogService(db *gorm.DB, log *logger.Logger, moduleRepo repos.ModuleRepo) CatalogService {
	return &catalogService{
		db:         db,
		log:        log.With("service", "CatalogService"),
		moduleRepo: moduleRepo,
	}
}

func (s *catalogService) ListModules(ctx context.Context, level string, includeUnpublished bool) ([]*types.Module, error) {
	f := repos.ModuleFilter{PublishedOnly: !includeUnpublished}
	if strings.TrimSpace(level) != "" {
		l, ok := catalog.ParseLevel(level)
		if !ok {
			return nil, apierr.BadRequest("invalid_level", fmt.Sprintf("unknown level %q", level))
		}
		f.Level = string(l)
	}
	rows, err := s.moduleRepo.List(ctx, nil, f)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return rows, nil
}

func (s *catalogService) GetModule(ctx context.Context, moduleID uuid.UUID, includeUnpublished bool) (*types.Module, error) {
	rows, err := s.moduleRepo.GetByIDs(ctx, nil, []uuid.UUID{moduleID})
	if err != nil {
		return nil, fmt.Errorf("load module: %w", err)
	}
	if len(rows) == 0 || (!rows[0].Published && !includeUnpublished) {
		return nil, apierr.NotFound("module")
	}
	return rows[0], nil
}

func (s *catalogService) CreateModule(ctx context.Context, in CreateModuleInput) (*types.Module, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.BadRequest("invalid_title", "title is required")
	}
	if in.Number <= 0 {
		return nil, apierr.BadRequest("invalid_number", "number must be positive")
	}
	level, ok := catalog.ParseLevel(in.Level)
	if !ok {
		return nil, apierr.BadRequest("invalid_level", fmt.Sprintf("unknown level %q", in.Level))
	}
	if in.DurationMinutes < 0 {
		return nil, apierr.BadRequest("invalid_duration", "duration_minutes must not be negative")
	}

	m := &types.Module{
		ID:              uuid.New(),
		Number:          in.Number,
		Title:           title,
		Description:     strings.TrimSpace(in.Description),
		Level:           level,
		DurationMinutes: in.DurationMinutes,
		Published:       in.Published == nil || *in.Published,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.moduleRepo.GetByNumbers(ctx, tx, []int{in.Number})
		if err != nil {
			return fmt.Errorf("check module number: %w", err)
		}
		if len(existing) > 0 {
			return apierr.Conflict("module_number_taken", fmt.Sprintf("module %d already exists", in.Number))
		}
		if _, err := s.moduleRepo.Create(ctx, tx, []*types.Module{m}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierr.Conflict("module_number_taken", fmt.Sprintf("module %d already exists", in.Number))
			}
			return fmt.Errorf("create module: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Module created", "module_id", m.ID, "number", m.Number)
	return m, nil
}

func (s *catalogService) UpdateModule(ctx context.Context, moduleID uuid.UUID, in UpdateModuleInput) (*types.Module, error) {
	var out *types.Module
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.moduleRepo.GetByIDs(ctx, tx, []uuid.UUID{moduleID})
		if err != nil {
			return fmt.Errorf("load module: %w", err)
		}
		if len(rows) == 0 {
			return apierr.NotFound("module")
		}
		m := rows[0]

		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title == "" {
				return apierr.BadRequest("invalid_title", "title must not be empty")
			}
			m.Title = title
		}
		if in.Description != nil {
			m.Description = strings.TrimSpace(*in.Description)
		}
		if in.Level != nil {
			l, ok := catalog.ParseLevel(*in.Level)
			if !ok {
				return apierr.BadRequest("invalid_level", fmt.Sprintf("unknown level %q", *in.Level))
			}
			m.Level = l
		}
		if in.DurationMinutes != nil {
			if *in.DurationMinutes < 0 {
				return apierr.BadRequest("invalid_duration", "duration_minutes must not be negative")
			}
			m.DurationMinutes = *in.DurationMinutes
		}
		if in.Published != nil {
			m.Published = *in.Published
		}

		if err := s.moduleRepo.Save(ctx, tx, m); err != nil {
			return fmt.Errorf("save module: %w", err)
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *catalogService) DeleteModule(ctx context.Context, moduleID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.moduleRepo.GetByIDs(ctx, tx, []uuid.UUID{moduleID})
		if err != nil {
			return fmt.Errorf("load module: %w", err)
		}
		if len(rows) == 0 {
			return apierr.NotFound("module")
		}
		if err := s.moduleRepo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{moduleID}); err != nil {
			return fmt.Errorf("delete module: %w", err)
		}
		s.log.Info("Module deleted", "module_id", moduleID)
		return nil
	})
}
