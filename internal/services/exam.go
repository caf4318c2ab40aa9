package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/domain/catalog"
	"github.com/yungbote/lingobridge-backend/internal/domain/exam"
	"github.com/yungbote/lingobridge-backend/internal/platform/apierr"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

// SubmitAttemptInput carries either answers, graded here, or a score already
// computed by the client on a 0..100 scale. Answers win when both are set.
type SubmitAttemptInput struct {
	Answers map[uuid.UUID]int `json:"answers"`
	Score   *float64          `json:"score" binding:"omitempty,min=0,max=100"`
}

type AttemptResult struct {
	Attempt *types.ExamAttempt `json:"attempt"`
	// Certificate is set for every passing attempt. Under the per_exam policy
	// it may be one issued earlier.
	Certificate       *types.Certificate          `json:"certificate,omitempty"`
	CertificateIssued bool                        `json:"certificate_issued"`
	Unlocked          []*types.StudentAchievement `json:"unlocked_achievements"`
}

type CreateQuestionInput struct {
	Prompt        string   `json:"prompt" binding:"required"`
	Options       []string `json:"options" binding:"required,min=2"`
	CorrectOption int      `json:"correct_option" binding:"min=0"`
	Points        int      `json:"points" binding:"min=0"`
}

type CreateExamInput struct {
	Title            string                `json:"title" binding:"required"`
	Description      string                `json:"description"`
	ModuleID         *uuid.UUID            `json:"module_id"`
	Level            string                `json:"level" binding:"required,cefr"`
	PassingScore     int                   `json:"passing_score" binding:"min=0,max=100"`
	TimeLimitMinutes int                   `json:"time_limit_minutes" binding:"min=0"`
	Published        *bool                 `json:"published"`
	Questions        []CreateQuestionInput `json:"questions" binding:"required,min=1,dive"`
}

type ExamService interface {
	SubmitAttempt(ctx context.Context, studentID, examID uuid.UUID, in SubmitAttemptInput) (*AttemptResult, error)
	ListExams(ctx context.Context, includeUnpublished bool) ([]*types.Exam, error)
	GetExam(ctx context.Context, examID uuid.UUID, includeUnpublished bool) (*types.Exam, error)
	ListAttempts(ctx context.Context, studentID, examID uuid.UUID) ([]*types.ExamAttempt, error)
	CreateExam(ctx context.Context, in CreateExamInput) (*types.Exam, error)
	DeleteExam(ctx context.Context, examID uuid.UUID) error
}

type examService struct {
	db              *gorm.DB
	log             *logger.Logger
	examRepo        repos.ExamRepo
	attemptRepo     repos.ExamAttemptRepo
	certificateRepo repos.CertificateRepo
	studentRepo     repos.StudentRepo
	moduleRepo      repos.ModuleRepo
	achievements    AchievementService
	notify          StudentNotifier
	policy          types.CertificatePolicy
	now             func() time.Time
}

func NewExamService(
	db *gorm.DB,
	log *logger.Logger,
	examRepo repos.ExamRepo,
	attemptRepo repos.ExamAttemptRepo,
	certificateRepo repos.CertificateRepo,
	studentRepo repos.StudentRepo,
	moduleRepo repos.ModuleRepo,
	achievements AchievementService,
	notify StudentNotifier,
	policy types.CertificatePolicy,
) ExamService {
	if policy == "" {
		policy = types.CertificatePerAttempt
	}
	if notify == nil {
		notify = NewStudentNotifier(nil)
	}
	return &examService{
		db:              db,
		log:             log.With("service", "ExamService"),
		examRepo:        examRepo,
		attemptRepo:     attemptRepo,
		certificateRepo: certificateRepo,
		studentRepo:     studentRepo,
		moduleRepo:      moduleRepo,
		achievements:    achievements,
		notify:          notify,
		policy:          policy,
		now:             time.Now,
	}
}

func (s *examService) SubmitAttempt(ctx context.Context, studentID, examID uuid.UUID, in SubmitAttemptInput) (*AttemptResult, error) {
	if studentID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	if in.Answers == nil && in.Score == nil {
		return nil, apierr.BadRequest("answers_required", "either answers or score is required")
	}
	if in.Answers == nil && (*in.Score < 0 || *in.Score > 100) {
		return nil, apierr.BadRequest("invalid_score", "score must be between 0 and 100")
	}

	result := &AttemptResult{}
	var ex *types.Exam
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exams, err := s.examRepo.GetByIDs(ctx, tx, []uuid.UUID{examID}, true)
		if err != nil {
			return fmt.Errorf("load exam: %w", err)
		}
		if len(exams) == 0 || !exams[0].Published {
			return apierr.NotFound("exam")
		}
		ex = exams[0]

		students, err := s.studentRepo.GetByIDs(ctx, tx, []uuid.UUID{studentID})
		if err != nil {
			return fmt.Errorf("load student: %w", err)
		}
		if len(students) == 0 {
			return apierr.NotFound("student")
		}

		attempt := &types.ExamAttempt{
			ID:        uuid.New(),
			StudentID: studentID,
			ExamID:    examID,
		}
		if in.Answers != nil {
			if err := validateAnswers(ex.Questions, in.Answers); err != nil {
				return err
			}
			earned, total := exam.Grade(ex.Questions, in.Answers)
			attempt.Score = earned
			attempt.MaxScore = total
			attempt.Percentage = exam.Percentage(earned, total)
			raw, err := encodeAnswers(in.Answers)
			if err != nil {
				return err
			}
			attempt.Answers = raw
		} else {
			pct := math.Round(*in.Score*100) / 100
			attempt.Score = int(math.Round(pct))
			attempt.MaxScore = 100
			attempt.Percentage = pct
		}
		attempt.Passed = attempt.Percentage >= float64(ex.PassingScore)

		n, err := s.attemptRepo.NextAttemptNumber(ctx, tx, studentID, examID)
		if err != nil {
			return fmt.Errorf("number attempt: %w", err)
		}
		attempt.AttemptNumber = n
		attempt.SubmittedAt = s.now().UTC()
		if _, err := s.attemptRepo.Create(ctx, tx, []*types.ExamAttempt{attempt}); err != nil {
			return fmt.Errorf("create attempt: %w", err)
		}
		result.Attempt = attempt

		if !attempt.Passed {
			return nil
		}
		return s.issueCertificate(ctx, tx, attempt, result)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Exam attempt recorded",
		"student_id", studentID,
		"exam_id", examID,
		"attempt", result.Attempt.AttemptNumber,
		"passed", result.Attempt.Passed,
	)
	s.notify.ExamSubmitted(ctx, studentID, result.Attempt)
	if result.CertificateIssued {
		s.notify.CertificateIssued(ctx, studentID, result.Certificate)
	}
	if result.Attempt.Passed && s.achievements != nil {
		unlocked, err := s.achievements.Evaluate(ctx, studentID, ex.ModuleID)
		if err != nil {
			s.log.Warn("Achievement evaluation failed", "student_id", studentID, "error", err)
		}
		result.Unlocked = unlocked
	}
	if result.Unlocked == nil {
		result.Unlocked = []*types.StudentAchievement{}
	}
	return result, nil
}

func (s *examService) issueCertificate(ctx context.Context, tx *gorm.DB, attempt *types.ExamAttempt, result *AttemptResult) error {
	if s.policy == types.CertificatePerExam {
		existing, err := s.certificateRepo.FirstForStudentExam(ctx, tx, attempt.StudentID, attempt.ExamID)
		if err != nil {
			return fmt.Errorf("lookup certificate: %w", err)
		}
		if existing != nil {
			result.Certificate = existing
			return nil
		}
	}
	cert := &types.Certificate{
		ID:         uuid.New(),
		StudentID:  attempt.StudentID,
		ExamID:     attempt.ExamID,
		AttemptID:  attempt.ID,
		Code:       exam.NewCertificateCode(),
		Percentage: attempt.Percentage,
		IssuedAt:   attempt.SubmittedAt,
	}
	if _, err := s.certificateRepo.Create(ctx, tx, []*types.Certificate{cert}); err != nil {
		return fmt.Errorf("create certificate: %w", err)
	}
	result.Certificate = cert
	result.CertificateIssued = true
	return nil
}

func validateAnswers(questions []*types.ExamQuestion, answers map[uuid.UUID]int) error {
	byID := make(map[uuid.UUID]*types.ExamQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	for qid, chosen := range answers {
		q, ok := byID[qid]
		if !ok {
			return apierr.BadRequest("invalid_answer", fmt.Sprintf("question %s is not part of this exam", qid))
		}
		if chosen < 0 || chosen >= len(q.OptionList()) {
			return apierr.BadRequest("invalid_answer", fmt.Sprintf("option %d out of range for question %s", chosen, qid))
		}
	}
	return nil
}

func encodeAnswers(answers map[uuid.UUID]int) (datatypes.JSON, error) {
	out := make(map[string]int, len(answers))
	for k, v := range answers {
		out[k.String()] = v
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func (s *examService) ListExams(ctx context.Context, includeUnpublished bool) ([]*types.Exam, error) {
	exams, err := s.examRepo.List(ctx, nil, !includeUnpublished)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// GetExam loads the exam with its questions. Correct options never leave
// the server since ExamQuestion does not serialize them.
func (s *examService) GetExam(ctx context.Context, examID uuid.UUID, includeUnpublished bool) (*types.Exam, error) {
	exams, err := s.examRepo.GetByIDs(ctx, nil, []uuid.UUID{examID}, true)
	if err != nil {
		return nil, fmt.Errorf("load exam: %w", err)
	}
	if len(exams) == 0 || (!exams[0].Published && !includeUnpublished) {
		return nil, apierr.NotFound("exam")
	}
	return exams[0], nil
}

func (s *examService) ListAttempts(ctx context.Context, studentID, examID uuid.UUID) ([]*types.ExamAttempt, error) {
	if studentID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	rows, err := s.attemptRepo.ListByStudentExam(ctx, nil, studentID, examID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return rows, nil
}

func (s *examService) CreateExam(ctx context.Context, in CreateExamInput) (*types.Exam, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.BadRequest("invalid_exam", "title is required")
	}
	level, ok := catalog.ParseLevel(in.Level)
	if !ok {
		return nil, apierr.BadRequest("invalid_level", fmt.Sprintf("unknown level %q", in.Level))
	}
	if in.PassingScore < 0 || in.PassingScore > 100 {
		return nil, apierr.BadRequest("invalid_exam", "passing_score must be between 0 and 100")
	}
	if len(in.Questions) == 0 {
		return nil, apierr.BadRequest("invalid_exam", "at least one question is required")
	}

	ex := &types.Exam{
		ID:               uuid.New(),
		ModuleID:         in.ModuleID,
		Title:            title,
		Description:      strings.TrimSpace(in.Description),
		Level:            level,
		PassingScore:     in.PassingScore,
		TimeLimitMinutes: in.TimeLimitMinutes,
		Published:        in.Published == nil || *in.Published,
	}
	for i, q := range in.Questions {
		if strings.TrimSpace(q.Prompt) == "" || len(q.Options) < 2 {
			return nil, apierr.BadRequest("invalid_question", fmt.Sprintf("question %d needs a prompt and at least two options", i+1))
		}
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return nil, apierr.BadRequest("invalid_question", fmt.Sprintf("question %d: correct_option out of range", i+1))
		}
		points := q.Points
		if points <= 0 {
			points = 1
		}
		ex.Questions = append(ex.Questions, &types.ExamQuestion{
			ID:            uuid.New(),
			ExamID:        ex.ID,
			Position:      i + 1,
			Prompt:        strings.TrimSpace(q.Prompt),
			Options:       exam.OptionsJSON(q.Options),
			CorrectOption: q.CorrectOption,
			Points:        points,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.ModuleID != nil {
			mods, err := s.moduleRepo.GetByIDs(ctx, tx, []uuid.UUID{*in.ModuleID})
			if err != nil {
				return fmt.Errorf("load module: %w", err)
			}
			if len(mods) == 0 {
				return apierr.NotFound("module")
			}
		}
		if _, err := s.examRepo.Create(ctx, tx, []*types.Exam{ex}); err != nil {
			return fmt.Errorf("create exam: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Exam created", "exam_id", ex.ID, "questions", len(ex.Questions))
	return ex, nil
}

func (s *examService) DeleteExam(ctx context.Context, examID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exams, err := s.examRepo.GetByIDs(ctx, tx, []uuid.UUID{examID}, false)
		if err != nil {
			return fmt.Errorf("load exam: %w", err)
		}
		if len(exams) == 0 {
			return apierr.NotFound("exam")
		}
		if err := s.examRepo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{examID}); err != nil {
			return fmt.Errorf("delete exam: %w", err)
		}
		return nil
	})
}
