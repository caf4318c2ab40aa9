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
	"github.com/yungbote/lingobridge-backend/internal/platform/apierr"
	"github.com/yungbote/lingobridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

// CertificateVerification is the public view of a certificate.
type CertificateVerification struct {
	Valid       bool    `json:"valid"`
	Code        string  `json:"code"`
	StudentName string  `json:"student_name"`
	ExamTitle   string  `json:"exam_title"`
	Level       string  `json:"level"`
	Percentage  float64 `json:"percentage"`
	IssuedAt    string  `json:"issued_at"`
}

type CertificateService interface {
	ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Certificate, error)
	// Get returns the certificate when the caller owns it or is an admin.
	Get(ctx context.Context, certID uuid.UUID) (*types.Certificate, error)
	Verify(ctx context.Context, code string) (*CertificateVerification, error)
	Render(ctx context.Context, certID uuid.UUID) ([]byte, error)
}

type certificateService struct {
	db              *gorm.DB
	log             *logger.Logger
	certificateRepo repos.CertificateRepo
	renderer        *CertificateRenderer
}

func NewCertificateService(db *gorm.DB, log *logger.Logger, certificateRepo repos.CertificateRepo, renderer *CertificateRenderer) CertificateService {
	return &certificateService{
		db:              db,
		log:             log.With("service", "CertificateService"),
		certificateRepo: certificateRepo,
		renderer:        renderer,
	}
}

func (s *certificateService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Certificate, error) {
	if studentID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	rows, err := s.certificateRepo.ListByStudent(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return rows, nil
}

func (s *certificateService) Get(ctx context.Context, certID uuid.UUID) (*types.Certificate, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.StudentID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	rows, err := s.certificateRepo.GetByIDs(ctx, nil, []uuid.UUID{certID})
	if err != nil {
		return nil, fmt.Errorf("load certificate: %w", err)
	}
	// Another student's certificate is reported as missing.
	if len(rows) == 0 || (rows[0].StudentID != rd.StudentID && !ctxutil.IsAdmin(ctx)) {
		return nil, apierr.NotFound("certificate")
	}
	return rows[0], nil
}

func (s *certificateService) Verify(ctx context.Context, code string) (*CertificateVerification, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apierr.BadRequest("invalid_code", "code is required")
	}
	cert, err := s.certificateRepo.GetByCode(ctx, nil, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFound("certificate")
	}
	if err != nil {
		return nil, fmt.Errorf("verify certificate: %w", err)
	}

	out := &CertificateVerification{
		Valid:      true,
		Code:       cert.Code,
		Percentage: cert.Percentage,
		IssuedAt:   cert.IssuedAt.UTC().Format("2006-01-02"),
	}
	if cert.Student != nil {
		out.StudentName = cert.Student.FullName()
	}
	if cert.Exam != nil {
		out.ExamTitle = cert.Exam.Title
		out.Level = string(cert.Exam.Level)
	}
	return out, nil
}

func (s *certificateService) Render(ctx context.Context, certID uuid.UUID) ([]byte, error) {
	if s.renderer == nil {
		return nil, errors.New("certificate renderer not configured")
	}
	cert, err := s.Get(ctx, certID)
	if err != nil {
		return nil, err
	}
	png, err := s.renderer.Render(cert)
	if err != nil {
		s.log.Error("Certificate render failed", "certificate_id", certID, "error", err)
		return nil, err
	}
	return png, nil
}
