package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/domain/catalog"
	"github.com/yungbote/lingobridge-backend/internal/platform/apierr"
	"github.com/yungbote/lingobridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

const minPasswordLength = 8

type JWTClaims struct {
	SessionID string `json:"sid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Level     string `json:"level" binding:"omitempty,cefr"`
}

type LoginResult struct {
	AccessToken string         `json:"access_token"`
	ExpiresAt   time.Time      `json:"expires_at"`
	Student     *types.Student `json:"student"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.Student, error)
	Login(ctx context.Context, email, password, userAgent string) (*LoginResult, error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	studentRepo  repos.StudentRepo
	sessionRepo  repos.StudentSessionRepo
	achievements AchievementService
	jwtSecretKey string
	accessTTL    time.Duration
	now          func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	studentRepo repos.StudentRepo,
	sessionRepo repos.StudentSessionRepo,
	achievements AchievementService,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &authService{
		db:           db,
		log:          log.With("service", "AuthService"),
		studentRepo:  studentRepo,
		sessionRepo:  sessionRepo,
		achievements: achievements,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		now:          time.Now,
	}
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*types.Student, error) {
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, apierr.BadRequest("invalid_email", "a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apierr.BadRequest("invalid_password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	firstName := strings.TrimSpace(in.FirstName)
	if firstName == "" {
		return nil, apierr.BadRequest("invalid_name", "first_name is required")
	}
	level := catalog.LevelA1
	if strings.TrimSpace(in.Level) != "" {
		l, ok := catalog.ParseLevel(in.Level)
		if !ok {
			return nil, apierr.BadRequest("invalid_level", fmt.Sprintf("unknown level %q", in.Level))
		}
		level = l
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	student := &types.Student{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     strings.TrimSpace(in.LastName),
		Role:         types.RoleStudent,
		Level:        level,
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := as.studentRepo.GetByEmails(ctx, tx, []string{email})
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if len(existing) > 0 {
			return apierr.Conflict("email_taken", "email already registered")
		}
		if _, err := as.studentRepo.Create(ctx, tx, []*types.Student{student}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierr.Conflict("email_taken", "email already registered")
			}
			return fmt.Errorf("create student: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("Student registered", "student_id", student.ID)
	return student, nil
}

func (as *authService) Login(ctx context.Context, email, password, userAgent string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apierr.BadRequest("invalid_credentials", "email and password are required")
	}

	var (
		student *types.Student
		session *types.StudentSession
	)
	now := as.now().UTC()
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := as.studentRepo.GetByEmails(ctx, tx, []string{email})
		if err != nil {
			return fmt.Errorf("load student: %w", err)
		}
		// Unknown email and wrong password are indistinguishable to the caller.
		if len(found) == 0 {
			return apierr.Unauthorized("invalid email or password")
		}
		st := found[0]
		if err := bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(password)); err != nil {
			return apierr.Unauthorized("invalid email or password")
		}

		if st.RecordActivity(now) {
			if err := as.studentRepo.Save(ctx, tx, st); err != nil {
				return fmt.Errorf("save streak: %w", err)
			}
		}

		created, err := as.sessionRepo.Create(ctx, tx, []*types.StudentSession{{
			ID:        uuid.New(),
			StudentID: st.ID,
			UserAgent: userAgent,
			ExpiresAt: now.Add(as.accessTTL),
		}})
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		student = st
		session = created[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := as.generateAccessToken(student, session)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	if as.achievements != nil {
		if _, err := as.achievements.Evaluate(ctx, student.ID, nil); err != nil {
			as.log.Warn("Achievement evaluation failed", "student_id", student.ID, "error", err)
		}
	}

	as.log.Info("Student logged in", "student_id", student.ID, "streak", student.CurrentStreak)
	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   session.ExpiresAt,
		Student:     student,
	}, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.SessionID == uuid.Nil {
		return apierr.Unauthorized("not authenticated")
	}
	if err := as.sessionRepo.RevokeByIDs(ctx, nil, []uuid.UUID{rd.SessionID}, as.now().UTC()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (as *authService) generateAccessToken(student *types.Student, session *types.StudentSession) (string, error) {
	claims := JWTClaims{
		SessionID: session.ID.String(),
		Role:      string(student.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   student.ID.String(),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(as.now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.Unauthorized("missing token")
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, apierr.New(http.StatusUnauthorized, "invalid_token", fmt.Errorf("failed to parse token: %w", err))
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apierr.Unauthorized("invalid or expired token")
	}
	studentID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized("invalid subject in token")
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return ctx, apierr.Unauthorized("invalid session in token")
	}

	sessions, err := as.sessionRepo.GetByIDs(ctx, nil, []uuid.UUID{sessionID})
	if err != nil {
		return ctx, fmt.Errorf("load session: %w", err)
	}
	if len(sessions) == 0 || sessions[0].StudentID != studentID || !sessions[0].Active(as.now()) {
		return ctx, apierr.Unauthorized("session expired or revoked")
	}

	rd := &ctxutil.RequestData{
		StudentID:   studentID,
		SessionID:   sessionID,
		Role:        claims.Role,
		TokenString: tokenString,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
