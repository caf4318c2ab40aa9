package services

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/lingobridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/platform/apierr"
	"github.com/yungbote/lingobridge-backend/internal/platform/ctxutil"
)

func asStudent(id uuid.UUID, role types.StudentRole) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		StudentID: id,
		SessionID: uuid.New(),
		Role:      string(role),
	})
}

func TestCertificateService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := testutil.SeedStudent(t, ctx, env.db, "ana@example.com")
	ben := testutil.SeedStudent(t, ctx, env.db, "ben@example.com")
	ex := testutil.SeedExam(t, ctx, env.db, 50, 2)

	res, err := env.examService(t, types.CertificatePerAttempt).
		SubmitAttempt(ctx, ana.ID, ex.ID, SubmitAttemptInput{Answers: allCorrect(ex)})
	require.NoError(t, err)
	require.NotNil(t, res.Certificate)
	certID := res.Certificate.ID

	renderer, err := NewCertificateRenderer("")
	require.NoError(t, err)
	svc := NewCertificateService(env.db, testutil.Logger(t), env.certificateRepo, renderer)

	mine, err := svc.ListForStudent(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	got, err := svc.Get(asStudent(ana.ID, types.RoleStudent), certID)
	require.NoError(t, err)
	assert.Equal(t, res.Certificate.Code, got.Code)

	_, err = svc.Get(asStudent(ben.ID, types.RoleStudent), certID)
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
	_, err = svc.Get(asStudent(ben.ID, types.RoleAdmin), certID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, certID)
	assert.Equal(t, http.StatusUnauthorized, apierr.StatusOf(err))

	v, err := svc.Verify(ctx, " "+res.Certificate.Code+" ")
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, "Ana Lopez", v.StudentName)
	assert.Equal(t, "Checkpoint", v.ExamTitle)
	assert.Equal(t, 100.0, v.Percentage)

	_, err = svc.Verify(ctx, "LB-0000-0000-0000")
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
	_, err = svc.Verify(ctx, "")
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	img, err := svc.Render(asStudent(ana.ID, types.RoleStudent), certID)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, certWidth, decoded.Bounds().Dx())
	assert.Equal(t, certHeight, decoded.Bounds().Dy())
}
