package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/clients/redis"
	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	"github.com/yungbote/lingobridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lingobridge-backend/internal/domain"
	httpH "github.com/yungbote/lingobridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lingobridge-backend/internal/http/middleware"
	"github.com/yungbote/lingobridge-backend/internal/http/validation"
	"github.com/yungbote/lingobridge-backend/internal/realtime"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

type apiEnv struct {
	db      *gorm.DB
	hub     *realtime.SSEHub
	router  *gin.Engine
	modules []*types.Module
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Register())

	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	studentRepo := repos.NewStudentRepo(db, log)
	sessionRepo := repos.NewStudentSessionRepo(db, log)
	moduleRepo := repos.NewModuleRepo(db, log)
	studentModuleRepo := repos.NewStudentModuleRepo(db, log)
	achievementRepo := repos.NewAchievementRepo(db, log)
	studentAchievementRepo := repos.NewStudentAchievementRepo(db, log)
	examRepo := repos.NewExamRepo(db, log)
	attemptRepo := repos.NewExamAttemptRepo(db, log)
	certificateRepo := repos.NewCertificateRepo(db, log)
	reportRepo := repos.NewReportRepo(db, log)

	hub := realtime.NewSSEHub(log)
	notify := services.NewStudentNotifier(&services.HubEmitter{Hub: hub})
	achievements := services.NewAchievementService(db, log, achievementRepo, studentAchievementRepo, studentRepo, studentModuleRepo, attemptRepo, notify, 2)
	renderer, err := services.NewCertificateRenderer("")
	require.NoError(t, err)

	authService := services.NewAuthService(db, log, studentRepo, sessionRepo, achievements, "router-test-secret", time.Hour)
	router := NewRouter(RouterConfig{
		Log:                log,
		AuthMiddleware:     httpMW.NewAuthMiddleware(log, authService, ""),
		HealthHandler:      httpH.NewHealthHandler(db),
		AuthHandler:        httpH.NewAuthHandler(authService, httpH.CookieConfig{}),
		StudentHandler:     httpH.NewStudentHandler(services.NewStudentService(db, log, studentRepo, moduleRepo, studentModuleRepo)),
		ModuleHandler:      httpH.NewModuleHandler(services.NewCatalogService(db, log, moduleRepo)),
		ProgressHandler:    httpH.NewProgressHandler(services.NewProgressService(db, log, studentRepo, moduleRepo, studentModuleRepo, studentAchievementRepo, achievements, notify, 2)),
		AchievementHandler: httpH.NewAchievementHandler(achievements),
		ExamHandler:        httpH.NewExamHandler(services.NewExamService(db, log, examRepo, attemptRepo, certificateRepo, studentRepo, moduleRepo, achievements, notify, types.CertificatePerAttempt)),
		CertificateHandler: httpH.NewCertificateHandler(services.NewCertificateService(db, log, certificateRepo, renderer)),
		ReportHandler:      httpH.NewReportHandler(services.NewReportService(log, reportRepo, redis.NewMemoryCache(), time.Minute, 7)),
		RealtimeHandler:    httpH.NewRealtimeHandler(log, hub),
	})

	return &apiEnv{
		db:      db,
		hub:     hub,
		router:  router,
		modules: testutil.SeedModules(t, ctx, db, 2),
	}
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, w, &out)
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, w, &env)
	return env.Error.Code
}

func TestHealthcheck(t *testing.T) {
	env := newAPIEnv(t)
	w := env.do(t, http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestRegisterLoginAndMe(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodPost, "/api/register", "", gin.H{
		"email":      "Maya@Example.com",
		"password":   "longenough",
		"first_name": "Maya",
		"level":      "a2",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/register", "", gin.H{
		"email":      "maya@example.com",
		"password":   "longenough",
		"first_name": "Maya",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "maya@example.com", "password": "longenough"})
	require.Equal(t, http.StatusOK, w.Code)
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == httpMW.DefaultAuthCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	// The cookie alone authenticates.
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me struct {
		Student struct {
			Email string `json:"email"`
			Level string `json:"level"`
		} `json:"student"`
	}
	decode(t, rec, &me)
	assert.Equal(t, "maya@example.com", me.Student.Email)
	assert.Equal(t, "A2", me.Student.Level)

	w = env.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "maya@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBindingErrorsUseTranslatedMessages(t *testing.T) {
	env := newAPIEnv(t)
	w := env.do(t, http.MethodPost, "/api/register", "", gin.H{"email": "x@example.com", "password": "longenough", "level": "Z9"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var out struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	decode(t, w, &out)
	assert.Equal(t, "invalid_request", out.Error.Code)
	assert.Contains(t, out.Error.Message, "first_name is a required field")
	assert.Contains(t, out.Error.Message, "level must be a CEFR level")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newAPIEnv(t)
	for _, path := range []string{"/api/me", "/api/modules", "/api/progress/summary", "/api/certificates", "/api/admin/reports/dashboard"} {
		w := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, "unauthorized", errorCode(t, w), path)
	}
	w := env.do(t, http.MethodGet, "/api/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProgressFlow(t *testing.T) {
	env := newAPIEnv(t)
	ctx := context.Background()
	testutil.SeedStudent(t, ctx, env.db, "flow@example.com")
	token := env.login(t, "flow@example.com", testutil.TestPassword)
	moduleID := env.modules[0].ID.String()

	w := env.do(t, http.MethodGet, "/api/modules", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Modules []map[string]any `json:"modules"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Modules, 2)

	w = env.do(t, http.MethodGet, "/api/progress/modules/"+moduleID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var virtual struct {
		Module struct {
			Status   string  `json:"status"`
			Progress float64 `json:"progress"`
		} `json:"module"`
	}
	decode(t, w, &virtual)
	assert.Equal(t, "not_started", virtual.Module.Status)

	w = env.do(t, http.MethodPost, "/api/progress/modules/"+moduleID+"/sections/story", token, gin.H{"minutes_spent": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Module struct {
			Progress  float64 `json:"progress"`
			StoryDone bool    `json:"story_done"`
		} `json:"module"`
		Changed bool `json:"changed"`
	}
	decode(t, w, &res)
	assert.True(t, res.Changed)
	assert.True(t, res.Module.StoryDone)
	assert.InDelta(t, 10, res.Module.Progress, 0.001)

	// Body is optional.
	w = env.do(t, http.MethodPost, "/api/progress/modules/"+moduleID+"/sections/grammar", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/progress/modules/"+moduleID+"/sections/karaoke", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_section", errorCode(t, w))

	w = env.do(t, http.MethodPost, "/api/progress/modules/not-a-uuid/sections/story", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_id", errorCode(t, w))

	w = env.do(t, http.MethodPost, "/api/progress/modules/"+uuid.NewString()+"/sections/story", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/progress/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Summary struct {
			TimeSpentMinutes int `json:"time_spent_minutes"`
			TotalModules     int `json:"total_modules"`
		} `json:"summary"`
	}
	decode(t, w, &summary)
	assert.Equal(t, 5, summary.Summary.TimeSpentMinutes)
	assert.Equal(t, 2, summary.Summary.TotalModules)
}

func TestExamAttemptAndCertificate(t *testing.T) {
	env := newAPIEnv(t)
	ctx := context.Background()
	testutil.SeedStudent(t, ctx, env.db, "exam@example.com")
	other := testutil.SeedStudent(t, ctx, env.db, "other@example.com")
	exam := testutil.SeedExam(t, ctx, env.db, 60, 0, 2)
	token := env.login(t, "exam@example.com", testutil.TestPassword)

	w := env.do(t, http.MethodGet, "/api/exams/"+exam.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "correct_option")

	answers := map[string]int{}
	for _, q := range exam.Questions {
		answers[q.ID.String()] = q.CorrectOption
	}
	w = env.do(t, http.MethodPost, "/api/exams/"+exam.ID.String()+"/attempts", token, gin.H{"answers": answers})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res struct {
		Attempt struct {
			Number int  `json:"attempt_number"`
			Passed bool `json:"passed"`
		} `json:"attempt"`
		Certificate struct {
			ID   uuid.UUID `json:"id"`
			Code string    `json:"code"`
		} `json:"certificate"`
		CertificateIssued bool `json:"certificate_issued"`
	}
	decode(t, w, &res)
	assert.True(t, res.Attempt.Passed)
	assert.True(t, res.CertificateIssued)
	require.NotEmpty(t, res.Certificate.Code)

	w = env.do(t, http.MethodGet, "/api/exams/"+exam.ID.String()+"/attempts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var attempts struct {
		Attempts []map[string]any `json:"attempts"`
	}
	decode(t, w, &attempts)
	assert.Len(t, attempts.Attempts, 1)

	// Verification is public and case-insensitive.
	w = env.do(t, http.MethodGet, "/api/certificates/verify/"+strings.ToLower(res.Certificate.Code), "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var v struct {
		Verification struct {
			Valid bool   `json:"valid"`
			Code  string `json:"code"`
		} `json:"verification"`
	}
	decode(t, w, &v)
	assert.True(t, v.Verification.Valid)
	assert.Equal(t, res.Certificate.Code, v.Verification.Code)

	w = env.do(t, http.MethodGet, "/api/certificates/verify/NOPE-NOPE", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/certificates/"+res.Certificate.ID.String()+"/image", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	_, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)

	otherToken := env.login(t, other.Email, testutil.TestPassword)
	w = env.do(t, http.MethodGet, "/api/certificates/"+res.Certificate.ID.String(), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/exams/"+exam.ID.String()+"/attempts", token, gin.H{"score": 140})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	env := newAPIEnv(t)
	ctx := context.Background()
	st := testutil.SeedStudent(t, ctx, env.db, "learner@example.com")
	testutil.SeedAdmin(t, ctx, env.db, "admin@example.com")
	studentToken := env.login(t, "learner@example.com", testutil.TestPassword)
	adminToken := env.login(t, "admin@example.com", testutil.TestPassword)

	w := env.do(t, http.MethodGet, "/api/admin/students", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/admin/students?role=student", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page struct {
		Students []map[string]any `json:"students"`
		Total    int64            `json:"total"`
	}
	decode(t, w, &page)
	assert.EqualValues(t, 1, page.Total)

	w = env.do(t, http.MethodPatch, "/api/admin/students/"+st.ID.String(), adminToken, gin.H{"subscription_status": "gold"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPatch, "/api/admin/students/"+st.ID.String(), adminToken, gin.H{"level": "B1", "subscription_status": "active"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	moduleIDs := []string{env.modules[0].ID.String(), env.modules[1].ID.String()}
	w = env.do(t, http.MethodPost, "/api/admin/students/"+st.ID.String()+"/modules", adminToken, gin.H{"module_ids": moduleIDs})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var seeded struct {
		Created int64 `json:"created"`
	}
	decode(t, w, &seeded)
	assert.EqualValues(t, 2, seeded.Created)

	w = env.do(t, http.MethodPost, "/api/admin/modules", adminToken, gin.H{"number": 3, "title": "Travel", "level": "A2", "published": false})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Module struct {
			ID uuid.UUID `json:"id"`
		} `json:"module"`
	}
	decode(t, w, &created)

	// Unpublished modules are hidden from students.
	w = env.do(t, http.MethodGet, "/api/modules/"+created.Module.ID.String(), studentToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodGet, "/api/modules/"+created.Module.ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/admin/modules", adminToken, gin.H{"number": 3, "title": "Dup", "level": "A2"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodDelete, "/api/admin/modules/"+created.Module.ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/admin/reports/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var dash struct {
		Dashboard struct {
			TotalStudents int64 `json:"total_students"`
		} `json:"dashboard"`
	}
	decode(t, w, &dash)
	assert.EqualValues(t, 1, dash.Dashboard.TotalStudents)

	w = env.do(t, http.MethodGet, "/api/admin/reports/modules", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newAPIEnv(t)
	testutil.SeedStudent(t, context.Background(), env.db, "bye@example.com")
	token := env.login(t, "bye@example.com", testutil.TestPassword)

	w := env.do(t, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSSEStreamDeliversStudentEvents(t *testing.T) {
	env := newAPIEnv(t)
	st := testutil.SeedStudent(t, context.Background(), env.db, "live@example.com")
	token := env.login(t, "live@example.com", testutil.TestPassword)

	ts := httptest.NewServer(env.router)
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/sse/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return env.hub.Subscribers(st.ID.String()) == 1 }, 2*time.Second, 10*time.Millisecond)

	w := env.do(t, http.MethodPost, "/api/progress/modules/"+env.modules[0].ID.String()+"/sections/quiz", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
	}()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "stream closed before event")
			if line == "event: "+string(realtime.SSEEventSectionCompleted) {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for section_completed")
		}
	}
}
