package exam

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lingobridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lingobridge-backend/internal/domain"
)

func TestExamRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewExamRepo(db, testutil.Logger(t))

	e := testutil.SeedExam(t, ctx, tx, 70, 0, 1, 2)

	rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{e.ID}, true)
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if len(rows[0].Questions) != 3 || rows[0].Questions[0].Position != 1 || rows[0].Questions[2].CorrectOption != 2 {
		t.Fatalf("questions not loaded in order")
	}

	list, err := repo.List(ctx, tx, true)
	if err != nil || len(list) != 1 {
		t.Fatalf("List: err=%v len=%d", err, len(list))
	}

	if err := repo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{e.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{e.ID}, false); err != nil || len(rows) != 0 {
		t.Fatalf("after delete GetByIDs: err=%v len=%d", err, len(rows))
	}
}

func TestExamAttemptRepoNumbersSequentially(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewExamAttemptRepo(db, testutil.Logger(t))

	s := testutil.SeedStudent(t, ctx, tx, "attempts@example.com")
	other := testutil.SeedStudent(t, ctx, tx, "other@example.com")
	e := testutil.SeedExam(t, ctx, tx, 50, 0)

	for want := 1; want <= 3; want++ {
		n, err := repo.NextAttemptNumber(ctx, tx, s.ID, e.ID)
		if err != nil || n != want {
			t.Fatalf("NextAttemptNumber: err=%v got=%d want=%d", err, n, want)
		}
		if _, err := repo.Create(ctx, tx, []*types.ExamAttempt{{
			StudentID:     s.ID,
			ExamID:        e.ID,
			AttemptNumber: n,
			Score:         1,
			MaxScore:      1,
			Percentage:    100,
			Passed:        want != 2,
			SubmittedAt:   time.Now().UTC(),
		}}); err != nil {
			t.Fatalf("Create attempt %d: %v", n, err)
		}
	}

	if n, err := repo.NextAttemptNumber(ctx, tx, other.ID, e.ID); err != nil || n != 1 {
		t.Fatalf("counter should be per student: err=%v n=%d", err, n)
	}

	// The unique index rejects a duplicate attempt number.
	if _, err := repo.Create(ctx, tx, []*types.ExamAttempt{{
		StudentID: s.ID, ExamID: e.ID, AttemptNumber: 2, SubmittedAt: time.Now().UTC(),
	}}); err == nil {
		t.Fatalf("expected unique violation for duplicate attempt number")
	}
}

func TestExamAttemptRepoCounts(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewExamAttemptRepo(db, testutil.Logger(t))

	s := testutil.SeedStudent(t, ctx, tx, "counts@example.com")
	e1 := testutil.SeedExam(t, ctx, tx, 50, 0)
	e2 := testutil.SeedExam(t, ctx, tx, 50, 0)

	now := time.Now().UTC()
	attempts := []*types.ExamAttempt{
		{StudentID: s.ID, ExamID: e1.ID, AttemptNumber: 1, Passed: true, SubmittedAt: now},
		{StudentID: s.ID, ExamID: e1.ID, AttemptNumber: 2, Passed: true, SubmittedAt: now},
		{StudentID: s.ID, ExamID: e2.ID, AttemptNumber: 1, Passed: false, SubmittedAt: now},
	}
	if _, err := repo.Create(ctx, tx, attempts); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if n, err := repo.CountPassedExams(ctx, tx, s.ID); err != nil || n != 1 {
		t.Fatalf("CountPassedExams: err=%v n=%d", err, n)
	}
	rows, err := repo.ListByStudentExam(ctx, tx, s.ID, e1.ID)
	if err != nil || len(rows) != 2 || rows[0].AttemptNumber != 1 {
		t.Fatalf("ListByStudentExam: err=%v len=%d", err, len(rows))
	}
}

func TestCertificateRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewCertificateRepo(db, testutil.Logger(t))

	s := testutil.SeedStudent(t, ctx, tx, "certs@example.com")
	e := testutil.SeedExam(t, ctx, tx, 50, 0)

	none, err := repo.FirstForStudentExam(ctx, tx, s.ID, e.ID)
	if err != nil || none != nil {
		t.Fatalf("FirstForStudentExam empty: err=%v cert=%v", err, none)
	}

	cert := &types.Certificate{
		StudentID:  s.ID,
		ExamID:     e.ID,
		AttemptID:  uuid.New(),
		Percentage: 100,
		IssuedAt:   time.Now().UTC(),
	}
	if _, err := repo.Create(ctx, tx, []*types.Certificate{cert}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if cert.Code == "" {
		t.Fatalf("expected generated code")
	}

	byCode, err := repo.GetByCode(ctx, tx, cert.Code)
	if err != nil || byCode.ID != cert.ID || byCode.Exam == nil || byCode.Student == nil {
		t.Fatalf("GetByCode: err=%v", err)
	}
	first, err := repo.FirstForStudentExam(ctx, tx, s.ID, e.ID)
	if err != nil || first == nil || first.ID != cert.ID {
		t.Fatalf("FirstForStudentExam: err=%v", err)
	}
	if n, err := repo.CountByStudentExam(ctx, tx, s.ID, e.ID); err != nil || n != 1 {
		t.Fatalf("CountByStudentExam: err=%v n=%d", err, n)
	}
	if rows, err := repo.ListByStudent(ctx, tx, s.ID); err != nil || len(rows) != 1 {
		t.Fatalf("ListByStudent: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{cert.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
}
