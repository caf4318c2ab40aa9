package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/lingobridge-backend/internal/data/repos/testutil"
	"github.com/yungbote/lingobridge-backend/internal/platform/apierr"
)

func TestCatalogServiceLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewCatalogService(env.db, testutil.Logger(t), env.moduleRepo)

	draft := false
	m, err := svc.CreateModule(ctx, CreateModuleInput{
		Number:          7,
		Title:           "  En el mercado ",
		Level:           "a2",
		DurationMinutes: 40,
		Published:       &draft,
	})
	require.NoError(t, err)
	assert.Equal(t, "En el mercado", m.Title)
	assert.False(t, m.Published)

	_, err = svc.CreateModule(ctx, CreateModuleInput{Number: 7, Title: "Dup", Level: "A2"})
	assert.Equal(t, http.StatusConflict, apierr.StatusOf(err))

	// Drafts are hidden from students.
	_, err = svc.GetModule(ctx, m.ID, false)
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
	listed, err := svc.ListModules(ctx, "", false)
	require.NoError(t, err)
	assert.Empty(t, listed)

	publish := true
	title := "Market day"
	updated, err := svc.UpdateModule(ctx, m.ID, UpdateModuleInput{Title: &title, Published: &publish})
	require.NoError(t, err)
	assert.Equal(t, "Market day", updated.Title)

	listed, err = svc.ListModules(ctx, "A2", false)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	listed, err = svc.ListModules(ctx, "B1", false)
	require.NoError(t, err)
	assert.Empty(t, listed)
	_, err = svc.ListModules(ctx, "Q7", false)
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	empty := " "
	_, err = svc.UpdateModule(ctx, m.ID, UpdateModuleInput{Title: &empty})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	require.NoError(t, svc.DeleteModule(ctx, m.ID))
	_, err = svc.GetModule(ctx, m.ID, true)
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(svc.DeleteModule(ctx, m.ID)))
}

func TestCreateModuleReusesDeletedNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewCatalogService(env.db, testutil.Logger(t), env.moduleRepo)

	old, err := svc.CreateModule(ctx, CreateModuleInput{Number: 5, Title: "Old five", Level: "A1"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteModule(ctx, old.ID))

	listed, err := svc.ListModules(ctx, "", true)
	require.NoError(t, err)
	assert.Empty(t, listed)

	fresh, err := svc.CreateModule(ctx, CreateModuleInput{Number: 5, Title: "New five", Level: "A1"})
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, fresh.ID)
	assert.Equal(t, 5, fresh.Number)

	_, err = svc.CreateModule(ctx, CreateModuleInput{Number: 5, Title: "Third five", Level: "A1"})
	assert.Equal(t, http.StatusConflict, apierr.StatusOf(err))
}
