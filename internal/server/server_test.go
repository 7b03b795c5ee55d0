package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunRepo struct {
	records []*domain.BatchRunRecord
	err     error
}

func (s *stubRunRepo) Create(context.Context, domain.BatchSummary) (int64, error) { return 0, nil }

func (s *stubRunRepo) GetRecent(context.Context, int) ([]*domain.BatchRunRecord, error) {
	return s.records, s.err
}

type stubMediaRepo struct {
	byUser map[string][]*domain.MediaRecord
}

func (s *stubMediaRepo) Create(context.Context, domain.MediaRecord) (int64, error) { return 0, nil }

func (s *stubMediaRepo) GetByUsername(_ context.Context, username string) ([]*domain.MediaRecord, error) {
	return s.byUser[username], nil
}

func (s *stubMediaRepo) Exists(context.Context, string) (bool, error) { return false, nil }

func (s *stubMediaRepo) CleanupOldRecords(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

func newHandlerServer(runs *stubRunRepo, mediaRepo *stubMediaRepo) *Server {
	return &Server{
		runs:   runs,
		media:  mediaRepo,
		logger: logger.New(logger.Opts{}),
	}
}

func TestHandleRunsReturnsHistory(t *testing.T) {
	s := newHandlerServer(&stubRunRepo{records: []*domain.BatchRunRecord{
		{ID: 2, TotalAccounts: 3, SuccessfulAccounts: 2, FailedAccounts: 1, TotalImages: 14},
	}}, &stubMediaRepo{})

	rec := httptest.NewRecorder()
	s.handleRuns(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []domain.BatchRunRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.EqualValues(t, 2, got[0].ID)
	assert.Equal(t, 14, got[0].TotalImages)
}

func TestHandleRunsRejectsPost(t *testing.T) {
	s := newHandlerServer(&stubRunRepo{}, &stubMediaRepo{})

	rec := httptest.NewRecorder()
	s.handleRuns(rec, httptest.NewRequest(http.MethodPost, "/api/runs", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleMediaReturnsRecords(t *testing.T) {
	s := newHandlerServer(&stubRunRepo{}, &stubMediaRepo{byUser: map[string][]*domain.MediaRecord{
		"alice": {{ID: 1, PostID: "p1", Username: "alice", Category: domain.CategoryPost}},
	}})

	rec := httptest.NewRecorder()
	s.handleMedia(rec, httptest.NewRequest(http.MethodGet, "/api/media?username=alice", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []domain.MediaRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].PostID)
}

func TestHandleMediaRequiresUsername(t *testing.T) {
	s := newHandlerServer(&stubRunRepo{}, &stubMediaRepo{})

	rec := httptest.NewRecorder()
	s.handleMedia(rec, httptest.NewRequest(http.MethodGet, "/api/media", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMediaUnknownUserIsEmptyList(t *testing.T) {
	s := newHandlerServer(&stubRunRepo{}, &stubMediaRepo{})

	rec := httptest.NewRecorder()
	s.handleMedia(rec, httptest.NewRequest(http.MethodGet, "/api/media?username=ghost", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
