package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/timecard/internal/model"
	"github.com/christopherklint97/timecard/internal/report"
	"github.com/christopherklint97/timecard/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Wednesday 2024-01-10; its week runs 2024-01-07 .. 2024-01-13.
var testToday = time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

func setupServer(t *testing.T) (*Server, *store.DB) {
	t.Helper()
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "timecard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := New(db, nil, Options{Now: func() time.Time { return testToday }})
	return srv, db
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func seed(t *testing.T, db *store.DB, entries ...model.Entry) {
	t.Helper()
	for i := range entries {
		_, err := db.CreateEntry(context.Background(), &entries[i])
		require.NoError(t, err)
	}
}

func TestCreateAndReadEntry(t *testing.T) {
	srv, _ := setupServer(t)

	w := do(t, srv, http.MethodPost, "/entry", model.Entry{
		Start: "2024-01-08 09:00:00",
		Stop:  "2024-01-08 10:00:00",
		Code:  "20-008",
		Memo:  "planning",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Entry](t, w)
	require.NotNil(t, created.ID)
	assert.Equal(t, "Mon", created.WeekDay)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(t, srv, http.MethodGet, "/entry/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decode[model.Entry](t, w))

	w = do(t, srv, http.MethodGet, "/last_entry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "planning", decode[model.Entry](t, w).Memo)
}

func TestCreateEntryValidation(t *testing.T) {
	srv, _ := setupServer(t)

	tests := []struct {
		name  string
		entry model.Entry
	}{
		{"missing code", model.Entry{Start: "2024-01-08 09:00:00", Stop: "2024-01-08 10:00:00"}},
		{"bad start", model.Entry{Start: "2024-01-08T09:00", Stop: "2024-01-08 10:00:00", Code: "x"}},
		{"bad stop", model.Entry{Start: "2024-01-08 09:00:00", Stop: "", Code: "x"}},
		{"bad weekday", model.Entry{Start: "2024-01-08 09:00:00", Stop: "2024-01-08 10:00:00", WeekDay: "Funday", Code: "x"}},
		{"weekday contradicts start", model.Entry{Start: "2024-01-07 09:00:00", Stop: "2024-01-07 10:00:00", WeekDay: "Fri", Code: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, "/entry", tt.entry)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decode[ErrorResponse](t, w)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Contains(t, resp.Error, "invalid entry")
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/entry", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateEntryWeekdayLabel(t *testing.T) {
	srv, _ := setupServer(t)

	w := do(t, srv, http.MethodPost, "/entry",
		model.Entry{Start: "2024-01-07 09:00:00", Stop: "2024-01-07 10:00:00", WeekDay: "SUN", Code: "x"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "SUN", decode[model.Entry](t, w).WeekDay)

	w = do(t, srv, http.MethodPost, "/entry",
		model.Entry{Start: "2024-01-07 09:00:00", Stop: "2024-01-07 10:00:00", Code: "x"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Sun", decode[model.Entry](t, w).WeekDay)

	w = do(t, srv, http.MethodPost, "/update_entry",
		model.Entry{ID: model.Int64(1), Start: "2024-01-07 09:00:00", Stop: "2024-01-07 10:00:00", WeekDay: "Fri", Code: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "does not match start")
}

func TestEntryNotFound(t *testing.T) {
	srv, _ := setupServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/entry/99"},
		{http.MethodGet, "/last_entry"},
		{http.MethodPost, "/delete_entry/99"},
		{http.MethodPost, "/delete_last_entry"},
		{http.MethodGet, "/project/99"},
		{http.MethodPost, "/delete_project/nope"},
	} {
		w := do(t, srv, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.path)
		assert.Equal(t, http.StatusNotFound, decode[ErrorResponse](t, w).Code)
	}

	w := do(t, srv, http.MethodGet, "/entry/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	srv, db := setupServer(t)
	seed(t, db,
		model.Entry{Start: "2024-01-08 09:00:00", Stop: "2024-01-08 10:00:00", WeekDay: "Mon", Code: "a"},
		model.Entry{Start: "2024-01-09 09:00:00", Stop: "2024-01-09 10:00:00", WeekDay: "Tue", Code: "b"},
	)

	w := do(t, srv, http.MethodPost, "/update_entry", model.Entry{
		ID: model.Int64(1), Start: "2024-01-08 09:00:00", Stop: "2024-01-08 11:00:00", Code: "a", Memo: "longer",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := db.Entry(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08 11:00:00", got.Stop)
	assert.Equal(t, "Mon", got.WeekDay)

	w = do(t, srv, http.MethodPost, "/update_entry", model.Entry{Start: "2024-01-08 09:00:00", Stop: "2024-01-08 11:00:00", Code: "a"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, "/delete_last_entry", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, srv, http.MethodPost, "/delete_entry/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, srv, http.MethodGet, "/last_entry", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEntriesBetween(t *testing.T) {
	srv, db := setupServer(t)
	seed(t, db,
		model.Entry{Start: "2024-01-06 23:00:00", Stop: "2024-01-06 23:30:00", WeekDay: "Sat", Code: "before"},
		model.Entry{Start: "2024-01-07 00:00:00", Stop: "2024-01-07 01:00:00", WeekDay: "Sun", Code: "first"},
		model.Entry{Start: "2024-01-13 22:00:00", Stop: "2024-01-13 23:00:00", WeekDay: "Sat", Code: "last"},
		model.Entry{Start: "2024-01-14 00:00:00", Stop: "2024-01-14 01:00:00", WeekDay: "Sun", Code: "after"},
	)

	codes := func(w *httptest.ResponseRecorder) []string {
		var out []string
		for _, e := range decode[[]model.Entry](t, w) {
			out = append(out, e.Code)
		}
		return out
	}

	// dates: the stop day is included
	w := do(t, srv, http.MethodGet, "/entries_between/2024-01-07/2024-01-13", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"first", "last"}, codes(w))

	// timestamps: half-open
	w = do(t, srv, http.MethodGet, "/entries_between/2024-01-07%2000:00:00/2024-01-14%2000:00:00", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"first", "last"}, codes(w))

	w = do(t, srv, http.MethodGet, "/entries_between/2024-02-01/2024-02-07", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w = do(t, srv, http.MethodGet, "/entries_between/last-week/today", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjects(t *testing.T) {
	srv, _ := setupServer(t)

	w := do(t, srv, http.MethodPost, "/project", model.Project{Name: "Tooling", Code: "21-001"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, srv, http.MethodPost, "/project", model.Project{Name: "Client", Code: "20-008"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, srv, http.MethodPost, "/project", model.Project{Name: "Again", Code: "20-008"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, srv, http.MethodPost, "/project", model.Project{Code: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodGet, "/all_projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]model.Project](t, w)
	require.Len(t, all, 2)
	assert.Equal(t, "20-008", all[0].Code)

	w = do(t, srv, http.MethodPost, "/update_project", model.Project{ID: all[1].ID, Name: "Tooling v2", Code: "21-001"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodGet, "/project/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Tooling v2", decode[model.Project](t, w).Name)

	w = do(t, srv, http.MethodPost, "/delete_project/21-001", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestWeeklyReport(t *testing.T) {
	srv, db := setupServer(t)
	seed(t, db,
		model.Entry{Start: "2024-01-07 09:00:00", Stop: "2024-01-07 11:00:00", WeekDay: "Sun", Code: "20-008", Memo: "planning"},
		model.Entry{Start: "2024-01-08 09:00:00", Stop: "2024-01-08 10:00:00", WeekDay: "Mon", Code: "20-008"},
		model.Entry{Start: "2024-01-10 13:00:00", Stop: "2024-01-10 17:30:00", WeekDay: "Wed", Code: "21-001"},
		model.Entry{Start: "2024-01-01 09:00:00", Stop: "2024-01-01 10:00:00", WeekDay: "Mon", Code: "old"},
	)

	w := do(t, srv, http.MethodGet, "/report/0?memos=true", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[report.JSONReport](t, w)
	assert.Equal(t, "2024-01-07", got.WeekBegin)
	assert.Equal(t, "2024-01-13", got.WeekEnd)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "20-008", got.Rows[0].Code)
	assert.Equal(t, []float64{2, 1, 0, 0, 0, 0, 0}, got.Rows[0].Hours)
	assert.Equal(t, "planning; \n", got.Rows[0].Memos[0])
	assert.InDelta(t, 7.5, got.Total, 1e-9)

	w = do(t, srv, http.MethodGet, "/report/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[report.JSONReport](t, w)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "old", got.Rows[0].Code)
	assert.Nil(t, got.Rows[0].Memos)

	w = do(t, srv, http.MethodGet, "/report/-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, srv, http.MethodGet, "/report/last", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSchema(t *testing.T) {
	srv, _ := setupServer(t)

	w := do(t, srv, http.MethodGet, "/schema/entry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"week_day"`)

	w = do(t, srv, http.MethodGet, "/schema/invoice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthzAndRequestID(t *testing.T) {
	srv, _ := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}
