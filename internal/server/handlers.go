package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"

	"github.com/christopherklint97/timecard/internal/model"
	"github.com/christopherklint97/timecard/internal/report"
	"github.com/christopherklint97/timecard/internal/timefmt"
	"github.com/christopherklint97/timecard/internal/week"
)

func (s *Server) createEntry(c *gin.Context) {
	var e model.Entry
	if err := c.ShouldBindJSON(&e); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid JSON", err)
		return
	}
	if err := normalizeEntry(&e); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid entry", err)
		return
	}
	e.ID = nil

	if _, err := s.repo.CreateEntry(c.Request.Context(), &e); err != nil {
		s.failErr(c, "failed to save entry", err)
		return
	}
	s.logger.Info("entry created", "request_id", c.GetString(requestIDKey), "id", e.IDValue(), "code", e.Code)
	c.JSON(http.StatusCreated, e)
}

func (s *Server) getEntry(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	e, err := s.repo.Entry(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, "failed to read entry", err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) entriesBetween(c *gin.Context) {
	start, err := parseBound(c.Param("start"), false)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "invalid date range", err)
		return
	}
	end, err := parseBound(c.Param("stop"), true)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "invalid date range", err)
		return
	}

	entries, err := s.repo.EntriesBetween(c.Request.Context(), start, end)
	if err != nil {
		s.failErr(c, "failed to read entries", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) lastEntry(c *gin.Context) {
	e, err := s.repo.LastEntry(c.Request.Context())
	if err != nil {
		s.failErr(c, "failed to read last entry", err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) updateEntry(c *gin.Context) {
	var e model.Entry
	if err := c.ShouldBindJSON(&e); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid JSON", err)
		return
	}
	if e.ID == nil {
		s.fail(c, http.StatusBadRequest, "invalid entry", errors.New("id is required"))
		return
	}
	if err := normalizeEntry(&e); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid entry", err)
		return
	}

	if err := s.repo.UpdateEntry(c.Request.Context(), e); err != nil {
		s.failErr(c, "failed to update entry", err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) deleteEntry(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	if err := s.repo.DeleteEntry(c.Request.Context(), id); err != nil {
		s.failErr(c, "failed to delete entry", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteLastEntry(c *gin.Context) {
	if err := s.repo.DeleteLastEntry(c.Request.Context()); err != nil {
		s.failErr(c, "failed to delete last entry", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) createProject(c *gin.Context) {
	var p model.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid JSON", err)
		return
	}
	if err := validateProject(p); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid project", err)
		return
	}
	p.ID = nil

	if _, err := s.repo.CreateProject(c.Request.Context(), &p); err != nil {
		s.failErr(c, "failed to save project", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) getProject(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	p, err := s.repo.Project(c.Request.Context(), id)
	if err != nil {
		s.failErr(c, "failed to read project", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) allProjects(c *gin.Context) {
	projects, err := s.repo.Projects(c.Request.Context())
	if err != nil {
		s.failErr(c, "failed to read projects", err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (s *Server) updateProject(c *gin.Context) {
	var p model.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid JSON", err)
		return
	}
	if p.ID == nil {
		s.fail(c, http.StatusBadRequest, "invalid project", errors.New("id is required"))
		return
	}
	if err := validateProject(p); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid project", err)
		return
	}

	if err := s.repo.UpdateProject(c.Request.Context(), p); err != nil {
		s.failErr(c, "failed to update project", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProject(c *gin.Context) {
	if err := s.repo.DeleteProject(c.Request.Context(), c.Param("code")); err != nil {
		s.failErr(c, "failed to delete project", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) weeklyReport(c *gin.Context) {
	weeksAgo, err := strconv.Atoi(c.Param("weeks_ago"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, "invalid week offset", err)
		return
	}
	withMemos, _ := strconv.ParseBool(c.DefaultQuery("memos", "false"))

	wk, err := report.Build(c.Request.Context(), s.repo, s.now(), weeksAgo, report.BuildOptions{
		Options:   s.report,
		WithMemos: withMemos,
	})
	if err != nil {
		s.failErr(c, "failed to build report", err)
		return
	}
	for _, skipped := range wk.Skipped {
		s.logger.Warn("entry skipped", "request_id", c.GetString(requestIDKey), "error", skipped.Error())
	}
	c.JSON(http.StatusOK, report.ToJSON(wk, withMemos))
}

var schemas = map[string]any{
	"entry":   &model.Entry{},
	"project": &model.Project{},
}

func (s *Server) schema(c *gin.Context) {
	kind := c.Param("kind")
	v, ok := schemas[kind]
	if !ok {
		s.fail(c, http.StatusNotFound, "unknown schema", fmt.Errorf("%q is not one of entry, project", kind))
		return
	}
	c.JSON(http.StatusOK, jsonschema.Reflect(v))
}

func (s *Server) idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "invalid id", err)
		return 0, false
	}
	return id, true
}

// normalizeEntry checks timestamps and fills in a missing weekday label from
// the start time. A given label must name start's weekday.
func normalizeEntry(e *model.Entry) error {
	if strings.TrimSpace(e.Code) == "" {
		return errors.New("code is required")
	}
	start, err := timefmt.ParseTimestamp(e.Start)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if _, err := timefmt.ParseTimestamp(e.Stop); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	if e.WeekDay == "" {
		e.WeekDay = timefmt.WeekdayLabel(start)
		return nil
	}
	day, ok := week.Index(e.WeekDay)
	if !ok {
		return fmt.Errorf("unknown week_day %q", e.WeekDay)
	}
	if day != int(start.Weekday()) {
		return fmt.Errorf("week_day %q does not match start %s (%s)", e.WeekDay, e.Start, timefmt.WeekdayLabel(start))
	}
	return nil
}

func validateProject(p model.Project) error {
	if strings.TrimSpace(p.Code) == "" {
		return errors.New("code is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// parseBound accepts a full timestamp, used verbatim, or a calendar date.
// A date as the upper bound includes that whole day.
func parseBound(s string, upper bool) (string, error) {
	if t, err := time.Parse(timefmt.Layout, s); err == nil {
		return t.Format(timefmt.Layout), nil
	}
	d, err := time.Parse(timefmt.DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%q is neither a date nor a timestamp", s)
	}
	if upper {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format(timefmt.Layout), nil
}
