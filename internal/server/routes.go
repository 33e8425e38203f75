package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
	apperrors "github.com/julianstephens/daybook/internal/errors"
	"github.com/julianstephens/daybook/internal/models"
)

func (s *Server) registerRoutes() {
	r := s.engine
	r.GET("/health", s.health)

	api := r.Group("/api/v1")
	{
		api.GET("/config", s.getConfig)
		api.GET("/days/:date", s.getDay)
		api.GET("/months/:year/:month", s.getMonth)
		api.GET("/upcoming", s.getUpcoming)
		api.GET("/calendar.ics", s.getCalendar)

		api.GET("/templates", s.listTemplates)
		api.POST("/templates", s.createTemplate)
		api.GET("/templates/:id", s.getTemplate)
		api.PATCH("/templates/:id", s.editTemplate)
		api.DELETE("/templates/:id", s.retireTemplate)
		api.POST("/templates/:id/exceptions/:date", s.addException)
		api.DELETE("/templates/:id/exceptions/:date", s.removeException)
		api.GET("/templates/:id/occurrences", s.templateHistory)
		api.PUT("/templates/:id/occurrences/:date/status", s.setOccurrenceStatus)
		api.PUT("/templates/:id/occurrences/:date/title", s.setOccurrenceTitle)

		api.POST("/todos", s.createTodo)
		api.PUT("/todos/:id/status", s.setTodoStatus)
		api.DELETE("/todos/:id", s.deleteTodo)
	}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type titleRequest struct {
	Title string `json:"title"`
}

type todoRequest struct {
	Title   string        `json:"title" binding:"required"`
	DueDate calendar.Date `json:"due_date"`
}

type configResponse struct {
	Timezone  string `json:"timezone"`
	TouchMode bool   `json:"touch_mode"`
	Version   string `json:"version"`
	Today     string `json:"today"`
}

type monthResponse struct {
	Year  int                                 `json:"year"`
	Month int                                 `json:"month"`
	Days  map[calendar.Date]models.DaySummary `json:"days"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, configResponse{
		Timezone:  s.svc.Clock().Location().String(),
		TouchMode: s.cfg.TouchMode,
		Version:   constants.Version,
		Today:     s.svc.Clock().Today().String(),
	})
}

func (s *Server) getDay(c *gin.Context) {
	date, ok := dateParam(c, "date")
	if !ok {
		return
	}
	list, err := s.svc.GetDay(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getMonth(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		respondError(c, fmt.Errorf("%w: invalid year %q", apperrors.ErrInvalidInput, c.Param("year")))
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		respondError(c, fmt.Errorf("%w: invalid month %q", apperrors.ErrInvalidInput, c.Param("month")))
		return
	}
	days, err := s.svc.GetMonth(c.Request.Context(), year, time.Month(month))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, monthResponse{Year: year, Month: month, Days: days})
}

func (s *Server) getUpcoming(c *gin.Context) {
	days := 14
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(c, fmt.Errorf("%w: invalid days %q", apperrors.ErrInvalidInput, v))
			return
		}
		days = n
	}
	from := s.svc.Clock().Today()
	if v := c.Query("from"); v != "" {
		d, err := calendar.ParseDate(v)
		if err != nil {
			respondError(c, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
			return
		}
		from = d
	}
	upcoming, err := s.svc.Upcoming(c.Request.Context(), from, days)
	if err != nil {
		respondError(c, err)
		return
	}
	if upcoming == nil {
		upcoming = []models.Upcoming{}
	}
	c.JSON(http.StatusOK, upcoming)
}

// templateHistory lists done and skipped occurrences between from and to,
// both inclusive. The window defaults to the last DefaultHistoryDays days.
func (s *Server) templateHistory(c *gin.Context) {
	to := s.svc.Clock().Today()
	if v := c.Query("to"); v != "" {
		d, err := calendar.ParseDate(v)
		if err != nil {
			respondError(c, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
			return
		}
		to = d
	}
	from := to.AddDays(1 - constants.DefaultHistoryDays)
	if v := c.Query("from"); v != "" {
		d, err := calendar.ParseDate(v)
		if err != nil {
			respondError(c, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
			return
		}
		from = d
	}
	history, err := s.svc.TemplateHistory(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	if history == nil {
		history = []models.Occurrence{}
	}
	c.JSON(http.StatusOK, history)
}

func (s *Server) getCalendar(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.svc.ExportICS(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="daybook.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

func (s *Server) listTemplates(c *gin.Context) {
	includeRetired := c.Query("retired") == "true"
	templates, err := s.svc.ListTemplates(c.Request.Context(), includeRetired)
	if err != nil {
		respondError(c, err)
		return
	}
	if templates == nil {
		templates = []models.Template{}
	}
	c.JSON(http.StatusOK, templates)
}

func (s *Server) createTemplate(c *gin.Context) {
	var in models.TemplateInput
	if !bindJSON(c, &in) {
		return
	}
	id, err := s.svc.CreateTemplate(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	t, err := s.svc.GetTemplate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) getTemplate(c *gin.Context) {
	t, err := s.svc.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) editTemplate(c *gin.Context) {
	var patch models.TemplatePatch
	if !bindJSON(c, &patch) {
		return
	}
	t, err := s.svc.EditTemplate(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) retireTemplate(c *gin.Context) {
	t, err := s.svc.RetireTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) addException(c *gin.Context) {
	date, ok := dateParam(c, "date")
	if !ok {
		return
	}
	t, err := s.svc.AddException(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) removeException(c *gin.Context) {
	date, ok := dateParam(c, "date")
	if !ok {
		return
	}
	t, err := s.svc.RemoveException(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) setOccurrenceStatus(c *gin.Context) {
	date, ok := dateParam(c, "date")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := s.svc.SetOccurrenceStatus(c.Request.Context(), c.Param("id"), date, constants.OccurrenceStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) setOccurrenceTitle(c *gin.Context) {
	date, ok := dateParam(c, "date")
	if !ok {
		return
	}
	var req titleRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := s.svc.RenameOccurrence(c.Request.Context(), c.Param("id"), date, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) createTodo(c *gin.Context) {
	var req todoRequest
	if !bindJSON(c, &req) {
		return
	}
	todo, err := s.svc.CreateTodo(c.Request.Context(), req.Title, req.DueDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

func (s *Server) setTodoStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	todo, err := s.svc.SetTodoStatus(c.Request.Context(), c.Param("id"), constants.TodoStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (s *Server) deleteTodo(c *gin.Context) {
	if err := s.svc.DeleteTodo(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func dateParam(c *gin.Context, name string) (calendar.Date, bool) {
	d, err := calendar.ParseDate(c.Param(name))
	if err != nil {
		respondError(c, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return calendar.Date{}, false
	}
	return d, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return false
	}
	return true
}
