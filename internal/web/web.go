package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/Joseda-hg/lazystreak/internal/activity"
	"github.com/Joseda-hg/lazystreak/internal/app"
	"github.com/Joseda-hg/lazystreak/internal/db"
	"github.com/Joseda-hg/lazystreak/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var weekdayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

type Server struct {
	session *app.Session
	router  *gin.Engine
}

type taskResponse struct {
	ID        string       `json:"id"`
	Date      string       `json:"date"`
	Task      string       `json:"task"`
	Status    model.Status `json:"status"`
	CreatedAt *time.Time   `json:"created_at,omitempty"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`
}

type createTaskRequest struct {
	Task string `json:"task" form:"task"`
	Date string `json:"date" form:"date"`
}

type updateTaskRequest struct {
	Status string `json:"status"`
}

type heatmapRow struct {
	Label string
	Cells []int
}

func NewServer(session *app.Session) *Server {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{session: session, router: router}

	router.SetHTMLTemplate(template.Must(template.New("").Funcs(template.FuncMap{
		"day":     model.FormatDay,
		"comma":   func(n int) string { return humanize.Comma(int64(n)) },
		"reltime": s.relativeToToday,
	}).ParseFS(templateFS, "templates/*.tmpl")))

	router.GET("/", s.handleIndex)
	router.POST("/tasks", s.handleCreate)
	router.POST("/tasks/:id/toggle", s.handleToggle)
	router.POST("/tasks/:id/delete", s.handleDelete)

	api := router.Group("/api")
	{
		api.GET("/stats", s.handleAPIStats)
		api.GET("/grid", s.handleAPIGrid)
		api.GET("/tasks", s.handleAPITasks)
		api.POST("/tasks", s.handleAPICreate)
		api.PATCH("/tasks/:id", s.handleAPIUpdate)
		api.DELETE("/tasks/:id", s.handleAPIDelete)
		api.GET("/tasks/:id/history", s.handleAPIHistory)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) handleIndex(c *gin.Context) {
	filter, err := model.ParseStatusFilter(c.Query("status"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	dashboard, err := s.session.Dashboard(ctx)
	if err != nil {
		c.String(statusFor(err), err.Error())
		return
	}
	tasks, err := s.session.Tasks(ctx, filter)
	if err != nil {
		c.String(statusFor(err), err.Error())
		return
	}

	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"Dashboard": dashboard,
		"Rows":      heatmapRows(dashboard.Grid),
		"Months":    monthHeaders(dashboard.Grid),
		"Tasks":     tasks,
		"Filter":    string(filter),
		"Filters":   []model.StatusFilter{model.FilterAll, model.FilterPending, model.FilterCompleted},
		"Error":     c.Query("error"),
	})
}

func (s *Server) handleCreate(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	date, err := parseOptionalDay(req.Date)
	if err != nil {
		redirectWithError(c, err)
		return
	}
	if _, err := s.session.AddTask(c.Request.Context(), req.Task, date); err != nil {
		redirectWithError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleToggle(c *gin.Context) {
	ctx := c.Request.Context()
	task, err := s.session.Task(ctx, c.Param("id"))
	if err != nil {
		c.String(statusFor(err), err.Error())
		return
	}
	if _, err := s.session.ToggleStatus(ctx, task); err != nil {
		c.String(statusFor(err), err.Error())
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.session.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		c.String(statusFor(err), err.Error())
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleAPIStats(c *gin.Context) {
	dashboard, err := s.session.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"today":          model.FormatDay(dashboard.Today),
		"stats":          dashboard.Stats,
		"badges":         dashboard.Badges,
		"next_badge":     dashboard.NextBadge,
		"has_next_badge": dashboard.HasNextBadge,
		"task_count":     dashboard.TaskCount,
	})
}

func (s *Server) handleAPIGrid(c *gin.Context) {
	dashboard, err := s.session.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard.Grid)
}

func (s *Server) handleAPITasks(c *gin.Context) {
	filter, err := model.ParseStatusFilter(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tasks, err := s.session.Tasks(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toResponse(task))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out, "count": len(out)})
}

func (s *Server) handleAPICreate(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseOptionalDay(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := s.session.AddTask(c.Request.Context(), req.Task, date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(task))
}

func (s *Server) handleAPIUpdate(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil || strings.TrimSpace(req.Status) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pending or completed"})
		return
	}

	task, err := s.session.SetStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(task))
}

func (s *Server) handleAPIDelete(c *gin.Context) {
	if err := s.session.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAPIHistory(c *gin.Context) {
	history, err := s.session.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func toResponse(task model.Task) taskResponse {
	resp := taskResponse{
		ID:     task.ID,
		Date:   model.FormatDay(task.Date),
		Task:   task.Description,
		Status: task.Status,
	}
	if !task.CreatedAt.IsZero() {
		created := task.CreatedAt
		resp.CreatedAt = &created
	}
	if !task.UpdatedAt.IsZero() {
		updated := task.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

func parseOptionalDay(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	return model.ParseDay(value)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrEmptyDescription):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrHistoryUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func redirectWithError(c *gin.Context, err error) {
	c.Redirect(http.StatusSeeOther, "/?error="+url.QueryEscape(err.Error()))
}

func heatmapRows(grid activity.Grid) []heatmapRow {
	rows := make([]heatmapRow, 0, len(weekdayNames))
	for weekday, name := range weekdayNames {
		rows = append(rows, heatmapRow{Label: name, Cells: grid.Row(weekday)})
	}
	return rows
}

// monthHeaders returns one label per column, empty where no month starts.
func monthHeaders(grid activity.Grid) []string {
	headers := make([]string, len(grid.Weeks))
	for _, tick := range grid.Months {
		if tick.Column >= 0 && tick.Column < len(headers) {
			headers[tick.Column] = tick.Label
		}
	}
	return headers
}

func (s *Server) relativeToToday(date time.Time) string {
	return model.RelativeDay(date, s.session.Today())
}
