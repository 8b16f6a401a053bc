package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/docfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/docfs/internal/shared/paths"
	"github.com/GriffinCanCode/docfs/internal/vfs"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Handlers contains all HTTP handlers
type Handlers struct {
	fs      *vfs.FS
	metrics *monitoring.Metrics
	logger  *zap.Logger
	backend string
}

// NewHandlers creates a new handler set. metrics may be nil.
func NewHandlers(fs *vfs.FS, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{fs: fs, metrics: metrics, logger: logger}
}

// WithBackend sets the store backend name reported by Health.
func (h *Handlers) WithBackend(name string) *Handlers {
	h.backend = name
	return h
}

// Register mounts the filesystem routes on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	if h.metrics != nil {
		r.GET("/metrics/json", h.MetricsSummary)
	}

	v1 := r.Group("/v1/fs")
	v1.GET("/ls", h.List)
	v1.GET("/stat", h.Stat)
	v1.GET("/cat", h.Cat)
	v1.GET("/tail", h.Tail)
	v1.GET("/read", h.Read)
	v1.GET("/nl", h.NumberedLines)
	v1.GET("/grep", h.Search)
	v1.GET("/glob", h.Glob)
	v1.POST("/touch", h.Touch)
	v1.POST("/write", h.WriteFile)
	v1.POST("/mkdir", h.Mkdir)
	v1.POST("/cp", h.Copy)
	v1.POST("/edit", h.Edit)
	v1.POST("/cd", h.ChangeDirectory)
}

// Health handles health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "docfs",
		"version": Version,
		"store":   h.backend,
	})
}

// EntryView is the listing form of an entry; content is omitted.
type EntryView struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	IsDir     bool      `json:"is_dir"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

func viewOf(e vfs.Entry) EntryView {
	return EntryView{
		Path:      e.Path,
		Name:      e.Name,
		IsDir:     e.IsDir,
		Size:      e.Size(),
		UpdatedAt: e.UpdatedAt,
	}
}

func orRoot(p string) string {
	if p == "" {
		return paths.Root
	}
	return p
}

// List returns the children of a directory, or the file itself.
func (h *Handlers) List(c *gin.Context) {
	var q struct {
		Path string `form:"path"`
		All  bool   `form:"all"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	p := orRoot(q.Path)

	entries, err := h.fs.List(c.Request.Context(), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		if !q.All && strings.HasPrefix(e.Name, ".") {
			continue
		}
		views = append(views, viewOf(e))
	}
	c.JSON(http.StatusOK, gin.H{"path": p, "entries": views})
}

// Stat returns a single entry without its content.
func (h *Handlers) Stat(c *gin.Context) {
	var q struct {
		Path string `form:"path"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	e, err := h.fs.Stat(c.Request.Context(), orRoot(q.Path))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(e))
}

// Cat returns the content of a file.
func (h *Handlers) Cat(c *gin.Context) {
	var q struct {
		Path string `form:"path" binding:"required"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	content, err := h.fs.Cat(c.Request.Context(), q.Path)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": q.Path, "content": content})
}

// Tail returns the last n lines of a file (default 10).
func (h *Handlers) Tail(c *gin.Context) {
	q := struct {
		Path string `form:"path" binding:"required"`
		N    int    `form:"n" binding:"min=0"`
	}{N: 10}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	lines, err := h.fs.Tail(c.Request.Context(), q.Path, q.N)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": q.Path, "lines": nonNil(lines)})
}

// Read returns lines [offset, offset+limit) of a file.
func (h *Handlers) Read(c *gin.Context) {
	var q struct {
		Path   string `form:"path" binding:"required"`
		Offset int    `form:"offset" binding:"min=0"`
		Limit  int    `form:"limit" binding:"min=0"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	lines, err := h.fs.Read(c.Request.Context(), q.Path, q.Offset, q.Limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": q.Path, "lines": nonNil(lines)})
}

// NumberedLines returns every line of a file with its number.
func (h *Handlers) NumberedLines(c *gin.Context) {
	q := struct {
		Path  string `form:"path" binding:"required"`
		Start int    `form:"start"`
	}{Start: 1}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	lines, err := h.fs.NumberedLines(c.Request.Context(), q.Path, q.Start)
	if err != nil {
		h.fail(c, err)
		return
	}
	if lines == nil {
		lines = []vfs.NumberedLine{}
	}
	c.JSON(http.StatusOK, gin.H{"path": q.Path, "lines": lines})
}

// Search runs a regular expression over a file or directory.
func (h *Handlers) Search(c *gin.Context) {
	var q struct {
		Pattern   string `form:"pattern" binding:"required"`
		Path      string `form:"path" binding:"required"`
		Recursive bool   `form:"recursive"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	matches, err := h.fs.Search(c.Request.Context(), q.Pattern, q.Path, q.Recursive)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

// Glob returns the paths matching a glob pattern, most recent first.
func (h *Handlers) Glob(c *gin.Context) {
	var q struct {
		Pattern string `form:"pattern" binding:"required"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	matches, err := h.fs.Glob(c.Request.Context(), q.Pattern)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paths": nonNil(matches), "count": len(matches)})
}

type pathRequest struct {
	Path string `json:"path" binding:"required"`
}

// Touch creates an empty file or refreshes an existing one.
func (h *Handlers) Touch(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.fs.Touch(c.Request.Context(), req.Path); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": req.Path})
}

// WriteFileRequest is the body of POST /v1/fs/write.
type WriteFileRequest struct {
	Path    string `json:"path" binding:"required"`
	Content string `json:"content"`
}

// WriteFile replaces or creates a file.
func (h *Handlers) WriteFile(c *gin.Context) {
	var req WriteFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.fs.WriteFile(c.Request.Context(), req.Path, req.Content); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": req.Path, "size": len(req.Content)})
}

// MkdirRequest is the body of POST /v1/fs/mkdir.
type MkdirRequest struct {
	Path      string `json:"path" binding:"required"`
	Recursive bool   `json:"recursive"`
}

// Mkdir creates a directory.
func (h *Handlers) Mkdir(c *gin.Context) {
	var req MkdirRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.fs.Mkdir(c.Request.Context(), req.Path, req.Recursive); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "path": req.Path})
}

// CopyRequest is the body of POST /v1/fs/cp.
type CopyRequest struct {
	Src  string `json:"src" binding:"required"`
	Dest string `json:"dest" binding:"required"`
}

// Copy copies a file, overwriting the destination file.
func (h *Handlers) Copy(c *gin.Context) {
	var req CopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.fs.Copy(c.Request.Context(), req.Src, req.Dest); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "src": req.Src, "dest": req.Dest})
}

// EditRequest is the body of POST /v1/fs/edit.
type EditRequest struct {
	Path       string `json:"path" binding:"required"`
	Old        string `json:"old"`
	New        string `json:"new"`
	ReplaceAll bool   `json:"replace_all"`
}

// Edit substitutes text in a file and returns the diff.
func (h *Handlers) Edit(c *gin.Context) {
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	diff, err := h.fs.Edit(c.Request.Context(), req.Path, req.Old, req.New, req.ReplaceAll)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": req.Path, "changed": diff != "", "diff": diff})
}

// ChangeDirectoryRequest is the body of POST /v1/fs/cd. Current defaults to
// the root.
type ChangeDirectoryRequest struct {
	Current string `json:"current"`
	Target  string `json:"target" binding:"required"`
}

// ChangeDirectory resolves a target directory against a caller-owned cwd.
func (h *Handlers) ChangeDirectory(c *gin.Context) {
	var req ChangeDirectoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Current == "" {
		req.Current = paths.Root
	}
	cwd, err := h.fs.ChangeDirectory(c.Request.Context(), req.Current, req.Target)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cwd": cwd})
}

// MetricsSummary returns high-level counters as JSON.
func (h *Handlers) MetricsSummary(c *gin.Context) {
	snap := h.metrics.Snapshot()
	errorRate := 0.0
	if snap.TotalRequests > 0 {
		errorRate = float64(snap.TotalErrors) / float64(snap.TotalRequests)
	}
	c.JSON(http.StatusOK, gin.H{
		"timestamp":          time.Now().UTC(),
		"total_requests":     snap.TotalRequests,
		"average_latency_ms": float64(snap.AverageLatency().Microseconds()) / 1000,
		"error_rate":         errorRate,
		"active_connections": snap.ActiveConnections,
		"store_calls":        snap.StoreCalls,
		"store_errors":       snap.StoreErrors,
		"uptime_seconds":     snap.UptimeSeconds,
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
