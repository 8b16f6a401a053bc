package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/docfs/internal/vfs"
)

// StatusFor maps a filesystem error to an HTTP status.
func StatusFor(err error) int {
	switch vfs.KindOf(err) {
	case vfs.KindNotFound:
		return http.StatusNotFound
	case vfs.KindAlreadyExists, vfs.KindNotAFile, vfs.KindNotADirectory:
		return http.StatusConflict
	case vfs.KindInvalidPath:
		return http.StatusBadRequest
	case vfs.KindStore:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	body := gin.H{"error": err.Error()}
	if kind := vfs.KindOf(err); kind != 0 {
		body["kind"] = kind.String()
	}
	_ = c.Error(err)
	c.JSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
