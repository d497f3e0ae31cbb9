package http

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/freelancehub/internal/service"
)

func (h *Handler) uploadDeliverable(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer file.Close()

	deliverable, err := h.deliverables.UploadDeliverable(c.Request.Context(), principal, service.UploadDeliverableInput{
		ProjectID:   projectID,
		FileName:    header.Filename,
		Description: c.PostForm("description"),
		Content:     file,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deliverable)
}

func (h *Handler) listDeliverables(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c)
	if !ok {
		return
	}
	deliverables, err := h.deliverables.ListDeliverables(c.Request.Context(), principal, projectID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": deliverables})
}

func (h *Handler) downloadDeliverable(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	deliverable, content, err := h.deliverables.OpenDeliverable(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer content.Close()

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": deliverable.OriginalFileName,
	}))
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Length", strconv.FormatInt(deliverable.SizeBytes, 10))
	c.Header("X-Checksum-Blake3", deliverable.Checksum)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, content); err != nil {
		h.log.Warn().Err(err).Str("deliverable_id", id.String()).Msg("download interrupted")
	}
}
