package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/service"
)

type projectRequest struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description" binding:"required"`
	Budget         float64  `json:"budget" binding:"required"`
	Deadline       string   `json:"deadline" binding:"required"`
	Category       string   `json:"category" binding:"required"`
	Visibility     string   `json:"visibility"`
	SkillsRequired []string `json:"skills_required"`
	AttachedFiles  []string `json:"attached_files"`
}

func (r projectRequest) toInput() (service.ProjectInput, bool) {
	deadline, err := parseDate(r.Deadline)
	if err != nil {
		return service.ProjectInput{}, false
	}
	return service.ProjectInput{
		Title:          r.Title,
		Description:    r.Description,
		Budget:         r.Budget,
		Deadline:       deadline,
		Category:       r.Category,
		Visibility:     model.Visibility(r.Visibility),
		SkillsRequired: r.SkillsRequired,
		AttachedFiles:  r.AttachedFiles,
	}, true
}

type requestRevisionsRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) createProject(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, ok := req.toInput()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deadline"})
		return
	}

	project, err := h.projects.CreateProject(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *Handler) listOpenProjects(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	projects, err := h.projects.ListOpenProjects(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": projects})
}

func (h *Handler) listRecentProjects(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	projects, err := h.projects.ListRecentForFreelancer(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": projects})
}

func (h *Handler) listMyProjects(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	projects, err := h.projects.ListMyProjects(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": projects})
}

func (h *Handler) listAssignedProjects(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	projects, err := h.projects.ListAssignedToMe(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": projects})
}

func (h *Handler) getProject(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	project, err := h.projects.GetProject(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) updateProject(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, ok := req.toInput()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deadline"})
		return
	}

	project, err := h.projects.UpdateProject(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) deleteProject(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.projects.DeleteProject(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) markForReview(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.projects.MarkForReview(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": model.ProjectStatusCompletedPendingReview})
}

func (h *Handler) approveProject(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.projects.ApproveProject(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": model.ProjectStatusCompleted})
}

func (h *Handler) requestRevisions(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req requestRevisionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.projects.RequestRevisions(c.Request.Context(), principal, id, req.Message); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": model.ProjectStatusInProgress})
}
