package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/service"
)

type submitBidRequest struct {
	Amount       float64 `json:"amount" binding:"required"`
	Proposal     string  `json:"proposal" binding:"required"`
	DeliveryDays int     `json:"delivery_days" binding:"required"`
}

func (h *Handler) submitBid(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req submitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bid, err := h.bids.SubmitBid(c.Request.Context(), principal, service.SubmitBidInput{
		ProjectID:    projectID,
		Amount:       req.Amount,
		Proposal:     req.Proposal,
		DeliveryDays: req.DeliveryDays,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bid)
}

func (h *Handler) listProjectBids(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c)
	if !ok {
		return
	}
	bids, err := h.bids.ListBidsForProject(c.Request.Context(), principal, projectID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bids})
}

func (h *Handler) getMyBidForProject(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c)
	if !ok {
		return
	}
	bid, err := h.bids.GetMyBidForProject(c.Request.Context(), principal, projectID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, bid)
}

func (h *Handler) listMyBids(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	bids, err := h.bids.ListMyBids(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bids})
}

func (h *Handler) acceptBid(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	bidID, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.bids.AcceptBid(c.Request.Context(), principal, bidID); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": model.BidStatusAccepted})
}

func (h *Handler) rejectBid(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	bidID, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.bids.RejectBid(c.Request.Context(), principal, bidID); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": model.BidStatusRejected})
}

func (h *Handler) exportBids(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c)
	if !ok {
		return
	}
	result, err := h.reports.ExportBids(c.Request.Context(), principal, projectID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.attachment(c, contentTypeXLSX, result)
}

func (h *Handler) completionStatement(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	projectID, ok := h.pathID(c)
	if !ok {
		return
	}
	result, err := h.reports.CompletionStatement(c.Request.Context(), principal, projectID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.attachment(c, contentTypePDF, result)
}
