package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teenlance/teenlance-backend/internal/dto"
	"github.com/teenlance/teenlance-backend/internal/http/handlers/common"
	"github.com/teenlance/teenlance-backend/internal/service"
)

// ApplicationHandler — HTTP слой жизненного цикла откликов.
type ApplicationHandler struct {
	apps   *service.ApplicationService
	ledger *service.LedgerService
}

func NewApplicationHandler(apps *service.ApplicationService, ledger *service.LedgerService) *ApplicationHandler {
	return &ApplicationHandler{apps: apps, ledger: ledger}
}

// Create обрабатывает POST /applications.
func (h *ApplicationHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	app, err := h.apps.Create(c.Request.Context(), userID, service.CreateInput{
		FreelancerID: req.FreelancerID,
		Title:        req.Title,
		BidAmount:    req.BidAmount,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"application": app})
}

// Get обрабатывает GET /applications/:id.
func (h *ApplicationHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	applicationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	app, err := h.apps.Get(c.Request.Context(), userID, applicationID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"application": app})
}

// ListMy обрабатывает GET /applications/my.
func (h *ApplicationHandler) ListMy(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	asClient, asFreelancer, err := h.apps.ListMy(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"as_client":     asClient,
		"as_freelancer": asFreelancer,
	})
}

// PerformAction обрабатывает POST /applications/:id/actions.
// Единая точка входа для всех переходов жизненного цикла.
func (h *ApplicationHandler) PerformAction(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	applicationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	app, err := h.apps.Perform(c.Request.Context(), userID, applicationID, req.Action, service.ActionInput{
		WorkLink:    req.Payload.WorkLink,
		WorkMessage: req.Payload.WorkMessage,
		WorkFiles:   req.Payload.WorkFiles,
		Message:     req.Payload.Message,
		Reason:      req.Payload.Reason,
		Rating:      req.Payload.Rating,
		Tags:        req.Payload.Tags,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"application": app})
}

// ListPayments обрабатывает GET /applications/:id/payments.
// Доступ проверяется через выдачу самого отклика.
func (h *ApplicationHandler) ListPayments(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	applicationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if _, err := h.apps.Get(c.Request.Context(), userID, applicationID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	limit, offset := common.GetPagination(c)
	entries, err := h.ledger.History(c.Request.Context(), applicationID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": entries})
}
