package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teenlance/teenlance-backend/internal/dto"
	"github.com/teenlance/teenlance-backend/internal/http/handlers/common"
	"github.com/teenlance/teenlance-backend/internal/service"
)

// AdminHandler — административная модерация: статусы аккаунтов и KYC заявки.
// Принудительные финансовые действия идут через общий endpoint действий.
type AdminHandler struct {
	users        *service.UserService
	verification *service.VerificationService
}

func NewAdminHandler(users *service.UserService, verification *service.VerificationService) *AdminHandler {
	return &AdminHandler{users: users, verification: verification}
}

// SetAccountStatus обрабатывает PUT /admin/users/:id/status.
func (h *AdminHandler) SetAccountStatus(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.AccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.users.SetAccountStatus(c.Request.Context(), adminID, userID, req.Status); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "статус аккаунта обновлён", gin.H{"status": req.Status})
}

// ListPendingKyc обрабатывает GET /admin/kyc.
func (h *AdminHandler) ListPendingKyc(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	requests, err := h.verification.ListPendingKyc(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// ResolveKyc обрабатывает PUT /admin/kyc/:id.
func (h *AdminHandler) ResolveKyc(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.KycResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	resolved, err := h.verification.ResolveKyc(c.Request.Context(), adminID, requestID, req.Approve, req.Comment)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": resolved})
}
