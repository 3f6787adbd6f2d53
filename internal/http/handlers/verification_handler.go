package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teenlance/teenlance-backend/internal/dto"
	"github.com/teenlance/teenlance-backend/internal/http/handlers/common"
	"github.com/teenlance/teenlance-backend/internal/service"
)

// VerificationHandler — подтверждение телефона и подача KYC заявок.
type VerificationHandler struct {
	verification *service.VerificationService
}

func NewVerificationHandler(verification *service.VerificationService) *VerificationHandler {
	return &VerificationHandler{verification: verification}
}

// RequestPhoneCode обрабатывает POST /verification/phone.
func (h *VerificationHandler) RequestPhoneCode(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.PhoneCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.verification.RequestPhoneCode(c.Request.Context(), userID, req.Phone); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "код отправлен", nil)
}

// ConfirmPhone обрабатывает POST /verification/phone/confirm.
func (h *VerificationHandler) ConfirmPhone(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.ConfirmPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.verification.ConfirmPhone(c.Request.Context(), userID, req.Code); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "телефон подтверждён", nil)
}

// SubmitKyc обрабатывает POST /verification/kyc.
func (h *VerificationHandler) SubmitKyc(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.KycSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	request, err := h.verification.SubmitKyc(c.Request.Context(), userID, req.DocumentType)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": request})
}
