package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teenlance/teenlance-backend/internal/http/handlers/common"
	"github.com/teenlance/teenlance-backend/internal/service"
)

// MediaHandler — загрузка и выдача файлов результатов работ.
type MediaHandler struct {
	media *service.MediaService
	users *service.UserService
}

func NewMediaHandler(media *service.MediaService, users *service.UserService) *MediaHandler {
	return &MediaHandler{media: media, users: users}
}

// Upload обрабатывает POST /media.
func (h *MediaHandler) Upload(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "файл не передан")
		return
	}

	// Ранний отказ по заявленному размеру; хранилище дополнительно
	// проверяет фактический размер при записи.
	if fileHeader.Size > h.media.MaxUploadBytes() {
		common.RespondError(c, http.StatusRequestEntityTooLarge, "файл превышает допустимый размер")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		common.RespondBadRequest(c, "не удалось открыть файл")
		return
	}
	defer f.Close()

	file, err := h.media.Upload(c.Request.Context(), userID, fileHeader.Filename, f)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"file": file})
}

// Download обрабатывает GET /media/:id.
func (h *MediaHandler) Download(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	fileID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	actor, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	file, rc, err := h.media.Open(c.Request.Context(), actor, fileID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.DataFromReader(http.StatusOK, file.SizeBytes, file.MimeType, rc, nil)
}

// ListMy обрабатывает GET /media/my.
func (h *MediaHandler) ListMy(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	files, err := h.media.ListMy(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}
