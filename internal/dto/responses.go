package dto

// ErrorResponse — унифицированный формат ошибки.
// Флаги isSecurityBlock и isKycBlock позволяют фронтенду показать
// специализированный экран вместо общего отказа в доступе.
type ErrorResponse struct {
	Error           string `json:"error"`
	IsSecurityBlock bool   `json:"isSecurityBlock,omitempty"`
	IsKycBlock      bool   `json:"isKycBlock,omitempty"`
}

// SuccessResponse — унифицированный формат успешного ответа.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
