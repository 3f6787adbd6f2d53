package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// ValidateEmail проверяет корректность email адреса.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email не может быть пустым")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("некорректный email адрес")
	}
	return nil
}

// ValidateRating проверяет, что оценка лежит в допустимом диапазоне.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("оценка должна быть от 1 до 5")
	}
	return nil
}

// ValidateTitle проверяет заголовок отклика.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("заголовок не может быть пустым")
	}
	if utf8.RuneCountInString(title) > 200 {
		return fmt.Errorf("заголовок не может быть длиннее 200 символов")
	}
	return nil
}

// TruncateMessage обрезает сообщение до maxRunes символов для превью в уведомлении.
func TruncateMessage(message string, maxRunes int) string {
	if utf8.RuneCountInString(message) <= maxRunes {
		return message
	}
	runes := []rune(message)
	return string(runes[:maxRunes]) + "…"
}
