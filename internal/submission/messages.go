package submission

import "errors"

// User-facing rejection messages. The form audience is Russian-speaking, so
// the texts match the strings the site has always shown; internals never leak
// into them.
const (
	msgMissingFields      = "Отсутствуют обязательные поля"
	msgInvalidEmail       = "Неверный формат email"
	msgMessageTooLong     = "Сообщение слишком длинное"
	msgBotDetected        = "Bot detected"
	msgStoreMisconfigured = "Таблица заявок не найдена. Выполните миграцию базы данных."
	msgServerError        = "Ошибка сервера"
)

// UserMessage maps a submission error to the text shown to the caller.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return msgMissingFields
	case errors.Is(err, ErrInvalidEmail):
		return msgInvalidEmail
	case errors.Is(err, ErrFieldTooLong):
		return msgMessageTooLong
	case errors.Is(err, ErrBotDetected):
		return msgBotDetected
	case errors.Is(err, ErrStoreMisconfigured):
		return msgStoreMisconfigured
	default:
		return msgServerError
	}
}
