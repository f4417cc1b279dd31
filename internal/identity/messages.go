package identity

import "net/http"

var messages = map[string]map[Reason]string{
	"es": {
		ReasonEmailInUse:          "Este email ya está registrado",
		ReasonInvalidEmail:        "Email inválido",
		ReasonWeakPassword:        "La contraseña es muy débil",
		ReasonInvalidDisplayName:  "El nombre debe tener al menos 2 caracteres",
		ReasonOperationNotAllowed: "Operación no permitida",
		ReasonUserNotFound:        "Usuario no encontrado",
		ReasonWrongPassword:       "Contraseña incorrecta",
		ReasonUserDisabled:        "Usuario deshabilitado",
		ReasonTooManyRequests:     "Demasiados intentos. Intenta más tarde",
		ReasonNetwork:             "Error de conexión. Verifica tu internet",
	},
	"en": {
		ReasonEmailInUse:          "This email is already registered",
		ReasonInvalidEmail:        "Invalid email",
		ReasonWeakPassword:        "The password is too weak",
		ReasonInvalidDisplayName:  "The name must be at least 2 characters long",
		ReasonOperationNotAllowed: "Operation not allowed",
		ReasonUserNotFound:        "User not found",
		ReasonWrongPassword:       "Wrong password",
		ReasonUserDisabled:        "User disabled",
		ReasonTooManyRequests:     "Too many attempts. Try again later",
		ReasonNetwork:             "Connection error. Check your network",
	},
}

const fallbackLocale = "es"

// Message returns the user-facing text for reason in locale, falling back to Spanish.
func Message(reason Reason, locale string) string {
	table, ok := messages[locale]
	if !ok {
		table = messages[fallbackLocale]
	}
	if msg, ok := table[reason]; ok {
		return msg
	}
	if locale == "en" {
		return "Authentication failed"
	}
	return "Error de autenticación"
}

// HTTPStatus returns the response status used for reason.
func HTTPStatus(reason Reason) int {
	switch reason {
	case ReasonEmailInUse:
		return http.StatusConflict
	case ReasonInvalidEmail, ReasonWeakPassword, ReasonInvalidDisplayName:
		return http.StatusBadRequest
	case ReasonUserDisabled, ReasonOperationNotAllowed:
		return http.StatusForbidden
	case ReasonTooManyRequests:
		return http.StatusTooManyRequests
	case ReasonNetwork:
		return http.StatusServiceUnavailable
	}
	return http.StatusUnauthorized
}
