package v1

import "strings"

// sanitizeValidationError returns a client-safe message for a rejected update.
// Raw binding and decoding errors never reach clients.
func sanitizeValidationError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if strings.Contains(msg, "cannot unmarshal") ||
		strings.Contains(msg, "bind") ||
		strings.Contains(msg, "Key:") {
		return "Solicitud inválida."
	}
	// "update profile "7": field "nombre": invalid field value"
	if i := strings.Index(msg, "field "); i >= 0 && len(msg)-i < 100 {
		return "Valor inválido: " + msg[i:]
	}
	return "Solicitud inválida."
}
