package service

import "strings"

const assistantMarker = "Assistant:"

// extractAssistantReply se queda con lo que sigue al último "Assistant:" del texto generado.
// Los modelos de completado devuelven el prompt entero como prefijo.
func extractAssistantReply(generated string) string {
	s := strings.TrimPrefix(generated, "\uFEFF")
	if idx := strings.LastIndex(s, assistantMarker); idx >= 0 {
		s = s[idx+len(assistantMarker):]
	}
	return strings.TrimSpace(s)
}
