package errors

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// UserMessage returns a user-friendly error message
func UserMessage(err error) string {
	if pErr, ok := err.(*ProbeError); ok {
		return formatUserError(pErr)
	}
	return err.Error()
}

// formatUserError creates user-friendly error messages based on error type
func formatUserError(pErr *ProbeError) string {
	switch pErr.Type {
	case ErrorTypeTimeout, ErrorTypeTooManyRedirects, ErrorTypeConnection, ErrorTypeRequest:
		return formatTransportError(pErr)
	case ErrorTypeCatalog:
		return formatCatalogError(pErr)
	case ErrorTypeConfig:
		return formatConfigError(pErr)
	default:
		return pErr.Message
	}
}

func formatTransportError(pErr *ProbeError) string {
	msg := pErr.Message
	if url, ok := pErr.Context["url"]; ok {
		msg = fmt.Sprintf("Transport error probing %s: %s", url, msg)
	}

	return msg
}

func formatCatalogError(pErr *ProbeError) string {
	msg := pErr.Message
	if source, ok := pErr.Context["source"]; ok {
		msg = fmt.Sprintf("Catalog error (%s): %s", source, msg)
	}

	return msg
}

func formatConfigError(pErr *ProbeError) string {
	msg := pErr.Message

	if configType, ok := pErr.Context["config_type"]; ok {
		msg = fmt.Sprintf("Configuration error (%s): %s", configType, msg)
	}

	return msg
}

// PresentError displays an error to the user through the zerolog global logger
func PresentError(err error) {
	if err == nil {
		return
	}

	if pErr, ok := err.(*ProbeError); ok {
		event := log.Fatal()

		for key, value := range pErr.Context {
			event = event.Interface(key, value)
		}

		event.Msg(pErr.Message)
	} else {
		log.Fatal().Err(err).Msg("")
	}
}

// DebugInfo returns detailed error information for debugging
func DebugInfo(err error) map[string]interface{} {
	info := map[string]interface{}{
		"error":   err.Error(),
		"type":    "unknown",
		"context": map[string]interface{}{},
	}

	if pErr, ok := err.(*ProbeError); ok {
		info["type"] = string(pErr.Type)
		info["message"] = pErr.Message
		info["context"] = pErr.Context

		if pErr.Cause != nil {
			info["cause"] = pErr.Cause.Error()
		}
	}

	return info
}
