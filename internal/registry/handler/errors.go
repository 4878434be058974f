package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"namereg/internal/registry/models"
	dErrors "namereg/pkg/domain-errors"
)

// writeError centralizes domain error translation to HTTP responses. Registry
// errors surface their tag so clients can branch on a stable identifier;
// everything else falls back to the coded-error mapping.
func writeError(w http.ResponseWriter, err error) {
	var regErr models.RegistryError
	if errors.As(err, &regErr) {
		writeJSONError(w, tagToHTTPStatus(regErr.Tag()), regErr.Tag(), regErr.Error())
		return
	}

	var coded *dErrors.Error
	if errors.As(err, &coded) {
		writeJSONError(w, dErrors.ToHTTPStatus(coded.Code), string(coded.Code), coded.Message)
		return
	}

	writeJSONError(w, http.StatusInternalServerError, string(dErrors.CodeInternal), "internal error")
}

func tagToHTTPStatus(tag string) int {
	switch tag {
	case "invalid_domain_name_length", "invalid_domain_extension", "invalid_domain_key", "invalid_duration":
		return http.StatusBadRequest
	case "domain_not_found":
		return http.StatusNotFound
	case "domain_already_claimed", "domain_reserved", "domain_still_valid":
		return http.StatusConflict
	case "caller_not_domain_owner", "caller_not_registry_owner", "domain_ownership_expired":
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
