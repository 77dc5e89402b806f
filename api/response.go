package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/pkg/logging"
)

// APIResponse 是所有接口统一的响应信封。
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Version   uint64    `json:"version,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, response *APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("response write failed")
	}
}

func respondData(w http.ResponseWriter, data any, version uint64) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: Metadata{Timestamp: time.Now(), Version: version},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		ev := logging.Warn()
		if status >= http.StatusInternalServerError {
			ev = logging.Error()
		}
		ev.Err(err).Str("code", code).Int("status", status).Msg("api error")
	}
	respondJSON(w, status, &APIResponse{
		Status:   "error",
		Metadata: Metadata{Timestamp: time.Now()},
		Error:    &APIError{Code: code, Message: message},
	})
}

// respondDomainError 把 DomainError 的错误码映射为 HTTP 状态码。
func respondDomainError(w http.ResponseWriter, err error) {
	de := core.GetDomainError(err)
	if de == nil {
		respondError(w, http.StatusInternalServerError, core.ErrorCodeInternalError, "internal error", err)
		return
	}
	status := http.StatusInternalServerError
	switch de.Code {
	case core.ErrorCodeNotFound:
		status = http.StatusNotFound
	case core.ErrorCodeInvalidInput, core.ErrorCodeMalformedRecord:
		status = http.StatusBadRequest
	case core.ErrorCodeUnavailable:
		status = http.StatusServiceUnavailable
	case core.ErrorCodeNotSupported:
		status = http.StatusNotImplemented
	}
	respondError(w, status, de.Code, de.Message, err)
}
