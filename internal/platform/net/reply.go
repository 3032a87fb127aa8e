package net

import (
	"net/http"

	perr "stylefix/internal/platform/errors"
)

// Wire is the status part of every response envelope
type Wire struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	Op         string         `json:"op,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
}

// Status is a bare envelope for a non-error status
func Status(status int, reqID string) Wire {
	return Wire{StatusCode: status, Status: http.StatusText(status), RequestID: reqID}
}

// Error maps err to a status and envelope; a nil err is a bare 200
func Error(err error, reqID string) (int, Wire) {
	if err == nil {
		return http.StatusOK, Status(http.StatusOK, reqID)
	}
	status := perr.HTTPStatus(err)
	wr := perr.WireFrom(err)
	w := Status(status, reqID)
	w.Code, w.Error, w.Field, w.Op = wr.Code, wr.Message, wr.Field, wr.Op
	return status, w
}
