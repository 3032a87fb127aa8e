package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "stylefix/internal/platform/errors"
	pnet "stylefix/internal/platform/net"
)

func TestRecoverJSON_WritesEnvelope(t *testing.T) {
	h := RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(pnet.WithRequestID(req.Context(), "rid-7"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError || rec.Header().Get("X-Request-ID") != "rid-7" {
		t.Fatalf("status = %d, header = %q", rec.Code, rec.Header().Get("X-Request-ID"))
	}
	var body pnet.Wire
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != perr.ErrorCodePanic || body.RequestID != "rid-7" || body.Error != "panic recovered" {
		t.Fatalf("body = %+v", body)
	}
}

func TestRecoverJSON_RepanicsAbort(t *testing.T) {
	h := RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(http.ErrAbortHandler) }))
	defer func() {
		if v := recover(); v != http.ErrAbortHandler {
			t.Fatalf("recovered %v, want ErrAbortHandler", v)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
