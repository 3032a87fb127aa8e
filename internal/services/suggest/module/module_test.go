package module

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stylefix/internal/modkit"
	"stylefix/internal/platform/config"
	perr "stylefix/internal/platform/errors"
	phttp "stylefix/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestFromConfig_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("CORE_SUGGEST_DEADLINE", "2s")
	t.Setenv("CORE_SUGGEST_DETERMINISTIC_FIRST", "true")
	t.Setenv("CORE_EVENTS_ENABLED", "true")

	o := FromConfig(config.New())
	if o.Deadline != 2*time.Second || !o.DeterministicFirst || !o.Events.Enabled {
		t.Fatalf("overrides not applied: %+v", o)
	}
	if o.MaxSuggestions != 3 || o.Workers != 4 {
		t.Fatalf("defaults not applied: %+v", o)
	}
}

func TestNew_EventsWithoutClickhouseStayOff(t *testing.T) {
	m := New(modkit.Deps{}, Options{Events: EventsOptions{Enabled: true}})
	if m.events != nil {
		t.Fatalf("events writer should be nil without clickhouse")
	}
	if err := m.Run(t.Context()); err != nil {
		t.Fatalf("Run without events = %v", err)
	}
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Code       perr.ErrorCode  `json:"code"`
	Data       json.RawMessage `json:"data"`
}

func post(t *testing.T, url, body string) (int, envelope) {
	t.Helper()
	res, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer func() { _ = res.Body.Close() }()
	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return res.StatusCode, env
}

func TestModule_Routes(t *testing.T) {
	m := New(modkit.Deps{}, Options{}, modkit.WithPorts(Requires{}))
	if m.Name() != "suggest" || m.Prefix() != "/suggestions" {
		t.Fatalf("name/prefix = %s %s", m.Name(), m.Prefix())
	}
	if _, ok := m.Ports().(Ports); !ok {
		t.Fatalf("ports type = %T", m.Ports())
	}

	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	status, env := post(t, srv.URL+"/suggestions/resolve",
		`{"sentence":"The file was deleted.","issue_message":"Avoid passive voice.","issue_category":"passive_voice"}`)
	if status != http.StatusOK {
		t.Fatalf("resolve status = %d", status)
	}
	var res struct {
		Method      string `json:"method"`
		Suggestions []struct {
			Text       string `json:"text"`
			Source     string `json:"source"`
			Confidence string `json:"confidence"`
		} `json:"suggestions"`
	}
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if res.Method != "deterministic-fallback" || len(res.Suggestions) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if s := res.Suggestions[0]; s.Text != "The system deleted the file." || s.Source != "deterministic" || s.Confidence != "high" {
		t.Fatalf("suggestion = %+v", s)
	}

	status, env = post(t, srv.URL+"/suggestions/document",
		`{"text":"The file was deleted. Revenue grew.","issues":[{"category":"passive_voice","start":9,"end":20}]}`)
	if status != http.StatusOK {
		t.Fatalf("document status = %d", status)
	}
	var doc struct {
		Results []struct {
			Issue struct {
				Sentence string `json:"sentence"`
			} `json:"issue"`
		} `json:"results"`
	}
	if err := json.Unmarshal(env.Data, &doc); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(doc.Results) != 1 || doc.Results[0].Issue.Sentence != "The file was deleted." {
		t.Fatalf("document = %+v", doc)
	}
}

func TestModule_RejectsInvalidInput(t *testing.T) {
	m := New(modkit.Deps{}, Options{})
	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tests := []struct {
		name string
		path string
		body string
		code perr.ErrorCode
	}{
		{name: "missing sentence", path: "/suggestions/resolve", body: `{"issue_message":"x"}`, code: perr.ErrorCodeValidation},
		{name: "unknown category", path: "/suggestions/resolve", body: `{"sentence":"x","issue_category":"tone"}`, code: perr.ErrorCodeInvalidArgument},
		{name: "too many suggestions", path: "/suggestions/resolve", body: `{"sentence":"x","max_suggestions":9}`, code: perr.ErrorCodeValidation},
		{name: "span outside text", path: "/suggestions/document", body: `{"text":"Short.","issues":[{"start":2,"end":40}]}`, code: perr.ErrorCodeInvalidArgument},
		{name: "no issues", path: "/suggestions/document", body: `{"text":"Short.","issues":[]}`, code: perr.ErrorCodeValidation},
		{name: "bad json", path: "/suggestions/resolve", body: `{"sentence":`, code: perr.ErrorCodeJSON},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, env := post(t, srv.URL+tc.path, tc.body)
			if env.Code != tc.code {
				t.Fatalf("code = %v, want %v", env.Code, tc.code)
			}
			if status != tc.code.Status() || env.StatusCode != status {
				t.Fatalf("status = %d (envelope %d), want %d", status, env.StatusCode, tc.code.Status())
			}
		})
	}
}
