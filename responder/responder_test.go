package responder

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type statusErr struct{ status int }

func (e statusErr) Error() string   { return "status error" }
func (e statusErr) StatusCode() int { return e.status }

func decodeProblem(t *testing.T, body []byte) ProblemDetails {
	t.Helper()

	var problem ProblemDetails
	if err := json.Unmarshal(body, &problem); err != nil {
		t.Fatalf("failed to decode problem: %v (body: %s)", err, body)
	}
	return problem
}

func TestHandleErrorsUsesStatusCoder(t *testing.T) {
	r := NewResponder()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/items", nil)

	r.HandleErrors(rec, req, errors.Join(errors.New("wrapped"), statusErr{status: http.StatusConflict}))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
	if problem := decodeProblem(t, rec.Body.Bytes()); problem.Status != http.StatusConflict {
		t.Fatalf("expected problem status %d, got %d", http.StatusConflict, problem.Status)
	}
}

func TestHandleErrorsDefaultsToInternalServerError(t *testing.T) {
	r := NewResponder()
	rec := httptest.NewRecorder()

	r.HandleErrors(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
	if problem := decodeProblem(t, rec.Body.Bytes()); problem.Detail != "boom" {
		t.Fatalf("expected detail boom, got %q", problem.Detail)
	}
}

func TestHandleAPIErrorIgnoresNilError(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResponder().HandleAPIError(rec, nil, http.StatusBadRequest, nil)

	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
}

func TestProblemReusesContextTraceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/items", nil)
	req = req.WithContext(ContextWithTraceID(req.Context(), "01HZZZTRACE"))
	rec := httptest.NewRecorder()

	NewResponder().HandleBadRequestError(rec, req, errors.New("bad"))

	if problem := decodeProblem(t, rec.Body.Bytes()); problem.TraceID != "01HZZZTRACE" {
		t.Fatalf("expected trace id from context, got %q", problem.TraceID)
	}
}

func TestProblemInstanceSurvivesStripPrefix(t *testing.T) {
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NewResponder().HandleUnauthorizedError(w, r, errors.New("missing key"))
	})
	handler = http.StripPrefix("/v1", handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/secret?x=1", nil))

	if problem := decodeProblem(t, rec.Body.Bytes()); problem.Instance != "/v1/secret?x=1" {
		t.Fatalf("expected instance to keep the mount prefix, got %q", problem.Instance)
	}
}

func TestNewTraceIDIsMonotonic(t *testing.T) {
	a, b := NewTraceID(), NewTraceID()
	if len(a) != 26 || len(b) != 26 {
		t.Fatalf("expected 26 character ULIDs, got %q and %q", a, b)
	}
	if a >= b {
		t.Fatalf("expected increasing ids, got %q then %q", a, b)
	}
}

func TestErrorDetailsOnlyHideServerErrors(t *testing.T) {
	r := NewResponder(WithErrorDetails(false))

	rec := httptest.NewRecorder()
	r.HandleBadRequestError(rec, nil, errors.New("page must be an integer"))
	if problem := decodeProblem(t, rec.Body.Bytes()); problem.Detail != "page must be an integer" {
		t.Fatalf("expected client error detail to be kept, got %q", problem.Detail)
	}

	rec = httptest.NewRecorder()
	r.HandleAPIError(rec, nil, http.StatusBadGateway, errors.New("response body invalid"))
	if problem := decodeProblem(t, rec.Body.Bytes()); problem.Detail != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("expected detail to be hidden, got %q", problem.Detail)
	}
}

func TestDecodeBody(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		var v map[string]any
		if err := DecodeBody(req, &v); !errors.Is(err, ErrEmptyBody) {
			t.Fatalf("expected ErrEmptyBody, got %v", err)
		}
	})

	t.Run("valid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
		var v map[string]any
		if err := DecodeBody(req, &v); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if v["name"] != "x" {
			t.Fatalf("expected name x, got %v", v["name"])
		}
	})

	t.Run("read request body answers 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		rec := httptest.NewRecorder()
		var v map[string]any
		if NewResponder().ReadRequestBody(rec, req, &v) {
			t.Fatal("expected decoding to fail")
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})
}

func TestRespondWithBody(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResponder().RespondWithBody(rec, http.StatusCreated, "", []byte("{}\n"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected application/json, got %s", got)
	}
}
