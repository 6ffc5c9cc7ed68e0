package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "github.com/trackback-blockchain/plug-blockchain/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", body["error"])
		}
		if body["error_description"] != "invalid input" {
			t.Fatalf("expected error_description to be returned for bad request")
		}
	})

	t.Run("ledger codes map to their statuses", func(t *testing.T) {
		cases := []struct {
			code   dErrors.Code
			status int
		}{
			{dErrors.CodeZeroAmount, http.StatusBadRequest},
			{dErrors.CodeIdUnavailable, http.StatusBadRequest},
			{dErrors.CodeNoMintPermission, http.StatusForbidden},
			{dErrors.CodeNoBurnPermission, http.StatusForbidden},
			{dErrors.CodeNoUpdatePermission, http.StatusForbidden},
			{dErrors.CodeIdAlreadyTaken, http.StatusConflict},
			{dErrors.CodeNoIdAvailable, http.StatusConflict},
			{dErrors.CodeInsufficientBalance, http.StatusConflict},
			{dErrors.CodeNotFound, http.StatusNotFound},
		}
		for _, tc := range cases {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.New(tc.code, "nope"))
			if w.Code != tc.status {
				t.Errorf("%s: expected status %d, got %d", tc.code, tc.status, w.Code)
			}
		}
	})
}

type validatedRequest struct {
	Amount uint64 `json:"amount"`
}

func (r *validatedRequest) Validate() error {
	if r.Amount == 0 {
		return dErrors.New(dErrors.CodeZeroAmount, "amount must be nonzero")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("decodes and validates", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount": 5}`))

		req, ok := DecodeAndPrepare[validatedRequest](w, r, nil, r.Context(), "")
		if !ok {
			t.Fatalf("expected decode to succeed")
		}
		if req.Amount != 5 {
			t.Fatalf("expected amount 5, got %d", req.Amount)
		}
	})

	t.Run("malformed body writes bad_request", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))

		_, ok := DecodeAndPrepare[validatedRequest](w, r, nil, r.Context(), "")
		if ok {
			t.Fatalf("expected decode to fail")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("validation failure writes the coded error", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount": 0}`))

		_, ok := DecodeAndPrepare[validatedRequest](w, r, nil, r.Context(), "")
		if ok {
			t.Fatalf("expected validation to fail")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "zero_amount" {
			t.Fatalf("expected error code zero_amount, got %q", body["error"])
		}
	})
}
