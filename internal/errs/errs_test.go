package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	tests := []struct {
		name       string
		err        error
		wantKind   Kind
		wantStatus int
		wantPublic string
	}{
		{"unauthorized", Unauthorized("no session"), KindUnauthorized, http.StatusUnauthorized, "no session"},
		{"not found", NotFound("post not found"), KindNotFound, http.StatusNotFound, "post not found"},
		{"invalid", Invalidf("bad %s", "id"), KindInvalidInput, http.StatusBadRequest, "bad id"},
		{"conflict", Conflict("email taken"), KindConflict, http.StatusConflict, "email taken"},
		{"upstream", Upstream("media store", cause), KindUpstreamFailure, http.StatusInternalServerError, "media store"},
		{"upstream no msg", Upstream("", cause), KindUpstreamFailure, http.StatusInternalServerError, "upstream service failure"},
		{"internal", Internal(cause), KindServerError, http.StatusInternalServerError, "internal server error"},
		{"plain", cause, KindServerError, http.StatusInternalServerError, "internal server error"},
		{"wrapped", fmt.Errorf("load post: %w", NotFound("post not found")), KindNotFound, http.StatusNotFound, "post not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.wantKind {
				t.Errorf("KindOf() = %v, want %v", got, tt.wantKind)
			}
			if got := KindOf(tt.err).HTTPStatus(); got != tt.wantStatus {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.wantStatus)
			}
			if got := From(tt.err).Public(); got != tt.wantPublic {
				t.Errorf("Public() = %q, want %q", got, tt.wantPublic)
			}
		})
	}
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause)
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(%v, cause) = false", err)
	}
	if Internal(nil) != nil {
		t.Fatal("Internal(nil) should be nil")
	}
	if Is(nil, KindServerError) {
		t.Fatal("Is(nil) should be false")
	}
}
