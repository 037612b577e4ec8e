package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusBadRequest},
		{KindBadRequest, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindForbidden, http.StatusForbidden},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindInternal, http.StatusInternalServerError},
		{KindUnprocessable, http.StatusUnprocessableEntity},
		{KindUnknown, http.StatusBadRequest},
	}

	for _, tc := range cases {
		got := New(tc.kind, "x").HTTPStatus()
		if got != tc.want {
			t.Errorf("kind %d: status = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestWithDetailsKeepsSentinelIdentity(t *testing.T) {
	sentinel := Unprocessable("invalid stage order")
	derived := sentinel.WithDetails(map[string]int{"max": 4})

	if !errors.Is(derived, sentinel) {
		t.Fatal("expected derived error to match its sentinel")
	}
	if sentinel.Details != nil {
		t.Fatal("WithDetails must not mutate the sentinel")
	}
}

func TestGetKindFollowsWrapping(t *testing.T) {
	err := fmt.Errorf("move stage: %w", NotFound("stage not found"))

	if GetKind(err) != KindNotFound {
		t.Fatalf("kind = %v, want KindNotFound", GetKind(err))
	}
	if !Is(err, KindNotFound) {
		t.Fatal("Is should report KindNotFound through wrapping")
	}
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatal("plain errors must be KindUnknown")
	}
}

func TestErrorIncludesOp(t *testing.T) {
	err := Conflict("duplicate").WithOp("create funnel")
	if err.Error() != "create funnel: duplicate" {
		t.Fatalf("Error() = %q", err.Error())
	}
}
