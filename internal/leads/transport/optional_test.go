package transport

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestAssignRequestDistinguishesNullFromMissing(t *testing.T) {
	id := uuid.New()
	cases := []struct {
		name    string
		body    string
		wantSet bool
		wantID  *uuid.UUID
	}{
		{"missing", `{}`, false, nil},
		{"null", `{"userId":null}`, true, nil},
		{"empty", `{"userId":""}`, true, nil},
		{"value", `{"userId":"` + id.String() + `"}`, true, &id},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req AssignLeadRequest
			if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if req.UserID.Set != tc.wantSet {
				t.Fatalf("Set = %v, want %v", req.UserID.Set, tc.wantSet)
			}
			if (req.UserID.Value == nil) != (tc.wantID == nil) || (tc.wantID != nil && *req.UserID.Value != *tc.wantID) {
				t.Fatalf("Value = %v, want %v", req.UserID.Value, tc.wantID)
			}
		})
	}
}

func TestAssignRequestRejectsMalformedID(t *testing.T) {
	var req AssignLeadRequest
	if err := json.Unmarshal([]byte(`{"userId":"nope"}`), &req); err == nil {
		t.Fatal("expected error")
	}
}
