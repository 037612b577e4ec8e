package repository

import (
	"strings"
	"testing"

	"crm_backend/internal/leads/domain"

	"github.com/google/uuid"
)

func TestMutationsLockTheLeadRow(t *testing.T) {
	if !strings.Contains(lockLeadQuery, "FOR UPDATE") || !strings.Contains(lockLeadQuery, "deleted_at IS NULL") {
		t.Fatalf("lock query must lock an active lead: %s", lockLeadQuery)
	}
	if !strings.Contains(moveStageQuery, "stage_changed_at") {
		t.Fatal("stage moves must stamp stage_changed_at")
	}
}

func TestBuildListFilter(t *testing.T) {
	funnelID := uuid.New()
	status := domain.StatusContacted
	where, args := buildListFilter(ListParams{CompanyID: uuid.New(), FunnelID: &funnelID, Status: &status})

	want := "company_id = $1 AND deleted_at IS NULL AND funnel_id = $2 AND status = $3"
	if where != want {
		t.Fatalf("where = %q, want %q", where, want)
	}
	if len(args) != 3 || args[2] != "contacted" {
		t.Fatalf("args = %v", args)
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_off\`); got != `50\%\_off\\` {
		t.Fatalf("got %q", got)
	}
}
