package repository

import (
	"strings"
	"testing"

	"crm_backend/internal/transactions/domain"

	"github.com/google/uuid"
)

func TestLedgerHasNoMutatingStatements(t *testing.T) {
	for _, query := range []string{insertTransactionQuery, transactionSelectCols} {
		lower := strings.ToLower(query)
		for _, forbidden := range []string{"update lead_transactions", "delete from lead_transactions", "on conflict"} {
			if strings.Contains(lower, forbidden) {
				t.Fatalf("ledger query must be append-only, found %q", forbidden)
			}
		}
	}
}

func TestBuildListFilterScopesByCompany(t *testing.T) {
	leadID := uuid.New()
	typ := domain.TypeStageChange
	where, args := buildListFilter(ListParams{CompanyID: uuid.New(), LeadID: &leadID, Type: &typ})

	if where != "company_id = $1 AND lead_id = $2 AND type = $3" {
		t.Fatalf("where = %q", where)
	}
	if len(args) != 3 || args[2] != "stage_change" {
		t.Fatalf("args = %v", args)
	}
}

func TestOrderClause(t *testing.T) {
	if got := orderClause(SortAsc); got != "created_at ASC, id ASC" {
		t.Errorf("asc = %q", got)
	}
	if got := orderClause(SortDesc); got != "created_at DESC, id DESC" {
		t.Errorf("desc = %q", got)
	}
	if got := orderClause(""); !strings.Contains(got, "DESC") {
		t.Errorf("default should be newest first, got %q", got)
	}
}

// jsonRow fills the three jsonb columns of a ledger row and leaves the rest
// zero.
type jsonRow struct {
	previous, current, metadata string
}

func (r jsonRow) Scan(dest ...any) error {
	*dest[7].(*[]byte) = []byte(r.previous)
	*dest[8].(*[]byte) = []byte(r.current)
	*dest[9].(*[]byte) = []byte(r.metadata)
	return nil
}

func TestScanTransactionDecodesPayloads(t *testing.T) {
	tx, err := scanTransaction(jsonRow{previous: `{"stage_name":"Entry"}`, metadata: `{"sla_hours":24}`})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if tx.PreviousData["stage_name"] != "Entry" {
		t.Fatalf("previous = %v", tx.PreviousData)
	}
	if tx.CurrentData != nil {
		t.Fatalf("empty current_data should stay nil, got %v", tx.CurrentData)
	}
	if tx.Metadata["sla_hours"] != float64(24) {
		t.Fatalf("metadata = %v", tx.Metadata)
	}
}

func TestScanTransactionRejectsCorruptPayload(t *testing.T) {
	_, err := scanTransaction(jsonRow{current: `{"stage_name":`})
	if err == nil {
		t.Fatal("expected decode error for corrupt current_data")
	}
	if !strings.Contains(err.Error(), "current_data") {
		t.Fatalf("error should name the column, got %v", err)
	}
}
