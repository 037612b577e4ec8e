package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func testLead() LeadRef {
	return LeadRef{ID: uuid.New(), CompanyID: uuid.New()}
}

func TestStageChangeCarriesStagesAndIsImportant(t *testing.T) {
	lead := testLead()
	from := StageRef{ID: uuid.New(), Name: "Entry"}
	to := StageRef{ID: uuid.New(), Name: "Contacted"}
	actor := UserActor(uuid.New(), "Ana")

	rec := StageChange(lead, actor, from, to)

	if rec.Type != TypeStageChange || rec.Action != ActionMoved {
		t.Fatalf("type/action = %s/%s", rec.Type, rec.Action)
	}
	if rec.FromStageID == nil || *rec.FromStageID != from.ID || rec.ToStageID == nil || *rec.ToStageID != to.ID {
		t.Fatal("from/to stage ids not populated")
	}
	if rec.Description != "Ana moved lead from 'Entry' to 'Contacted'" {
		t.Fatalf("description = %q", rec.Description)
	}
	if !rec.IsImportant || !rec.IsVisible {
		t.Fatal("stage changes must be important and visible")
	}
	if rec.Source != SourceManual || rec.IsAutomated {
		t.Fatal("user moves are manual")
	}
}

func TestSystemActorHasNoUser(t *testing.T) {
	rec := StageChange(testLead(), SystemActor(), StageRef{ID: uuid.New()}, StageRef{ID: uuid.New()})

	if rec.UserID != nil {
		t.Fatal("system actor must leave user_id empty")
	}
	if rec.Source != SourceSystem || !rec.IsAutomated {
		t.Fatalf("source = %s automated = %v", rec.Source, rec.IsAutomated)
	}
	if !strings.HasPrefix(rec.Description, "System ") {
		t.Fatalf("description = %q", rec.Description)
	}
}

func TestAssignmentActions(t *testing.T) {
	ana := &UserRef{ID: uuid.New(), Name: "Ana"}
	bruno := &UserRef{ID: uuid.New(), Name: "Bruno"}
	actor := SystemActor()

	cases := []struct {
		name       string
		from, to   *UserRef
		wantAction string
		wantDesc   string
	}{
		{"assign", nil, ana, ActionAssigned, "System assigned lead to Ana"},
		{"reassign", ana, bruno, ActionReassigned, "System reassigned lead from Ana to Bruno"},
		{"unassign", bruno, nil, ActionUnassigned, "System unassigned lead"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := Assignment(testLead(), actor, tc.from, tc.to)
			if rec.Action != tc.wantAction {
				t.Errorf("action = %s, want %s", rec.Action, tc.wantAction)
			}
			if rec.Description != tc.wantDesc {
				t.Errorf("description = %q, want %q", rec.Description, tc.wantDesc)
			}
			if !rec.IsImportant {
				t.Error("assignments must be important")
			}
		})
	}
}

func TestQualificationDescriptionIncludesReason(t *testing.T) {
	reason := "budget confirmed"
	rec := Qualification(testLead(), UserActor(uuid.New(), "Ana"), nil, true, &reason)

	if rec.Description != "Ana qualified the lead: budget confirmed" {
		t.Fatalf("description = %q", rec.Description)
	}
	if rec.Qualification == nil || !*rec.Qualification || !rec.IsImportant {
		t.Fatal("qualification flag and importance not set")
	}

	rec = Qualification(testLead(), UserActor(uuid.New(), "Ana"), rec.Qualification, false, nil)
	if rec.Action != ActionUnqualified || rec.Description != "Ana marked lead as unqualified" {
		t.Fatalf("unexpected unqualify entry: %s %q", rec.Action, rec.Description)
	}
	if rec.PreviousData["is_qualified"] != true {
		t.Fatalf("previous data = %v", rec.PreviousData)
	}
}

func TestLowSignalEntriesAreNotImportant(t *testing.T) {
	lead := testLead()
	actor := UserActor(uuid.New(), "Ana")
	platform := "instagram"

	records := []Record{
		Contact(lead, actor, "whatsapp", DirectionOutbound, nil),
		StatusChange(lead, actor, "new", "contacted"),
		Note(lead, actor, "call back friday"),
		Creation(lead, APIActor("site form"), &platform, nil),
	}

	for _, rec := range records {
		if rec.IsImportant {
			t.Errorf("%s should not be important", rec.Type)
		}
	}
}

func TestContactDirection(t *testing.T) {
	actor := UserActor(uuid.New(), "Ana")

	out := Contact(testLead(), actor, "phone", DirectionOutbound, nil)
	in := Contact(testLead(), actor, "email", DirectionInbound, nil)

	if out.Action != ActionContacted || out.Description != "Ana contacted lead via phone" {
		t.Errorf("outbound = %s %q", out.Action, out.Description)
	}
	if in.Action != ActionReceivedContact || in.Description != "Ana received contact via email" {
		t.Errorf("inbound = %s %q", in.Action, in.Description)
	}
}

func TestCreationFromAPI(t *testing.T) {
	platform := "landing-page"
	rec := Creation(testLead(), APIActor("Site"), &platform, map[string]any{"first_name": "Rita"})

	if rec.Description != "Site created the lead from landing-page" {
		t.Fatalf("description = %q", rec.Description)
	}
	if rec.Source != SourceAPI || rec.UserID != nil || !rec.IsAutomated {
		t.Fatal("API creations are automated without a user")
	}
}

func TestStatusChangeStoresBothStatuses(t *testing.T) {
	rec := StatusChange(testLead(), SystemActor(), "new", "lost")
	if *rec.PreviousStatus != "new" || *rec.CurrentStatus != "lost" {
		t.Fatal("statuses not recorded")
	}
	if rec.Description != "System changed status from 'new' to 'lost'" {
		t.Fatalf("description = %q", rec.Description)
	}
}
