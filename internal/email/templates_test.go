package email

import (
	"context"
	"strings"
	"testing"
)

func TestRenderLeadAssigned(t *testing.T) {
	out, err := renderEmailTemplate("lead_assigned.html", leadAssignedEmailData{
		baseEmailData:    baseEmailData{Title: "New lead assigned", Heading: "A lead was assigned to you"},
		LeadAssignedData: LeadAssignedData{RecipientName: "Bruno", LeadName: "Maria <Silva>", AssignedBy: "Ana"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Hi Bruno", "Ana assigned", "Maria &lt;Silva&gt;", "A lead was assigned to you"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderStageSLABreached(t *testing.T) {
	out, err := renderEmailTemplate("stage_sla_breached.html", stageSLABreachedEmailData{
		baseEmailData:        baseEmailData{Title: "t", Heading: "h"},
		StageSLABreachedData: StageSLABreachedData{RecipientName: "Bruno", LeadName: "Maria", StageName: "Contacted", SLAHours: 72},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "more than 72 hours") || !strings.Contains(out, "Contacted") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestNoopSenderAcceptsEverything(t *testing.T) {
	var s Sender = NoopSender{}
	if err := s.SendLeadAssignedEmail(context.Background(), "a@example.com", LeadAssignedData{}); err != nil {
		t.Fatalf("noop: %v", err)
	}
}
