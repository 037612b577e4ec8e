package domain

import (
	funnels "crm_backend/internal/funnels/domain"

	"github.com/google/uuid"
)

// Direction selects the neighbour for an adjacent move.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// ResolveTarget checks that stageID is a live stage of the lead's funnel.
// stages are the funnel's stages, deleted ones included.
func ResolveTarget(lead Lead, stages []funnels.Stage, stageID uuid.UUID) (funnels.Stage, error) {
	for _, s := range stages {
		if s.ID != stageID {
			continue
		}
		if s.FunnelID != lead.FunnelID || s.IsDeleted() {
			return funnels.Stage{}, ErrInvalidStageForFunnel
		}
		return s, nil
	}
	return funnels.Stage{}, ErrInvalidStageForFunnel
}

// ResolveAdjacent finds the live stage next to the lead's current one.
func ResolveAdjacent(lead Lead, stages []funnels.Stage, dir Direction) (funnels.Stage, error) {
	live := liveStages(stages)
	var current funnels.Stage
	found := false
	for _, s := range live {
		if s.ID == lead.StageID {
			current, found = s, true
			break
		}
	}
	if !found {
		return funnels.Stage{}, ErrNoAdjacentStage
	}

	var (
		target funnels.Stage
		ok     bool
	)
	if dir == Forward {
		target, ok = funnels.Next(live, current)
	} else {
		target, ok = funnels.Previous(live, current)
	}
	if !ok {
		return funnels.Stage{}, ErrNoAdjacentStage
	}
	return target, nil
}

// FirstStage is where a lead created without a stage lands.
func FirstStage(stages []funnels.Stage) (funnels.Stage, error) {
	live := liveStages(stages)
	if len(live) == 0 {
		return funnels.Stage{}, ErrFunnelNoStages
	}
	first := live[0]
	for _, s := range live[1:] {
		if s.Order < first.Order {
			first = s
		}
	}
	return first, nil
}

// EntryStage is the lowest-ordered live stage of type entry, used by intake.
func EntryStage(stages []funnels.Stage) (funnels.Stage, error) {
	var (
		entry funnels.Stage
		found bool
	)
	for _, s := range liveStages(stages) {
		if s.Type != funnels.StageTypeEntry || !s.IsActive {
			continue
		}
		if !found || s.Order < entry.Order {
			entry, found = s, true
		}
	}
	if !found {
		return funnels.Stage{}, ErrNoEntryStage
	}
	return entry, nil
}

// StageNames indexes stage names by id, deleted stages included, so ledger
// entries can name a stage the lead is leaving even if it was removed.
func StageNames(stages []funnels.Stage) map[uuid.UUID]string {
	out := make(map[uuid.UUID]string, len(stages))
	for _, s := range stages {
		out[s.ID] = s.Name
	}
	return out
}

func liveStages(stages []funnels.Stage) []funnels.Stage {
	out := make([]funnels.Stage, 0, len(stages))
	for _, s := range stages {
		if !s.IsDeleted() {
			out = append(out, s)
		}
	}
	return out
}
