package scheduler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TaskStageSLACheck = "leads.stage_sla_check"

// StageSLACheckPayload identifies the stage visit being checked. The check
// only fires if the lead still holds StageID since StageChangedAt.
type StageSLACheckPayload struct {
	LeadID         string    `json:"leadId"`
	CompanyID      string    `json:"companyId"`
	StageID        string    `json:"stageId"`
	StageChangedAt time.Time `json:"stageChangedAt"`
}

// taskID makes scheduling the same stage visit twice a no-op.
func (p StageSLACheckPayload) taskID() string {
	return fmt.Sprintf("sla:%s:%s:%d", p.LeadID, p.StageID, p.StageChangedAt.UnixNano())
}

func NewStageSLACheckTask(payload StageSLACheckPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStageSLACheck, data), nil
}

func ParseStageSLACheckPayload(task *asynq.Task) (StageSLACheckPayload, error) {
	var payload StageSLACheckPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return StageSLACheckPayload{}, err
	}
	return payload, nil
}
