package email

const (
	subjectLeadAssignedFmt     = "Lead assigned: %s"
	subjectStageSLABreachedFmt = "%s is waiting in %s"
)
