package audit

import "time"

// Category classifies audit events by their primary purpose. Review
// outcomes carry legal weight and need long retention; routine activity
// can be sampled or aggregated.
type Category string

const (
	CategoryCompliance Category = "compliance"
	CategoryOperations Category = "operations"
)

type Action string

const (
	ActionVerificationSubmitted Action = "verification_submitted"
	ActionVerificationApproved  Action = "verification_approved"
	ActionVerificationRejected  Action = "verification_rejected"
	ActionVerificationDeleted   Action = "verification_deleted"
	ActionAppealFiled           Action = "appeal_filed"
	ActionAppealApproved        Action = "appeal_approved"
	ActionAppealRejected        Action = "appeal_rejected"
	ActionCascadeFailed         Action = "cascade_failed"
)

var actionCategories = map[Action]Category{
	ActionVerificationApproved: CategoryCompliance,
	ActionVerificationRejected: CategoryCompliance,
	ActionVerificationDeleted:  CategoryCompliance,
	ActionAppealApproved:       CategoryCompliance,
	ActionAppealRejected:       CategoryCompliance,

	ActionVerificationSubmitted: CategoryOperations,
	ActionAppealFiled:           CategoryOperations,
	ActionCascadeFailed:         CategoryOperations,
}

// Category returns the category for this action. Unknown actions default
// to CategoryOperations.
func (a Action) Category() Category {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Category  Category  `json:"category"`
	Action    Action    `json:"action"`
	SubjectID string    `json:"subject_id"`
	RecordID  string    `json:"record_id,omitempty"`
	AppealID  string    `json:"appeal_id,omitempty"`
	// ActorID tracks who performed the action when different from the
	// subject, i.e. the reviewing admin.
	ActorID   string `json:"actor_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
