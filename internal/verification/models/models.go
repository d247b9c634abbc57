// Package models defines the verification and appeal records plus their
// status enum. Records are mutated only through the state machine in the
// service package.
package models

import (
	"time"

	dErrors "veriflow/pkg/domain-errors"
)

// Status is the review state shared by verifications and appeals.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus validates a caller-supplied status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "status must be one of pending|approved|rejected")
	}
}

// EvidenceHandles are the three retrieval handles issued at submission. They
// are set at creation and never mutated; a re-submission produces a fresh
// record with fresh handles.
type EvidenceHandles struct {
	IDDocument     string `json:"idDocumentUrl"`
	ResidencyProof string `json:"proofUrl"`
	Selfie         string `json:"selfieUrl"`
}

// Record is a verification submission moving through the review workflow.
type Record struct {
	ID           string          `json:"id"`
	SubjectID    string          `json:"subjectId"`
	SubjectEmail string          `json:"subjectEmail"`
	Evidence     EvidenceHandles `json:"evidence"`
	Status       Status          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	// ReviewedAt is set on every approve/reject and cleared when an appeal
	// reopens the record.
	ReviewedAt *time.Time `json:"reviewedAt,omitempty"`
	// Comment is the administrator's rejection reason.
	Comment string `json:"comment,omitempty"`
	// AppealMessage is the subject's appeal text, set when an appeal is filed.
	AppealMessage string     `json:"appealMessage,omitempty"`
	AppealedAt    *time.Time `json:"appealedAt,omitempty"`
}

// Appeal asks for re-review of a rejected verification. The verification
// linkage is a back-reference by ID, never a shared structure, so the two
// records cannot form a cyclic update hazard.
type Appeal struct {
	ID           string          `json:"id"`
	SubjectID    string          `json:"subjectId"`
	SubjectEmail string          `json:"subjectEmail"`
	// VerificationID references the verification being appealed. Reviewing
	// the appeal cascades a mirrored transition onto it, best-effort.
	VerificationID string `json:"verificationId"`
	// Evidence mirrors the verification's handles for display only.
	Evidence   EvidenceHandles `json:"evidence"`
	Message    string          `json:"message"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	ReviewedAt *time.Time      `json:"reviewedAt,omitempty"`
	Comment    string          `json:"comment,omitempty"`
}
