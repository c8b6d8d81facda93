package domain

import (
	"github.com/fundwit/go-commons/types"
)

// TargetKind closed set of resource kinds an activity record or a
// notification may reference, resolved by explicit lookup.
type TargetKind string

const (
	TargetWorkspace     TargetKind = "workspace"
	TargetProject       TargetKind = "project"
	TargetProjectMember TargetKind = "project_member"
	TargetTask          TargetKind = "task"
	TargetComment       TargetKind = "comment"
)

// TargetRef carries the kind tag, the id, and a plain text snapshot so
// references stay meaningful after the target is deleted.
type TargetRef struct {
	TargetKind TargetKind `json:"targetKind"`
	TargetId   types.ID   `json:"targetId"`
	TargetText string     `json:"targetText"`
}
