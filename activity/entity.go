package activity

import (
	"cowork/domain"

	"github.com/fundwit/go-commons/types"
)

const (
	ActionCreateProject    = "create_project"
	ActionAddProjectMember = "add_project_member"
	ActionCreateTask       = "create_task"
	ActionStartTask        = "start_task"
	ActionCompleteTask     = "complete_task"
	ActionComment          = "comment"
)

// ActivityRecord append-only audit trail entry, never updated or deleted.
// The target text is stored as a snapshot so records outlive their target.
type ActivityRecord struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	WorkspaceID types.ID `json:"workspaceId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	ActorId   types.ID `json:"actorId"`
	ActorName string   `json:"actorName"`

	ActionType string `json:"actionType"`

	domain.TargetRef

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *ActivityRecord) TableName() string {
	return "activities"
}

type ActivityQuery struct {
	WorkspaceID types.ID `form:"workspaceId" binding:"required"`
}

type ActivitySearchQuery struct {
	WorkspaceID types.ID `form:"workspaceId" binding:"required"`
	Keyword     string   `form:"keyword" binding:"required"`
}
