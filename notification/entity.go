package notification

import (
	"cowork/domain"

	"github.com/fundwit/go-commons/types"
)

const (
	CategorySystemAlert     = "system_alert"
	CategoryWorkspaceInvite = "workspace_invite"
	CategoryProjectInvite   = "project_invite"
	CategoryTaskAdded       = "task_added"
	CategoryTaskUpdated     = "task_updated"
	CategoryTaskCompleted   = "task_completed"
	CategoryCommentAdded    = "comment_added"
	CategoryMembership      = "membership"
)

type Notification struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Recipient types.ID `json:"recipient" sql:"type:BIGINT UNSIGNED NOT NULL"`
	// Actor zero value means a system generated notification
	Actor types.ID `json:"actor"`

	Title    string `json:"title"`
	Message  string `json:"message" sql:"type:TEXT"`
	Category string `json:"category"`

	domain.TargetRef

	IsRead   bool            `json:"isRead"`
	ReadTime types.Timestamp `json:"readTime" sql:"type:DATETIME(3)"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

func (n *Notification) TableName() string {
	return "notifications"
}

type NotificationQuery struct {
	UnreadOnly bool `form:"unreadOnly"`
}
