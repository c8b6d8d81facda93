package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"

	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	// TaskStatusCancelled exists in the status vocabulary, no transition
	// operation produces it yet.
	TaskStatusCancelled = "cancelled"
)

type Task struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	ProjectID types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Title       string `json:"title"`
	Description string `json:"description" sql:"type:TEXT"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`

	// zero value means unassigned / not started
	AssignedTo types.ID `json:"assignedTo"`
	Creator    types.ID `json:"creator"`
	StartedBy  types.ID `json:"startedBy"`

	DueDate types.Timestamp `json:"dueDate" sql:"type:DATETIME(3)"`
	// CompletedAt is non-zero exactly when Status is completed
	CompletedAt types.Timestamp `json:"completedAt" sql:"type:DATETIME(6)"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(3) NOT NULL"`
}

type Comment struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	TaskID  types.ID `json:"taskId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Author  types.ID `json:"author"`
	Content string   `json:"content" sql:"type:TEXT"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

type CommentDetail struct {
	Comment

	AuthorName string `json:"authorName"`
}

type TaskCreating struct {
	ProjectID   types.ID        `json:"projectId" binding:"required"`
	Title       string          `json:"title" binding:"required,lte=200"`
	Description string          `json:"description" binding:"omitempty,lte=2000"`
	Priority    string          `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssignedTo  types.ID        `json:"assignedTo"`
	DueDate     types.Timestamp `json:"dueDate"`
}

type TaskUpdating struct {
	Title       string          `json:"title" binding:"required,lte=200"`
	Description string          `json:"description" binding:"omitempty,lte=2000"`
	Priority    string          `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssignedTo  types.ID        `json:"assignedTo"`
	DueDate     types.Timestamp `json:"dueDate"`
}

type TaskQuery struct {
	ProjectID types.ID `form:"projectId" binding:"required"`
	Status    string   `form:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
}

// TaskTransition body of the start-task and complete-task operations
type TaskTransition struct {
	TaskID types.ID `json:"taskId" binding:"required"`
}

type CommentCreating struct {
	TaskID  types.ID `json:"taskId" binding:"required"`
	Content string   `json:"content" binding:"required,lte=5000"`
}

type CommentQuery struct {
	TaskID types.ID `form:"taskId" binding:"required"`
}
