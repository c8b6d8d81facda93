package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on_hold"
	ProjectStatusCompleted = "completed"
	ProjectStatusArchived  = "archived"

	ProjectVisibilityPublic  = "public"
	ProjectVisibilityPrivate = "private"

	ProjectPermissionRead  = "read"
	ProjectPermissionWrite = "write"
)

type Project struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	WorkspaceID types.ID `json:"workspaceId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Title       string `json:"title"`
	Description string `json:"description" sql:"type:TEXT"`
	Status      string `json:"status"`
	Visibility  string `json:"visibility"`

	Creator    types.ID        `json:"creator"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(3) NOT NULL"`
}

type ProjectMember struct {
	ProjectId types.ID `json:"projectId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	MemberId  types.ID `json:"memberId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Permission string          `json:"permission"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

type ProjectMemberDetail struct {
	ProjectMember

	ProjectTitle string `json:"projectTitle"`
	MemberName   string `json:"memberName"`
}

type ProjectCreating struct {
	WorkspaceID types.ID `json:"workspaceId" binding:"required"`
	Title       string   `json:"title" binding:"required,lte=200"`
	Description string   `json:"description" binding:"omitempty,lte=2000"`
	Visibility  string   `json:"visibility" binding:"omitempty,oneof=public private"`
}

type ProjectUpdating struct {
	Title       string `json:"title" binding:"required,lte=200"`
	Description string `json:"description" binding:"omitempty,lte=2000"`
	Status      string `json:"status" binding:"omitempty,oneof=planning active on_hold completed archived"`
	Visibility  string `json:"visibility" binding:"omitempty,oneof=public private"`
}

type ProjectQuery struct {
	WorkspaceID types.ID `form:"workspaceId" binding:"required"`
}

type ProjectMemberCreation struct {
	ProjectID  types.ID `json:"projectId" binding:"required"`
	MemberId   types.ID `json:"memberId" binding:"required"`
	Permission string   `json:"permission" binding:"omitempty,oneof=read write"`
}

type ProjectMemberPermissionUpdating struct {
	Permission string `json:"permission" binding:"required,oneof=read write"`
}

type ProjectMemberQuery struct {
	ProjectID types.ID `form:"projectId" binding:"required"`
}

type ProjectMemberDeletion struct {
	ProjectID types.ID `form:"projectId" binding:"required"`
	MemberID  types.ID `form:"memberId" binding:"required"`
}
