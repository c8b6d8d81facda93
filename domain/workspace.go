package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	WorkspaceVisibilityPrivate = "private"
	WorkspaceVisibilityInvite  = "invite"

	WorkspaceRoleOwner  = "owner"
	WorkspaceRoleAdmin  = "admin"
	WorkspaceRoleMember = "member"
	WorkspaceRoleGuest  = "guest"
)

var workspaceRoles = []string{WorkspaceRoleOwner, WorkspaceRoleAdmin, WorkspaceRoleMember, WorkspaceRoleGuest}

func WorkspaceRoleIsValid(role string) bool {
	for _, r := range workspaceRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsElevatedRole owner and admin bypass project and task level checks
func IsElevatedRole(role string) bool {
	return role == WorkspaceRoleOwner || role == WorkspaceRoleAdmin
}

type Workspace struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Name        string `json:"name"`
	Description string `json:"description" sql:"type:TEXT"`
	LogoURL     string `json:"logoUrl"`
	Visibility  string `json:"visibility"`

	// Creator is the owner, immutable after creation
	Creator    types.ID        `json:"creator"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

type WorkspaceMember struct {
	WorkspaceID types.ID `json:"workspaceId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	MemberId    types.ID `json:"memberId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Role     string          `json:"role"`
	JoinTime types.Timestamp `json:"joinTime" sql:"type:DATETIME(3) NOT NULL"`
}

type WorkspaceMemberDetail struct {
	WorkspaceMember

	MemberName string `json:"memberName"`
}

type WorkspaceInvitation struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	WorkspaceID types.ID `json:"workspaceId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	InvitedBy   types.ID `json:"invitedBy"`
	InvitedUser types.ID `json:"invitedUser"`
	Role        string   `json:"role"`

	ExpireTime types.Timestamp `json:"expireTime" sql:"type:DATETIME(3)"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

type WorkspaceInvitationDetail struct {
	WorkspaceInvitation

	WorkspaceName string `json:"workspaceName"`
	InviterName   string `json:"inviterName"`
}

type WorkspaceCreating struct {
	Name        string `json:"name" binding:"required,lte=120"`
	Description string `json:"description" binding:"omitempty,lte=2000"`
	Visibility  string `json:"visibility" binding:"omitempty,oneof=private invite"`
}

type WorkspaceUpdating struct {
	Name        string `json:"name" binding:"required,lte=120"`
	Description string `json:"description" binding:"omitempty,lte=2000"`
}

type WorkspaceMemberRoleUpdating struct {
	Role string `json:"role" binding:"required"`
}

type WorkspaceInvitationCreating struct {
	InvitedUser types.ID `json:"invitedUser" binding:"required"`
	Role        string   `json:"role" binding:"omitempty,oneof=admin member guest"`
}
