package authz

import (
	"cowork/domain"
)

type Scope string

const (
	ScopeWorkspace Scope = "workspace"
	ScopeProject   Scope = "project"
	ScopeTask      Scope = "task"
)

type OpClass string

const (
	// OpRead list and detail operations
	OpRead OpClass = "read"
	// OpWrite contributing mutations: create project (workspace scope),
	// create/update/start/complete task and comment (task scope)
	OpWrite OpClass = "write"
	// OpManage mutations of the resource itself and of its membership
	OpManage OpClass = "manage"
)

// Chain is the actor's resolved role chain for one resource, a snapshot of
// the membership records the evaluator works on.
type Chain struct {
	// WorkspaceRole is empty when the actor has no workspace membership.
	// An empty role denies everything beneath the workspace.
	WorkspaceRole string

	// ProjectPermission is empty when the actor has no project membership.
	ProjectPermission string

	// ProjectPublic is true when the project's visibility is public.
	ProjectPublic bool
}

type rule struct {
	scope Scope
	op    OpClass

	workspaceRoles []string
	projectPerms   []string
	publicRead     bool
}

// the hierarchical permission model as an ordered table, first match wins.
// The workspace admin/owner override is expressed by listing the elevated
// roles on every row.
var rules = []rule{
	{scope: ScopeWorkspace, op: OpRead,
		workspaceRoles: []string{domain.WorkspaceRoleOwner, domain.WorkspaceRoleAdmin, domain.WorkspaceRoleMember, domain.WorkspaceRoleGuest}},
	{scope: ScopeWorkspace, op: OpWrite,
		workspaceRoles: []string{domain.WorkspaceRoleOwner, domain.WorkspaceRoleAdmin, domain.WorkspaceRoleMember}},
	{scope: ScopeWorkspace, op: OpManage,
		workspaceRoles: []string{domain.WorkspaceRoleOwner, domain.WorkspaceRoleAdmin}},

	{scope: ScopeProject, op: OpRead,
		workspaceRoles: []string{domain.WorkspaceRoleOwner, domain.WorkspaceRoleAdmin},
		projectPerms:   []string{domain.ProjectPermissionRead, domain.ProjectPermissionWrite},
		publicRead:     true},
	{scope: ScopeProject, op: OpManage,
		workspaceRoles: []string{domain.WorkspaceRoleOwner, domain.WorkspaceRoleAdmin}},

	{scope: ScopeTask, op: OpRead,
		workspaceRoles: []string{domain.WorkspaceRoleOwner, domain.WorkspaceRoleAdmin},
		projectPerms:   []string{domain.ProjectPermissionRead, domain.ProjectPermissionWrite}},
	{scope: ScopeTask, op: OpWrite,
		workspaceRoles: []string{domain.WorkspaceRoleOwner, domain.WorkspaceRoleAdmin},
		projectPerms:   []string{domain.ProjectPermissionWrite}},
}

// Evaluate is pure: the verdict is a function of the rule table and the
// given chain only. Actors without a workspace membership are denied at the
// root, whatever the scope, operation or project visibility.
func Evaluate(scope Scope, op OpClass, chain Chain) bool {
	if chain.WorkspaceRole == "" {
		return false
	}

	for _, r := range rules {
		if r.scope != scope || r.op != op {
			continue
		}
		for _, role := range r.workspaceRoles {
			if role == chain.WorkspaceRole {
				return true
			}
		}
		for _, perm := range r.projectPerms {
			if perm != "" && perm == chain.ProjectPermission {
				return true
			}
		}
		if r.publicRead && chain.ProjectPublic {
			return true
		}
		return false
	}
	return false
}
