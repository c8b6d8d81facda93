package authz_test

import (
	"testing"

	"cowork/authz"
	"cowork/domain"

	. "github.com/onsi/gomega"
)

func TestEvaluate(t *testing.T) {
	RegisterTestingT(t)

	t.Run("non members are denied everywhere", func(t *testing.T) {
		chain := authz.Chain{WorkspaceRole: "", ProjectPermission: domain.ProjectPermissionWrite, ProjectPublic: true}
		for _, scope := range []authz.Scope{authz.ScopeWorkspace, authz.ScopeProject, authz.ScopeTask} {
			for _, op := range []authz.OpClass{authz.OpRead, authz.OpWrite, authz.OpManage} {
				Expect(authz.Evaluate(scope, op, chain)).To(BeFalse())
			}
		}
	})

	t.Run("workspace scope follows role ladder", func(t *testing.T) {
		for _, role := range []string{domain.WorkspaceRoleOwner, domain.WorkspaceRoleAdmin,
			domain.WorkspaceRoleMember, domain.WorkspaceRoleGuest} {
			Expect(authz.Evaluate(authz.ScopeWorkspace, authz.OpRead, authz.Chain{WorkspaceRole: role})).To(BeTrue())
		}

		Expect(authz.Evaluate(authz.ScopeWorkspace, authz.OpWrite, authz.Chain{WorkspaceRole: domain.WorkspaceRoleMember})).To(BeTrue())
		Expect(authz.Evaluate(authz.ScopeWorkspace, authz.OpWrite, authz.Chain{WorkspaceRole: domain.WorkspaceRoleGuest})).To(BeFalse())

		Expect(authz.Evaluate(authz.ScopeWorkspace, authz.OpManage, authz.Chain{WorkspaceRole: domain.WorkspaceRoleAdmin})).To(BeTrue())
		Expect(authz.Evaluate(authz.ScopeWorkspace, authz.OpManage, authz.Chain{WorkspaceRole: domain.WorkspaceRoleMember})).To(BeFalse())
	})

	t.Run("elevated roles bypass project membership", func(t *testing.T) {
		for _, role := range []string{domain.WorkspaceRoleOwner, domain.WorkspaceRoleAdmin} {
			chain := authz.Chain{WorkspaceRole: role}
			Expect(authz.Evaluate(authz.ScopeProject, authz.OpRead, chain)).To(BeTrue())
			Expect(authz.Evaluate(authz.ScopeProject, authz.OpManage, chain)).To(BeTrue())
			Expect(authz.Evaluate(authz.ScopeTask, authz.OpRead, chain)).To(BeTrue())
			Expect(authz.Evaluate(authz.ScopeTask, authz.OpWrite, chain)).To(BeTrue())
		}
	})

	t.Run("public visibility grants project read only", func(t *testing.T) {
		chain := authz.Chain{WorkspaceRole: domain.WorkspaceRoleMember, ProjectPublic: true}
		Expect(authz.Evaluate(authz.ScopeProject, authz.OpRead, chain)).To(BeTrue())
		Expect(authz.Evaluate(authz.ScopeProject, authz.OpManage, chain)).To(BeFalse())
		// task access always needs explicit membership
		Expect(authz.Evaluate(authz.ScopeTask, authz.OpRead, chain)).To(BeFalse())
		Expect(authz.Evaluate(authz.ScopeTask, authz.OpWrite, chain)).To(BeFalse())
	})

	t.Run("project permission decides task access", func(t *testing.T) {
		read := authz.Chain{WorkspaceRole: domain.WorkspaceRoleMember, ProjectPermission: domain.ProjectPermissionRead}
		Expect(authz.Evaluate(authz.ScopeTask, authz.OpRead, read)).To(BeTrue())
		Expect(authz.Evaluate(authz.ScopeTask, authz.OpWrite, read)).To(BeFalse())

		write := authz.Chain{WorkspaceRole: domain.WorkspaceRoleMember, ProjectPermission: domain.ProjectPermissionWrite}
		Expect(authz.Evaluate(authz.ScopeTask, authz.OpRead, write)).To(BeTrue())
		Expect(authz.Evaluate(authz.ScopeTask, authz.OpWrite, write)).To(BeTrue())

		// project membership does not unlock project management
		Expect(authz.Evaluate(authz.ScopeProject, authz.OpManage, write)).To(BeFalse())
	})

	t.Run("guests with project membership can still read", func(t *testing.T) {
		chain := authz.Chain{WorkspaceRole: domain.WorkspaceRoleGuest, ProjectPermission: domain.ProjectPermissionRead}
		Expect(authz.Evaluate(authz.ScopeProject, authz.OpRead, chain)).To(BeTrue())
		Expect(authz.Evaluate(authz.ScopeTask, authz.OpRead, chain)).To(BeTrue())
	})
}
