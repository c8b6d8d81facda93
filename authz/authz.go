package authz

import (
	"errors"

	"cowork/bizerror"
	"cowork/domain"
	"cowork/persistence"
	"cowork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	WorkspaceRoleOfFunc = WorkspaceRoleOf
	CheckWorkspaceFunc  = CheckWorkspace
	CheckProjectFunc    = CheckProject
	CheckTaskFunc       = CheckTask
)

// WorkspaceRoleOf resolve the actor's role in a workspace.
// found is false when no membership record exists.
func WorkspaceRoleOf(db *gorm.DB, workspaceId, memberId types.ID) (role string, found bool, err error) {
	if db == nil {
		db = persistence.ActiveDataSourceManager.GormDB()
	}
	record := domain.WorkspaceMember{}
	if err := db.Where("workspace_id = ? AND member_id = ?", workspaceId, memberId).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return record.Role, true, nil
}

func projectPermissionOf(db *gorm.DB, projectId, memberId types.ID) (string, error) {
	record := domain.ProjectMember{}
	if err := db.Where("project_id = ? AND member_id = ?", projectId, memberId).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return record.Permission, nil
}

// LoadWorkspaceChain resolve the actor's chain for a workspace scope check
func LoadWorkspaceChain(db *gorm.DB, workspaceId types.ID, sec *session.Session) (Chain, error) {
	role, _, err := WorkspaceRoleOfFunc(db, workspaceId, sec.Identity.ID)
	if err != nil {
		return Chain{}, err
	}
	return Chain{WorkspaceRole: role}, nil
}

// LoadProjectChain resolve the actor's full chain for a project or task scope check
func LoadProjectChain(db *gorm.DB, project *domain.Project, sec *session.Session) (Chain, error) {
	if db == nil {
		db = persistence.ActiveDataSourceManager.GormDB()
	}
	role, _, err := WorkspaceRoleOfFunc(db, project.WorkspaceID, sec.Identity.ID)
	if err != nil {
		return Chain{}, err
	}
	chain := Chain{WorkspaceRole: role, ProjectPublic: project.Visibility == domain.ProjectVisibilityPublic}
	if role == "" {
		return chain, nil
	}
	// elevated roles never need the project membership record
	if domain.IsElevatedRole(role) {
		return chain, nil
	}
	perm, err := projectPermissionOf(db, project.ID, sec.Identity.ID)
	if err != nil {
		return Chain{}, err
	}
	chain.ProjectPermission = perm
	return chain, nil
}

// CheckWorkspace an unknown workspace id resolves NotFound before any rule
// is evaluated, so callers can tell a missing workspace from a denied one.
func CheckWorkspace(db *gorm.DB, op OpClass, workspaceId types.ID, sec *session.Session) error {
	if db == nil {
		db = persistence.ActiveDataSourceManager.GormDB()
	}
	var count int
	if err := db.Model(&domain.Workspace{}).Where("id = ?", workspaceId).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return bizerror.ErrNotFound
	}
	chain, err := LoadWorkspaceChain(db, workspaceId, sec)
	if err != nil {
		return err
	}
	if !Evaluate(ScopeWorkspace, op, chain) {
		return bizerror.ErrForbidden
	}
	return nil
}

func CheckProject(db *gorm.DB, op OpClass, project *domain.Project, sec *session.Session) error {
	chain, err := LoadProjectChain(db, project, sec)
	if err != nil {
		return err
	}
	if !Evaluate(ScopeProject, op, chain) {
		return bizerror.ErrForbidden
	}
	return nil
}

// CheckTask task rules are keyed off the owning project: explicit project
// membership is required, public visibility does not substitute here.
func CheckTask(db *gorm.DB, op OpClass, project *domain.Project, sec *session.Session) error {
	chain, err := LoadProjectChain(db, project, sec)
	if err != nil {
		return err
	}
	if !Evaluate(ScopeTask, op, chain) {
		return bizerror.ErrForbidden
	}
	return nil
}
