package workspace

import (
	"errors"

	"cowork/authz"
	"cowork/bizerror"
	"cowork/domain"
	"cowork/effect"
	"cowork/idgen"
	"cowork/persistence"
	"cowork/readcache"
	"cowork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	workspaceIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateWorkspaceFunc = CreateWorkspace
	QueryWorkspacesFunc = QueryWorkspaces
	DetailWorkspaceFunc = DetailWorkspace
	UpdateWorkspaceFunc = UpdateWorkspace
	DeleteWorkspaceFunc = DeleteWorkspace
)

type WorkspaceDetail struct {
	domain.Workspace

	// Role is the viewing user's role
	Role        string `json:"role"`
	MemberCount int    `json:"memberCount"`
}

func CreateWorkspace(c *domain.WorkspaceCreating, sec *session.Session) (*domain.Workspace, error) {
	visibility := c.Visibility
	if visibility == "" {
		visibility = domain.WorkspaceVisibilityPrivate
	}

	now := types.CurrentTimestamp()
	record := domain.Workspace{
		ID:          idgen.NextID(workspaceIdWorker),
		Name:        c.Name,
		Description: c.Description,
		Visibility:  visibility,
		Creator:     sec.Identity.ID,
		CreateTime:  now,
	}

	db := persistence.ActiveDataSourceManager.GormDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		owner := domain.WorkspaceMember{
			WorkspaceID: record.ID, MemberId: sec.Identity.ID,
			Role: domain.WorkspaceRoleOwner, JoinTime: now,
		}
		return tx.Create(&owner).Error
	})
	if err != nil {
		return nil, err
	}

	effect.RunFunc([]effect.Effect{
		{Desc: "invalidate workspace caches", Act: func() error {
			readcache.InvalidateWorkspaceScope(record.ID, sec.Identity.ID)
			return nil
		}},
	})
	return &record, nil
}

func QueryWorkspaces(sec *session.Session) (*[]WorkspaceDetail, error) {
	key := readcache.WorkspaceListKey(sec.Identity.ID)
	if cached, found := readcache.Get(key); found {
		if records, ok := cached.(*[]WorkspaceDetail); ok {
			return records, nil
		}
	}

	db := persistence.ActiveDataSourceManager.GormDB()
	var memberships []domain.WorkspaceMember
	if err := db.Where("member_id = ?", sec.Identity.ID).Find(&memberships).Error; err != nil {
		return nil, err
	}

	records := []WorkspaceDetail{}
	if len(memberships) > 0 {
		roles := map[types.ID]string{}
		ids := make([]types.ID, 0, len(memberships))
		for _, m := range memberships {
			roles[m.WorkspaceID] = m.Role
			ids = append(ids, m.WorkspaceID)
		}

		var workspaces []domain.Workspace
		if err := db.Where("id IN (?)", ids).Order("create_time ASC").Find(&workspaces).Error; err != nil {
			return nil, err
		}
		for _, w := range workspaces {
			records = append(records, WorkspaceDetail{Workspace: w, Role: roles[w.ID]})
		}
	}

	readcache.Set(key, &records, readcache.TTLWorkspace)
	return &records, nil
}

func DetailWorkspace(id types.ID, sec *session.Session) (*WorkspaceDetail, error) {
	key := readcache.WorkspaceDetailKey(id, sec.Identity.ID)
	if cached, found := readcache.Get(key); found {
		if record, ok := cached.(*WorkspaceDetail); ok {
			return record, nil
		}
	}

	db := persistence.ActiveDataSourceManager.GormDB()
	record, err := workspaceOf(db, id)
	if err != nil {
		return nil, err
	}
	role, found, err := authz.WorkspaceRoleOfFunc(db, id, sec.Identity.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, bizerror.ErrForbidden
	}

	var memberCount int
	if err := db.Model(&domain.WorkspaceMember{}).
		Where("workspace_id = ?", id).Count(&memberCount).Error; err != nil {
		return nil, err
	}

	detail := &WorkspaceDetail{Workspace: *record, Role: role, MemberCount: memberCount}
	readcache.Set(key, detail, readcache.TTLWorkspace)
	return detail, nil
}

func UpdateWorkspace(id types.ID, u *domain.WorkspaceUpdating, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := authz.CheckWorkspaceFunc(db, authz.OpManage, id, sec); err != nil {
		return err
	}

	memberIds, err := memberIdsOf(db, id)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		record := domain.Workspace{}
		if err := tx.Where("id = ?", id).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		return tx.Model(&domain.Workspace{}).Where("id = ?", id).
			Updates(map[string]interface{}{"name": u.Name, "description": u.Description}).Error
	})
	if err != nil {
		return err
	}

	effect.RunFunc([]effect.Effect{
		{Desc: "invalidate workspace caches", Act: func() error {
			readcache.InvalidateWorkspaceScope(id, memberIds...)
			return nil
		}},
	})
	return nil
}

// DeleteWorkspace cascades over every owned record. Only the owner may do it.
func DeleteWorkspace(id types.ID, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	if _, err := workspaceOf(db, id); err != nil {
		return err
	}
	role, found, err := authz.WorkspaceRoleOfFunc(db, id, sec.Identity.ID)
	if err != nil {
		return err
	}
	if !found || role != domain.WorkspaceRoleOwner {
		return bizerror.ErrForbidden
	}

	memberIds, err := memberIdsOf(db, id)
	if err != nil {
		return err
	}
	var projectIds []types.ID
	if err := db.Model(&domain.Project{}).Where("workspace_id = ?", id).
		Pluck("id", &projectIds).Error; err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM comments WHERE task_id IN "+
			"(SELECT id FROM tasks WHERE project_id IN (SELECT id FROM projects WHERE workspace_id = ?))", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM tasks WHERE project_id IN "+
			"(SELECT id FROM projects WHERE workspace_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM project_members WHERE project_id IN "+
			"(SELECT id FROM projects WHERE workspace_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&domain.Project{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&domain.WorkspaceInvitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&domain.WorkspaceMember{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Workspace{}).Error
	})
	if err != nil {
		return err
	}

	effect.RunFunc([]effect.Effect{
		{Desc: "invalidate workspace caches", Act: func() error {
			readcache.InvalidateWorkspaceScope(id, memberIds...)
			for _, projectId := range projectIds {
				readcache.InvalidateProjectScope(id, projectId)
			}
			return nil
		}},
	})
	return nil
}

func workspaceOf(db *gorm.DB, id types.ID) (*domain.Workspace, error) {
	record := domain.Workspace{}
	if err := db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func memberIdsOf(db *gorm.DB, workspaceId types.ID) ([]types.ID, error) {
	var ids []types.ID
	if err := db.Model(&domain.WorkspaceMember{}).Where("workspace_id = ?", workspaceId).
		Pluck("member_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
