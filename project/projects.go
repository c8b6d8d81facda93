package project

import (
	"context"
	"errors"

	"cowork/activity"
	"cowork/authz"
	"cowork/bizerror"
	"cowork/domain"
	"cowork/effect"
	"cowork/idgen"
	"cowork/notification"
	"cowork/persistence"
	"cowork/readcache"
	"cowork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	projectIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateProjectFunc = CreateProject
	QueryProjectsFunc = QueryProjects
	DetailProjectFunc = DetailProject
	UpdateProjectFunc = UpdateProject
	DeleteProjectFunc = DeleteProject
)

func CreateProject(c *domain.ProjectCreating, sec *session.Session) (*domain.Project, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := authz.CheckWorkspaceFunc(db, authz.OpWrite, c.WorkspaceID, sec); err != nil {
		return nil, err
	}

	visibility := c.Visibility
	if visibility == "" {
		visibility = domain.ProjectVisibilityPrivate
	}

	now := types.CurrentTimestamp()
	record := domain.Project{
		ID:          idgen.NextID(projectIdWorker),
		WorkspaceID: c.WorkspaceID,
		Title:       c.Title,
		Description: c.Description,
		Status:      domain.ProjectStatusPlanning,
		Visibility:  visibility,
		Creator:     sec.Identity.ID,
		CreateTime:  now,
		UpdateTime:  now,
	}

	memberIds, err := workspaceMemberIds(db, c.WorkspaceID)
	if err != nil {
		return nil, err
	}

	var records []activity.ActivityRecord
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		creator := domain.ProjectMember{
			ProjectId: record.ID, MemberId: sec.Identity.ID,
			Permission: domain.ProjectPermissionWrite, CreateTime: now,
		}
		if err := tx.Create(&creator).Error; err != nil {
			return err
		}
		a, err := activity.AppendFunc(tx, record.WorkspaceID, sec.Identity, activity.ActionCreateProject,
			domain.TargetRef{TargetKind: domain.TargetProject, TargetId: record.ID, TargetText: record.Title})
		if err != nil {
			return err
		}
		records = append(records, *a)
		return nil
	})
	if err != nil {
		return nil, err
	}

	effect.RunFunc([]effect.Effect{
		{Desc: "invalidate project caches", Act: func() error {
			readcache.InvalidateProjectScope(record.WorkspaceID, record.ID, memberIds...)
			return nil
		}},
		{Desc: "notify workspace members of public project", Act: func() error {
			if record.Visibility != domain.ProjectVisibilityPublic {
				return nil
			}
			return notification.NotifyBulkFunc(memberIds, sec.Identity.ID, "new project",
				"project "+record.Title+" was created",
				domain.TargetRef{TargetKind: domain.TargetProject, TargetId: record.ID, TargetText: record.Title},
				notification.CategoryProjectInvite)
		}},
		{Desc: "index activities", Act: func() error {
			return activity.IndexActivitiesFunc(contextOf(sec), records)
		}},
	})
	return &record, nil
}

func QueryProjects(q *domain.ProjectQuery, sec *session.Session) (*[]domain.Project, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := authz.CheckWorkspaceFunc(db, authz.OpRead, q.WorkspaceID, sec); err != nil {
		return nil, err
	}
	role, _, err := authz.WorkspaceRoleOfFunc(db, q.WorkspaceID, sec.Identity.ID)
	if err != nil {
		return nil, err
	}

	key := readcache.ProjectListKey(q.WorkspaceID, sec.Identity.ID)
	if cached, ok := readcache.Get(key); ok {
		if records, ok := cached.(*[]domain.Project); ok {
			return records, nil
		}
	}

	query := db.Where("workspace_id = ?", q.WorkspaceID)
	if !domain.IsElevatedRole(role) {
		query = query.Where("visibility = ? OR id IN (SELECT project_id FROM project_members WHERE member_id = ?)",
			domain.ProjectVisibilityPublic, sec.Identity.ID)
	}

	records := []domain.Project{}
	if err := query.Order("create_time ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	readcache.Set(key, &records, readcache.TTLProjects)
	return &records, nil
}

func DetailProject(id types.ID, sec *session.Session) (*domain.Project, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	record, err := projectOf(db, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckProjectFunc(db, authz.OpRead, record, sec); err != nil {
		return nil, err
	}
	return record, nil
}

func UpdateProject(id types.ID, u *domain.ProjectUpdating, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	record, err := projectOf(db, id)
	if err != nil {
		return err
	}
	if err := authz.CheckProjectFunc(db, authz.OpManage, record, sec); err != nil {
		return err
	}

	changes := map[string]interface{}{
		"title":       u.Title,
		"description": u.Description,
		"update_time": types.CurrentTimestamp(),
	}
	if u.Status != "" {
		changes["status"] = u.Status
	}
	if u.Visibility != "" {
		changes["visibility"] = u.Visibility
	}
	memberIds, err := workspaceMemberIds(db, record.WorkspaceID)
	if err != nil {
		return err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&domain.Project{}).Where("id = ?", id).Updates(changes).Error
	})
	if err != nil {
		return err
	}

	effect.RunFunc([]effect.Effect{
		{Desc: "invalidate project caches", Act: func() error {
			readcache.InvalidateProjectScope(record.WorkspaceID, id, memberIds...)
			return nil
		}},
	})
	return nil
}

func DeleteProject(id types.ID, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	record, err := projectOf(db, id)
	if err != nil {
		return err
	}
	if err := authz.CheckProjectFunc(db, authz.OpManage, record, sec); err != nil {
		return err
	}

	memberIds, err := workspaceMemberIds(db, record.WorkspaceID)
	if err != nil {
		return err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM comments WHERE task_id IN "+
			"(SELECT id FROM tasks WHERE project_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&domain.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&domain.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Project{}).Error
	})
	if err != nil {
		return err
	}

	effect.RunFunc([]effect.Effect{
		{Desc: "invalidate project caches", Act: func() error {
			readcache.InvalidateProjectScope(record.WorkspaceID, id, memberIds...)
			return nil
		}},
	})
	return nil
}

func projectOf(db *gorm.DB, id types.ID) (*domain.Project, error) {
	record := domain.Project{}
	if err := db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func workspaceMemberIds(db *gorm.DB, workspaceId types.ID) ([]types.ID, error) {
	var ids []types.ID
	if err := db.Model(&domain.WorkspaceMember{}).Where("workspace_id = ?", workspaceId).
		Pluck("member_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func contextOf(sec *session.Session) context.Context {
	if sec != nil && sec.Context != nil {
		return sec.Context
	}
	return context.Background()
}
