package project

import (
	"errors"

	"cowork/account"
	"cowork/activity"
	"cowork/authz"
	"cowork/bizerror"
	"cowork/domain"
	"cowork/effect"
	"cowork/notification"
	"cowork/persistence"
	"cowork/readcache"
	"cowork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	AddProjectMemberFunc              = AddProjectMember
	QueryProjectMembersFunc           = QueryProjectMembers
	UpdateProjectMemberPermissionFunc = UpdateProjectMemberPermission
	RemoveProjectMemberFunc           = RemoveProjectMember
)

// AddProjectMember grant a workspace member access to a project. Only
// workspace members can be added, the workspace boundary is never crossed.
func AddProjectMember(c *domain.ProjectMemberCreation, sec *session.Session) (*domain.ProjectMember, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	record, err := projectOf(db, c.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckProjectFunc(db, authz.OpManage, record, sec); err != nil {
		return nil, err
	}

	_, isMember, err := authz.WorkspaceRoleOfFunc(db, record.WorkspaceID, c.MemberId)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, bizerror.ErrNotWorkspaceMember
	}

	existing := domain.ProjectMember{}
	err = db.Where("project_id = ? AND member_id = ?", c.ProjectID, c.MemberId).First(&existing).Error
	if err == nil {
		return nil, bizerror.ErrAlreadyMember
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	permission := c.Permission
	if permission == "" {
		permission = domain.ProjectPermissionRead
	}
	member := domain.ProjectMember{
		ProjectId: c.ProjectID, MemberId: c.MemberId,
		Permission: permission, CreateTime: types.CurrentTimestamp(),
	}

	var records []activity.ActivityRecord
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		a, err := activity.AppendFunc(tx, record.WorkspaceID, sec.Identity, activity.ActionAddProjectMember,
			domain.TargetRef{TargetKind: domain.TargetProjectMember, TargetId: c.MemberId, TargetText: record.Title})
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
			readcache.InvalidateProjectScope(record.WorkspaceID, c.ProjectID, c.MemberId, sec.Identity.ID)
			return nil
		}},
		{Desc: "notify added member", Act: func() error {
			return notification.NotifyFunc(c.MemberId, sec.Identity.ID, "added to project",
				"you now have "+permission+" access to project "+record.Title,
				domain.TargetRef{TargetKind: domain.TargetProject, TargetId: record.ID, TargetText: record.Title},
				notification.CategoryProjectInvite)
		}},
		{Desc: "index activities", Act: func() error {
			return activity.IndexActivitiesFunc(contextOf(sec), records)
		}},
	})
	return &member, nil
}

func QueryProjectMembers(q *domain.ProjectMemberQuery, sec *session.Session) (*[]domain.ProjectMemberDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	record, err := projectOf(db, q.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckProjectFunc(db, authz.OpRead, record, sec); err != nil {
		return nil, err
	}

	var members []domain.ProjectMember
	if err := db.Where("project_id = ?", q.ProjectID).
		Order("create_time ASC").Find(&members).Error; err != nil {
		return nil, err
	}

	ids := make([]types.ID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.MemberId)
	}
	names, err := account.QueryAccountNames(ids)
	if err != nil {
		return nil, err
	}

	details := make([]domain.ProjectMemberDetail, 0, len(members))
	for _, m := range members {
		details = append(details, domain.ProjectMemberDetail{
			ProjectMember: m, ProjectTitle: record.Title, MemberName: names[m.MemberId],
		})
	}
	return &details, nil
}

func UpdateProjectMemberPermission(projectId, memberId types.ID, u *domain.ProjectMemberPermissionUpdating,
	sec *session.Session) error {

	db := persistence.ActiveDataSourceManager.GormDB()
	record, err := projectOf(db, projectId)
	if err != nil {
		return err
	}
	if err := authz.CheckProjectFunc(db, authz.OpManage, record, sec); err != nil {
		return err
	}

	existing := domain.ProjectMember{}
	if err := db.Where("project_id = ? AND member_id = ?", projectId, memberId).
		First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.ErrNotFound
		}
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&domain.ProjectMember{}).
			Where("project_id = ? AND member_id = ?", projectId, memberId).
			Update("permission", u.Permission).Error
	})
	if err != nil {
		return err
	}

	effect.RunFunc([]effect.Effect{
		{Desc: "invalidate project caches", Act: func() error {
			readcache.InvalidateProjectScope(record.WorkspaceID, projectId, memberId, sec.Identity.ID)
			return nil
		}},
	})
	return nil
}

func RemoveProjectMember(d *domain.ProjectMemberDeletion, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	record, err := projectOf(db, d.ProjectID)
	if err != nil {
		return err
	}
	if err := authz.CheckProjectFunc(db, authz.OpManage, record, sec); err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Where("project_id = ? AND member_id = ?", d.ProjectID, d.MemberID).
			Delete(&domain.ProjectMember{}).Error
	})
	if err != nil {
		return err
	}

	effect.RunFunc([]effect.Effect{
		{Desc: "invalidate project caches", Act: func() error {
			readcache.InvalidateProjectScope(record.WorkspaceID, d.ProjectID, d.MemberID, sec.Identity.ID)
			return nil
		}},
		{Desc: "notify removed member", Act: func() error {
			return notification.NotifyFunc(d.MemberID, sec.Identity.ID, "removed from project",
				"you no longer have access to project "+record.Title,
				domain.TargetRef{TargetKind: domain.TargetProject, TargetId: record.ID, TargetText: record.Title},
				notification.CategoryMembership)
		}},
	})
	return nil
}
