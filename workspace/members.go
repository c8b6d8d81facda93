package workspace

import (
	"errors"

	"cowork/account"
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
	QueryWorkspaceMembersFunc = QueryWorkspaceMembers
	UpdateMemberRoleFunc      = UpdateMemberRole
	RemoveWorkspaceMemberFunc = RemoveWorkspaceMember
	LeaveWorkspaceFunc        = LeaveWorkspace
)

func QueryWorkspaceMembers(workspaceId types.ID, sec *session.Session) (*[]domain.WorkspaceMemberDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := authz.CheckWorkspaceFunc(db, authz.OpRead, workspaceId, sec); err != nil {
		return nil, err
	}

	key := readcache.WorkspaceMembersKey(workspaceId)
	if cached, found := readcache.Get(key); found {
		if records, ok := cached.(*[]domain.WorkspaceMemberDetail); ok {
			return records, nil
		}
	}

	var members []domain.WorkspaceMember
	if err := db.Where("workspace_id = ?", workspaceId).
		Order("join_time ASC").Find(&members).Error; err != nil {
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

	records := make([]domain.WorkspaceMemberDetail, 0, len(members))
	for _, m := range members {
		records = append(records, domain.WorkspaceMemberDetail{WorkspaceMember: m, MemberName: names[m.MemberId]})
	}

	readcache.Set(key, &records, readcache.TTLMembers)
	return &records, nil
}

// UpdateMemberRole change another member's role. The owner role is terminal:
// it can neither be assigned nor taken away here.
func UpdateMemberRole(workspaceId, memberId types.ID, u *domain.WorkspaceMemberRoleUpdating, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := authz.CheckWorkspaceFunc(db, authz.OpManage, workspaceId, sec); err != nil {
		return err
	}
	if memberId == sec.Identity.ID {
		return bizerror.ErrSelfRoleUpdate
	}
	if !domain.WorkspaceRoleIsValid(u.Role) || u.Role == domain.WorkspaceRoleOwner {
		return bizerror.ErrInvalidRole
	}

	target, err := memberOf(db, workspaceId, memberId)
	if err != nil {
		return err
	}
	if target.Role == domain.WorkspaceRoleOwner {
		return bizerror.ErrOwnerImmutable
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&domain.WorkspaceMember{}).
			Where("workspace_id = ? AND member_id = ?", workspaceId, memberId).
			Update("role", u.Role).Error
	})
	if err != nil {
		return err
	}

	effect.RunFunc([]effect.Effect{
		{Desc: "invalidate workspace caches", Act: func() error {
			readcache.InvalidateWorkspaceScope(workspaceId, memberId, sec.Identity.ID)
			return nil
		}},
		{Desc: "notify member of role change", Act: func() error {
			return notification.NotifyFunc(memberId, sec.Identity.ID, "role changed",
				"your role is now "+u.Role,
				domain.TargetRef{TargetKind: domain.TargetWorkspace, TargetId: workspaceId},
				notification.CategoryMembership)
		}},
	})
	return nil
}

func RemoveWorkspaceMember(workspaceId, memberId types.ID, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := authz.CheckWorkspaceFunc(db, authz.OpManage, workspaceId, sec); err != nil {
		return err
	}
	if memberId == sec.Identity.ID {
		return bizerror.ErrSelfRemoval
	}

	target, err := memberOf(db, workspaceId, memberId)
	if err != nil {
		return err
	}
	if target.Role == domain.WorkspaceRoleOwner {
		return bizerror.ErrOwnerImmutable
	}

	actorRole, _, err := authz.WorkspaceRoleOfFunc(db, workspaceId, sec.Identity.ID)
	if err != nil {
		return err
	}
	if actorRole == domain.WorkspaceRoleAdmin && target.Role == domain.WorkspaceRoleAdmin {
		return bizerror.ErrAdminRemovesAdmin
	}

	if err := dropMembership(db, workspaceId, memberId); err != nil {
		return err
	}

	effect.RunFunc([]effect.Effect{
		{Desc: "invalidate workspace caches", Act: func() error {
			readcache.InvalidateWorkspaceScope(workspaceId, memberId, sec.Identity.ID)
			return nil
		}},
		{Desc: "notify removed member", Act: func() error {
			return notification.NotifyFunc(memberId, sec.Identity.ID, "removed from workspace",
				"you have been removed from the workspace",
				domain.TargetRef{TargetKind: domain.TargetWorkspace, TargetId: workspaceId},
				notification.CategoryMembership)
		}},
	})
	return nil
}

func LeaveWorkspace(workspaceId types.ID, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	if _, err := workspaceOf(db, workspaceId); err != nil {
		return err
	}
	record, err := memberOf(db, workspaceId, sec.Identity.ID)
	if err != nil {
		return err
	}
	if record.Role == domain.WorkspaceRoleOwner {
		return bizerror.ErrOwnerLeave
	}

	if err := dropMembership(db, workspaceId, sec.Identity.ID); err != nil {
		return err
	}

	effect.RunFunc([]effect.Effect{
		{Desc: "invalidate workspace caches", Act: func() error {
			readcache.InvalidateWorkspaceScope(workspaceId, sec.Identity.ID)
			return nil
		}},
	})
	return nil
}

// memberOf a membership record addressed by an operation is a resource:
// a miss is NotFound, not a precondition failure.
func memberOf(db *gorm.DB, workspaceId, memberId types.ID) (*domain.WorkspaceMember, error) {
	record := domain.WorkspaceMember{}
	if err := db.Where("workspace_id = ? AND member_id = ?", workspaceId, memberId).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// dropMembership delete the workspace membership together with every project
// membership the user holds inside the workspace.
func dropMembership(db *gorm.DB, workspaceId, memberId types.ID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM project_members WHERE member_id = ? AND project_id IN "+
			"(SELECT id FROM projects WHERE workspace_id = ?)", memberId, workspaceId).Error; err != nil {
			return err
		}
		return tx.Where("workspace_id = ? AND member_id = ?", workspaceId, memberId).
			Delete(&domain.WorkspaceMember{}).Error
	})
}
