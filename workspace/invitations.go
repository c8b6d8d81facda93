package workspace

import (
	"errors"
	"time"

	"cowork/account"
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
	"github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

const invitationValidity = 7 * 24 * time.Hour

var (
	invitationIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateInvitationFunc = CreateInvitation
	AcceptInvitationFunc = AcceptInvitation
	RejectInvitationFunc = RejectInvitation
	QueryInvitationsFunc = QueryInvitations
)

func CreateInvitation(workspaceId types.ID, c *domain.WorkspaceInvitationCreating, sec *session.Session) (*domain.WorkspaceInvitation, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := authz.CheckWorkspaceFunc(db, authz.OpManage, workspaceId, sec); err != nil {
		return nil, err
	}
	if c.InvitedUser == sec.Identity.ID {
		return nil, bizerror.ErrSelfInvite
	}

	invited := account.User{}
	if err := db.Where("id = ?", c.InvitedUser).First(&invited).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}

	_, isMember, err := authz.WorkspaceRoleOfFunc(db, workspaceId, c.InvitedUser)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, bizerror.ErrAlreadyMember
	}

	var pending int
	if err := db.Model(&domain.WorkspaceInvitation{}).
		Where("workspace_id = ? AND invited_user = ? AND expire_time > ?", workspaceId, c.InvitedUser, time.Now()).
		Count(&pending).Error; err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, bizerror.ErrInvitePending
	}

	role := c.Role
	if role == "" {
		role = domain.WorkspaceRoleMember
	}
	now := types.CurrentTimestamp()
	record := domain.WorkspaceInvitation{
		ID:          idgen.NextID(invitationIdWorker),
		WorkspaceID: workspaceId,
		InvitedBy:   sec.Identity.ID,
		InvitedUser: c.InvitedUser,
		Role:        role,
		ExpireTime:  types.Timestamp(now.Time().Add(invitationValidity)),
		CreateTime:  now,
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}

	effect.RunFunc([]effect.Effect{
		{Desc: "notify invited user", Act: func() error {
			return notification.NotifyFunc(c.InvitedUser, sec.Identity.ID, "workspace invitation",
				"you are invited to join a workspace as "+role,
				domain.TargetRef{TargetKind: domain.TargetWorkspace, TargetId: workspaceId},
				notification.CategoryWorkspaceInvite)
		}},
	})
	return &record, nil
}

// AcceptInvitation turn a pending invitation into a membership. Only the
// invited user can accept, and only before the invitation expires.
func AcceptInvitation(id types.ID, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	invitation, err := invitationOf(db, id)
	if err != nil {
		return err
	}
	if invitation.InvitedUser != sec.Identity.ID {
		return bizerror.ErrForbidden
	}
	if invitation.ExpireTime.Time().Before(time.Now()) {
		return bizerror.ErrInviteExpired
	}

	_, isMember, err := authz.WorkspaceRoleOfFunc(db, invitation.WorkspaceID, sec.Identity.ID)
	if err != nil {
		return err
	}
	if isMember {
		return bizerror.ErrAlreadyMember
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		member := domain.WorkspaceMember{
			WorkspaceID: invitation.WorkspaceID, MemberId: sec.Identity.ID,
			Role: invitation.Role, JoinTime: types.CurrentTimestamp(),
		}
		if err := tx.Create(&member).Error; err != nil {
			// a concurrent accept won the membership insert
			var mysqlErr *mysql.MySQLError
			if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
				return bizerror.ErrAlreadyMember
			}
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.WorkspaceInvitation{}).Error
	})
	if err != nil {
		return err
	}

	effect.RunFunc([]effect.Effect{
		{Desc: "invalidate workspace caches", Act: func() error {
			readcache.InvalidateWorkspaceScope(invitation.WorkspaceID, sec.Identity.ID, invitation.InvitedBy)
			return nil
		}},
		{Desc: "notify inviter of acceptance", Act: func() error {
			return notification.NotifyFunc(invitation.InvitedBy, sec.Identity.ID, "invitation accepted",
				sec.Identity.Nickname+" joined the workspace",
				domain.TargetRef{TargetKind: domain.TargetWorkspace, TargetId: invitation.WorkspaceID},
				notification.CategoryMembership)
		}},
	})
	return nil
}

func RejectInvitation(id types.ID, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	invitation, err := invitationOf(db, id)
	if err != nil {
		return err
	}
	if invitation.InvitedUser != sec.Identity.ID {
		return bizerror.ErrForbidden
	}

	if err := db.Where("id = ?", id).Delete(&domain.WorkspaceInvitation{}).Error; err != nil {
		return err
	}

	effect.RunFunc([]effect.Effect{
		{Desc: "notify inviter of rejection", Act: func() error {
			return notification.NotifyFunc(invitation.InvitedBy, sec.Identity.ID, "invitation rejected",
				sec.Identity.Nickname+" declined the invitation",
				domain.TargetRef{TargetKind: domain.TargetWorkspace, TargetId: invitation.WorkspaceID},
				notification.CategoryMembership)
		}},
	})
	return nil
}

// QueryInvitations pending invitations addressed to the current user
func QueryInvitations(sec *session.Session) (*[]domain.WorkspaceInvitationDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	var invitations []domain.WorkspaceInvitation
	if err := db.Where("invited_user = ? AND expire_time > ?", sec.Identity.ID, time.Now()).
		Order("create_time DESC").Find(&invitations).Error; err != nil {
		return nil, err
	}

	records := make([]domain.WorkspaceInvitationDetail, 0, len(invitations))
	if len(invitations) == 0 {
		return &records, nil
	}

	workspaceIds := make([]types.ID, 0, len(invitations))
	inviterIds := make([]types.ID, 0, len(invitations))
	for _, inv := range invitations {
		workspaceIds = append(workspaceIds, inv.WorkspaceID)
		inviterIds = append(inviterIds, inv.InvitedBy)
	}

	var workspaces []domain.Workspace
	if err := db.Where("id IN (?)", workspaceIds).Find(&workspaces).Error; err != nil {
		return nil, err
	}
	workspaceNames := map[types.ID]string{}
	for _, w := range workspaces {
		workspaceNames[w.ID] = w.Name
	}
	inviterNames, err := account.QueryAccountNames(inviterIds)
	if err != nil {
		return nil, err
	}

	for _, inv := range invitations {
		records = append(records, domain.WorkspaceInvitationDetail{
			WorkspaceInvitation: inv,
			WorkspaceName:       workspaceNames[inv.WorkspaceID],
			InviterName:         inviterNames[inv.InvitedBy],
		})
	}
	return &records, nil
}

func invitationOf(db *gorm.DB, id types.ID) (*domain.WorkspaceInvitation, error) {
	record := domain.WorkspaceInvitation{}
	if err := db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}
