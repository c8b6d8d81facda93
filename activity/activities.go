package activity

import (
	"cowork/authz"
	"cowork/domain"
	"cowork/idgen"
	"cowork/persistence"
	"cowork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	activityIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	AppendFunc          = Append
	QueryActivitiesFunc = QueryActivities
)

// Append write one audit record inside the caller's transaction
func Append(tx *gorm.DB, workspaceId types.ID, identity session.Identity, actionType string,
	target domain.TargetRef) (*ActivityRecord, error) {

	record := ActivityRecord{
		ID:          idgen.NextID(activityIdWorker),
		WorkspaceID: workspaceId,
		ActorId:     identity.ID,
		ActorName:   identity.Nickname,
		ActionType:  actionType,
		TargetRef:   target,
		CreateTime:  types.CurrentTimestamp(),
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func QueryActivities(q *ActivityQuery, sec *session.Session) (*[]ActivityRecord, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := authz.CheckWorkspaceFunc(db, authz.OpRead, q.WorkspaceID, sec); err != nil {
		return nil, err
	}

	var records []ActivityRecord
	if err := db.Where("workspace_id = ?", q.WorkspaceID).
		Order("create_time DESC").Limit(100).Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}

// QueryRecent latest records for the dashboard, membership already checked by the caller
func QueryRecent(db *gorm.DB, workspaceId types.ID, limit int) ([]ActivityRecord, error) {
	var records []ActivityRecord
	if err := db.Where("workspace_id = ?", workspaceId).
		Order("create_time DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
