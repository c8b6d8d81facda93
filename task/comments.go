package task

import (
	"cowork/account"
	"cowork/activity"
	"cowork/authz"
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
	commentIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateCommentFunc = CreateComment
	QueryCommentsFunc = QueryComments
)

func CreateComment(c *domain.CommentCreating, sec *session.Session) (*domain.Comment, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	task, project, err := taskOf(db, c.TaskID)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckTaskFunc(db, authz.OpWrite, project, sec); err != nil {
		return nil, err
	}

	record := domain.Comment{
		ID:         idgen.NextID(commentIdWorker),
		TaskID:     c.TaskID,
		Author:     sec.Identity.ID,
		Content:    c.Content,
		CreateTime: types.CurrentTimestamp(),
	}

	var records []activity.ActivityRecord
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		a, err := activity.AppendFunc(tx, project.WorkspaceID, sec.Identity, activity.ActionComment,
			domain.TargetRef{TargetKind: domain.TargetComment, TargetId: record.ID, TargetText: task.Title})
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
		{Desc: "invalidate comment caches", Act: func() error {
			readcache.InvalidateTaskScope(project.WorkspaceID, project.ID, c.TaskID,
				sec.Identity.ID, task.Creator, task.AssignedTo)
			return nil
		}},
		{Desc: "notify task watchers", Act: func() error {
			return notification.NotifyBulkFunc([]types.ID{task.Creator, task.AssignedTo}, sec.Identity.ID,
				"new comment", sec.Identity.Nickname+" commented on task "+task.Title,
				domain.TargetRef{TargetKind: domain.TargetTask, TargetId: task.ID, TargetText: task.Title},
				notification.CategoryCommentAdded)
		}},
		{Desc: "index activities", Act: func() error {
			return activity.IndexActivitiesFunc(contextOf(sec), records)
		}},
	})
	return &record, nil
}

// QueryComments oldest first, the way a conversation reads
func QueryComments(q *domain.CommentQuery, sec *session.Session) (*[]domain.CommentDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	_, project, err := taskOf(db, q.TaskID)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckTaskFunc(db, authz.OpRead, project, sec); err != nil {
		return nil, err
	}

	key := readcache.CommentListKey(q.TaskID)
	if cached, ok := readcache.Get(key); ok {
		if records, ok := cached.(*[]domain.CommentDetail); ok {
			return records, nil
		}
	}

	var comments []domain.Comment
	if err := db.Where("task_id = ?", q.TaskID).
		Order("create_time ASC").Find(&comments).Error; err != nil {
		return nil, err
	}

	ids := make([]types.ID, 0, len(comments))
	for _, comment := range comments {
		ids = append(ids, comment.Author)
	}
	names, err := account.QueryAccountNames(ids)
	if err != nil {
		return nil, err
	}

	records := make([]domain.CommentDetail, 0, len(comments))
	for _, comment := range comments {
		records = append(records, domain.CommentDetail{Comment: comment, AuthorName: names[comment.Author]})
	}

	readcache.Set(key, &records, readcache.TTLComments)
	return &records, nil
}
