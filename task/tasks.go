package task

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
	taskIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateTaskFunc   = CreateTask
	QueryTasksFunc   = QueryTasks
	DetailTaskFunc   = DetailTask
	UpdateTaskFunc   = UpdateTask
	DeleteTaskFunc   = DeleteTask
	StartTaskFunc    = StartTask
	CompleteTaskFunc = CompleteTask
)

func CreateTask(c *domain.TaskCreating, sec *session.Session) (*domain.Task, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	project, err := projectOf(db, c.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckTaskFunc(db, authz.OpWrite, project, sec); err != nil {
		return nil, err
	}
	if c.AssignedTo != 0 {
		_, isMember, err := authz.WorkspaceRoleOfFunc(db, project.WorkspaceID, c.AssignedTo)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, bizerror.ErrNotWorkspaceMember
		}
	}

	priority := c.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}
	now := types.CurrentTimestamp()
	record := domain.Task{
		ID:          idgen.NextID(taskIdWorker),
		ProjectID:   c.ProjectID,
		Title:       c.Title,
		Description: c.Description,
		Priority:    priority,
		Status:      domain.TaskStatusPending,
		AssignedTo:  c.AssignedTo,
		Creator:     sec.Identity.ID,
		DueDate:     c.DueDate,
		CreateTime:  now,
		UpdateTime:  now,
	}

	var records []activity.ActivityRecord
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		a, err := activity.AppendFunc(tx, project.WorkspaceID, sec.Identity, activity.ActionCreateTask,
			domain.TargetRef{TargetKind: domain.TargetTask, TargetId: record.ID, TargetText: record.Title})
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
		{Desc: "invalidate task caches", Act: func() error {
			readcache.InvalidateTaskScope(project.WorkspaceID, project.ID, record.ID, sec.Identity.ID, record.AssignedTo)
			return nil
		}},
		{Desc: "notify assignee", Act: func() error {
			return notification.NotifyFunc(record.AssignedTo, sec.Identity.ID, "task assigned",
				"task "+record.Title+" is assigned to you",
				domain.TargetRef{TargetKind: domain.TargetTask, TargetId: record.ID, TargetText: record.Title},
				notification.CategoryTaskAdded)
		}},
		{Desc: "index activities", Act: func() error {
			return activity.IndexActivitiesFunc(contextOf(sec), records)
		}},
	})
	return &record, nil
}

func QueryTasks(q *domain.TaskQuery, sec *session.Session) (*[]domain.Task, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	project, err := projectOf(db, q.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckTaskFunc(db, authz.OpRead, project, sec); err != nil {
		return nil, err
	}

	// the cached list is the unfiltered one, status filters always hit the store
	key := readcache.TaskListKey(q.ProjectID)
	if q.Status == "" {
		if cached, ok := readcache.Get(key); ok {
			if records, ok := cached.(*[]domain.Task); ok {
				return records, nil
			}
		}
	}

	query := db.Where("project_id = ?", q.ProjectID)
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	records := []domain.Task{}
	if err := query.Order("create_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}

	if q.Status == "" {
		readcache.Set(key, &records, readcache.TTLTasks)
	}
	return &records, nil
}

func DetailTask(id types.ID, sec *session.Session) (*domain.Task, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	record, project, err := taskOf(db, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckTaskFunc(db, authz.OpRead, project, sec); err != nil {
		return nil, err
	}
	return record, nil
}

func UpdateTask(id types.ID, u *domain.TaskUpdating, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	record, project, err := taskOf(db, id)
	if err != nil {
		return err
	}
	if err := authz.CheckTaskFunc(db, authz.OpWrite, project, sec); err != nil {
		return err
	}
	if u.AssignedTo != 0 && u.AssignedTo != record.AssignedTo {
		_, isMember, err := authz.WorkspaceRoleOfFunc(db, project.WorkspaceID, u.AssignedTo)
		if err != nil {
			return err
		}
		if !isMember {
			return bizerror.ErrNotWorkspaceMember
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&domain.Task{}).Where("id = ?", id).Updates(map[string]interface{}{
			"title":       u.Title,
			"description": u.Description,
			"priority":    u.Priority,
			"assigned_to": u.AssignedTo,
			"due_date":    u.DueDate,
			"update_time": types.CurrentTimestamp(),
		}).Error
	})
	if err != nil {
		return err
	}

	effect.RunFunc([]effect.Effect{
		{Desc: "invalidate task caches", Act: func() error {
			readcache.InvalidateTaskScope(project.WorkspaceID, project.ID, id, sec.Identity.ID, u.AssignedTo)
			return nil
		}},
		{Desc: "notify new assignee", Act: func() error {
			if u.AssignedTo == record.AssignedTo {
				return nil
			}
			return notification.NotifyFunc(u.AssignedTo, sec.Identity.ID, "task assigned",
				"task "+u.Title+" is assigned to you",
				domain.TargetRef{TargetKind: domain.TargetTask, TargetId: id, TargetText: u.Title},
				notification.CategoryTaskUpdated)
		}},
	})
	return nil
}

func DeleteTask(id types.ID, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	record, project, err := taskOf(db, id)
	if err != nil {
		return err
	}
	if err := authz.CheckTaskFunc(db, authz.OpWrite, project, sec); err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Task{}).Error
	})
	if err != nil {
		return err
	}

	effect.RunFunc([]effect.Effect{
		{Desc: "invalidate task caches", Act: func() error {
			readcache.InvalidateTaskScope(project.WorkspaceID, project.ID, id, sec.Identity.ID, record.AssignedTo)
			return nil
		}},
	})
	return nil
}

// StartTask move a pending task to in progress and record who started it.
// The transition is a compare and swap: under concurrent starts exactly one
// caller wins, the others get a conflict.
func StartTask(t *domain.TaskTransition, sec *session.Session) (*domain.Task, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	record, project, err := taskOf(db, t.TaskID)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckTaskFunc(db, authz.OpWrite, project, sec); err != nil {
		return nil, err
	}
	if record.Status != domain.TaskStatusPending {
		return nil, bizerror.ErrTaskNotPending
	}

	var records []activity.ActivityRecord
	err = db.Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&domain.Task{}).
			Where("id = ? AND status = ? AND started_by = 0", t.TaskID, domain.TaskStatusPending).
			Updates(map[string]interface{}{
				"status":      domain.TaskStatusInProgress,
				"started_by":  sec.Identity.ID,
				"update_time": types.CurrentTimestamp(),
			})
		if q.Error != nil {
			return q.Error
		}
		if q.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		a, err := activity.AppendFunc(tx, project.WorkspaceID, sec.Identity, activity.ActionStartTask,
			domain.TargetRef{TargetKind: domain.TargetTask, TargetId: record.ID, TargetText: record.Title})
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
		{Desc: "invalidate task caches", Act: func() error {
			readcache.InvalidateTaskScope(project.WorkspaceID, project.ID, record.ID,
				sec.Identity.ID, record.Creator, record.AssignedTo)
			return nil
		}},
		{Desc: "notify task watchers", Act: func() error {
			return notification.NotifyBulkFunc([]types.ID{record.Creator, record.AssignedTo}, sec.Identity.ID,
				"task started", sec.Identity.Nickname+" started task "+record.Title,
				domain.TargetRef{TargetKind: domain.TargetTask, TargetId: record.ID, TargetText: record.Title},
				notification.CategoryTaskUpdated)
		}},
		{Desc: "index activities", Act: func() error {
			return activity.IndexActivitiesFunc(contextOf(sec), records)
		}},
	})
	return reloadTask(db, t.TaskID)
}

// CompleteTask finish an in progress task, stamping the completion time.
// CompletedAt is set here and nowhere else.
func CompleteTask(t *domain.TaskTransition, sec *session.Session) (*domain.Task, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	record, project, err := taskOf(db, t.TaskID)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckTaskFunc(db, authz.OpWrite, project, sec); err != nil {
		return nil, err
	}
	if record.Status != domain.TaskStatusInProgress {
		return nil, bizerror.ErrTaskNotInProgress
	}

	var records []activity.ActivityRecord
	err = db.Transaction(func(tx *gorm.DB) error {
		now := types.CurrentTimestamp()
		q := tx.Model(&domain.Task{}).
			Where("id = ? AND status = ?", t.TaskID, domain.TaskStatusInProgress).
			Updates(map[string]interface{}{
				"status":       domain.TaskStatusCompleted,
				"completed_at": now,
				"update_time":  now,
			})
		if q.Error != nil {
			return q.Error
		}
		if q.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		a, err := activity.AppendFunc(tx, project.WorkspaceID, sec.Identity, activity.ActionCompleteTask,
			domain.TargetRef{TargetKind: domain.TargetTask, TargetId: record.ID, TargetText: record.Title})
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
		{Desc: "invalidate task caches", Act: func() error {
			readcache.InvalidateTaskScope(project.WorkspaceID, project.ID, record.ID,
				sec.Identity.ID, record.Creator, record.AssignedTo)
			return nil
		}},
		{Desc: "notify task watchers", Act: func() error {
			return notification.NotifyBulkFunc([]types.ID{record.Creator, record.AssignedTo}, sec.Identity.ID,
				"task completed", sec.Identity.Nickname+" completed task "+record.Title,
				domain.TargetRef{TargetKind: domain.TargetTask, TargetId: record.ID, TargetText: record.Title},
				notification.CategoryTaskCompleted)
		}},
		{Desc: "index activities", Act: func() error {
			return activity.IndexActivitiesFunc(contextOf(sec), records)
		}},
	})
	return reloadTask(db, t.TaskID)
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

// taskOf load a task together with its owning project
func taskOf(db *gorm.DB, id types.ID) (*domain.Task, *domain.Project, error) {
	record := domain.Task{}
	if err := db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, bizerror.ErrNotFound
		}
		return nil, nil, err
	}
	project, err := projectOf(db, record.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return &record, project, nil
}

func reloadTask(db *gorm.DB, id types.ID) (*domain.Task, error) {
	record := domain.Task{}
	if err := db.Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func contextOf(sec *session.Session) context.Context {
	if sec != nil && sec.Context != nil {
		return sec.Context
	}
	return context.Background()
}
