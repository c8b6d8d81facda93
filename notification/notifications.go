package notification

import (
	"cowork/domain"
	"cowork/idgen"
	"cowork/persistence"
	"cowork/readcache"
	"cowork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
)

var (
	notificationIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	NotifyFunc     = Notify
	NotifyBulkFunc = NotifyBulk
)

// Notify create one notification. Actors are never notified of their own
// actions: recipient == actor is silently dropped.
func Notify(recipient, actor types.ID, title, message string, target domain.TargetRef, category string) error {
	if recipient == actor || recipient == 0 {
		return nil
	}

	record := Notification{
		ID:         idgen.NextID(notificationIdWorker),
		Recipient:  recipient,
		Actor:      actor,
		Title:      title,
		Message:    message,
		Category:   category,
		TargetRef:  target,
		CreateTime: types.CurrentTimestamp(),
	}
	if err := persistence.ActiveDataSourceManager.GormDB().Create(&record).Error; err != nil {
		return err
	}
	readcache.InvalidateNotificationList(recipient)
	return nil
}

// NotifyBulk fan one notification out to a recipient set, deduplicated and
// with the actor excluded.
func NotifyBulk(recipients []types.ID, actor types.ID, title, message string, target domain.TargetRef, category string) error {
	seen := map[types.ID]bool{}
	db := persistence.ActiveDataSourceManager.GormDB()
	for _, recipient := range recipients {
		if recipient == actor || recipient == 0 || seen[recipient] {
			continue
		}
		seen[recipient] = true

		record := Notification{
			ID:         idgen.NextID(notificationIdWorker),
			Recipient:  recipient,
			Actor:      actor,
			Title:      title,
			Message:    message,
			Category:   category,
			TargetRef:  target,
			CreateTime: types.CurrentTimestamp(),
		}
		if err := db.Create(&record).Error; err != nil {
			return err
		}
		readcache.InvalidateNotificationList(recipient)
	}
	return nil
}

func QueryNotifications(q *NotificationQuery, sec *session.Session) (*[]Notification, error) {
	key := readcache.NotificationListKey(sec.Identity.ID)
	if !q.UnreadOnly {
		if cached, found := readcache.Get(key); found {
			if records, ok := cached.(*[]Notification); ok {
				return records, nil
			}
		}
	}

	db := persistence.ActiveDataSourceManager.GormDB().Where("recipient = ?", sec.Identity.ID)
	if q.UnreadOnly {
		db = db.Where("is_read = ?", false)
	}
	var records []Notification
	if err := db.Order("create_time DESC, id DESC").Limit(100).Find(&records).Error; err != nil {
		return nil, err
	}

	if !q.UnreadOnly {
		readcache.Set(key, &records, readcache.TTLNotification)
	}
	return &records, nil
}

func MarkRead(id types.ID, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB().
		Model(&Notification{}).
		Where("id = ? AND recipient = ?", id, sec.Identity.ID).
		Updates(map[string]interface{}{"is_read": true, "read_time": types.CurrentTimestamp()})
	if db.Error != nil {
		return db.Error
	}
	readcache.InvalidateNotificationList(sec.Identity.ID)
	return nil
}

func MarkAllRead(sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB().
		Model(&Notification{}).
		Where("recipient = ? AND is_read = ?", sec.Identity.ID, false).
		Updates(map[string]interface{}{"is_read": true, "read_time": types.CurrentTimestamp()})
	if db.Error != nil {
		return db.Error
	}
	readcache.InvalidateNotificationList(sec.Identity.ID)
	return nil
}
