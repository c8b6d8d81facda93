package activity

import (
	"context"
	"time"

	"cowork/client/es"
	"cowork/persistence"

	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const ActivityIndexName = "activities"

var (
	IndexActivitiesFunc = IndexActivities

	fullSyncLimiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 1)
)

// IndexActivities best-effort indexing of committed audit records.
// Failures are logged, the records are picked up again by the full sync.
func IndexActivities(ctx context.Context, records []ActivityRecord) error {
	for _, record := range records {
		if err := es.IndexFunc(ctx, ActivityIndexName, record.ID, record); err != nil {
			logrus.Warnf("failed to index activity %d: %v", record.ID, err)
			return err
		}
	}
	return nil
}

func StartIndexFullSyncCron() {
	crontab := cron.New(cron.WithSeconds())
	crontab.AddFunc("0 0 23 * * ?", IndicesFullSync)
	crontab.Start()
}

func IndicesFullSync() {
	page := 1
	pageSize := 500

	db := persistence.ActiveDataSourceManager.GormDB()
	ctx := context.Background()

	for {
		if err := fullSyncLimiter.Wait(ctx); err != nil {
			logrus.Errorf("fully index: limiter interrupted: %v", err)
			return
		}

		var records []ActivityRecord
		if err := db.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).
			Find(&records).Error; err != nil {
			logrus.Errorf("fully index: page = %d, pageSize = %d, err = %v", page, pageSize, err)
			return
		}

		if len(records) == 0 {
			logrus.Infof("fully index: there are no more activities to index")
			return
		}

		if err := IndexActivitiesFunc(ctx, records); err != nil {
			logrus.Errorf("fully index: page = %d failed: %v", page, err)
		}
		page++
	}
}
