package notification_test

import (
	"testing"

	"cowork/domain"
	"cowork/notification"
	"cowork/persistence"
	"cowork/readcache"
	"cowork/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func notificationTestSetup(t *testing.T) *testinfra.TestDatabase {
	testDatabase := testinfra.StartMysqlTestDatabase("cowork")
	persistence.ActiveDataSourceManager = testDatabase.DS
	Expect(testDatabase.DS.GormDB().AutoMigrate(&notification.Notification{}).Error).To(BeNil())
	readcache.Reset()
	return testDatabase
}

func TestNotify(t *testing.T) {
	RegisterTestingT(t)

	target := domain.TargetRef{TargetKind: domain.TargetTask, TargetId: 1, TargetText: "t"}

	t.Run("actors never notify themselves", func(t *testing.T) {
		testDatabase := notificationTestSetup(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)

		Expect(notification.Notify(100, 100, "x", "y", target, notification.CategoryTaskUpdated)).To(BeNil())
		Expect(notification.Notify(0, 100, "x", "y", target, notification.CategoryTaskUpdated)).To(BeNil())

		var count int
		Expect(testDatabase.DS.GormDB().Model(&notification.Notification{}).Count(&count).Error).To(BeNil())
		Expect(count).To(BeZero())

		Expect(notification.Notify(200, 100, "x", "y", target, notification.CategoryTaskUpdated)).To(BeNil())
		Expect(testDatabase.DS.GormDB().Model(&notification.Notification{}).Count(&count).Error).To(BeNil())
		Expect(count).To(Equal(1))
	})

	t.Run("bulk filters the actor and deduplicates", func(t *testing.T) {
		testDatabase := notificationTestSetup(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)

		recipients := []types.ID{200, 100, 200, 0, 300}
		Expect(notification.NotifyBulk(recipients, 100, "x", "y", target,
			notification.CategoryMembership)).To(BeNil())

		var got []types.ID
		Expect(testDatabase.DS.GormDB().Model(&notification.Notification{}).
			Order("recipient ASC").Pluck("recipient", &got).Error).To(BeNil())
		Expect(got).To(Equal([]types.ID{200, 300}))
	})
}

func TestQueryAndMarkRead(t *testing.T) {
	RegisterTestingT(t)

	target := domain.TargetRef{TargetKind: domain.TargetWorkspace, TargetId: 1}

	t.Run("query is per recipient, newest first, cached", func(t *testing.T) {
		testDatabase := notificationTestSetup(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)

		Expect(notification.Notify(200, 100, "first", "m", target, notification.CategoryMembership)).To(BeNil())
		Expect(notification.Notify(200, 100, "second", "m", target, notification.CategoryMembership)).To(BeNil())
		Expect(notification.Notify(300, 100, "other", "m", target, notification.CategoryMembership)).To(BeNil())

		bob := testinfra.BuildSecSession(200, "bob")
		records, err := notification.QueryNotifications(&notification.NotificationQuery{}, bob)
		Expect(err).To(BeNil())
		Expect(len(*records)).To(Equal(2))
		Expect((*records)[0].Title).To(Equal("second"))

		_, found := readcache.Get(readcache.NotificationListKey(200))
		Expect(found).To(BeTrue())
	})

	t.Run("marking read flips the flag and invalidates the list", func(t *testing.T) {
		testDatabase := notificationTestSetup(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)

		Expect(notification.Notify(200, 100, "a", "m", target, notification.CategoryMembership)).To(BeNil())
		Expect(notification.Notify(200, 100, "b", "m", target, notification.CategoryMembership)).To(BeNil())

		bob := testinfra.BuildSecSession(200, "bob")
		records, err := notification.QueryNotifications(&notification.NotificationQuery{UnreadOnly: true}, bob)
		Expect(err).To(BeNil())
		Expect(len(*records)).To(Equal(2))

		Expect(notification.MarkRead((*records)[0].ID, bob)).To(BeNil())
		records, err = notification.QueryNotifications(&notification.NotificationQuery{UnreadOnly: true}, bob)
		Expect(err).To(BeNil())
		Expect(len(*records)).To(Equal(1))

		// recipients can only mark their own
		mallory := testinfra.BuildSecSession(999, "mallory")
		Expect(notification.MarkRead((*records)[0].ID, mallory)).To(BeNil())
		records, err = notification.QueryNotifications(&notification.NotificationQuery{UnreadOnly: true}, bob)
		Expect(err).To(BeNil())
		Expect(len(*records)).To(Equal(1))

		Expect(notification.MarkAllRead(bob)).To(BeNil())
		records, err = notification.QueryNotifications(&notification.NotificationQuery{UnreadOnly: true}, bob)
		Expect(err).To(BeNil())
		Expect(len(*records)).To(BeZero())
	})
}
