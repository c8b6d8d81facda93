package readcache_test

import (
	"testing"
	"time"

	"cowork/readcache"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestKeys(t *testing.T) {
	RegisterTestingT(t)

	t.Run("keys encode scope ids and viewer", func(t *testing.T) {
		Expect(readcache.WorkspaceListKey(7)).To(Equal("ws:list:7"))
		Expect(readcache.WorkspaceDetailKey(3, 7)).To(Equal("ws:detail:3:7"))
		Expect(readcache.WorkspaceMembersKey(3)).To(Equal("ws:members:3"))
		Expect(readcache.DashboardKey(3, 7)).To(Equal("ws:dashboard:3:7"))
		Expect(readcache.ProjectListKey(3, 7)).To(Equal("ws:projects:3:7"))
		Expect(readcache.TaskListKey(11)).To(Equal("ws:tasks:11"))
		Expect(readcache.CommentListKey(13)).To(Equal("ws:comments:13"))
		Expect(readcache.NotificationListKey(7)).To(Equal("notif:list:7"))
	})
}

func TestStore(t *testing.T) {
	RegisterTestingT(t)

	t.Run("set get delete roundtrip", func(t *testing.T) {
		readcache.Reset()

		readcache.Set("k1", "v1", time.Minute)
		v, found := readcache.Get("k1")
		Expect(found).To(BeTrue())
		Expect(v).To(Equal("v1"))

		readcache.Delete("k1")
		_, found = readcache.Get("k1")
		Expect(found).To(BeFalse())
	})

	t.Run("missing key is a miss", func(t *testing.T) {
		readcache.Reset()
		_, found := readcache.Get("nope")
		Expect(found).To(BeFalse())
	})
}

func TestInvalidation(t *testing.T) {
	RegisterTestingT(t)

	seed := func(keys ...string) {
		for _, k := range keys {
			readcache.Set(k, "x", time.Minute)
		}
	}
	gone := func(keys ...string) {
		for _, k := range keys {
			_, found := readcache.Get(k)
			Expect(found).To(BeFalse(), "expected %s to be invalidated", k)
		}
	}
	alive := func(keys ...string) {
		for _, k := range keys {
			_, found := readcache.Get(k)
			Expect(found).To(BeTrue(), "expected %s to survive", k)
		}
	}

	var workspaceId, projectId, taskId types.ID = 1, 10, 100
	var alice, bob, carol types.ID = 7, 8, 9

	t.Run("workspace scope fans out to member list and per viewer keys", func(t *testing.T) {
		readcache.Reset()
		seed(
			readcache.WorkspaceMembersKey(workspaceId),
			readcache.WorkspaceListKey(alice), readcache.WorkspaceListKey(bob), readcache.WorkspaceListKey(carol),
			readcache.WorkspaceDetailKey(workspaceId, alice),
			readcache.DashboardKey(workspaceId, alice),
		)

		readcache.InvalidateWorkspaceScope(workspaceId, alice, bob)

		gone(
			readcache.WorkspaceMembersKey(workspaceId),
			readcache.WorkspaceListKey(alice), readcache.WorkspaceListKey(bob),
			readcache.WorkspaceDetailKey(workspaceId, alice),
			readcache.DashboardKey(workspaceId, alice),
		)
		// carol was not named, her list expires by TTL instead
		alive(readcache.WorkspaceListKey(carol))
	})

	t.Run("project scope kills task list plus per viewer project keys", func(t *testing.T) {
		readcache.Reset()
		seed(
			readcache.TaskListKey(projectId),
			readcache.ProjectListKey(workspaceId, alice),
			readcache.DashboardKey(workspaceId, alice),
			readcache.ProjectListKey(workspaceId, carol),
		)

		readcache.InvalidateProjectScope(workspaceId, projectId, alice)

		gone(
			readcache.TaskListKey(projectId),
			readcache.ProjectListKey(workspaceId, alice),
			readcache.DashboardKey(workspaceId, alice),
		)
		alive(readcache.ProjectListKey(workspaceId, carol))
	})

	t.Run("task scope kills task and comment lists", func(t *testing.T) {
		readcache.Reset()
		seed(
			readcache.TaskListKey(projectId),
			readcache.CommentListKey(taskId),
			readcache.DashboardKey(workspaceId, bob),
		)

		readcache.InvalidateTaskScope(workspaceId, projectId, taskId, bob)

		gone(
			readcache.TaskListKey(projectId),
			readcache.CommentListKey(taskId),
			readcache.DashboardKey(workspaceId, bob),
		)
	})

	t.Run("notification list is per user", func(t *testing.T) {
		readcache.Reset()
		seed(readcache.NotificationListKey(alice), readcache.NotificationListKey(bob))

		readcache.InvalidateNotificationList(alice)

		gone(readcache.NotificationListKey(alice))
		alive(readcache.NotificationListKey(bob))
	})
}
