package readcache

import (
	"github.com/fundwit/go-commons/types"
)

// Invalidation is a deterministic fan-out from "which entity changed" to
// "which keys must die". Per-viewer keys can only be enumerated for the
// users passed in; remaining viewers are repaired by TTL expiry.

// InvalidateWorkspaceScope workspace or membership change: the member list
// plus every given user's list, detail and dashboard keys.
func InvalidateWorkspaceScope(workspaceId types.ID, userIds ...types.ID) {
	keys := []string{WorkspaceMembersKey(workspaceId)}
	for _, userId := range userIds {
		keys = append(keys,
			WorkspaceListKey(userId),
			WorkspaceDetailKey(workspaceId, userId),
			DashboardKey(workspaceId, userId))
	}
	Delete(keys...)
}

// InvalidateProjectScope project or project membership change: project list
// and dashboard per given viewer, plus the project's task list.
func InvalidateProjectScope(workspaceId, projectId types.ID, userIds ...types.ID) {
	keys := []string{TaskListKey(projectId)}
	for _, userId := range userIds {
		keys = append(keys,
			ProjectListKey(workspaceId, userId),
			DashboardKey(workspaceId, userId))
	}
	Delete(keys...)
}

// InvalidateTaskScope task or comment change: the project's task list, the
// task's comment list and each given viewer's dashboard.
func InvalidateTaskScope(workspaceId, projectId, taskId types.ID, userIds ...types.ID) {
	keys := []string{TaskListKey(projectId), CommentListKey(taskId)}
	for _, userId := range userIds {
		keys = append(keys, DashboardKey(workspaceId, userId))
	}
	Delete(keys...)
}

func InvalidateNotificationList(userIds ...types.ID) {
	for _, userId := range userIds {
		Delete(NotificationListKey(userId))
	}
}
