package readcache

import (
	"github.com/fundwit/go-commons/types"
)

// Keys encode resource type, scope ids and, for authorization shaped
// responses, the viewing user. They are derived state only: every value must
// be re-derivable from the entity store.

func WorkspaceListKey(userId types.ID) string {
	return "ws:list:" + userId.String()
}

func WorkspaceDetailKey(workspaceId, userId types.ID) string {
	return "ws:detail:" + workspaceId.String() + ":" + userId.String()
}

func WorkspaceMembersKey(workspaceId types.ID) string {
	return "ws:members:" + workspaceId.String()
}

func DashboardKey(workspaceId, userId types.ID) string {
	return "ws:dashboard:" + workspaceId.String() + ":" + userId.String()
}

func ProjectListKey(workspaceId, userId types.ID) string {
	return "ws:projects:" + workspaceId.String() + ":" + userId.String()
}

func TaskListKey(projectId types.ID) string {
	return "ws:tasks:" + projectId.String()
}

func CommentListKey(taskId types.ID) string {
	return "ws:comments:" + taskId.String()
}

func NotificationListKey(userId types.ID) string {
	return "notif:list:" + userId.String()
}
