package workspace

import (
	"cowork/account"
	"cowork/activity"
	"cowork/authz"
	"cowork/bizerror"
	"cowork/domain"
	"cowork/persistence"
	"cowork/readcache"
	"cowork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var QueryDashboardFunc = QueryDashboard

// Dashboard is an aggregate view shaped by the viewer: counts only cover
// projects the viewer is allowed to see.
type Dashboard struct {
	WorkspaceID types.ID `json:"workspaceId"`

	ProjectCount int `json:"projectCount"`
	MemberCount  int `json:"memberCount"`

	TaskCounts map[string]int `json:"taskCounts"`

	// open tasks assigned to the viewer, nearest due date first
	MyTasks []domain.Task `json:"myTasks"`

	RecentMembers    []domain.WorkspaceMemberDetail `json:"recentMembers"`
	RecentActivities []activity.ActivityRecord      `json:"recentActivities"`
}

func QueryDashboard(workspaceId types.ID, sec *session.Session) (*Dashboard, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	if _, err := workspaceOf(db, workspaceId); err != nil {
		return nil, err
	}
	role, found, err := authz.WorkspaceRoleOfFunc(db, workspaceId, sec.Identity.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, bizerror.ErrForbidden
	}

	key := readcache.DashboardKey(workspaceId, sec.Identity.ID)
	if cached, ok := readcache.Get(key); ok {
		if record, ok := cached.(*Dashboard); ok {
			return record, nil
		}
	}

	record := &Dashboard{WorkspaceID: workspaceId, TaskCounts: map[string]int{}}

	visible := visibleProjects(db, workspaceId, role, sec.Identity.ID)
	if err := visible.Count(&record.ProjectCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.WorkspaceMember{}).
		Where("workspace_id = ?", workspaceId).Count(&record.MemberCount).Error; err != nil {
		return nil, err
	}

	var projectIds []types.ID
	if err := visible.Pluck("id", &projectIds).Error; err != nil {
		return nil, err
	}
	if len(projectIds) > 0 {
		rows, err := db.Model(&domain.Task{}).
			Select("status, count(*) AS total").Where("project_id IN (?)", projectIds).
			Group("status").Rows()
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		for rows.Next() {
			var status string
			var total int
			if err := rows.Scan(&status, &total); err != nil {
				return nil, err
			}
			record.TaskCounts[status] = total
		}
	}

	record.MyTasks = []domain.Task{}
	if len(projectIds) > 0 {
		if err := db.Where("project_id IN (?) AND assigned_to = ? AND status IN (?)",
			projectIds, sec.Identity.ID, []string{domain.TaskStatusPending, domain.TaskStatusInProgress}).
			Order("due_date ASC, create_time DESC").Limit(5).
			Find(&record.MyTasks).Error; err != nil {
			return nil, err
		}
	}

	var newest []domain.WorkspaceMember
	if err := db.Where("workspace_id = ?", workspaceId).
		Order("join_time DESC").Limit(5).Find(&newest).Error; err != nil {
		return nil, err
	}
	ids := make([]types.ID, 0, len(newest))
	for _, m := range newest {
		ids = append(ids, m.MemberId)
	}
	names, err := account.QueryAccountNames(ids)
	if err != nil {
		return nil, err
	}
	record.RecentMembers = make([]domain.WorkspaceMemberDetail, 0, len(newest))
	for _, m := range newest {
		record.RecentMembers = append(record.RecentMembers,
			domain.WorkspaceMemberDetail{WorkspaceMember: m, MemberName: names[m.MemberId]})
	}

	recent, err := activity.QueryRecent(db, workspaceId, 10)
	if err != nil {
		return nil, err
	}
	record.RecentActivities = recent

	readcache.Set(key, record, readcache.TTLDashboard)
	return record, nil
}

// visibleProjects the projects inside a workspace the user may read: every
// project for elevated roles, public plus joined projects otherwise.
func visibleProjects(db *gorm.DB, workspaceId types.ID, role string, userId types.ID) *gorm.DB {
	q := db.Model(&domain.Project{}).Where("workspace_id = ?", workspaceId)
	if domain.IsElevatedRole(role) {
		return q
	}
	return q.Where("visibility = ? OR id IN (SELECT project_id FROM project_members WHERE member_id = ?)",
		domain.ProjectVisibilityPublic, userId)
}
