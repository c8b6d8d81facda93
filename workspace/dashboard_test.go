package workspace_test

import (
	"testing"

	"cowork/bizerror"
	"cowork/domain"
	"cowork/readcache"
	"cowork/testinfra"
	"cowork/workspace"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestQueryDashboard(t *testing.T) {
	RegisterTestingT(t)

	t.Run("counts are shaped by what the viewer can see", func(t *testing.T) {
		testDatabase := workspaceTestSetup(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)

		db := testDatabase.DS.GormDB()
		now := types.CurrentTimestamp()
		Expect(db.Create(&domain.Workspace{ID: 1, Name: "demo", Visibility: domain.WorkspaceVisibilityPrivate,
			Creator: 100, CreateTime: now}).Error).To(BeNil())
		addMember(testDatabase, 1, 100, domain.WorkspaceRoleOwner)
		addMember(testDatabase, 1, 200, domain.WorkspaceRoleMember)

		// a private project bob is not part of, and a public one
		Expect(db.Create(&domain.Project{ID: 10, WorkspaceID: 1, Title: "hidden", Status: domain.ProjectStatusActive,
			Visibility: domain.ProjectVisibilityPrivate, Creator: 100, CreateTime: now, UpdateTime: now}).Error).To(BeNil())
		Expect(db.Create(&domain.Project{ID: 11, WorkspaceID: 1, Title: "open", Status: domain.ProjectStatusActive,
			Visibility: domain.ProjectVisibilityPublic, Creator: 100, CreateTime: now, UpdateTime: now}).Error).To(BeNil())

		Expect(db.Create(&domain.Task{ID: 101, ProjectID: 10, Title: "a", Status: domain.TaskStatusPending,
			Priority: domain.TaskPriorityMedium, Creator: 100, AssignedTo: 200, CreateTime: now, UpdateTime: now}).Error).To(BeNil())
		Expect(db.Create(&domain.Task{ID: 102, ProjectID: 11, Title: "b", Status: domain.TaskStatusPending,
			Priority: domain.TaskPriorityMedium, Creator: 100, AssignedTo: 200, CreateTime: now, UpdateTime: now}).Error).To(BeNil())
		Expect(db.Create(&domain.Task{ID: 103, ProjectID: 11, Title: "c", Status: domain.TaskStatusCompleted,
			Priority: domain.TaskPriorityMedium, Creator: 100, CreateTime: now, UpdateTime: now}).Error).To(BeNil())

		owner, err := workspace.QueryDashboard(1, testinfra.BuildSecSession(100, "alice"))
		Expect(err).To(BeNil())
		Expect(owner.ProjectCount).To(Equal(2))
		Expect(owner.MemberCount).To(Equal(2))
		Expect(owner.TaskCounts).To(Equal(map[string]int{
			domain.TaskStatusPending: 2, domain.TaskStatusCompleted: 1,
		}))
		Expect(owner.MyTasks).To(BeEmpty())
		Expect(len(owner.RecentMembers)).To(Equal(2))

		member, err := workspace.QueryDashboard(1, testinfra.BuildSecSession(200, "bob"))
		Expect(err).To(BeNil())
		Expect(member.ProjectCount).To(Equal(1))
		Expect(member.TaskCounts).To(Equal(map[string]int{
			domain.TaskStatusPending: 1, domain.TaskStatusCompleted: 1,
		}))

		// only open tasks inside projects bob can see
		Expect(len(member.MyTasks)).To(Equal(1))
		Expect(member.MyTasks[0].ID).To(Equal(types.ID(102)))

		// cached per workspace and viewer
		_, found := readcache.Get(readcache.DashboardKey(1, 100))
		Expect(found).To(BeTrue())
		_, found = readcache.Get(readcache.DashboardKey(1, 200))
		Expect(found).To(BeTrue())

		_, err = workspace.QueryDashboard(1, testinfra.BuildSecSession(999, "mallory"))
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})
}
