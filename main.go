package main

import (
	"log"
	"net/http"
	"os"

	"cowork/account"
	"cowork/activity"
	"cowork/bizerror"
	"cowork/client/es"
	"cowork/client/s3"
	"cowork/common"
	"cowork/domain"
	"cowork/infra/tracing"
	"cowork/notification"
	"cowork/persistence"
	"cowork/project"
	"cowork/session"
	"cowork/sessions"
	"cowork/task"
	"cowork/workspace"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("service start")

	closer := tracing.Bootstrap(common.GetServiceName())
	if closer != nil {
		defer closer.Close()
	}

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB().AutoMigrate(
		&account.User{},
		&domain.Workspace{}, &domain.WorkspaceMember{}, &domain.WorkspaceInvitation{},
		&domain.Project{}, &domain.ProjectMember{},
		&domain.Task{}, &domain.Comment{},
		&activity.ActivityRecord{}, &notification.Notification{},
	).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	account.BootstrapRootUser()

	es.CreateClientFromEnv()
	if os.Getenv("OSS_ENDPOINT") != "" {
		s3.Bootstrap()
	}

	engine := gin.New()
	engine.Use(gin.Logger(), bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "cowork")
	})

	sessions.RegisterSessionsHandler(engine)

	secured := session.SimpleAuthFilter()
	account.RegisterUsersRestAPI(engine, secured)
	workspace.RegisterWorkspacesRestAPI(engine, secured)
	project.RegisterProjectsRestAPI(engine, secured)
	project.RegisterProjectMembersRestAPI(engine, secured)
	task.RegisterTasksRestAPI(engine, secured)
	task.RegisterTaskCommentsRestAPI(engine, secured)
	activity.RegisterActivitiesRestAPI(engine, secured)
	notification.RegisterNotificationsRestAPI(engine, secured)

	activity.StartIndexFullSyncCron()

	if err := engine.Run(":80"); err != nil {
		panic(err)
	}
}
