package workspace

import (
	"io"

	"cowork/authz"
	"cowork/client/s3"
	"cowork/domain"
	"cowork/effect"
	"cowork/persistence"
	"cowork/readcache"
	"cowork/session"

	"github.com/fundwit/go-commons/types"
)

var (
	UploadLogoFunc   = UploadLogo
	DownloadLogoFunc = DownloadLogo
)

func logoKey(workspaceId types.ID) string {
	return "workspace-logos/" + workspaceId.String()
}

func UploadLogo(workspaceId types.ID, r io.Reader, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := authz.CheckWorkspaceFunc(db, authz.OpManage, workspaceId, sec); err != nil {
		return err
	}

	key := logoKey(workspaceId)
	if err := s3.PutObjectFunc(key, r, sec); err != nil {
		return err
	}

	if err := db.Model(&domain.Workspace{}).Where("id = ?", workspaceId).
		Update("logo_url", "/v1/workspaces/"+workspaceId.String()+"/logo").Error; err != nil {
		return err
	}

	memberIds, err := memberIdsOf(db, workspaceId)
	if err != nil {
		return err
	}
	effect.RunFunc([]effect.Effect{
		{Desc: "invalidate workspace caches", Act: func() error {
			readcache.InvalidateWorkspaceScope(workspaceId, memberIds...)
			return nil
		}},
	})
	return nil
}

func DownloadLogo(workspaceId types.ID, sec *session.Session) (io.ReadCloser, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := authz.CheckWorkspaceFunc(db, authz.OpRead, workspaceId, sec); err != nil {
		return nil, err
	}
	return s3.GetObjectFunc(logoKey(workspaceId), sec)
}
