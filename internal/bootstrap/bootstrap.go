package bootstrap

import (
	"context"
	"database/sql"
	"log/slog"

	"cloud.google.com/go/firestore"
	gcpkms "cloud.google.com/go/kms/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"firebase.google.com/go/v4/auth"

	vertex "github.com/vglug/intake-backend/internal/client/vertex"
	"github.com/vglug/intake-backend/internal/config"
	"github.com/vglug/intake-backend/pkg/logger"
)

type Bootstrap struct {
	Log           *slog.Logger
	Firestore     *firestore.Client
	Firebase      *auth.Client
	DB            *sql.DB
	KMS           *gcpkms.KeyManagementClient
	SecretManager *secretmanager.Client
	VertexAdapter *vertex.Adapter
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	bs.Firebase, err = InitFirebase(applicationCtx)
	if err != nil {
		return bs, err
	}
	bs.DB, err = InitDB(applicationCtx, cfg.DBPath)
	if err != nil {
		return bs, err
	}
	bs.KMS, err = gcpkms.NewKeyManagementClient(applicationCtx)
	if err != nil {
		return bs, err
	}
	bs.SecretManager, err = secretmanager.NewClient(applicationCtx)
	if err != nil {
		return bs, err
	}
	bs.VertexAdapter, err = vertex.NewAdapter(applicationCtx, bs.Log, cfg.ProjectID, cfg.Region, cfg.VertexModel)
	if err != nil {
		return bs, err
	}

	return bs, nil
}

func (bs *Bootstrap) Close() {
	if bs.VertexAdapter != nil {
		bs.VertexAdapter.Close()
	}
	if bs.SecretManager != nil {
		bs.SecretManager.Close()
	}
	if bs.KMS != nil {
		bs.KMS.Close()
	}
	if bs.DB != nil {
		bs.DB.Close()
	}
	if bs.Firestore != nil {
		bs.Firestore.Close()
	}
}
