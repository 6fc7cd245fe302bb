package minio

import (
	"bytes"
	"context"
	"io"

	"github.com/DRSN-tech/feedconv/internal/cfg"
	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// ExportRepo хранит CSV-выгрузки в MinIO.
type ExportRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewExportRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ExportRepo {
	return &ExportRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает выгрузку и возвращает ключ объекта.
func (x *ExportRepo) Upload(ctx context.Context, export *domain.ExportObject) (string, error) {
	reader := bytes.NewReader(export.Bytes)

	info, err := x.mc.PutObject(ctx, x.cfg.BucketName, export.ObjectKey, reader, int64(len(export.Bytes)), minio.PutObjectOptions{
		ContentType:        export.ContentType,
		ContentDisposition: `attachment; filename="` + export.FileName + `"`,
		UserMetadata:       map[string]string{"run-id": export.ID},
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// Download читает объект целиком. Отсутствующий ключ дает e.ErrExportNotFound.
func (x *ExportRepo) Download(ctx context.Context, key string) ([]byte, error) {
	obj, err := x.mc.GetObject(ctx, x.cfg.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, e.Wrap(key, e.ErrExportNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return data, nil
}

// Delete удаляет объект из MinIO по указанному ключу.
func (x *ExportRepo) Delete(ctx context.Context, key string) error {
	if err := x.mc.RemoveObject(ctx, x.cfg.BucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
