package loader

// Bulk read and write operations over media file rows.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"media-inventory/core/utils"
	"media-inventory/feature/inventory/dump"
	"media-inventory/feature/inventory/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"
)

// GetExisting looks up, in one batched read, every persisted media file under
// the directory whose path matches one of the dump file entries. Paths not
// found are simply absent from the returned mapping.
func (l *Loader) GetExisting(ctx context.Context, directory *models.Directory, files []map[string]any) (map[string]*models.MediaFile, error) {
	if len(files) == 0 {
		return map[string]*models.MediaFile{}, nil
	}

	paths := make([]string, 0, len(files))
	for _, item := range files {
		paths = append(paths, utils.ToString(item["path"]))
	}

	var rows []models.MediaFile
	err := l.db.WithContext(ctx).
		Where("directory_id = ? AND path IN ?", directory.ID, paths).
		Order("path").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	existing := make(map[string]*models.MediaFile, len(rows))
	for i := range rows {
		existing[rows[i].Path] = &rows[i]
	}

	return existing, nil
}

// DistributeFiles partitions dump file entries into creation and edition
// candidates depending on whether their path already exists in database.
// Edition candidates carry the matched existing row. Two entries with the
// same path in one pass are a producer bug and fail as an integrity
// violation.
func (l *Loader) DistributeFiles(ctx context.Context, directory *models.Directory, files []map[string]any) (toCreate, toEdit []*dump.DumpedFile, err error) {
	// A directory not yet persisted cannot own any rows.
	existing := map[string]*models.MediaFile{}
	if directory.ID != 0 {
		existing, err = l.GetExisting(ctx, directory, files)
		if err != nil {
			return nil, nil, l.sink.Critical(err)
		}
	}

	l.sink.Info(fmt.Sprintf("- Found %d existing media file(s) related to this dump", len(existing)))

	seen := make(map[string]struct{}, len(files))

	for _, item := range files {
		record, err := dump.FromMap(item)
		if err != nil {
			return nil, nil, l.sink.Critical(err)
		}

		if _, dupe := seen[record.Path]; dupe {
			return nil, nil, l.sink.Critical(&IntegrityViolation{
				Message: fmt.Sprintf("dump contains path %q twice under the same directory", record.Path),
			})
		}
		seen[record.Path] = struct{}{}

		if media, ok := existing[record.Path]; ok {
			record.AttachMediaFile(media)
			toEdit = append(toEdit, record)
		} else {
			toCreate = append(toCreate, record)
		}
	}

	l.sink.Info(fmt.Sprintf("- File entries to create: %d", len(toCreate)))
	l.sink.Info(fmt.Sprintf("- File entries to edit: %d", len(toEdit)))

	return toCreate, toEdit, nil
}

// CreateFiles bulk inserts new media file rows from creation records, each
// stamped with the batch date as its loaded date and linked to the directory.
// Inserts are chunked by the configured batch limit but stay inside the
// caller's transaction, so a uniqueness violation anywhere aborts them all.
func (l *Loader) CreateFiles(ctx context.Context, tx *gorm.DB, directory *models.Directory, records []*dump.DumpedFile, batchDate time.Time) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]models.MediaFile, 0, len(records))
	for _, record := range records {
		row, err := record.ToMediaFile(directory.ID, batchDate, l.loc)
		if err != nil {
			return l.sink.Critical(err)
		}
		rows = append(rows, row)
	}

	batchSize := l.batchLimit
	if batchSize <= 0 {
		batchSize = len(rows)
	}

	if err := tx.WithContext(ctx).CreateInBatches(&rows, batchSize).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return l.sink.Critical(&IntegrityViolation{
				Message: fmt.Sprintf("bulk creation of %d media file(s) hit a duplicate path", len(rows)),
				Err:     err,
			})
		}
		return l.sink.Critical(err)
	}

	return nil
}

// EditFiles copies the editable field subset from each update record onto its
// attached existing row, forces the loaded date to the batch date, then
// writes every touched row in one bulk operation. A record without its
// attached reference is an engine internal integrity fault.
func (l *Loader) EditFiles(ctx context.Context, tx *gorm.DB, records []*dump.DumpedFile, batchDate time.Time) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]models.MediaFile, 0, len(records))
	for _, record := range records {
		media := record.MediaFile()
		if media == nil {
			return l.sink.Critical(&IntegrityFault{Path: record.Path})
		}

		if err := record.ApplyEditableFields(media, l.loc); err != nil {
			return l.sink.Critical(err)
		}
		media.LoadedDate = batchDate
		rows = append(rows, *media)
	}

	if err := tx.WithContext(ctx).Save(&rows).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return l.sink.Critical(&IntegrityViolation{
				Message: fmt.Sprintf("bulk edition of %d media file(s) hit a duplicate path", len(rows)),
				Err:     err,
			})
		}
		return l.sink.Critical(err)
	}

	return nil
}

// GetAttachedFile resolves a possibly relative cover image path against an
// optional base directory. A missing file is only worth a warning, never an
// error: the directory simply keeps no cover.
func (l *Loader) GetAttachedFile(path, basepath string) string {
	resolved := path
	if !filepath.IsAbs(resolved) && basepath != "" {
		resolved = filepath.Join(basepath, resolved)
	}

	if _, err := os.Stat(resolved); err != nil {
		l.sink.Warning(fmt.Sprintf("Cover file does not exist, skipped: %s", resolved))
		return ""
	}

	return resolved
}

// storeCover uploads a resolved cover file to object storage and returns its
// object key. Without a configured storage client the local path is kept
// as the cover reference.
func (l *Loader) storeCover(ctx context.Context, device *models.Device, resolved string) (string, error) {
	if l.store == nil {
		return resolved, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		return "", err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("%s/%s%s", device.Slug, uuid.NewString(), filepath.Ext(resolved))

	_, err = l.store.PutObject(ctx, l.bucket, objectKey, file, info.Size(), minio.PutObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to upload cover %s: %w", resolved, err)
	}

	l.sink.Debug(fmt.Sprintf("- Cover uploaded as: %s", objectKey))
	return objectKey, nil
}
