package inventory

import (
	"context"

	"media-inventory/feature/inventory/models"
	"media-inventory/feature/inventory/tree"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles read operations over the persisted inventory.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new inventory service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// ListDevices returns every device ordered by title.
func (s *Service) ListDevices(ctx context.Context) ([]models.Device, error) {
	var devices []models.Device
	err := s.db.WithContext(ctx).Order("title").Find(&devices).Error
	return devices, err
}

// GetDevice returns the device matching the slug, gorm.ErrRecordNotFound
// when unknown.
func (s *Service) GetDevice(ctx context.Context, slug string) (*models.Device, error) {
	var device models.Device
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&device).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

// ListDirectories returns the device's directories ordered by path.
func (s *Service) ListDirectories(ctx context.Context, device *models.Device) ([]models.Directory, error) {
	var directories []models.Directory
	err := s.db.WithContext(ctx).
		Where("device_id = ?", device.ID).
		Order("path").
		Find(&directories).Error
	return directories, err
}

// ListMediaFiles returns media file rows, optionally scoped to a directory,
// ordered by path with limit/offset pagination.
func (s *Service) ListMediaFiles(ctx context.Context, directoryID uint, limit, offset int) ([]models.MediaFile, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := s.db.WithContext(ctx).Order("path").Limit(limit).Offset(offset)
	if directoryID > 0 {
		query = query.Where("directory_id = ?", directoryID)
	}

	var files []models.MediaFile
	err := query.Find(&files).Error
	return files, err
}

// BuildTree returns the aggregated occupancy tree for the device.
func (s *Service) BuildTree(ctx context.Context, device *models.Device) (*tree.Node, error) {
	return tree.BuildTree(ctx, s.db, device)
}
