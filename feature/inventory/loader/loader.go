package loader

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"media-inventory/core/output"
	"media-inventory/core/storage"
	"media-inventory/feature/inventory/dump"
	"media-inventory/feature/inventory/models"

	"gorm.io/gorm"
)

// Loader reconciles a device dump against the persisted inventory. It turns
// the dump registry into minimal create/update operations, gated by directory
// checksums so unchanged directories cost nothing.
type Loader struct {
	db         *gorm.DB
	sink       output.Sink
	batchLimit int
	loc        *time.Location

	// Cover image storage, optional. Without a client the resolved local
	// cover path is stored as-is on the directory.
	store  storage.Client
	bucket string
}

// TouchedDirectory is one directory actually written during a pass, with its
// creation state.
type TouchedDirectory struct {
	Directory *models.Directory
	Created   bool
}

// New creates a Loader. The configured timezone is resolved once here so the
// timestamp coercion never consults process-wide state.
func New(db *gorm.DB, sink output.Sink, cfg Config) (*Loader, error) {
	name := cfg.TimeZone
	if name == "" {
		name = "UTC"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid loader timezone %q: %w", name, err)
	}

	return &Loader{
		db:         db,
		sink:       sink,
		batchLimit: cfg.BatchLimit,
		loc:        loc,
	}, nil
}

// SetCoverStorage attaches the object storage used for directory cover
// uploads.
func (l *Loader) SetCoverStorage(client storage.Client, bucket string) {
	l.store = client
	l.bucket = bucket
}

// OpenDump accepts either an already parsed dump or a serialized payload and
// returns the parsed structure. Malformed payloads fail with a FormatError.
func (l *Loader) OpenDump(source any) (*dump.Dump, error) {
	switch v := source.(type) {
	case *dump.Dump:
		return v, nil
	case []byte:
		return dump.Parse(v)
	case string:
		return dump.Parse([]byte(v))
	default:
		return nil, &dump.FormatError{
			Message: fmt.Sprintf("unsupported dump source type %T", source),
		}
	}
}

// IsDirectoryEligible decides whether a directory and its files get processed
// at all during a pass. Brand new directories are always eligible, an empty
// checksum on either side means no signal so always re-check, otherwise
// eligible only when the checksums differ.
func (l *Loader) IsDirectoryEligible(fromChecksum, toChecksum string, created bool) bool {
	if created {
		return true
	}
	if fromChecksum == "" || toChecksum == "" {
		return true
	}
	return fromChecksum != toChecksum
}

// SetDeviceStats updates the device capacity fields, but only when at least
// one of them differs from the current values so the device update timestamp
// is not bumped needlessly. Returns whether a change was written.
func (l *Loader) SetDeviceStats(ctx context.Context, device *models.Device, stats dump.DeviceStats) (bool, error) {
	if device.DiskTotal == stats.Total && device.DiskUsed == stats.Used && device.DiskFree == stats.Free {
		return false, nil
	}

	device.DiskTotal = stats.Total
	device.DiskUsed = stats.Used
	device.DiskFree = stats.Free

	result := l.db.WithContext(ctx).Model(device).Updates(map[string]any{
		"disk_total": stats.Total,
		"disk_used":  stats.Used,
		"disk_free":  stats.Free,
	})
	if result.Error != nil {
		return false, result.Error
	}

	return true, nil
}

// ProcessDirectory reconciles every directory entry of a dump registry for
// the given device. Two registry entries carrying the same directory path are
// a producer bug and fail loudly. Ineligible directories are skipped
// entirely. Each touched directory and its file writes run inside their own
// transaction, so a failure leaves earlier directories committed. Returns a
// pair for every directory actually written.
func (l *Loader) ProcessDirectory(ctx context.Context, device *models.Device, entries map[string]dump.DirectoryEntry, coversBasepath string) ([]TouchedDirectory, error) {
	batchDate := time.Now().In(l.loc)

	// Deterministic processing order regardless of map iteration.
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var touched []TouchedDirectory
	seen := make(map[string]struct{}, len(entries))

	for _, key := range keys {
		entry := entries[key]
		l.sink.Info(fmt.Sprintf("Working on directory: %s", entry.Path))

		if _, dupe := seen[entry.Path]; dupe {
			return touched, l.sink.Critical(&IntegrityViolation{
				Message: fmt.Sprintf("registry contains directory path %q twice for this device", entry.Path),
			})
		}
		seen[entry.Path] = struct{}{}

		directory, created, err := l.findDirectory(ctx, device, entry)
		if err != nil {
			return touched, l.sink.Critical(err)
		}

		if !l.IsDirectoryEligible(directory.Checksum, entry.Checksum, created) {
			l.sink.Info("- Directory checksum is unchanged, skipped")
			continue
		}

		toCreate, toEdit, err := l.DistributeFiles(ctx, directory, entry.ChildrenFiles)
		if err != nil {
			return touched, err
		}

		batch := directoryBatch{
			device:         device,
			directory:      directory,
			entry:          entry,
			created:        created,
			coversBasepath: coversBasepath,
			toCreate:       toCreate,
			toEdit:         toEdit,
			batchDate:      batchDate,
		}

		var batchErr error
		err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			batchErr = l.flushDirectory(ctx, tx, batch)
			return batchErr
		})
		if err != nil {
			if batchErr == nil {
				// The batch itself succeeded, so this is a begin or commit
				// failure nothing reported yet.
				err = l.sink.Critical(err)
			}
			return touched, err
		}

		touched = append(touched, TouchedDirectory{Directory: directory, Created: created})
	}

	return touched, nil
}

// findDirectory fetches the directory row for (device, path). A missing row
// yields a fresh unsaved value; persisting it is the transaction's job.
func (l *Loader) findDirectory(ctx context.Context, device *models.Device, entry dump.DirectoryEntry) (*models.Directory, bool, error) {
	var directory models.Directory
	err := l.db.WithContext(ctx).
		Where("device_id = ? AND path = ?", device.ID, entry.Path).
		First(&directory).Error

	if err == nil {
		l.sink.Debug("- Got an existing directory")
		return &directory, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	return &models.Directory{DeviceID: device.ID, Path: entry.Path}, true, nil
}

// directoryBatch groups everything a single directory write needs inside its
// transaction.
type directoryBatch struct {
	device         *models.Device
	directory      *models.Directory
	entry          dump.DirectoryEntry
	created        bool
	coversBasepath string
	toCreate       []*dump.DumpedFile
	toEdit         []*dump.DumpedFile
	batchDate      time.Time
}

// flushDirectory persists the directory row and its file mutations inside the
// given transaction.
func (l *Loader) flushDirectory(ctx context.Context, tx *gorm.DB, batch directoryBatch) error {
	if err := l.writeDirectory(ctx, tx, batch); err != nil {
		return err
	}

	if len(batch.toCreate) > 0 {
		l.sink.Debug("- Proceed to bulk creation")
		if err := l.CreateFiles(ctx, tx, batch.directory, batch.toCreate, batch.batchDate); err != nil {
			return err
		}
	}

	if len(batch.toEdit) > 0 {
		l.sink.Debug("- Proceed to bulk edition")
		if err := l.EditFiles(ctx, tx, batch.toEdit, batch.batchDate); err != nil {
			return err
		}
	}

	return nil
}

// writeDirectory applies the dump entry fields and persists the directory
// row: one insert for a new directory, a field update when the checksum
// changed, nothing when the row is eligible but unchanged. Failures are
// reported critical before aborting the transaction.
func (l *Loader) writeDirectory(ctx context.Context, tx *gorm.DB, batch directoryBatch) error {
	directory := batch.directory
	entry := batch.entry

	changed := batch.created || directory.Checksum != entry.Checksum
	if changed {
		directory.Title = entry.Title
		directory.Checksum = entry.Checksum

		payload, err := entry.PayloadJSON()
		if err != nil {
			return l.sink.Critical(err)
		}
		directory.Payload = payload

		if entry.Cover != "" {
			if resolved := l.GetAttachedFile(entry.Cover, batch.coversBasepath); resolved != "" {
				cover, err := l.storeCover(ctx, batch.device, resolved)
				if err != nil {
					return l.sink.Critical(err)
				}
				directory.Cover = cover
			}
		}
	}

	if batch.created {
		if err := tx.WithContext(ctx).Create(directory).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return l.sink.Critical(&IntegrityViolation{
					Message: fmt.Sprintf("directory path %q already exists for this device", entry.Path),
					Err:     err,
				})
			}
			return l.sink.Critical(err)
		}
		l.sink.Debug("- New directory created")
		return nil
	}

	if !changed {
		return nil
	}

	err := tx.WithContext(ctx).Model(directory).Updates(map[string]any{
		"title":    directory.Title,
		"checksum": directory.Checksum,
		"cover":    directory.Cover,
		"payload":  directory.Payload,
	}).Error
	if err != nil {
		return l.sink.Critical(err)
	}
	return nil
}

// Load is the top level entry point of a reconciliation pass. It validates
// the device slug, gets or creates the device, opens the dump, applies the
// device stats and processes the registry. Every fatal condition is surfaced
// through the sink at critical severity before returning.
func (l *Loader) Load(ctx context.Context, deviceSlug string, source any, coversBasepath string) error {
	l.sink.Info(fmt.Sprintf("Using device slug: %s", deviceSlug))

	if err := models.ValidateSlug(deviceSlug); err != nil {
		return l.sink.Critical(&dump.ValidationError{
			Message: fmt.Sprintf("invalid device slug %q: %v", deviceSlug, err),
		})
	}

	var device models.Device
	err := l.db.WithContext(ctx).Where("slug = ?", deviceSlug).First(&device).Error
	switch {
	case err == nil:
		l.sink.Debug("- Got an existing device for given slug")
	case errors.Is(err, gorm.ErrRecordNotFound):
		device = models.Device{Slug: deviceSlug, Title: deviceSlug}
		if err := l.db.WithContext(ctx).Create(&device).Error; err != nil {
			return l.sink.Critical(err)
		}
		l.sink.Debug("- New device created for given slug")
	default:
		return l.sink.Critical(err)
	}

	parsed, err := l.OpenDump(source)
	if err != nil {
		return l.sink.Critical(err)
	}

	if _, err := l.SetDeviceStats(ctx, &device, parsed.Device); err != nil {
		return l.sink.Critical(err)
	}

	_, err = l.ProcessDirectory(ctx, &device, parsed.Registry, coversBasepath)
	return err
}
