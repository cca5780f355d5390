package models

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// slugPattern matches the slug format accepted for devices: lowercase
// alphanumerics separated by single dashes or underscores.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

// Device is the top level container scoping directories and media files to a
// single storage source. It is identified by its unique slug which is the
// argument given to the load command.
type Device struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"size:150" json:"title"`
	Slug  string `gorm:"size:50;uniqueIndex" json:"slug"`

	// Disk capacity statistics as reported by the last loaded dump, in bytes.
	DiskTotal int64 `gorm:"column:disk_total" json:"disk_total"`
	DiskUsed  int64 `gorm:"column:disk_used" json:"disk_used"`
	DiskFree  int64 `gorm:"column:disk_free" json:"disk_free"`

	CreatedDate time.Time `gorm:"column:created_date;autoCreateTime;index" json:"created_date"`
	UpdatedDate time.Time `gorm:"column:updated_date;autoUpdateTime" json:"updated_date"`

	Directories []Directory `gorm:"foreignKey:DeviceID" json:"-"`
}

// TableName overrides the default pluralized table name.
func (Device) TableName() string {
	return "devices"
}

// ValidateSlug checks a device slug against the accepted format.
func ValidateSlug(slug string) error {
	return validation.Validate(slug,
		validation.Required,
		validation.Length(1, 50),
		validation.Match(slugPattern).Error("must only contain lowercase alphanumerics, dashes and underscores"),
	)
}

// Directory holds media files for a single absolute path on a device. The
// (device, path) couple is unique: the same path may exist on several devices
// but only once per device.
type Directory struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	DeviceID uint   `gorm:"uniqueIndex:idx_directory_device_path" json:"device_id"`
	Device   Device `gorm:"foreignKey:DeviceID" json:"-"`

	Title string `gorm:"size:150" json:"title"`
	Path  string `gorm:"size:512;uniqueIndex:idx_directory_device_path" json:"path"`

	// Checksum is an opaque content fingerprint attached by the dump producer.
	// An empty string means unknown, which always makes the directory
	// eligible for reconciliation.
	Checksum string `gorm:"size:128" json:"checksum"`

	// Cover is the object key of the uploaded cover image, empty when the
	// directory has no cover.
	Cover string `gorm:"size:255" json:"cover"`

	// Payload carries, as raw JSON, every dump entry key that is not
	// otherwise modeled. It is stored opaquely and exposed back through
	// directory detail responses.
	Payload string `gorm:"type:json" json:"payload,omitempty"`

	ReleaseDate *time.Time `gorm:"column:release_date" json:"release_date,omitempty"`
	CreatedDate time.Time  `gorm:"column:created_date;autoCreateTime;index" json:"created_date"`
	UpdatedDate time.Time  `gorm:"column:updated_date;autoUpdateTime" json:"updated_date"`

	MediaFiles []MediaFile `gorm:"foreignKey:DirectoryID" json:"-"`
}

func (Directory) TableName() string {
	return "directories"
}

// MediaFile is a single file belonging to a directory. The (directory, path)
// couple is unique. Rows are only written through the loader bulk operations.
type MediaFile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DirectoryID uint      `gorm:"uniqueIndex:idx_mediafile_directory_path" json:"directory_id"`
	Directory   Directory `gorm:"foreignKey:DirectoryID" json:"-"`

	Path        string `gorm:"size:512;uniqueIndex:idx_mediafile_directory_path" json:"path"`
	AbsoluteDir string `gorm:"column:absolute_dir;size:512" json:"absolute_dir"`
	Dirname     string `gorm:"size:200" json:"dirname"`
	Filename    string `gorm:"size:255" json:"filename"`
	Container   string `gorm:"size:50" json:"container"`
	Filesize    int64  `json:"filesize"`

	// StoredDate is when the file itself was produced, taken from the dump
	// mtime. LoadedDate is when the reconciliation pass wrote the row; every
	// row written during the same directory pass shares the same value.
	StoredDate time.Time `gorm:"column:stored_date;index" json:"stored_date"`
	LoadedDate time.Time `gorm:"column:loaded_date;index" json:"loaded_date"`
}

func (MediaFile) TableName() string {
	return "media_files"
}
