package dump

import (
	"time"

	"media-inventory/core/utils"
	"media-inventory/feature/inventory/models"
)

// FieldNames lists the required fields of a dump file entry, in declared
// order. Every one of them must be present and non-nil.
var FieldNames = []string{
	"path", "name", "absolute_dir", "relative_dir", "directory", "extension",
	"container", "size", "mtime",
}

// mtimeLayouts are the accepted shapes for the mtime field. Naive instants
// (no offset) are interpreted in the configured default timezone.
var mtimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// DumpedFile is an immutable, device agnostic transport object for a single
// file entry taken from a dump. It optionally carries the existing MediaFile
// row it is meant to update; this reference is a transport convenience set
// during distribution, never persisted.
type DumpedFile struct {
	Path        string
	Name        string
	AbsoluteDir string
	RelativeDir string
	Directory   string
	Extension   string
	Container   string
	Size        int64
	Mtime       string

	media *models.MediaFile
}

// FromMap builds a DumpedFile from a dump entry payload. Construction fails
// with a ValidationError naming every missing field, or when mtime is not a
// string.
func FromMap(payload map[string]any) (*DumpedFile, error) {
	var missing []string
	for _, name := range FieldNames {
		if value, ok := payload[name]; !ok || value == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{
			Message: "dump file entry is missing required fields",
			Fields:  missing,
		}
	}

	if _, ok := payload["mtime"].(string); !ok {
		return nil, &ValidationError{
			Message: "dump file entry field 'mtime' must be an ISO-8601 datetime string",
		}
	}

	return &DumpedFile{
		Path:        utils.ToString(payload["path"]),
		Name:        utils.ToString(payload["name"]),
		AbsoluteDir: utils.ToString(payload["absolute_dir"]),
		RelativeDir: utils.ToString(payload["relative_dir"]),
		Directory:   utils.ToString(payload["directory"]),
		Extension:   utils.ToString(payload["extension"]),
		Container:   utils.ToString(payload["container"]),
		Size:        utils.ToInt64(payload["size"]),
		Mtime:       payload["mtime"].(string),
	}, nil
}

// ToMap returns the record values as a plain field mapping which round-trips
// through FromMap to an equal record.
func (f *DumpedFile) ToMap() map[string]any {
	return map[string]any{
		"path":         f.Path,
		"name":         f.Name,
		"absolute_dir": f.AbsoluteDir,
		"relative_dir": f.RelativeDir,
		"directory":    f.Directory,
		"extension":    f.Extension,
		"container":    f.Container,
		"size":         f.Size,
		"mtime":        f.Mtime,
	}
}

// AttachMediaFile stores the existing row this record will update.
func (f *DumpedFile) AttachMediaFile(m *models.MediaFile) {
	f.media = m
}

// MediaFile returns the attached existing row, nil for creation candidates.
func (f *DumpedFile) MediaFile() *models.MediaFile {
	return f.media
}

// StoredDate parses the mtime field into a timezone aware instant. Naive
// instants are assigned the given default location.
func (f *DumpedFile) StoredDate(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	var lastErr error
	for _, layout := range mtimeLayouts {
		parsed, err := time.ParseInLocation(layout, f.Mtime, loc)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, &ValidationError{
		Message: "dump file entry field 'mtime' is not a valid ISO-8601 datetime: " + lastErr.Error(),
	}
}

// ToMediaFile maps the record to a new MediaFile row using the persisted
// field names. The record name becomes the filename, the extension becomes
// the container, the size becomes the filesize and the parsed mtime becomes
// the stored date.
func (f *DumpedFile) ToMediaFile(directoryID uint, loaded time.Time, loc *time.Location) (models.MediaFile, error) {
	stored, err := f.StoredDate(loc)
	if err != nil {
		return models.MediaFile{}, err
	}

	return models.MediaFile{
		DirectoryID: directoryID,
		Path:        f.Path,
		AbsoluteDir: f.AbsoluteDir,
		Dirname:     f.Directory,
		Filename:    f.Name,
		Container:   f.Extension,
		Filesize:    f.Size,
		StoredDate:  stored,
		LoadedDate:  loaded,
	}, nil
}

// ApplyEditableFields copies the editable subset of persisted fields onto an
// existing row: filename, absolute directory, container, filesize and stored
// date. Everything else, including the loaded date, is left to the caller.
func (f *DumpedFile) ApplyEditableFields(m *models.MediaFile, loc *time.Location) error {
	stored, err := f.StoredDate(loc)
	if err != nil {
		return err
	}

	m.Filename = f.Name
	m.AbsoluteDir = f.AbsoluteDir
	m.Container = f.Extension
	m.Filesize = f.Size
	m.StoredDate = stored
	return nil
}
