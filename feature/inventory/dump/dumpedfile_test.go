package dump

import (
	"testing"
	"time"

	"media-inventory/feature/inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validPayload returns a complete file entry payload as produced by JSON
// decoding of a dump (numbers as float64).
func validPayload() map[string]any {
	return map[string]any{
		"path":         "/videos/series/BillyBoy/BillyBoy_S01E01.mkv",
		"name":         "BillyBoy_S01E01.mkv",
		"absolute_dir": "/videos/series/BillyBoy",
		"relative_dir": "series/BillyBoy",
		"directory":    "BillyBoy",
		"extension":    "mkv",
		"container":    "Matroska",
		"size":         float64(101),
		"mtime":        "2022-03-12T21:34:15",
	}
}

func TestFromMap_RoundTrip(t *testing.T) {
	record, err := FromMap(validPayload())
	require.NoError(t, err)

	again, err := FromMap(record.ToMap())
	require.NoError(t, err)

	assert.Equal(t, record, again)
}

func TestFromMap_MissingFields(t *testing.T) {
	tests := []struct {
		name     string
		remove   []string
		expected []string
	}{
		{
			name:     "single missing field",
			remove:   []string{"name"},
			expected: []string{"name"},
		},
		{
			name:     "multiple missing fields keep declared order",
			remove:   []string{"mtime", "path", "extension"},
			expected: []string{"path", "extension", "mtime"},
		},
		{
			name:     "nil value counts as missing",
			remove:   nil,
			expected: []string{"size"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			for _, name := range tt.remove {
				delete(payload, name)
			}
			if tt.remove == nil {
				payload["size"] = nil
			}

			record, err := FromMap(payload)
			assert.Nil(t, record)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.expected, validationErr.Fields)
		})
	}
}

func TestFromMap_NonStringMtime(t *testing.T) {
	payload := validPayload()
	payload["mtime"] = float64(1647120855)

	record, err := FromMap(payload)
	assert.Nil(t, record)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Error(), "ISO-8601")
}

func TestStoredDate(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	t.Run("naive instant gets the default location", func(t *testing.T) {
		record, err := FromMap(validPayload())
		require.NoError(t, err)

		stored, err := record.StoredDate(paris)
		require.NoError(t, err)
		assert.Equal(t, "Europe/Paris", stored.Location().String())
		assert.Equal(t, 2022, stored.Year())
		assert.Equal(t, 21, stored.Hour())
	})

	t.Run("aware instant keeps its offset", func(t *testing.T) {
		payload := validPayload()
		payload["mtime"] = "2022-03-12T21:34:15+04:00"

		record, err := FromMap(payload)
		require.NoError(t, err)

		stored, err := record.StoredDate(paris)
		require.NoError(t, err)
		_, offset := stored.Zone()
		assert.Equal(t, 4*3600, offset)
	})

	t.Run("garbage mtime fails with validation error", func(t *testing.T) {
		payload := validPayload()
		payload["mtime"] = "yesterday"

		record, err := FromMap(payload)
		require.NoError(t, err)

		_, err = record.StoredDate(paris)
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestToMediaFile(t *testing.T) {
	record, err := FromMap(validPayload())
	require.NoError(t, err)

	loaded := time.Date(2022, 4, 1, 12, 0, 0, 0, time.UTC)

	row, err := record.ToMediaFile(42, loaded, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, uint(42), row.DirectoryID)
	assert.Equal(t, record.Path, row.Path)
	assert.Equal(t, record.AbsoluteDir, row.AbsoluteDir)
	assert.Equal(t, record.Directory, row.Dirname)
	assert.Equal(t, record.Name, row.Filename)
	assert.Equal(t, record.Extension, row.Container)
	assert.Equal(t, record.Size, row.Filesize)
	assert.Equal(t, loaded, row.LoadedDate)
	assert.Equal(t, 2022, row.StoredDate.Year())
}

func TestApplyEditableFields(t *testing.T) {
	payload := validPayload()
	payload["size"] = float64(2048)
	payload["extension"] = "mp4"

	record, err := FromMap(payload)
	require.NoError(t, err)

	existing := models.MediaFile{
		ID:          7,
		DirectoryID: 42,
		Path:        record.Path,
		Container:   "mkv",
		Filesize:    100,
	}

	require.NoError(t, record.ApplyEditableFields(&existing, time.UTC))

	// Editable subset is applied
	assert.Equal(t, record.Name, existing.Filename)
	assert.Equal(t, "mp4", existing.Container)
	assert.Equal(t, int64(2048), existing.Filesize)
	assert.Equal(t, 2022, existing.StoredDate.Year())

	// Identity and relation fields stay untouched
	assert.Equal(t, uint(7), existing.ID)
	assert.Equal(t, uint(42), existing.DirectoryID)
	assert.True(t, existing.LoadedDate.IsZero())
}

func TestAttachMediaFile(t *testing.T) {
	record, err := FromMap(validPayload())
	require.NoError(t, err)

	assert.Nil(t, record.MediaFile())

	media := &models.MediaFile{ID: 3}
	record.AttachMediaFile(media)
	assert.Same(t, media, record.MediaFile())
}
