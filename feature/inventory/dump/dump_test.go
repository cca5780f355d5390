package dump

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
	"device": {"total": 1000, "used": 600, "free": 400},
	"registry": {
		"series/BillyBoy": {
			"path": "/videos/series/BillyBoy",
			"title": "Billy Boy",
			"checksum": "001",
			"cover": "covers/billyboy.png",
			"release_year": 1982,
			"tags": ["drama"],
			"children_files": [
				{
					"path": "/videos/series/BillyBoy/BillyBoy_S01E01.mkv",
					"name": "BillyBoy_S01E01.mkv",
					"absolute_dir": "/videos/series/BillyBoy",
					"relative_dir": "series/BillyBoy",
					"directory": "BillyBoy",
					"extension": "mkv",
					"container": "Matroska",
					"size": 101,
					"mtime": "2022-03-12T21:34:15"
				}
			]
		}
	}
}`

func TestParse(t *testing.T) {
	parsed, err := Parse([]byte(samplePayload))
	require.NoError(t, err)

	assert.Equal(t, int64(1000), parsed.Device.Total)
	assert.Equal(t, int64(600), parsed.Device.Used)
	assert.Equal(t, int64(400), parsed.Device.Free)

	require.Contains(t, parsed.Registry, "series/BillyBoy")
	entry := parsed.Registry["series/BillyBoy"]

	assert.Equal(t, "/videos/series/BillyBoy", entry.Path)
	assert.Equal(t, "Billy Boy", entry.Title)
	assert.Equal(t, "001", entry.Checksum)
	assert.Equal(t, "covers/billyboy.png", entry.Cover)
	require.Len(t, entry.ChildrenFiles, 1)
	assert.Equal(t, "BillyBoy_S01E01.mkv", entry.ChildrenFiles[0]["name"])

	// Unknown keys are preserved verbatim
	assert.Contains(t, entry.Extra, "release_year")
	assert.Contains(t, entry.Extra, "tags")
	assert.NotContains(t, entry.Extra, "path")
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected string
	}{
		{
			name:     "invalid json",
			payload:  `{"device": `,
			expected: "unable to parse dump payload",
		},
		{
			name:     "missing device section",
			payload:  `{"registry": {}}`,
			expected: "missing the 'device' section",
		},
		{
			name:     "missing registry section",
			payload:  `{"device": {"total": 1, "used": 1, "free": 0}}`,
			expected: "missing the 'registry' section",
		},
		{
			name:     "registry is not an object",
			payload:  `{"device": {}, "registry": []}`,
			expected: "unable to parse dump 'registry' section",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := Parse([]byte(tt.payload))
			assert.Nil(t, parsed)

			var formatErr *FormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Contains(t, formatErr.Error(), tt.expected)
		})
	}
}

func TestDirectoryEntry_PayloadJSON(t *testing.T) {
	t.Run("empty extra yields empty string", func(t *testing.T) {
		payload, err := DirectoryEntry{}.PayloadJSON()
		require.NoError(t, err)
		assert.Equal(t, "", payload)
	})

	t.Run("extra keys serialize verbatim", func(t *testing.T) {
		entry := DirectoryEntry{Extra: map[string]any{
			"release_year": float64(1982),
			"tags":         []any{"drama"},
		}}

		payload, err := entry.PayloadJSON()
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
		assert.Equal(t, entry.Extra, decoded)
	})
}
