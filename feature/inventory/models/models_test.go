package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		name  string
		slug  string
		valid bool
	}{
		{"simple", "donation", true},
		{"with dash", "my-device", true},
		{"with underscore", "my_device", true},
		{"digits", "device42", true},
		{"empty", "", false},
		{"uppercase", "Donation", false},
		{"spaces", "my device", false},
		{"leading dash", "-device", false},
		{"trailing dash", "device-", false},
		{"too long", strings.Repeat("a", 51), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlug(tt.slug)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "devices", Device{}.TableName())
	assert.Equal(t, "directories", Directory{}.TableName())
	assert.Equal(t, "media_files", MediaFile{}.TableName())
}
