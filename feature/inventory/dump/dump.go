package dump

import (
	"encoding/json"

	"media-inventory/core/utils"
)

// DeviceStats carries the disk capacity numbers from the dump "device"
// section, in bytes.
type DeviceStats struct {
	Total int64 `json:"total"`
	Used  int64 `json:"used"`
	Free  int64 `json:"free"`
}

// DirectoryEntry is a single directory from the dump registry. Known keys are
// promoted to fields, every other key is kept verbatim in Extra so it can be
// stored opaquely as the directory payload.
type DirectoryEntry struct {
	Path          string
	Title         string
	Checksum      string
	Cover         string
	ChildrenFiles []map[string]any
	Extra         map[string]any
}

// PayloadJSON returns the Extra keys serialized as JSON, or an empty string
// when there is nothing to preserve.
func (e DirectoryEntry) PayloadJSON() (string, error) {
	if len(e.Extra) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(e.Extra)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Dump is the parsed top level structure of a device dump.
type Dump struct {
	Device   DeviceStats
	Registry map[string]DirectoryEntry
}

// Parse decodes a serialized dump payload. Both the "device" and "registry"
// top level sections are required.
func Parse(payload []byte) (*Dump, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return nil, &FormatError{Message: "unable to parse dump payload", Err: err}
	}

	deviceRaw, ok := top["device"]
	if !ok {
		return nil, &FormatError{Message: "dump is missing the 'device' section"}
	}
	registryRaw, ok := top["registry"]
	if !ok {
		return nil, &FormatError{Message: "dump is missing the 'registry' section"}
	}

	var stats DeviceStats
	if err := json.Unmarshal(deviceRaw, &stats); err != nil {
		return nil, &FormatError{Message: "unable to parse dump 'device' section", Err: err}
	}

	var registry map[string]map[string]any
	if err := json.Unmarshal(registryRaw, &registry); err != nil {
		return nil, &FormatError{Message: "unable to parse dump 'registry' section", Err: err}
	}

	parsed := &Dump{
		Device:   stats,
		Registry: make(map[string]DirectoryEntry, len(registry)),
	}
	for key, data := range registry {
		parsed.Registry[key] = parseDirectoryEntry(data)
	}

	return parsed, nil
}

// parseDirectoryEntry promotes the known keys of a registry item and keeps
// the rest in Extra.
func parseDirectoryEntry(data map[string]any) DirectoryEntry {
	entry := DirectoryEntry{Extra: map[string]any{}}

	for key, value := range data {
		switch key {
		case "path":
			entry.Path = utils.ToString(value)
		case "title":
			entry.Title = utils.ToString(value)
		case "checksum":
			entry.Checksum = utils.ToString(value)
		case "cover":
			entry.Cover = utils.ToString(value)
		case "children_files":
			if items, ok := value.([]any); ok {
				entry.ChildrenFiles = make([]map[string]any, 0, len(items))
				for _, item := range items {
					if payload, ok := item.(map[string]any); ok {
						entry.ChildrenFiles = append(entry.ChildrenFiles, payload)
					}
				}
			}
		default:
			entry.Extra[key] = value
		}
	}

	if len(entry.Extra) == 0 {
		entry.Extra = nil
	}

	return entry
}
