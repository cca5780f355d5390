package inventory

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"media-inventory/core/utils"
)

// Export actions consumed by the tree export endpoint.

const (
	ActionPing        = "ping"
	ActionListText    = "list-text"
	ActionDetailsJSON = "details-json"
	ActionSizeSum     = "size-sum"
)

// availableActions lists every accepted export action name, used for request
// validation and error messages.
var availableActions = []string{ActionPing, ActionListText, ActionDetailsJSON, ActionSizeSum}

// ExportEntry is one tree node shaped item from the export request payload.
type ExportEntry struct {
	Path              string `json:"path"`
	TotalFiles        int64  `json:"total_files"`
	TotalFilesize     int64  `json:"total_filesize"`
	RecursiveFiles    int64  `json:"recursive_files"`
	RecursiveFilesize int64  `json:"recursive_filesize"`
}

// ExportRequest is the payload of a tree export POST request. Data stays raw
// until the action decides how to read it: ping echoes it back untouched,
// the other actions expect a "paths" collection of entries.
type ExportRequest struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// exportData is the decoded Data payload for path based actions.
type exportData struct {
	Paths []ExportEntry `json:"paths"`
}

// ExportError is a client payload error from the export endpoint.
type ExportError struct {
	Message string
}

func (e *ExportError) Error() string {
	return e.Message
}

// RunExportAction validates the request and produces the response content.
// The returned value goes under the "content" key: a string for every action
// except ping, which echoes the given data.
func RunExportAction(req *ExportRequest) (any, error) {
	if req.Action == "" {
		return nil, &ExportError{Message: "Request data must includes 'action' item"}
	}
	if req.Data == nil {
		return nil, &ExportError{Message: "Request data must includes 'data' item"}
	}

	switch req.Action {
	case ActionPing:
		var echo any
		if err := json.Unmarshal(req.Data, &echo); err != nil {
			return nil, &ExportError{Message: "Request contains invalid JSON"}
		}
		return echo, nil
	case ActionListText, ActionDetailsJSON, ActionSizeSum:
		var data exportData
		if err := json.Unmarshal(req.Data, &data); err != nil {
			return nil, &ExportError{Message: "Payload field 'data' must includes a 'paths' collection"}
		}
		return runPathsAction(req.Action, data.Paths)
	default:
		return nil, &ExportError{
			Message: fmt.Sprintf(
				"Payload field 'action' value must be an available action: %s",
				strings.Join(availableActions, ", "),
			),
		}
	}
}

func runPathsAction(action string, entries []ExportEntry) (any, error) {
	switch action {
	case ActionListText:
		paths := make([]string, 0, len(entries))
		for _, entry := range entries {
			paths = append(paths, entry.Path)
		}
		sort.Strings(paths)
		return strings.Join(paths, "\n"), nil

	case ActionDetailsJSON:
		raw, err := json.Marshal(entries)
		if err != nil {
			return nil, err
		}
		return string(raw), nil

	case ActionSizeSum:
		var lines []string
		var total int64
		for _, entry := range entries {
			lines = append(lines, fmt.Sprintf("%s: %s", entry.Path, utils.FormatByteSize(entry.RecursiveFilesize)))
			total += entry.RecursiveFilesize
		}
		lines = append(lines, fmt.Sprintf("Total: %s", utils.FormatByteSize(total)))
		return strings.Join(lines, "\n"), nil
	}

	return nil, &ExportError{Message: "unreachable action"}
}
