// Package utils provides small conversion and formatting helpers shared
// across the application.
//
// # Conversion
//
// ToInt64 and ToString perform lenient type coercion, mainly to deal with the
// loose typing of decoded JSON payloads (numbers arrive as float64, values
// may be missing or nil).
//
// # Formatting
//
// FormatByteSize and FormatNumber render byte counts and integers for human
// consumption, used by the tree command and the size-sum export action.
package utils
