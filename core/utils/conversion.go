package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ToInt64 converts various types to int64 using explicit type switching.
// JSON decoding yields float64 for numbers, so that case matters most here.
func ToInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int16:
		return int64(v)
	case int8:
		return int64(v)
	case uint:
		return int64(v)
	case uint64:
		return int64(v)
	case uint32:
		return int64(v)
	case uint16:
		return int64(v)
	case uint8:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case string:
		i, _ := strconv.ParseInt(v, 10, 64)
		return i
	case []byte:
		i, _ := strconv.ParseInt(string(v), 10, 64)
		return i
	default:
		s := fmt.Sprintf("%v", v)
		i, _ := strconv.ParseInt(s, 10, 64)
		return i
	}
}

// ToString converts various types to string.
func ToString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// byteSizeUnits are the suffixes used by FormatByteSize, from bytes up.
var byteSizeUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// FormatByteSize renders a byte count as a human readable string using binary
// units with two decimals, e.g. 1536 -> "1.50 KiB".
func FormatByteSize(size int64) string {
	value := float64(size)
	unit := 0
	for value >= 1024 && unit < len(byteSizeUnits)-1 {
		value /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d B", size)
	}
	return fmt.Sprintf("%.2f %s", value, byteSizeUnits[unit])
}

// FormatNumber renders an integer with thousands separators, e.g. 1234567 ->
// "1 234 567".
func FormatNumber(value int64) string {
	raw := strconv.FormatInt(value, 10)
	negative := strings.HasPrefix(raw, "-")
	if negative {
		raw = raw[1:]
	}

	var groups []string
	for len(raw) > 3 {
		groups = append([]string{raw[len(raw)-3:]}, groups...)
		raw = raw[:len(raw)-3]
	}
	groups = append([]string{raw}, groups...)

	out := strings.Join(groups, " ")
	if negative {
		out = "-" + out
	}
	return out
}
