package db

import "time"

// TimeFormat is the canonical storage representation for timestamps:
// RFC3339 in UTC with second precision. SQLite stores them as TEXT, which
// keeps lexicographic and chronological order identical.
const TimeFormat = "2006-01-02T15:04:05Z"

// TimeParse parses a stored timestamp. The zero string parses to the zero
// time without error, matching nullable columns.
func TimeParse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// TimeString formats a timestamp for storage.
func TimeString(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}
