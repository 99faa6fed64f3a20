package iso8601

import "time"

// Format outputs an ISO-8601 datetime string from the given time,
// in a format compatible with all of the AWS SDKs
func Format(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Parse reads a datetime written by Format, or any RFC3339 timestamp with an
// offset, and returns it in UTC.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
