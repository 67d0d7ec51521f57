package network

import (
	"fmt"
	"net/url"
	"time"
)

// isoMillis is the timestamp layout the storage service expects in date queries
const isoMillis = "2006-01-02T15:04:05.000Z"

// Query holds the query parameters of a request.
// Values are sent as is: strings and numbers are formatted with fmt, time.Time
// values as UTC timestamps with millisecond precision. nil values are skipped.
type Query map[string]any

// Encode returns the url encoded query string, sorted by key
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}

	values := url.Values{}
	for k, v := range q {
		switch v := v.(type) {
		case nil:
			continue
		case string:
			values.Set(k, v)
		case time.Time:
			values.Set(k, v.UTC().Format(isoMillis))
		case *time.Time:
			if v != nil {
				values.Set(k, v.UTC().Format(isoMillis))
			}
		default:
			values.Set(k, fmt.Sprint(v))
		}
	}
	return values.Encode()
}
