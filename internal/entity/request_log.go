package entity

import "time"

// RequestLog is one append-only entry of the request log.
type RequestLog struct {
	ID        int64
	Timestamp time.Time
	Method    string
	URL       string
	UserAgent string
	IP        string
}
