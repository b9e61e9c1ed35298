package pipeline

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// s3Notification is the bucket-notification JSON shape delivered by
// S3-compatible stores. Object keys arrive URL-encoded.
type s3Notification struct {
	Records []struct {
		S3 struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key string `json:"key"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// ParseS3Event extracts object-created events from an S3-style bucket
// notification payload, URL-decoding each key.
func ParseS3Event(payload []byte) ([]ObjectCreatedEvent, error) {
	var notification s3Notification
	if err := json.Unmarshal(payload, &notification); err != nil {
		return nil, fmt.Errorf("invalid event payload: %w", err)
	}
	if len(notification.Records) == 0 {
		return nil, fmt.Errorf("event payload has no records")
	}

	events := make([]ObjectCreatedEvent, 0, len(notification.Records))
	for _, record := range notification.Records {
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return nil, fmt.Errorf("invalid object key %q: %w", record.S3.Object.Key, err)
		}
		events = append(events, ObjectCreatedEvent{
			Bucket: record.S3.Bucket.Name,
			Key:    key,
		})
	}
	return events, nil
}
