package event

import (
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
)

// ObjectRef pulls the storage location out of an S3 upload notification.
// Only the first record is processed. Object keys arrive percent-encoded
// with '+' standing for spaces and are decoded as UTF-8.
func ObjectRef(ev events.S3Event) (bucket, key string, err error) {
	if len(ev.Records) == 0 {
		return "", "", fmt.Errorf("event carries no records")
	}

	rec := ev.Records[0]
	bucket = rec.S3.Bucket.Name
	key, err = url.QueryUnescape(rec.S3.Object.Key)
	if err != nil {
		return "", "", fmt.Errorf("decode object key %q: %w", rec.S3.Object.Key, err)
	}
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("event record is missing bucket name or object key")
	}
	return bucket, key, nil
}
