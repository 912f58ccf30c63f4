package sink

import (
	"context"
	"time"

	"github.com/medrecio/blood-result-service/internal/extract"
)

// Sink forwards one extraction result to an external store. Submission
// failures are fatal to the invocation; nothing is retried or rolled back.
type Sink interface {
	Name() string
	Submit(ctx context.Context, result map[string]string) error
}

const dateLayout = "2006-01-02"

// buildFields converts every extracted value to its numeric form and
// attaches the invocation date. Any non-numeric value aborts the record.
func buildFields(result map[string]string, now time.Time) (map[string]any, error) {
	fields := make(map[string]any, len(result)+1)
	fields["date"] = now.Format(dateLayout)
	for test, raw := range result {
		n, err := extract.ParseNumeric(raw)
		if err != nil {
			return nil, err
		}
		fields[test] = n
	}
	return fields, nil
}
