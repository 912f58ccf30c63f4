package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SubmissionError reports a tabular-store request that did not produce a
// 2xx response.
type SubmissionError struct {
	StatusCode int
	Message    string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("tabular store %d: %s", e.StatusCode, e.Message)
}

type airtableErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type recordPayload struct {
	Records []recordEntry `json:"records"`
}

type recordEntry struct {
	Fields map[string]any `json:"fields"`
}

// Airtable submits one dated record per invocation to an Airtable-style
// tabular store, authenticated with a bearer token.
type Airtable struct {
	endpoint string
	token    string
	client   *http.Client
	log      *zap.Logger
	now      func() time.Time
}

// NewAirtable builds a sink posting to <apiURL>/<base>/<table>.
func NewAirtable(apiURL, token, base, table string, timeout time.Duration, log *zap.Logger) *Airtable {
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
	return &Airtable{
		endpoint: fmt.Sprintf("%s/%s/%s", strings.TrimRight(apiURL, "/"), base, table),
		token:    token,
		client:   client,
		log:      log,
		now:      time.Now,
	}
}

func (a *Airtable) Name() string { return "airtable" }

func (a *Airtable) Submit(ctx context.Context, result map[string]string) error {
	fields, err := buildFields(result, a.now())
	if err != nil {
		return err
	}

	bodyBytes, err := json.Marshal(recordPayload{Records: []recordEntry{{Fields: fields}}})
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.log.Error("record submission failed", zap.Error(err))
		return &SubmissionError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		subErr := parseErrorResponse(resp)
		a.log.Error("record rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("message", subErr.Message))
		return subErr
	}

	a.log.Info("record submitted", zap.Int("fields", len(fields)))
	return nil
}

func parseErrorResponse(resp *http.Response) *SubmissionError {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var errResp airtableErrorResponse
	if json.Unmarshal(bodyBytes, &errResp) == nil && errResp.Error.Message != "" {
		return &SubmissionError{StatusCode: resp.StatusCode, Message: errResp.Error.Message}
	}
	return &SubmissionError{StatusCode: resp.StatusCode, Message: string(bodyBytes)}
}
