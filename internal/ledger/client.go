package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/clubvote/clubvote-go/internal/model"
)

const readRetries = 3

// Client talks to the settlement gateway over HTTP. Reads are retried on
// transient failure; SubmitVote is sent once and relies on backend
// deduplication via the idempotency key.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "ledger").Logger(),
	}
}

func (c *Client) SubmitVote(ctx context.Context, sub VoteSubmission) (Receipt, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: encode submission: %v", model.ErrSettlement, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/votes", bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", model.ErrSettlement, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", sub.IdempotencyKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", model.ErrSettlement, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var receipt Receipt
		if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
			return Receipt{}, fmt.Errorf("%w: decode receipt: %v", model.ErrSettlement, err)
		}
		return receipt, nil
	case http.StatusConflict:
		return Receipt{}, ErrDuplicate
	default:
		c.log.Warn().Int("status", resp.StatusCode).Msg("submit rejected")
		return Receipt{}, fmt.Errorf("%w: gateway returned %d", model.ErrSettlement, resp.StatusCode)
	}
}

func (c *Client) HasVoted(ctx context.Context, voterID, club, position string) (bool, error) {
	q := url.Values{"voterId": {voterID}, "club": {club}, "position": {position}}
	var out struct {
		Voted bool `json:"voted"`
	}
	if err := c.getJSON(ctx, "/v1/votes/exists?"+q.Encode(), &out); err != nil {
		return false, err
	}
	return out.Voted, nil
}

func (c *Client) VoteCount(ctx context.Context, club, position, candidateID string) (int64, error) {
	q := url.Values{"club": {club}, "position": {position}, "candidateId": {candidateID}}
	var out struct {
		Votes int64 `json:"votes"`
	}
	if err := c.getJSON(ctx, "/v1/tallies?"+q.Encode(), &out); err != nil {
		return 0, err
	}
	return out.Votes, nil
}

func (c *Client) ElectionWindow(ctx context.Context, club, position string) (WindowInfo, error) {
	q := url.Values{"club": {club}, "position": {position}}
	var out struct {
		StartTime       time.Time `json:"startTime"`
		DurationSeconds int64     `json:"durationSeconds"`
		Active          bool      `json:"active"`
	}
	err := c.getJSON(ctx, "/v1/windows?"+q.Encode(), &out)
	if err != nil {
		return WindowInfo{}, err
	}
	return WindowInfo{
		StartTime: out.StartTime,
		Duration:  time.Duration(out.DurationSeconds) * time.Second,
		Active:    out.Active,
	}, nil
}

// getJSON performs an idempotent read with bounded retries.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= readRetries; attempt++ {
		lastErr = c.tryGetJSON(ctx, path, out)
		if lastErr == nil || ctx.Err() != nil || lastErr == ErrNotConfigured {
			return lastErr
		}
		c.log.Debug().Err(lastErr).Int("attempt", attempt).Str("path", path).Msg("ledger read failed")
		select {
		case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", model.ErrSettlement, ctx.Err())
		}
	}
	return lastErr
}

func (c *Client) tryGetJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrSettlement, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrSettlement, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", model.ErrSettlement, err)
		}
		return nil
	case http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return ErrNotConfigured
	default:
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: gateway returned %d", model.ErrSettlement, resp.StatusCode)
	}
}
