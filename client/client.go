// Package client is a Go client of the sth explorer API, used by monitors
// to push attestations and by operators to query reports.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/photon-storage/sth-explorer/sth"
)

const (
	sthPath         = "sth"
	latestPath      = "latest"
	consistencyPath = "consistency"
	statsPath       = "stats"

	defaultTimeout = 10 * time.Second
)

// Client talks to an sth explorer API endpoint, for example
// http://localhost:8080/sth/v1.
type Client struct {
	endpoint string
	http     *http.Client
}

// New returns a new client instance.
func New(endpoint string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
	}
}

// SubmitResult is the stored attestation returned for a submission.
type SubmitResult struct {
	sth.Attestation
	New bool `json:"new"`
}

// Latest is the newest tree head stored for a log.
type Latest struct {
	LogID     string `json:"log_id"`
	TreeSize  uint64 `json:"tree_size"`
	RootHash  string `json:"root_hash"`
	Timestamp uint64 `json:"timestamp"`
}

// ConsistencyReport is the result of a consistency query.
type ConsistencyReport struct {
	Consistent bool                     `json:"consistent"`
	Results    []*sth.ConsistencyResult `json:"results"`
}

// APIError is a non-ok response of the API.
type APIError struct {
	Status int
	Code   int
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request sth explorer failed, status:%d code:%d msg:%s",
		e.Status, e.Code, e.Msg)
}

// Submit sends a tree head observation.
func (c *Client) Submit(ctx context.Context, sub *sth.Submission) (*SubmitResult, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, errors.Wrap(err, "encode submission")
	}

	r := &SubmitResult{}
	return r, c.do(ctx, http.MethodPost, c.url(sthPath, nil), body, r)
}

// Latest requests the newest tree head of a log.
func (c *Client) Latest(ctx context.Context, logID string) (*Latest, error) {
	l := &Latest{}
	return l, c.do(ctx, http.MethodGet,
		c.url(latestPath, url.Values{"log_id": {logID}}), nil, l)
}

// Consistency checks one log, or every log when logID is empty.
func (c *Client) Consistency(ctx context.Context, logID string) (*ConsistencyReport, error) {
	q := url.Values{}
	if logID != "" {
		q.Set("log_id", logID)
	}

	r := &ConsistencyReport{}
	return r, c.do(ctx, http.MethodGet, c.url(consistencyPath, q), nil, r)
}

// Stats requests a statistics snapshot.
func (c *Client) Stats(ctx context.Context) (*sth.Report, error) {
	r := &sth.Report{}
	return r, c.do(ctx, http.MethodGet, c.url(statsPath, nil), nil, r)
}

func (c *Client) url(path string, q url.Values) string {
	u := fmt.Sprintf("%s/%s", c.endpoint, path)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	return u
}

type apiResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (c *Client) do(
	ctx context.Context,
	method string,
	url string,
	body []byte,
	result interface{},
) error {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()
	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	ar := &apiResponse{}
	if err := json.Unmarshal(raw, ar); err != nil {
		return errors.Wrapf(err, "decode response, status %d", resp.StatusCode)
	}

	if ar.Code != http.StatusOK {
		return &APIError{
			Status: resp.StatusCode,
			Code:   ar.Code,
			Msg:    ar.Msg,
		}
	}

	return json.Unmarshal(ar.Data, result)
}
