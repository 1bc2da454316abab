package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	// pageLimit is the per-page record limit requested from
	// the API.
	pageLimit = 1000

	apiVersion = "2023-06-01"

	// requestsPerSecond caps outbound request rate across all
	// concurrent day fetches.
	requestsPerSecond = 10
)

// APIError is a non-success response from the upstream API.
// The whole fetch cycle aborts on one, except for the project
// usage source, which callers treat as optional.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("analytics API %d: %s", e.Status, e.Message)
}

// Client talks to the enterprise analytics API. All fetches
// are paginated internally and rate-limited client-side.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Client for the given API base URL and key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(requestsPerSecond, requestsPerSecond),
	}
}

// get performs one rate-limited GET and returns the response
// body. Non-2xx responses become *APIError with the body text
// as the message.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(body)),
		}
	}
	return body, nil
}

// getAllPages follows next_page cursors until exhausted,
// returning the raw JSON of every element in the "data" arrays.
func (c *Client) getAllPages(
	ctx context.Context, path string, params url.Values,
) ([]gjson.Result, error) {
	var all []gjson.Result
	page := ""

	for {
		q := url.Values{}
		for k, vs := range params {
			q[k] = vs
		}
		q.Set("limit", fmt.Sprint(pageLimit))
		if page != "" {
			q.Set("page", page)
		}

		body, err := c.get(ctx, path, q)
		if err != nil {
			return nil, err
		}
		if !gjson.ValidBytes(body) {
			return nil, fmt.Errorf("invalid JSON from %s", path)
		}

		all = append(all, gjson.GetBytes(body, "data").Array()...)

		page = gjson.GetBytes(body, "next_page").Str
		if page == "" {
			return all, nil
		}
	}
}

// FetchUsers returns all per-user activity records for one
// calendar day (YYYY-MM-DD).
func (c *Client) FetchUsers(
	ctx context.Context, day string,
) ([]UserActivityRecord, error) {
	elems, err := c.getAllPages(ctx, "/users", url.Values{"date": {day}})
	if err != nil {
		return nil, err
	}

	records := make([]UserActivityRecord, 0, len(elems))
	for _, el := range elems {
		var rec UserActivityRecord
		if err := json.Unmarshal([]byte(el.Raw), &rec); err != nil {
			return nil, fmt.Errorf("decoding user record for %s: %w", day, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// FetchSummaries returns day-level summaries for an inclusive
// date range. The summaries endpoint is not cursor-paginated.
func (c *Client) FetchSummaries(
	ctx context.Context, startDay, endDay string,
) ([]DaySummary, error) {
	body, err := c.get(ctx, "/summaries", url.Values{
		"starting_date": {startDay},
		"ending_date":   {endDay},
		"limit":         {fmt.Sprint(pageLimit)},
	})
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON from /summaries")
	}

	elems := gjson.GetBytes(body, "summaries").Array()
	summaries := make([]DaySummary, 0, len(elems))
	for _, el := range elems {
		var s DaySummary
		if err := json.Unmarshal([]byte(el.Raw), &s); err != nil {
			return nil, fmt.Errorf("decoding day summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// FetchProjects returns per-project usage records for one
// calendar day. This source is optional at the system boundary;
// callers degrade to an empty project list on failure.
func (c *Client) FetchProjects(
	ctx context.Context, day string,
) ([]ProjectUsageRecord, error) {
	elems, err := c.getAllPages(ctx, "/projects", url.Values{"date": {day}})
	if err != nil {
		return nil, err
	}

	records := make([]ProjectUsageRecord, 0, len(elems))
	for _, el := range elems {
		var rec ProjectUsageRecord
		if err := json.Unmarshal([]byte(el.Raw), &rec); err != nil {
			return nil, fmt.Errorf("decoding project record for %s: %w", day, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
