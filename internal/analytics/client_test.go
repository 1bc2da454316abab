package analytics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchUsersSinglePage(t *testing.T) {
	var gotPath, gotDate, gotLimit, gotKey, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotDate = r.URL.Query().Get("date")
		gotLimit = r.URL.Query().Get("limit")
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		fmt.Fprint(w, `{
			"data": [
				{
					"user": {"id": "u1", "email_address": "jane.doe@example.com"},
					"chat_metrics": {"distinct_conversation_count": 2, "message_count": 15},
					"claude_code_metrics": {
						"core_metrics": {
							"distinct_session_count": 4,
							"commit_count": 3,
							"pull_request_count": 1,
							"lines_of_code": {"added_count": 120, "removed_count": 40}
						},
						"tool_actions": {
							"edit_tool": {"accepted_count": 8, "rejected_count": 2},
							"write_tool": {"accepted_count": 1, "rejected_count": 0}
						}
					},
					"web_search_count": 6
				}
			],
			"has_more": false
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	records, err := c.FetchUsers(context.Background(), "2024-06-02")
	require.NoError(t, err)

	assert.Equal(t, "/users", gotPath)
	assert.Equal(t, "2024-06-02", gotDate)
	assert.Equal(t, "1000", gotLimit)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "2023-06-01", gotVersion)

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "jane.doe@example.com", rec.User.EmailAddress)
	assert.Equal(t, 4, rec.CodeMetrics.CoreMetrics.DistinctSessionCount)
	assert.Equal(t, 3, rec.CodeMetrics.CoreMetrics.CommitCount)
	assert.Equal(t, 120, rec.CodeMetrics.CoreMetrics.LinesOfCode.AddedCount)
	assert.Equal(t, 2, rec.ChatMetrics.DistinctConversationCount)
	assert.Equal(t, 6, rec.WebSearchCount)
	assert.Equal(t, 9, rec.CodeMetrics.ToolActions.Accepted())
	assert.Equal(t, 2, rec.CodeMetrics.ToolActions.Rejected())
}

func TestFetchUsersFollowsPagination(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		switch page {
		case "":
			fmt.Fprint(w, `{
				"data": [{"user": {"id": "u1", "email_address": "a@x"}}],
				"next_page": "cursor-2"
			}`)
		case "cursor-2":
			fmt.Fprint(w, `{
				"data": [
					{"user": {"id": "u2", "email_address": "b@x"}},
					{"user": {"id": "u3", "email_address": "c@x"}}
				],
				"next_page": ""
			}`)
		default:
			http.Error(w, "unexpected cursor", http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	records, err := c.FetchUsers(context.Background(), "2024-06-02")
	require.NoError(t, err)

	assert.Equal(t, []string{"", "cursor-2"}, pages)
	require.Len(t, records, 3)
	assert.Equal(t, "u1", records[0].User.ID)
	assert.Equal(t, "u3", records[2].User.ID)
}

func TestFetchUsersAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid x-api-key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad-key")
	_, err := c.FetchUsers(context.Background(), "2024-06-02")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid x-api-key", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "401")
}

func TestFetchUsersInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	_, err := c.FetchUsers(context.Background(), "2024-06-02")
	assert.Error(t, err)
}

func TestFetchSummaries(t *testing.T) {
	var gotStart, gotEnd string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summaries", r.URL.Path)
		gotStart = r.URL.Query().Get("starting_date")
		gotEnd = r.URL.Query().Get("ending_date")
		fmt.Fprint(w, `{
			"summaries": [
				{"starting_at": "2024-06-01T00:00:00Z", "ending_at": "2024-06-02T00:00:00Z", "daily_active_user_count": 42},
				{"starting_at": "2024-06-02T00:00:00Z", "ending_at": "2024-06-03T00:00:00Z", "daily_active_user_count": 37}
			]
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	summaries, err := c.FetchSummaries(context.Background(), "2024-06-01", "2024-06-02")
	require.NoError(t, err)

	assert.Equal(t, "2024-06-01", gotStart)
	assert.Equal(t, "2024-06-02", gotEnd)
	require.Len(t, summaries, 2)
	assert.Equal(t, "2024-06-01T00:00:00Z", summaries[0].StartingAt)
	assert.Equal(t, 42, summaries[0].DailyActiveUserCount)
}

func TestFetchProjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects", r.URL.Path)
		fmt.Fprint(w, `{
			"data": [
				{"project_name": "api", "project_id": "p1", "distinct_user_count": 4, "conversation_count": 10, "message_count": 50}
			]
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	projects, err := c.FetchProjects(context.Background(), "2024-06-02")
	require.NoError(t, err)

	require.Len(t, projects, 1)
	assert.Equal(t, "api", projects[0].ProjectName)
	assert.Equal(t, 4, projects[0].DistinctUserCount)
	assert.Equal(t, 10, projects[0].ConversationCount)
}

func TestFetchUsersContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, "k")
	_, err := c.FetchUsers(ctx, "2024-06-02")
	assert.True(t, errors.Is(err, context.Canceled),
		"want context.Canceled, got %v", err)
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "k")
	_, err := c.FetchUsers(context.Background(), "2024-06-02")
	require.NoError(t, err)
	assert.Equal(t, "/users", gotPath)
}
