// Package host is the HTTP adapter to the surrounding task application. It
// implements the engine's collaborator interfaces (entity reads, task
// mutations, notifications, date-arrival scans) against the host's REST API.
package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/pkg/models"
	"github.com/taskdeck/taskdeck/pkg/schedule"
	"github.com/taskdeck/taskdeck/pkg/store"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With("module", "host_client"),
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	return c.do(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}

		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("host request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, store.ErrNotFound)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("host returned status %d for %s %s", resp.StatusCode, method, path)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode host response: %w", err)
	}

	return nil
}

// --- store.EntityStore ---

func (c *Client) GetList(ctx context.Context, id string) (*models.List, error) {
	var list models.List
	if err := c.get(ctx, "/api/lists/"+url.PathEscape(id), &list); err != nil {
		return nil, err
	}

	return &list, nil
}

func (c *Client) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	var folder models.Folder
	if err := c.get(ctx, "/api/folders/"+url.PathEscape(id), &folder); err != nil {
		return nil, err
	}

	return &folder, nil
}

func (c *Client) GetSpace(ctx context.Context, id string) (*models.Space, error) {
	var space models.Space
	if err := c.get(ctx, "/api/spaces/"+url.PathEscape(id), &space); err != nil {
		return nil, err
	}

	return &space, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*models.TaskSnapshot, error) {
	var task models.TaskSnapshot
	if err := c.get(ctx, "/api/tasks/"+url.PathEscape(id), &task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (c *Client) GetStatusesForScope(ctx context.Context, scope models.ScopeRef) ([]*models.Status, error) {
	var statuses []*models.Status

	path := fmt.Sprintf("/api/scopes/%s/%s/statuses", url.PathEscape(string(scope.Type)), url.PathEscape(scope.ID))
	if err := c.get(ctx, path, &statuses); err != nil {
		return nil, err
	}

	return statuses, nil
}

func (c *Client) GetTags(ctx context.Context, workspaceID string) ([]*models.Tag, error) {
	var tags []*models.Tag
	if err := c.get(ctx, "/api/workspaces/"+url.PathEscape(workspaceID)+"/tags", &tags); err != nil {
		return nil, err
	}

	return tags, nil
}

func (c *Client) GetWorkspaceMembers(ctx context.Context, workspaceID string) ([]*models.Member, error) {
	var members []*models.Member
	if err := c.get(ctx, "/api/workspaces/"+url.PathEscape(workspaceID)+"/members", &members); err != nil {
		return nil, err
	}

	return members, nil
}

// --- engine.TaskMutator ---

func (c *Client) taskPath(taskID, suffix string) string {
	return "/api/tasks/" + url.PathEscape(taskID) + suffix
}

func (c *Client) SetStatus(ctx context.Context, taskID, statusID string) error {
	return c.post(ctx, c.taskPath(taskID, "/status"), map[string]string{"status_id": statusID})
}

func (c *Client) SetPriority(ctx context.Context, taskID, priority string) error {
	return c.post(ctx, c.taskPath(taskID, "/priority"), map[string]string{"priority": priority})
}

// mutationSource attributes assignee and follower additions to automation so
// the host can distinguish them from manual ones.
const mutationSource = "automation"

func (c *Client) AddAssignees(ctx context.Context, taskID string, userIDs []string) error {
	return c.post(ctx, c.taskPath(taskID, "/assignees"), map[string]any{
		"user_ids": userIDs,
		"source":   mutationSource,
	})
}

func (c *Client) RemoveAssignee(ctx context.Context, taskID, userID string) error {
	return c.post(ctx, c.taskPath(taskID, "/assignees/remove"), map[string]string{"user_id": userID})
}

func (c *Client) RemoveAllAssignees(ctx context.Context, taskID string) error {
	return c.post(ctx, c.taskPath(taskID, "/assignees/remove-all"), nil)
}

func (c *Client) AddFollowers(ctx context.Context, taskID string, userIDs []string) error {
	return c.post(ctx, c.taskPath(taskID, "/followers"), map[string]any{
		"user_ids": userIDs,
		"source":   mutationSource,
	})
}

func (c *Client) AssignTeam(ctx context.Context, taskID, teamID string) error {
	return c.post(ctx, c.taskPath(taskID, "/team"), map[string]string{"team_id": teamID})
}

func (c *Client) AddTag(ctx context.Context, taskID, tagID string) error {
	return c.post(ctx, c.taskPath(taskID, "/tags"), map[string]string{"tag_id": tagID})
}

func (c *Client) RemoveTag(ctx context.Context, taskID, tagID string) error {
	return c.post(ctx, c.taskPath(taskID, "/tags/remove"), map[string]string{"tag_id": tagID})
}

func (c *Client) SetDueDate(ctx context.Context, taskID string, due time.Time) error {
	return c.post(ctx, c.taskPath(taskID, "/due-date"), map[string]string{"due_date": due.Format(time.RFC3339)})
}

func (c *Client) SetStartDate(ctx context.Context, taskID string, start time.Time) error {
	return c.post(ctx, c.taskPath(taskID, "/start-date"), map[string]string{"start_date": start.Format(time.RFC3339)})
}

func (c *Client) CreateSubtask(ctx context.Context, taskID, title, description string) error {
	return c.post(ctx, c.taskPath(taskID, "/subtasks"), map[string]string{
		"title":       title,
		"description": description,
	})
}

func (c *Client) MoveTask(ctx context.Context, taskID, targetListID string) error {
	return c.post(ctx, c.taskPath(taskID, "/move"), map[string]string{"target_list_id": targetListID})
}

func (c *Client) ArchiveTask(ctx context.Context, taskID string) error {
	return c.post(ctx, c.taskPath(taskID, "/archive"), nil)
}

// --- engine.NotificationSender ---

func (c *Client) SendNotification(ctx context.Context, userID, message string) error {
	return c.post(ctx, "/api/notifications", map[string]string{
		"user_id": userID,
		"message": message,
	})
}

func (c *Client) NotifyChannel(ctx context.Context, channelID, message string) error {
	return c.post(ctx, "/api/channels/"+url.PathEscape(channelID)+"/messages", map[string]string{
		"message": message,
	})
}

// --- schedule.Scanner ---

func (c *Client) ScanArrivals(ctx context.Context, now time.Time) ([]schedule.Arrival, error) {
	var arrivals []schedule.Arrival

	path := "/api/arrivals?now=" + url.QueryEscape(now.Format(time.RFC3339))
	if err := c.get(ctx, path, &arrivals); err != nil {
		return nil, err
	}

	return arrivals, nil
}
