package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// TaskMutator is the host-side surface actions write through. The engine
// never touches task storage directly; it describes the mutation and the host
// applies it.
type TaskMutator interface {
	SetStatus(ctx context.Context, taskID, statusID string) error
	SetPriority(ctx context.Context, taskID, priority string) error
	AddAssignees(ctx context.Context, taskID string, userIDs []string) error
	RemoveAssignee(ctx context.Context, taskID, userID string) error
	RemoveAllAssignees(ctx context.Context, taskID string) error
	AddFollowers(ctx context.Context, taskID string, userIDs []string) error
	AssignTeam(ctx context.Context, taskID, teamID string) error
	AddTag(ctx context.Context, taskID, tagID string) error
	RemoveTag(ctx context.Context, taskID, tagID string) error
	SetDueDate(ctx context.Context, taskID string, due time.Time) error
	SetStartDate(ctx context.Context, taskID string, start time.Time) error
	CreateSubtask(ctx context.Context, taskID, title, description string) error
	MoveTask(ctx context.Context, taskID, targetListID string) error
	ArchiveTask(ctx context.Context, taskID string) error
}

// NotificationSender delivers user and channel notifications.
type NotificationSender interface {
	SendNotification(ctx context.Context, userID, message string) error
	NotifyChannel(ctx context.Context, channelID, message string) error
}

// WebhookSender posts a rule-fired payload to an external URL.
type WebhookSender interface {
	SendWebhook(ctx context.Context, url string, payload map[string]any) error
}

// HTTPWebhookSender is the default WebhookSender, posting JSON over a shared
// http.Client.
type HTTPWebhookSender struct {
	client *http.Client
}

func NewHTTPWebhookSender(client *http.Client) *HTTPWebhookSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &HTTPWebhookSender{client: client}
}

func (s *HTTPWebhookSender) SendWebhook(ctx context.Context, url string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
