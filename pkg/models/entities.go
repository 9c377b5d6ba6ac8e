package models

import "time"

// Hierarchy entities are owned by the surrounding application; the engine
// only reads the foreign keys it needs for ancestry resolution.

type Space struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
}

type Folder struct {
	ID      string `json:"id"`
	SpaceID string `json:"space_id"`
	Name    string `json:"name"`
}

// List belongs to a space and optionally to a folder inside that space.
type List struct {
	ID       string `json:"id"`
	SpaceID  string `json:"space_id"`
	FolderID string `json:"folder_id,omitempty"`
	Name     string `json:"name"`
}

type Status struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Member struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// TaskSnapshot is the slice of a task the condition evaluator needs. The host
// fetches it at most once per rule batch.
type TaskSnapshot struct {
	ID          string     `json:"id"`
	WorkspaceID string     `json:"workspace_id"`
	ListID      string     `json:"list_id"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	TagIDs      []string   `json:"tag_ids"`
	AssigneeIDs []string   `json:"assignee_ids"`
	HasSubtasks bool       `json:"has_subtasks"`
}
