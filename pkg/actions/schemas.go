package actions

import "github.com/taskdeck/taskdeck/pkg/models"

func stringProp(description string) *models.Property {
	return &models.Property{Type: "string", Description: description}
}

func stringListProp(description string) *models.Property {
	return &models.Property{
		Type:        "array",
		Description: description,
		Items:       &models.Property{Type: "string"},
	}
}

func emptySchema(title string) *models.JSONSchema {
	return &models.JSONSchema{Type: "object", Title: title}
}

// defaultSchemas is the static declaration of every action kind's config
// fields and their required-ness.
func defaultSchemas() map[models.ActionType]*models.JSONSchema {
	userIDsSchema := func(title string) *models.JSONSchema {
		return &models.JSONSchema{
			Type:  "object",
			Title: title,
			Properties: map[string]*models.Property{
				"user_ids": stringListProp("Users to apply"),
				"user_id":  stringProp("Legacy single user"),
			},
			// user_ids is required; the legacy scalar alone also satisfies it.
			AnyOf: []*models.JSONSchema{
				{Required: []string{"user_ids"}},
				{Required: []string{"user_id"}},
			},
		}
	}

	dateConfigProp := &models.Property{
		Type: "object",
		Properties: map[string]*models.Property{
			"date_type": {
				Type: "string",
				Enum: []any{"first_day_of_month", "last_day_of_month", "days_after_trigger", "specific_day", "recurring"},
			},
			"days_count":           {Type: "integer"},
			"day_of_month":         {Type: "integer"},
			"recurrence_type":      {Type: "string", Enum: []any{"daily", "weekly", "biweekly", "monthly", "quarterly"}},
			"day_of_week":          {Type: "string"},
			"monthly_mode":         {Type: "string", Enum: []any{"first_day", "last_day", "specific_day"}},
			"skip_weekends":        {Type: "boolean"},
			"repeat_forever":       {Type: "boolean"},
			"on_complete_action":   {Type: "string", Enum: []any{"create_new_task", "update_status"}},
			"reset_status_id":      {Type: "string"},
			"trigger_on_status_id": {Type: "string"},
		},
		Required: []string{"date_type"},
	}

	return map[models.ActionType]*models.JSONSchema{
		models.ActionSetStatus: {
			Type:  "object",
			Title: "Set status",
			Properties: map[string]*models.Property{
				"status_id": stringProp("Target status, resolved against the effective scope"),
			},
			Required: []string{"status_id"},
		},
		models.ActionSetPriority: {
			Type:  "object",
			Title: "Set priority",
			Properties: map[string]*models.Property{
				"priority": {Type: "string", Enum: []any{"urgent", "high", "medium", "low"}},
			},
			Required: []string{"priority"},
		},
		models.ActionAutoAssignUser: userIDsSchema("Assign users"),
		models.ActionAddAssignee:    userIDsSchema("Add assignees"),
		models.ActionRemoveAssignee: {
			Type:  "object",
			Title: "Remove assignee",
			Properties: map[string]*models.Property{
				"user_id": stringProp("User to remove"),
			},
			Required: []string{"user_id"},
		},
		models.ActionRemoveAllAssignees: emptySchema("Remove all assignees"),
		models.ActionAutoAddFollower:    userIDsSchema("Add followers"),
		models.ActionAddFollower:        userIDsSchema("Add followers"),
		models.ActionAutoAssignTeam: {
			Type:  "object",
			Title: "Assign team",
			Properties: map[string]*models.Property{
				"team_id": stringProp("Team whose members are assigned"),
			},
			Required: []string{"team_id"},
		},
		models.ActionAddTag: {
			Type:  "object",
			Title: "Add tag",
			Properties: map[string]*models.Property{
				"tag_id": stringProp("Tag to add"),
			},
			Required: []string{"tag_id"},
		},
		models.ActionRemoveTag: {
			Type:  "object",
			Title: "Remove tag",
			Properties: map[string]*models.Property{
				"tag_id": stringProp("Tag to remove"),
			},
			Required: []string{"tag_id"},
		},
		models.ActionSetDueDate: {
			Type:  "object",
			Title: "Set due date",
			Properties: map[string]*models.Property{
				"date_config": dateConfigProp,
			},
			Required: []string{"date_config"},
		},
		models.ActionSetStartDate: {
			Type:  "object",
			Title: "Set start date",
			Properties: map[string]*models.Property{
				"date_config": dateConfigProp,
			},
			Required: []string{"date_config"},
		},
		models.ActionSendNotification: {
			Type:  "object",
			Title: "Send notification",
			Properties: map[string]*models.Property{
				"message": stringProp("Notification body"),
				"user_id": stringProp("Recipient"),
			},
			Required: []string{"message", "user_id"},
		},
		models.ActionNotifyChannel: {
			Type:  "object",
			Title: "Notify channel",
			Properties: map[string]*models.Property{
				"channel_id": stringProp("Chat channel to post into"),
				"message":    stringProp("Message body"),
			},
			Required: []string{"channel_id", "message"},
		},
		models.ActionCreateSubtask: {
			Type:  "object",
			Title: "Create subtask",
			Properties: map[string]*models.Property{
				"title":       stringProp("Subtask title"),
				"description": stringProp("Optional description"),
			},
			Required: []string{"title"},
		},
		models.ActionMoveTask: {
			Type:  "object",
			Title: "Move task",
			Properties: map[string]*models.Property{
				"target_list_id": stringProp("Destination list; becomes the effective scope for later actions"),
			},
			Required: []string{"target_list_id"},
		},
		models.ActionArchiveTask: emptySchema("Archive task"),
		models.ActionSendWebhook: {
			Type:  "object",
			Title: "Send webhook",
			Properties: map[string]*models.Property{
				"url": stringProp("Destination URL"),
			},
			Required: []string{"url"},
		},
	}
}
