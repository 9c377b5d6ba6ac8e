package actions

// Typed views over the raw action config maps. Each Decode* helper validates
// nothing beyond shape; required-field enforcement lives in the registry
// schemas.

type SetStatusConfig struct {
	StatusID string `json:"status_id"`
}

type SetPriorityConfig struct {
	Priority string `json:"priority"`
}

// AssignUsersConfig covers the four user-list actions. Older rules stored a
// single user_id; Normalize folds it into the list form.
type AssignUsersConfig struct {
	UserIDs []string `json:"user_ids"`
	UserID  string   `json:"user_id,omitempty"`
}

func (c *AssignUsersConfig) Normalize() {
	if c.UserID != "" {
		found := false
		for _, id := range c.UserIDs {
			if id == c.UserID {
				found = true

				break
			}
		}

		if !found {
			c.UserIDs = append(c.UserIDs, c.UserID)
		}

		c.UserID = ""
	}
}

type RemoveAssigneeConfig struct {
	UserID string `json:"user_id"`
}

type AssignTeamConfig struct {
	TeamID string `json:"team_id"`
}

type TagConfig struct {
	TagID string `json:"tag_id"`
}

type DateActionConfig struct {
	DateConfig DateConfig `json:"date_config"`
}

type NotificationConfig struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type NotifyChannelConfig struct {
	ChannelID string `json:"channel_id"`
	Message   string `json:"message"`
}

type CreateSubtaskConfig struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type MoveTaskConfig struct {
	TargetListID string `json:"target_list_id"`
}

type WebhookConfig struct {
	URL string `json:"url"`
}

func DecodeSetStatus(config map[string]any) (SetStatusConfig, error) {
	var out SetStatusConfig
	err := decode(config, &out)

	return out, err
}

func DecodeSetPriority(config map[string]any) (SetPriorityConfig, error) {
	var out SetPriorityConfig
	err := decode(config, &out)

	return out, err
}

func DecodeAssignUsers(config map[string]any) (AssignUsersConfig, error) {
	var out AssignUsersConfig
	if err := decode(config, &out); err != nil {
		return out, err
	}

	out.Normalize()

	return out, nil
}

func DecodeRemoveAssignee(config map[string]any) (RemoveAssigneeConfig, error) {
	var out RemoveAssigneeConfig
	err := decode(config, &out)

	return out, err
}

func DecodeAssignTeam(config map[string]any) (AssignTeamConfig, error) {
	var out AssignTeamConfig
	err := decode(config, &out)

	return out, err
}

func DecodeTag(config map[string]any) (TagConfig, error) {
	var out TagConfig
	err := decode(config, &out)

	return out, err
}

func DecodeDateAction(config map[string]any) (DateActionConfig, error) {
	var out DateActionConfig
	err := decode(config, &out)

	return out, err
}

func DecodeNotification(config map[string]any) (NotificationConfig, error) {
	var out NotificationConfig
	err := decode(config, &out)

	return out, err
}

func DecodeNotifyChannel(config map[string]any) (NotifyChannelConfig, error) {
	var out NotifyChannelConfig
	err := decode(config, &out)

	return out, err
}

func DecodeCreateSubtask(config map[string]any) (CreateSubtaskConfig, error) {
	var out CreateSubtaskConfig
	err := decode(config, &out)

	return out, err
}

func DecodeMoveTask(config map[string]any) (MoveTaskConfig, error) {
	var out MoveTaskConfig
	err := decode(config, &out)

	return out, err
}

func DecodeWebhook(config map[string]any) (WebhookConfig, error) {
	var out WebhookConfig
	err := decode(config, &out)

	return out, err
}
