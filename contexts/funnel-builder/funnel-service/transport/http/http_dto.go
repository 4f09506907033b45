package http

import (
	"encoding/json"
	"time"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateFunnelRequest struct {
	Name string `json:"name"`
}

type AddStageRequest struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	OrderIndex int            `json:"orderIndex"`
	IsEnabled  *bool          `json:"isEnabled"`
	Config     map[string]any `json:"config"`
}

type UpdateStageConfigRequest struct {
	Config map[string]any `json:"config"`
}

type SetStageEnabledRequest struct {
	IsEnabled bool `json:"isEnabled"`
}

type ReorderStagesRequest struct {
	StageIDs []string `json:"stageIds"`
}

// OptionPayload accepts both the camelCase and snake_case spellings that
// exported funnel definitions use in the wild. camelCase wins when both are
// present; points below 1 normalize to 1.
type OptionPayload struct {
	OptionID      string `json:"id"`
	Text          string `json:"text"`
	ImageURL      string `json:"imageUrl"`
	StyleCategory string `json:"styleCategory"`
	Points        int    `json:"points"`
	OrderIndex    int    `json:"orderIndex"`
}

func (p *OptionPayload) UnmarshalJSON(data []byte) error {
	type raw struct {
		OptionID           string `json:"id"`
		Text               string `json:"text"`
		ImageURL           string `json:"imageUrl"`
		ImageURLSnake      string `json:"image_url"`
		StyleCategory      string `json:"styleCategory"`
		StyleCategorySnake string `json:"style_category"`
		Points             *int   `json:"points"`
		OrderIndex         *int   `json:"orderIndex"`
		OrderIndexSnake    *int   `json:"order_index"`
	}
	var decoded raw
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	p.OptionID = decoded.OptionID
	p.Text = decoded.Text
	p.ImageURL = firstNonEmpty(decoded.ImageURL, decoded.ImageURLSnake)
	p.StyleCategory = firstNonEmpty(decoded.StyleCategory, decoded.StyleCategorySnake)
	p.Points = 1
	if decoded.Points != nil && *decoded.Points >= 1 {
		p.Points = *decoded.Points
	}
	p.OrderIndex = 0
	if decoded.OrderIndex != nil {
		p.OrderIndex = *decoded.OrderIndex
	} else if decoded.OrderIndexSnake != nil {
		p.OrderIndex = *decoded.OrderIndexSnake
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

type ImportStagePayload struct {
	Type       string          `json:"type"`
	Title      string          `json:"title"`
	OrderIndex int             `json:"orderIndex"`
	IsEnabled  *bool           `json:"isEnabled"`
	Config     map[string]any  `json:"config"`
	Options    []OptionPayload `json:"options"`
}

type ImportCategoryPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

func (p *ImportCategoryPayload) UnmarshalJSON(data []byte) error {
	type raw struct {
		Name          string `json:"name"`
		Description   string `json:"description"`
		ImageURL      string `json:"imageUrl"`
		ImageURLSnake string `json:"image_url"`
	}
	var decoded raw
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	p.Name = decoded.Name
	p.Description = decoded.Description
	p.ImageURL = firstNonEmpty(decoded.ImageURL, decoded.ImageURLSnake)
	return nil
}

type ImportFunnelRequest struct {
	Name       string                  `json:"name"`
	Stages     []ImportStagePayload    `json:"stages"`
	Categories []ImportCategoryPayload `json:"categories"`
}

type ImportFunnelResponse struct {
	Funnel        FunnelView `json:"funnel"`
	StageCount    int        `json:"stageCount"`
	OptionCount   int        `json:"optionCount"`
	CategoryCount int        `json:"categoryCount"`
}

type FunnelView struct {
	FunnelID  string    `json:"funnelId"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type StageView struct {
	StageID    string         `json:"stageId"`
	FunnelID   string         `json:"funnelId"`
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	OrderIndex int            `json:"orderIndex"`
	IsEnabled  bool           `json:"isEnabled"`
	Config     map[string]any `json:"config"`
}

type OptionView struct {
	OptionID      string `json:"optionId"`
	StageID       string `json:"stageId"`
	Text          string `json:"text"`
	ImageURL      string `json:"imageUrl"`
	StyleCategory string `json:"styleCategory"`
	Points        int    `json:"points"`
	OrderIndex    int    `json:"orderIndex"`
}

type CategoryView struct {
	CategoryID  string `json:"categoryId"`
	FunnelID    string `json:"funnelId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

type FunnelDetailResponse struct {
	Funnel     FunnelView     `json:"funnel"`
	Stages     []StageView    `json:"stages"`
	Categories []CategoryView `json:"categories"`
}
