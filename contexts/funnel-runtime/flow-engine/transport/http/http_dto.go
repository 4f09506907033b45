package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StartSessionRequest struct {
	FunnelID        string `json:"funnel_id"`
	ParticipantName string `json:"participant_name,omitempty"`
}

type RecordAnswerRequest struct {
	StageID   string   `json:"stage_id"`
	OptionIDs []string `json:"option_ids"`
}

type StageView struct {
	StageID    string         `json:"stage_id"`
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	OrderIndex int            `json:"order_index"`
	Config     map[string]any `json:"config,omitempty"`
}

type SessionResponse struct {
	SessionID         string              `json:"session_id"`
	FunnelID          string              `json:"funnel_id"`
	ParticipantName   string              `json:"participant_name,omitempty"`
	CurrentStageIndex int                 `json:"current_stage_index"`
	CurrentStage      *StageView          `json:"current_stage,omitempty"`
	StageCount        int                 `json:"stage_count"`
	Answers           map[string][]string `json:"answers"`
	CanProceed        bool                `json:"can_proceed"`
	ShouldAutoAdvance bool                `json:"should_auto_advance"`
	IsComplete        bool                `json:"is_complete"`
	Result            *QuizResultView     `json:"result,omitempty"`
}

type StyleResultView struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Points       int    `json:"points"`
	Percentage   int    `json:"percentage"`
}

type QuizResultView struct {
	Primary     StyleResultView   `json:"primary_style"`
	Secondaries []StyleResultView `json:"secondary_styles"`
	AllStyles   []StyleResultView `json:"all_styles"`
	TotalPoints int               `json:"total_points"`
}
