package request

// LoginRequest is the request body for operator sign-in
type LoginRequest struct {
	Username      string `json:"username" validate:"required"`
	Password      string `json:"password" validate:"required"`
	CompetitionID string `json:"competitionId" validate:"omitempty,uuid"`
}

// JudgeLoginRequest is the request body for judge sign-in
type JudgeLoginRequest struct {
	CompetitionID string `json:"competitionId" validate:"required,uuid"`
	Username      string `json:"username" validate:"required"`
	Password      string `json:"password" validate:"required"`
}

// SubmitMarkRequest is the request body for a single judge mark
type SubmitMarkRequest struct {
	TeamID   string   `json:"teamId" validate:"required"`
	PlayerID string   `json:"playerId" validate:"required"`
	Gender   string   `json:"gender" validate:"required,oneof=Male Female"`
	AgeGroup string   `json:"ageGroup" validate:"required"`
	Score    *float64 `json:"score" validate:"required,gte=0,lte=10"`
	Time     string   `json:"time" validate:"max=16"`
}

// Marks holds one mark per judge seat
type Marks struct {
	SeniorJudge float64 `json:"seniorJudge" validate:"gte=0,lte=10"`
	Judge1      float64 `json:"judge1" validate:"gte=0,lte=10"`
	Judge2      float64 `json:"judge2" validate:"gte=0,lte=10"`
	Judge3      float64 `json:"judge3" validate:"gte=0,lte=10"`
	Judge4      float64 `json:"judge4" validate:"gte=0,lte=10"`
}

// PlayerScore is one row of a bulk score sheet
type PlayerScore struct {
	PlayerID       string  `json:"playerId" validate:"required"`
	Time           string  `json:"time" validate:"max=16"`
	Marks          Marks   `json:"marks"`
	Deduction      float64 `json:"deduction" validate:"gte=0"`
	OtherDeduction float64 `json:"otherDeduction" validate:"gte=0"`
}

// BulkSaveRequest is the request body for saving a team's full score sheet
type BulkSaveRequest struct {
	TeamID         string        `json:"teamId" validate:"required"`
	Gender         string        `json:"gender" validate:"required,oneof=Male Female"`
	AgeGroup       string        `json:"ageGroup" validate:"required"`
	TimeKeeperName string        `json:"timeKeeperName" validate:"max=100"`
	ScorerName     string        `json:"scorerName" validate:"max=100"`
	Remarks        string        `json:"remarks" validate:"max=1000"`
	Scores         []PlayerScore `json:"scores" validate:"min=1,dive"`
}

// SetAdminsRequest is the request body for replacing a competition's admins
type SetAdminsRequest struct {
	AdminIDs []string `json:"adminIds" validate:"dive,required"`
}

// EnsurePanelRequest is the request body for creating a category's judge seats
type EnsurePanelRequest struct {
	Gender   string `json:"gender" validate:"required,oneof=Male Female"`
	AgeGroup string `json:"ageGroup" validate:"required"`
}

// AssignJudgeRequest is the request body for filling a judge seat
type AssignJudgeRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"omitempty,min=4,max=72"`
}
