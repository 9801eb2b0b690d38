package entities

import "time"

// MaxGameSessionNameLength bounds session names
const MaxGameSessionNameLength = 255

// GameSession is a tracked live poker game
type GameSession struct {
	ID        string     `json:"id" validate:"required"`
	Name      string     `json:"name" validate:"required,max=255"`
	StartedAt time.Time  `json:"startedAt" validate:"required"`
	EndedAt   *time.Time `json:"endedAt"` // nil while the game is running
	BuyinBb   int        `json:"buyinBb" validate:"min=1"`
	Rate      float64    `json:"rate" validate:"gt=0"`
	CreatorID string     `json:"creatorId" validate:"required"`
}

// Validate checks the session against its schema
func (s *GameSession) Validate() error {
	return validateStruct("game session", s)
}

// IsOngoing returns true until an end time has been recorded
func (s *GameSession) IsOngoing() bool {
	return s.EndedAt == nil
}

// IsEnded returns true once an end time has been recorded
func (s *GameSession) IsEnded() bool {
	return !s.IsOngoing()
}

// Duration returns the elapsed play time, measured to now for running games
func (s *GameSession) Duration(now time.Time) time.Duration {
	if s.EndedAt != nil {
		return s.EndedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}

// ToCurrency converts a big-blind amount to money at the session rate
func (s *GameSession) ToCurrency(bb float64) float64 {
	return bb * s.Rate
}

// GameSessionInput is what a user supplies when creating a session
type GameSessionInput struct {
	Name    string  `json:"name" validate:"required,max=255"`
	BuyinBb int     `json:"buyinBb" validate:"min=1"`
	Rate    float64 `json:"rate" validate:"gt=0"`
}

// Validate checks the input against the session schema
func (in *GameSessionInput) Validate() error {
	return validateStruct("game session", in)
}

// GameSessionPatch is a partial session write. Nil fields are left untouched;
// ClearEndedAt reopens an ended session.
type GameSessionPatch struct {
	Name         *string    `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	StartedAt    *Timestamp `json:"-"`
	EndedAt      *Timestamp `json:"-"`
	ClearEndedAt bool       `json:"-"`
	BuyinBb      *int       `json:"buyinBb,omitempty" validate:"omitempty,min=1"`
	Rate         *float64   `json:"rate,omitempty" validate:"omitempty,gt=0"`
	CreatorID    *string    `json:"creatorId,omitempty" validate:"omitempty,min=1"`
}

// Validate checks the present fields
func (p *GameSessionPatch) Validate() error {
	if err := validateStruct("game session", p); err != nil {
		return err
	}
	if p.ClearEndedAt && p.EndedAt != nil {
		return &ValidationError{
			Entity: "game session",
			Fields: []FieldError{{Field: "endedAt", Rule: "excluded_with", Param: "clear"}},
		}
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing
func (p *GameSessionPatch) IsEmpty() bool {
	return p.Name == nil && p.StartedAt == nil && p.EndedAt == nil && !p.ClearEndedAt &&
		p.BuyinBb == nil && p.Rate == nil && p.CreatorID == nil
}
