package entities

// GameSessionPlayer is one user's seat in a session, keyed by (GameSessionID, UserID)
type GameSessionPlayer struct {
	GameSessionID string  `json:"gameSessionId" validate:"required"`
	UserID        string  `json:"userId" validate:"required"`
	Buyins        int     `json:"buyins" validate:"gte=0"`
	StackBb       float64 `json:"stackBb" validate:"gte=0"`
}

// Validate checks the player against its schema
func (p *GameSessionPlayer) Validate() error {
	return validateStruct("game session player", p)
}

// InvestedBb is the total bought in, in big blinds
func (p *GameSessionPlayer) InvestedBb(buyinBb int) float64 {
	return float64(p.Buyins * buyinBb)
}

// DiffBb is the net result in big blinds: stack minus everything bought in
func (p *GameSessionPlayer) DiffBb(buyinBb int) float64 {
	return p.StackBb - p.InvestedBb(buyinBb)
}

// Result is the net result in currency
func (p *GameSessionPlayer) Result(session *GameSession) float64 {
	return session.ToCurrency(p.DiffBb(session.BuyinBb))
}

// GameSessionPlayerPatch is a partial player write. Nil fields are left untouched.
type GameSessionPlayerPatch struct {
	Buyins  *int     `json:"buyins,omitempty" validate:"omitempty,gte=0"`
	StackBb *float64 `json:"stackBb,omitempty" validate:"omitempty,gte=0"`
}

// Validate checks the present fields
func (p *GameSessionPlayerPatch) Validate() error {
	return validateStruct("game session player", p)
}

// IsEmpty reports whether the patch changes nothing
func (p *GameSessionPlayerPatch) IsEmpty() bool {
	return p.Buyins == nil && p.StackBb == nil
}

// Apply returns a copy of player with the patch applied
func (p *GameSessionPlayerPatch) Apply(player GameSessionPlayer) GameSessionPlayer {
	if p.Buyins != nil {
		player.Buyins = *p.Buyins
	}
	if p.StackBb != nil {
		player.StackBb = *p.StackBb
	}
	return player
}
