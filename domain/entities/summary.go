package entities

// PlayerResult is a player's row in a session summary
type PlayerResult struct {
	GameSessionPlayer
	Username      string  `json:"username,omitempty"`
	Name          string  `json:"name,omitempty"`
	DiffBb        float64 `json:"diffBb"`
	Result        float64 `json:"result"`
	ReturnPercent float64 `json:"returnPercent"` // diff relative to one buy-in
}

// SessionSummary aggregates the players of a session
type SessionSummary struct {
	Session       GameSession    `json:"session"`
	Players       []PlayerResult `json:"players"`
	TotalBuyins   int            `json:"totalBuyins"`
	TotalStackBb  float64        `json:"totalStackBb"`
	AverageBuyins float64        `json:"averageBuyins"`
	// ImbalanceBb is non-zero when recorded stacks do not add up to what was bought in
	ImbalanceBb float64 `json:"imbalanceBb"`
}

// Summarize computes per-player results and session totals
func Summarize(session *GameSession, players []*GameSessionPlayer) *SessionSummary {
	summary := &SessionSummary{
		Session: *session,
		Players: make([]PlayerResult, 0, len(players)),
	}

	for _, p := range players {
		diff := p.DiffBb(session.BuyinBb)
		summary.Players = append(summary.Players, PlayerResult{
			GameSessionPlayer: *p,
			DiffBb:            diff,
			Result:            session.ToCurrency(diff),
			ReturnPercent:     diff / float64(session.BuyinBb) * 100,
		})
		summary.TotalBuyins += p.Buyins
		summary.TotalStackBb += p.StackBb
		summary.ImbalanceBb += diff
	}

	if len(players) > 0 {
		summary.AverageBuyins = float64(summary.TotalBuyins) / float64(len(players))
	}

	return summary
}

// PlayerIDs lists the user ids of the summarized players
func (s *SessionSummary) PlayerIDs() []string {
	ids := make([]string, len(s.Players))
	for i, p := range s.Players {
		ids[i] = p.UserID
	}
	return ids
}

// NamePlayers fills in the username and display name of every player found in users
func (s *SessionSummary) NamePlayers(users []*User) {
	byID := make(map[string]*User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range s.Players {
		if u, ok := byID[s.Players[i].UserID]; ok {
			s.Players[i].Username = u.Username
			s.Players[i].Name = u.Name
		}
	}
}
