package services

import "summa/domain/entities"

// canAdminister reports whether actor may make administrative edits to session
func canAdminister(actor *entities.UserAccount, session *entities.GameSession) bool {
	return actor.IsAdmin || actor.ID == session.CreatorID
}

// canModifyPlayer reports whether actor may change the seat of userID in session.
// Players may always change their own record.
func canModifyPlayer(actor *entities.UserAccount, session *entities.GameSession, userID string) bool {
	return actor.ID == userID || canAdminister(actor, session)
}
