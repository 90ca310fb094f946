package entity

// ChatDeletion lists a chat document and every message beneath it.
type ChatDeletion struct {
	ChatID     string
	MessageIDs []string
}

// DeletionPlan is everything removed together with a user.
type DeletionPlan struct {
	UserID     string
	BookingIDs []string
	AiChatIDs  []string
	Chats      []ChatDeletion
}

// Count is the number of document deletes the plan commits, the user
// document included.
func (p *DeletionPlan) Count() int {
	n := 1 + len(p.BookingIDs) + len(p.AiChatIDs)
	for _, c := range p.Chats {
		n += 1 + len(c.MessageIDs)
	}
	return n
}
