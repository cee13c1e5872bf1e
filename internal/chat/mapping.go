package chat

import (
	"github.com/sapulidi/sapulidi/pkg/query"
	"github.com/sapulidi/sapulidi/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "chat_history", "c").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("message", "Message").
	Project("response", "Response").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{Field: "CreatedAt"}

func scanMessage(s repository.Scanner) (Message, error) {
	var m Message
	err := s.Scan(&m.ID, &m.UserID, &m.Message, &m.Response, &m.CreatedAt)
	return m, err
}
