// Package chat answers waste management questions through the configured
// AI provider and keeps each user's conversation history.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessageLength is the longest accepted message, in runes.
const MaxMessageLength = 2000

const (
	questionPrefix   = "\n\nPertanyaan pengguna: "
	fallbackResponse = "Maaf, saya tidak dapat menghasilkan respon. Silakan coba lagi."
)

// Message is one question and the assistant's answer.
type Message struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// SendCommand carries a user's question.
type SendCommand struct {
	Message string `json:"message"`
}

// Cleared reports how many messages Clear removed.
type Cleared struct {
	Deleted int64 `json:"deleted"`
}

var faqs = []string{
	"Apa saja jenis sampah yang bisa didaur ulang?",
	"Bagaimana cara memulai kompos di rumah?",
	"Apa itu sampah elektronik (e-waste)?",
	"Bagaimana cara memilah sampah dengan benar?",
	"Apa manfaat daur ulang bagi lingkungan?",
	"Bagaimana cara mengurangi sampah plastik?",
}

// FAQs returns the suggested starter questions.
func FAQs() []string {
	return faqs
}
