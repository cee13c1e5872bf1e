// Package classifications runs waste image classification for callers and
// keeps a per-user history of successful results.
package classifications

import (
	"time"

	"github.com/sapulidi/sapulidi/internal/workflow"
	"github.com/sapulidi/sapulidi/pkg/notify"
)

// Persistence reasons when a result is not stored.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonNoDetection     = "no_detection"
	ReasonCancelled       = "cancelled"
	ReasonError           = "error"
)

// User-facing notification messages.
const (
	msgSaved         = "Hasil klasifikasi disimpan!"
	msgSaveFailed    = "Gagal menyimpan hasil klasifikasi"
	msgDeleted       = "Riwayat berhasil dihapus!"
	msgDeleteFailed  = "Gagal menghapus riwayat"
	msgSignInToSave  = "Masuk untuk menyimpan hasil klasifikasi ke riwayat"
	msgAttemptClosed = "Klasifikasi dibatalkan sebelum disimpan"
	msgInFlight      = "Klasifikasi sebelumnya masih diproses, tunggu sebentar"
)

// HistoryItem is one stored classification owned by a single user.
type HistoryItem struct {
	ID            int64                   `json:"id"`
	UserID        string                  `json:"user_id"`
	ImageURL      string                  `json:"image_url"`
	ImageKey      string                  `json:"-"`
	Result        workflow.AnalysisResult `json:"result"`
	Accuracy      *float64                `json:"accuracy"`
	PromptVersion string                  `json:"prompt_version"`
	CreatedAt     time.Time               `json:"created_at"`
}

// ClassifyCommand carries the image to classify as a base64 data URI.
type ClassifyCommand struct {
	Image string `json:"image"`
}

// Persistence reports whether a classification was stored and, if not, why.
type Persistence struct {
	Persisted bool   `json:"persisted"`
	Reason    string `json:"reason,omitempty"`
	ID        *int64 `json:"id,omitempty"`
}

// Classification is the response to a classify request.
type Classification struct {
	workflow.Result
	Accuracy      *float64              `json:"accuracy"`
	ImageURL      string                `json:"image_url,omitempty"`
	Persistence   Persistence           `json:"persistence"`
	Notifications []notify.Notification `json:"notifications"`
}

// Accuracy is the mean waste type percentage scaled to [0,1]. It is nil
// when there are no waste types.
func Accuracy(wasteTypes []workflow.WasteType) *float64 {
	if len(wasteTypes) == 0 {
		return nil
	}

	var sum float64
	for _, w := range wasteTypes {
		sum += float64(w.Percentage)
	}

	acc := min(max(sum/float64(len(wasteTypes))/100, 0), 1)
	return &acc
}
