package classifications_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sapulidi/sapulidi/internal/ai"
	"github.com/sapulidi/sapulidi/internal/classifications"
	"github.com/sapulidi/sapulidi/internal/prompts"
	"github.com/sapulidi/sapulidi/internal/workflow"
	"github.com/sapulidi/sapulidi/pkg/auth"
	"github.com/sapulidi/sapulidi/pkg/notify"
	"github.com/sapulidi/sapulidi/pkg/storage/storagetest"
)

const (
	pngURI     = "data:image/png;base64,iVBORw0KGgo="
	bottleJSON = `{"waste_types":[{"name":"botol plastik","category":"anorganik","percentage":100,"recyclable":true,"recycle_reason":"PET dapat didaur ulang","decomposition_time":"450 tahun","materials":[{"type":"plastik","percentage":100}]}],"overall_assessment":"Botol plastik bersih","disposal_recommendations":["Cuci dan pisahkan label"],"environmental_impact":"Mencemari jika dibakar"}`
	noWaste    = `{"error":"Tidak terdeteksi sampah dalam gambar","waste_types":[]}`
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type defaultPrompts struct{ prompts.System }

func (defaultPrompts) Active(context.Context, prompts.Stage) (*prompts.Prompt, error) {
	return nil, prompts.ErrNotFound
}

func (defaultPrompts) Spec(stage prompts.Stage) (string, error) {
	return prompts.Spec(prompts.LocaleID, stage)
}

func (defaultPrompts) Locale() prompts.Locale { return prompts.LocaleID }

type fakeStore struct {
	mu        sync.Mutex
	items     []classifications.HistoryItem
	nextID    int64
	inserts   int
	lists     int
	insertErr error
}

func (s *fakeStore) Insert(_ context.Context, item classifications.HistoryItem) (classifications.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	if s.insertErr != nil {
		return classifications.HistoryItem{}, s.insertErr
	}
	s.nextID++
	item.ID = s.nextID
	item.CreatedAt = time.Now()
	s.items = append(s.items, item)
	return item, nil
}

func (s *fakeStore) ListByUser(_ context.Context, userID string) ([]classifications.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	var out []classifications.HistoryItem
	for _, item := range slices.Backward(s.items) {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *fakeStore) FindByID(_ context.Context, id int64, userID string) (classifications.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID == id && item.UserID == userID {
			return item, nil
		}
	}
	return classifications.HistoryItem{}, classifications.ErrNotFound
}

func (s *fakeStore) DeleteByID(_ context.Context, id int64, userID string) (classifications.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.ID == id && item.UserID == userID {
			s.items = slices.Delete(s.items, i, i+1)
			return item, nil
		}
	}
	return classifications.HistoryItem{}, classifications.ErrNotFound
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts
}

type fixture struct {
	sys   classifications.System
	store *fakeStore
	blobs *storagetest.Memory
	notes *notify.Collector
}

func testRuntime(capability ai.CapabilityFunc) *workflow.Runtime {
	return &workflow.Runtime{
		AI:               capability,
		Prompts:          defaultPrompts{},
		Logger:           discard,
		Options:          ai.Options{Model: "test"},
		MalformedRetries: 0,
	}
}

func newFixture(capability ai.CapabilityFunc) *fixture {
	store := &fakeStore{}
	blobs := storagetest.New()
	notes := notify.NewCollector()
	return &fixture{
		sys:   classifications.New(store, testRuntime(capability), blobs, notes, time.Minute, 0, discard),
		store: store,
		blobs: blobs,
		notes: notes,
	}
}

func respond(text string) ai.CapabilityFunc {
	return func(context.Context, string, string, ai.Options) (any, error) {
		return map[string]any{"message": map[string]any{"content": "```json\n" + text + "\n```"}}, nil
	}
}

var alice = &auth.Claims{UserID: "alice", Role: auth.RoleUser}
var bob = &auth.Claims{UserID: "bob", Role: auth.RoleUser}

func hasNotification(c *classifications.Classification, kind notify.Kind, message string) bool {
	return slices.ContainsFunc(c.Notifications, func(n notify.Notification) bool {
		return n.Kind == kind && n.Message == message
	})
}

func TestClassifyAuthenticatedSuccess(t *testing.T) {
	f := newFixture(respond(bottleJSON))

	c, err := f.sys.Classify(context.Background(), alice, classifications.ClassifyCommand{Image: pngURI})
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}

	if c.State != workflow.StateSuccess {
		t.Fatalf("state = %q, want success", c.State)
	}
	if c.Accuracy == nil || *c.Accuracy != 1.0 {
		t.Errorf("accuracy = %v, want 1.0", c.Accuracy)
	}
	if !c.Persistence.Persisted || c.Persistence.ID == nil {
		t.Errorf("persistence = %+v, want persisted with id", c.Persistence)
	}
	if !hasNotification(c, notify.KindSuccess, "Hasil klasifikasi disimpan!") {
		t.Errorf("notifications = %+v", c.Notifications)
	}

	keys := f.blobs.Keys()
	if len(keys) != 1 || !strings.HasPrefix(keys[0], "classifications/alice/") || !strings.HasSuffix(keys[0], ".png") {
		t.Fatalf("blob keys = %v", keys)
	}
	if c.ImageURL != f.blobs.URL(keys[0]) {
		t.Errorf("image url = %q, want %q", c.ImageURL, f.blobs.URL(keys[0]))
	}

	stored := f.store.items[0]
	if stored.UserID != "alice" || stored.PromptVersion != "default:id" || stored.ImageKey != keys[0] {
		t.Errorf("stored = %+v", stored)
	}
}

func TestClassifySkipsPersistence(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		user       *auth.Claims
		wantState  workflow.State
		wantReason string
	}{
		{"unauthenticated success", bottleJSON, nil, workflow.StateSuccess, classifications.ReasonUnauthenticated},
		{"authenticated no detection", noWaste, alice, workflow.StateNoDetection, classifications.ReasonNoDetection},
		{"anonymous no detection", noWaste, nil, workflow.StateNoDetection, classifications.ReasonNoDetection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(respond(tt.response))

			c, err := f.sys.Classify(context.Background(), tt.user, classifications.ClassifyCommand{Image: pngURI})
			if err != nil {
				t.Fatalf("Classify error: %v", err)
			}
			if c.State != tt.wantState {
				t.Errorf("state = %q, want %q", c.State, tt.wantState)
			}
			if c.Persistence.Persisted || c.Persistence.Reason != tt.wantReason {
				t.Errorf("persistence = %+v, want reason %q", c.Persistence, tt.wantReason)
			}
			if f.store.calls() != 0 || len(f.blobs.Keys()) != 0 {
				t.Errorf("store inserts = %d, blobs = %v, want none", f.store.calls(), f.blobs.Keys())
			}
			if len(c.Notifications) == 0 {
				t.Error("terminal state produced no notification")
			}
		})
	}
}

func TestClassifyMalformedDoesNotPersist(t *testing.T) {
	f := newFixture(func(context.Context, string, string, ai.Options) (any, error) {
		return "Sorry, I can't process this.", nil
	})

	_, err := f.sys.Classify(context.Background(), alice, classifications.ClassifyCommand{Image: pngURI})
	if !errors.Is(err, workflow.ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
	if f.store.calls() != 0 {
		t.Errorf("store inserts = %d, want 0", f.store.calls())
	}
}

func TestClassifyPersistenceFailureKeepsResult(t *testing.T) {
	t.Run("upload fails", func(t *testing.T) {
		f := newFixture(respond(bottleJSON))
		f.blobs.UploadErr = errors.New("storage offline")

		c, err := f.sys.Classify(context.Background(), alice, classifications.ClassifyCommand{Image: pngURI})
		if err != nil {
			t.Fatalf("Classify error: %v", err)
		}
		if c.Analysis == nil || c.Persistence.Reason != classifications.ReasonError {
			t.Errorf("result = %+v", c)
		}
		if f.store.calls() != 0 {
			t.Errorf("store inserts = %d, want 0", f.store.calls())
		}
		if !hasNotification(c, notify.KindError, "Gagal menyimpan hasil klasifikasi") {
			t.Errorf("notifications = %+v", c.Notifications)
		}
	})

	t.Run("insert fails", func(t *testing.T) {
		f := newFixture(respond(bottleJSON))
		f.store.insertErr = errors.New("connection reset")

		c, err := f.sys.Classify(context.Background(), alice, classifications.ClassifyCommand{Image: pngURI})
		if err != nil {
			t.Fatalf("Classify error: %v", err)
		}
		if c.Analysis == nil || c.Persistence.Reason != classifications.ReasonError {
			t.Errorf("result = %+v", c)
		}
		if keys := f.blobs.Keys(); len(keys) != 0 {
			t.Errorf("orphaned blobs = %v", keys)
		}
	})
}

func TestClassifyCancelledBeforePersist(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newFixture(func(context.Context, string, string, ai.Options) (any, error) {
		cancel()
		return bottleJSON, nil
	})

	c, err := f.sys.Classify(ctx, alice, classifications.ClassifyCommand{Image: pngURI})
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if c.Persistence.Reason != classifications.ReasonCancelled {
		t.Errorf("persistence = %+v, want cancelled", c.Persistence)
	}
	if f.store.calls() != 0 || len(f.blobs.Keys()) != 0 {
		t.Error("abandoned attempt wrote history")
	}
}

func TestClassifyInFlightGuard(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	f := newFixture(func(context.Context, string, string, ai.Options) (any, error) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}
		return bottleJSON, nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := f.sys.Classify(context.Background(), alice, classifications.ClassifyCommand{Image: pngURI})
		done <- err
	}()
	<-entered

	if _, err := f.sys.Classify(context.Background(), alice, classifications.ClassifyCommand{Image: pngURI}); !errors.Is(err, classifications.ErrInFlight) {
		t.Errorf("second attempt err = %v, want ErrInFlight", err)
	}
	notes := f.notes.Notifications()
	if len(notes) == 0 || notes[len(notes)-1].Kind != notify.KindError {
		t.Errorf("rejected attempt notifications = %+v, want a trailing error", notes)
	}
	if _, err := f.sys.Classify(context.Background(), bob, classifications.ClassifyCommand{Image: pngURI}); err != nil {
		t.Errorf("other user blocked: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first attempt: %v", err)
	}

	if _, err := f.sys.Classify(context.Background(), alice, classifications.ClassifyCommand{Image: pngURI}); err != nil {
		t.Errorf("guard not released after completion: %v", err)
	}
}

func TestHistoryCacheAndOwnership(t *testing.T) {
	f := newFixture(respond(bottleJSON))
	ctx := context.Background()

	first, _ := f.sys.Classify(ctx, alice, classifications.ClassifyCommand{Image: pngURI})
	f.sys.Classify(ctx, alice, classifications.ClassifyCommand{Image: pngURI})

	items, err := f.sys.History(ctx, "alice", "")
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(items) != 2 || items[0].ID != 2 {
		t.Fatalf("history = %+v, want two items newest first", items)
	}

	if _, err := f.sys.History(ctx, "alice", "botol"); err != nil {
		t.Fatal(err)
	}
	if f.store.lists != 1 {
		t.Errorf("store lists = %d, want cached listing", f.store.lists)
	}

	if filtered, _ := f.sys.History(ctx, "alice", "kaca"); len(filtered) != 0 {
		t.Errorf("search kaca = %d items, want 0", len(filtered))
	}

	id := *first.Persistence.ID

	if err := f.sys.Delete(ctx, "bob", id); !errors.Is(err, classifications.ErrNotFound) {
		t.Errorf("bob delete err = %v, want ErrNotFound", err)
	}
	if _, err := f.sys.Find(ctx, "bob", id); !errors.Is(err, classifications.ErrNotFound) {
		t.Errorf("bob find err = %v, want ErrNotFound", err)
	}

	if err := f.sys.Delete(ctx, "alice", id); err != nil {
		t.Fatalf("alice delete: %v", err)
	}

	items, _ = f.sys.History(ctx, "alice", "")
	if len(items) != 1 || items[0].ID == id {
		t.Errorf("history after delete = %+v", items)
	}
	if f.store.lists != 2 {
		t.Errorf("store lists = %d, want cache invalidated after delete", f.store.lists)
	}
	if len(f.blobs.Keys()) != 1 {
		t.Errorf("blobs after delete = %v, want one left", f.blobs.Keys())
	}
}

// blockingStore signals once ListByUser has read its rows, then holds the
// result until release is closed.
type blockingStore struct {
	*fakeStore
	read    chan struct{}
	release chan struct{}
}

func (s *blockingStore) ListByUser(ctx context.Context, userID string) ([]classifications.HistoryItem, error) {
	items, err := s.fakeStore.ListByUser(ctx, userID)
	s.read <- struct{}{}
	<-s.release
	return items, err
}

func TestHistoryDeleteDuringListingIsNotCached(t *testing.T) {
	store := &blockingStore{
		fakeStore: &fakeStore{
			items:  []classifications.HistoryItem{{ID: 1, UserID: "alice"}},
			nextID: 1,
		},
		read:    make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	sys := classifications.New(store, testRuntime(respond(bottleJSON)), storagetest.New(), notify.Discard, time.Minute, 0, discard)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := sys.History(ctx, "alice", "")
		done <- err
	}()

	<-store.read
	if err := sys.Delete(ctx, "alice", 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	close(store.release)
	if err := <-done; err != nil {
		t.Fatalf("History error: %v", err)
	}

	items, err := sys.History(ctx, "alice", "")
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("history after delete = %+v, want empty", items)
	}
}
