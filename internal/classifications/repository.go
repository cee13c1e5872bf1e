package classifications

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sapulidi/sapulidi/internal/workflow"
	"github.com/sapulidi/sapulidi/pkg/auth"
	"github.com/sapulidi/sapulidi/pkg/notify"
	"github.com/sapulidi/sapulidi/pkg/storage"
)

type repo struct {
	store    Store
	rt       *workflow.Runtime
	blobs    storage.System
	notifier notify.Notifier
	history  *historyCache
	inFlight sync.Map
	logger   *slog.Logger
	maxBody  int64
}

// New creates the classification system. Every terminal outcome is sent
// to notifier; successful results are also stored in store with the
// image uploaded to blobs.
func New(
	store Store,
	rt *workflow.Runtime,
	blobs storage.System,
	notifier notify.Notifier,
	cacheTTL time.Duration,
	maxBody int64,
	logger *slog.Logger,
) System {
	return &repo{
		store:    store,
		rt:       rt,
		blobs:    blobs,
		notifier: notifier,
		history:  newHistoryCache(cacheTTL),
		logger:   logger.With("system", "classifications"),
		maxBody:  maxBody,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.maxBody)
}

func (r *repo) Classify(ctx context.Context, user *auth.Claims, cmd ClassifyCommand) (*Classification, error) {
	if user != nil {
		if _, busy := r.inFlight.LoadOrStore(user.UserID, struct{}{}); busy {
			r.notifier.Notify(ctx, notify.KindError, msgInFlight)
			return nil, ErrInFlight
		}
		defer r.inFlight.Delete(user.UserID)
	}

	collector := notify.NewCollector()
	notifier := notify.Multi(r.notifier, collector)

	result, err := workflow.Execute(ctx, r.rt, workflow.Request{Image: cmd.Image})
	if err != nil {
		notifier.Notify(ctx, notify.KindError, err.Error())
		return nil, err
	}

	c := &Classification{Result: *result}

	if result.State == workflow.StateNoDetection {
		c.Persistence = Persistence{Reason: ReasonNoDetection}
		notifier.Notify(ctx, notify.KindInfo, result.Message)
		c.Notifications = collector.Notifications()
		return c, nil
	}

	c.Accuracy = Accuracy(result.Analysis.WasteTypes)
	c.Persistence, c.ImageURL = r.persist(ctx, user, c, notifier)
	c.Notifications = collector.Notifications()
	return c, nil
}

// persist stores a successful result. Failures never fail the request.
func (r *repo) persist(ctx context.Context, user *auth.Claims, c *Classification, notifier notify.Notifier) (Persistence, string) {
	if user == nil {
		notifier.Notify(ctx, notify.KindInfo, msgSignInToSave)
		return Persistence{Reason: ReasonUnauthenticated}, ""
	}

	if ctx.Err() != nil {
		return r.abandoned(ctx, notifier, user.UserID), ""
	}

	image := c.Image
	key := fmt.Sprintf("classifications/%s/%s%s", user.UserID, uuid.New(), image.Extension())

	if err := r.blobs.Upload(ctx, key, bytes.NewReader(image.Data), image.MimeType); err != nil {
		if ctx.Err() != nil {
			return r.abandoned(ctx, notifier, user.UserID), ""
		}
		r.logger.Error("classification image upload failed", "user_id", user.UserID, "key", key, "error", err)
		notifier.Notify(ctx, notify.KindError, msgSaveFailed)
		return Persistence{Reason: ReasonError}, ""
	}

	url := r.blobs.URL(key)
	item, err := r.store.Insert(ctx, HistoryItem{
		UserID:        user.UserID,
		ImageURL:      url,
		ImageKey:      key,
		Result:        *c.Analysis,
		Accuracy:      c.Accuracy,
		PromptVersion: c.PromptVersion,
	})
	if err != nil {
		r.removeBlob(context.WithoutCancel(ctx), key)
		if ctx.Err() != nil {
			return r.abandoned(ctx, notifier, user.UserID), ""
		}
		r.logger.Error("classification history insert failed", "user_id", user.UserID, "error", err)
		notifier.Notify(ctx, notify.KindError, msgSaveFailed)
		return Persistence{Reason: ReasonError}, ""
	}

	r.history.invalidate(user.UserID)
	r.logger.Info("classification stored", "id", item.ID, "user_id", user.UserID, "accuracy", item.Accuracy)
	notifier.Notify(ctx, notify.KindSuccess, msgSaved)

	id := item.ID
	return Persistence{Persisted: true, ID: &id}, url
}

func (r *repo) abandoned(ctx context.Context, notifier notify.Notifier, userID string) Persistence {
	r.logger.Info("classification abandoned before persistence", "user_id", userID, "error", ctx.Err())
	notifier.Notify(ctx, notify.KindInfo, msgAttemptClosed)
	return Persistence{Reason: ReasonCancelled}
}

func (r *repo) History(ctx context.Context, userID, search string) ([]HistoryItem, error) {
	items, gen, ok := r.history.get(userID)
	if !ok {
		var err error
		items, err = r.store.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		r.history.set(userID, gen, items)
	}
	return Search(items, search), nil
}

func (r *repo) Find(ctx context.Context, userID string, id int64) (*HistoryItem, error) {
	item, err := r.store.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repo) Delete(ctx context.Context, userID string, id int64) error {
	item, err := r.store.DeleteByID(ctx, id, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Error("classification history delete failed", "id", id, "user_id", userID, "error", err)
		}
		r.notifier.Notify(ctx, notify.KindError, msgDeleteFailed)
		return err
	}

	r.history.invalidate(userID)
	if item.ImageKey != "" {
		r.removeBlob(ctx, item.ImageKey)
	}

	r.logger.Info("classification history deleted", "id", id, "user_id", userID)
	r.notifier.Notify(ctx, notify.KindSuccess, msgDeleted)
	return nil
}

func (r *repo) removeBlob(ctx context.Context, key string) {
	if err := r.blobs.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		r.logger.Warn("classification image cleanup failed", "key", key, "error", err)
	}
}
