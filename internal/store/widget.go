package store

import (
	"context"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/models"
	"github.com/vglug/intake-backend/pkg/logger"
)

const (
	widgetCollection  = "dashboard_widgets"
	counterCollection = "counters"
	widgetCounterDoc  = "widgets"
)

type widgetStore struct {
	client *firestore.Client
}

func NewWidgetStore(client *firestore.Client) *widgetStore {
	return &widgetStore{client: client}
}

func (s *widgetStore) collection() *firestore.CollectionRef {
	return s.client.Collection(widgetCollection)
}

func widgetDocID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// NextID allocates the next widget ID from the counter document. IDs
// are small sequential integers so the frontend can address widgets
// with stable numeric routes.
func (s *widgetStore) NextID(ctx context.Context) (int64, error) {
	ref := s.client.Collection(counterCollection).Doc(widgetCounterDoc)
	var next int64
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			next = 1
		case err != nil:
			return err
		default:
			n, err := doc.DataAt("next")
			if err != nil {
				return err
			}
			next = n.(int64)
		}
		return tx.Set(ref, map[string]any{"next": next + 1})
	})
	if err != nil {
		return 0, errs.NewDatabaseError("create", "failed to allocate widget id", err)
	}
	return next, nil
}

func (s *widgetStore) Create(ctx context.Context, w *models.Widget) error {
	now := time.Now()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
	_, err := s.collection().Doc(widgetDocID(w.ID)).Set(ctx, w)
	if err != nil {
		return errs.NewDatabaseError("create", "failed to create widget", err)
	}
	return nil
}

func (s *widgetStore) Get(ctx context.Context, id int64) (*models.Widget, error) {
	doc, err := s.collection().Doc(widgetDocID(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("widget not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get widget", err)
	}
	var w models.Widget
	if err := doc.DataTo(&w); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse widget data", err)
	}
	return &w, nil
}

// List returns widgets ordered by position. When activeOnly is set,
// hidden widgets are filtered out.
func (s *widgetStore) List(ctx context.Context, activeOnly bool) ([]*models.Widget, error) {
	q := s.collection().Query
	if activeOnly {
		q = q.Where("isActive", "==", true)
	}
	docs, err := q.OrderBy("position", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list widgets", err)
	}
	widgets := make([]*models.Widget, 0, len(docs))
	for _, d := range docs {
		var w models.Widget
		if err := d.DataTo(&w); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse widget data", err)
		}
		widgets = append(widgets, &w)
	}
	return widgets, nil
}

func (s *widgetStore) Update(ctx context.Context, w *models.Widget) error {
	w.UpdatedAt = time.Now()
	_, err := s.collection().Doc(widgetDocID(w.ID)).Set(ctx, w)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update widget", err)
	}
	return nil
}

func (s *widgetStore) Delete(ctx context.Context, id int64) error {
	_, err := s.collection().Doc(widgetDocID(id)).Delete(ctx)
	if err != nil {
		return errs.NewDatabaseError("delete", "failed to delete widget", err)
	}
	return nil
}

// MaxPosition returns the highest position among saved widgets, 0 when
// there are none. New widgets append after it.
func (s *widgetStore) MaxPosition(ctx context.Context) (int, error) {
	docs, err := s.collection().OrderBy("position", firestore.Desc).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return 0, errs.NewDatabaseError("read", "failed to read widget positions", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}
	var w models.Widget
	if err := docs[0].DataTo(&w); err != nil {
		return 0, errs.NewDatabaseError("read", "failed to parse widget data", err)
	}
	return w.Position, nil
}

type bulkPositionJob struct {
	widgetID int64
	job      *firestore.BulkWriterJob
}

func (s *widgetStore) BulkUpdatePositions(ctx context.Context, positions map[int64]int) error {
	log := logger.FromContext(ctx)
	bw := s.client.BulkWriter(ctx)
	coll := s.collection()
	now := time.Now()

	jobs := make([]bulkPositionJob, 0, len(positions))
	for id, pos := range positions {
		ref := coll.Doc(widgetDocID(id))
		j, err := bw.Update(ref, []firestore.Update{
			{Path: "position", Value: pos},
			{Path: "updatedAt", Value: now},
		})
		if err != nil {
			return errs.NewDatabaseError("update", "failed to schedule position update", err)
		}
		jobs = append(jobs, bulkPositionJob{widgetID: id, job: j})
	}
	bw.End()

	for _, entry := range jobs {
		if _, err := entry.job.Results(); err != nil {
			log.Error("failed to update widget position", "widget_id", entry.widgetID, "error", err)
			return errs.NewDatabaseError("update", "failed to update widget position", err)
		}
	}
	return nil
}
