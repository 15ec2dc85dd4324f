package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"cloud.google.com/go/firestore"

	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/models"
)

func TestWidgetStoreWithEmulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("firestore client error: %v", err)
	}
	defer client.Close()

	store := NewWidgetStore(client)

	first, err := store.NextID(ctx)
	if err != nil {
		t.Fatalf("next id error: %v", err)
	}
	second, err := store.NextID(ctx)
	if err != nil {
		t.Fatalf("next id error: %v", err)
	}
	if second != first+1 {
		t.Fatalf("ids not sequential: %d then %d", first, second)
	}

	w := &models.Widget{
		ID:         first,
		Title:      "Applicants by gender",
		WidgetType: "pie",
		Position:   1,
		IsActive:   true,
		Config: models.WidgetConfig{
			DataSource: models.DataSource{BaseTable: "application", Joins: []string{"basic_info"}},
			Fields: []models.FieldRef{
				{Table: "basic_info", Column: "gender", Alias: "gender"},
				{Table: "application", Column: "id", Alias: "count", Aggregation: "COUNT"},
			},
			GroupBy: []string{"basic_info.gender"},
		},
	}
	if err := store.Create(ctx, w); err != nil {
		t.Fatalf("create error: %v", err)
	}

	got, err := store.Get(ctx, first)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Title != w.Title || len(got.Config.Fields) != 2 {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}

	max, err := store.MaxPosition(ctx)
	if err != nil {
		t.Fatalf("max position error: %v", err)
	}
	if max != 1 {
		t.Fatalf("max position = %d, want 1", max)
	}

	if err := store.BulkUpdatePositions(ctx, map[int64]int{first: 5}); err != nil {
		t.Fatalf("bulk positions error: %v", err)
	}
	got, err = store.Get(ctx, first)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Position != 5 {
		t.Fatalf("position = %d, want 5", got.Position)
	}

	if err := store.Delete(ctx, first); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	_, err = store.Get(ctx, first)
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("get after delete = %v, want NotFoundError", err)
	}
}
