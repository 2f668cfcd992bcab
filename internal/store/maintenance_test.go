package store

import (
	"context"
	"testing"

	"github.com/rcliao/course-media/internal/model"
)

func TestMigratePageIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	put := func(id string, typ model.MediaType, page string) {
		t.Helper()
		if _, err := s.Put(ctx, PutParams{ProjectID: "p", MediaID: id, Metadata: model.Metadata{Type: typ, PageID: page}}); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}
	put("audio-0", model.MediaAudio, "welcome")
	put("audio-1", model.MediaAudio, "topic-0") // objectives media marked as topic-0
	put("caption-3", model.MediaCaption, "topic-0")
	put("image-1", model.MediaImage, "topic-5")

	fixes, err := s.MigratePageIDs(ctx, "p")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(fixes) != 2 {
		t.Fatalf("expected 2 fixes, got %+v", fixes)
	}
	if fixes[0] != (PageIDFix{MediaID: "audio-1", From: "topic-0", To: "objectives"}) {
		t.Errorf("unexpected first fix %+v", fixes[0])
	}
	if fixes[1] != (PageIDFix{MediaID: "caption-3", From: "topic-0", To: "topic-1"}) {
		t.Errorf("unexpected second fix %+v", fixes[1])
	}

	got, _ := s.Get(ctx, "p", "audio-1")
	if got.Metadata.PageID != "objectives" {
		t.Errorf("expected objectives, got %q", got.Metadata.PageID)
	}
	img, _ := s.Get(ctx, "p", "image-1")
	if img.Metadata.PageID != "topic-5" {
		t.Errorf("image page id should be untouched, got %q", img.Metadata.PageID)
	}

	again, _ := s.MigratePageIDs(ctx, "p")
	if len(again) != 0 {
		t.Errorf("expected migration to be idempotent, got %+v", again)
	}
}

func TestPlanPageIDsDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Put(ctx, PutParams{ProjectID: "p", MediaID: "audio-2", Metadata: model.Metadata{Type: model.MediaAudio, PageID: "topic-3"}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	plan, err := s.PlanPageIDs(ctx, "p")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(plan) != 1 || plan[0] != (PageIDFix{MediaID: "audio-2", From: "topic-3", To: "topic-0"}) {
		t.Fatalf("unexpected plan %+v", plan)
	}

	got, _ := s.Get(ctx, "p", "audio-2")
	if got.Metadata.PageID != "topic-3" {
		t.Errorf("plan must not write, page id is %q", got.Metadata.PageID)
	}

	fixes, err := s.MigratePageIDs(ctx, "p")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(fixes) != 1 || fixes[0] != plan[0] {
		t.Errorf("migration should apply the plan, got %+v", fixes)
	}
	if empty, _ := s.PlanPageIDs(ctx, "p"); len(empty) != 0 {
		t.Errorf("expected empty plan after migration, got %+v", empty)
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)

	src.Put(ctx, PutParams{ProjectID: "p", MediaID: "audio-0", Data: []byte("one"), Metadata: model.Metadata{Type: model.MediaAudio}})
	src.Put(ctx, PutParams{ProjectID: "p", MediaID: "image-0", Data: []byte("two"), Metadata: model.Metadata{Type: model.MediaImage}})
	src.Put(ctx, PutParams{ProjectID: "other", MediaID: "image-0", Data: []byte("x"), Metadata: model.Metadata{Type: model.MediaImage}})

	exported, err := src.ExportAll(ctx, "p")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(exported) != 2 {
		t.Fatalf("expected 2 exported, got %d", len(exported))
	}

	dst := newTestStore(t)
	n, err := dst.Import(ctx, "copy", exported)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 imported, got %d", n)
	}
	got, err := dst.Get(ctx, "copy", "image-0")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.Data) != "two" {
		t.Errorf("expected payload two, got %q", got.Data)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Put(ctx, PutParams{ProjectID: "a", MediaID: "audio-0", Data: []byte("1234"), Metadata: model.Metadata{Type: model.MediaAudio}})
	s.Put(ctx, PutParams{ProjectID: "a", MediaID: "image-0", Data: []byte("12"), Metadata: model.Metadata{Type: model.MediaImage}})
	s.Put(ctx, PutParams{ProjectID: "b", MediaID: "image-0", Data: []byte("1"), Metadata: model.Metadata{Type: model.MediaImage}})

	st, err := s.Stats(ctx, "")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalAssets != 3 || st.TotalBytes != 7 {
		t.Errorf("expected 3 assets / 7 bytes, got %d / %d", st.TotalAssets, st.TotalBytes)
	}
	if len(st.Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(st.Projects))
	}
	a := st.Projects[0]
	if a.ProjectID != "a" || a.Count != 2 || a.Bytes != 6 || a.ByType["audio"] != 1 {
		t.Errorf("unexpected stats for a: %+v", a)
	}
}
