package contentservice

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/codeboost/internal/apperr"
	"github.com/starford/codeboost/internal/checksum"
	"github.com/starford/codeboost/internal/content"
	"github.com/starford/codeboost/internal/index"
	"github.com/starford/codeboost/internal/testutil"
)

func newService(t *testing.T) (*Service, string) {
	t.Helper()
	dir, store := testutil.TestContentRoot(t)
	db := testutil.TestDB(t)
	return NewService(store, db, content.NewLoader(10, nil), 1000), dir
}

func TestCreateAndGet(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	body := testutil.Post("Go Maps", "2021-03-02", "Go", "go", "maps")
	created, err := svc.CreateContent(ctx, "tutorials/go-maps.md", []byte(body))
	if err != nil {
		t.Fatalf("CreateContent: %v", err)
	}
	if created.Slug != "/go-maps/" {
		t.Errorf("slug = %q, want %q", created.Slug, "/go-maps/")
	}

	got, err := svc.GetBySlug(ctx, "go-maps")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.Frontmatter.Title != "Go Maps" || got.Content != body {
		t.Errorf("got %+v", got)
	}
	if len(got.TOC) != 1 || got.TOC[0].ID != "header-1" {
		t.Errorf("toc = %+v", got.TOC)
	}

	if _, err := svc.CreateContent(ctx, "tutorials/go-maps.md", []byte(body)); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate create err = %v, want ErrAlreadyExists", err)
	}
}

func TestCreate_InvalidInput(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.CreateContent(ctx, "tutorials/x.txt", []byte("# x")); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.CreateContent(ctx, "tutorials/x.md", []byte("---\ndate: nope\n---\n")); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.CreateContent(ctx, "tutorials/y.md", []byte("---\ntitle: [unclosed\ntags: {\n---\nbody\n")); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("malformed frontmatter err = %v, want ErrInvalidInput", err)
	}
}

func TestUpdate_Conflict(t *testing.T) {
	svc, dir := newService(t)
	ctx := context.Background()
	original := testutil.Post("A", "2021-03-01", "Go")
	testutil.WriteFile(t, dir, "tutorials/a.md", original)

	if _, err := svc.UpdateContent(ctx, "tutorials/a.md", []byte(original), "stale"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}

	updated := testutil.Post("A2", "2021-03-01", "Go")
	got, err := svc.UpdateContent(ctx, "tutorials/a.md", []byte(updated), checksum.Sum([]byte(original)))
	if err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}
	if got.Frontmatter.Title != "A2" {
		t.Errorf("title = %q, want A2", got.Frontmatter.Title)
	}

	if _, err := svc.UpdateContent(ctx, "tutorials/missing.md", []byte(updated), ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.CreateContent(ctx, "tutorials/d.md", []byte(testutil.Post("D", "2021-03-01", "Go"))); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteContent(ctx, "tutorials/d.md"); err != nil {
		t.Fatalf("DeleteContent: %v", err)
	}
	if _, err := svc.GetBySlug(ctx, "/d/"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteContent(ctx, "tutorials/d.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestMove(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for _, p := range []string{"tutorials/old.md", "tutorials/taken.md"} {
		if _, err := svc.CreateContent(ctx, p, []byte(testutil.Post("Old", "2021-03-01", "Go"))); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := svc.MoveContent(ctx, "tutorials/old.md", "tutorials/taken.md"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("move onto existing err = %v, want ErrAlreadyExists", err)
	}
	if _, err := svc.MoveContent(ctx, "tutorials/missing.md", "tutorials/x.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("move missing err = %v, want ErrNotFound", err)
	}
	if _, err := svc.MoveContent(ctx, "tutorials/old.md", "tutorials/new.txt"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("move to non-markdown err = %v, want ErrInvalidInput", err)
	}

	got, err := svc.MoveContent(ctx, "tutorials/old.md", "tutorials/new.md")
	if err != nil {
		t.Fatalf("MoveContent: %v", err)
	}
	if got.Slug != "/new/" || got.Path != "tutorials/new.md" {
		t.Errorf("moved = %s %s", got.Path, got.Slug)
	}
	if _, err := svc.GetBySlug(ctx, "old"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("old slug err = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetByPath(ctx, "tutorials/new.md"); err != nil {
		t.Errorf("GetByPath new: %v", err)
	}
}

func TestListAndTaxonomy(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	files := map[string]string{
		"tutorials/a.md": testutil.Post("A", "2021-03-01", "Go", "maps"),
		"tutorials/b.md": testutil.Post("B", "2021-03-02", "React", "Node.js"),
		"tutorials/c.md": testutil.Post("C", "2021-03-03", "Go", "maps", "CSS Grid"),
	}
	for p, body := range files {
		if _, err := svc.CreateContent(ctx, p, []byte(body)); err != nil {
			t.Fatal(err)
		}
	}

	items, total, err := svc.ListContent(ctx, index.ContentQuery{Category: "Go", Limit: 1})
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if total != 2 || len(items) != 1 || items[0].Slug != "/c/" {
		t.Errorf("items = %+v total = %d", items, total)
	}

	tx, err := svc.Taxonomy(ctx)
	if err != nil {
		t.Fatalf("Taxonomy: %v", err)
	}
	if len(tx.Categories) != 2 || tx.Categories[0].Name != "Go" || tx.Categories[0].Count != 2 {
		t.Errorf("categories = %+v", tx.Categories)
	}
	wantTags := []string{"maps", "CSS Grid", "Node.js"}
	if len(tx.Tags) != len(wantTags) {
		t.Fatalf("tags = %+v", tx.Tags)
	}
	for i, w := range wantTags {
		if tx.Tags[i].Name != w {
			t.Errorf("tag[%d] = %q, want %q", i, tx.Tags[i].Name, w)
		}
	}
	if tx.Tags[1].Path != "/tag/css-grid" {
		t.Errorf("tag path = %q", tx.Tags[1].Path)
	}
}
