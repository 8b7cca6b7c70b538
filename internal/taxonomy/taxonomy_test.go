package taxonomy

import (
	"testing"

	"github.com/starford/codeboost/internal/models"
)

func post(slug, category string, tags ...string) *models.ContentNode {
	return &models.ContentNode{
		Slug:        slug,
		Frontmatter: models.Frontmatter{Title: slug, Category: category, Tags: tags},
	}
}

func values(groups []*models.TaxonomyGroup) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.FieldValue
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGroup_FirstEncounterOrder(t *testing.T) {
	nodes := []*models.ContentNode{
		post("/c/", "React", "hooks", "state"),
		post("/b/", "Go", "maps"),
		post("/a/", "React", "state", "Node.js"),
	}
	tx := Group(nodes)

	if got := values(tx.Categories); !equal(got, []string{"React", "Go"}) {
		t.Errorf("categories = %v", got)
	}
	if got := values(tx.Tags); !equal(got, []string{"hooks", "state", "maps", "Node.js"}) {
		t.Errorf("tags = %v", got)
	}

	react, ok := tx.Category("React")
	if !ok || react.TotalCount() != 2 {
		t.Fatalf("React group = %+v", react)
	}
	if react.Members[0].Slug != "/c/" || react.Members[1].Slug != "/a/" {
		t.Error("members should keep input order")
	}
}

func TestGroup_MembersCarryGroupValue(t *testing.T) {
	nodes := []*models.ContentNode{
		post("/1/", "Go", "a", "b"),
		post("/2/", "Rust", "b"),
		post("/3/", "Go"),
		post("/4/", "", "a"),
	}
	tx := Group(nodes)

	for _, g := range tx.Categories {
		for _, m := range g.Members {
			if m.Frontmatter.Category != g.FieldValue {
				t.Errorf("category group %q has member %s with category %q", g.FieldValue, m.Slug, m.Frontmatter.Category)
			}
		}
	}
	for _, g := range tx.Tags {
		for _, m := range g.Members {
			if !m.Frontmatter.HasTag(g.FieldValue) {
				t.Errorf("tag group %q has member %s without that tag", g.FieldValue, m.Slug)
			}
		}
	}
}

func TestGroup_EmptyTagsStillCategorised(t *testing.T) {
	tx := Group([]*models.ContentNode{post("/solo/", "Go")})
	if len(tx.Tags) != 0 {
		t.Errorf("tags = %v, want none", values(tx.Tags))
	}
	g, ok := tx.Category("Go")
	if !ok || g.TotalCount() != 1 {
		t.Errorf("Go group = %+v", g)
	}
}

func TestGroup_EmptyCategorySkipped(t *testing.T) {
	tx := Group([]*models.ContentNode{post("/x/", "", "go")})
	if len(tx.Categories) != 0 {
		t.Errorf("categories = %v, want none", values(tx.Categories))
	}
}

func TestGroup_DuplicateTagCountsOnce(t *testing.T) {
	tx := Group([]*models.ContentNode{post("/x/", "Go", "go", "go")})
	g, _ := tx.Tag("go")
	if g.TotalCount() != 1 {
		t.Errorf("count = %d, want 1", g.TotalCount())
	}
}

func TestTopTags(t *testing.T) {
	tx := Group([]*models.ContentNode{post("/x/", "Go", "a", "b", "c", "d", "e")})
	if got := values(tx.TopTags(4)); !equal(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("TopTags(4) = %v", got)
	}
	if got := tx.TopTags(10); len(got) != 5 {
		t.Errorf("TopTags(10) len = %d, want 5", len(got))
	}
}
