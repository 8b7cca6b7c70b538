// Package taxonomy groups content nodes by category and by tag.
package taxonomy

import "github.com/starford/codeboost/internal/models"

// Taxonomy holds the category and tag groups of one build, each in the order
// its value was first encountered.
type Taxonomy struct {
	Categories []*models.TaxonomyGroup
	Tags       []*models.TaxonomyGroup

	byCategory map[string]*models.TaxonomyGroup
	byTag      map[string]*models.TaxonomyGroup
}

// Group builds the taxonomy of nodes. nodes is expected in date-descending
// order; members keep that order. A node joins exactly one category group
// (none when its category is empty) and one group per distinct tag.
func Group(nodes []*models.ContentNode) *Taxonomy {
	t := &Taxonomy{
		byCategory: make(map[string]*models.TaxonomyGroup),
		byTag:      make(map[string]*models.TaxonomyGroup),
	}
	for _, n := range nodes {
		if c := n.Frontmatter.Category; c != "" {
			t.Categories = add(t.Categories, t.byCategory, c, n)
		}
		seen := make(map[string]struct{}, len(n.Frontmatter.Tags))
		for _, tag := range n.Frontmatter.Tags {
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			t.Tags = add(t.Tags, t.byTag, tag, n)
		}
	}
	return t
}

func add(groups []*models.TaxonomyGroup, index map[string]*models.TaxonomyGroup, value string, n *models.ContentNode) []*models.TaxonomyGroup {
	g, ok := index[value]
	if !ok {
		g = &models.TaxonomyGroup{FieldValue: value}
		index[value] = g
		groups = append(groups, g)
	}
	g.Members = append(g.Members, n)
	return groups
}

// Category returns the group for a category value.
func (t *Taxonomy) Category(value string) (*models.TaxonomyGroup, bool) {
	g, ok := t.byCategory[value]
	return g, ok
}

// Tag returns the group for a tag value.
func (t *Taxonomy) Tag(value string) (*models.TaxonomyGroup, bool) {
	g, ok := t.byTag[value]
	return g, ok
}

// TopTags returns at most n tag groups in encounter order.
func (t *Taxonomy) TopTags(n int) []*models.TaxonomyGroup {
	if n < 0 || n > len(t.Tags) {
		n = len(t.Tags)
	}
	return t.Tags[:n]
}
