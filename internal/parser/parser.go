// Package parser splits content files into typed frontmatter and a markdown body.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/starford/codeboost/internal/models"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Result holds the output of parsing a content file.
type Result struct {
	Frontmatter    models.Frontmatter
	Body           string
	HasFrontmatter bool
}

type envelope struct {
	Title         string   `yaml:"title"`
	Date          string   `yaml:"date"`
	Description   string   `yaml:"description"`
	Category      string   `yaml:"category"`
	Tags          []string `yaml:"tags"`
	TemplateKey   string   `yaml:"templateKey"`
	VideoID       string   `yaml:"videoID"`
	FeaturedImage string   `yaml:"featuredImage"`
	Featured      bool     `yaml:"featured"`
	Trending      bool     `yaml:"trending"`
}

// ErrInvalidFrontmatter is returned when a file opens a frontmatter block
// that does not decode.
var ErrInvalidFrontmatter = errors.New("parser: invalid frontmatter")

// Parse extracts frontmatter and body from raw markdown bytes. A file
// without frontmatter is treated as body only; a frontmatter block that does
// not decode, or an unparseable date, is an error.
func Parse(data []byte) (*Result, error) {
	var env envelope
	body, err := frontmatter.Parse(bytes.NewReader(data), &env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
	}

	date, err := parseDate(env.Date)
	if err != nil {
		return nil, err
	}

	fm := models.Frontmatter{
		Title:         strings.TrimSpace(env.Title),
		Date:          date,
		Description:   strings.TrimSpace(env.Description),
		Category:      strings.TrimSpace(env.Category),
		Tags:          cleanTags(env.Tags),
		TemplateKey:   models.ParseTemplateKind(env.TemplateKey),
		VideoID:       strings.TrimSpace(env.VideoID),
		FeaturedImage: strings.TrimSpace(env.FeaturedImage),
		Featured:      env.Featured,
		Trending:      env.Trending,
	}
	if fm.Title == "" {
		fm.Title = headingTitle(string(body))
	}

	return &Result{
		Frontmatter:    fm,
		Body:           strings.TrimLeft(string(body), "\n\r"),
		HasFrontmatter: len(body) != len(data),
	}, nil
}

// TitleFromFilename turns a file name like "go-maps_intro.md" into "Go Maps Intro".
func TitleFromFilename(name string) string {
	stem := strings.TrimSuffix(path.Base(strings.ReplaceAll(name, "\\", "/")), path.Ext(name))
	if stem == "index" {
		stem = path.Base(path.Dir(strings.ReplaceAll(name, "\\", "/")))
	}
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	return cases.Title(language.English).String(stem)
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parser: unrecognised date %q", raw)
}

// cleanTags trims tags and drops empties and duplicates, keeping order.
func cleanTags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// headingTitle returns the text of the first H1 heading, or "".
func headingTitle(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
