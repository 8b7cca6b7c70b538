// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the blog content to LLM tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/codeboost/internal/apperr"
	"github.com/starford/codeboost/internal/contentservice"
	"github.com/starford/codeboost/internal/index"
	"github.com/starford/codeboost/internal/models"
	"github.com/starford/codeboost/internal/site"
)

const (
	contractURI = "codeboost://frontmatter"
	listLimit   = 200
)

// PageLister reports the pages a build would write.
type PageLister interface {
	Build(ctx context.Context, opts site.BuildOptions) (*site.BuildResult, error)
}

// Server wraps the MCP server with the content tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *contentservice.Service
	pages PageLister
}

// New creates a new MCP server with all tools registered. pages may be nil,
// in which case list_pages is not offered.
func New(svc *contentservice.Service, pages PageLister) *Server {
	s := &Server{svc: svc, pages: pages}

	s.mcp = server.NewMCPServer(
		"codeboost",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_content",
		mcp.WithDescription("Search posts by title, category, tags and description."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchContent)

	s.mcp.AddTool(mcp.NewTool("read_content",
		mcp.WithDescription("Read the raw Markdown source of a content file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the content root (e.g. tutorials/go-maps.md)")),
	), s.readContent)

	s.mcp.AddTool(mcp.NewTool("get_post",
		mcp.WithDescription("Get a post by slug with its frontmatter, table of contents and URL."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug (e.g. /go-maps/)")),
	), s.getPost)

	s.mcp.AddTool(mcp.NewTool("create_content",
		mcp.WithDescription("Create a new post at the specified path. "+
			"Content MUST carry the frontmatter described by get_frontmatter_contract "+
			"or the "+contractURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path for the new file (must end with .md)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content with YAML frontmatter")),
	), s.createContent)

	s.mcp.AddTool(mcp.NewTool("list_content",
		mcp.WithDescription("List posts newest first, optionally filtered by category, tag or kind."),
		mcp.WithString("category", mcp.Description("Exact category value")),
		mcp.WithString("tag", mcp.Description("Exact tag value")),
		mcp.WithString("kind", mcp.Description("article or video")),
	), s.listContent)

	s.mcp.AddTool(mcp.NewTool("list_taxonomy",
		mcp.WithDescription("List categories and tags with their page paths and post counts."),
	), s.listTaxonomy)

	if pages != nil {
		s.mcp.AddTool(mcp.NewTool("list_pages",
			mcp.WithDescription("Dry-run the site build and list every output file it would write."),
		), s.listPages)
	}

	s.mcp.AddTool(mcp.NewTool("get_frontmatter_contract",
		mcp.WithDescription("Returns the post frontmatter contract. "+
			"Call this before creating posts to ensure correct structure."),
	), s.getFrontmatterContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Frontmatter Contract",
			mcp.WithResourceDescription("Frontmatter fields every post must carry."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no results"), nil
	}
	return jsonResult(results)
}

func (s *Server) readContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.GetByPath(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(d.Content), nil
}

func (s *Server) getPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.GetBySlug(ctx, slug)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
	}
	d.Content = ""
	return jsonResult(d)
}

func (s *Server) createContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, err := s.svc.CreateContent(ctx, path, []byte(content))
	switch {
	case errors.Is(err, apperr.ErrAlreadyExists):
		return mcp.NewToolResultError(fmt.Sprintf("content already exists: %s", path)), nil
	case err != nil:
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s -> %s", path, d.URL)), nil
}

func (s *Server) listContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := index.ContentQuery{Limit: listLimit}
	if v, err := req.RequireString("category"); err == nil {
		q.Category = v
	}
	if v, err := req.RequireString("tag"); err == nil {
		q.Tag = v
	}
	if v, err := req.RequireString("kind"); err == nil && v != "" {
		q.Kind = models.ParseTemplateKind(v)
	}

	items, _, err := s.svc.ListContent(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, it.Path+"\t"+it.URL+"\t"+it.Title)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) listTaxonomy(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := s.svc.Taxonomy(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(view)
}

func (s *Server) listPages(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.pages.Build(ctx, site.BuildOptions{DryRun: true})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strings.Join(res.Paths, "\n")), nil
}

func (s *Server) getFrontmatterContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FrontmatterContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     FrontmatterContract,
		},
	}, nil
}
