package mcpserver

// FrontmatterContract describes the frontmatter every post carries and how
// it turns into pages.
const FrontmatterContract = `# Post Frontmatter Contract

Every post is a Markdown file under the content root with a YAML
frontmatter block.

## Structure

` + "```" + `markdown
---
title: Go Maps Explained          # REQUIRED: page title and card heading
date: 2021-03-02                  # REQUIRED: YYYY-MM-DD or RFC 3339; orders every listing
category: Go                      # topic page at /go
tags:                             # one page per tag at /tag/<tag>
  - Node.js
  - data structures
description: Short summary        # OPTIONAL: falls back to the excerpt
templateKey: article              # article (default) or video-post
videoID: dQw4w9WgXcQ              # YouTube id, video posts only
featuredImage: /img/go-maps.png   # OPTIONAL: card and social image
featured: false                   # OPTIONAL: home page featured list
trending: false                   # OPTIONAL: home page trending list
---

## First section

Body text in standard Markdown.
` + "```" + `

## Rules

1. **Paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes. The slug is the path
   without the extension and without the leading ` + "`" + `tutorials` + "`" + ` folder:
   ` + "`" + `tutorials/go-maps.md` + "`" + ` and ` + "`" + `tutorials/go-maps/index.md` + "`" + ` both become ` + "`" + `/go-maps/` + "`" + `.
2. **Slugs are unique.** Two files with the same slug fail the build.
3. **Video posts** are served under ` + "`" + `/video/<slug>/` + "`" + `.
4. **Level-2 headings** (` + "`" + `##` + "`" + `) form the table of contents and get the ids
   ` + "`" + `header-1` + "`" + `, ` + "`" + `header-2` + "`" + `, ...
5. **Categories** are matched exactly. A category that lower-cases to a fixed page
   (` + "`" + `tags` + "`" + `, ` + "`" + `topics` + "`" + `, ` + "`" + `about` + "`" + `, ` + "`" + `archive` + "`" + `, ` + "`" + `videos` + "`" + `) fails the build.
6. **Tags** keep their spelling for display. Their page path is lower-cased with
   spaces and slashes turned into hyphens.
`
