package corpus

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	pdf "github.com/dslipak/pdf"
	"golang.org/x/net/html"
)

// Article is the text pulled out of one HTML page.
type Article struct {
	Title string
	Text  string
	Links []string
}

// SupportedFile reports whether the import tool knows how to read path.
func SupportedFile(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".md", ".txt", ".html", ".htm", ".pdf":
		return true
	}
	return false
}

// ParseHTML extracts the article title, visible text and same-host links.
// base may be nil for local files; links are then not collected.
func ParseHTML(htmlStr string, base *url.URL) (Article, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return Article{}, fmt.Errorf("parse html: %w", err)
	}

	var (
		text    strings.Builder
		title   string
		ogTitle string
		links   []string
		seen    = make(map[string]bool)
	)

	var walk func(*html.Node, bool)
	walk = func(n *html.Node, skip bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "head", "script", "style", "noscript", "nav", "footer", "header", "aside":
				skip = true
			case "title":
				if title == "" && n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				if attr(n, "property") == "og:title" {
					ogTitle = strings.TrimSpace(attr(n, "content"))
				}
			case "a":
				if base != nil {
					if link, ok := resolveLink(attr(n, "href"), base); ok && !seen[link] {
						seen[link] = true
						links = append(links, link)
					}
				}
			}
		}

		if n.Type == html.TextNode && !skip {
			if t := strings.TrimSpace(n.Data); len(t) > 1 {
				text.WriteString(t)
				text.WriteString("\n")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, skip)
		}
	}
	walk(doc, false)

	if ogTitle != "" {
		title = ogTitle
	}

	return Article{
		Title: title,
		Text:  sanitizeUTF8(strings.TrimSpace(text.String())),
		Links: links,
	}, nil
}

// ExtractPDF returns the plain text of a PDF file.
func ExtractPDF(p string) (string, error) {
	r, err := pdf.Open(p)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", p, err)
	}

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf %s: %w", p, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("read pdf %s: %w", p, err)
	}

	return sanitizeUTF8(strings.TrimSpace(buf.String())), nil
}

// FilenameToTitle turns "banjir-jakarta.md" into "banjir jakarta".
func FilenameToTitle(p string) string {
	base := filepath.Base(p)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return strings.TrimSpace(base)
}

// URLToTitle derives a fallback title from the last path segment.
func URLToTitle(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	last := path.Base(strings.TrimRight(u.Path, "/"))
	if last == "." || last == "/" || last == "" {
		return u.Host
	}
	last = strings.SplitN(last, ".", 2)[0]
	last = strings.ReplaceAll(last, "-", " ")
	return strings.TrimSpace(last)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// resolveLink keeps same-host page links, without query or fragment.
func resolveLink(href string, base *url.URL) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	u = base.ResolveReference(u)
	if u.Host != base.Host || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".css", ".js", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico":
		return "", false
	}
	return u.Scheme + "://" + u.Host + u.Path, true
}

// sanitizeUTF8 drops invalid bytes (Postgres rejects them with 22021).
func sanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, "")
}
