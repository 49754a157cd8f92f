// Package extract turns item bodies into plain text for the prefilter and
// the extraction collaborator.
package extract

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// Document is the readable content of an item body
type Document struct {
	Title       string   // <title>, or the first <h1> when the title is empty
	Text        string   // Visible text, whitespace-collapsed
	Attachments []string // Absolute links to announcement files (PDF, DOC, ...)
}

// Attachment extensions published by exchange and bureau announcement pages
var attachmentExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
}

// Parse reads an item body. Bodies that are not HTML are returned as
// whitespace-collapsed text. sourceURL resolves relative attachment links
// and may be empty.
func Parse(body, sourceURL string) (*Document, error) {
	if !looksLikeHTML(body) {
		return &Document{Text: collapse(body)}, nil
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	var base *url.URL
	if sourceURL != "" {
		base, _ = url.Parse(sourceURL)
	}

	return &Document{
		Title:       documentTitle(doc),
		Text:        collapse(visibleText(doc)),
		Attachments: attachments(doc, base),
	}, nil
}

// VisibleText is Parse reduced to its text. Unparseable input falls back to
// the raw body so that the prefilter still sees something.
func VisibleText(body string) string {
	doc, err := Parse(body, "")
	if err != nil {
		return collapse(body)
	}
	return doc.Text
}

func looksLikeHTML(body string) bool {
	trimmed := strings.TrimSpace(body)
	return strings.HasPrefix(trimmed, "<") && strings.Contains(trimmed, ">")
}

// visibleText walks text nodes, skipping scripts and styles
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			}
		}

		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

func documentTitle(doc *html.Node) string {
	if t := findFirst(doc, isElement("title")); t != nil {
		if text := collapse(textOf(t)); text != "" {
			return text
		}
	}
	if h := findFirst(doc, isElement("h1")); h != nil {
		return collapse(textOf(h))
	}
	return ""
}

func attachments(doc *html.Node, base *url.URL) []string {
	seen := make(map[string]bool)
	var links []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if link := resolveAttachment(base, attr(n, "href")); link != "" && !seen[link] {
				seen[link] = true
				links = append(links, link)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return links
}

// resolveAttachment returns the absolute URL of href when it points at a
// document file, or "" otherwise
func resolveAttachment(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	if !attachmentExts[strings.ToLower(path.Ext(parsed.Path))] {
		return ""
	}
	return parsed.String()
}

func isElement(name string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == name
	}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		buf.WriteString(textOf(c))
		buf.WriteString(" ")
	}
	return buf.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
