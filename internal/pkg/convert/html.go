package convert

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var blankLines = regexp.MustCompile(`\n{3,}`)

// convertHTML renders an HTML document as markdown. Headings, lists,
// links, and code blocks keep their structure; script and style
// content is dropped.
func convertHTML(_ context.Context, data []byte, _ string) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	renderNode(&buf, doc)

	text := blankLines.ReplaceAllString(buf.String(), "\n\n")
	return strings.TrimSpace(text) + "\n", nil
}

func renderNode(buf *bytes.Buffer, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		text := collapseSpace(n.Data)
		if text != "" {
			// Preserve a single separating space between inline siblings
			if startsWithSpace(n.Data) && needsSpace(buf) {
				buf.WriteByte(' ')
			}
			buf.WriteString(text)
			if endsWithSpace(n.Data) {
				buf.WriteByte(' ')
			}
		}
		return

	case html.ElementNode:
		switch n.Data {
		case "script", "style", "head", "noscript":
			return
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(n.Data[1] - '0')
			buf.WriteString("\n\n" + strings.Repeat("#", level) + " ")
			renderChildren(buf, n)
			buf.WriteString("\n\n")
			return
		case "p", "div", "section", "article":
			buf.WriteString("\n\n")
			renderChildren(buf, n)
			buf.WriteString("\n\n")
			return
		case "br":
			buf.WriteString("\n")
			return
		case "li":
			buf.WriteString("\n- ")
			renderChildren(buf, n)
			return
		case "ul", "ol":
			renderChildren(buf, n)
			buf.WriteString("\n\n")
			return
		case "a":
			href := attrValue(n, "href")
			var inner bytes.Buffer
			renderChildren(&inner, n)
			label := strings.TrimSpace(inner.String())
			if href != "" && label != "" {
				fmt.Fprintf(buf, "[%s](%s)", label, href)
			} else {
				buf.WriteString(label)
			}
			return
		case "strong", "b":
			buf.WriteString("**")
			renderChildren(buf, n)
			buf.WriteString("**")
			return
		case "em", "i":
			buf.WriteString("*")
			renderChildren(buf, n)
			buf.WriteString("*")
			return
		case "code":
			buf.WriteString("`")
			renderChildren(buf, n)
			buf.WriteString("`")
			return
		case "pre":
			var inner bytes.Buffer
			collectText(&inner, n)
			buf.WriteString("\n\n```\n")
			buf.WriteString(strings.TrimRight(inner.String(), "\n"))
			buf.WriteString("\n```\n\n")
			return
		case "tr":
			buf.WriteString("\n| ")
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					renderChildren(buf, c)
					buf.WriteString(" | ")
				}
			}
			return
		case "table":
			renderChildren(buf, n)
			buf.WriteString("\n\n")
			return
		}
	}

	renderChildren(buf, n)
}

func renderChildren(buf *bytes.Buffer, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(buf, c)
	}
}

// collectText gathers raw text content without markdown markup.
func collectText(buf *bytes.Buffer, n *html.Node) {
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(buf, c)
	}
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func startsWithSpace(s string) bool {
	return s != "" && (s[0] == ' ' || s[0] == '\n' || s[0] == '\t' || s[0] == '\r')
}

func endsWithSpace(s string) bool {
	last := s[len(s)-1]
	return last == ' ' || last == '\n' || last == '\t' || last == '\r'
}

func needsSpace(buf *bytes.Buffer) bool {
	b := buf.Bytes()
	if len(b) == 0 {
		return false
	}
	last := b[len(b)-1]
	return last != ' ' && last != '\n'
}
