package discovery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/cruncher/scraper"
	"golang.org/x/net/html"
)

// WebsiteStrategy looks for the company website relative to the "Website"
// label of a company card. It returns false when the markup around the label
// doesn't have the shape it expects.
type WebsiteStrategy func(label *goquery.Selection) (string, bool)

// DefaultWebsiteStrategies are tried in order by ExtractWebsite. Company
// cards place the link either as the second or as the first child of the
// value element, depending on surrounding whitespace.
var DefaultWebsiteStrategies = []WebsiteStrategy{
	ValueChildLink(1),
	ValueChildLink(0),
}

// ValueChildLink returns a strategy that reads the href of the child node at
// index of the value element. The value element is the node two siblings
// after the label; text nodes count as siblings and children.
func ValueChildLink(index int) WebsiteStrategy {
	return func(label *goquery.Selection) (string, bool) {
		value := nthSibling(label, 2)
		if value == nil {
			return "", false
		}

		children := childNodes(value)
		if index < 0 || index >= len(children) {
			return "", false
		}

		href, ok := nodeAttr(children[index], "href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return "", false
		}

		return href, true
	}
}

// FindWebsiteLabel returns the first label element whose text is the
// configured website label, or an empty selection.
func FindWebsiteLabel(doc *goquery.Document, config scraper.ArticleConfig) *goquery.Selection {
	return doc.Find(config.WebsiteLabelElement).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == config.WebsiteLabel
	}).First()
}

// ExtractWebsite returns the result of the first strategy that succeeds, or
// "" if there is no website label or every strategy fails.
func ExtractWebsite(doc *goquery.Document, config scraper.ArticleConfig, strategies []WebsiteStrategy) string {
	label := FindWebsiteLabel(doc, config)
	if label.Length() == 0 {
		return ""
	}

	for _, strategy := range strategies {
		if website, ok := strategy(label); ok {
			return website
		}
	}

	return ""
}

// nthSibling walks n raw sibling nodes forward from the first node of s.
func nthSibling(s *goquery.Selection, n int) *html.Node {
	if s.Length() == 0 {
		return nil
	}

	node := s.Get(0)
	for range n {
		node = node.NextSibling
		if node == nil {
			return nil
		}
	}

	return node
}

func childNodes(n *html.Node) []*html.Node {
	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	return children
}

func nodeAttr(n *html.Node, key string) (string, bool) {
	if n.Type != html.ElementNode {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
