package tracker

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Attributes the site's markup may carry to steer classification.
const (
	// TrackAttr short-circuits the whole heuristic chain: its value is used
	// verbatim as the click descriptor.
	TrackAttr = "data-track-id"
	// MobileMenuAttr flags a <nav> as the mobile drawer.
	MobileMenuAttr = "data-mobile-menu"
)

const maxLabelLen = 80

// socialHosts maps normalized hostnames to the platform's human name. A link
// resolving to one of these is labeled with the platform regardless of its
// visible text.
var socialHosts = map[string]string{
	"instagram.com": "Instagram",
	"facebook.com":  "Facebook",
	"fb.com":        "Facebook",
	"fb.me":         "Facebook",
	"youtube.com":   "YouTube",
	"youtu.be":      "YouTube",
	"tiktok.com":    "TikTok",
	"linkedin.com":  "LinkedIn",
	"twitter.com":   "Twitter",
	"x.com":         "Twitter",
	"vimeo.com":     "Vimeo",
	"pinterest.com": "Pinterest",
	"snapchat.com":  "Snapchat",
}

// Classifier derives a stable "category|label" descriptor for a click from
// the event's target chain. The page URL anchors relative href resolution and
// the internal/external decision.
type Classifier struct {
	page *url.URL
}

func NewClassifier(pageURL string) (*Classifier, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	return &Classifier{page: u}, nil
}

// ClassifyNode classifies a click whose composed target path is unavailable,
// rebuilding the chain by walking DOM ancestors from the clicked node.
func (c *Classifier) ClassifyNode(target *html.Node) string {
	var chain []*html.Node
	for n := target; n != nil; n = n.Parent {
		chain = append(chain, n)
	}
	return c.Classify(chain)
}

// Classify walks the click's target chain (clicked element first, ancestors
// after) and returns the "category|label" descriptor of the first match, in
// this fixed precedence: explicit track attribute, anchor, button, image, nav
// ancestry, editable-block class hint, then the clicked element itself. An
// image inside a button therefore classifies as the button. The empty string
// means nothing clickable was found and no event should be emitted.
func (c *Classifier) Classify(chain []*html.Node) string {
	if len(chain) == 0 {
		return ""
	}

	for _, n := range chain {
		if id := attrVal(n, TrackAttr); id != "" {
			return id
		}
	}
	if a := firstElement(chain, isAnchor); a != nil {
		return c.classifyAnchor(a, chain)
	}
	if b := firstElement(chain, isButton); b != nil {
		return classifyButton(b, chain)
	}
	if img := firstElement(chain, isImage); img != nil {
		return classifyImage(img, chain)
	}
	if navOf(chain) != nil {
		label := labelOr(nodeText(chain[0]), "Lien")
		return navCategory(chain) + "|" + label
	}
	if blk := firstElement(chain, isBlockControl); blk != nil {
		return "bloc|" + labelOr(nodeText(blk), "Bloc")
	}

	target := chain[0]
	if target.Type != html.ElementNode {
		return ""
	}
	return "element|" + target.Data
}

func (c *Classifier) classifyAnchor(a *html.Node, chain []*html.Node) string {
	href := strings.TrimSpace(attrVal(a, "href"))

	category := "lien interne"
	social := ""
	var resolved *url.URL

	if !isRelativeHref(href) {
		u, err := url.Parse(href)
		if err != nil {
			// malformed href: drop the click entirely
			return ""
		}
		resolved = c.page.ResolveReference(u)
		host := normalizeHost(resolved.Hostname())
		if name, ok := socialHosts[host]; ok {
			social = name
			category = "lien externe"
		} else if host != normalizeHost(c.page.Hostname()) {
			category = "lien externe"
		}
	}

	// nav ancestry wins over the internal/external split
	if navOf(chain) != nil {
		category = navCategory(chain)
	}

	label := social
	if label == "" {
		label = truncateLabel(nodeText(a))
	}
	if label == "" {
		label = pageNameFromHref(href, resolved)
	}
	if label == "" {
		label = "Lien"
	}
	return category + "|" + label
}

func classifyButton(b *html.Node, chain []*html.Node) string {
	text := nodeText(b)
	accessibleName := strings.TrimSpace(attrVal(b, "aria-label"))
	if accessibleName == "" {
		accessibleName = text
	}

	// the mobile nav toggle: labeled "menu", or a textless hamburger icon
	if strings.EqualFold(accessibleName, "menu") || (text == "" && hasBurgerMarker(b)) {
		return "menu mobile|"
	}

	category := "bouton"
	if navOf(chain) != nil {
		category = navCategory(chain)
	}

	label := truncateLabel(text)
	if label == "" {
		label = truncateLabel(attrVal(b, "value"))
	}
	if label == "" {
		label = "Bouton"
	}
	return category + "|" + label
}

func classifyImage(img *html.Node, chain []*html.Node) string {
	category := "image"
	for _, n := range chain {
		if classContains(n, "galerie") || classContains(n, "gallery") || classContains(n, "masonry") {
			category = "image galerie"
			break
		}
	}
	label := labelOr(strings.TrimSpace(attrVal(img, "alt")), "Image")
	return category + "|" + truncateLabel(label)
}

// isRelativeHref reports whether an href is internal without needing URL
// resolution: empty, a fragment, a single-slash path (not protocol-relative)
// or an explicit relative path.
func isRelativeHref(href string) bool {
	switch {
	case href == "":
		return true
	case strings.HasPrefix(href, "#"):
		return true
	case strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//"):
		return true
	case strings.HasPrefix(href, "."):
		return true
	}
	return false
}

// normalizeHost strips a leading "www." and collapses the loopback spellings
// into one bucket so dev and prod compare equal.
func normalizeHost(host string) string {
	h := strings.ToLower(host)
	h = strings.TrimPrefix(h, "www.")
	switch h {
	case "127.0.0.1", "::1", "[::1]":
		return "localhost"
	}
	return h
}

// pageNameFromHref derives a label from the target path's first segment;
// the root path maps to "home".
func pageNameFromHref(href string, resolved *url.URL) string {
	path := href
	if resolved != nil {
		path = resolved.Path
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		if href == "" || strings.HasPrefix(href, "#") {
			return ""
		}
		return "home"
	}
	if i := strings.Index(path, "/"); i >= 0 {
		path = path[:i]
	}
	return path
}

func navCategory(chain []*html.Node) string {
	nav := navOf(chain)
	if nav == nil {
		return "menu"
	}
	if attrVal(nav, MobileMenuAttr) != "" {
		return "menu mobile"
	}
	return "menu"
}

// navOf returns the first navigation landmark in the chain, if any.
func navOf(chain []*html.Node) *html.Node {
	return firstElement(chain, func(n *html.Node) bool {
		return n.Data == "nav" || strings.EqualFold(attrVal(n, "role"), "navigation")
	})
}

func isAnchor(n *html.Node) bool { return n.Data == "a" }

func isButton(n *html.Node) bool {
	return n.Data == "button" || strings.EqualFold(attrVal(n, "role"), "button")
}

func isImage(n *html.Node) bool { return n.Data == "img" }

func isBlockControl(n *html.Node) bool { return classContains(n, "block") }

// hasBurgerMarker reports whether the element or one of its descendants
// carries a hamburger-icon class.
func hasBurgerMarker(n *html.Node) bool {
	if classContains(n, "burger") {
		return true
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if hasBurgerMarker(child) {
			return true
		}
	}
	return false
}

func firstElement(chain []*html.Node, match func(*html.Node) bool) *html.Node {
	for _, n := range chain {
		if n.Type == html.ElementNode && match(n) {
			return n
		}
	}
	return nil
}

func attrVal(n *html.Node, name string) string {
	if n.Type != html.ElementNode {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func classContains(n *html.Node, fragment string) bool {
	return strings.Contains(strings.ToLower(attrVal(n, "class")), fragment)
}

// nodeText collects the visible text of a subtree, whitespace-collapsed.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) > maxLabelLen {
		return string(runes[:maxLabelLen])
	}
	return s
}

func labelOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
