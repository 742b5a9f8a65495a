package tracker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func newTestClassifier(t *testing.T, pageURL string) *Classifier {
	t.Helper()
	c, err := NewClassifier(pageURL)
	require.NoError(t, err)
	return c
}

func parseBody(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func findTag(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findTag(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// classifyTarget parses markup, finds the clicked tag and classifies it the
// way a real click would: from the target, up through its ancestors.
func classifyTarget(t *testing.T, c *Classifier, markup, targetTag string) string {
	t.Helper()
	doc := parseBody(t, markup)
	target := findTag(doc, targetTag)
	require.NotNil(t, target, "markup must contain a <%s>", targetTag)
	return c.ClassifyNode(target)
}

func TestClassify_InternalAnchor(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	got := classifyTarget(t, c, `<a href="/contact">Contact</a>`, "a")
	assert.Equal(t, "lien interne|Contact", got)
}

func TestClassify_InternalAnchorVariants(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/galerie")
	tests := []struct {
		name string
		href string
	}{
		{"fragment", "#services"},
		{"relative dot", "./mariage"},
		{"empty", ""},
		{"absolute same host with www", "https://www.atelierlux.fr/contact"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyTarget(t, c, `<a href="`+tt.href+`">voir</a>`, "a")
			assert.True(t, strings.HasPrefix(got, "lien interne|"), "got %q", got)
		})
	}
}

func TestClassify_ExternalAnchor(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	got := classifyTarget(t, c, `<a href="https://example.com/page">voir le site</a>`, "a")
	assert.Equal(t, "lien externe|voir le site", got)
}

func TestClassify_ProtocolRelativeIsResolved(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	got := classifyTarget(t, c, `<a href="//cdn.example.com/file">fichier</a>`, "a")
	assert.Equal(t, "lien externe|fichier", got)
}

func TestClassify_LoopbackHostsCollapse(t *testing.T) {
	c := newTestClassifier(t, "http://localhost:3000/")
	got := classifyTarget(t, c, `<a href="http://127.0.0.1:3000/contact">Contact</a>`, "a")
	assert.Equal(t, "lien interne|Contact", got)
}

func TestClassify_SocialOverridesLinkText(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	tests := []struct {
		href string
		want string
	}{
		{"https://www.instagram.com/atelierlux", "Instagram"},
		{"https://fb.me/atelierlux", "Facebook"},
		{"https://youtu.be/xyz", "YouTube"},
		{"https://x.com/atelierlux", "Twitter"},
		{"https://vimeo.com/123", "Vimeo"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := classifyTarget(t, c, `<a href="`+tt.href+`">suivez-moi ici</a>`, "a")
			assert.Equal(t, "lien externe|"+tt.want, got)
		})
	}
}

func TestClassify_NavAnchorBecomesMenu(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	got := classifyTarget(t, c, `<nav><a href="/contact">Contact</a></nav>`, "a")
	assert.Equal(t, "menu|Contact", got)
}

func TestClassify_MobileDrawerAnchor(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	markup := `<nav data-mobile-menu="true"><a href="/realisations">Réalisation</a></nav>`
	got := classifyTarget(t, c, markup, "a")
	assert.Equal(t, "menu mobile|Réalisation", got)
}

func TestClassify_RoleNavigationCounts(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	markup := `<div role="navigation"><a href="/services">Services</a></div>`
	got := classifyTarget(t, c, markup, "a")
	assert.Equal(t, "menu|Services", got)
}

func TestClassify_AnchorLabelFallsBackToPageName(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	// image link with no text: label derives from the target path
	got := classifyTarget(t, c, `<a href="/galerie/mariage"><img src="a.jpg"></a>`, "img")
	assert.Equal(t, "lien interne|galerie", got)

	got = classifyTarget(t, c, `<a href="/"><img src="logo.jpg"></a>`, "img")
	assert.Equal(t, "lien interne|home", got)
}

func TestClassify_AnchorLabelTruncated(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	long := strings.Repeat("a", 200)
	got := classifyTarget(t, c, `<a href="/contact">`+long+`</a>`, "a")
	parts := strings.SplitN(got, "|", 2)
	require.Len(t, parts, 2)
	assert.Len(t, parts[1], 80)
}

func TestClassify_MalformedHrefDropsClick(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	got := classifyTarget(t, c, `<a href="http://exa mple.com/">broken</a>`, "a")
	assert.Empty(t, got)
}

func TestClassify_TrackAttributeShortCircuits(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	markup := `<a href="https://example.com" data-track-id="cta|Réserver">texte quelconque</a>`
	got := classifyTarget(t, c, markup, "a")
	assert.Equal(t, "cta|Réserver", got)
}

func TestClassify_Button(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	assert.Equal(t, "bouton|Envoyer", classifyTarget(t, c, `<button>Envoyer</button>`, "button"))
	assert.Equal(t, "menu|Fermer", classifyTarget(t, c, `<nav><button>Fermer</button></nav>`, "button"))
	assert.Equal(t, "bouton|Valider", classifyTarget(t, c, `<button value="Valider"></button>`, "button"))
	assert.Equal(t, "bouton|Bouton", classifyTarget(t, c, `<button></button>`, "button"))
}

func TestClassify_MobileNavToggle(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	// labeled "menu", case-insensitive
	assert.Equal(t, "menu mobile|", classifyTarget(t, c, `<button aria-label="Menu"></button>`, "button"))
	// textless hamburger icon
	assert.Equal(t, "menu mobile|", classifyTarget(t, c, `<button><span class="burger-icon"></span></button>`, "span"))
	// a hamburger-classed button WITH text is a regular button
	assert.Equal(t, "bouton|Ouvrir", classifyTarget(t, c, `<button class="burger">Ouvrir</button>`, "button"))
}

func TestClassify_Image(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	assert.Equal(t, "image|Coucher de soleil", classifyTarget(t, c, `<img alt="Coucher de soleil">`, "img"))
	assert.Equal(t, "image|Image", classifyTarget(t, c, `<img src="x.jpg">`, "img"))

	markup := `<div class="masonry-grid"><img alt="Portrait"></div>`
	assert.Equal(t, "image galerie|Portrait", classifyTarget(t, c, markup, "img"))

	markup = `<section class="galerie-mariage"><img alt="Mariage"></section>`
	assert.Equal(t, "image galerie|Mariage", classifyTarget(t, c, markup, "img"))
}

func TestClassify_PrecedenceImageInsideButtonInsideNav(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	// the button wins over both the image and the bare nav ancestry; a
	// textless button without a value falls back to the generic label
	markup := `<nav><button aria-label="fermer la galerie"><img alt="croix"></button></nav>`
	got := classifyTarget(t, c, markup, "img")
	assert.Equal(t, "menu|Bouton", got)
}

func TestClassify_BlockControl(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	got := classifyTarget(t, c, `<div class="editable-block"><span>Texte accueil</span></div>`, "span")
	assert.Equal(t, "bloc|Texte accueil", got)
}

func TestClassify_RawElementLastResort(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	got := classifyTarget(t, c, `<p>du texte</p>`, "p")
	assert.Equal(t, "element|p", got)
}

func TestClassify_EmptyChain(t *testing.T) {
	c := newTestClassifier(t, "https://atelierlux.fr/")
	assert.Empty(t, c.Classify(nil))
}
