// Package browsertest provides an in-memory browser.Session over static HTML pages.
// Selectors are evaluated with goquery, so anything cascadia supports works here.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/job-applier/internal/browser"
)

// Page is one static document.
type Page struct {
	HTML string
	// OnClick maps a selector to the URL loaded when it is clicked.
	// Selectors absent from the map can still be clicked and leave the page as is.
	OnClick map[string]string
	// Hidden lists selectors that are present but never clickable or fillable.
	Hidden []string
	// ClickErr makes clicking the selector fail.
	ClickErr map[string]error
}

// Session is a scripted browser. The zero value is unusable; use New.
type Session struct {
	mu sync.Mutex

	pages   map[string]*Page
	current string
	doc     *goquery.Document

	// NavigateErr makes navigation to the URL fail.
	NavigateErr map[string]error

	Navigations []string
	Clicks      []string
	Filled      map[string]string
	Uploaded    map[string]string
}

// New returns a session serving pages keyed by URL. Unknown URLs load an empty page.
func New(pages map[string]*Page) *Session {
	if pages == nil {
		pages = make(map[string]*Page)
	}
	s := &Session{
		pages:       pages,
		NavigateErr: make(map[string]error),
		Filled:      make(map[string]string),
		Uploaded:    make(map[string]string),
	}
	s.load("about:blank")
	return s
}

// AddPage registers a page after construction.
func (s *Session) AddPage(url string, page *Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = page
}

func (s *Session) page() *Page {
	if p, ok := s.pages[s.current]; ok {
		return p
	}
	return &Page{}
}

func (s *Session) load(url string) {
	s.current = url
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.page().HTML))
	if err != nil {
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	s.doc = doc
}

// find returns the first match of selector. goquery treats an invalid selector as matching nothing.
func (s *Session) find(selector string) *goquery.Selection {
	return s.doc.Find(selector).First()
}

func (s *Session) hidden(selector string) bool {
	for _, h := range s.page().Hidden {
		if h == selector {
			return true
		}
	}
	return false
}

func (s *Session) clickable(selector string) bool {
	sel := s.find(selector)
	if sel.Length() == 0 || s.hidden(selector) {
		return false
	}
	_, disabled := sel.Attr("disabled")
	return !disabled
}

// Navigate loads url.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Navigations = append(s.Navigations, url)
	if err := s.NavigateErr[url]; err != nil {
		return err
	}
	s.load(url)
	return nil
}

// CurrentURL returns the loaded URL.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

// WaitPresent reports whether selector matches. It never waits.
func (s *Session) WaitPresent(ctx context.Context, selector string, _ time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(selector).Length() > 0
}

// WaitClickable reports whether selector matches a visible, enabled element. It never waits.
func (s *Session) WaitClickable(ctx context.Context, selector string, _ time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clickable(selector)
}

// Click records the click and follows the page's OnClick transition.
func (s *Session) Click(ctx context.Context, selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.clickable(selector) {
		return fmt.Errorf("element not clickable: %s", selector)
	}
	page := s.page()
	if err := page.ClickErr[selector]; err != nil {
		return err
	}
	s.Clicks = append(s.Clicks, selector)
	if next, ok := page.OnClick[selector]; ok && next != "" {
		s.load(next)
	}
	return nil
}

// Fill records value for selector. The element must be an input, textarea or select.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.interactable(selector); err != nil {
		return err
	}
	s.Filled[selector] = value
	return nil
}

// Upload records path for selector. The element must be an input.
func (s *Session) Upload(ctx context.Context, selector, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.interactable(selector); err != nil {
		return err
	}
	if goquery.NodeName(s.find(selector)) != "input" {
		return fmt.Errorf("element is not a file input: %s", selector)
	}
	s.Uploaded[selector] = path
	return nil
}

func (s *Session) interactable(selector string) error {
	sel := s.find(selector)
	if sel.Length() == 0 {
		return fmt.Errorf("element not found: %s", selector)
	}
	if !s.clickable(selector) {
		return fmt.Errorf("element not interactable: %s", selector)
	}
	switch goquery.NodeName(sel) {
	case "input", "textarea", "select":
		return nil
	default:
		return fmt.Errorf("element not interactable: %s is a <%s>", selector, goquery.NodeName(sel))
	}
}

// OuterHTML returns the markup of the first match.
func (s *Session) OuterHTML(ctx context.Context, selector string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.find(selector)
	if sel.Length() == 0 {
		return "", fmt.Errorf("element not found: %s", selector)
	}
	return goquery.OuterHtml(sel)
}

// OuterHTMLAll returns the markup of every match.
func (s *Session) OuterHTMLAll(ctx context.Context, selector string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []string{}
	var err error
	s.doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var html string
		html, err = goquery.OuterHtml(sel)
		if err != nil {
			return false
		}
		out = append(out, html)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ClicksOf counts recorded clicks on selector.
func (s *Session) ClicksOf(selector string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range s.Clicks {
		if c == selector {
			n++
		}
	}
	return n
}

var _ browser.Session = (*Session)(nil)
