// Package tracker keeps the navigation bar in sync with the section a visitor
// last picked, and asks the page to scroll there.
package tracker

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNoSections       = errors.New("tracker: no sections")
	ErrDuplicateSection = errors.New("tracker: duplicate section id")
	ErrUnknownSection   = errors.New("tracker: unknown section")
	errEmptySectionID   = errors.New("tracker: empty section id")
)

// Section is an anchorable region of the page and its nav label.
type Section struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// State is a snapshot handed to subscribers.
type State struct {
	Active   string `json:"active"`
	MenuOpen bool   `json:"menu_open"`
}

// NavItem is the view model for one nav entry.
type NavItem struct {
	ID     string
	Label  string
	Active bool
}

// Scroller moves the viewport to an element. Calls are fire-and-forget: the
// tracker never waits for the animation or learns whether it finished.
type Scroller interface {
	ScrollIntoView(id string)
}

// ScrollerFunc adapts a plain function to Scroller.
type ScrollerFunc func(id string)

func (f ScrollerFunc) ScrollIntoView(id string) { f(id) }

// Anchors reports which element ids exist on the rendered page.
type Anchors interface {
	Has(id string) bool
}

// AnchorSet is a static Anchors implementation.
type AnchorSet map[string]struct{}

// NewAnchorSet builds an AnchorSet from ids.
func NewAnchorSet(ids ...string) AnchorSet {
	s := make(AnchorSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s AnchorSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithMobileMenu enables the mobile menu drawer.
func WithMobileMenu() Option {
	return func(t *Tracker) { t.mobileMenu = true }
}

// WithAnchors sets the ids that can be scrolled to. Without it every known
// section is assumed to be present on the page.
func WithAnchors(a Anchors) Option {
	return func(t *Tracker) { t.anchors = a }
}

// WithMissingAnchor registers a hook called when a selected section has no
// element on the page.
func WithMissingAnchor(fn func(id string)) Option {
	return func(t *Tracker) { t.onMissing = fn }
}

// Tracker owns the active section and the mobile menu flag of one page view.
type Tracker struct {
	sections []Section
	known    map[string]struct{}

	mobileMenu bool
	anchors    Anchors
	onMissing  func(id string)

	mu       sync.Mutex
	active   string
	menuOpen bool
	nextSub  int
	subs     map[int]func(State)
}

// New creates a tracker over a fixed, ordered list of sections. The first
// section starts out active.
func New(sections []Section, opts ...Option) (*Tracker, error) {
	if len(sections) == 0 {
		return nil, ErrNoSections
	}
	known := make(map[string]struct{}, len(sections))
	for _, s := range sections {
		if s.ID == "" {
			return nil, errEmptySectionID
		}
		if _, dup := known[s.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSection, s.ID)
		}
		known[s.ID] = struct{}{}
	}

	t := &Tracker{
		sections: append([]Section(nil), sections...),
		known:    known,
		active:   sections[0].ID,
		subs:     make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Select scrolls to the section and marks it active. A section without an
// element on the page still becomes active; only the scroll is skipped.
func (t *Tracker) Select(id string, s Scroller) error {
	if _, ok := t.known[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSection, id)
	}

	t.mu.Lock()
	scroll := t.anchors == nil || t.anchors.Has(id)
	t.active = id
	t.menuOpen = false
	st, subs := t.snapshotLocked()
	t.mu.Unlock()

	// State is already updated, so a scroller reading it sees this selection.
	switch {
	case scroll && s != nil:
		s.ScrollIntoView(id)
	case !scroll && t.onMissing != nil:
		t.onMissing(id)
	}

	notify(subs, st)
	return nil
}

// ToggleMenu flips the mobile menu and returns its new value. It does nothing
// when the mobile menu is disabled.
func (t *Tracker) ToggleMenu() bool {
	if !t.mobileMenu {
		return false
	}

	t.mu.Lock()
	t.menuOpen = !t.menuOpen
	open := t.menuOpen
	st, subs := t.snapshotLocked()
	t.mu.Unlock()

	notify(subs, st)
	return open
}

func (t *Tracker) Active() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Tracker) MenuOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.menuOpen
}

// MobileMenu reports whether the mobile menu drawer is enabled.
func (t *Tracker) MobileMenu() bool {
	return t.mobileMenu
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{Active: t.active, MenuOpen: t.menuOpen}
}

// Sections returns a copy of the known sections in nav order.
func (t *Tracker) Sections() []Section {
	return append([]Section(nil), t.sections...)
}

// Items maps every section to a nav entry. Exactly one entry is active.
func (t *Tracker) Items() []NavItem {
	active := t.Active()
	items := make([]NavItem, 0, len(t.sections))
	for _, s := range t.sections {
		items = append(items, NavItem{
			ID:     s.ID,
			Label:  s.Label,
			Active: s.ID == active,
		})
	}
	return items
}

// Subscribe registers fn to run after every state change. The returned
// function removes the subscription.
func (t *Tracker) Subscribe(fn func(State)) (cancel func()) {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}

// snapshotLocked must be called with t.mu held.
func (t *Tracker) snapshotLocked() (State, []func(State)) {
	st := State{Active: t.active, MenuOpen: t.menuOpen}
	if len(t.subs) == 0 {
		return st, nil
	}
	subs := make([]func(State), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	return st, subs
}

func notify(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st)
	}
}
