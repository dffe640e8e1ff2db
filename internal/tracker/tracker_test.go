package tracker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var testSections = []Section{
	{ID: "about", Label: "About"},
	{ID: "skills", Label: "Skills"},
	{ID: "experience", Label: "Experience"},
	{ID: "projects", Label: "Projects"},
	{ID: "contact", Label: "Contact"},
}

type recordingScroller struct {
	targets []string
}

func (r *recordingScroller) ScrollIntoView(id string) {
	r.targets = append(r.targets, id)
}

func activeItems(items []NavItem) []string {
	var ids []string
	for _, it := range items {
		if it.Active {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

func TestNewRejectsBadSectionLists(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.ErrorIs(t, err, ErrNoSections)

	_, err = New([]Section{{ID: "about"}, {ID: "about"}})
	require.ErrorIs(t, err, ErrDuplicateSection)

	_, err = New([]Section{{ID: "", Label: "Nothing"}})
	require.Error(t, err)
}

func TestInitialActiveIsFirstSection(t *testing.T) {
	t.Parallel()

	tr, err := New(testSections)
	require.NoError(t, err)
	require.Equal(t, "about", tr.Active())
	require.False(t, tr.MenuOpen())
	require.Equal(t, []string{"about"}, activeItems(tr.Items()))
}

func TestSelectEveryKnownSection(t *testing.T) {
	t.Parallel()

	tr, err := New(testSections)
	require.NoError(t, err)

	sc := &recordingScroller{}
	for _, s := range testSections {
		require.NoError(t, tr.Select(s.ID, sc))
		require.Equal(t, s.ID, tr.Active())
		require.Equal(t, []string{s.ID}, activeItems(tr.Items()), "exactly one active entry")
	}
	require.Len(t, sc.targets, len(testSections))
}

func TestSelectUnknownSectionLeavesStateAlone(t *testing.T) {
	t.Parallel()

	tr, err := New(testSections, WithMobileMenu())
	require.NoError(t, err)
	tr.ToggleMenu()

	sc := &recordingScroller{}
	err = tr.Select("blog", sc)
	require.ErrorIs(t, err, ErrUnknownSection)
	require.Equal(t, "about", tr.Active())
	require.True(t, tr.MenuOpen())
	require.Empty(t, sc.targets)
}

func TestSelectWithoutAnchorStillActivates(t *testing.T) {
	t.Parallel()

	var missing []string
	tr, err := New(testSections,
		WithAnchors(NewAnchorSet("hero", "about", "skills", "experience", "contact")),
		WithMissingAnchor(func(id string) { missing = append(missing, id) }),
	)
	require.NoError(t, err)

	sc := &recordingScroller{}
	require.NoError(t, tr.Select("projects", sc))
	require.Equal(t, "projects", tr.Active())
	require.Empty(t, sc.targets, "no scroll without an element")
	require.Equal(t, []string{"projects"}, missing)

	require.NoError(t, tr.Select("contact", sc))
	require.Equal(t, []string{"contact"}, sc.targets)
}

func TestSelectAcceptsNilScroller(t *testing.T) {
	t.Parallel()

	tr, err := New(testSections)
	require.NoError(t, err)
	require.NoError(t, tr.Select("skills", nil))
	require.Equal(t, "skills", tr.Active())
}

func TestToggleMenuFlipsOncePerCall(t *testing.T) {
	t.Parallel()

	tr, err := New(testSections, WithMobileMenu())
	require.NoError(t, err)
	require.NoError(t, tr.Select("experience", nil))

	require.True(t, tr.ToggleMenu())
	require.True(t, tr.MenuOpen())
	require.False(t, tr.ToggleMenu())
	require.False(t, tr.MenuOpen())
	require.Equal(t, "experience", tr.Active(), "toggling never touches the active section")
}

func TestToggleMenuDisabled(t *testing.T) {
	t.Parallel()

	tr, err := New(testSections)
	require.NoError(t, err)
	require.False(t, tr.MobileMenu())
	require.False(t, tr.ToggleMenu())
	require.False(t, tr.MenuOpen())
}

func TestSelectClosesOpenMenu(t *testing.T) {
	t.Parallel()

	tr, err := New(testSections, WithMobileMenu())
	require.NoError(t, err)

	for _, s := range testSections {
		tr.ToggleMenu()
		require.True(t, tr.MenuOpen())
		require.NoError(t, tr.Select(s.ID, nil))
		require.False(t, tr.MenuOpen())
	}

	// Selecting with the menu already closed keeps it closed.
	require.NoError(t, tr.Select("about", nil))
	require.False(t, tr.MenuOpen())
}

func TestNavigationScenario(t *testing.T) {
	t.Parallel()

	tr, err := New(testSections, WithMobileMenu())
	require.NoError(t, err)
	require.Equal(t, "about", tr.Active())

	sc := &recordingScroller{}
	require.NoError(t, tr.Select("projects", sc))
	require.Equal(t, "projects", tr.Active())
	require.Equal(t, []string{"projects"}, sc.targets)

	require.True(t, tr.ToggleMenu())
	require.NoError(t, tr.Select("skills", sc))
	require.Equal(t, State{Active: "skills", MenuOpen: false}, tr.State())
	require.Equal(t, []string{"projects", "skills"}, sc.targets)
}

func TestSubscribeReceivesChanges(t *testing.T) {
	t.Parallel()

	tr, err := New(testSections, WithMobileMenu())
	require.NoError(t, err)

	var got []State
	cancel := tr.Subscribe(func(s State) { got = append(got, s) })

	tr.ToggleMenu()
	require.NoError(t, tr.Select("contact", nil))
	require.Equal(t, []State{
		{Active: "about", MenuOpen: true},
		{Active: "contact", MenuOpen: false},
	}, got)

	cancel()
	cancel()
	require.NoError(t, tr.Select("about", nil))
	require.Len(t, got, 2)
}

func TestSectionsReturnsCopy(t *testing.T) {
	t.Parallel()

	tr, err := New(testSections)
	require.NoError(t, err)
	s := tr.Sections()
	s[0].Label = "changed"
	require.Equal(t, "About", tr.Sections()[0].Label)
}

func TestScrollFollowsStateUpdate(t *testing.T) {
	t.Parallel()

	var tr *Tracker
	var missingSaw string
	tr, err := New(testSections,
		WithMobileMenu(),
		WithAnchors(NewAnchorSet("about", "skills")),
		WithMissingAnchor(func(string) { missingSaw = tr.Active() }),
	)
	require.NoError(t, err)

	var scrollSaw string
	var menuOpen bool
	tr.ToggleMenu()
	require.NoError(t, tr.Select("skills", ScrollerFunc(func(string) {
		scrollSaw = tr.Active()
		menuOpen = tr.MenuOpen()
	})))
	require.Equal(t, "skills", scrollSaw)
	require.False(t, menuOpen)

	require.NoError(t, tr.Select("contact", nil))
	require.Equal(t, "contact", missingSaw)
}

func TestConcurrentSelectsKeepOneActive(t *testing.T) {
	t.Parallel()

	tr, err := New(testSections, WithMobileMenu())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = tr.Select(id, ScrollerFunc(func(string) {}))
			tr.ToggleMenu()
		}(testSections[i%len(testSections)].ID)
	}
	wg.Wait()

	require.Len(t, activeItems(tr.Items()), 1)
	require.Contains(t, tr.Sections(), Section{ID: tr.Active(), Label: labelOf(tr.Active())})
}

func labelOf(id string) string {
	for _, s := range testSections {
		if s.ID == id {
			return s.Label
		}
	}
	return ""
}
