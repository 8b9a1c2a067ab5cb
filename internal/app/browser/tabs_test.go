package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeView is a minimal NavigableView for bookkeeping tests.
type fakeView struct {
	url      string
	title    string
	canBack  bool
	canFwd   bool
	loaded      []string
	backs       int
	forwards    int
	reloads     int
	hardReloads int
	stops       int
}

func (f *fakeView) LoadURL(url string) error {
	f.loaded = append(f.loaded, url)
	f.url = url
	return nil
}
func (f *fakeView) GoBack() error            { f.backs++; return nil }
func (f *fakeView) GoForward() error         { f.forwards++; return nil }
func (f *fakeView) Stop() error              { f.stops++; return nil }
func (f *fakeView) Reload() error            { f.reloads++; return nil }
func (f *fakeView) ReloadBypassCache() error { f.hardReloads++; return nil }
func (f *fakeView) CurrentURL() string       { return f.url }
func (f *fakeView) Title() string            { return f.title }
func (f *fakeView) CanGoBack() bool          { return f.canBack }
func (f *fakeView) CanGoForward() bool       { return f.canFwd }

var _ NavigableView = (*fakeView)(nil)

func TestOpenActivatesNewTab(t *testing.T) {
	l := NewTabList()

	h1 := l.Open(&fakeView{url: "https://a.com"})
	assert.Equal(t, h1, l.Active().Handle)

	h2 := l.Open(&fakeView{url: "https://b.com"})
	assert.Equal(t, h2, l.Active().Handle)
	assert.Equal(t, 2, l.Len())
}

func TestCloseLastTabRefused(t *testing.T) {
	l := NewTabList()
	h := l.Open(&fakeView{})

	_, err := l.Close(h)
	assert.ErrorIs(t, err, ErrLastTab)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, h, l.Active().Handle)
}

func TestCloseActiveActivatesPreviousNeighbour(t *testing.T) {
	l := NewTabList()
	h1 := l.Open(&fakeView{})
	h2 := l.Open(&fakeView{})
	h3 := l.Open(&fakeView{})

	// h3 is active; closing it should activate h2.
	closed, err := l.Close(h3)
	require.NoError(t, err)
	assert.Equal(t, h3, closed.Handle)
	assert.Equal(t, h2, l.Active().Handle)
	assert.Equal(t, []Handle{h1, h2}, l.Handles())
}

func TestCloseFirstActiveActivatesNext(t *testing.T) {
	l := NewTabList()
	h1 := l.Open(&fakeView{})
	h2 := l.Open(&fakeView{})
	require.NoError(t, l.Activate(h1))

	_, err := l.Close(h1)
	require.NoError(t, err)
	assert.Equal(t, h2, l.Active().Handle)
}

func TestCloseInactiveKeepsActive(t *testing.T) {
	l := NewTabList()
	h1 := l.Open(&fakeView{})
	h2 := l.Open(&fakeView{})
	h3 := l.Open(&fakeView{})
	require.NoError(t, l.Activate(h3))

	_, err := l.Close(h1)
	require.NoError(t, err)
	assert.Equal(t, h3, l.Active().Handle)

	_, err = l.Close(h2)
	require.NoError(t, err)
	assert.Equal(t, h3, l.Active().Handle)
	assert.Equal(t, 1, l.Len())
}

func TestCloseUnknownHandle(t *testing.T) {
	l := NewTabList()
	l.Open(&fakeView{})
	l.Open(&fakeView{})

	_, err := l.Close(Handle(999))
	assert.ErrorIs(t, err, ErrUnknownTab)
}

func TestActivate(t *testing.T) {
	l := NewTabList()
	h1 := l.Open(&fakeView{})
	l.Open(&fakeView{})

	require.NoError(t, l.Activate(h1))
	assert.Equal(t, h1, l.Active().Handle)
	assert.Equal(t, 0, l.ActiveIndex())

	assert.ErrorIs(t, l.Activate(Handle(42)), ErrUnknownTab)
}

func TestActivateIndex(t *testing.T) {
	l := NewTabList()
	l.Open(&fakeView{})
	h2 := l.Open(&fakeView{})

	require.NoError(t, l.ActivateIndex(1))
	assert.Equal(t, h2, l.Active().Handle)

	assert.ErrorIs(t, l.ActivateIndex(5), ErrUnknownTab)
	assert.ErrorIs(t, l.ActivateIndex(-1), ErrUnknownTab)
}

func TestHandlesNeverReused(t *testing.T) {
	l := NewTabList()
	h1 := l.Open(&fakeView{})
	l.Open(&fakeView{})

	_, err := l.Close(h1)
	require.NoError(t, err)

	h3 := l.Open(&fakeView{})
	assert.NotEqual(t, h1, h3)
}

func TestEmptyList(t *testing.T) {
	l := NewTabList()

	assert.Nil(t, l.Active())
	assert.Equal(t, -1, l.ActiveIndex())
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.Get(Handle(1)))
}
