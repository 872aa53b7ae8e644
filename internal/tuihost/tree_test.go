package tuihost

import (
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/bannerd/internal/presenter"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTree() (*Tree, *Screen, *Screen) {
	root := NewScreen("root", "Root")
	pane := NewScreen("pane", "Pane")
	root.AddChild(pane)
	return NewTree(root, quietLogger()), root, pane
}

func resolve(t *testing.T, tree *Tree, cfg presenter.Config) presenter.Host {
	t.Helper()
	ctx, _, err := presenter.Selector{Tree: tree}.Resolve(cfg)
	require.NoError(t, err)
	h, ok := ctx.HostValue()
	require.True(t, ok)
	return h
}

// fourFrames is a duration that takes exactly four frames.
const fourFrames = 4 * frameInterval

func frames(tree *Tree, n int) {
	for range n {
		tree.Update(frameMsg{})
	}
}

func TestTree_AutomaticSelection(t *testing.T) {
	tree, root, pane := newTestTree()
	cfg := presenter.DefaultConfig()

	assert.Same(t, root, resolve(t, tree, cfg))

	pane.Container = true
	assert.Same(t, pane, resolve(t, tree, cfg))

	cfg.Dim = presenter.ColorDim("", true)
	assert.Same(t, root, resolve(t, tree, cfg), "modal banners cover the whole screen")

	pane.Hidden = true
	cfg.Dim = presenter.NoDim()
	assert.Same(t, root, resolve(t, tree, cfg))
}

func TestTree_PresentedScreen(t *testing.T) {
	tree, root, _ := newTestTree()
	modal := NewScreen("modal", "Modal")
	root.Present(modal)

	cfg := presenter.DefaultConfig()
	assert.Same(t, modal, resolve(t, tree, cfg))

	modal.Hidden = true
	assert.Same(t, root, resolve(t, tree, cfg))

	modal.Hidden = false
	root.DismissPresented()
	assert.Same(t, root, resolve(t, tree, cfg))
	assert.False(t, modal.Alive())
}

func TestTree_Chrome(t *testing.T) {
	tree, root, _ := newTestTree()
	assert.True(t, tree.IsChromeVisible(root, presenter.ChromeTopBar))
	assert.True(t, tree.IsChromeVisible(root, presenter.ChromeBottomBar))

	root.BottomBar = false
	assert.False(t, tree.IsChromeVisible(root, presenter.ChromeBottomBar))
	assert.True(t, tree.IsChromeVisible(root, presenter.ChromeTopBar))
}

func TestTree_WindowHosts(t *testing.T) {
	tree, _, _ := newTestTree()

	top, err := tree.NewWindowHost(presenter.LevelTop, false)
	require.NoError(t, err)
	bottom, err := tree.NewWindowHost(presenter.LevelBottom, false)
	require.NoError(t, err)
	overlay, err := tree.NewWindowHost(presenter.LevelOverlay, true)
	require.NoError(t, err)

	require.Len(t, tree.Windows(), 3)
	assert.Same(t, bottom, tree.Windows()[0])
	assert.Same(t, top, tree.Windows()[1])
	assert.Same(t, overlay, tree.Windows()[2])
	assert.False(t, tree.IsEligible(top), "windows are never picked automatically")

	tree.RemoveWindowHost(top)
	require.Len(t, tree.Windows(), 2)
	assert.False(t, top.(*Screen).Alive())

	o := &presenter.Overlay{Content: "x"}
	assert.ErrorIs(t, top.(*Screen).Attach(o), ErrScreenReleased)
}

func TestTree_WindowHostWithoutRoot(t *testing.T) {
	tree := NewTree(nil, quietLogger())
	_, err := tree.NewWindowHost(presenter.LevelOverlay, false)
	assert.ErrorIs(t, err, ErrNoRoot)

	_, ok := tree.CurrentTopLevelHost()
	assert.False(t, ok)
}

func TestScreen_AttachTwice(t *testing.T) {
	s := NewScreen("s", "S")
	o := &presenter.Overlay{Content: "x"}
	require.NoError(t, s.Attach(o))
	assert.ErrorIs(t, s.Attach(o), ErrAlreadyAttached)

	s.Detach(o)
	assert.Empty(t, s.Overlays())
}

func TestTree_TransitionRunsFrameByFrame(t *testing.T) {
	tree, root, _ := newTestTree()
	o := &presenter.Overlay{Content: "x"}
	require.NoError(t, root.Attach(o))

	var results []bool
	tree.Transition(o, presenter.Transition{Kind: presenter.TransitionSlide, Reveal: true, Duration: fourFrames},
		func(ok bool) { results = append(results, ok) })
	assert.NotNil(t, tree.Cmd(), "a frame tick is scheduled")
	assert.Nil(t, tree.Cmd())

	frames(tree, 3)
	assert.Empty(t, results)
	_, p := tree.progress(o)
	assert.InDelta(t, 0.75, p, 1e-9)

	handled, cmd := tree.Update(frameMsg{})
	assert.True(t, handled)
	assert.Nil(t, cmd, "no tick once every transition finished")
	assert.Equal(t, []bool{true}, results)

	frames(tree, 2)
	assert.Equal(t, []bool{true}, results, "completion is reported once")
}

func TestTree_TransitionInterrupted(t *testing.T) {
	tree, root, _ := newTestTree()
	o := &presenter.Overlay{Content: "x"}
	require.NoError(t, root.Attach(o))

	var show, hide []bool
	tree.Transition(o, presenter.Transition{Reveal: true, Duration: fourFrames}, func(ok bool) { show = append(show, ok) })
	frames(tree, 2)

	tree.Transition(o, presenter.Transition{Reveal: false, Duration: fourFrames}, func(ok bool) { hide = append(hide, ok) })
	assert.Equal(t, []bool{false}, show)

	frames(tree, 2)
	assert.Equal(t, []bool{true}, hide, "the hide starts from where the show stopped")
	assert.Equal(t, []bool{false}, show)
}

func TestTree_TransitionInstant(t *testing.T) {
	tree, root, _ := newTestTree()
	o := &presenter.Overlay{Content: "x"}
	require.NoError(t, root.Attach(o))

	var results []bool
	tree.Transition(o, presenter.Transition{Reveal: true}, func(ok bool) { results = append(results, ok) })
	assert.Equal(t, []bool{true}, results)
	assert.Nil(t, tree.Cmd())
}

func TestTree_TransitionDetached(t *testing.T) {
	tree, root, _ := newTestTree()
	o := &presenter.Overlay{Content: "x"}

	var results []bool
	tree.Transition(o, presenter.Transition{Reveal: true, Duration: fourFrames}, func(ok bool) { results = append(results, ok) })
	assert.Equal(t, []bool{false}, results, "unattached overlays cannot animate")

	results = nil
	require.NoError(t, root.Attach(o))
	tree.Transition(o, presenter.Transition{Reveal: true, Duration: fourFrames}, func(ok bool) { results = append(results, ok) })
	root.Detach(o)
	frames(tree, 1)
	assert.Equal(t, []bool{false}, results)
}

func TestTree_Dispatch(t *testing.T) {
	tree, _, _ := newTestTree()

	ran := 0
	tree.Dispatch(func() { ran++ })
	assert.Equal(t, 1, ran, "without a sender closures run immediately")

	var sent []tea.Msg
	tree.SetSender(func(m tea.Msg) { sent = append(sent, m) })
	tree.Dispatch(func() { ran++ })
	assert.Equal(t, 1, ran)
	require.Len(t, sent, 1)

	handled, _ := tree.Update(sent[0])
	assert.True(t, handled)
	assert.Equal(t, 2, ran)

	handled, _ = tree.Update(tea.WindowSizeMsg{})
	assert.False(t, handled)
}

func TestTree_Dimmed(t *testing.T) {
	tree, root, _ := newTestTree()
	modal := NewScreen("modal", "Modal")
	root.Present(modal)

	a := &presenter.Overlay{Content: "a"}
	b := &presenter.Overlay{Content: "b"}
	require.NoError(t, root.Attach(a))
	require.NoError(t, modal.Attach(b))

	_, ok := tree.Dimmed()
	assert.False(t, ok)

	tree.Dim(a, presenter.ColorDim("", true))
	got, ok := tree.Dimmed()
	require.True(t, ok)
	assert.Same(t, a, got)

	tree.Dim(b, presenter.BlurDim(presenter.BlurDark, 0.8, true))
	got, _ = tree.Dimmed()
	assert.Same(t, b, got, "the topmost dim wins")

	tree.Undim(b, presenter.NoDim())
	got, _ = tree.Dimmed()
	assert.Same(t, a, got)
}
