package main

import (
	"log"
	"sync"
	"time"

	"github.com/odvcencio/scribe/editor"
	"github.com/odvcencio/scribe/preview"
)

// App wires the buffer, renderer, swap engine, bridge and navigator into
// one host. Buffer edits schedule a debounced render pass; clicks from the
// web client travel bridge -> navigator -> buffer; swap plans travel back
// out over the broadcaster.
type App struct {
	cfg Config

	mu    sync.Mutex
	buf   *editor.Buffer
	index *preview.Index
	html  string
	timer *time.Timer

	renderMu sync.Mutex

	rend   *preview.Renderer
	swap   *preview.SwapEngine
	bridge *preview.Bridge
	nav    *preview.Navigator

	broadcast func(method string, params any)
}

func NewApp(cfg Config) *App {
	a := &App{
		cfg:       cfg,
		buf:       editor.NewBuffer(),
		rend:      preview.NewRenderer(cfg.Theme),
		swap:      preview.NewSwapEngine(),
		broadcast: func(string, any) {},
	}
	a.buf.SetVisibleLines(cfg.VisibleLines)
	a.nav = preview.NewNavigator(&appSurface{app: a}, a.currentIndex)
	a.nav.SetSettleDelay(cfg.ScrollSettle)
	a.bridge = preview.NewBridge(a.nav.Navigate)
	return a
}

// SetBroadcaster installs the notification sink. The server is constructed
// after the app, so this is set late rather than passed to NewApp.
func (a *App) SetBroadcaster(fn func(method string, params any)) {
	a.mu.Lock()
	a.broadcast = fn
	a.mu.Unlock()
}

func (a *App) notify(method string, params any) {
	a.mu.Lock()
	fn := a.broadcast
	a.mu.Unlock()
	fn(method, params)
}

// OpenDocument loads a file into the buffer and renders it immediately.
func (a *App) OpenDocument(path string) error {
	a.mu.Lock()
	err := a.buf.Open(path)
	a.mu.Unlock()
	if err != nil {
		return err
	}
	a.renderPass()
	return nil
}

func (a *App) currentIndex() *preview.Index {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.index
}

// scheduleRender coalesces bursts of edits into one render pass.
func (a *App) scheduleRender() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.cfg.Debounce, a.renderPass)
}

// renderPass renders the current buffer, swaps in the new index, and
// broadcasts the swap plan. Pending interaction state from the previous
// pass is dropped with it. Passes are serialized so a slow render can
// never publish over a newer one.
func (a *App) renderPass() {
	a.renderMu.Lock()
	defer a.renderMu.Unlock()

	a.mu.Lock()
	text := a.buf.Text()
	prev := a.index
	a.mu.Unlock()

	html, ix, err := a.rend.Render([]byte(text))
	if err != nil {
		log.Printf("app: render failed: %v", err)
		a.notify("status", map[string]string{"text": "render failed"})
		return
	}

	plan := a.swap.Plan(prev, ix, html)

	a.mu.Lock()
	a.index = ix
	a.html = html
	a.mu.Unlock()

	a.bridge.ResetPass()
	a.notify("swap", plan)
}

// --- web.Host ---------------------------------------------------------

func (a *App) DocumentPath() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.Path()
}

func (a *App) ReadBuffer() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.Text(), nil
}

func (a *App) WriteBuffer(text string) error {
	a.mu.Lock()
	a.buf.SetText(text)
	a.mu.Unlock()
	a.scheduleRender()
	return nil
}

func (a *App) SaveFile() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.Save()
}

func (a *App) CurrentView() (string, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	passID := ""
	if a.index != nil {
		passID = a.index.PassID()
	}
	return passID, a.html
}

func (a *App) HandleClick(args []any) error {
	return a.bridge.HandleClick(args)
}

func (a *App) HandleHover(uid string, entered bool) {
	a.bridge.HandleHover(uid, entered)
}

func (a *App) HandleViewport(anchorUID string, pixelDelta int) {
	a.swap.SetViewport(preview.ViewportState{AnchorUID: anchorUID, PixelDelta: pixelDelta})
}

// appSurface exposes the buffer to the navigator and mirrors the final
// selection state out to connected clients once focus lands.
type appSurface struct {
	app *App
}

func (s *appSurface) Text() string {
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	return s.app.buf.Text()
}

func (s *appSurface) OffsetToLine(offset int, bias editor.Bias) int {
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	return s.app.buf.OffsetToLine(offset, bias)
}

func (s *appSurface) LineText(line int) string {
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	return s.app.buf.LineText(line)
}

func (s *appSurface) AbsoluteOffset(line, col int) int {
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	return s.app.buf.AbsoluteOffset(line, col)
}

func (s *appSurface) SelectRange(start, end int) {
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	s.app.buf.SelectRange(start, end)
}

func (s *appSurface) MoveCursor(offset int) {
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	s.app.buf.MoveCursor(offset)
}

func (s *appSurface) ScrollToLine(line int) {
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	s.app.buf.ScrollToLine(line)
}

func (s *appSurface) VisibleLines() int {
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	return s.app.buf.VisibleLines()
}

// Focus is the last step of a navigation, so the settled selection and
// scroll position are pushed to clients here.
func (s *appSurface) Focus() {
	s.app.mu.Lock()
	s.app.buf.Focus()
	rng := s.app.buf.Selection().Range()
	top := s.app.buf.TopLine()
	s.app.mu.Unlock()

	s.app.notify("select", map[string]int{
		"start":   rng.Start,
		"end":     rng.End,
		"topLine": top,
	})
}
