package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"

	"github.com/llehouerou/bgm/internal/bgm"
	"github.com/llehouerou/bgm/internal/catalog"
	"github.com/llehouerou/bgm/internal/config"
	"github.com/llehouerou/bgm/internal/dispatch"
	"github.com/llehouerou/bgm/internal/errmsg"
	"github.com/llehouerou/bgm/internal/icons"
	"github.com/llehouerou/bgm/internal/keymap"
	"github.com/llehouerou/bgm/internal/notify"
	"github.com/llehouerou/bgm/internal/render"
	"github.com/llehouerou/bgm/internal/state"
)

var (
	playerBarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	titleFrom = lipgloss.Color("#ff87d7")
	titleTo   = lipgloss.Color("#87afff")
)

const (
	playerBarHeight = 3 // top border + content + bottom border
	eventBuffer     = 32
)

type tickMsg time.Time

// stderrMsg is a line the audio backend wrote to the process stderr.
type stderrMsg struct {
	line string
	ok   bool
}

// changedMsg reports a settled batch of changes below the music dir.
type changedMsg struct{ ok bool }

type scanMsg struct {
	tracks []catalog.Track
	err    error
}

// trackEvent is a completion notification of a track, forwarded from the
// host loop goroutine to the program.
type trackEvent struct {
	key    bgm.Key
	path   string
	notify dispatch.Notify
	fade   bool
}

type model struct {
	mgr   *bgm.Manager
	store state.Interface
	pacer bgm.Pacer
	fade  config.FadeConfig
	dir   string
	log   zerolog.Logger

	bindings *keymap.Resolver
	help     help.Model
	events   chan trackEvent
	notifier notify.Notifier
	notifyID uint32
	thumbs   string // notification icon cache; empty uses covers as is
	stderr   <-chan string
	changes  <-chan struct{}

	tracks []catalog.Track
	loaded map[string]bgm.Key
	cursor int
	status string
	errMsg string
	width  int
	height int
}

func newModel(
	mgr *bgm.Manager,
	store state.Interface,
	p bgm.Pacer,
	fade config.FadeConfig,
	dir string,
	log zerolog.Logger,
) model {
	return model{
		mgr:      mgr,
		store:    store,
		pacer:    p,
		fade:     fade,
		dir:      dir,
		log:      log,
		bindings: keymap.NewResolver(keymap.All),
		help:     help.New(),
		events:   make(chan trackEvent, eventBuffer),
		notifier: notify.Disabled(),
		loaded:   make(map[string]bgm.Key),
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{scanCmd(m.dir), waitEvent(m.events), tickCmd()}
	if m.stderr != nil {
		cmds = append(cmds, waitStderr(m.stderr))
	}
	if m.changes != nil {
		cmds = append(cmds, waitChanges(m.changes))
	}
	return tea.Batch(cmds...)
}

func scanCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		tracks, err := catalog.Scan(dir)
		return scanMsg{tracks: tracks, err: err}
	}
}

func waitEvent(events <-chan trackEvent) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func waitStderr(lines <-chan string) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-lines
		return stderrMsg{line: line, ok: ok}
	}
}

func waitChanges(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		_, ok := <-changes
		return changedMsg{ok: ok}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// trackCallback returns the completion callback of a track. It runs on the
// host loop or the fade worker and must not block either.
func (m model) trackCallback(key bgm.Key, path string, fade bool) dispatch.Callback {
	events := m.events
	return dispatch.CallbackFunc(func(n dispatch.Notify) {
		select {
		case events <- trackEvent{key: key, path: path, notify: n, fade: fade}:
		default:
		}
	})
}

// resume reopens the bookmarked track at its saved offset.
func (m model) resume() model {
	b, err := m.store.GetResume()
	if err != nil {
		m.errMsg = errmsg.Format(errmsg.OpResumeLoad, err)
		return m
	}
	if b == nil {
		return m
	}
	if _, err := os.Stat(b.Path); err != nil {
		m.log.Info().Str("path", b.Path).Msg("resume track is gone")
		_ = m.store.ClearResume()
		return m
	}
	key, err := m.mgr.Load(b.Path)
	if err != nil {
		m.errMsg = errmsg.FormatWith(errmsg.OpTrackLoad, filepath.Base(b.Path), err)
		return m
	}
	m.loaded[b.Path] = key
	if err := m.mgr.PlayFrom(key, b.Offset); err != nil {
		m.errMsg = errmsg.FormatWith(errmsg.OpTrackPlay, filepath.Base(b.Path), err)
		return m
	}
	m.status = fmt.Sprintf("Resumed %s at %s", filepath.Base(b.Path), formatDuration(b.Offset))
	return m
}

// saveResume bookmarks the playing track, if any.
func (m model) saveResume() {
	info, ok := m.mgr.Playing()
	if !ok {
		return
	}
	pos, err := m.mgr.Position(info.Key)
	if err != nil {
		return
	}
	m.store.SaveResume(state.Bookmark{Path: info.Path, Offset: pos})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case scanMsg:
		if msg.err != nil {
			m.errMsg = errmsg.FormatWith(errmsg.OpCatalogScan, m.dir, msg.err)
			return m, nil
		}
		m.tracks = msg.tracks
		m.cursor = min(m.cursor, max(len(m.tracks)-1, 0))
		m.status = fmt.Sprintf("%d tracks in %s", len(m.tracks), m.dir)
		return m, nil

	case changedMsg:
		if !msg.ok {
			return m, nil
		}
		return m, tea.Batch(scanCmd(m.dir), waitChanges(m.changes))

	case trackEvent:
		return m.handleEvent(msg), waitEvent(m.events)

	case tickMsg:
		m.saveResume()
		return m, tickCmd()

	case stderrMsg:
		if !msg.ok {
			return m, nil
		}
		m.log.Warn().Str("line", msg.line).Msg("audio backend")
		m.errMsg = msg.line
		return m, waitStderr(m.stderr)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleEvent(ev trackEvent) model {
	m.log.Debug().
		Uint32("key", uint32(ev.key)).
		Str("path", ev.path).
		Stringer("notify", ev.notify).
		Bool("fade", ev.fade).
		Msg("track notification")

	name := filepath.Base(ev.path)
	switch {
	case ev.fade && ev.notify == dispatch.Successful:
		m.status = "Faded out " + name
		_ = m.store.ClearResume()
	case ev.notify == dispatch.Successful:
		// End of stream leaves the track Playing until stopped.
		if _, err := m.mgr.Stop(ev.key); err != nil {
			m.errMsg = errmsg.FormatWith(errmsg.OpTrackStop, name, err)
		}
		m.status = "Finished " + name
		_ = m.store.ClearResume()
	case ev.notify == dispatch.Failure:
		m.errMsg = fmt.Sprintf("Playback of '%s' failed", name)
		m = m.desktopNotify(notify.Notification{
			Title:   "Playback failed",
			Body:    name,
			Timeout: -1,
			Urgency: notify.UrgencyCritical,
		})
	}
	return m
}

// desktopNotify shows n in place of the previous notification.
func (m model) desktopNotify(n notify.Notification) model {
	n.ReplacesID = m.notifyID
	id, err := m.notifier.Notify(n)
	if err != nil {
		m.log.Debug().Err(err).Msg("desktop notification")
		return m
	}
	m.notifyID = id
	return m
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.bindings.Resolve(msg.String())
	if action == "" {
		return m, nil
	}
	m.errMsg = ""

	switch action {
	case keymap.ActionQuit:
		m.saveResume()
		return m, tea.Quit
	case keymap.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
	case keymap.ActionMoveUp:
		m.cursor = max(m.cursor-1, 0)
	case keymap.ActionMoveDown:
		m.cursor = max(min(m.cursor+1, len(m.tracks)-1), 0)
	case keymap.ActionJumpStart:
		m.cursor = 0
	case keymap.ActionJumpEnd:
		m.cursor = max(len(m.tracks)-1, 0)
	case keymap.ActionRescan:
		return m, scanCmd(m.dir)
	case keymap.ActionPlay:
		m = m.play()
	case keymap.ActionStop:
		m = m.stop()
	case keymap.ActionFadeout:
		m = m.fadeout(false)
	case keymap.ActionFadeAll:
		m = m.fadeout(true)
	case keymap.ActionUnload:
		m = m.unload()
	}
	return m, nil
}

func (m model) selected() (catalog.Track, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tracks) {
		return catalog.Track{}, false
	}
	return m.tracks[m.cursor], true
}

func (m model) play() model {
	t, ok := m.selected()
	if !ok {
		return m
	}
	key, err := m.mgr.Load(t.Path)
	if err != nil {
		m.errMsg = errmsg.FormatWith(errmsg.OpTrackLoad, t.Title, err)
		return m
	}
	m.loaded[t.Path] = key
	if info, ok := m.mgr.Track(key); ok && info.Status == bgm.Playing {
		m.status = "Already playing " + t.Label()
		return m
	}
	if err := m.mgr.Play(key, m.trackCallback(key, t.Path, false)); err != nil {
		m.errMsg = errmsg.FormatWith(errmsg.OpTrackPlay, t.Title, err)
		return m
	}
	if err := m.store.RecordPlay(t.Path, t.Title); err != nil {
		m.log.Warn().Err(err).Str("path", t.Path).Msg("record play")
	}
	m.status = "Playing " + t.Label()
	return m.desktopNotify(notify.Notification{
		Title:   "Now playing",
		Body:    t.Label(),
		Icon:    m.icon(t.Path),
		Timeout: 4000,
		Urgency: notify.UrgencyLow,
	})
}

// icon returns the notification icon of a track: a cached thumbnail of its
// cover art when possible, else the cover itself.
func (m model) icon(trackPath string) string {
	cover := catalog.CoverArt(trackPath)
	if cover == "" || m.thumbs == "" {
		return cover
	}
	thumb, err := catalog.Thumbnail(cover, m.thumbs, catalog.ThumbnailSize)
	if err != nil {
		m.log.Debug().Err(err).Str("cover", cover).Msg("thumbnail")
		return cover
	}
	return thumb
}

// selectedKey returns the registry key of the selected track, if loaded.
func (m model) selectedKey() (catalog.Track, bgm.Key, bool) {
	t, ok := m.selected()
	if !ok {
		return t, bgm.InvalidKey, false
	}
	key, ok := m.loaded[t.Path]
	return t, key, ok
}

func (m model) stop() model {
	t, key, ok := m.selectedKey()
	if !ok {
		return m
	}
	if _, err := m.mgr.Stop(key); err != nil {
		m.errMsg = errmsg.FormatWith(errmsg.OpTrackStop, t.Title, err)
		return m
	}
	_ = m.store.ClearResume()
	m.status = "Stopped " + t.Label()
	return m
}

func (m model) fadeout(playing bool) model {
	key := bgm.MasterKey
	if !playing {
		_, k, ok := m.selectedKey()
		if !ok {
			return m
		}
		key = k
	}

	name := "playing track"
	info, ok := m.mgr.Track(key)
	if ok {
		name = filepath.Base(info.Path)
	}
	got, err := m.mgr.Fadeout(key, m.pacer, m.fade.Frames, m.trackCallback(info.Key, info.Path, true))
	if err != nil {
		m.errMsg = errmsg.FormatWith(errmsg.OpTrackFade, name, err)
		return m
	}
	m.status = fmt.Sprintf("Fading out %s (key %d)", name, got)
	return m
}

func (m model) unload() model {
	t, key, ok := m.selectedKey()
	if !ok {
		return m
	}
	if err := m.mgr.Unload(key); err != nil {
		m.errMsg = errmsg.FormatWith(errmsg.OpTrackUnload, t.Title, err)
		return m
	}
	m.status = "Unloaded " + t.Label()
	return m
}

func (m model) View() string {
	var b strings.Builder

	listHeight := m.height - playerBarHeight - 2
	if m.help.ShowAll {
		listHeight -= 4
	}
	listHeight = max(listHeight, 1)
	start := 0
	if m.cursor >= listHeight {
		start = m.cursor - listHeight + 1
	}
	end := min(start+listHeight, len(m.tracks))

	for i := start; i < end; i++ {
		t := m.tracks[i]
		label := render.Sanitize(t.Label())
		size := dimStyle.Render(t.HumanSize())
		if m.width > 0 {
			label = render.Truncate(label, max(m.width-lipgloss.Width(size)-6, 4))
		}
		line := m.marker(t.Path) + " " + label
		if m.width > 0 {
			line = render.Row(line, size, m.width-2)
		}
		if i == m.cursor {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if len(m.tracks) == 0 {
		b.WriteString(dimStyle.Render("  no music files"))
		b.WriteByte('\n')
	}

	b.WriteString(m.playerBar())
	b.WriteByte('\n')
	if m.errMsg != "" {
		b.WriteString(errStyle.Render(m.errMsg))
	} else {
		b.WriteString(m.status)
	}
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.bindings))
	return b.String()
}

func (m model) marker(path string) string {
	key, ok := m.loaded[path]
	if !ok {
		return " "
	}
	info, ok := m.mgr.Track(key)
	if !ok {
		return " "
	}
	return icons.ForStatus(info.Status)
}

func (m model) playerBar() string {
	innerWidth := max(m.width-2, 0)
	info, ok := m.mgr.Playing()
	if !ok {
		return playerBarStyle.Width(innerWidth).Render(dimStyle.Render(" "+icons.Stopped()+"  stopped"))
	}

	var right string
	if pos, err := m.mgr.Position(info.Key); err == nil {
		right = formatDuration(pos) + " "
	}
	title := render.Gradient(render.Sanitize(m.labelOf(info.Path)), titleFrom, titleTo)
	left := fmt.Sprintf(" %s  %s", m.marker(info.Path), title)
	left = ansi.Truncate(left, max(innerWidth-lipgloss.Width(right)-1, 1), "…")
	return playerBarStyle.Width(innerWidth).Render(render.Row(left, right, innerWidth))
}

// labelOf returns the catalog label of path, or its file name when the
// catalog does not list it.
func (m model) labelOf(path string) string {
	for _, t := range m.tracks {
		if t.Path == path {
			return t.Label()
		}
	}
	return filepath.Base(path)
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
