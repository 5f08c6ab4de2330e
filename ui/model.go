package ui

import (
	"context"
	"time"

	"github.com/agnosto/chirp/compose"
	"github.com/agnosto/chirp/notifications"
	"github.com/agnosto/chirp/posts"
	"github.com/agnosto/chirp/stream"
	"github.com/agnosto/chirp/timeline"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type AppState int

const (
	TimelineState AppState = iota
	ComposeState
)

// lines each post takes on screen, separator included
const postLines = 4

// CacheReader is the read side of the local cache.
type CacheReader interface {
	RecentPosts(ctx context.Context) ([]posts.Post, error)
	Count(ctx context.Context) (int64, error)
}

// Deps are the collaborators the TUI drives. Cache, Listener and Notifier may be nil.
type Deps struct {
	Controller *timeline.Controller
	Composer   *compose.Composer
	Cache      CacheReader
	Listener   *stream.Listener
	Notifier   *notifications.NotificationService
}

type MainModel struct {
	version        string
	quit           bool
	state          AppState
	controller     *timeline.Controller
	composer       *compose.Composer
	cache          CacheReader
	listener       *stream.Listener
	notifier       *notifications.NotificationService
	items          []posts.Post
	fromCache      bool
	cursorPos      int
	viewportStart  int
	loading        bool
	loadingMore    bool
	liking         bool
	publishing     bool
	loadingMessage string
	spinner        spinner.Model
	input          textinput.Model
	keys           keyMap
	help           help.Model
	width          int
	height         int
	message        string
	errMessage     string
	newPosts       int
	cachedCount    int64
	syncedAt       time.Time
	listEvents     chan timeline.Event
	streamPosts    chan posts.Post
	streamErr      chan error
	unsubscribe    func()
	ctx            context.Context
	cancel         context.CancelFunc
	now            func() time.Time
}

type cacheLoadedMsg struct {
	Posts []posts.Post
	Count int64
	Err   error
}

type refreshDoneMsg struct {
	Count int64
	Err   error
}

type loadMoreDoneMsg struct {
	Added int
	Count int64
	Err   error
}

type likeDoneMsg struct {
	Post posts.Post
	Err  error
}

type publishDoneMsg struct {
	Post posts.Post
	Err  error
}

type listChangedMsg struct {
	Event timeline.Event
}

type newPostMsg struct {
	Post posts.Post
}

type streamStoppedMsg struct {
	Err error
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Like    key.Binding
	Compose key.Binding
	Help    key.Binding
	Quit    key.Binding
	Back    key.Binding
	Submit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Refresh, k.Like, k.Compose, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Refresh, k.Like},
		{k.Compose, k.Submit, k.Back},
		{k.Help, k.Quit},
	}
}

var defaultKeyMap = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Like: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "like/unlike"),
	),
	Compose: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "compose"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back to timeline"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "post"),
	),
}

func NewMainModel(deps Deps, version string) *MainModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#f5c2e7"))

	input := textinput.New()
	input.Placeholder = "What's happening?"
	input.Prompt = "> "

	ctx, cancel := context.WithCancel(context.Background())
	m := &MainModel{
		version:        version,
		state:          TimelineState,
		controller:     deps.Controller,
		composer:       deps.Composer,
		cache:          deps.Cache,
		listener:       deps.Listener,
		notifier:       deps.Notifier,
		loading:        true,
		loadingMessage: "Loading your timeline",
		spinner:        s,
		input:          input,
		keys:           defaultKeyMap,
		help:           help.New(),
		listEvents:     make(chan timeline.Event, 16),
		streamPosts:    make(chan posts.Post, 16),
		streamErr:      make(chan error, 1),
		ctx:            ctx,
		cancel:         cancel,
		now:            time.Now,
	}

	events := m.listEvents
	m.unsubscribe = deps.Controller.List().Subscribe(func(ev timeline.Event) {
		// A dropped event is harmless: every event re-reads the whole list.
		select {
		case events <- ev:
		default:
		}
	})
	return m
}

func (m *MainModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.loadCacheCmd(),
		m.refreshCmd(),
		m.waitForListEvent(),
		m.startStreamCmd(),
	)
}

// Cleanup stops background work. Results of requests still in flight are dropped.
func (m *MainModel) Cleanup() {
	m.cancel()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}
