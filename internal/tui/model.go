package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/sundown/internal/constants"
	"github.com/julianstephens/sundown/internal/countdown"
	"github.com/julianstephens/sundown/internal/notify"
	"github.com/julianstephens/sundown/internal/schedule"
	"github.com/julianstephens/sundown/internal/tui/components/schedulelist"
)

// Options wires the model to the schedule set and countdown engine. Popups
// raised by the engine must be routed into Popups so the model can render
// them.
type Options struct {
	Set          *schedule.Set
	Engine       *countdown.Engine
	Popups       *notify.Queue
	Clock        countdown.Clock
	PopupTimeout time.Duration
	// Notice is shown under the schedule list, e.g. when another process
	// owns the shutdown
	Notice string
}

type activePopup struct {
	id int
	notify.Popup
}

type Model struct {
	ctx          context.Context
	set          *schedule.Set
	engine       *countdown.Engine
	popups       *notify.Queue
	clock        countdown.Clock
	popupTimeout time.Duration

	state        constants.SessionState
	keys         KeyMap
	help         help.Model
	scheduleList schedulelist.Model
	form         *huh.Form
	addForm      *AddFormModel
	formError    string
	statusError  string
	notice       string

	popup       *activePopup
	pending     []notify.Popup
	lastPopupID int

	quitting bool
	width    int
	height   int
}

func NewModel(ctx context.Context, opts Options) Model {
	if opts.Clock == nil {
		opts.Clock = countdown.RealClock
	}
	if opts.Popups == nil {
		opts.Popups = notify.NewQueue()
	}
	if opts.PopupTimeout <= 0 {
		opts.PopupTimeout = constants.DefaultPopupTimeout
	}

	now := opts.Clock.Now()
	return Model{
		ctx:          ctx,
		set:          opts.Set,
		engine:       opts.Engine,
		popups:       opts.Popups,
		clock:        opts.Clock,
		popupTimeout: opts.PopupTimeout,
		notice:       opts.Notice,
		state:        constants.StateSchedules,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		scheduleList: schedulelist.New(opts.Set.Upcoming(now), now, 0, 0),
	}
}

func (m Model) ShortHelp() []key.Binding {
	switch {
	case m.popup != nil:
		return []key.Binding{m.keys.Dismiss}
	case m.state == constants.StateAdd:
		return []key.Binding{m.keys.Back}
	}
	return []key.Binding{m.keys.Tab, m.keys.Add, m.keys.Cancel, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Back}
	actions := []key.Binding{m.keys.Add, m.keys.Cancel, m.keys.Dismiss}
	return [][]key.Binding{global, navigation, actions}
}

// Init starts one tick chain for every schedule still ahead
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, entry := range m.set.Upcoming(m.clock.Now()) {
		token := m.engine.Track(entry.Schedule)
		cmds = append(cmds, tickCmd(entry.Schedule.ID, token))
	}
	return tea.Batch(cmds...)
}

type tickMsg struct {
	ID    string
	Token uint64
	Time  time.Time
}

type popupExpiredMsg struct {
	ID int
}

// StoreChangedMsg reports that another process rewrote the schedule store
type StoreChangedMsg struct{}

func tickCmd(id string, token uint64) tea.Cmd {
	return tea.Tick(constants.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg{ID: id, Token: token, Time: t}
	})
}

func popupExpireCmd(id int, timeout time.Duration) tea.Cmd {
	return tea.Tick(timeout, func(time.Time) tea.Msg {
		return popupExpiredMsg{ID: id}
	})
}
