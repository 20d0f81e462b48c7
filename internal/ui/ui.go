// Package ui renders the playlist player as a bubbletea program.
package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/tunedeck/internal/app/notification"
	"github.com/osa030/tunedeck/internal/app/player"
	"github.com/osa030/tunedeck/internal/media"
)

// Player is the part of [player.Player] the TUI drives.
type Player interface {
	AddFiles(ctx context.Context, paths ...string) (player.AddResult, error)
	ToggleLike(index int) error
	Select(ctx context.Context, index int) error
	SeekRelative(delta time.Duration) error
	Remove(index int) error
	Snapshot() player.View
	Subscribe() (string, <-chan notification.Envelope[player.View])
	Unsubscribe(id string)
}

// Options configures the TUI.
type Options struct {
	Title      string
	SeekStep   time.Duration
	StartDir   string
	ShowHidden bool
}

// Mode represents the current screen.
type Mode int

const (
	ListMode Mode = iota
	PickerMode
)

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	player Player
	opts   Options

	mode      Mode
	view      player.View
	seq       uint64
	subID     string
	updates   <-chan notification.Envelope[player.View]
	cursor    int
	likedOnly bool
	notice    string

	width    int
	height   int
	picker   filepicker.Model
	progress progress.Model
	help     help.Model
	keys     keyMap
}

// NewModel creates a TUI model subscribed to the player's views.
func NewModel(ctx context.Context, p Player, opts Options) *Model {
	if opts.Title == "" {
		opts.Title = "Playlist Player"
	}
	if opts.SeekStep <= 0 {
		opts.SeekStep = 5 * time.Second
	}

	picker := filepicker.New()
	picker.AllowedTypes = media.AudioExtensionList()
	picker.ShowHidden = opts.ShowHidden
	picker.CurrentDirectory = opts.StartDir
	if picker.CurrentDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			picker.CurrentDirectory = wd
		}
	}

	subID, updates := p.Subscribe()

	return &Model{
		ctx:     ctx,
		player:  p,
		opts:    opts,
		mode:    ListMode,
		view:    p.Snapshot(),
		subID:   subID,
		updates: updates,
		picker:  picker,
		progress: progress.New(
			progress.WithScaledGradient(styles.gradient[0], styles.gradient[1]),
			progress.WithoutPercentage(),
		),
		help: help.New(),
		keys: newKeyMap(),
	}
}

// Close stops the view subscription.
func (m *Model) Close() {
	m.player.Unsubscribe(m.subID)
}

// Init starts listening for player views.
func (m *Model) Init() tea.Cmd {
	return m.waitForView()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = max(msg.Width-24, 10)
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case viewMsg:
		if msg.SequenceNo > m.seq {
			m.seq = msg.SequenceNo
			m.view = msg.Value
			m.clampCursor()
		}
		return m, m.waitForView()

	case subscriptionClosedMsg:
		zlog.Debug().Msg("ui: player closed the view subscription")
		return m, tea.Quit

	case filesAddedMsg:
		switch {
		case msg.err != nil:
			m.notice = msg.err.Error()
		case len(msg.result.Rejected) == 0:
			m.notice = fmt.Sprintf("added %d file(s)", len(msg.result.Added))
		default:
			// The player status describes the rejections.
			m.notice = ""
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case PickerMode:
			return m.handlePickerKeys(msg)
		default:
			return m.handleListKeys(msg)
		}
	}

	// Directory listings and other picker internals.
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

// View renders the UI based on the current mode.
func (m *Model) View() string {
	switch m.mode {
	case PickerMode:
		return m.renderPicker()
	default:
		return m.renderList()
	}
}

// Mode returns the current screen.
func (m *Model) Mode() Mode {
	return m.mode
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.down):
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.toggle):
		if row, ok := m.selected(); ok {
			return m, m.selectTrack(row.Index)
		}

	case key.Matches(msg, m.keys.like):
		if row, ok := m.selected(); ok {
			m.report(m.player.ToggleLike(row.Index))
		}

	case key.Matches(msg, m.keys.remove):
		if row, ok := m.selected(); ok {
			m.report(m.player.Remove(row.Index))
		}

	case key.Matches(msg, m.keys.liked):
		m.likedOnly = !m.likedOnly
		m.cursor = 0

	case key.Matches(msg, m.keys.forward):
		if m.view.ScrubberEnabled {
			m.report(m.player.SeekRelative(m.opts.SeekStep))
		}

	case key.Matches(msg, m.keys.rewind):
		if m.view.ScrubberEnabled {
			m.report(m.player.SeekRelative(-m.opts.SeekStep))
		}

	case key.Matches(msg, m.keys.add):
		m.mode = PickerMode
		return m, m.picker.Init()
	}

	return m, nil
}

func (m *Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.mode = ListMode
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		return m, tea.Batch(cmd, m.addFiles(path))
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.notice = fmt.Sprintf("%s is not an audio file", path)
	}
	return m, cmd
}

// rows returns the rows shown by the current filter.
func (m *Model) rows() []player.Row {
	if m.likedOnly {
		return m.view.LikedRows()
	}
	return m.view.Rows
}

func (m *Model) selected() (player.Row, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return player.Row{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) clampCursor() {
	if n := len(m.rows()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *Model) report(err error) {
	if err != nil {
		zlog.Debug().Msgf("ui: action failed: %v", err)
		m.notice = err.Error()
	}
}

func (m *Model) waitForView() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		env, ok := <-updates
		if !ok {
			return subscriptionClosedMsg{}
		}
		return viewMsg(env)
	}
}

// selectTrack loads off the update loop; decoding can take a moment.
func (m *Model) selectTrack(index int) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: m.player.Select(m.ctx, index)}
	}
}

func (m *Model) addFiles(paths ...string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.player.AddFiles(m.ctx, paths...)
		return filesAddedMsg{result: result, err: err}
	}
}

func (m *Model) renderList() string {
	var b strings.Builder

	title := m.opts.Title
	if m.likedOnly {
		title += " ♥"
	}
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")

	rows := m.rows()
	if len(rows) == 0 {
		if m.likedOnly {
			b.WriteString(styles.help.Render("No liked tracks. Press f to show all."))
		} else {
			b.WriteString(styles.help.Render("No tracks. Press a to add files."))
		}
		b.WriteString("\n")
	}
	for i, row := range rows {
		b.WriteString(m.renderRow(row, i == m.cursor))
		b.WriteString("\n")
	}

	if m.view.ScrubberEnabled {
		b.WriteString("\n")
		b.WriteString(m.progress.ViewAs(m.view.Progress()))
		b.WriteString("  ")
		b.WriteString(styles.readout.Render(m.view.Readout()))
		b.WriteString("\n")
	}

	if status := m.status(); status != "" {
		b.WriteString("\n")
		b.WriteString(styles.warn.Render(status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderRow(row player.Row, current bool) string {
	cursor := "  "
	if current {
		cursor = styles.cursor.Render("> ")
	}

	icon := "▶"
	if row.Playing {
		icon = "⏸"
	}

	like := "♡"
	if row.Liked {
		like = styles.liked.Render("♥")
	}

	name := row.Name
	switch {
	case row.Unplayable:
		name = styles.muted.Render(name) + " " + styles.err.Render("(unplayable)")
	case row.Active:
		name = styles.active.Render(name)
	}
	if row.Subtitle != "" {
		name += " " + styles.help.Render(row.Subtitle)
	}

	return cursor + icon + " " + like + " " + name
}

func (m *Model) renderPicker() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Add files"))
	b.WriteString("\n")
	b.WriteString(m.picker.CurrentDirectory)
	b.WriteString("\n\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n")
	if status := m.status(); status != "" {
		b.WriteString(styles.warn.Render(status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.pick, m.keys.back}))
	return b.String()
}

// status prefers the local notice over the player's status.
func (m *Model) status() string {
	if m.notice != "" {
		return m.notice
	}
	return m.view.Status
}
