// URC TUI - terminal chat client for URC.
//
// Logs in, opens one conversation (a direct message peer or a room) and
// keeps it in sync: outgoing messages appear immediately as pending local
// entries and are finalized in place when the server acknowledges them,
// while a background poll refreshes the confirmed timeline.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/achrafidrissi/urc/clients/go/urc"
	"github.com/achrafidrissi/urc/internal/chat"
)

const pollInterval = 3 * time.Second

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	ownStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	peerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type fetchedMsg struct {
	scope string
	msgs  []chat.DisplayMessage
}

type fetchErrMsg struct {
	scope string
	err   error
}

type sentMsg struct {
	tempID    string
	serverID  string
	timestamp int64
}

type sendErrMsg struct {
	tempID string
	err    error
}

type tickMsg time.Time

type model struct {
	client *urc.Client
	view   *urc.ConversationView

	roomID      string // empty for a direct conversation
	recipientID string
	peerName    string

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model
	ready    bool
	quitting bool
}

func newModel(client *urc.Client, view *urc.ConversationView, roomID, recipientID, peerName string) model {
	input := textinput.New()
	input.Placeholder = "Type a message"
	input.CharLimit = 4096
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return model{
		client:      client,
		view:        view,
		roomID:      roomID,
		recipientID: recipientID,
		peerName:    peerName,
		input:       input,
		spin:        spin,
	}
}

func (m model) Init() tea.Cmd {
	m.view.BeginFetch()
	return tea.Batch(textinput.Blink, m.spin.Tick, m.fetchCmd(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetchCmd fetches the timeline for the view's scope. The scope rides along
// on the result so a response that arrives after the user switched
// conversations is dropped by the view, not merged.
func (m model) fetchCmd() tea.Cmd {
	scope := m.view.Scope()
	roomID := m.roomID
	recipientID := m.recipientID
	client := m.client
	return func() tea.Msg {
		if roomID != "" {
			resp, err := client.FetchRoomMessages(roomID)
			if err != nil {
				return fetchErrMsg{scope: scope, err: err}
			}
			return fetchedMsg{scope: scope, msgs: resp.Messages}
		}
		resp, err := client.FetchDirectMessages(recipientID)
		if err != nil {
			return fetchErrMsg{scope: scope, err: err}
		}
		return fetchedMsg{scope: scope, msgs: resp.Messages}
	}
}

// sendCmd submits one message. The provisional entry is already on screen;
// the result confirms or fails it by temp id.
func (m model) sendCmd(tempID, content string) tea.Cmd {
	roomID := m.roomID
	recipientID := m.recipientID
	client := m.client
	return func() tea.Msg {
		if roomID != "" {
			resp, err := client.PostRoomMessage(roomID, content)
			if err != nil {
				return sendErrMsg{tempID: tempID, err: err}
			}
			return sentMsg{tempID: tempID, serverID: resp.ID, timestamp: resp.Timestamp}
		}
		resp, err := client.SendDirectMessage(content, recipientID)
		if err != nil {
			return sendErrMsg{tempID: tempID, err: err}
		}
		return sentMsg{tempID: tempID, serverID: resp.ID, timestamp: resp.Timestamp}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.input.Width = msg.Width - 4
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			content := strings.TrimSpace(m.input.Value())
			if content == "" {
				return m, nil
			}
			m.input.Reset()
			tempID := m.view.AppendLocal(content)
			m.refresh()
			return m, m.sendCmd(tempID, content)
		}

	case fetchedMsg:
		if m.view.MergeFetch(msg.scope, msg.msgs) {
			m.refresh()
		}
		return m, nil

	case fetchErrMsg:
		m.view.FailFetch(msg.scope, msg.err.Error())
		return m, nil

	case sentMsg:
		if m.view.Confirm(msg.tempID, msg.serverID, msg.timestamp) {
			m.refresh()
		}
		return m, nil

	case sendErrMsg:
		m.view.Fail(msg.tempID, msg.err.Error())
		m.refresh()
		return m, nil

	case tickMsg:
		m.view.BeginFetch()
		return m, tea.Batch(m.fetchCmd(), tick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// refresh re-renders the timeline into the viewport and pins the scroll to
// the newest entry.
func (m *model) refresh() {
	if !m.ready {
		return
	}
	var b strings.Builder
	for _, e := range m.view.Entries() {
		ts := time.UnixMilli(e.Timestamp).Format("15:04:05")
		name := e.SenderName
		if e.IsOwn {
			name = "me"
		}
		line := fmt.Sprintf("%s %s: %s", timeStyle.Render(ts), name, e.Content)
		switch e.Delivery {
		case urc.DeliveryPending:
			line = pendingStyle.Render(line + " (sending)")
		case urc.DeliveryFailed:
			line = failedStyle.Render(line + " (failed)")
		default:
			if e.IsOwn {
				line = ownStyle.Render(line)
			} else {
				line = peerStyle.Render(line)
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	status := ""
	switch m.view.Status() {
	case urc.StatusLoading:
		status = m.spin.View() + " syncing"
	case urc.StatusFailed:
		status = failedStyle.Render("sync failed: " + m.view.LastError())
	}

	header := titleStyle.Render("URC - "+m.peerName) + "  " + statusStyle.Render(status)
	return header + "\n\n" + m.viewport.View() + "\n\n" + m.input.View()
}

func main() {
	var (
		baseURL  = flag.String("url", envOr("URC_URL", "http://localhost:8080"), "server URL")
		username = flag.String("user", os.Getenv("URC_USER"), "username")
		password = flag.String("pass", os.Getenv("URC_PASS"), "password")
		roomID   = flag.String("room", "", "room id to join")
		toID     = flag.String("to", "", "recipient user id for a direct conversation")
	)
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "urc-tui: -user and -pass (or URC_USER/URC_PASS) are required")
		os.Exit(1)
	}
	if (*roomID == "") == (*toID == "") {
		fmt.Fprintln(os.Stderr, "urc-tui: exactly one of -room or -to is required")
		os.Exit(1)
	}

	client := urc.NewClient(*baseURL)
	login, err := client.Login(*username, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "urc-tui: login failed:", err)
		os.Exit(1)
	}

	var scope, peerName string
	if *roomID != "" {
		scope = *roomID
		peerName = "room " + *roomID
		rooms, err := client.ListRooms()
		if err == nil {
			for _, room := range rooms.Rooms {
				if room.ID == *roomID {
					peerName = room.Name
				}
			}
		}
	} else {
		key, err := chat.DeriveKey(login.UserID, *toID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "urc-tui:", err)
			os.Exit(1)
		}
		scope = key
		peerName = *toID
		users, err := client.ListUsers()
		if err == nil {
			for _, u := range users.Users {
				if u.ID == *toID {
					peerName = u.Username
				}
			}
		}
	}

	view := urc.NewConversationView(scope, login.UserID, login.Username)
	m := newModel(client, view, *roomID, *toID, peerName)

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "urc-tui:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
