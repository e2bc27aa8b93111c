// Package tui renders the monitor view model as a bubbletea program
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kode4food/courier/internal/styles"
	"github.com/kode4food/courier/internal/sync/channel"
	"github.com/kode4food/courier/internal/viewmodel"
)

// Model is the bubbletea model of the monitor. It renders a snapshot of the
// view model that is refreshed whenever a ChangedMsg arrives
type Model struct {
	vm       *viewmodel.Model
	title    string
	status   string
	messages []string
	writers  int
	width    int
	height   int
}

// ChangedMsg tells the Model to refresh its snapshot of the view model
type ChangedMsg struct{}

// reservedLines is the number of rows taken by the title, status and help
const reservedLines = 6

// New creates a Model that renders vm
func New(vm *viewmodel.Model, title string) Model {
	m := Model{vm: vm, title: title}
	return m.refresh()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ChangedMsg:
		return m.refresh(), nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedStyle.Render("Status: "))
	b.WriteString(statusStyle(m.writers, m.status).Render(m.status))
	b.WriteString("\n\n")

	for _, line := range m.visible() {
		stamp, text, ok := strings.Cut(line, " - ")
		if !ok {
			b.WriteString(styles.TextStyle.Render(line))
		} else {
			b.WriteString(styles.MutedStyle.Render(stamp + " - "))
			b.WriteString(messageStyle(text).Render(text))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render(
		fmt.Sprintf("%d messages • q to quit", len(m.messages)),
	))
	if m.width > 0 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(b.String())
	}
	return b.String()
}

// visible returns the messages that fit the window, newest first
func (m Model) visible() []string {
	if m.height <= reservedLines || len(m.messages) <= m.height-reservedLines {
		return m.messages
	}
	return m.messages[:m.height-reservedLines]
}

func (m Model) refresh() Model {
	m.status = m.vm.Status()
	m.messages = m.vm.Messages()
	m.writers = m.vm.Writers()
	return m
}

func statusStyle(writers int, status string) lipgloss.Style {
	switch {
	case writers > 0:
		return styles.SuccessStyle
	case strings.HasPrefix(status, "Error"):
		return styles.ErrorStyle
	case status == viewmodel.StatusWaiting:
		return styles.WarningStyle
	default:
		return styles.MutedStyle
	}
}

func messageStyle(text string) lipgloss.Style {
	if strings.HasPrefix(text, "[Error]") {
		return styles.ErrorStyle
	}
	return styles.TextStyle
}

// Run shows vm until the user quits or the Context is done. View model
// changes are coalesced and marshaled onto the program's event loop, so
// observers never block the goroutine that changed the model
func Run(
	ctx context.Context, vm *viewmodel.Model, title string,
	opts ...tea.ProgramOption,
) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(vm, title), opts...)

	ready := channel.MakeReadyWait()
	cancel := vm.Subscribe(ready.Notify)
	go func() {
		for range ready.Wait() {
			p.Send(ChangedMsg{})
		}
	}()
	defer func() {
		cancel()
		ready.Close()
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
