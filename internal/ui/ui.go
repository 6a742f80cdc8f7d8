// Package ui implements the interactive terminal flow for browsing the
// catalog and assembling a media pack.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dhmun/mediapack/internal/catalog"
	"github.com/dhmun/mediapack/internal/models"
	"github.com/dhmun/mediapack/internal/shared"
	"github.com/dhmun/mediapack/internal/tasks"
)

// ViewState tracks which screen of the flow is active.
type ViewState int

const (
	CatalogView ViewState = iota
	FormView
	ConfirmView
	CreateView
	ResultView
)

// Model is the bubbletea model driving the pack creation flow.
type Model struct {
	ctx     context.Context
	catalog *catalog.Engine
	packs   *tasks.PackEngine

	view    ViewState
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int
	height  int

	contents    []*models.Content
	contentList list.Model
	selected    map[string]bool

	nameInput    textinput.Model
	messageInput textinput.Model
	focusMessage bool

	progressChan chan tasks.ProgressUpdate
	progressLog  []string

	result *tasks.CreatePackResult
	err    error
}

// NewModel wires the TUI against the catalog and pack engines.
func NewModel(ctx context.Context, cat *catalog.Engine, packs *tasks.PackEngine) Model {
	name := textinput.New()
	name.Placeholder = "Pack name"
	name.CharLimit = models.PackNameMaxLen
	name.Focus()

	message := textinput.New()
	message.Placeholder = "Message to the recipient"
	message.CharLimit = models.PackMessageMaxLen

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.help

	return Model{
		ctx:          ctx,
		catalog:      cat,
		packs:        packs,
		view:         CatalogView,
		keys:         newKeyMap(),
		help:         help.New(),
		spinner:      sp,
		selected:     make(map[string]bool),
		nameInput:    name,
		messageInput: message,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchContents(), m.spinner.Tick)
}

func (m Model) fetchContents() tea.Cmd {
	return func() tea.Msg {
		result, err := m.catalog.Query(catalog.Params{Limit: catalog.MaxLimit})
		if err != nil {
			return contentsFetchedMsg{err: err}
		}
		return contentsFetchedMsg{contents: result.Contents}
	}
}

func (m Model) createPack() tea.Cmd {
	progress := m.progressChan
	input := tasks.CreatePackInput{
		Name:               strings.TrimSpace(m.nameInput.Value()),
		Message:            strings.TrimSpace(m.messageInput.Value()),
		SelectedContentIDs: m.selectedIDs(),
	}

	return func() tea.Msg {
		result, err := m.packs.CreatePack(m.ctx, progress, input)
		close(progress)
		return packCreatedMsg{result: result, err: err}
	}
}

func (m Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	return func() tea.Msg {
		update, ok := <-progress
		return progressMsg{update: update, ok: ok}
	}
}

func (m Model) selectedIDs() []string {
	ids := make([]string, 0, len(m.selected))
	for _, c := range m.contents {
		if m.selected[c.ID()] {
			ids = append(ids, c.ID())
		}
	}
	return ids
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.contents != nil {
			m.contentList.SetSize(msg.Width-4, msg.Height-6)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case contentsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = ResultView
			return m, nil
		}
		m.contents = msg.contents
		m.contentList = newContentList(m.contents, m.selected)
		if m.width > 0 {
			m.contentList.SetSize(m.width-4, m.height-6)
		}
		return m, nil

	case progressMsg:
		if !msg.ok {
			return m, nil
		}
		m.progressLog = append(m.progressLog, msg.update.Message)
		return m, m.waitForProgress()

	case packCreatedMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) && m.view != FormView {
		return m, tea.Quit
	}

	switch m.view {
	case CatalogView:
		return m.updateCatalogView(msg)
	case FormView:
		return m.updateFormView(msg)
	case ConfirmView:
		return m.updateConfirmView(msg)
	case ResultView:
		if key.Matches(msg, m.keys.restart) {
			fresh := NewModel(m.ctx, m.catalog, m.packs)
			fresh.width, fresh.height = m.width, m.height
			return fresh, fresh.Init()
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) updateCatalogView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.toggle):
		if item, ok := m.contentList.SelectedItem().(contentItem); ok {
			id := item.content.ID()
			m.selected[id] = !m.selected[id]
			item.selected = m.selected[id]
			m.contentList.SetItem(m.contentList.Index(), item)
		}
		return m, nil

	case key.Matches(msg, m.keys.enter):
		if len(m.selected) == 0 {
			return m, nil
		}
		m.view = FormView
		m.nameInput.Focus()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.contentList, cmd = m.contentList.Update(msg)
	return m, cmd
}

func (m Model) updateFormView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = CatalogView
		return m, nil

	case key.Matches(msg, m.keys.tab):
		m.focusMessage = !m.focusMessage
		if m.focusMessage {
			m.nameInput.Blur()
			return m, m.messageInput.Focus()
		}
		m.messageInput.Blur()
		return m, m.nameInput.Focus()

	case key.Matches(msg, m.keys.enter):
		if strings.TrimSpace(m.nameInput.Value()) == "" {
			return m, nil
		}
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	if m.focusMessage {
		m.messageInput, cmd = m.messageInput.Update(msg)
	} else {
		m.nameInput, cmd = m.nameInput.Update(msg)
	}
	return m, cmd
}

func (m Model) updateConfirmView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = CreateView
		m.progressChan = make(chan tasks.ProgressUpdate, 8)
		return m, tea.Batch(m.createPack(), m.waitForProgress(), m.spinner.Tick)

	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = FormView
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	switch m.view {
	case CatalogView:
		if m.contents == nil {
			b.WriteString(fmt.Sprintf("\n  %s Loading catalog...\n", m.spinner.View()))
			break
		}
		b.WriteString(m.contentList.View())
		b.WriteString("\n")
		b.WriteString(styles.help.Render(fmt.Sprintf("  %d selected (need %d-%d)", len(m.selectedIDs()), models.PackMinContents, models.PackMaxContents)))

	case FormView:
		b.WriteString(styles.title.Render("Name your pack"))
		b.WriteString("\n\n  ")
		b.WriteString(m.nameInput.View())
		b.WriteString("\n  ")
		b.WriteString(m.messageInput.View())
		b.WriteString("\n\n")
		b.WriteString(styles.help.Render("  tab switch field · enter continue · esc back"))

	case ConfirmView:
		b.WriteString(styles.title.Render("Create this pack?"))
		b.WriteString(fmt.Sprintf("\n\n  Name:     %s\n  Message:  %s\n  Contents: %d\n  Size:     %s\n\n",
			m.nameInput.Value(), m.messageInput.Value(), len(m.selectedIDs()), shared.FormatSize(m.totalSizeMB())))
		b.WriteString(styles.help.Render("  y create · n back"))

	case CreateView:
		b.WriteString(fmt.Sprintf("\n  %s Creating pack...\n\n", m.spinner.View()))
		for _, line := range m.progressLog {
			b.WriteString(styles.help.Render("  " + line))
			b.WriteString("\n")
		}

	case ResultView:
		if m.err != nil {
			b.WriteString(styles.err.Render("✗ Pack creation failed"))
			b.WriteString(fmt.Sprintf("\n\n  %v\n\n", m.err))
		} else if m.result != nil {
			b.WriteString(styles.ok.Render("✓ Pack created"))
			b.WriteString(fmt.Sprintf("\n\n  Slug:   %s\n  Serial: #%d\n  Items:  %d\n",
				m.result.ShareSlug, m.result.Serial, len(m.result.ContentIDs)))
			for _, skip := range m.result.Reconciliation.Skipped {
				b.WriteString(styles.warn.Render(fmt.Sprintf("  skipped %s: %s", skip.ID, skip.Reason)))
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
		b.WriteString(styles.help.Render("  r restart · q quit"))
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) totalSizeMB() int {
	total := 0
	for _, c := range m.contents {
		if m.selected[c.ID()] {
			total += c.SizeMB()
		}
	}
	return total
}
