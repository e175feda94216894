package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/connex/contact-manager/internal/client"
	"github.com/connex/contact-manager/internal/core/domain"
	"github.com/connex/contact-manager/internal/core/validation"
	"github.com/connex/contact-manager/internal/view/form"
	"github.com/connex/contact-manager/internal/view/list"
)

// chromeHeight is the number of lines around the table: title, search,
// status, error banner and help bar.
const chromeHeight = 7

// Options configures a Model.
type Options struct {
	PageSize int
	Timeout  time.Duration
	Logger   zerolog.Logger
}

// Model is the root Bubble Tea model of the contact manager.
type Model struct {
	api     ContactAPI
	timeout time.Duration
	log     zerolog.Logger

	mode   Mode
	state  list.State
	form   formModel
	target *domain.Contact // contact awaiting delete confirmation
	busy   bool            // a delete is in flight

	table   table.Model
	search  textinput.Model
	spinner spinner.Model
	help    help.Model

	listKeys    listKeys
	formKeys    formKeys
	searchKeys  searchKeys
	confirmKeys confirmKeys

	width  int
	height int
}

// NewModel creates a Model that loads contacts from api on Init.
func NewModel(api ContactAPI, opts Options) Model {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search contacts"

	state := list.Reduce(list.New(opts.PageSize), list.Loading{})

	m := Model{
		api:         api,
		timeout:     opts.Timeout,
		log:         opts.Logger,
		mode:        ModeList,
		state:       state,
		search:      search,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:        help.New(),
		listKeys:    ListKeyMap(),
		formKeys:    FormKeyMap(),
		searchKeys:  SearchKeyMap(),
		confirmKeys: ConfirmKeyMap(),
		table: table.New(
			table.WithColumns(columns(0, state)),
			table.WithFocused(true),
			table.WithHeight(state.PageSize),
		),
	}
	m.syncTable()
	return m
}

// Init starts the first fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(fetchContacts(m.api, m.timeout), m.spinner.Tick)
}

// State returns the current list state.
func (m Model) State() list.State { return m.state }

// Mode returns the active screen.
func (m Model) Mode() Mode { return m.mode }

// Update handles incoming messages with mode-based routing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(columns(msg.Width, m.state))
		m.table.SetHeight(max(1, min(m.state.PageSize, msg.Height-chromeHeight)))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case contactsLoadedMsg:
		m.apply(list.Loaded{Contacts: msg.contacts})
		return m, nil

	case loadFailedMsg:
		m.log.Warn().Err(msg.err).Msg("fetch contacts")
		m.apply(list.LoadFailed{Err: msg.err})
		return m, nil

	case contactSavedMsg:
		return m.handleSaved(msg)

	case contactDeletedMsg:
		m.busy = false
		m.apply(list.Deleted{ID: msg.id})
		return m, nil

	case mutationFailedMsg:
		return m.handleMutationFailed(msg)

	case tea.KeyMsg:
		switch m.mode {
		case ModeSearch:
			return m.handleSearchKey(msg)
		case ModeForm:
			return m.handleFormKey(msg)
		case ModeConfirm:
			return m.handleConfirmKey(msg)
		default:
			return m.handleListKey(msg)
		}
	}

	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.listKeys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Search):
		m.mode = ModeSearch
		return m, m.search.Focus()

	case key.Matches(msg, k.Sort):
		col := domain.FieldNames[msg.Runes[0]-'1']
		m.apply(list.ToggleSort{Column: col})
		return m, nil

	case key.Matches(msg, k.PrevPage):
		m.apply(list.SetPage{N: m.state.Page - 1})
		return m, nil

	case key.Matches(msg, k.NextPage):
		m.apply(list.SetPage{N: m.state.Page + 1})
		return m, nil

	case key.Matches(msg, k.PageSize):
		m.apply(list.SetPageSize{Size: nextPageSize(m.state.PageSize)})
		m.table.SetHeight(m.tableHeight())
		return m, nil

	case key.Matches(msg, k.New):
		m.form = newFormModel(form.NewCreate())
		m.mode = ModeForm
		return m, textinput.Blink

	case key.Matches(msg, k.Edit):
		c := m.selected()
		if c == nil {
			return m, nil
		}
		m.form = newFormModel(form.NewEdit(c))
		m.mode = ModeForm
		return m, textinput.Blink

	case key.Matches(msg, k.Delete):
		c := m.selected()
		if c == nil || m.busy {
			return m, nil
		}
		m.target = c
		m.mode = ModeConfirm
		return m, nil

	case key.Matches(msg, k.Refresh):
		return m.refetch()

	case key.Matches(msg, k.Dismiss):
		m.apply(list.DismissError{})
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.searchKeys.Apply):
		m.mode = ModeList
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.searchKeys.Clear):
		m.mode = ModeList
		m.search.Blur()
		m.search.SetValue("")
		m.apply(list.Search{Term: ""})
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.state.Search {
		m.apply(list.Search{Term: m.search.Value()})
	}
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.formKeys
	switch {
	case key.Matches(msg, k.Cancel):
		if m.form.form.Submitting {
			return m, nil
		}
		m.mode = ModeList
		return m, nil

	case key.Matches(msg, k.Next):
		m.form = m.form.move(1)
		return m, nil

	case key.Matches(msg, k.Prev):
		m.form = m.form.move(-1)
		return m, nil

	case key.Matches(msg, k.Submit):
		f, ok := m.form.form.Submit()
		m.form.form = f
		if !ok {
			return m, nil
		}
		var save tea.Cmd
		if f.Mode == form.ModeEdit {
			save = updateContact(m.api, m.timeout, f.ID, f.Fields)
		} else {
			save = createContact(m.api, m.timeout, f.Fields)
		}
		return m, tea.Batch(save, m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.confirmKeys.Yes):
		id := m.target.ID
		m.mode = ModeList
		m.target = nil
		m.busy = true
		return m, deleteContact(m.api, m.timeout, id)
	case key.Matches(msg, m.confirmKeys.No):
		m.mode = ModeList
		m.target = nil
	}
	return m, nil
}

func (m Model) handleSaved(msg contactSavedMsg) (tea.Model, tea.Cmd) {
	if msg.created {
		m.apply(list.Created{Contact: msg.contact})
	} else {
		m.apply(list.Updated{Contact: msg.contact})
	}
	if m.mode == ModeForm {
		m.form.form = m.form.form.Succeeded()
		m.mode = ModeList
	}
	return m, nil
}

func (m Model) handleMutationFailed(msg mutationFailedMsg) (tea.Model, tea.Cmd) {
	m.log.Warn().Err(msg.err).Str("op", string(msg.op)).Msg("contact mutation failed")
	notFound := client.IsNotFound(msg.err)

	if msg.op == opDelete {
		m.busy = false
	} else if m.mode == ModeForm && m.form.form.Submitting {
		if !notFound {
			var ae *client.APIError
			var fields map[string]string
			if errors.As(msg.err, &ae) {
				fields = ae.Fields
			}
			m.form.form = m.form.form.Failed(msg.err, fields)
			return m, nil
		}
		m.form.form = m.form.form.Failed(msg.err, nil)
		m.mode = ModeList
	}

	m.apply(list.MutationFailed{Err: msg.err, NotFound: notFound})
	if m.state.Stale {
		return m.refetch()
	}
	return m, nil
}

func (m Model) refetch() (tea.Model, tea.Cmd) {
	if m.state.Loading {
		return m, nil
	}
	m.apply(list.Loading{})
	return m, tea.Batch(fetchContacts(m.api, m.timeout), m.spinner.Tick)
}

// apply reduces a into the list state and refreshes the table rows.
func (m *Model) apply(a list.Action) {
	m.state = list.Reduce(m.state, a)
	m.syncTable()
}

func (m *Model) syncTable() {
	visible := m.state.Visible()
	rows := make([]table.Row, len(visible))
	for i, c := range visible {
		row := make(table.Row, len(domain.FieldNames))
		for j, name := range domain.FieldNames {
			row[j] = c.Get(name)
		}
		rows[i] = row
	}
	m.table.SetColumns(columns(m.width, m.state))
	m.table.SetRows(rows)
	// SetRows on an empty table leaves the cursor at -1.
	switch {
	case len(rows) > 0 && m.table.Cursor() < 0:
		m.table.SetCursor(0)
	case m.table.Cursor() >= len(rows):
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func (m Model) tableHeight() int {
	if m.height == 0 {
		return m.state.PageSize
	}
	return max(1, min(m.state.PageSize, m.height-chromeHeight))
}

// selected is the contact under the table cursor, or nil on an empty page.
func (m Model) selected() *domain.Contact {
	visible := m.state.Visible()
	i := m.table.Cursor()
	if i < 0 || i >= len(visible) {
		return nil
	}
	return visible[i]
}

func nextPageSize(current int) int {
	for i, size := range list.PageSizes {
		if size == current {
			return list.PageSizes[(i+1)%len(list.PageSizes)]
		}
	}
	return list.PageSizes[0]
}

// columns lays out the six field columns across width, marking the sort column.
func columns(width int, s list.State) []table.Column {
	colWidth := 16
	if width > 0 {
		colWidth = max(10, (width-2*len(domain.FieldNames))/len(domain.FieldNames))
	}
	cols := make([]table.Column, len(domain.FieldNames))
	for i, name := range domain.FieldNames {
		title := fmt.Sprintf("%d %s", i+1, validation.Label(name))
		if s.SortColumn == name {
			if s.SortDir == list.Desc {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		cols[i] = table.Column{Title: title, Width: colWidth}
	}
	return cols
}

// View renders the table screen or the active dialog.
func (m Model) View() string {
	switch m.mode {
	case ModeForm:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.form.view(m.spinner.View()),
			m.help.View(m.formKeys),
		)
	case ModeConfirm:
		name := m.target.FirstName + " " + m.target.LastName
		return lipgloss.JoinVertical(lipgloss.Left,
			dialogStyle.Render(fmt.Sprintf("Delete %s?", name)),
			m.help.View(m.confirmKeys),
		)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Connex Contacts"))
	b.WriteString("\n")

	switch {
	case m.mode == ModeSearch:
		b.WriteString(m.search.View())
	case m.state.Search != "":
		b.WriteString(statusStyle.Render("search: " + m.state.Search))
	}
	b.WriteString("\n")

	if m.state.Loading && len(m.state.Contacts) == 0 {
		b.WriteString(m.spinner.View() + " Loading contacts...\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	b.WriteString(statusStyle.Render(m.status()))
	b.WriteString("\n")

	if m.state.Err != nil {
		b.WriteString(errorBannerStyle.Render(m.state.Err.Error()))
		b.WriteString("\n")
	}

	if m.mode == ModeSearch {
		b.WriteString(m.help.View(m.searchKeys))
	} else {
		b.WriteString(m.help.View(m.listKeys))
	}
	return b.String()
}

func (m Model) status() string {
	parts := []string{
		fmt.Sprintf("page %d of %d", m.state.Page+1, m.state.PageCount()),
		fmt.Sprintf("%d contacts", len(m.state.Filtered())),
		fmt.Sprintf("%d per page", m.state.PageSize),
	}
	if m.state.SortColumn != "" {
		parts = append(parts, fmt.Sprintf("sort %s %s", m.state.SortColumn, m.state.SortDir))
	}
	if m.state.Loading {
		parts = append(parts, m.spinner.View()+" refreshing")
	}
	return strings.Join(parts, " · ")
}
