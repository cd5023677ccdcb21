package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"condoctl/internal/authn"
	"condoctl/internal/record"
	"condoctl/internal/staging"
	"condoctl/internal/view"
)

// Editor is the bubbletea model for the data-management screen. All
// edits mutate the staging store only; Apply hands the staged state to
// the reconciliation engine.
type Editor struct {
	store   *staging.Store
	engine  *staging.Engine
	session authn.Session
	styles  Styles

	kind   record.Kind
	cursor int // row index into the projected rows
	column int // column index into the active field list

	sorts         map[record.Kind]view.Sort
	managerFilter string // association FK filter, "" = all

	search    textinput.Model
	searching bool

	editInput textinput.Model
	editing   bool
	editRowID string

	loading  bool
	applying bool
	status   string
	isErr    bool

	width  int
	height int
}

type reloadedMsg struct{ err error }
type appliedMsg struct{ err error }

// NewEditor creates the editor over an already-constructed store and
// engine. The caller is expected to have verified the session's role.
func NewEditor(store *staging.Store, engine *staging.Engine, session authn.Session) Editor {
	search := textinput.New()
	search.Placeholder = "search"
	search.CharLimit = 80
	search.Width = 32

	edit := textinput.New()
	edit.CharLimit = 200
	edit.Width = 40

	return Editor{
		store:     store,
		engine:    engine,
		session:   session,
		styles:    DefaultStyles(),
		kind:      record.KindAssociation,
		sorts:     map[record.Kind]view.Sort{},
		search:    search,
		editInput: edit,
		loading:   true,
	}
}

// Init triggers the initial load of both record types.
func (m Editor) Init() tea.Cmd {
	return m.reloadCmd()
}

func (m Editor) reloadCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return reloadedMsg{err: store.Reload(context.Background())}
	}
}

func (m Editor) applyCmd() tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		return appliedMsg{err: engine.Apply(context.Background())}
	}
}

// Update handles messages.
func (m Editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case reloadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status, m.isErr = fmt.Sprintf("load failed: %v", msg.err), true
		} else {
			m.status, m.isErr = "loaded", false
		}
		m.cursor = 0
		return m, nil

	case appliedMsg:
		m.applying = false
		if msg.err != nil {
			m.status, m.isErr = fmt.Sprintf("apply failed: %v", msg.err), true
		} else {
			m.status, m.isErr = "all changes applied", false
		}
		m.cursor = 0
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Editor) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.loading || m.applying {
		return m, nil
	}

	if m.searching {
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			m.searching = false
			m.search.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.cursor = 0
			return m, cmd
		}
	}

	if m.editing {
		switch msg.Type {
		case tea.KeyEsc:
			m.editing = false
			m.editInput.Blur()
			return m, nil
		case tea.KeyEnter:
			m.editing = false
			m.editInput.Blur()
			field := m.fields()[m.column]
			if err := m.store.UpdateField(m.kind, m.editRowID, field, m.editInput.Value()); err != nil {
				m.status, m.isErr = err.Error(), true
			} else {
				m.status, m.isErr = "", false
			}
			return m, nil
		default:
			var cmd tea.Cmd
			m.editInput, cmd = m.editInput.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "tab":
		if m.kind == record.KindAssociation {
			m.kind = record.KindManager
		} else {
			m.kind = record.KindAssociation
		}
		m.cursor, m.column = 0, 0
		return m, nil

	case "/":
		m.searching = true
		m.search.Focus()
		return m, nil

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < m.rowCount()-1 {
			m.cursor++
		}
		return m, nil

	case "left", "h":
		if m.column > 0 {
			m.column--
		}
		return m, nil

	case "right", "l":
		if m.column < len(m.fields())-1 {
			m.column++
		}
		return m, nil

	case "s":
		field := m.fields()[m.column]
		m.sorts[m.kind] = m.sorts[m.kind].Cycle(field)
		return m, nil

	case "f":
		if m.kind == record.KindAssociation {
			m.managerFilter = m.nextManagerFilter()
			m.cursor = 0
		}
		return m, nil

	case "n":
		if _, err := m.store.CreateLocal(m.kind, nil); err != nil {
			m.status, m.isErr = err.Error(), true
		} else {
			m.status, m.isErr = "new row staged", false
			m.cursor = 0
		}
		return m, nil

	case "d":
		if id, ok := m.cursorRowID(); ok {
			if err := m.store.StageDelete(m.kind, id); err != nil {
				m.status, m.isErr = err.Error(), true
			}
		}
		return m, nil

	case "r":
		if id, ok := m.cursorRowID(); ok {
			m.store.Revert(m.kind, id)
		}
		return m, nil

	case "enter":
		return m.startEdit()

	case "a":
		if m.store.PendingChanges() == 0 {
			m.status, m.isErr = "no pending changes", false
			return m, nil
		}
		m.applying = true
		m.status, m.isErr = "applying...", false
		return m, m.applyCmd()

	case "D":
		m.store.DiscardAll()
		m.status, m.isErr = "all staged changes discarded", false
		m.cursor = 0
		return m, nil
	}

	return m, nil
}

// startEdit opens the inline editor for the cell under the cursor. The
// association manager column cycles through available managers instead
// of taking free text.
func (m Editor) startEdit() (tea.Model, tea.Cmd) {
	id, ok := m.cursorRowID()
	if !ok {
		return m, nil
	}
	field := m.fields()[m.column]

	if m.kind == record.KindAssociation && field == record.FieldManagerID {
		if next, ok := m.nextManager(id); ok {
			if err := m.store.UpdateField(m.kind, id, field, next); err != nil {
				m.status, m.isErr = err.Error(), true
			}
		}
		return m, nil
	}

	value := m.cellValue(id, field)
	m.editing = true
	m.editRowID = id
	m.editInput.SetValue(value)
	m.editInput.CursorEnd()
	m.editInput.Focus()
	return m, nil
}

// nextManager returns the manager id following the association's
// current one, wrapping around non-deleted managers.
func (m Editor) nextManager(assocID string) (string, bool) {
	var current string
	for _, a := range m.store.Associations() {
		if a.ID == assocID {
			current = a.ManagerID
			break
		}
	}
	var pool []string
	for _, mgr := range m.store.Managers() {
		if !mgr.Deleted {
			pool = append(pool, mgr.ID)
		}
	}
	if len(pool) == 0 {
		return "", false
	}
	for i, id := range pool {
		if id == current {
			return pool[(i+1)%len(pool)], true
		}
	}
	return pool[0], true
}

// nextManagerFilter cycles the association FK filter: all managers,
// then each non-deleted manager in draft order.
func (m Editor) nextManagerFilter() string {
	var pool []string
	for _, mgr := range m.store.Managers() {
		if !mgr.Deleted {
			pool = append(pool, mgr.ID)
		}
	}
	if len(pool) == 0 {
		return ""
	}
	if m.managerFilter == "" {
		return pool[0]
	}
	for i, id := range pool {
		if id == m.managerFilter {
			if i == len(pool)-1 {
				return ""
			}
			return pool[i+1]
		}
	}
	return ""
}

func (m Editor) fields() []record.Field {
	return record.Fields(m.kind)
}

func (m Editor) query() view.Query {
	return view.Query{
		Search:        m.search.Value(),
		ManagerFilter: m.managerFilter,
		Sort:          m.sorts[m.kind],
	}
}

func (m Editor) visibleManagers() []record.Manager {
	return view.Managers(m.store.Managers(), m.query())
}

func (m Editor) visibleAssociations() []record.Association {
	return view.Associations(m.store.Associations(), m.store.ManagersByID(), m.query())
}

func (m Editor) rowCount() int {
	if m.kind == record.KindManager {
		return len(m.visibleManagers())
	}
	return len(m.visibleAssociations())
}

func (m Editor) cursorRowID() (string, bool) {
	if m.kind == record.KindManager {
		rows := m.visibleManagers()
		if m.cursor < len(rows) {
			return rows[m.cursor].ID, true
		}
		return "", false
	}
	rows := m.visibleAssociations()
	if m.cursor < len(rows) {
		return rows[m.cursor].ID, true
	}
	return "", false
}

func (m Editor) cellValue(id string, f record.Field) string {
	if m.kind == record.KindManager {
		for _, row := range m.store.Managers() {
			if row.ID == id {
				v, _ := row.Get(f)
				return v
			}
		}
		return ""
	}
	for _, row := range m.store.Associations() {
		if row.ID == id {
			v, _ := row.Get(f)
			return v
		}
	}
	return ""
}

var fieldLabels = map[record.Field]string{
	record.FieldName:       "Name",
	record.FieldEmail:      "Email",
	record.FieldTitles:     "Titles",
	record.FieldInitials:   "Initials",
	record.FieldLegalName:  "Legal Name",
	record.FieldFilterName: "Filter Name",
	record.FieldLocation:   "Location",
	record.FieldManagerID:  "Manager",
}

func sortIcon(s view.Sort, f record.Field) string {
	if s.Key != f {
		return ""
	}
	switch s.Dir {
	case view.SortAsc:
		return " ▲"
	case view.SortDesc:
		return " ▼"
	}
	return ""
}

// View renders the editor.
func (m Editor) View() string {
	var sb strings.Builder

	title := "Data Management"
	sb.WriteString(m.styles.Title.Render(title))
	sb.WriteString("  ")
	sb.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("%s (%s)", m.session.Username, m.session.Role)))
	sb.WriteString("\n")

	if m.loading {
		sb.WriteString(m.styles.Muted.Render("Loading..."))
		sb.WriteString("\n")
		return sb.String()
	}

	var tabs string
	if m.kind == record.KindManager {
		tabs = "associations | " + m.styles.Bold.Render("managers")
	} else {
		tabs = m.styles.Bold.Render("associations") + " | managers"
	}
	sb.WriteString(tabs)
	sb.WriteString("   ")
	sb.WriteString(m.search.View())
	if m.kind == record.KindAssociation && m.managerFilter != "" {
		name := record.Association{ManagerID: m.managerFilter}.DisplayManagerName(m.store.ManagersByID())
		sb.WriteString("   " + m.styles.Badge.Render("manager: "+name))
	}
	sb.WriteString("\n\n")

	table := m.buildTable()
	sb.WriteString(table.View(m.styles))

	if m.editing {
		field := fieldLabels[m.fields()[m.column]]
		sb.WriteString("\n" + m.styles.Bold.Render(field+": ") + m.editInput.View() + "\n")
	}

	sb.WriteString("\n")
	pending := m.store.PendingChanges()
	counter := fmt.Sprintf("%d pending change(s)", pending)
	if m.applying {
		counter = "applying..."
	}
	sb.WriteString(m.styles.StatusBar.Render(counter))
	if m.status != "" {
		sb.WriteString("  ")
		if m.isErr {
			sb.WriteString(m.styles.Error.Render(m.status))
		} else {
			sb.WriteString(m.styles.Success.Render(m.status))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render(
		"tab: table  /: search  s: sort  f: filter  enter: edit  n: new  d: delete  r: revert  a: apply  D: discard  q: quit"))
	sb.WriteString("\n")
	return sb.String()
}

func (m Editor) buildTable() *Table {
	fields := m.fields()
	t := &Table{}
	sort := m.sorts[m.kind]
	for i, f := range fields {
		style := m.styles.Header
		if sort.Key == f && sort.Dir != view.SortNone {
			style = m.styles.HeaderSort
		}
		label := fieldLabels[f] + sortIcon(sort, f)
		if i == m.column {
			label = "[" + label + "]"
		}
		t.Headers = append(t.Headers, Cell{Text: label, Style: style})
	}

	if m.kind == record.KindManager {
		for ri, row := range m.visibleManagers() {
			cells := make([]Cell, 0, len(fields))
			for ci, f := range fields {
				v, _ := row.Get(f)
				cells = append(cells, m.styleCell(ri, ci, row.ID, f, v, row.IsNew))
			}
			t.Rows = append(t.Rows, cells)
		}
		return t
	}

	byID := m.store.ManagersByID()
	for ri, row := range m.visibleAssociations() {
		cells := make([]Cell, 0, len(fields))
		for ci, f := range fields {
			v, _ := row.Get(f)
			if f == record.FieldManagerID {
				v = row.DisplayManagerName(byID)
			}
			cells = append(cells, m.styleCell(ri, ci, row.ID, f, v, row.IsNew))
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// styleCell picks a cell style. Delete-staged rows never reach here:
// the projector excludes them.
func (m Editor) styleCell(ri, ci int, id string, f record.Field, v string, isNew bool) Cell {
	if v == "" {
		v = "-"
	}
	style := m.styles.Cell
	switch {
	case m.store.IsDirty(m.kind, id, f):
		style = m.styles.CellDirty
	case isNew:
		style = m.styles.CellNew
	}
	if ri == m.cursor && ci == m.column {
		style = m.styles.Cursor
	}
	return Cell{Text: v, Style: style}
}
