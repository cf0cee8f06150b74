package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hostelhub/hostelctl/internal/apiclient"
	"github.com/hostelhub/hostelctl/internal/enrollment"
	"github.com/hostelhub/hostelctl/internal/payments"
)

// Messages for async operations
type stepDoneMsg struct {
	op  string
	err error
}

type paymentsLoadedMsg struct {
	result payments.Result
}

type studentCreatedMsg struct {
	student *apiclient.Student
	err     error
}

// choiceItem is a floor, room or bed in a bubbles/list
type choiceItem struct {
	id    string
	title string
	desc  string
}

func (c choiceItem) Title() string       { return c.title }
func (c choiceItem) Description() string { return c.desc }
func (c choiceItem) FilterValue() string { return c.title + " " + c.id }

func newChoiceList() list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), DefaultWidth-6, DefaultHeight-12)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(true)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	return l
}

// form fields, in display order
const (
	fieldName = iota
	fieldPhone
	fieldEmail
	fieldAddress
	fieldGuardianName
	fieldGuardianPhone
	fieldCourse
	fieldInstitution
	fieldEnrollmentDate
	fieldMonthlyFee
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Name *", "Phone *", "Email", "Address", "Guardian name", "Guardian phone",
	"Course", "Institution", "Enrollment date", "Monthly fee",
}

var fieldPlaceholders = [fieldCount]string{
	fieldName:           "Full name",
	fieldPhone:          "+1 555 0100",
	fieldEnrollmentDate: "YYYY-MM-DD",
	fieldMonthlyFee:     "0.00",
}

func newFormInputs() []textinput.Model {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = fieldPlaceholders[i]
		in.CharLimit = 120
		in.Width = 40
		in.Prompt = ""
		inputs[i] = in
	}
	inputs[fieldPhone].CharLimit = 20
	inputs[fieldGuardianPhone].CharLimit = 20
	inputs[fieldEnrollmentDate].CharLimit = 10
	return inputs
}

// EnrollmentModel is the interactive front end of an enrollment.Workflow:
// floor list, room list, bed list, details form, result.
type EnrollmentModel struct {
	ctx      context.Context
	workflow *enrollment.Workflow
	payments payments.Source
	server   string

	state   enrollment.State
	list    list.Model
	spinner spinner.Model
	loading string // label shown next to the spinner, empty when idle
	err     error
	notice  string

	inputs     []textinput.Model
	focus      int // index into inputs; len(inputs) is the payment picker
	methods    payments.Result
	methodsSet bool
	methodIdx  int

	created *apiclient.Student
	done    bool

	Width  int
	Height int
	Help   help.Model
	Keys   wizardKeyMap
}

// NewEnrollmentModel creates the wizard. src may be nil, in which case the
// built-in payment methods are offered.
func NewEnrollmentModel(ctx context.Context, wf *enrollment.Workflow, src payments.Source, server string) EnrollmentModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := EnrollmentModel{
		ctx:      ctx,
		workflow: wf,
		payments: src,
		server:   server,
		list:     newChoiceList(),
		spinner:  s,
		loading:  "Loading floors…",
		inputs:   newFormInputs(),
		Help:     help.New(),
		Keys:     newWizardKeyMap(),
	}
	m.sync()
	return m
}

// Init starts the floor fetch
func (m EnrollmentModel) Init() tea.Cmd {
	return tea.Batch(m.loadFloors(), m.spinner.Tick)
}

// Created returns the student created by the last submission, if any
func (m EnrollmentModel) Created() *apiclient.Student {
	return m.created
}

// Done reports whether the user asked to leave the wizard
func (m EnrollmentModel) Done() bool {
	return m.done
}

func (m EnrollmentModel) loadFloors() tea.Cmd {
	wf, ctx := m.workflow, m.ctx
	return func() tea.Msg {
		return stepDoneMsg{op: "floors", err: wf.LoadFloors(ctx)}
	}
}

func (m EnrollmentModel) selectFloor(id string) tea.Cmd {
	wf, ctx := m.workflow, m.ctx
	return func() tea.Msg {
		return stepDoneMsg{op: "rooms", err: wf.SelectFloor(ctx, id)}
	}
}

func (m EnrollmentModel) selectRoom(id string) tea.Cmd {
	wf, ctx := m.workflow, m.ctx
	return func() tea.Msg {
		return stepDoneMsg{op: "beds", err: wf.SelectRoom(ctx, id)}
	}
}

func (m EnrollmentModel) lookupPayments() tea.Cmd {
	src, ctx := m.payments, m.ctx
	return func() tea.Msg {
		if src == nil {
			return paymentsLoadedMsg{result: payments.Result{Methods: payments.Fallback(), Origin: payments.OriginFallback}}
		}
		return paymentsLoadedMsg{result: payments.Lookup(ctx, src)}
	}
}

func (m EnrollmentModel) submit(form enrollment.StudentForm) tea.Cmd {
	wf, ctx := m.workflow, m.ctx
	return func() tea.Msg {
		student, err := wf.CreateStudent(ctx, form)
		return studentCreatedMsg{student: student, err: err}
	}
}

// sync copies the workflow state into the model and refreshes the list
func (m *EnrollmentModel) sync() {
	m.state = m.workflow.State()

	var items []list.Item
	selected := ""
	switch m.state.Step {
	case enrollment.StepSelectFloor:
		for _, f := range m.state.Floors {
			items = append(items, choiceItem{
				id:    f.ID,
				title: f.Label(),
				desc:  fmt.Sprintf("%d of %d beds free", f.AvailableBeds, f.TotalBeds),
			})
		}
		if m.state.SelectedFloor != nil {
			selected = m.state.SelectedFloor.ID
		}
	case enrollment.StepSelectRoom:
		for _, r := range m.state.Rooms {
			desc := fmt.Sprintf("%d of %d beds free", r.AvailableBeds, r.TotalBeds)
			if r.Type != "" {
				desc = r.Type + " • " + desc
			}
			items = append(items, choiceItem{id: r.ID, title: r.Label(), desc: desc})
		}
		if m.state.SelectedRoom != nil {
			selected = m.state.SelectedRoom.ID
		}
	case enrollment.StepSelectBed:
		for _, b := range m.state.Beds {
			desc := "available"
			if !b.Available() {
				desc = b.Status
			}
			items = append(items, choiceItem{id: b.ID, title: b.Label(), desc: desc})
		}
		if m.state.SelectedBed != nil {
			selected = m.state.SelectedBed.ID
		}
	default:
		return
	}

	m.list.ResetFilter()
	m.list.SetItems(items)
	m.list.Select(0)
	for i, it := range items {
		if it.(choiceItem).id == selected {
			m.list.Select(i)
			break
		}
	}
}

// Update handles messages and updates the model
func (m EnrollmentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.list.SetSize(listSize(msg.Width, msg.Height))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stepDoneMsg:
		if errors.Is(msg.err, enrollment.ErrSuperseded) {
			return m, nil
		}
		m.loading = ""
		m.err = msg.err
		m.sync()
		return m, nil

	case paymentsLoadedMsg:
		m.methods = msg.result
		m.methodsSet = true
		m.methodIdx = 0
		return m, nil

	case studentCreatedMsg:
		if errors.Is(msg.err, enrollment.ErrSuperseded) {
			if msg.student != nil {
				m.notice = fmt.Sprintf("An abandoned submission still enrolled %s (%s)", msg.student.Name, msg.student.ID)
			}
			return m, nil
		}
		m.loading = ""
		m.sync()
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.created = msg.student
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m EnrollmentModel) filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m EnrollmentModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.Keys.Force) {
		m.done = true
		return m, tea.Quit
	}
	if key.Matches(msg, m.Keys.Reset) {
		return m.reset()
	}

	if m.created != nil {
		switch {
		case key.Matches(msg, m.Keys.Again):
			return m.reset()
		case key.Matches(msg, m.Keys.Quit), key.Matches(msg, m.Keys.Back):
			m.done = true
			return m, tea.Quit
		}
		return m, nil
	}

	if m.state.Step == enrollment.StepEnterDetails {
		return m.updateForm(msg)
	}

	if m.filtering() {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.done = true
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Back):
		return m.goBack()

	case key.Matches(msg, m.Keys.Select):
		return m.choose()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m EnrollmentModel) goBack() (tea.Model, tea.Cmd) {
	m.workflow.GoBack()
	m.loading = ""
	m.err = nil
	m.blurAll()
	m.sync()
	return m, nil
}

func (m EnrollmentModel) reset() (tea.Model, tea.Cmd) {
	m.workflow.Reset()
	m.created = nil
	m.err = nil
	m.notice = ""
	m.inputs = newFormInputs()
	m.focus = 0
	m.loading = "Loading floors…"
	m.sync()
	return m, tea.Batch(m.loadFloors(), m.spinner.Tick)
}

// choose acts on the highlighted list item for the current step
func (m EnrollmentModel) choose() (tea.Model, tea.Cmd) {
	if m.loading != "" {
		return m, nil
	}
	item, ok := m.list.SelectedItem().(choiceItem)
	if !ok {
		return m, nil
	}

	switch m.state.Step {
	case enrollment.StepSelectFloor:
		m.loading = "Loading rooms…"
		return m, tea.Batch(m.selectFloor(item.id), m.spinner.Tick)

	case enrollment.StepSelectRoom:
		m.loading = "Loading beds…"
		return m, tea.Batch(m.selectRoom(item.id), m.spinner.Tick)

	case enrollment.StepSelectBed:
		m.err = m.workflow.SelectBed(item.id)
		m.sync()
		if m.err != nil {
			return m, nil
		}
		cmd := m.setFocus(0)
		if !m.methodsSet {
			cmd = tea.Batch(cmd, m.lookupPayments())
		}
		return m, cmd
	}
	return m, nil
}

func (m *EnrollmentModel) blurAll() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// setFocus moves the form cursor; len(inputs) selects the payment picker
func (m *EnrollmentModel) setFocus(i int) tea.Cmd {
	n := len(m.inputs) + 1
	m.focus = ((i % n) + n) % n
	m.blurAll()
	if m.focus < len(m.inputs) {
		return m.inputs[m.focus].Focus()
	}
	return nil
}

func (m EnrollmentModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	onPicker := m.focus == len(m.inputs)

	switch {
	case key.Matches(msg, m.Keys.Back):
		return m.goBack()

	case key.Matches(msg, m.Keys.Submit):
		return m.submitForm()

	case key.Matches(msg, m.Keys.Select):
		if onPicker {
			return m.submitForm()
		}
		return m, m.setFocus(m.focus + 1)

	case key.Matches(msg, m.Keys.Next):
		return m, m.setFocus(m.focus + 1)

	case key.Matches(msg, m.Keys.Prev):
		return m, m.setFocus(m.focus - 1)

	case onPicker && key.Matches(msg, m.Keys.Left):
		m.cycleMethod(-1)
		return m, nil

	case onPicker && key.Matches(msg, m.Keys.Right):
		m.cycleMethod(1)
		return m, nil
	}

	if onPicker {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *EnrollmentModel) cycleMethod(delta int) {
	n := len(m.methods.Methods)
	if n == 0 {
		return
	}
	m.methodIdx = ((m.methodIdx+delta)%n + n) % n
}

// selectedMethod returns the chosen payment method, nil when none is loaded
func (m EnrollmentModel) selectedMethod() *apiclient.PaymentMethod {
	if m.methodIdx < len(m.methods.Methods) {
		pm := m.methods.Methods[m.methodIdx]
		return &pm
	}
	return nil
}

// form builds the StudentForm from the inputs
func (m EnrollmentModel) form() (enrollment.StudentForm, error) {
	v := func(i int) string { return strings.TrimSpace(m.inputs[i].Value()) }

	f := enrollment.StudentForm{
		Name:           v(fieldName),
		Phone:          v(fieldPhone),
		Email:          v(fieldEmail),
		Address:        v(fieldAddress),
		GuardianName:   v(fieldGuardianName),
		GuardianPhone:  v(fieldGuardianPhone),
		Course:         v(fieldCourse),
		Institution:    v(fieldInstitution),
		EnrollmentDate: v(fieldEnrollmentDate),
	}
	if fee := v(fieldMonthlyFee); fee != "" {
		parsed, err := strconv.ParseFloat(fee, 64)
		if err != nil {
			return f, apiclient.NewValidationError("baseMonthlyFee must be a number")
		}
		f.BaseMonthlyFee = parsed
	}
	if pm := m.selectedMethod(); pm != nil {
		f.PaymentMethod = pm.ID
	}
	return f, nil
}

func (m EnrollmentModel) submitForm() (tea.Model, tea.Cmd) {
	if m.loading != "" {
		return m, nil
	}
	f, err := m.form()
	if err != nil {
		m.err = err
		return m, nil
	}
	if err := f.Validate(); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.loading = "Creating student…"
	return m, tea.Batch(m.submit(f), m.spinner.Tick)
}

// View renders the wizard
func (m EnrollmentModel) View() string {
	return RenderApplicationContainer(m.server, m.content(), m.Help.View(m.helpKeys()), m.Width, m.Height)
}

func (m EnrollmentModel) helpKeys() helpKeys {
	k := m.Keys
	switch {
	case m.created != nil:
		return helpKeys{k.Again, k.Reset, k.Quit}
	case m.state.Step == enrollment.StepEnterDetails:
		return helpKeys{k.Next, k.Prev, k.Left, k.Right, k.Submit, k.Back, k.Reset}
	case m.state.Step == enrollment.StepSelectFloor:
		return helpKeys{k.Up, k.Down, k.Select, k.Reset, k.Quit}
	default:
		return helpKeys{k.Up, k.Down, k.Select, k.Back, k.Reset, k.Quit}
	}
}

func (m EnrollmentModel) breadcrumb() string {
	var parts []string
	if f := m.state.SelectedFloor; f != nil {
		parts = append(parts, f.Label())
	}
	if r := m.state.SelectedRoom; r != nil && m.state.Step > enrollment.StepSelectRoom {
		parts = append(parts, r.Label())
	}
	if b := m.state.SelectedBed; b != nil && m.state.Step > enrollment.StepSelectBed {
		parts = append(parts, b.Label())
	}
	return strings.Join(parts, " › ")
}

func (m EnrollmentModel) content() string {
	var b strings.Builder

	if m.created != nil {
		b.WriteString(m.renderCreated())
		return b.String()
	}

	b.WriteString(RenderTitle(fmt.Sprintf("Step %d/4 · %s", int(m.state.Step), m.state.Step)))
	b.WriteString("\n")
	if crumb := m.breadcrumb(); crumb != "" {
		b.WriteString(BreadcrumbStyle.Render(crumb))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.loading != "" {
		b.WriteString(m.spinner.View() + " " + StatusStyle.Render(m.loading))
		b.WriteString("\n\n")
	}
	if m.err != nil {
		b.WriteString(RenderError(apiclient.ShortMessage(m.err)))
		b.WriteString("\n\n")
	}
	if m.notice != "" {
		b.WriteString(StatusStyle.Render(m.notice))
		b.WriteString("\n\n")
	}

	if m.state.Step == enrollment.StepEnterDetails {
		b.WriteString(m.renderForm())
		return b.String()
	}

	if len(m.list.Items()) == 0 && m.loading == "" {
		b.WriteString(RenderSubtitle("Nothing to choose from here."))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(m.list.View())
	return b.String()
}

func (m EnrollmentModel) renderForm() string {
	var b strings.Builder
	for i, in := range m.inputs {
		label := LabelStyle
		if i == m.focus {
			label = FocusedLabelStyle
		}
		b.WriteString(label.Render(fieldLabels[i]))
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	label := LabelStyle
	if m.focus == len(m.inputs) {
		label = FocusedLabelStyle
	}
	b.WriteString("\n")
	b.WriteString(label.Render("Payment method"))
	switch pm := m.selectedMethod(); {
	case !m.methodsSet:
		b.WriteString(StatusStyle.Render("loading…"))
	case pm == nil:
		b.WriteString(StatusStyle.Render("none offered"))
	default:
		b.WriteString(lipgloss.NewStyle().Bold(true).Render("‹ " + pm.Name + " ›"))
		if m.methods.Degraded() {
			b.WriteString("  " + DegradedStyle.Render("(server unavailable, built-in list)"))
		}
	}
	b.WriteString("\n")
	return b.String()
}

func (m EnrollmentModel) renderCreated() string {
	s := m.created
	var b strings.Builder
	b.WriteString(RenderSuccess("Student enrolled"))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Student ID", s.ID},
		{"Name", s.Name},
		{"Placement", m.breadcrumb()},
	}
	if pm := m.selectedMethod(); pm != nil {
		rows = append(rows, [2]string{"Payment", pm.Name})
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		b.WriteString(LabelStyle.Render(r[0]) + r[1] + "\n")
	}
	return b.String()
}
