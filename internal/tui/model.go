package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kapu/cantina-go/internal/domain"
	"github.com/kapu/cantina-go/internal/people"
)

// Controller is the part of people.Controller the terminal view drives.
type Controller interface {
	Start(ctx context.Context)
	OnReachedEnd(ctx context.Context)
	Retry(ctx context.Context)
	SetSearchText(text string)
	SelectPerson(person domain.Person)
	Dismiss()
	OnWaveformTapped(ctx context.Context)
	Snapshot() people.ViewState
	Subscribe(callback func(people.ViewState)) func()
}

// stateMsg delivers a published ViewState through the bubbletea loop.
type stateMsg struct {
	state people.ViewState
}

const minListRows = 3

// Model renders the people list and detail screen and turns key presses
// into controller intents.
type Model struct {
	ctx        context.Context
	controller Controller
	states     <-chan people.ViewState
	keys       KeyMap
	theme      Theme

	state     people.ViewState
	cursor    int
	offset    int
	searching bool
	search    textinput.Model
	spinner   spinner.Model

	width  int
	height int
}

// NewModel builds the view. states is normally the channel from StateFeed.
func NewModel(ctx context.Context, controller Controller, states <-chan people.ViewState) Model {
	search := textinput.New()
	search.Placeholder = "Search by name"
	search.Prompt = "/ "
	search.CharLimit = 64

	state := controller.Snapshot()
	search.SetValue(state.SearchText)

	return Model{
		ctx:        ctx,
		controller: controller,
		states:     states,
		keys:       DefaultKeyMap,
		theme:      DefaultTheme,
		state:      state,
		search:     search,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:      80,
		height:     24,
	}
}

// State returns the last state the view rendered.
func (model Model) State() people.ViewState {
	return model.state
}

func (model Model) Init() tea.Cmd {
	return tea.Batch(
		listenForState(model.states),
		model.intent(model.controller.Start),
		model.spinner.Tick,
	)
}

// listenForState blocks until the next state arrives.
func listenForState(states <-chan people.ViewState) tea.Cmd {
	if states == nil {
		return nil
	}
	return func() tea.Msg {
		state, ok := <-states
		if !ok {
			return nil
		}
		return stateMsg{state: state}
	}
}

// intent runs a blocking controller call off the update loop.
func (model Model) intent(fn func(context.Context)) tea.Cmd {
	ctx := model.ctx
	return func() tea.Msg {
		fn(ctx)
		return nil
	}
}

func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case stateMsg:
		if message.state.Version >= model.state.Version {
			model.state = message.state
			model.clampCursor()
		}
		return model, tea.Batch(listenForState(model.states), model.reachedEndCmd())

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.clampCursor()
		return model, model.reachedEndCmd()

	case spinner.TickMsg:
		var command tea.Cmd
		model.spinner, command = model.spinner.Update(message)
		return model, command

	case tea.KeyMsg:
		if model.searching {
			return model.updateSearch(message)
		}
		if model.state.PresentedPerson != nil {
			return model.updateDetail(message)
		}
		return model.updateList(message)
	}

	return model, nil
}

func (model Model) updateSearch(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEnter:
		model.searching = false
		model.search.Blur()
		return model, nil
	case tea.KeyEsc:
		model.searching = false
		model.search.Blur()
		model.search.SetValue("")
		model.controller.SetSearchText("")
		return model, nil
	case tea.KeyCtrlC:
		return model, tea.Quit
	}

	var command tea.Cmd
	model.search, command = model.search.Update(message)
	model.controller.SetSearchText(model.search.Value())
	return model, command
}

func (model Model) updateDetail(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.Back):
		model.controller.Dismiss()
	case key.Matches(message, model.keys.Waveform):
		return model, model.intent(model.controller.OnWaveformTapped)
	}
	return model, nil
}

func (model Model) updateList(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := model.state.VisiblePeople

	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
			model.clampCursor()
		}

	case key.Matches(message, model.keys.Down):
		if model.cursor < len(visible)-1 {
			model.cursor++
			model.clampCursor()
		}
		return model, model.reachedEndCmd()

	case key.Matches(message, model.keys.Select):
		if model.cursor < len(visible) {
			model.controller.SelectPerson(visible[model.cursor])
		}

	case key.Matches(message, model.keys.Search):
		model.searching = true
		model.search.SetValue(model.state.SearchText)
		model.search.CursorEnd()
		return model, model.search.Focus()

	case key.Matches(message, model.keys.Back):
		if model.state.SearchText != "" {
			model.search.SetValue("")
			model.controller.SetSearchText("")
		}

	case key.Matches(message, model.keys.Retry):
		return model, model.intent(model.controller.Retry)

	case key.Matches(message, model.keys.Waveform):
		return model, model.intent(model.controller.OnWaveformTapped)
	}

	return model, nil
}

// reachedEndCmd requests the next page once the last row is on screen.
func (model Model) reachedEndCmd() tea.Cmd {
	state := model.state
	count := len(state.VisiblePeople)
	if count == 0 || state.IsLoading || state.ReachedEnd || state.PresentedPerson != nil {
		return nil
	}
	if state.Display() != people.DisplayList {
		return nil
	}
	if model.offset+model.listRows() < count {
		return nil
	}
	return model.intent(model.controller.OnReachedEnd)
}

// listRows is the number of person rows that fit the terminal.
func (model Model) listRows() int {
	rows := model.height - 7
	if rows < minListRows {
		rows = minListRows
	}
	return rows
}

// clampCursor keeps the cursor on a visible row and scrolls to it.
func (model *Model) clampCursor() {
	count := len(model.state.VisiblePeople)
	if model.cursor >= count {
		model.cursor = count - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}

	rows := model.listRows()
	if model.cursor < model.offset {
		model.offset = model.cursor
	}
	if model.cursor >= model.offset+rows {
		model.offset = model.cursor - rows + 1
	}
	if maxOffset := count - rows; model.offset > maxOffset {
		model.offset = max(maxOffset, 0)
	}
}
