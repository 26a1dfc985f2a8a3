package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/flora/internal/invoice"
)

// Timeframe is a predefined or custom range of flight dates.
type Timeframe int

const (
	TimeframeThisWeek Timeframe = iota
	TimeframeLastWeek
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeAll
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisWeek:
		return "This Week"
	case TimeframeLastWeek:
		return "Last Week"
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeAll:
		return "All Flights"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// DateRange is an inclusive range of calendar dates. The zero value matches
// every date.
type DateRange struct {
	From invoice.Date
	To   invoice.Date
}

// Contains reports whether d falls inside the range. An unset date only
// matches the open range.
func (r DateRange) Contains(d invoice.Date) bool {
	if r.From.IsZero() && r.To.IsZero() {
		return true
	}

	if d.IsZero() {
		return false
	}

	return !d.Before(r.From.Time) && !d.After(r.To.Time)
}

func (r DateRange) String() string {
	if r.From.IsZero() && r.To.IsZero() {
		return "all dates"
	}

	return fmt.Sprintf("%s to %s", r.From, r.To)
}

// rangeOf resolves a predefined timeframe relative to now. Weeks start on Monday.
func rangeOf(tf Timeframe, now time.Time) DateRange {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	monday := now.AddDate(0, 0, 1-weekday)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	switch tf {
	case TimeframeThisWeek:
		return DateRange{From: invoice.DateOf(monday), To: invoice.DateOf(now)}
	case TimeframeLastWeek:
		return DateRange{From: invoice.DateOf(monday.AddDate(0, 0, -7)), To: invoice.DateOf(monday.AddDate(0, 0, -1))}
	case TimeframeThisMonth:
		return DateRange{From: invoice.DateOf(firstOfMonth), To: invoice.DateOf(now)}
	case TimeframeLastMonth:
		return DateRange{From: invoice.DateOf(firstOfMonth.AddDate(0, -1, 0)), To: invoice.DateOf(firstOfMonth.AddDate(0, 0, -1))}
	}

	return DateRange{}
}

// RangeSelectedMsg is emitted once the user has picked a range.
type RangeSelectedMsg struct {
	Range DateRange
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker is a reusable component for selecting a range of flight dates.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe

	fromInput  textinput.Model
	toInput    textinput.Model
	focusIndex int

	now func() time.Time
	err error
}

func NewTimeframePicker(initial Timeframe) TimeframePicker {
	from := textinput.New()
	from.Placeholder = "YYYY-MM-DD"
	from.CharLimit = 10
	from.Width = 12
	from.Prompt = "From: "

	to := textinput.New()
	to.Placeholder = "YYYY-MM-DD"
	to.CharLimit = 10
	to.Width = 12
	to.Prompt = "To:   "

	return TimeframePicker{
		selected:  initial,
		fromInput: from,
		toInput:   to,
		now:       time.Now,
	}
}

func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.state == timeframeStateSelect {
			return m.updateSelect(keyMsg)
		}

		if next, cmd, handled := m.updateCustom(keyMsg); handled {
			return next, cmd
		}
	}

	if m.state != timeframeStateCustom {
		return m, nil
	}

	var fromCmd, toCmd tea.Cmd
	m.fromInput, fromCmd = m.fromInput.Update(msg)
	m.toInput, toCmd = m.toInput.Update(msg)

	return m, tea.Batch(fromCmd, toCmd)
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > TimeframeThisWeek {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == TimeframeCustom {
			m.state = timeframeStateCustom
			m.focusIndex = 0
			m.fromInput.Focus()

			return m, textinput.Blink
		}

		r := rangeOf(m.selected, m.now())

		return m, func() tea.Msg { return RangeSelectedMsg{Range: r} }
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = 1 - m.focusIndex
		m.fromInput.Blur()
		m.toInput.Blur()

		if m.focusIndex == 0 {
			m.fromInput.Focus()
		} else {
			m.toInput.Focus()
		}

		return m, textinput.Blink, true

	case "enter":
		from, err := invoice.ParseDate(m.fromInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid from date (YYYY-MM-DD)")
			return m, nil, true
		}

		to, err := invoice.ParseDate(m.toInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid to date (YYYY-MM-DD)")
			return m, nil, true
		}

		if to.Before(from.Time) {
			m.err = fmt.Errorf("to date is before from date")
			return m, nil, true
		}

		m.err = nil
		r := DateRange{From: from, To: to}

		return m, func() tea.Msg { return RangeSelectedMsg{Range: r} }, true

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Flight dates:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.fromInput.View(),
			m.toInput.View(),
			errStr,
		)
	}

	s := "Flight dates:\n\n"

	for tf := TimeframeThisWeek; tf <= TimeframeCustom; tf++ {
		cursor := " "
		if m.selected == tf {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, tf)
	}

	return s + "\n(Enter to select, Esc to back)" + errStr
}

// IsSelecting reports whether the picker shows the list rather than the custom inputs.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.err = nil
	m.fromInput.SetValue("")
	m.toInput.SetValue("")
}
