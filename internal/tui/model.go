// Package tui is a terminal version of the estimate form built on Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"auction-advisor/internal/domain"
	"auction-advisor/internal/features"
)

// Estimator prices requests. *advisor.Advisor implements it.
type Estimator interface {
	Estimate(ctx context.Context, req domain.EstimateRequest) (*domain.Estimate, error)
	Timing() domain.AuctionTiming
}

// field identifies the focused form element.
type field int

const (
	fieldYear field = iota
	fieldMileage
	fieldSubmodel
	fieldTitle
	fieldZIP
	fieldButton
	fieldCount
)

// text inputs, indexed by inputIndex.
const (
	inputYear = iota
	inputMileage
	inputTitle
	inputZIP
	inputCount
)

// estimateMsg carries the result of one estimate back into Update.
type estimateMsg struct {
	estimate *domain.Estimate
	err      error
}

// Model is the Bubble Tea model of the form.
type Model struct {
	ctx       context.Context
	estimator Estimator
	timing    domain.AuctionTiming

	inputs   [inputCount]textinput.Model
	submodel int
	focus    field

	estimating bool
	estimate   *domain.Estimate
	err        error

	width  int
	styles styles
}

// New creates the form with the default request filled in.
func New(ctx context.Context, estimator Estimator) Model {
	req := domain.DefaultEstimateRequest()

	m := Model{
		ctx:       ctx,
		estimator: estimator,
		timing:    estimator.Timing(),
		styles:    defaultStyles(),
	}

	values := [inputCount]string{
		inputYear:    strconv.Itoa(req.Year),
		inputMileage: strconv.Itoa(req.Mileage),
		inputTitle:   req.Title,
		inputZIP:     req.ZIP,
	}
	limits := [inputCount]int{inputYear: 4, inputMileage: 6, inputTitle: 120, inputZIP: 10}
	for i := range m.inputs {
		ti := textinput.New()
		ti.CharLimit = limits[i]
		ti.Width = 48
		ti.Prompt = ""
		ti.SetValue(values[i])
		m.inputs[i] = ti
	}
	m.inputs[inputYear].Placeholder = fmt.Sprintf("%d-%d", domain.MinYear, domain.MaxYear)
	m.inputs[inputMileage].Placeholder = fmt.Sprintf("%d-%d", domain.MinMileage, domain.MaxMileage)

	for i, s := range domain.Submodels {
		if s == req.Submodel {
			m.submodel = i
		}
	}

	m.inputs[inputYear].Focus()
	return m
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case estimateMsg:
		m.estimating = false
		m.estimate, m.err = msg.estimate, msg.err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			return m.setFocus((m.focus + 1) % fieldCount)
		case "shift+tab", "up":
			return m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		case "enter":
			if m.focus != fieldButton {
				return m.setFocus(m.focus + 1)
			}
			return m.submit()
		case "left", "right":
			if m.focus == fieldSubmodel {
				n := len(domain.Submodels)
				if msg.String() == "left" {
					m.submodel = (m.submodel + n - 1) % n
				} else {
					m.submodel = (m.submodel + 1) % n
				}
				return m, nil
			}
		}
	}

	if i, ok := inputIndex(m.focus); ok {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		return m, cmd
	}
	return m, nil
}

// submit validates the form and starts one estimate. While an estimate is
// running further submits are ignored.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.estimating {
		return m, nil
	}

	req, err := m.request()
	if err == nil {
		err = features.ValidateRequest(req)
	}
	if err != nil {
		m.err = err
		m.estimate = nil
		return m, nil
	}

	m.estimating = true
	m.err = nil
	ctx, estimator := m.ctx, m.estimator
	return m, func() tea.Msg {
		est, err := estimator.Estimate(ctx, req)
		return estimateMsg{estimate: est, err: err}
	}
}

// request reads the form into an EstimateRequest.
func (m Model) request() (domain.EstimateRequest, error) {
	year, err := strconv.Atoi(strings.TrimSpace(m.inputs[inputYear].Value()))
	if err != nil {
		return domain.EstimateRequest{}, fmt.Errorf("year must be a whole number")
	}
	mileage, err := strconv.Atoi(strings.TrimSpace(m.inputs[inputMileage].Value()))
	if err != nil {
		return domain.EstimateRequest{}, fmt.Errorf("mileage must be a whole number")
	}
	return domain.EstimateRequest{
		Year:     year,
		Mileage:  mileage,
		Submodel: domain.Submodels[m.submodel],
		Title:    strings.TrimSpace(m.inputs[inputTitle].Value()),
		ZIP:      strings.TrimSpace(m.inputs[inputZIP].Value()),
	}, nil
}

func (m Model) setFocus(f field) (tea.Model, tea.Cmd) {
	m.focus = f
	var cmd tea.Cmd
	for i := range m.inputs {
		if idx, ok := inputIndex(f); ok && idx == i {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return m, cmd
}

func inputIndex(f field) (int, bool) {
	switch f {
	case fieldYear:
		return inputYear, true
	case fieldMileage:
		return inputMileage, true
	case fieldTitle:
		return inputTitle, true
	case fieldZIP:
		return inputZIP, true
	default:
		return 0, false
	}
}
