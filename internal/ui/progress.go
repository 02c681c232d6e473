package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/w3wrap/internal/wrapper"
)

// Planned stage sequences per flow, used to draw pending steps.
var (
	ERC20DepositStages  = []wrapper.Stage{wrapper.StageApproving, wrapper.StageMinting, wrapper.StageDepositing}
	ERC721DepositStages = []wrapper.Stage{wrapper.StageMinting, wrapper.StageReadingURI, wrapper.StageApproving, wrapper.StageDepositing}
	WithdrawStages      = []wrapper.Stage{wrapper.StageWithdrawing}
)

// PlannedStages returns stages as the flow will run them. Without the faucet
// the demo mint is skipped, so its stage is dropped.
func PlannedStages(stages []wrapper.Stage, faucet bool) []wrapper.Stage {
	if faucet {
		return stages
	}
	out := make([]wrapper.Stage, 0, len(stages))
	for _, s := range stages {
		if s != wrapper.StageMinting {
			out = append(out, s)
		}
	}
	return out
}

type progressMsg wrapper.Progress

type flowDoneMsg struct{ err error }

type tickMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

// flowModel is the Bubble Tea model drawing one flow's stages live.
type flowModel struct {
	title     string
	stages    []wrapper.Stage
	current   wrapper.Stage
	reached   map[wrapper.Stage]bool
	txs       map[wrapper.Stage]common.Hash
	warnings  []string
	failed    bool
	finished  bool
	cancelled bool
	frame     int
}

func newFlowModel(title string, stages []wrapper.Stage) flowModel {
	return flowModel{
		title:   title,
		stages:  stages,
		reached: map[wrapper.Stage]bool{},
		txs:     map[wrapper.Stage]common.Hash{},
	}
}

func (m flowModel) Init() tea.Cmd { return tick() }

func (m flowModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			return m, tea.Quit
		}
	case tickMsg:
		m.frame++
		return m, tick()
	case progressMsg:
		switch {
		case msg.Warning != "":
			m.warnings = append(m.warnings, msg.Warning)
		case msg.Stage == wrapper.StageFailed:
			m.failed = true
		case msg.Stage == wrapper.StageConfirmed:
			m.current = msg.Stage
		case msg.Stage != wrapper.StageIdle:
			m.current = msg.Stage
			m.reached[msg.Stage] = true
			if msg.TxHash != (common.Hash{}) {
				m.txs[msg.Stage] = msg.TxHash
			}
		}
	case flowDoneMsg:
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

func (m flowModel) View() string {
	var sb strings.Builder
	sb.WriteString("\n" + StyleTitle.Render("  "+m.title) + "\n")

	for _, st := range m.stages {
		var icon string
		switch {
		case st == m.current && m.failed:
			icon = StyleError.Render("✗")
		case st == m.current && m.current != wrapper.StageConfirmed && !m.finished:
			icon = StyleChain.Render(spinnerFrames[m.frame%len(spinnerFrames)])
		case m.reached[st]:
			icon = StyleSuccess.Render("✓")
		default:
			icon = StyleDim.Render("·")
		}
		line := fmt.Sprintf("  %s %s", icon, Pad(st.String(), 12))
		if h, ok := m.txs[st]; ok {
			line += " " + Hash(h.Hex(), false)
		}
		sb.WriteString(line + "\n")
	}
	for _, w := range m.warnings {
		sb.WriteString("  " + Warn(w) + "\n")
	}
	if !m.finished && !m.cancelled {
		sb.WriteString(StyleMeta.Render("  [ ctrl+c ] abort waiting") + "\n")
	}
	return sb.String()
}

// FlowFunc runs a flow, reporting transitions to obs.
type FlowFunc func(ctx context.Context, obs wrapper.Observer) error

// RunFlow runs fn while drawing its stages in the terminal. Pressing ctrl+c
// cancels ctx; transactions already sent are not recalled.
func RunFlow(ctx context.Context, title string, stages []wrapper.Stage, fn FlowFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newFlowModel(title, stages))

	var (
		wg      sync.WaitGroup
		flowErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		flowErr = fn(ctx, func(pr wrapper.Progress) { p.Send(progressMsg(pr)) })
		p.Send(flowDoneMsg{err: flowErr})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		wg.Wait()
		return fmt.Errorf("flow view: %w", err)
	}
	cancel()
	wg.Wait()
	return flowErr
}

// PlainObserver prints one line per transition, for non-interactive output.
func PlainObserver(out io.Writer) wrapper.Observer {
	var mu sync.Mutex
	return func(p wrapper.Progress) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case p.Warning != "":
			fmt.Fprintln(out, Warn(p.Warning))
		case p.Stage == wrapper.StageIdle:
		case p.Stage == wrapper.StageFailed:
			fmt.Fprintln(out, Err(fmt.Sprintf("failed: %v", p.Err)))
		case p.Stage == wrapper.StageConfirmed:
			fmt.Fprintln(out, Success("confirmed"))
		case p.TxHash != (common.Hash{}):
			fmt.Fprintf(out, "  %s sent %s\n", Pad(p.Stage.String(), 12), Hash(p.TxHash.Hex(), true))
		default:
			fmt.Fprintf(out, "%s %s\n", StyleChain.Render("→"), p.Stage)
		}
	}
}
