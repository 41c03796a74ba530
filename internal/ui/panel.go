package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tokenforge/tokenctl/internal/chain"
	"github.com/tokenforge/tokenctl/internal/contract"
	"github.com/tokenforge/tokenctl/internal/controller"
)

// PanelDeps wires the interaction panel to the controller and the chain.
type PanelDeps struct {
	Controller *controller.Controller
	// Client is used to poll for the receipt after a transfer; nil disables
	// confirmation polling.
	Client *chain.Client

	TokenName     string
	TokenSymbol   string
	TokenDecimals int
	Network       string
	ContractAddr  string
	WalletName    string
}

// NewPanel creates the Bubble Tea program for the token interaction panel:
// connect/disconnect the wallet session, check the balance, and submit
// transfers, with the latest block hash shown for orientation.
func NewPanel(deps PanelDeps) *tea.Program {
	m := panelModel{
		deps: deps,
		snap: deps.Controller.Snapshot(),
	}
	return tea.NewProgram(m)
}

// --- Bubble Tea model ---

type panelFocus int

const (
	focusNone panelFocus = iota
	focusRecipient
	focusAmount
)

type panelModel struct {
	deps PanelDeps
	snap controller.Snapshot

	focus     panelFocus
	recipient string
	amount    string

	status    string
	statusErr bool
	frame     int
	quitting  bool
}

type (
	frameMsg       time.Time
	connectDoneMsg struct {
		addr string
		err  error
	}
	balanceDoneMsg struct{ err error }
	transferSentMsg struct {
		hash string
		err  error
	}
	confirmedMsg struct {
		hash string
		err  error
	}
	blockDoneMsg struct {
		hash string
		err  error
	}
)

func (m panelModel) Init() tea.Cmd {
	return tea.Batch(m.blockCmd(), frameTick())
}

func (m panelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKey(msg)

	case frameMsg:
		m.frame++
		m.snap = m.deps.Controller.Snapshot()
		return m, frameTick()

	case connectDoneMsg:
		if msg.err != nil {
			m.setErr(msg.err)
		} else {
			m.setOK("connected as " + TruncateAddr(msg.addr))
			cmd = m.balanceCmd()
		}

	case balanceDoneMsg:
		if msg.err != nil {
			m.setErr(msg.err)
		} else {
			m.setOK("balance refreshed")
		}

	case transferSentMsg:
		if msg.err != nil {
			m.setErr(msg.err)
		} else {
			m.setOK("submitted " + TruncateAddr(msg.hash) + " — awaiting confirmation")
			cmd = m.confirmCmd(msg.hash)
		}

	case confirmedMsg:
		if msg.err != nil {
			m.setErr(msg.err)
		} else {
			m.setOK("confirmed " + TruncateAddr(msg.hash))
			cmd = m.balanceCmd()
		}

	case blockDoneMsg:
		// Informational only: a failure here never blocks anything.
		_ = msg.err
	}

	m.snap = m.deps.Controller.Snapshot()
	if m.quitting {
		return m, tea.Quit
	}
	return m, cmd
}

func (m *panelModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.focus != focusNone {
		return m.handleFormKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true

	case "c":
		if m.snap.State == controller.StateDisconnected {
			m.status = ""
			return m.connectCmd()
		}

	case "d":
		m.deps.Controller.Disconnect()
		m.setOK("disconnected")

	case "b":
		if m.snap.State == controller.StateConnected {
			return m.balanceCmd()
		}

	case "t":
		// The controller refuses a second in-flight transfer anyway; this
		// just keeps the form from opening while one is pending.
		if m.snap.State == controller.StateConnected && !m.snap.TransferInFlight {
			m.focus = focusRecipient
			m.recipient = ""
			m.amount = ""
			m.status = ""
		}
	}
	return nil
}

func (m *panelModel) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true

	case "esc":
		m.focus = focusNone

	case "enter":
		if m.focus == focusRecipient {
			m.focus = focusAmount
			return nil
		}
		m.focus = focusNone
		return m.transferCmd(m.recipient, m.amount)

	case "backspace":
		if m.focus == focusRecipient && len(m.recipient) > 0 {
			m.recipient = m.recipient[:len(m.recipient)-1]
		}
		if m.focus == focusAmount && len(m.amount) > 0 {
			m.amount = m.amount[:len(m.amount)-1]
		}

	default:
		s := msg.String()
		if len(s) == 1 {
			if m.focus == focusRecipient {
				m.recipient += s
			} else {
				m.amount += s
			}
		}
	}
	return nil
}

func (m *panelModel) setOK(s string) {
	m.status, m.statusErr = s, false
}

func (m *panelModel) setErr(err error) {
	m.status, m.statusErr = err.Error(), true
}

// --- commands ---

func frameTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m panelModel) connectCmd() tea.Cmd {
	return func() tea.Msg {
		addr, err := m.deps.Controller.Connect(context.Background(), m.deps.WalletName)
		return connectDoneMsg{addr: addr, err: err}
	}
}

func (m panelModel) balanceCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := m.deps.Controller.RefreshBalance(context.Background())
		return balanceDoneMsg{err: err}
	}
}

func (m panelModel) transferCmd(recipient, amount string) tea.Cmd {
	return func() tea.Msg {
		hash, err := m.deps.Controller.SubmitTransfer(context.Background(), recipient, amount)
		return transferSentMsg{hash: hash, err: err}
	}
}

func (m panelModel) confirmCmd(hash string) tea.Cmd {
	if m.deps.Client == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()
		_, err := m.deps.Client.AwaitReceipt(ctx, hash)
		return confirmedMsg{hash: hash, err: err}
	}
}

func (m panelModel) blockCmd() tea.Cmd {
	return func() tea.Msg {
		hash, err := m.deps.Controller.FetchBlockHash(context.Background())
		return blockDoneMsg{hash: hash, err: err}
	}
}

// --- view ---

func (m panelModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	name := m.deps.TokenName
	if name == "" {
		name = "Token"
	}
	title := fmt.Sprintf("  %s  ·  %s", name, m.deps.Network)
	if m.deps.TokenSymbol != "" {
		title = fmt.Sprintf("  %s (%s)  ·  %s", name, m.deps.TokenSymbol, m.deps.Network)
	}
	sb.WriteString(StyleTitle.Render(title) + "\n\n")

	sb.WriteString(metaLine("Contract", Addr(m.deps.ContractAddr)))
	if m.snap.BlockHash != "" {
		sb.WriteString(metaLine("Block", Addr(TruncateAddr(m.snap.BlockHash))))
	}

	// Session line.
	switch m.snap.State {
	case controller.StateConnected:
		sb.WriteString(metaLine("Session", StyleSuccess.Render("connected")+"  "+Addr(TruncateAddr(m.snap.Address))))
	case controller.StateConnecting:
		sb.WriteString(metaLine("Session", StyleWarning.Render(m.spinnerFrame()+" connecting")))
	default:
		sb.WriteString(metaLine("Session", StyleMeta.Render("disconnected")))
	}

	// Balance line.
	switch {
	case m.snap.State != controller.StateConnected:
		sb.WriteString(metaLine("Balance", StyleMeta.Render("—")))
	case m.snap.Balance == nil:
		sb.WriteString(metaLine("Balance", StyleMeta.Render("not fetched — press b")))
	default:
		amount := contract.FormatAmount(m.snap.Balance, m.deps.TokenDecimals)
		sb.WriteString(metaLine("Balance", Val(amount)+" "+StyleMeta.Render(m.deps.TokenSymbol)))
	}

	if m.snap.TransferInFlight {
		sb.WriteString(metaLine("Transfer", StyleWarning.Render(m.spinnerFrame()+" in flight")))
	} else if m.snap.PendingTx != "" {
		sb.WriteString(metaLine("Last tx", Addr(TruncateAddr(m.snap.PendingTx))))
	}

	// Transfer form.
	if m.focus != focusNone {
		sb.WriteString("\n" + StyleTitle.Render("  Transfer") + "\n")
		sb.WriteString(formLine("Recipient", m.recipient, m.focus == focusRecipient))
		sb.WriteString(formLine("Amount", m.amount, m.focus == focusAmount))
	}

	// Status line.
	if m.status != "" {
		sb.WriteString("\n")
		if m.statusErr {
			sb.WriteString("  " + Err(m.status) + "\n")
		} else {
			sb.WriteString("  " + Success(m.status) + "\n")
		}
	}

	// Help line.
	sb.WriteString("\n" + StyleMeta.Render(m.helpLine()) + "\n")

	return StyleBorder.Render(sb.String()) + "\n"
}

func (m panelModel) helpLine() string {
	if m.focus != focusNone {
		return "  enter next/submit · esc cancel"
	}
	switch m.snap.State {
	case controller.StateConnected:
		if m.snap.TransferInFlight {
			return "  b balance · d disconnect · q quit"
		}
		return "  b balance · t transfer · d disconnect · q quit"
	default:
		return "  c connect · q quit"
	}
}

func (m panelModel) spinnerFrame() string {
	return spinnerFrames[m.frame%len(spinnerFrames)]
}

func metaLine(key, val string) string {
	return fmt.Sprintf("  %-10s %s\n", StyleMeta.Render(key), val)
}

func formLine(label, val string, focused bool) string {
	cursor := ""
	if focused {
		cursor = "█"
	}
	line := fmt.Sprintf("  %-10s > %s%s", StyleMeta.Render(label), val, cursor)
	return line + "\n"
}
