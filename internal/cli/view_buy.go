package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gnfinvest/gnf/internal/cli/formatter"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/purchase"
)

type buyStep int

const (
	buyConfirm buyStep = iota
	buyPickWallet
	buyPay
	buyDone
)

// activationMsg reports the outcome of ConfirmSelection.
type activationMsg struct{ err error }

type buyWalletsMsg struct {
	wallets []domain.Wallet
	err     error
}

type walletSelectedMsg struct{ err error }

type paidMsg struct{ err error }

type countdownMsg purchase.Tick

type countdownEndedMsg struct{}

// buyModel walks one purchase session through confirmation, wallet choice
// and payment. All state lives in the session; the model only mirrors it.
type buyModel struct {
	ctx      context.Context
	sess     *purchase.Session
	cred     domain.Credential
	interval time.Duration

	step      buyStep
	wallets   []domain.Wallet
	cursor    int
	busy      bool
	notice    string
	remaining time.Duration
	countdown *purchase.Countdown
	spinner   spinner.Model
	help      help.Model
}

func newBuyModel(ctx context.Context, sess *purchase.Session, cred domain.Credential, interval time.Duration) *buyModel {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(formatter.StyleHeader))
	return &buyModel{
		ctx:      ctx,
		sess:     sess,
		cred:     cred,
		interval: interval,
		spinner:  sp,
		help:     help.New(),
	}
}

func (m *buyModel) Init() tea.Cmd { return nil }

// stop releases the countdown ticker, if one was started.
func (m *buyModel) stop() {
	if m.countdown != nil {
		m.countdown.Stop()
	}
}

func (m *buyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case activationMsg:
		m.busy = false
		if msg.err != nil {
			return m.finish()
		}
		m.countdown = purchase.StartCountdown(m.ctx, m.sess, m.interval)
		m.remaining = m.sess.Remaining(m.sess.Now())
		m.step = buyPickWallet
		return m, tea.Batch(m.loadWallets(), waitCountdown(m.countdown))

	case buyWalletsMsg:
		m.busy = false
		m.wallets = msg.wallets
		if m.cursor >= len(m.wallets) {
			m.cursor = 0
		}
		if msg.err != nil {
			m.notice = domain.UserMessage(msg.err, "Could not load payment options.")
		}
		return m, nil

	case walletSelectedMsg:
		m.busy = false
		if msg.err != nil {
			m.notice = domain.UserMessage(msg.err, msg.err.Error())
			return m, m.loadWallets()
		}
		m.notice = ""
		m.step = buyPay
		return m, nil

	case paidMsg:
		m.busy = false
		if m.sess.State().Terminal() {
			return m.finish()
		}
		if msg.err != nil {
			m.notice = domain.UserMessage(msg.err, "Could not confirm the payment. Try again.")
			if errors.Is(msg.err, domain.ErrStaleWallet) {
				m.step = buyPickWallet
				return m, m.loadWallets()
			}
		}
		return m, nil

	case countdownMsg:
		m.remaining = msg.Remaining
		if msg.State.Terminal() || m.sess.State().Terminal() {
			return m.finish()
		}
		return m, waitCountdown(m.countdown)

	case countdownEndedMsg:
		if m.sess.State().Terminal() {
			return m.finish()
		}
		return m, nil
	}
	return m, nil
}

func (m *buyModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.step == buyDone {
		return m, tea.Quit
	}
	if key.Matches(msg, keyCancel) {
		// Cancel is refused only once the session already ended.
		_ = m.sess.Cancel()
		return m.finish()
	}
	if m.busy {
		return m, nil
	}

	switch m.step {
	case buyConfirm:
		if key.Matches(msg, keyConfirm) {
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, m.confirmSelection())
		}

	case buyPickWallet:
		switch {
		case key.Matches(msg, keyUp):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keyDown):
			if m.cursor < len(m.wallets)-1 {
				m.cursor++
			}
		case key.Matches(msg, keyRetry):
			m.notice = ""
			return m, m.loadWallets()
		case key.Matches(msg, keyConfirm):
			if len(m.wallets) == 0 {
				return m, nil
			}
			m.busy = true
			return m, m.selectWallet(m.wallets[m.cursor].Symbol)
		}

	case buyPay:
		switch {
		case key.Matches(msg, keyBack):
			m.notice = ""
			m.step = buyPickWallet
			return m, m.loadWallets()
		case key.Matches(msg, keyConfirm):
			m.busy = true
			m.notice = ""
			return m, tea.Batch(m.spinner.Tick, m.confirmPayment())
		}
	}
	return m, nil
}

func (m *buyModel) finish() (tea.Model, tea.Cmd) {
	m.step = buyDone
	m.busy = false
	return m, tea.Quit
}

func (m *buyModel) confirmSelection() tea.Cmd {
	return func() tea.Msg {
		return activationMsg{err: m.sess.ConfirmSelection(m.ctx, m.cred)}
	}
}

func (m *buyModel) loadWallets() tea.Cmd {
	return func() tea.Msg {
		ws, err := m.sess.Wallets(m.ctx, m.cred)
		return buyWalletsMsg{wallets: ws, err: err}
	}
}

func (m *buyModel) selectWallet(symbol string) tea.Cmd {
	return func() tea.Msg {
		return walletSelectedMsg{err: m.sess.SelectWallet(m.ctx, m.cred, symbol)}
	}
}

func (m *buyModel) confirmPayment() tea.Cmd {
	return func() tea.Msg {
		return paidMsg{err: m.sess.ConfirmPayment(m.ctx, m.cred)}
	}
}

func waitCountdown(c *purchase.Countdown) tea.Cmd {
	return func() tea.Msg {
		t, ok := <-c.C()
		if !ok {
			return countdownEndedMsg{}
		}
		return countdownMsg(t)
	}
}

func (m *buyModel) View() string {
	plan, amount := m.sess.Plan(), m.sess.Amount()
	var b strings.Builder
	b.WriteString(formatter.Header("Buy " + plan.Type))
	b.WriteString("\n")

	switch m.step {
	case buyConfirm:
		b.WriteString(formatter.FormatPlanDetail(plan, formatter.Money(amount), formatter.Money(plan.ExpectedReturn(amount))))
		b.WriteString("\n")
		if m.busy {
			b.WriteString(m.spinner.View() + " Opening activation...\n")
		} else {
			b.WriteString(m.help.ShortHelpView([]key.Binding{keyConfirm, keyCancel}) + "\n")
		}

	case buyPickWallet:
		b.WriteString(m.timeLeft())
		b.WriteString("Choose the currency you will pay with:\n\n")
		if len(m.wallets) == 0 && m.notice == "" {
			b.WriteString(formatter.Dim("  Loading payment options...") + "\n")
		}
		for i, w := range m.wallets {
			cursor := "  "
			label := fmt.Sprintf("%-6s %s", w.Symbol, formatter.Dim(w.Name+" · "+w.Network))
			if i == m.cursor {
				cursor = formatter.StyleHeader.Render("▸ ")
				label = fmt.Sprintf("%-6s %s", formatter.Bold(w.Symbol), w.Name+" · "+w.Network)
			}
			b.WriteString(cursor + label + "\n")
		}
		b.WriteString(m.noticeLine())
		b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{keyUp, keyDown, keyConfirm, keyRetry, keyCancel}) + "\n")

	case buyPay:
		b.WriteString(m.timeLeft())
		if w, ok := m.selected(); ok {
			b.WriteString(formatter.FormatPaymentInstructions(w, formatter.Money(amount)))
		}
		b.WriteString("\n")
		b.WriteString(m.noticeLine())
		if m.busy {
			b.WriteString(m.spinner.View() + " Confirming payment...\n")
		} else {
			b.WriteString(formatter.Dim("Press enter once the payment has been sent.") + "\n")
			b.WriteString(m.help.ShortHelpView([]key.Binding{keyConfirm, keyBack, keyCancel}) + "\n")
		}

	case buyDone:
		b.WriteString(m.result())
	}
	return b.String()
}

func (m *buyModel) selected() (domain.Wallet, bool) {
	sym := m.sess.SelectedWallet()
	for _, w := range m.wallets {
		if w.Symbol == sym {
			return w, true
		}
	}
	return domain.Wallet{}, false
}

func (m *buyModel) timeLeft() string {
	return "Time left to pay: " + formatter.RemainingStyled(m.remaining) + "\n\n"
}

func (m *buyModel) noticeLine() string {
	if m.notice == "" {
		return ""
	}
	return formatter.ErrorLine(m.notice) + "\n"
}

func (m *buyModel) result() string {
	st := m.sess.State()
	switch st {
	case purchase.Confirmed:
		return formatter.SuccessLine(fmt.Sprintf("Payment for %s %s confirmed.", m.sess.Plan().Type, formatter.Money(m.sess.Amount()))) +
			"\n" + formatter.Dim(stateHint(st)) + "\n"
	case purchase.Expired:
		return formatter.ErrorLine("Payment window expired.") + "\n" + formatter.Dim(stateHint(st)) + "\n"
	case purchase.Cancelled:
		return formatter.Dim("Purchase cancelled.") + "\n"
	case purchase.Failed:
		msg := "Could not open the plan activation."
		if err := m.sess.Err(); err != nil {
			msg = domain.UserMessage(err, msg)
		}
		return formatter.ErrorLine(msg) + "\n"
	}
	return formatter.StatePill(st) + "\n"
}
