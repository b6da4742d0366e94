package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gnfinvest/gnf/internal/approval"
	"github.com/gnfinvest/gnf/internal/cli/formatter"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/spf13/cobra"
)

var (
	reviewStatuses = []domain.TransactionStatus{domain.TxPending, domain.TxCompleted, domain.TxFailed}
	reviewTypes    = []domain.TransactionType{domain.TxPlanActivation, domain.TxWithdrawal}
)

var reviewTabLabels = map[domain.TransactionStatus]string{
	domain.TxPending:   "Pending",
	domain.TxCompleted: "Approved",
	domain.TxFailed:    "Rejected",
}

type reviewLoadedMsg struct {
	rows []domain.Transaction
	err  error
}

type reviewDecidedMsg struct {
	tx     domain.Transaction
	action approval.Action
	err    error
}

// reviewModel is the admin review console: a status tab, a type sub-tab and
// the matching rows. Decisions go through the approval queue and the list
// is re-fetched afterwards.
type reviewModel struct {
	ctx   context.Context
	queue *approval.Queue
	cred  domain.Credential
	now   func() time.Time

	tab     int
	subTab  int
	rows    []domain.Transaction
	cursor  int
	loading bool
	notice  string
	failed  bool

	confirming approval.Action
	target     domain.Transaction

	help help.Model
}

func newReviewModel(ctx context.Context, queue *approval.Queue, cred domain.Credential, now func() time.Time) *reviewModel {
	return &reviewModel{
		ctx:     ctx,
		queue:   queue,
		cred:    cred,
		now:     now,
		loading: true,
		help:    help.New(),
	}
}

func (m *reviewModel) filter() domain.TransactionFilter {
	return domain.TransactionFilter{Status: reviewStatuses[m.tab], Type: reviewTypes[m.subTab]}
}

func (m *reviewModel) Init() tea.Cmd { return m.load() }

func (m *reviewModel) load() tea.Cmd {
	filter := m.filter()
	return func() tea.Msg {
		rows, err := m.queue.List(m.ctx, m.cred, filter)
		return reviewLoadedMsg{rows: rows, err: err}
	}
}

func (m *reviewModel) decide(tx domain.Transaction, action approval.Action) tea.Cmd {
	return func() tea.Msg {
		var err error
		if action == approval.Reject {
			err = m.queue.Reject(m.ctx, m.cred, tx.ID)
		} else {
			err = m.queue.Approve(m.ctx, m.cred, tx.ID)
		}
		return reviewDecidedMsg{tx: tx, action: action, err: err}
	}
}

func (m *reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reviewLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.setNotice(domain.UserMessage(msg.err, "Could not load transactions."), true)
			return m, nil
		}
		m.rows = msg.rows
		if m.cursor >= len(m.rows) {
			m.cursor = max(len(m.rows)-1, 0)
		}
		return m, nil

	case reviewDecidedMsg:
		if msg.err != nil {
			m.setNotice(domain.UserMessage(msg.err, "Could not update the transaction."), true)
		} else {
			verb := "approved"
			if msg.action == approval.Reject {
				verb = "rejected"
			}
			m.setNotice(fmt.Sprintf("%s of %s by %s %s.", msg.tx.Type, formatter.Money(msg.tx.Amount), msg.tx.UserLabel(), verb), false)
		}
		m.loading = true
		return m, m.load()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *reviewModel) setNotice(s string, failed bool) {
	m.notice = s
	m.failed = failed
}

func (m *reviewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirming != "" {
		switch {
		case key.Matches(msg, keyYes):
			tx, action := m.target, m.confirming
			m.confirming = ""
			return m, m.decide(tx, action)
		case key.Matches(msg, keyNo):
			m.confirming = ""
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keyQuit):
		return m, tea.Quit
	case key.Matches(msg, keyUp):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keyDown):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, keyTab):
		m.tab = (m.tab + 1) % len(reviewStatuses)
		return m, m.reload()
	case key.Matches(msg, keyType):
		m.subTab = (m.subTab + 1) % len(reviewTypes)
		return m, m.reload()
	case key.Matches(msg, keyRetry):
		return m, m.reload()
	case key.Matches(msg, keyApprove):
		m.ask(approval.Approve)
	case key.Matches(msg, keyReject):
		m.ask(approval.Reject)
	}
	return m, nil
}

func (m *reviewModel) reload() tea.Cmd {
	m.cursor = 0
	m.loading = true
	m.notice = ""
	return m.load()
}

// ask starts the y/n prompt when the row under the cursor offers action.
func (m *reviewModel) ask(action approval.Action) {
	if len(m.rows) == 0 {
		return
	}
	tx := m.rows[m.cursor]
	for _, a := range m.queue.Actions(tx) {
		if a == action {
			m.confirming, m.target = action, tx
			return
		}
	}
}

func (m *reviewModel) View() string {
	var b strings.Builder
	b.WriteString(formatter.Header("Transaction review"))
	b.WriteString("\n")

	tabs := make([]string, 0, len(reviewStatuses))
	for i, st := range reviewStatuses {
		label := reviewTabLabels[st]
		if i == m.tab {
			label = formatter.StyleHeader.Render("[" + label + "]")
		} else {
			label = formatter.Dim(" " + label + " ")
		}
		tabs = append(tabs, label)
	}
	sub := "Plans"
	if reviewTypes[m.subTab] == domain.TxWithdrawal {
		sub = "Withdrawals"
	}
	b.WriteString(strings.Join(tabs, " ") + formatter.Dim("  ·  ") + formatter.Bold(sub) + "\n\n")

	switch {
	case m.loading:
		b.WriteString(formatter.Dim("Loading...") + "\n")
	case len(m.rows) == 0:
		b.WriteString(formatter.Dim("No transactions match this filter.") + "\n")
	default:
		rows := make([][]string, 0, len(m.rows))
		for i, tx := range m.rows {
			marker := " "
			if i == m.cursor {
				marker = formatter.StyleHeader.Render("▸")
			}
			if m.queue.InFlight(tx.ID) {
				marker = formatter.StyleYellow.Render("…")
			}
			rows = append(rows, append([]string{marker}, formatter.AdminRow(tx, m.now())...))
		}
		b.WriteString(formatter.RenderTable(append([]string{""}, formatter.AdminHeaders...), rows, 4))
	}

	if m.notice != "" {
		b.WriteString("\n")
		if m.failed {
			b.WriteString(formatter.ErrorLine(m.notice))
		} else {
			b.WriteString(formatter.SuccessLine(m.notice))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.confirming != "" {
		fmt.Fprintf(&b, "%s %s %s of %s by %s? %s\n",
			formatter.StyleYellow.Render("?"),
			strings.ToUpper(string(m.confirming[:1]))+string(m.confirming[1:]),
			m.target.Type, formatter.Money(m.target.Amount), m.target.UserLabel(),
			m.help.ShortHelpView([]key.Binding{keyYes, keyNo}))
	} else {
		b.WriteString(m.help.ShortHelpView([]key.Binding{keyUp, keyDown, keyApprove, keyReject, keyTab, keyType, keyRetry, keyQuit}) + "\n")
	}
	return b.String()
}

func newAdminReviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Review transactions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return &domain.ValidationError{Reason: "review needs a terminal; use 'gnf admin transactions' and 'gnf admin approve|reject ID'"}
			}
			cred, err := app.admin(cmd.Context())
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(newReviewModel(cmd.Context(), app.Approvals, cred, app.now),
				tea.WithContext(cmd.Context()),
				tea.WithInput(app.input(cmd)),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			).Run()
			return err
		},
	}
}
