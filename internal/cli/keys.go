package cli

import "github.com/charmbracelet/bubbles/key"

var (
	keyUp      = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	keyDown    = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	keyConfirm = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm"))
	keyCancel  = key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel"))
	keyBack    = key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "change wallet"))
	keyRetry   = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	keyQuit    = key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit"))
	keyTab     = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab"))
	keyType    = key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "plans/withdrawals"))
	keyApprove = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve"))
	keyReject  = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reject"))
	keyYes     = key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes"))
	keyNo      = key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no"))
)
