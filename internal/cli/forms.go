package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/gnfinvest/gnf/internal/cli/formatter"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/spf13/cobra"
)

// gnfHuhTheme builds a huh theme from the formatter palette.
func gnfHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// input is where prompts and views read keys from.
func (a *App) input(cmd *cobra.Command) io.Reader {
	if a.In != nil {
		return a.In
	}
	return cmd.InOrStdin()
}

// runForm shows a themed form on the command's terminal.
func (a *App) runForm(cmd *cobra.Command, groups ...*huh.Group) error {
	form := huh.NewForm(groups...).
		WithTheme(gnfHuhTheme()).
		WithShowHelp(false).
		WithInput(a.input(cmd)).
		WithOutput(cmd.OutOrStdout())
	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	return nil
}

func passwordInput(title string, value *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(value)
}

func requiredInput(title, placeholder string, value *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(value).
		Validate(func(s string) error {
			if s == "" {
				return fmt.Errorf("%s is required", title)
			}
			return nil
		})
}

// validateAmount accepts the same input as the --amount flag.
func validateAmount(s string) error {
	d, err := parseAmount(s)
	if err != nil {
		return err
	}
	if !d.IsPositive() {
		return fmt.Errorf("enter a positive amount")
	}
	return nil
}

func currencyOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(domain.WithdrawalCurrencies))
	for _, c := range domain.WithdrawalCurrencies {
		opts = append(opts, huh.NewOption(c.Name, c.ID))
	}
	return opts
}
