package cli

import (
	"fmt"

	"github.com/gnfinvest/gnf/internal/cli/formatter"
	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/events"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newAdminWalletsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallets",
		Short: "List every payment wallet, including inactive ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := app.admin(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Wallets.Refresh(cmd.Context(), cred); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWallets(app.Wallets.All(), true))
			return nil
		},
	}

	cmd.AddCommand(
		newAdminWalletAddCmd(app),
		newAdminWalletEditCmd(app),
		newAdminWalletRemoveCmd(app),
	)
	return cmd
}

func walletFlags(fs *pflag.FlagSet, w *domain.Wallet) {
	fs.StringVar(&w.Name, "name", "", "display name, e.g. Bitcoin")
	fs.StringVar(&w.Symbol, "symbol", "", "currency symbol, e.g. BTC")
	fs.StringVar(&w.Network, "network", "", "network, e.g. ERC20")
	fs.StringVar(&w.Address, "address", "", "wallet address investors pay into")
	fs.StringVar(&w.ContractAddress, "contract", "", "token contract address")
	fs.StringVar(&w.IconURL, "icon", "", "icon URL (defaults to the symbol's logo)")
	fs.BoolVar(&w.IsActive, "active", true, "offer this wallet to investors")
}

// walletsChanged drops the cached list, tells subscribers, and re-fetches
// so the table printed next reflects the server.
func (a *App) walletsChanged(cmd *cobra.Command, cred domain.Credential) error {
	a.Wallets.Invalidate()
	if a.Bus != nil {
		a.Bus.Publish(events.Event{Kind: events.WalletsChanged, At: a.now()})
	}
	if err := a.Wallets.Refresh(cmd.Context(), cred); err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWallets(a.Wallets.All(), true))
	return nil
}

func newAdminWalletAddCmd(app *App) *cobra.Command {
	var w domain.Wallet

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a payment wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := w.Validate(); err != nil {
				return err
			}
			cred, err := app.admin(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Backend.CreateWallet(cmd.Context(), cred, w); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine("Wallet "+domain.NormalizeSymbol(w.Symbol)+" added."))
			return app.walletsChanged(cmd, cred)
		},
	}

	walletFlags(cmd.Flags(), &w)
	return cmd
}

func newAdminWalletEditCmd(app *App) *cobra.Command {
	var patch domain.Wallet

	cmd := &cobra.Command{
		Use:   "edit ID|SYMBOL",
		Short: "Change a wallet; only the flags you pass are updated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := app.admin(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Wallets.Refresh(cmd.Context(), cred); err != nil {
				return err
			}
			w, err := resolveWallet(app.Wallets.All(), args[0])
			if err != nil {
				return err
			}

			fs := cmd.Flags()
			if !fs.Changed("name") && !fs.Changed("symbol") && !fs.Changed("network") &&
				!fs.Changed("address") && !fs.Changed("contract") && !fs.Changed("icon") && !fs.Changed("active") {
				return &domain.ValidationError{Reason: "nothing to update; pass at least one flag"}
			}
			if fs.Changed("name") {
				w.Name = patch.Name
			}
			if fs.Changed("symbol") {
				w.Symbol = patch.Symbol
			}
			if fs.Changed("network") {
				w.Network = patch.Network
			}
			if fs.Changed("address") {
				w.Address = patch.Address
			}
			if fs.Changed("contract") {
				w.ContractAddress = patch.ContractAddress
			}
			if fs.Changed("icon") {
				w.IconURL = patch.IconURL
			}
			if fs.Changed("active") {
				w.IsActive = patch.IsActive
			}

			if err := app.Backend.UpdateWallet(cmd.Context(), cred, w.ID, w); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine("Wallet "+domain.NormalizeSymbol(w.Symbol)+" updated."))
			return app.walletsChanged(cmd, cred)
		},
	}

	walletFlags(cmd.Flags(), &patch)
	return cmd
}

func newAdminWalletRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID|SYMBOL",
		Aliases: []string{"rm"},
		Short:   "Delete a wallet",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := app.admin(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Wallets.Refresh(cmd.Context(), cred); err != nil {
				return err
			}
			w, err := resolveWallet(app.Wallets.All(), args[0])
			if err != nil {
				return err
			}
			if err := app.Backend.DeleteWallet(cmd.Context(), cred, w.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.SuccessLine("Wallet "+w.Symbol+" removed."))
			return app.walletsChanged(cmd, cred)
		},
	}
}
