package main

import (
	"fmt"

	"github.com/and161185/sales-intel/internal/client/app"
	"github.com/and161185/sales-intel/internal/client/router"
	"github.com/and161185/sales-intel/internal/client/views"
	"github.com/and161185/sales-intel/internal/model"
	"github.com/spf13/cobra"
)

type appFn func() *app.App

// requireView fails unless the current session routes to want.
func requireView(a *app.App, want router.View) error {
	switch got := a.View(); {
	case got == want:
		return nil
	case got == router.LoginView:
		return fmt.Errorf("%w: run `salesintel login`", errLoginRequired)
	default:
		return fmt.Errorf("not available for the %s profile", got)
	}
}

// reported marks an error whose message was already shown to the user.
type reported struct{ error }

func (r reported) Unwrap() error { return r.error }

// failure prints the user-facing message and returns err for the exit code.
func failure(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	fmt.Fprintln(cmd.ErrOrStderr(), views.Message(err))
	return reported{err}
}

func loginCmd(get appFn) *cobra.Command {
	var user, pass string
	c := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			s, err := a.Login.Submit(cmd.Context(), user, pass)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), a.Login.State().Error)
				return reported{err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user, s.Role)
			return nil
		},
	}
	c.Flags().StringVarP(&user, "username", "u", "", "username (required)")
	c.Flags().StringVarP(&pass, "password", "p", "", "password (required)")
	_ = c.MarkFlagRequired("username")
	_ = c.MarkFlagRequired("password")
	return c
}

func logoutCmd(get appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Run: func(cmd *cobra.Command, _ []string) {
			get().Session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		},
	}
}

func statusCmd(get appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current view",
		Run: func(cmd *cobra.Command, _ []string) {
			a := get()
			s := a.Session.Current()
			if !s.Authenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "view: login (not logged in)")
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "view: %s (role %s)\n", a.View(), s.Role)
		},
	}
}

func analyzeCmd(get appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze URL",
		Short: "Analyze a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if a.View() == router.LoginView {
				return requireView(a, router.VendasView)
			}
			res, err := a.Vendas.Analyze(cmd.Context(), args[0])
			if err != nil {
				return failure(cmd, err)
			}
			return views.RenderAnalysis(cmd.OutOrStdout(), res)
		},
	}
}

func pagesCmd(get appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List analyzed pages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if a.View() == router.LoginView {
				return requireView(a, router.VendasView)
			}
			if err := a.Vendas.RefreshPages(cmd.Context()); err != nil {
				return failure(cmd, err)
			}
			return views.RenderPages(cmd.OutOrStdout(), a.Vendas.State().Pages)
		},
	}
}

func adminCmd(get appFn) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Admin dashboard and user management",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if p := cmd.Root(); p.PersistentPreRunE != nil {
				if err := p.PersistentPreRunE(cmd, args); err != nil {
					return err
				}
			}
			return requireView(get(), router.AdminView)
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Cache statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if err := a.Admin.Refresh(cmd.Context()); err != nil {
				return failure(cmd, err)
			}
			return views.RenderStats(cmd.OutOrStdout(), *a.Admin.State().Stats)
		},
	}

	var limit int
	recent := &cobra.Command{
		Use:   "recent",
		Short: "Most recent analyses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			recs, err := a.API.FetchRecentAnalyses(cmd.Context(), a.Session.Current().Token, limit)
			if err != nil {
				return failure(cmd, err)
			}
			return views.RenderRecent(cmd.OutOrStdout(), recs)
		},
	}
	recent.Flags().IntVarP(&limit, "limit", "n", views.DefaultRecentLimit, "number of entries (server-capped)")

	users := &cobra.Command{
		Use:   "users",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if err := a.Admin.LoadUsers(cmd.Context()); err != nil {
				return failure(cmd, err)
			}
			return views.RenderUsers(cmd.OutOrStdout(), a.Admin.State().Users)
		},
	}

	var user, pass, role string
	addUser := &cobra.Command{
		Use:   "add-user",
		Short: "Register an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			u, err := a.Admin.AddUser(cmd.Context(), model.RegisterRequest{Username: user, Password: pass, Role: model.Role(role)})
			if err != nil {
				return failure(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Usuário %s criado (%s)\n\n", u.Username, u.Role)
			return views.RenderUsers(cmd.OutOrStdout(), a.Admin.State().Users)
		},
	}
	addUser.Flags().StringVarP(&user, "username", "u", "", "username (required)")
	addUser.Flags().StringVarP(&pass, "password", "p", "", "password (required)")
	addUser.Flags().StringVar(&role, "role", string(model.RoleVendas), "vendas or admin")
	_ = addUser.MarkFlagRequired("username")
	_ = addUser.MarkFlagRequired("password")

	admin.AddCommand(stats, recent, users, addUser)
	return admin
}
