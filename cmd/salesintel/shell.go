package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/and161185/sales-intel/internal/client/app"
	"github.com/and161185/sales-intel/internal/client/router"
	"github.com/and161185/sales-intel/internal/client/views"
	"github.com/and161185/sales-intel/internal/model"
	"github.com/spf13/cobra"
)

func shellCmd(get appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session; the command set follows the current view",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd.Context(), get(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

var shellHelp = map[router.View]string{
	router.LoginView:  "login USER PASSWORD | help | quit",
	router.VendasView: "analyze URL | pages | logout | help | quit",
	router.AdminView:  "stats | recent [N] | users | add-user USER PASSWORD [vendas|admin] | logout | help | quit",
}

// runShell reads commands until EOF or quit. The prompt and the accepted
// commands are re-derived from the session after every line, so a forced
// logout lands on the login prompt immediately.
func runShell(ctx context.Context, a *app.App, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	for {
		view := a.View()
		fmt.Fprintf(out, "%s> ", view)
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		args := strings.Fields(sc.Text())
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprintln(out, shellHelp[view])
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch view {
		case router.LoginView:
			err = loginLine(ctx, a, args, out)
		case router.VendasView:
			err = vendasLine(ctx, a, args, out)
		case router.AdminView:
			err = adminLine(ctx, a, args, out)
		}
		if err != nil {
			fmt.Fprintln(out, err)
		}
		if view != router.LoginView && a.View() == router.LoginView {
			fmt.Fprintln(out, "Sessão encerrada. Faça login novamente.")
		}
	}
}

type lineError string

func (e lineError) Error() string { return string(e) }

func usageErr(view router.View) error { return lineError("uso: " + shellHelp[view]) }

func loginLine(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if args[0] != "login" || len(args) != 3 {
		return usageErr(router.LoginView)
	}
	if _, err := a.Login.Submit(ctx, args[1], args[2]); err != nil {
		return lineError(a.Login.State().Error)
	}
	fmt.Fprintf(out, "Bem-vindo, %s\n", args[1])
	return nil
}

func vendasLine(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	switch {
	case args[0] == "analyze" && len(args) == 2:
		res, err := a.Vendas.Analyze(ctx, args[1])
		if err != nil {
			return lineError(views.Message(err))
		}
		return views.RenderAnalysis(out, res)
	case args[0] == "pages" && len(args) == 1:
		if err := a.Vendas.RefreshPages(ctx); err != nil {
			return lineError(views.Message(err))
		}
		return views.RenderPages(out, a.Vendas.State().Pages)
	case args[0] == "logout" && len(args) == 1:
		a.Session.Logout()
		return nil
	default:
		return usageErr(router.VendasView)
	}
}

func adminLine(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	switch {
	case args[0] == "stats" && len(args) == 1:
		if err := a.Admin.Refresh(ctx); err != nil {
			fmt.Fprintln(out, views.Message(err))
			// stale data, if any, is still worth showing
		}
		st := a.Admin.State()
		if st.Stats == nil {
			return nil
		}
		if err := views.RenderStats(out, *st.Stats); err != nil {
			return err
		}
		fmt.Fprintln(out)
		return views.RenderRecent(out, st.Recent)
	case args[0] == "recent" && len(args) <= 2:
		limit := views.DefaultRecentLimit
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return usageErr(router.AdminView)
			}
			limit = n
		}
		recs, err := a.API.FetchRecentAnalyses(ctx, a.Session.Current().Token, limit)
		if err != nil {
			return lineError(views.Message(err))
		}
		return views.RenderRecent(out, recs)
	case args[0] == "users" && len(args) == 1:
		if err := a.Admin.LoadUsers(ctx); err != nil {
			return lineError(views.Message(err))
		}
		return views.RenderUsers(out, a.Admin.State().Users)
	case args[0] == "add-user" && (len(args) == 3 || len(args) == 4):
		req := model.RegisterRequest{Username: args[1], Password: args[2]}
		if len(args) == 4 {
			req.Role = model.Role(args[3])
		}
		u, err := a.Admin.AddUser(ctx, req)
		if err != nil {
			return lineError(views.Message(err))
		}
		fmt.Fprintf(out, "Usuário %s criado (%s)\n", u.Username, u.Role)
		return views.RenderUsers(out, a.Admin.State().Users)
	case args[0] == "logout" && len(args) == 1:
		a.Session.Logout()
		return nil
	default:
		return usageErr(router.AdminView)
	}
}
