// Package views holds the display state of the login, vendas and admin
// screens and the rules for updating it from backend calls.
package views

import (
	"errors"

	"github.com/and161185/sales-intel/internal/client/api"
	"github.com/and161185/sales-intel/internal/errs"
)

// Message converts a backend failure into the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	detail := api.DetailOf(err)
	switch {
	case errors.Is(err, errs.ErrBusy):
		return "Aguarde a conclusão da solicitação em andamento"
	case errors.Is(err, errs.ErrInvalidInput):
		return orDefault(detail, "Dados inválidos")
	case errors.Is(err, errs.ErrUnauthorized):
		return "Sessão expirada. Faça login novamente"
	case errors.Is(err, errs.ErrRejected):
		return orDefault(detail, "Solicitação recusada pelo servidor")
	case errors.Is(err, errs.ErrServer):
		return "Erro no servidor. Tente novamente mais tarde"
	case errors.Is(err, errs.ErrMalformedResponse):
		return "Resposta inesperada do servidor"
	case errors.Is(err, errs.ErrTransport):
		return "Não foi possível conectar ao servidor"
	default:
		return "Erro inesperado"
	}
}

// LoginMessage is Message for the credential exchange, where a 401 means bad credentials.
func LoginMessage(err error) string {
	if errors.Is(err, errs.ErrUnauthorized) {
		return orDefault(api.DetailOf(err), "Credenciais inválidas")
	}
	return Message(err)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
