package router

import (
	"testing"

	"github.com/and161185/sales-intel/internal/model"
	"github.com/stretchr/testify/require"
)

func TestRoute(t *testing.T) {
	t.Parallel()

	cases := []struct {
		s    model.Session
		want View
	}{
		{model.Session{}, LoginView},
		{model.Session{Role: model.RoleAdmin}, LoginView},
		{model.Session{Token: "t", Role: model.RoleAdmin}, AdminView},
		{model.Session{Token: "t", Role: model.RoleVendas}, VendasView},
		{model.Session{Token: "t", Role: "gerente"}, VendasView},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Route(tc.s), "%+v", tc.s)
	}
	require.Equal(t, "admin", AdminView.String())
}
