package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPro map[uint64]bool

func (s stubPro) IsPro(_ context.Context, userID uint64) (bool, error) {
	if userID == 13 {
		return false, errors.New("store down")
	}
	return s[userID], nil
}

func TestResolveRoute(t *testing.T) {
	svc := NewRouteService(stubPro{1: false, 2: true})
	cases := []struct {
		name     string
		path     string
		userID   uint64
		allowed  bool
		redirect string
		cleaned  string
	}{
		{"root is public", "/", 0, true, "", "/"},
		{"pricing is public", "/pricing", 0, true, "", "/pricing"},
		{"dashboard needs login", "/dashboard", 0, false, RedirectLogin, "/dashboard"},
		{"dashboard for free user", "/dashboard", 1, true, "", "/dashboard"},
		{"community needs login first", "/community", 0, false, RedirectLogin, "/community"},
		{"community for free user", "/community", 1, false, RedirectPricing, "/community"},
		{"community for pro user", "/community", 2, true, "", "/community"},
		{"subpath inherits", "/community/posts/42", 1, false, RedirectPricing, "/community/posts/42"},
		{"query stripped", "/inbox?thread=3", 2, true, "", "/inbox"},
		{"unknown needs login", "/secret-page", 0, false, RedirectLogin, "/secret-page"},
		{"unknown allows any user", "/secret-page", 1, true, "", "/secret-page"},
		{"relative cleaned", "settings/../profile", 1, false, RedirectPricing, "/profile"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := svc.ResolveRoute(context.Background(), tc.path, tc.userID)
			require.NoError(t, err)
			assert.Equal(t, tc.allowed, res.Allowed)
			assert.Equal(t, tc.redirect, res.Redirect)
			assert.Equal(t, tc.cleaned, res.Path)
		})
	}
}

func TestResolveRouteProCheckError(t *testing.T) {
	_, err := NewRouteService(stubPro{}).ResolveRoute(context.Background(), "/inbox", 13)
	assert.Error(t, err)
}
