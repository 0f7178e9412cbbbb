package service

import (
	"context"
	"testing"

	"github.com/opslane/clientdesk/internal/api/domain"
	"github.com/opslane/clientdesk/internal/api/store"

	"github.com/stretchr/testify/require"
)

func TestCheckSlug(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &CompanyService{Store: st}
	seedCompany(t, st, "Acme", "acme")

	t.Run("taken slug is unavailable", func(t *testing.T) {
		available, err := svc.CheckSlug(ctx, "acme")
		require.NoError(t, err)
		require.False(t, available)
	})

	t.Run("free slug is available", func(t *testing.T) {
		available, err := svc.CheckSlug(ctx, "globex")
		require.NoError(t, err)
		require.True(t, available)
	})

	t.Run("empty slug is rejected", func(t *testing.T) {
		_, err := svc.CheckSlug(ctx, "")
		require.ErrorIs(t, err, ErrInvalidCompanyRequest)
	})
}

func TestCompanyCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &CompanyService{Store: st}

	t.Run("registers an active company", func(t *testing.T) {
		company, err := svc.Create(ctx, CompanyRequest{
			Name:     "Acme",
			Slug:     "acme",
			Industry: "manufacturing",
		}, "")
		require.NoError(t, err)
		require.True(t, company.IsActive)
		require.NotEmpty(t, company.ID)

		stored, err := st.Companies().GetCompanyBySlug(ctx, "acme")
		require.NoError(t, err)
		require.Equal(t, company.ID, stored.ID)
	})

	t.Run("missing name or slug is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, CompanyRequest{Name: "Nameless"}, "")
		require.ErrorIs(t, err, ErrInvalidCompanyRequest)

		_, err = svc.Create(ctx, CompanyRequest{Slug: "slug-only"}, "")
		require.ErrorIs(t, err, ErrInvalidCompanyRequest)
	})

	t.Run("taken slug conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, CompanyRequest{Name: "Acme Clone", Slug: "acme"}, "")
		require.ErrorIs(t, err, ErrCompanyExists)
	})

	t.Run("taken name conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, CompanyRequest{Name: "Acme", Slug: "acme-2"}, "")
		require.ErrorIs(t, err, ErrCompanyExists)
	})
}

func TestCompanyList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &CompanyService{Store: st}

	mk := func(name, slug, industry string) {
		t.Helper()
		_, err := svc.Create(ctx, CompanyRequest{Name: name, Slug: slug, Industry: industry}, "")
		require.NoError(t, err)
	}
	mk("Acme Manufacturing", "acme", "manufacturing")
	mk("Globex", "globex", "software")
	mk("Initech", "initech", "software")

	t.Run("returns everything by default", func(t *testing.T) {
		companies, total, err := svc.List(ctx, domain.CompanyFilter{})
		require.NoError(t, err)
		require.Equal(t, 3, total)
		require.Len(t, companies, 3)
	})

	t.Run("filters by industry", func(t *testing.T) {
		companies, total, err := svc.List(ctx, domain.CompanyFilter{Industry: "software"})
		require.NoError(t, err)
		require.Equal(t, 2, total)
		require.Len(t, companies, 2)
	})

	t.Run("searches by name", func(t *testing.T) {
		companies, total, err := svc.List(ctx, domain.CompanyFilter{Search: "manufact"})
		require.NoError(t, err)
		require.Equal(t, 1, total)
		require.Equal(t, "Acme Manufacturing", companies[0].Name)
	})

	t.Run("paginates with a stable total", func(t *testing.T) {
		first, total, err := svc.List(ctx, domain.CompanyFilter{Take: 2})
		require.NoError(t, err)
		require.Equal(t, 3, total)
		require.Len(t, first, 2)

		rest, total, err := svc.List(ctx, domain.CompanyFilter{Skip: 2, Take: 2})
		require.NoError(t, err)
		require.Equal(t, 3, total)
		require.Len(t, rest, 1)
		require.NotContains(t, []string{first[0].ID, first[1].ID}, rest[0].ID)
	})
}

func TestCompanyUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &CompanyService{Store: st}
	company := seedCompany(t, st, "Acme", "acme")
	seedCompany(t, st, "Globex", "globex")

	t.Run("rewrites the writable fields", func(t *testing.T) {
		updated, err := svc.Update(ctx, company.ID, CompanyRequest{
			Name:    "Acme Corp",
			Slug:    "acme",
			Website: "https://acme.test",
			City:    "Springfield",
		})
		require.NoError(t, err)
		require.Equal(t, "Acme Corp", updated.Name)
		require.Equal(t, "https://acme.test", updated.Website)

		stored, err := svc.GetByID(ctx, company.ID)
		require.NoError(t, err)
		require.Equal(t, "Springfield", stored.City)
	})

	t.Run("stealing another company's slug conflicts", func(t *testing.T) {
		_, err := svc.Update(ctx, company.ID, CompanyRequest{Name: "Acme Corp", Slug: "globex"})
		require.ErrorIs(t, err, ErrCompanyExists)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := svc.Update(ctx, "01J00000000000000000000000", CompanyRequest{Name: "X", Slug: "x"})
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestCompanyStatusAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &CompanyService{Store: st}
	company := seedCompany(t, st, "Acme", "acme")

	t.Run("deactivation blocks signups", func(t *testing.T) {
		require.NoError(t, svc.UpdateStatus(ctx, company.ID, false))

		auth := newAuthService(t, st)
		_, err := auth.Signup(ctx, SignupRequest{
			CompanyID: company.ID,
			Email:     "late@acme.test",
			Username:  "late",
			Password:  "pw",
		})
		require.ErrorIs(t, err, ErrInvalidCompany)
	})

	t.Run("delete cascades to the tenant's accounts", func(t *testing.T) {
		account := seedAccount(t, st, company.ID, "doomed@acme.test", domain.RoleMember)

		require.NoError(t, svc.Delete(ctx, company.ID))

		_, err := svc.GetByID(ctx, company.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = st.Accounts().GetAccountByID(ctx, account.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("deleting twice is not found", func(t *testing.T) {
		require.ErrorIs(t, svc.Delete(ctx, company.ID), store.ErrNotFound)
	})
}
