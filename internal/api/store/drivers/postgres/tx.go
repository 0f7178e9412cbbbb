package postgres

import (
	"database/sql"

	"github.com/opslane/clientdesk/internal/api/store"
)

// txStore exposes the same repositories bound to an open transaction.
type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Accounts() store.Accounts       { return &accountsRepo{db: t.tx} }
func (t *txStore) Companies() store.Companies     { return &companiesRepo{db: t.tx} }
func (t *txStore) Invitations() store.Invitations { return &invitationsRepo{db: t.tx} }
func (t *txStore) Clients() store.Clients         { return &clientsRepo{db: t.tx} }
