package repomanager

import (
	"context"
	"database/sql"

	"github.com/mukimuddin/deadbox/internal/dbx"
	"github.com/mukimuddin/deadbox/internal/server/repositories/letters"
	"github.com/mukimuddin/deadbox/internal/server/repositories/refreshtokens"
	"github.com/mukimuddin/deadbox/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a *sql.DB or a *sql.Tx,
// so services can decide per call whether work runs in a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Letters(db dbx.DBTX) letters.Repository
}
