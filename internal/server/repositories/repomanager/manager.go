package repomanager

import (
	"context"
	"database/sql"

	"github.com/okolodev/credvault/internal/dbx"
	"github.com/okolodev/credvault/internal/server/repositories/credentials"
	"github.com/okolodev/credvault/internal/server/repositories/folders"
	"github.com/okolodev/credvault/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can
// run the same repository code against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Folders(db dbx.DBTX) folders.Repository
	Credentials(db dbx.DBTX) credentials.Repository
}
