package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/snapster/internal/dbx"
	"github.com/dmitrijs2005/snapster/internal/server/repositories/albums"
	"github.com/dmitrijs2005/snapster/internal/server/repositories/files"
	"github.com/dmitrijs2005/snapster/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/snapster/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same code path inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Files(db dbx.DBTX) files.Repository
	Albums(db dbx.DBTX) albums.Repository
}
