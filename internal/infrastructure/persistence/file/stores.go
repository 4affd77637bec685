// Package file implements the persisted documents of the bot: one store
// per JSON document plus the two plain-text logs. Every store wraps the
// generic docstore so cross-process writers stay safe.
package file

import (
	"path/filepath"

	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/docstore"
)

// Document file names under the data directory.
const (
	catalogFile    = "catalog.json"
	codesFile      = "codes.json"
	suspendedFile  = "suspended.json"
	adminsFile     = "admins.json"
	adminPermsFile = "admin_perms.json"
	complaintsFile = "complaints.json"
	usersFile      = "users.json"
	statsFile      = "stats.json"
	seenFile       = "all_users.txt"
	loginsFile     = "logged_users.txt"
)

// Stores bundles every persisted document.
type Stores struct {
	Catalog     *CatalogStore
	Enrollment  *EnrollmentStore
	Suspensions *SuspensionStore
	Admins      *AdminRegistry
	Identities  *IdentityStore
	Complaints  *ComplaintStore
	Stats       *StatsStore
	Seen        *SeenStore
	Logins      *LoginStore
}

// NewStores wires every store under dataDir with shared lock options.
// ownerID is excluded from admin persistence.
func NewStores(dataDir string, opts docstore.LockOptions, ownerID int64) *Stores {
	join := func(name string) string { return filepath.Join(dataDir, name) }

	return &Stores{
		Catalog:     NewCatalogStore(join(catalogFile), opts),
		Enrollment:  NewEnrollmentStore(join(codesFile), opts),
		Suspensions: NewSuspensionStore(join(suspendedFile), opts),
		Admins:      NewAdminRegistry(join(adminsFile), join(adminPermsFile), opts, ownerID),
		Identities:  NewIdentityStore(join(usersFile), opts),
		Complaints:  NewComplaintStore(join(complaintsFile), opts),
		Stats:       NewStatsStore(join(statsFile), opts),
		Seen:        NewSeenStore(join(seenFile)),
		Logins:      NewLoginStore(join(loginsFile)),
	}
}
