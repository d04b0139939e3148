// Package store persists reports behind the /data endpoint.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Zachdehooge/damage-map/internal/config"
	"github.com/Zachdehooge/damage-map/internal/report"
)

// ErrReadOnly is returned by drivers that cannot accept new reports.
var ErrReadOnly = errors.New("store is read-only")

// Store holds reports. A report added with Pending set stays hidden from
// List until SetDamage completes it.
type Store interface {
	Add(ctx context.Context, r report.Report) (report.Report, error)
	// SetDamage fills the newest pending report of userID. ok is false when
	// the user has nothing pending.
	SetDamage(ctx context.Context, userID, damage string) (r report.Report, ok bool, err error)
	List(ctx context.Context) ([]report.Report, error)
	Close(ctx context.Context) error
}

// Open returns the driver named in cfg.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		return NewMemory(), nil
	case "file":
		return OpenFile(cfg.File)
	case "mongo":
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Reader adapts a Store to the generator's report source.
type Reader struct {
	Store Store
}

func (r Reader) FetchReports(ctx context.Context) ([]report.Report, error) {
	return r.Store.List(ctx)
}

func stamp(r report.Report) report.Report {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return r
}

func sortByCreated(reports []report.Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.Before(reports[j].CreatedAt)
	})
}
