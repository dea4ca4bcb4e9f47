package repo

import (
	"context"

	"github.com/hamed0406/outboundcheck/internal/domain"
)

// CheckStore holds the latest run result of each check, keyed by code.
// Writes replace the whole value; readers never see a partial result.
type CheckStore interface {
	Set(ctx context.Context, r domain.CheckRunResult) error
	Get(ctx context.Context, code string) (domain.CheckRunResult, bool, error)
	// List returns every stored result ordered by Order, then Code.
	List(ctx context.Context) ([]domain.CheckRunResult, error)
	// Subscribe delivers every subsequent Set. Call cancel to unsubscribe.
	Subscribe() (updates <-chan domain.CheckRunResult, cancel func())
}
