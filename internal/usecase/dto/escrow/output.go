package escrowdto

import "github.com/LavaJover/shvark-escrow-service/internal/domain"

type ListEscrowsOutput struct {
	Escrows    []*domain.EscrowTransaction
	Pagination Pagination
}

type Pagination struct {
	CurrentPage  int32
	TotalPages   int32
	TotalItems   int32
	ItemsPerPage int32
}

func NewPagination(page, limit, total int64) Pagination {
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return Pagination{
		CurrentPage:  int32(page),
		TotalPages:   int32(totalPages),
		TotalItems:   int32(total),
		ItemsPerPage: int32(limit),
	}
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// NormalizePage clamps pagination parameters to sane bounds.
func NormalizePage(page, limit int64) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}
