package usecase

import "time"

const (
	defaultPageSize = 20
	maxPageSize     = 100

	balanceCacheTTL    = 30 * time.Second
	balanceCachePrefix = "balance:"
)
