package domain

import "math"

type PageRequest struct {
	Page  int
	Limit int
}

// Offset is the number of threads skipped before the requested page. It
// saturates at math.MaxInt, which still lands past the last thread.
func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

type Pagination struct {
	CurrentPage  int
	TotalPages   int
	TotalThreads int
}

// NewPagination computes page counters. Pages past the end are reported as
// requested, callers get an empty thread list for them.
func NewPagination(req PageRequest, totalThreads int) Pagination {
	totalPages := 0
	if req.Limit > 0 {
		totalPages = (totalThreads + req.Limit - 1) / req.Limit
	}
	return Pagination{
		CurrentPage:  req.Page,
		TotalPages:   totalPages,
		TotalThreads: totalThreads,
	}
}

type ThreadPage struct {
	Threads    []Thread
	Pagination Pagination
}
