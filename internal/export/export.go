// Package export reads every page of a storage listing using the skip and take query parameters.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/knot-cloud/storage-go/network"
	"github.com/knot-cloud/storage-go/storage"
	"golang.org/x/time/rate"
)

// ListFunc fetches one page of data, e.g. a closure over storage.Client.ListDataByDevice
type ListFunc func(ctx context.Context, query network.Query) ([]storage.Data, error)

// Options controls the paging
type Options struct {
	PageSize          int     // records requested per page (take)
	Limit             int     // stop after this many records, 0 for no limit
	RequestsPerSecond float64 // 0 disables pacing
	Logger            *slog.Logger
}

const DefaultPageSize = 100

// Run calls list with increasing skip values until a short page is returned or
// opts.Limit records have been emitted. It returns the number of records emitted.
//
// The "skip" value in query is used as the starting offset, "take" is replaced by opts.PageSize.
// Errors from list and emit are returned unchanged.
func Run(ctx context.Context, list ListFunc, query network.Query, opts Options, emit func(storage.Data) error) (int, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	skip, err := startOffset(query)
	if err != nil {
		return 0, err
	}

	emitted := 0
	for page := 0; ; page++ {
		take := pageSize
		if opts.Limit > 0 && opts.Limit-emitted < take {
			take = opts.Limit - emitted
		}

		if err := limiter.Wait(ctx); err != nil {
			return emitted, err
		}

		pageQuery := maps.Clone(query)
		if pageQuery == nil {
			pageQuery = network.Query{}
		}
		pageQuery["skip"] = skip
		pageQuery["take"] = take

		data, err := list(ctx, pageQuery)
		if err != nil {
			return emitted, err
		}

		logger.Debug("export page",
			slog.Int("page", page),
			slog.Int("skip", skip),
			slog.Int("records", len(data)),
		)

		for _, d := range data {
			if opts.Limit > 0 && emitted >= opts.Limit {
				return emitted, nil
			}
			if err := emit(d); err != nil {
				return emitted, err
			}
			emitted++
		}

		if len(data) < take || (opts.Limit > 0 && emitted >= opts.Limit) {
			return emitted, nil
		}
		skip += len(data)
	}
}

// startOffset reads the optional skip value supplied by the caller
func startOffset(query network.Query) (int, error) {
	v, ok := query["skip"]
	if !ok || v == nil {
		return 0, nil
	}
	skip, ok := v.(int)
	if !ok || skip < 0 {
		return 0, fmt.Errorf("skip must be a non-negative integer, got %v", v)
	}
	return skip, nil
}
