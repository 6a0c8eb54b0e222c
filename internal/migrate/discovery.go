package migrate

import (
	"context"
	"log/slog"

	"github.com/snikjou/usagemig/internal/constants"
	apperrors "github.com/snikjou/usagemig/internal/errors"
	"github.com/snikjou/usagemig/internal/store"
)

// DiscoveryOptions tunes the pagination behavior of Discover.
type DiscoveryOptions struct {
	// PageSize is the starting page size. Defaults to
	// constants.DefaultPageSize.
	PageSize int
	// MinPageSize is the floor the page size shrinks to. Defaults to
	// constants.MinPageSize.
	MinPageSize int
	// SkipOversized opts into skipping an offset range that still
	// overflows the transport limit at the minimum page size. Documents in
	// a skipped range are never discovered; without the opt-in the run
	// aborts instead.
	SkipOversized bool
	// MaxDocuments caps the number of documents returned. Zero means
	// unlimited.
	MaxDocuments int
}

func (o DiscoveryOptions) withDefaults() DiscoveryOptions {
	if o.PageSize <= 0 {
		o.PageSize = constants.DefaultPageSize
	}
	if o.MinPageSize <= 0 {
		o.MinPageSize = constants.MinPageSize
	}
	return o
}

// Discover fetches the complete set of documents matching q, in id order,
// despite the backing store rejecting responses that overflow a transport
// size limit. On such a rejection it halves the page size, discards partial
// results, and restarts from offset zero; the deterministic id ordering
// makes the restarted pass observe the same sequence, so nothing is skipped
// or duplicated against a fixed snapshot of the data. Any other query error
// is fatal.
func Discover(ctx context.Context, c store.Container, q store.Query, opts DiscoveryOptions, logger *slog.Logger) ([]store.Document, error) {
	opts = opts.withDefaults()
	pageSize := opts.PageSize

	var all []store.Document
	offset := 0
	pages := 0

	for {
		if opts.MaxDocuments > 0 && len(all) >= opts.MaxDocuments {
			all = all[:opts.MaxDocuments]
			break
		}

		page, err := c.QueryPage(ctx, q, offset, pageSize)
		if err != nil {
			if !apperrors.IsResponseTooLarge(err) {
				return nil, err
			}

			if pageSize > opts.MinPageSize {
				pageSize = max(opts.MinPageSize, pageSize/2)
				logger.Warn("page response too large, shrinking page size and restarting discovery",
					"page_size", pageSize,
					"discarded", len(all),
				)
				all = nil
				offset = 0
				pages = 0
				continue
			}

			if opts.SkipOversized {
				// Deliberate lossy degradation: ids in this range will
				// never be discovered.
				logger.Warn("page response too large at minimum page size, skipping offset range",
					"offset", offset,
					"page_size", pageSize,
				)
				offset += pageSize
				continue
			}

			return nil, err
		}

		pages++
		all = append(all, page...)
		offset += len(page)

		logger.Debug("retrieved discovery page",
			"page", pages,
			"documents", len(page),
			"total", len(all),
		)

		// A short page marks end-of-results.
		if len(page) < pageSize {
			break
		}
	}

	logger.Info("discovery complete", "documents", len(all), "pages", pages, "page_size", pageSize)

	return all, nil
}
