package feed

// Page size bounds enforced server-side.
const (
	minPageSize    = 1
	defaultMaxPage = 50
)

// Page is one window over a ranked feed. NextCursor is empty when no items
// remain beyond the page.
type Page struct {
	Items      []RankedItem `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
	HasMore    bool         `json:"has_more"`
	// CursorMiss reports that the supplied cursor no longer matched a ranked
	// item and the window restarted from the top.
	CursorMiss bool `json:"-"`
}

// Paginator windows ranked feeds by opaque item-id cursors.
type Paginator struct {
	maxPageSize int
}

// PaginatorOption applies a configuration option to the Paginator.
type PaginatorOption func(*Paginator)

// WithMaxPageSize sets the upper clamp on requested page sizes.
func WithMaxPageSize(size int) PaginatorOption {
	return func(p *Paginator) {
		if size > 0 {
			p.maxPageSize = size
		}
	}
}

// NewPaginator creates a Paginator with configuration options.
func NewPaginator(opts ...PaginatorOption) *Paginator {
	p := &Paginator{maxPageSize: defaultMaxPage}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Paginate returns up to pageSize items starting after the cursor. An empty
// cursor starts at the top. An unknown cursor also restarts at the top rather
// than failing; clients holding a stale cursor still get a valid page.
func (p *Paginator) Paginate(ranked []RankedItem, cursor string, pageSize int) Page {
	if pageSize < minPageSize {
		pageSize = minPageSize
	}
	if pageSize > p.maxPageSize {
		pageSize = p.maxPageSize
	}

	start := 0
	miss := false
	if cursor != "" {
		miss = true
		for i, r := range ranked {
			if r.Item.ID == cursor {
				start = i + 1
				miss = false
				break
			}
		}
	}

	end := start + pageSize
	if end > len(ranked) {
		end = len(ranked)
	}
	items := ranked[start:end]

	page := Page{Items: items, CursorMiss: miss}
	if end < len(ranked) && len(items) > 0 {
		page.NextCursor = items[len(items)-1].Item.ID
		page.HasMore = true
	}
	return page
}
