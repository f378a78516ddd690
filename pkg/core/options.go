package core

// CaptureOption configures a Capture operation using the functional
// options pattern.
type CaptureOption func(*CaptureOptions)

// CaptureOptions contains configuration options for Capture operations.
type CaptureOptions struct {
	// Force bypasses the duplicate-URL suppression window.
	Force bool

	// Tags are user-assigned labels stored with the memory.
	Tags []string

	// SelectedText is the text the user highlighted on the page, if any.
	SelectedText string

	// Favicon is the page's favicon URL.
	Favicon string
}

// WithForce bypasses duplicate suppression, capturing the page even if the
// same URL was saved within the duplicate window.
//
// Example:
//
//	memory, _ := client.Capture(ctx, page, core.WithForce())
func WithForce() CaptureOption {
	return func(opts *CaptureOptions) {
		opts.Force = true
	}
}

// WithTags attaches tags to the captured memory.
func WithTags(tags ...string) CaptureOption {
	return func(opts *CaptureOptions) {
		opts.Tags = append(opts.Tags, tags...)
	}
}

// WithSelectedText records the user's highlighted text with the memory.
func WithSelectedText(text string) CaptureOption {
	return func(opts *CaptureOptions) {
		opts.SelectedText = text
	}
}

// WithFavicon records the page's favicon URL with the memory.
func WithFavicon(favicon string) CaptureOption {
	return func(opts *CaptureOptions) {
		opts.Favicon = favicon
	}
}

// SearchOption configures a Search operation.
type SearchOption func(*SearchOptions)

// SearchOptions contains configuration options for Search operations.
type SearchOptions struct {
	// Limit caps the number of results. Default: 10
	Limit int

	// MinScore overrides the document similarity threshold.
	MinScore float64
}

// WithLimit caps the number of search results.
//
// Example:
//
//	results, _ := client.Search(ctx, "rust tutorials", core.WithLimit(5))
func WithLimit(limit int) SearchOption {
	return func(opts *SearchOptions) {
		opts.Limit = limit
	}
}

// WithMinScore overrides the minimum document similarity for results.
func WithMinScore(score float64) SearchOption {
	return func(opts *SearchOptions) {
		opts.MinScore = score
	}
}
