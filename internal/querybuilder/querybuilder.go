// Package querybuilder holds the client-side list state: filters being edited,
// filters applied, the current page and the sort. The whole state can be
// encoded to and restored from URL query parameters.
package querybuilder

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/bissquit/incident-tracker/internal/incidents"
)

// Filters are the user-editable list filters. Empty means unset.
type Filters struct {
	Status   string
	Severity string
	Service  string
	Owner    string
	Search   string
	From     string
	To       string
}

// Normalize trims the free-text fields.
func (f Filters) Normalize() Filters {
	f.Status = strings.TrimSpace(f.Status)
	f.Severity = strings.TrimSpace(f.Severity)
	f.Service = strings.TrimSpace(f.Service)
	f.Owner = strings.TrimSpace(f.Owner)
	f.Search = strings.TrimSpace(f.Search)
	f.From = strings.TrimSpace(f.From)
	f.To = strings.TrimSpace(f.To)
	return f
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// State is the list view state. Input holds edits not yet applied; only
// Applied filters reach the request.
type State struct {
	Input    Filters
	Applied  Filters
	Page     int
	PageSize int
	Sort     string
	Order    string
}

// New returns the initial state: no filters, first page, default page size,
// newest first.
func New() *State {
	return &State{
		Page:     incidents.DefaultPage,
		PageSize: incidents.DefaultPageSize,
		Sort:     string(incidents.SortByCreatedAt),
		Order:    string(incidents.OrderDesc),
	}
}

// FromValues restores a state from URL query parameters. Malformed page
// numbers fall back to their defaults. Input starts equal to Applied.
func FromValues(v url.Values) *State {
	s := New()
	s.Applied = Filters{
		Status:   v.Get("status"),
		Severity: v.Get("severity"),
		Service:  v.Get("service"),
		Owner:    v.Get("owner"),
		Search:   v.Get("search"),
		From:     v.Get("from"),
		To:       v.Get("to"),
	}.Normalize()
	s.Input = s.Applied

	if p, err := strconv.Atoi(v.Get("page")); err == nil && p >= 1 {
		s.Page = p
	}
	if ps, err := strconv.Atoi(v.Get("pageSize")); err == nil {
		s.PageSize = clampPageSize(ps)
	}
	if sort := v.Get("sort"); incidents.SortField(sort).IsValid() {
		s.Sort = sort
	}
	if order := v.Get("order"); incidents.SortOrder(order).IsValid() {
		s.Order = order
	}
	return s
}

// Values encodes the applied state. Unsaved Input is not part of the URL.
func (s *State) Values() url.Values {
	return s.Request().Values()
}

// Request builds the list request from the applied filters.
func (s *State) Request() incidents.ListRequest {
	return incidents.ListRequest{
		Page:     s.Page,
		PageSize: s.PageSize,
		Status:   s.Applied.Status,
		Severity: s.Applied.Severity,
		Service:  s.Applied.Service,
		Owner:    s.Applied.Owner,
		Search:   s.Applied.Search,
		From:     s.Applied.From,
		To:       s.Applied.To,
		Sort:     s.Sort,
		Order:    s.Order,
	}.Normalize()
}

// SetInput replaces the filters being edited without applying them.
func (s *State) SetInput(f Filters) {
	s.Input = f
}

// Dirty reports whether there are edits not yet applied.
func (s *State) Dirty() bool {
	return s.Input.Normalize() != s.Applied
}

// Apply commits the edited filters and returns to the first page.
func (s *State) Apply() {
	s.Applied = s.Input.Normalize()
	s.Input = s.Applied
	s.Page = incidents.DefaultPage
}

// Reset clears both edited and applied filters and returns to the first page.
// Sort and page size are kept.
func (s *State) Reset() {
	s.Input = Filters{}
	s.Applied = Filters{}
	s.Page = incidents.DefaultPage
}

// SetPage moves to page p. Values below 1 select the first page.
func (s *State) SetPage(p int) {
	if p < 1 {
		p = incidents.DefaultPage
	}
	s.Page = p
}

// NextPage advances one page if lastPageLen shows more rows may follow.
func (s *State) NextPage(lastPageLen int) {
	if s.CanNext(lastPageLen) {
		s.Page++
	}
}

// PrevPage goes back one page, stopping at the first.
func (s *State) PrevPage() {
	s.SetPage(s.Page - 1)
}

// SetPageSize changes the page size and returns to the first page.
func (s *State) SetPageSize(n int) {
	s.PageSize = clampPageSize(n)
	s.Page = incidents.DefaultPage
}

// SetSort sorts by field. Picking the current field again flips the order;
// a new field starts descending. The page returns to the first.
func (s *State) SetSort(field incidents.SortField) {
	if !field.IsValid() {
		return
	}
	if s.Sort == string(field) {
		if s.Order == string(incidents.OrderAsc) {
			s.Order = string(incidents.OrderDesc)
		} else {
			s.Order = string(incidents.OrderAsc)
		}
	} else {
		s.Sort = string(field)
		s.Order = string(incidents.OrderDesc)
	}
	s.Page = incidents.DefaultPage
}

// CanNext reports whether a next page may exist given the number of rows
// on the current one. A full page means there may be more.
func (s *State) CanNext(lastPageLen int) bool {
	return lastPageLen >= s.PageSize
}

// TotalPages returns the number of pages needed for total rows, at least 1.
func (s *State) TotalPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + s.PageSize - 1) / s.PageSize
}

func clampPageSize(n int) int {
	switch {
	case n < 1:
		return incidents.DefaultPageSize
	case n > incidents.MaxPageSize:
		return incidents.MaxPageSize
	default:
		return n
	}
}
