package incidents

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
)

// Pagination constants.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageSizes are the page sizes offered to clients.
var PageSizes = []int{5, 10, 20, 50}

const dateLayout = "2006-01-02"

// ListRequest is the filter/sort/page contract shared by clients and the server.
// Empty strings and zero integers mean "not set".
type ListRequest struct {
	Page     int    `json:"page,omitempty" validate:"omitempty,min=1"`
	PageSize int    `json:"pageSize,omitempty" validate:"omitempty,min=1,max=100"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=OPEN MITIGATED RESOLVED"`
	Severity string `json:"severity,omitempty" validate:"omitempty,oneof=SEV1 SEV2 SEV3 SEV4"`
	Service  string `json:"service,omitempty"`
	Owner    string `json:"owner,omitempty"`
	Search   string `json:"search,omitempty"`
	From     string `json:"from,omitempty" validate:"omitempty,timebound"`
	To       string `json:"to,omitempty" validate:"omitempty,timebound"`
	Sort     string `json:"sort,omitempty" validate:"omitempty,oneof=id title service severity status owner summary createdAt updatedAt"`
	Order    string `json:"order,omitempty" validate:"omitempty,oneof=asc desc"`
}

// Normalize trims free-text filters and fills page defaults.
func (r ListRequest) Normalize() ListRequest {
	r.Service = strings.TrimSpace(r.Service)
	r.Owner = strings.TrimSpace(r.Owner)
	r.Search = strings.TrimSpace(r.Search)
	r.From = strings.TrimSpace(r.From)
	r.To = strings.TrimSpace(r.To)
	if r.Page == 0 {
		r.Page = DefaultPage
	}
	if r.PageSize == 0 {
		r.PageSize = DefaultPageSize
	}
	return r
}

// Filter converts the request into a repository filter for one page.
func (r ListRequest) Filter() (ListFilter, error) {
	r = r.Normalize()

	if r.Page < 1 {
		return ListFilter{}, ErrInvalidPage
	}
	if r.PageSize < 1 || r.PageSize > MaxPageSize {
		return ListFilter{}, ErrInvalidPageSize
	}

	f, err := r.predicate()
	if err != nil {
		return ListFilter{}, err
	}

	f.Limit = r.PageSize
	f.Offset = (r.Page - 1) * r.PageSize
	return f, nil
}

// predicate builds everything but the page window.
func (r ListRequest) predicate() (ListFilter, error) {
	var f ListFilter

	if r.Status != "" {
		s := domain.Status(r.Status)
		if !s.IsValid() {
			return ListFilter{}, ErrInvalidStatus
		}
		f.Status = &s
	}

	if r.Severity != "" {
		s := domain.Severity(r.Severity)
		if !s.IsValid() {
			return ListFilter{}, ErrInvalidSeverity
		}
		f.Severity = &s
	}

	if v := strings.TrimSpace(r.Service); v != "" {
		f.Service = &v
	}
	if v := strings.TrimSpace(r.Owner); v != "" {
		f.Owner = &v
	}
	if v := strings.TrimSpace(r.Search); v != "" {
		f.Search = &v
	}

	if r.From != "" {
		t, err := ParseTimeBound(r.From, false)
		if err != nil {
			return ListFilter{}, ErrInvalidFrom
		}
		f.From = &t
	}
	if r.To != "" {
		t, err := ParseTimeBound(r.To, true)
		if err != nil {
			return ListFilter{}, ErrInvalidTo
		}
		f.To = &t
	}

	f.Sort = SortByCreatedAt
	f.Order = OrderDesc
	if r.Sort != "" {
		sort := SortField(r.Sort)
		if !sort.IsValid() {
			return ListFilter{}, ErrInvalidSort
		}
		f.Sort = sort
		if r.Order != "" {
			order := SortOrder(r.Order)
			if !order.IsValid() {
				return ListFilter{}, ErrInvalidOrder
			}
			f.Order = order
		}
	} else if r.Order != "" && !SortOrder(r.Order).IsValid() {
		return ListFilter{}, ErrInvalidOrder
	}

	return f, nil
}

// Values encodes the request as URL query parameters. Unset fields are omitted.
func (r ListRequest) Values() url.Values {
	v := url.Values{}
	if r.Page > 0 {
		v.Set("page", strconv.Itoa(r.Page))
	}
	if r.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(r.PageSize))
	}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("status", r.Status)
	set("severity", r.Severity)
	set("service", r.Service)
	set("owner", r.Owner)
	set("search", r.Search)
	set("from", r.From)
	set("to", r.To)
	set("sort", r.Sort)
	set("order", r.Order)
	return v
}

// ParseListQuery reads a ListRequest from URL query parameters.
func ParseListQuery(q url.Values) (ListRequest, error) {
	req := ListRequest{
		Status:   q.Get("status"),
		Severity: q.Get("severity"),
		Service:  q.Get("service"),
		Owner:    q.Get("owner"),
		Search:   q.Get("search"),
		From:     q.Get("from"),
		To:       q.Get("to"),
		Sort:     q.Get("sort"),
		Order:    q.Get("order"),
	}

	if p := q.Get("page"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 1 {
			return ListRequest{}, ErrInvalidPage
		}
		req.Page = parsed
	}

	if ps := q.Get("pageSize"); ps != "" {
		parsed, err := strconv.Atoi(ps)
		if err != nil || parsed < 1 || parsed > MaxPageSize {
			return ListRequest{}, ErrInvalidPageSize
		}
		req.PageSize = parsed
	}

	return req, nil
}

// ParseTimeBound parses an RFC 3339 timestamp or a YYYY-MM-DD date (UTC).
// With endOfDay set, a bare date resolves to the last microsecond of that day
// so that an upper bound includes the whole day.
func ParseTimeBound(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}

	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, errInvalidTimeBound
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Microsecond)
	}
	return t, nil
}
