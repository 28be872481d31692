package incidents

import (
	"errors"

	"github.com/bissquit/incident-tracker/internal/pkg/httputil"
)

// Repository errors.
var (
	ErrIncidentNotFound = errors.New("incident not found")
)

// Validation errors. Each one names the request field it refers to.
var (
	ErrMissingID         = httputil.NewFieldError("id", "id is required")
	ErrEmptyTitle        = httputil.NewFieldError("title", "title is required")
	ErrEmptyService      = httputil.NewFieldError("service", "service is required")
	ErrInvalidSeverity   = httputil.NewFieldError("severity", "severity must be one of SEV1 SEV2 SEV3 SEV4")
	ErrInvalidStatus     = httputil.NewFieldError("status", "status must be one of OPEN MITIGATED RESOLVED")
	ErrCreatedAtInFuture = httputil.NewFieldError("createdAt", "createdAt must not be in the future")
	ErrInvalidFrom       = httputil.NewFieldError("from", "from must be an RFC 3339 timestamp or a YYYY-MM-DD date")
	ErrInvalidTo         = httputil.NewFieldError("to", "to must be an RFC 3339 timestamp or a YYYY-MM-DD date")
	ErrInvalidSort       = httputil.NewFieldError("sort", "invalid sort field")
	ErrInvalidOrder      = httputil.NewFieldError("order", "order must be asc or desc")
	ErrInvalidPage       = httputil.NewFieldError("page", "page must be a positive integer")
	ErrInvalidPageSize   = httputil.NewFieldError("pageSize", "pageSize must be between 1 and 100")
)

// errInvalidTimeBound is returned by ParseTimeBound; callers translate it to
// ErrInvalidFrom or ErrInvalidTo.
var errInvalidTimeBound = errors.New("invalid time bound")
