package catalog

import "errors"

// User-facing failures. Backend errors are wrapped underneath, so both
// errors.Is(err, ErrUpdateLike) and errors.Is(err, context.DeadlineExceeded) work.
var (
	ErrLoadCatalog      = errors.New("could not load catalog")
	ErrUpdateLike       = errors.New("could not update like")
	ErrDelete           = errors.New("could not delete")
	ErrSaveMovie        = errors.New("could not save movie")
	ErrPermissionDenied = errors.New("permission denied")
	ErrLikeInFlight     = errors.New("like update already in progress")
)

var userFacing = []error{
	ErrLikeInFlight,
	ErrPermissionDenied,
	ErrLoadCatalog,
	ErrUpdateLike,
	ErrDelete,
	ErrSaveMovie,
}

// UserMessage returns the short human-readable message for err, without the
// backend detail underneath. Unknown errors get a generic message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, target := range userFacing {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "something went wrong"
}
