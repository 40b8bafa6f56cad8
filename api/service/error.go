package service

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/photon-storage/sth-explorer/sth"
)

var (
	errSystem = errors.New("system error")
	// ErrBadRequest marks requests that could not be decoded.
	ErrBadRequest = errors.New("bad request")
)

var ErrorCode = map[error]int{
	errSystem:               1000,
	ErrBadRequest:           1001,
	sth.ErrValidation:       1002,
	sth.ErrNotFound:         1003,
	sth.ErrStoreUnavailable: 1004,
}

var errorStatus = map[error]int{
	ErrBadRequest:           http.StatusBadRequest,
	sth.ErrValidation:       http.StatusBadRequest,
	sth.ErrNotFound:         http.StatusNotFound,
	sth.ErrStoreUnavailable: http.StatusServiceUnavailable,
}

// Classify maps err to the HTTP status, the response code and the message
// returned to the caller. Unknown errors are reported as system errors.
func Classify(err error) (int, int, string) {
	for _, known := range []error{
		ErrBadRequest,
		sth.ErrValidation,
		sth.ErrNotFound,
		sth.ErrStoreUnavailable,
	} {
		if errors.Is(err, known) {
			return errorStatus[known], ErrorCode[known], err.Error()
		}
	}

	return http.StatusInternalServerError, ErrorCode[errSystem], errSystem.Error()
}
