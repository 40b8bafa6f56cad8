package sth

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/photon-storage/go-common/log"
)

// Submission is a tree head report as received from a monitor. Nil
// fields are treated as absent.
type Submission struct {
	LogID     *string `json:"log_id" validate:"required,min=1"`
	TreeSize  *uint64 `json:"tree_size" validate:"required"`
	RootHash  *string `json:"root_hash" validate:"required,min=1"`
	Timestamp *uint64 `json:"timestamp" validate:"required"`
	MonitorID *string `json:"monitor_id" validate:"required,min=1"`
}

// Ingester accepts submissions and folds repeated observations of the
// same (log_id, tree_size, root_hash) into the first stored row.
type Ingester struct {
	store    Store
	validate *validator.Validate
	now      func() time.Time
}

// NewIngester returns an ingester writing to store and stamping new rows
// with the instant returned by now.
func NewIngester(store Store, now func() time.Time) *Ingester {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})

	return &Ingester{
		store:    store,
		validate: v,
		now:      now,
	}
}

// Submit stores sub unless an attestation with the same identity exists.
// The returned attestation is always the stored row; isNew reports
// whether it was created by this call.
func (in *Ingester) Submit(
	ctx context.Context,
	sub *Submission,
) (*Attestation, bool, error) {
	if err := in.check(sub); err != nil {
		return nil, false, err
	}

	logID := NormalizeLogID(*sub.LogID)
	existing, err := in.store.FindByIdentity(ctx, logID, *sub.TreeSize, *sub.RootHash)
	if err != nil {
		return nil, false, storeErr("find identity", err)
	}

	if existing != nil {
		log.Debug("duplicate attestation",
			"log_id", logID,
			"tree_size", existing.TreeSize,
			"monitor_id", *sub.MonitorID,
			"stored_monitor_id", existing.MonitorID,
		)
		return existing, false, nil
	}

	a := &Attestation{
		LogID:     logID,
		TreeSize:  *sub.TreeSize,
		RootHash:  *sub.RootHash,
		Timestamp: *sub.Timestamp,
		MonitorID: *sub.MonitorID,
		StoredAt:  in.now().UTC(),
	}
	if err := in.store.Insert(ctx, a); err != nil {
		return nil, false, storeErr("insert", err)
	}

	log.Debug("new attestation stored",
		"id", a.ID,
		"log_id", logID,
		"tree_size", a.TreeSize,
		"monitor_id", a.MonitorID,
	)
	return a, true, nil
}

func (in *Ingester) check(sub *Submission) error {
	if sub == nil {
		return &ValidationError{Field: "log_id"}
	}

	err := in.validate.Struct(sub)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ValidationError{Field: fieldErrs[0].Field()}
	}

	return errors.Wrap(ErrValidation, err.Error())
}

// Latest returns the most recently stored attestation of a log.
func (in *Ingester) Latest(ctx context.Context, logID string) (*Attestation, error) {
	logID = NormalizeLogID(logID)
	rows, err := in.store.Scan(ctx, ScanQuery{LogID: logID, Limit: 1})
	if err != nil {
		return nil, storeErr("scan latest", err)
	}

	if len(rows) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "log %s", logID)
	}

	return rows[0], nil
}

// List returns a page of a log's attestations, newest first, together
// with the total number stored for the log.
func (in *Ingester) List(
	ctx context.Context,
	logID string,
	offset int,
	limit int,
) ([]*Attestation, int64, error) {
	logID = NormalizeLogID(logID)
	total, err := in.store.Count(ctx, Filter{LogID: logID})
	if err != nil {
		return nil, 0, storeErr("count", err)
	}

	rows, err := in.store.Scan(ctx, ScanQuery{
		LogID:  logID,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, 0, storeErr("scan", err)
	}

	return rows, total, nil
}
