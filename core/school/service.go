package school

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/alihaimran285-byte/final-project-sub001/core"
)

type (
	// Repository is the storage seen by the Service; the storage gateway implements it.
	Repository interface {
		ListAll(ctx context.Context, kind Kind) ([]Record, error)
		Add(ctx context.Context, kind Kind, data Record) (Record, error)
		Get(ctx context.Context, kind Kind, id string) (Record, error)
		BackendName() string
	}

	Service struct {
		repo Repository
	}

	Stats struct {
		Backend string       `json:"backend"`
		Counts  map[Kind]int `json:"counts"`
		Total   int          `json:"total"`
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every record of kind, sorted by orderings (the first one has precedence).
func (svc *Service) List(ctx context.Context, kind Kind, orderings ...core.DBOrdering) ([]Record, error) {
	records, err := svc.repo.ListAll(ctx, kind)
	if err != nil {
		return nil, err
	}
	for i := len(orderings) - 1; i >= 0; i-- {
		SortRecords(records, orderings[i])
	}
	return records, nil
}

func (svc *Service) Create(ctx context.Context, kind Kind, data Record) (Record, error) {
	if len(data.Fields()) == 0 {
		return nil, core.NewValidationError(ErrEmptyRecord)
	}
	return svc.repo.Add(ctx, kind, data)
}

func (svc *Service) GetByID(ctx context.Context, kind Kind, id string) (Record, error) {
	id = core.CleanString(id)
	if id == "" {
		return nil, ErrNotFound
	}
	return svc.repo.Get(ctx, kind, id)
}

// Stats counts the records of every kind on the active backend.
func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		Backend: svc.repo.BackendName(),
		Counts:  make(map[Kind]int, len(Kinds)),
	}
	for _, kind := range Kinds {
		records, err := svc.repo.ListAll(ctx, kind)
		if err != nil {
			return Stats{}, errors.Wrapf(err, "counting %s", kind.Collection())
		}
		stats.Counts[kind] = len(records)
		stats.Total += len(records)
	}
	return stats, nil
}

// SortRecords sorts records in place by ord.Field; records missing the field go last.
func SortRecords(records []Record, ord core.DBOrdering) {
	sort.SliceStable(records, func(i, j int) bool {
		a, aok := records[i][ord.Field]
		b, bok := records[j][ord.Field]
		switch {
		case !aok || a == nil:
			return false
		case !bok || b == nil:
			return true
		}
		c := compareValues(a, b)
		if ord.Ascending {
			return c < 0
		}
		return c > 0
	})
}

func compareValues(a, b interface{}) int {
	if ta, tb := asTime(a), asTime(b); !ta.IsZero() && !tb.IsZero() {
		switch {
		case ta.Before(tb):
			return -1
		case ta.After(tb):
			return 1
		}
		return 0
	}
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case time.Duration:
		return float64(n), true
	}
	return 0, false
}
