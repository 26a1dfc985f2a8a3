package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/flora/internal/entity"
	"github.com/MrJamesThe3rd/flora/internal/storage"
)

// Editors resolves the entity service that adds rows to a collection.
type Editors interface {
	Editor(c storage.Collection) (entity.Editor, bool)
}

// Result summarises one import.
type Result struct {
	Collection storage.Collection `json:"collection"`
	IDs        []string           `json:"ids"`
	Skipped    int                `json:"skipped"`
}

type Service struct {
	editors Editors
}

func NewService(editors Editors) *Service {
	return &Service{editors: editors}
}

// Import parses r and adds every row to collection c through its entity
// service, so each row is checked against the entity's fields. Rows are added
// one by one; when an add fails the rows already added stay and their ids are
// returned along with the error.
func (s *Service) Import(ctx context.Context, c storage.Collection, r io.Reader) (Result, error) {
	records, skipped, err := Parse(c, r)
	if err != nil {
		return Result{}, err
	}

	editor, ok := s.editors.Editor(c)
	if !ok {
		return Result{}, fmt.Errorf("%s: %w", c, ErrUnsupported)
	}

	res := Result{Collection: c, IDs: make([]string, 0, len(records)), Skipped: skipped}

	for i, rec := range records {
		id, err := editor.AddRecord(ctx, rec)
		if err != nil {
			return res, fmt.Errorf("adding row %d of %d to %s: %w", i+1, len(records), c, err)
		}

		res.IDs = append(res.IDs, id)
	}

	return res, nil
}
