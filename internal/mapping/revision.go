package mapping

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"superPayroll/internal/model"
)

// GetOrInitStreamRevision loads the revision record of (sender, receiver, token),
// or builds a fresh one at revision 0. A fresh record is not persisted.
func GetOrInitStreamRevision(ctx context.Context, st Store, sender, receiver, token common.Address) (model.StreamRevision, error) {
	id := StreamRevisionID(sender, receiver, token)
	revision, found, err := st.LoadStreamRevision(ctx, id)
	if err != nil {
		return model.StreamRevision{}, fmt.Errorf("load stream revision %s: %w", id, err)
	}
	if found {
		return revision, nil
	}
	return model.StreamRevision{
		ID:                  id,
		RevisionIndex:       0,
		PeriodRevisionIndex: 0,
	}, nil
}
