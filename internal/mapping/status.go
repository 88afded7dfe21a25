package mapping

import (
	"math/big"

	"superPayroll/internal/model"
)

// FlowStatus derives the status of an existing stream from its new flow rate.
// Zero terminates the stream; any other value, negative included, is an update.
func FlowStatus(flowRate *big.Int) model.StreamStatus {
	if flowRate == nil || flowRate.Sign() == 0 {
		return model.StreamTerminated
	}
	return model.StreamUpdated
}
