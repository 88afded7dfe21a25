package mapping

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"superPayroll/internal/model"
)

// Event is one decoded contract event handed to the Mapper.
type Event interface {
	EventName() string
}

type EmployeeAdded struct {
	Name           string
	Age            uint8
	ContactAddress string
	Country        string
	Addr           common.Address
	Employer       common.Address
	Timestamp      uint64
}

type EmployeeDeleted struct {
	Addr      common.Address
	Timestamp uint64
}

// FlowUpdated reports the new flow rate of (Sender, Receiver, Token) in wei per second.
// Creation, update and deletion of a flow all arrive as this event.
type FlowUpdated struct {
	Sender    common.Address
	Receiver  common.Address
	Token     common.Address
	FlowRate  *big.Int
	Timestamp uint64
	TxHash    common.Hash
}

func (EmployeeAdded) EventName() string   { return model.EventEmployeeAdded }
func (EmployeeDeleted) EventName() string { return model.EventEmployeeDeleted }
func (FlowUpdated) EventName() string     { return model.EventFlowUpdated }
