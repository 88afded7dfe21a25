package payroll

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const payrollABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "string", "name": "name", "type": "string"},
      {"indexed": false, "internalType": "uint8", "name": "age", "type": "uint8"},
      {"indexed": false, "internalType": "string", "name": "contactAddress", "type": "string"},
      {"indexed": false, "internalType": "string", "name": "country", "type": "string"},
      {"indexed": true, "internalType": "address", "name": "addr", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "employer", "type": "address"}
    ],
    "name": "EmployeeAdded",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "addr", "type": "address"}
    ],
    "name": "EmployeeDeleted",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "contract ISuperToken", "name": "token", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "sender", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "receiver", "type": "address"},
      {"indexed": false, "internalType": "int96", "name": "flowRate", "type": "int96"}
    ],
    "name": "FlowUpdated",
    "type": "event"
  },
  {
    "inputs": [],
    "name": "employer",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "token",
    "outputs": [{"internalType": "contract ISuperToken", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	payrollABI     abi.ABI
	payrollABIOnce sync.Once
	payrollABIErr  error
)

// PayrollABI returns the parsed SuperPayroll ABI.
func PayrollABI() (abi.ABI, error) {
	payrollABIOnce.Do(func() {
		payrollABI, payrollABIErr = abi.JSON(strings.NewReader(payrollABIJSON))
	})
	return payrollABI, payrollABIErr
}

// EventTopics returns the topic0 hashes of every event the mapping consumes.
func EventTopics() ([]common.Hash, error) {
	parsed, err := PayrollABI()
	if err != nil {
		return nil, err
	}
	return []common.Hash{
		parsed.Events[eventEmployeeAdded].ID,
		parsed.Events[eventEmployeeDeleted].ID,
		parsed.Events[eventFlowUpdated].ID,
	}, nil
}
