package payroll

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ContractCaller performs read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ContractInfo describes a deployed SuperPayroll contract.
type ContractInfo struct {
	Address  string `json:"address"`
	Employer string `json:"employer"`
	Token    string `json:"token"`
}

// FetchContractInfo reads the employer and payment token of a payroll contract.
// A missing token() is tolerated; a missing employer() means the address is not a payroll contract.
func FetchContractInfo(ctx context.Context, caller ContractCaller, contract common.Address, logger *zap.Logger) (ContractInfo, error) {
	info := ContractInfo{Address: HexAddress(contract)}
	if caller == nil {
		return info, fmt.Errorf("contract caller is nil")
	}

	parsed, err := PayrollABI()
	if err != nil {
		return info, fmt.Errorf("parse payroll abi: %w", err)
	}

	employer, err := callAddress(ctx, caller, contract, parsed, "employer")
	if err != nil {
		return info, err
	}
	info.Employer = HexAddress(employer)

	if token, err := callAddress(ctx, caller, contract, parsed, "token"); err == nil {
		info.Token = HexAddress(token)
	} else if logger != nil {
		logger.Debug("token call failed", zap.String("contract", info.Address), zap.Error(err))
	}

	return info, nil
}

func callAddress(ctx context.Context, caller ContractCaller, contract common.Address, parsed abi.ABI, method string) (common.Address, error) {
	data, err := parsed.Pack(method)
	if err != nil {
		return common.Address{}, fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) != 1 {
		return common.Address{}, fmt.Errorf("unexpected %s output count: %d", method, len(values))
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected %s output type %T", method, values[0])
	}
	return addr, nil
}
