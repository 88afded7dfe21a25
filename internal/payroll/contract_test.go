package payroll

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

type fakeCaller struct {
	outputs map[string]common.Address
	calls   int
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls++
	parsed, err := PayrollABI()
	if err != nil {
		return nil, err
	}
	for name, method := range parsed.Methods {
		if !bytes.Equal(msg.Data, method.ID) {
			continue
		}
		addr, ok := f.outputs[name]
		if !ok {
			return nil, errors.New("execution reverted")
		}
		return method.Outputs.Pack(addr)
	}
	return nil, errors.New("unknown selector")
}

func TestFetchContractInfo(t *testing.T) {
	caller := &fakeCaller{outputs: map[string]common.Address{
		"employer": testEmployer,
		"token":    testToken,
	}}

	info, err := FetchContractInfo(context.Background(), caller, testContract, nil)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if info.Address != "0xdf0876c2140128deed612964033a48cabf2efd84" {
		t.Fatalf("address mismatch: %s", info.Address)
	}
	if info.Employer != "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" {
		t.Fatalf("employer mismatch: %s", info.Employer)
	}
	if info.Token != "0x5943f705abb6834cad767e6e4bb258bc48d9c947" {
		t.Fatalf("token mismatch: %s", info.Token)
	}
	if caller.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", caller.calls)
	}
}

func TestFetchContractInfoWithoutToken(t *testing.T) {
	caller := &fakeCaller{outputs: map[string]common.Address{"employer": testEmployer}}

	info, err := FetchContractInfo(context.Background(), caller, testContract, nil)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if info.Token != "" {
		t.Fatalf("expected empty token, got %s", info.Token)
	}
}

func TestFetchContractInfoNotPayroll(t *testing.T) {
	caller := &fakeCaller{outputs: map[string]common.Address{}}

	if _, err := FetchContractInfo(context.Background(), caller, testContract, nil); err == nil {
		t.Fatalf("expected error for contract without employer()")
	}
	if _, err := FetchContractInfo(context.Background(), nil, testContract, nil); err == nil {
		t.Fatalf("expected error for nil caller")
	}
}
