package mapping

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const idSeparator = "-"

var (
	addressType = mustNewType("address")
	uint256Type = mustNewType("uint256")
	int256Type  = mustNewType("int256")
)

func mustNewType(name string) abi.Type {
	t, err := abi.NewType(name, "", nil)
	if err != nil {
		panic(fmt.Sprintf("abi type %s: %v", name, err))
	}
	return t
}

// Value is one typed element of a tuple passed to Encode.
type Value struct {
	Type abi.Type
	Data interface{}
}

func AddressValue(addr common.Address) Value {
	return Value{Type: addressType, Data: addr}
}

func uint256Value(v *big.Int) Value {
	return Value{Type: uint256Type, Data: v}
}

func int256Value(v *big.Int) Value {
	return Value{Type: int256Type, Data: v}
}

// Encode ABI-encodes the ordered tuple of values.
func Encode(values ...Value) ([]byte, error) {
	args := make(abi.Arguments, 0, len(values))
	data := make([]interface{}, 0, len(values))
	for _, v := range values {
		args = append(args, abi.Argument{Type: v.Type})
		data = append(data, v.Data)
	}
	return args.Pack(data...)
}

// StreamRevisionID returns keccak256(abi.encode(sender, receiver)) joined with the token.
func StreamRevisionID(sender, receiver, token common.Address) string {
	encoded, err := Encode(AddressValue(sender), AddressValue(receiver))
	if err != nil {
		// an (address, address) tuple always packs
		panic(fmt.Sprintf("encode stream revision key: %v", err))
	}
	flowID := crypto.Keccak256(encoded)
	return hexutil.Encode(flowID) + idSeparator + hexAddress(token)
}

// StreamID returns the id of the stream revision revisionIndex for (sender, receiver, token).
func StreamID(sender, receiver, token common.Address, revisionIndex uint32) string {
	return hexAddress(sender) +
		idSeparator + hexAddress(receiver) +
		idSeparator + hexAddress(token) +
		idSeparator + strconv.FormatUint(uint64(revisionIndex), 10)
}

// EmployeeID returns the Employee record id for a wallet address.
func EmployeeID(addr common.Address) string {
	return hexAddress(addr)
}

func hexAddress(addr common.Address) string {
	return hexutil.Encode(addr.Bytes())
}
