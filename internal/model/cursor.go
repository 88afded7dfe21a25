package model

import "fmt"

// Cursor is the chain position of the last event applied by the mapping.
// Events are delivered in (block, tx index, log index) order.
type Cursor struct {
	BlockNumber uint64 `json:"block_number"`
	TxIndex     uint64 `json:"tx_index"`
	LogIndex    uint64 `json:"log_index"`
}

// Less reports whether c sorts strictly before other.
func (c Cursor) Less(other Cursor) bool {
	if c.BlockNumber != other.BlockNumber {
		return c.BlockNumber < other.BlockNumber
	}
	if c.TxIndex != other.TxIndex {
		return c.TxIndex < other.TxIndex
	}
	return c.LogIndex < other.LogIndex
}

func (c Cursor) String() string {
	return fmt.Sprintf("%d:%d:%d", c.BlockNumber, c.TxIndex, c.LogIndex)
}
