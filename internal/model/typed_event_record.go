package model

import "encoding/json"

// TypedEventRecord is the JSON representation read back by the mapping.
type TypedEventRecord struct {
	ChainID     uint64          `json:"chain_id"`
	BlockNumber uint64          `json:"block_number"`
	BlockHash   string          `json:"block_hash"`
	TxHash      string          `json:"tx_hash"`
	TxIndex     uint64          `json:"tx_index"`
	LogIndex    uint64          `json:"log_index"`
	Address     string          `json:"address"`
	EventName   string          `json:"event_name"`
	Timestamp   uint64          `json:"timestamp"`
	Decoded     json.RawMessage `json:"decoded"`
	Raw         *RawLogRef      `json:"raw,omitempty"`
}

// Position returns the delivery position of the event.
func (r TypedEventRecord) Position() Cursor {
	return Cursor{BlockNumber: r.BlockNumber, TxIndex: r.TxIndex, LogIndex: r.LogIndex}
}
