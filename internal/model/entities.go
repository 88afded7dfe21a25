package model

// EmployeeStatus is the lifecycle status of an Employee record.
type EmployeeStatus string

const (
	EmployeeActive     EmployeeStatus = "ACTIVE"
	EmployeeTerminated EmployeeStatus = "TERMINATED"
)

// StreamStatus is the lifecycle status of a Stream revision.
type StreamStatus string

const (
	StreamCreated    StreamStatus = "CREATED"
	StreamUpdated    StreamStatus = "UPDATED"
	StreamTerminated StreamStatus = "TERMINATED"
)

// Employee is one payroll entrant, keyed by wallet address.
type Employee struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Age            uint8          `json:"age"`
	ContactAddress string         `json:"contactAddress"`
	Country        string         `json:"country"`
	Addr           string         `json:"addr"`
	Employer       string         `json:"employer"`
	Status         EmployeeStatus `json:"status"`
	UpdatedAt      uint64         `json:"updatedAt"`
}

// Stream is one revision of a payment stream between sender and receiver for a token.
// To holds the receiver's Employee id.
type Stream struct {
	ID        string       `json:"id"`
	Sender    string       `json:"sender"`
	Receiver  string       `json:"receiver"`
	To        string       `json:"to"`
	Token     string       `json:"token"`
	Status    StreamStatus `json:"status"`
	FlowRate  string       `json:"flowRate"`
	CreatedAt uint64       `json:"createdAt"`
	UpdatedAt uint64       `json:"updatedAt"`
	TxHash    string       `json:"txHash"`
}

// StreamRevision tracks the current revision of a (sender, receiver, token) stream.
type StreamRevision struct {
	ID                  string `json:"id"`
	RevisionIndex       uint32 `json:"revisionIndex"`
	PeriodRevisionIndex uint32 `json:"periodRevisionIndex"`
	MostRecentStream    string `json:"mostRecentStream"`
}
