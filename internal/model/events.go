package model

// Event names emitted by the SuperPayroll contract.
const (
	EventEmployeeAdded   = "EmployeeAdded"
	EventEmployeeDeleted = "EmployeeDeleted"
	EventFlowUpdated     = "FlowUpdated"
)

// EmployeeAddedEventData is the decoded EmployeeAdded event payload.
type EmployeeAddedEventData struct {
	Name           string `json:"name"`
	Age            uint8  `json:"age"`
	ContactAddress string `json:"contact_address"`
	Country        string `json:"country"`
	Addr           string `json:"addr"`
	Employer       string `json:"employer"`
}

// EmployeeDeletedEventData is the decoded EmployeeDeleted event payload.
type EmployeeDeletedEventData struct {
	Addr string `json:"addr"`
}

// FlowUpdatedEventData is the decoded FlowUpdated event payload.
// FlowRate is a signed decimal string in wei per second.
type FlowUpdatedEventData struct {
	Token    string `json:"token"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	FlowRate string `json:"flow_rate"`
}
