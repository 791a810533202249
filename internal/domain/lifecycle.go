package domain

type FlowState string

const (
	FlowIdle       FlowState = "IDLE"
	FlowProcessing FlowState = "PROCESSING"
	FlowSucceeded  FlowState = "SUCCEEDED"
	FlowFailed     FlowState = "FAILED"
)

// Lifecycle is the request state of one orchestrated action. Message is set
// only in FlowFailed.
type Lifecycle struct {
	State   FlowState
	Message string
}

func (l Lifecycle) Processing() bool { return l.State == FlowProcessing }
func (l Lifecycle) Succeeded() bool  { return l.State == FlowSucceeded }
func (l Lifecycle) Failed() bool     { return l.State == FlowFailed }
