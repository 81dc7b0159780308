package isolation

import "time"

// State lifecycle state of one isolated target
type State string

// Target states
const (
	StateInactive  State = "inactive"
	StateResolving State = "resolving"
	StateActive    State = "active"
	StateStopping  State = "stopping"
)

// Status snapshot of one target's isolation
type Status struct {
	Target     string
	State      State
	TargetMAC  string
	GatewayIP  string
	GatewayMAC string
	LastError  string
	StartedAt  *time.Time
}
