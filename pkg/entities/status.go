package entities

import "fmt"

// Status is the per-sensor cache status.
type Status uint8

const (
	ReadSuccess Status = iota
	ReadAccurateSuccess
	NotFound
	NotAccessible
	FailToAccess
	InitStatus
	UnspecifiedError
	PollingDisable
	PreReadError
	PostReadError
	ReadAPIUnregister
	Read4ByteAccurateSuccess
	NotPresent
)

var statusNames = map[Status]string{
	ReadSuccess:              "read success",
	ReadAccurateSuccess:      "read accurate success",
	NotFound:                 "not found",
	NotAccessible:            "not accessible",
	FailToAccess:             "fail to access",
	InitStatus:               "init",
	UnspecifiedError:         "unspecified error",
	PollingDisable:           "polling disabled",
	PreReadError:             "pre read error",
	PostReadError:            "post read error",
	ReadAPIUnregister:        "read api unregistered",
	Read4ByteAccurateSuccess: "read 4 byte accurate success",
	NotPresent:               "not present",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(0x%02x)", uint8(s))
}

// IsSuccess reports whether the cached value behind s can be trusted.
func (s Status) IsSuccess() bool {
	return s == ReadSuccess || s == ReadAccurateSuccess || s == Read4ByteAccurateSuccess
}

// PLDM sensor operational states (DSP0248).
type OperationalState uint8

const (
	StateEnabled OperationalState = iota
	StateDisabled
	StateUnavailable
	StateStatusUnknown
	StateFailed
	StateInitializing
	StateShuttingDown
	StateInTest
)

var operationalStateNames = []string{"enabled", "disabled", "unavailable", "status unknown", "failed", "initializing", "shutting down", "in test"}

func (s OperationalState) String() string {
	if int(s) < len(operationalStateNames) {
		return operationalStateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}
