// Package workflow holds the closed enumerations of the medication process
// lifecycle and the transition table that drives QR checkpoint scans.
package workflow

import "fmt"

// Status is the lifecycle state of a MedicationProcess.
type Status string

const (
	StatusPending                Status = "PENDING"
	StatusInProgress             Status = "IN_PROGRESS"
	StatusDispatchedFromPharmacy Status = "DISPATCHED_FROM_PHARMACY"
	StatusDelivered              Status = "DELIVERED"
	StatusCompleted              Status = "COMPLETED"
	StatusError                  Status = "ERROR"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDispatchedFromPharmacy,
		StatusDelivered, StatusCompleted, StatusError:
		return true
	}
	return false
}

// IsTerminal reports whether the status ends the lifecycle. ERROR is terminal
// but a retry checkpoint can reopen it.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// HoldsSlot reports whether a process in this status still occupies its
// (patient, step, day) slot. ERROR holds it so a retry never collides with a
// newer process.
func (s Status) HoldsSlot() bool {
	return s != StatusCompleted
}

// Step is the workflow a process belongs to.
type Step string

const (
	StepDispensacion Step = "DISPENSACION"
	StepDevolucion   Step = "DEVOLUCION"
)

func (s Step) String() string { return string(s) }

func (s Step) IsValid() bool {
	return s == StepDispensacion || s == StepDevolucion
}

// ParseStep converts raw input into a Step.
func ParseStep(raw string) (Step, error) {
	s := Step(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown workflow step %q", raw)
	}
	return s, nil
}

// CheckpointType identifies the physical scan point a QR code is printed for.
type CheckpointType string

const (
	CheckpointNursePreparation           CheckpointType = "NURSE_PREPARATION"
	CheckpointPharmacyDispatch           CheckpointType = "PHARMACY_DISPATCH"
	CheckpointPharmacyDispatchDevolution CheckpointType = "PHARMACY_DISPATCH_DEVOLUTION"
	CheckpointServiceReception           CheckpointType = "SERVICE_RECEPTION"
	CheckpointDeliveryConfirmation       CheckpointType = "DELIVERY_CONFIRMATION"
	CheckpointPharmacyRetry              CheckpointType = "PHARMACY_RETRY"
	CheckpointIncidentReport             CheckpointType = "INCIDENT_REPORT"
)

func (c CheckpointType) String() string { return string(c) }

func (c CheckpointType) IsValid() bool {
	_, ok := licenses[c]
	return ok
}

// ParseCheckpointType converts raw input into a CheckpointType.
func ParseCheckpointType(raw string) (CheckpointType, error) {
	c := CheckpointType(raw)
	if !c.IsValid() {
		return "", fmt.Errorf("unknown checkpoint type %q", raw)
	}
	return c, nil
}

type edge struct {
	from       Status
	checkpoint CheckpointType
}

var transitions = map[edge]Status{
	{StatusPending, CheckpointNursePreparation}: StatusInProgress,

	{StatusInProgress, CheckpointPharmacyDispatch}:           StatusDispatchedFromPharmacy,
	{StatusInProgress, CheckpointPharmacyDispatchDevolution}: StatusDispatchedFromPharmacy,

	{StatusDispatchedFromPharmacy, CheckpointServiceReception}: StatusDelivered,
	{StatusDelivered, CheckpointDeliveryConfirmation}:          StatusCompleted,

	{StatusError, CheckpointPharmacyRetry}: StatusInProgress,

	{StatusPending, CheckpointIncidentReport}:                StatusError,
	{StatusInProgress, CheckpointIncidentReport}:             StatusError,
	{StatusDispatchedFromPharmacy, CheckpointIncidentReport}: StatusError,
	{StatusDelivered, CheckpointIncidentReport}:              StatusError,
}

var bothSteps = []Step{StepDispensacion, StepDevolucion}

var licenses = map[CheckpointType][]Step{
	CheckpointNursePreparation:           bothSteps,
	CheckpointPharmacyDispatch:           {StepDispensacion},
	CheckpointPharmacyDispatchDevolution: {StepDevolucion},
	CheckpointServiceReception:           bothSteps,
	CheckpointDeliveryConfirmation:       bothSteps,
	CheckpointPharmacyRetry:              bothSteps,
	CheckpointIncidentReport:             bothSteps,
}

// Next returns the status a record in from moves to when scanned at checkpoint.
// The second result is false when the pair is not a legal transition.
func Next(from Status, checkpoint CheckpointType) (Status, bool) {
	to, ok := transitions[edge{from, checkpoint}]
	return to, ok
}

// SourceStatuses lists, in lifecycle order, every status checkpoint can move a
// record out of. It is the expected-prior-status filter of the eligible set.
func SourceStatuses(checkpoint CheckpointType) []Status {
	var out []Status
	for _, s := range lifecycle {
		if _, ok := transitions[edge{s, checkpoint}]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Licensed reports whether checkpoint may act on processes of step.
func Licensed(checkpoint CheckpointType, step Step) bool {
	for _, s := range licenses[checkpoint] {
		if s == step {
			return true
		}
	}
	return false
}

var lifecycle = []Status{
	StatusPending,
	StatusInProgress,
	StatusDispatchedFromPharmacy,
	StatusDelivered,
	StatusCompleted,
	StatusError,
}

// Target returns the single status checkpoint moves records into.
func Target(checkpoint CheckpointType) (Status, bool) {
	for e, to := range transitions {
		if e.checkpoint == checkpoint {
			return to, true
		}
	}
	return "", false
}
