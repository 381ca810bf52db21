package services

import (
	"context"

	"medication-tracking-service/internal/domain/dtos"
)

// DispatchServiceContract advances every eligible process of one line when a
// checkpoint QR code is scanned.
type DispatchServiceContract interface {
	// Dispatch returns a result when the scan was processed, even if every
	// record lost a concurrent race, and a *DispatchError otherwise.
	Dispatch(ctx context.Context, req dtos.DispatchRequest) (*dtos.DispatchResult, error)
}

// EventOutbox durably queues payloads for later delivery to a queue.
type EventOutbox interface {
	Append(queue string, payload []byte) (uint64, error)
}
