package mappers

import (
	"encoding/json"
	"fmt"
	"time"

	"medication-tracking-service/internal/domain/entities"
	"medication-tracking-service/internal/domain/workflow"
)

// StepCodeSystem namespaces the workflow step carried in MedicationDispense.type.
const StepCodeSystem = "urn:medtrack:step"

type FHIRCoding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code"`
	Display string `json:"display,omitempty"`
}

type FHIRCodeableConcept struct {
	Coding []FHIRCoding `json:"coding,omitempty"`
	Text   string       `json:"text,omitempty"`
}

type FHIRReference struct {
	Reference string `json:"reference,omitempty"`
	Display   string `json:"display,omitempty"`
}

type FHIRAnnotation struct {
	AuthorString string `json:"authorString,omitempty"`
	Time         string `json:"time,omitempty"`
	Text         string `json:"text"`
}

type FHIRDispensePerformer struct {
	Actor FHIRReference `json:"actor"`
}

// FHIRMedicationDispenseResource is a simplified R4 MedicationDispense with
// the patient contained inline.
type FHIRMedicationDispenseResource struct {
	ResourceType   string                  `json:"resourceType"`
	ID             string                  `json:"id"`
	Contained      []FHIRPatientResource   `json:"contained,omitempty"`
	Status         string                  `json:"status"`
	Type           *FHIRCodeableConcept    `json:"type,omitempty"`
	Subject        FHIRReference           `json:"subject"`
	Performer      []FHIRDispensePerformer `json:"performer,omitempty"`
	WhenPrepared   string                  `json:"whenPrepared,omitempty"`
	WhenHandedOver string                  `json:"whenHandedOver,omitempty"`
	Note           []FHIRAnnotation        `json:"note,omitempty"`
}

// DispenseStatus maps a process status onto the MedicationDispense status code.
func DispenseStatus(s workflow.Status) string {
	switch s {
	case workflow.StatusPending:
		return "preparation"
	case workflow.StatusInProgress, workflow.StatusDispatchedFromPharmacy, workflow.StatusDelivered:
		return "in-progress"
	case workflow.StatusCompleted:
		return "completed"
	case workflow.StatusError:
		return "on-hold"
	}
	return "unknown"
}

func fhirTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// MapMedicationProcessToFHIR exports a process as a MedicationDispense. scans
// are the receipts of the process in chronological order; each one becomes a
// performer and an annotation.
func MapMedicationProcessToFHIR(process entities.MedicationProcess, patient entities.Patient, scans []*entities.ScanRecord) (json.RawMessage, error) {
	if process.PatientID != patient.ID {
		return nil, fmt.Errorf("patient %s does not own process %s", patient.ID, process.ID)
	}
	contained, err := BuildPatientResource(patient)
	if err != nil {
		return nil, err
	}
	contained.ID = "patient"

	res := FHIRMedicationDispenseResource{
		ResourceType: "MedicationDispense",
		ID:           process.ID.String(),
		Contained:    []FHIRPatientResource{contained},
		Status:       DispenseStatus(process.Status),
		Type: &FHIRCodeableConcept{
			Coding: []FHIRCoding{{System: StepCodeSystem, Code: string(process.Step)}},
		},
		Subject:      FHIRReference{Reference: "#patient", Display: patient.Name},
		WhenPrepared: fhirTime(process.CreatedAt),
	}
	if process.Notes != "" {
		res.Note = append(res.Note, FHIRAnnotation{AuthorString: process.CreatedBy, Time: fhirTime(process.CreatedAt), Text: process.Notes})
	}

	performers := map[string]bool{}
	for _, scan := range scans {
		if scan == nil {
			continue
		}
		if !performers[scan.ScannedBy] {
			performers[scan.ScannedBy] = true
			res.Performer = append(res.Performer, FHIRDispensePerformer{Actor: FHIRReference{Display: scan.ScannedBy}})
		}
		if scan.ToStatus == workflow.StatusDelivered && res.WhenHandedOver == "" {
			res.WhenHandedOver = fhirTime(scan.CreatedAt)
		}
		res.Note = append(res.Note, FHIRAnnotation{
			AuthorString: scan.ScannedBy,
			Time:         fhirTime(scan.CreatedAt),
			Text:         fmt.Sprintf("%s -> %s (%s, %.1f°C)", scan.FromStatus, scan.ToStatus, scan.TransactionType, scan.Temperature),
		})
	}

	rawJSON, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshalling FHIR medication dispense to JSON: %w", err)
	}
	return rawJSON, nil
}
