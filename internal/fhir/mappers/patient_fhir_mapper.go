package mappers

import (
	"encoding/json"
	"fmt"
	"strings"

	"medication-tracking-service/internal/domain/entities"
)

// BedIdentifierSystem namespaces the bed identifier of exported patients.
const BedIdentifierSystem = "urn:medtrack:bed"

// FHIRHumanName represents a FHIR HumanName data type.
type FHIRHumanName struct {
	Use    string   `json:"use,omitempty"`    // usual | official | temp | nickname | anonymous | old | maiden
	Text   string   `json:"text,omitempty"`   // full name as registered
	Family string   `json:"family,omitempty"` // Family name (often surname)
	Given  []string `json:"given,omitempty"`  // Given names (not including surname)
}

// FHIRIdentifier represents a FHIR Identifier data type.
type FHIRIdentifier struct {
	Use    string `json:"use,omitempty"`
	System string `json:"system,omitempty"`
	Value  string `json:"value"`
}

// FHIRPatientResource represents a simplified FHIR Patient resource.
type FHIRPatientResource struct {
	ResourceType string           `json:"resourceType"` // Should be "Patient"
	ID           string           `json:"id,omitempty"` // Logical id of this artifact
	Identifier   []FHIRIdentifier `json:"identifier,omitempty"`
	Active       bool             `json:"active"`
	Name         []FHIRHumanName  `json:"name,omitempty"`
}

// splitName treats the last word as the family name. Single-word names
// only carry a given name.
func splitName(full string) FHIRHumanName {
	parts := strings.Fields(full)
	name := FHIRHumanName{Use: "official", Text: strings.Join(parts, " ")}
	switch len(parts) {
	case 0:
	case 1:
		name.Given = parts
	default:
		name.Given = parts[:len(parts)-1]
		name.Family = parts[len(parts)-1]
	}
	return name
}

// BuildPatientResource converts an internal Patient into its FHIR representation.
func BuildPatientResource(patient entities.Patient) (FHIRPatientResource, error) {
	if strings.TrimSpace(patient.Name) == "" {
		return FHIRPatientResource{}, fmt.Errorf("patient name is required for FHIR mapping")
	}
	res := FHIRPatientResource{
		ResourceType: "Patient",
		ID:           patient.ID.String(),
		Active:       true,
		Name:         []FHIRHumanName{splitName(patient.Name)},
	}
	if bed := strings.TrimSpace(patient.Bed); bed != "" {
		res.Identifier = []FHIRIdentifier{{Use: "temp", System: BedIdentifierSystem, Value: bed}}
	}
	return res, nil
}

// MapPatientToFHIR converts an internal Patient entity to a FHIR Patient resource (json.RawMessage).
func MapPatientToFHIR(patient entities.Patient) (json.RawMessage, error) {
	res, err := BuildPatientResource(patient)
	if err != nil {
		return nil, err
	}
	rawJSON, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshalling FHIR patient resource to JSON: %w", err)
	}
	return rawJSON, nil
}
