package workflow

// NextStepHint tells the scanning user what is expected to happen to a
// process of step once it has reached status. Hints are not persisted.
func NextStepHint(step Step, status Status) string {
	switch status {
	case StatusPending:
		return "Enfermería debe preparar la medicación (escanear " + string(CheckpointNursePreparation) + ")"
	case StatusInProgress:
		if step == StepDevolucion {
			return "Farmacia debe despachar la devolución (escanear " + string(CheckpointPharmacyDispatchDevolution) + ")"
		}
		return "Farmacia debe despachar la medicación (escanear " + string(CheckpointPharmacyDispatch) + ")"
	case StatusDispatchedFromPharmacy:
		return "El servicio debe recibir el carro (escanear " + string(CheckpointServiceReception) + ")"
	case StatusDelivered:
		return "Enfermería debe confirmar la entrega (escanear " + string(CheckpointDeliveryConfirmation) + ")"
	case StatusCompleted:
		return "Proceso completado"
	case StatusError:
		return "Farmacia debe revisar la incidencia y reintentar (escanear " + string(CheckpointPharmacyRetry) + ")"
	}
	return ""
}
