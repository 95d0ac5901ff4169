package contracts

// Topics groups the topic names a deployment uses. Saga inputs are keyed by
// correlation id, doctor commands by doctor id and appointment events by patient id.
type Topics struct {
	Saga              string
	DoctorCommands    string
	AppointmentEvents string
	DeadLetter        string
}

// Route returns the topic and partition key a message is published with.
func (t Topics) Route(msg Message) (topic string, key string) {
	switch m := msg.(type) {
	case ReserveTimeSlotCommand:
		return t.DoctorCommands, m.DoctorID
	case ReleaseTimeSlotCommand:
		return t.DoctorCommands, m.DoctorID
	case AppointmentInitializedEvent:
		return t.AppointmentEvents, m.PatientID
	case AppointmentConfirmedEvent:
		return t.AppointmentEvents, m.PatientID
	case AppointmentCanceledEvent:
		return t.AppointmentEvents, m.PatientID
	case AppointmentCompletedEvent:
		return t.AppointmentEvents, m.PatientID
	case AppointmentDeletedEvent:
		return t.AppointmentEvents, m.PatientID
	case TimeSlotReleasedEvent:
		if m.PatientID == "" {
			return t.AppointmentEvents, m.DoctorID
		}
		return t.AppointmentEvents, m.PatientID
	default:
		return t.Saga, msg.GetCorrelationID()
	}
}
