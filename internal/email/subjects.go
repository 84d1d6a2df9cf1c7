package email

const (
	subjectBookingConfirmedFmt = "Booking %s confirmed"
	subjectBookingUpdatedFmt   = "Booking %s updated"
)
