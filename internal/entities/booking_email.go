package entities

// BookingEmailData holds everything the notification emails need about a
// committed booking.
type BookingEmailData struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	DateFormatted string
	TimeFormatted string
	ServiceType   string
	Notes         string
	CurrentYear   int
}
