package events

// Topics and CloudEvent types exchanged with the ride platform.
const (
	TopicRideEvents  = "ride.events"
	TopicRiderEvents = "rider.events"

	RideStatusChanged  = "ride.status_changed"
	RideDriverLocation = "ride.driver_location"

	RiderFareQuoted       = "rider.fare_quoted"
	RiderBookingConfirmed = "rider.booking_confirmed"

	// EventSource identifies this service in published CloudEvents.
	EventSource = "rider-web"
)
