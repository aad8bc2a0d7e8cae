package projections

import (
	"context"
	"time"

	"lawoffice/internal/domain/appointment"
	"lawoffice/internal/domain/dal"
)

// QueryUpcomingAppointments lists appointments starting at or after now,
// soonest first, with the client name.
func QueryUpcomingAppointments(ctx context.Context, now time.Time, store AppointmentReader) ([]appointment.WithClient, error) {
	return store.List(ctx, dal.Query{OrderBy: "start_time"}.Where(dal.Gte("start_time", now)))
}
