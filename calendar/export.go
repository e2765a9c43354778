// Package calendar renders an active trip as an iCalendar feed with one
// all-day event per trip day.
package calendar

import (
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/armanmujtaba/Trivanza/models"
	"github.com/armanmujtaba/Trivanza/prompts"
)

const productID = "-//Trivanza//Trip Planner//EN"

// Export builds the VCALENDAR for req. Event UIDs are derived from the
// session id and day number so re-downloading replaces, not duplicates.
func Export(sessionID uuid.UUID, req models.TripRequest, stamp time.Time) (string, error) {
	days := prompts.TripDates(req.StartDate, req.EndDate)
	if len(days) == 0 {
		return "", errors.New("trip has no days")
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName(fmt.Sprintf("Trip to %s", req.Destination))

	for i, day := range days {
		uid := uuid.NewSHA1(sessionID, []byte(fmt.Sprintf("day-%d", i+1)))
		event := cal.AddEvent(uid.String() + "@trivanza")
		event.SetDtStampTime(stamp.UTC())
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("Day %d in %s", i+1, req.Destination))
		event.SetLocation(req.Destination)
		event.SetDescription(fmt.Sprintf("Day %d of %d: %s to %s", i+1, len(days), req.Origin, req.Destination))
	}
	return cal.Serialize(), nil
}
