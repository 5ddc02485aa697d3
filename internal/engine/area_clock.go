package engine

import (
	"sort"
	"time"
)

// areaClockInterval is how often each area's clock advances. A coarse pulse
// keeps scheduler traffic low; AdvanceClock takes the elapsed real seconds so
// the clock stays accurate regardless of pulse width.
const areaClockInterval = 10 * time.Second

// StartAreaClocks schedules a recurring clock pulse per area. Areas with a
// zero TimeScale are frozen in time and get no pulse.
func (e *Engine) StartAreaClocks() {
	ids := make([]string, 0, len(e.world.Areas))
	for id := range e.world.Areas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		area := e.world.Areas[id]
		if area.TimeScale == 0 {
			continue
		}
		areaID := id
		e.sched.ScheduleRecurring("area-clock-"+areaID, areaClockInterval, areaClockInterval, func() {
			e.tickAreaClock(areaID)
		})
	}
}

// tickAreaClock advances one area's clock and, when the day phase rolls over,
// broadcasts the new phase text to every player in the area.
func (e *Engine) tickAreaClock(areaID string) {
	area, ok := e.world.Areas[areaID]
	if !ok {
		return
	}
	before := area.Phase()
	area.AdvanceClock(areaClockInterval.Seconds())
	if area.Phase() == before {
		return
	}
	text, ok := area.PhaseText()
	if !ok {
		return
	}
	for roomID := range area.RoomIDs {
		e.sendRoom(roomID, "", text)
	}
}
