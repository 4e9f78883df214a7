package core

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/tranki-app/tranki-backend/internal/models"
)

const (
	// DayStartMinutes and DayEndMinutes bound the window searched for free time.
	DayStartMinutes = 6 * 60
	DayEndMinutes   = 22 * 60
	// MinFreeSlotMinutes is the shortest gap reported as a free slot.
	MinFreeSlotMinutes = 30
	// RecommendedSleepMinutes is the nightly total below which a day is flagged.
	RecommendedSleepMinutes = 8 * 60

	minutesPerDay = 24 * 60
)

// ParseClock converts "HH:MM" into minutes after midnight. "24:00" is accepted as end of day.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[3:])
	if m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return h*60 + m, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	if minutes > minutesPerDay {
		minutes = minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

type interval struct{ start, end int }

// eventIntervals returns the busy intervals of an event within a single day.
// An end before the start wraps past midnight and is split in two.
func eventIntervals(e models.Event) ([]interval, bool) {
	start, err := ParseClock(e.StartTime)
	if err != nil {
		return nil, false
	}
	end, err := ParseClock(e.EndTime)
	if err != nil {
		return nil, false
	}
	switch {
	case end == start:
		return nil, false
	case end < start:
		return []interval{{start, minutesPerDay}, {0, end}}, true
	default:
		return []interval{{start, end}}, true
	}
}

// eventDuration is the length of an event in minutes, wrapping past midnight.
func eventDuration(e models.Event) int {
	intervals, ok := eventIntervals(e)
	if !ok {
		return 0
	}
	total := 0
	for _, iv := range intervals {
		total += iv.end - iv.start
	}
	return total
}

// busyIntervals clamps the day's events to the free-time window and sorts them by start.
func busyIntervals(events []models.Event) []interval {
	var busy []interval
	for _, e := range events {
		intervals, ok := eventIntervals(e)
		if !ok {
			continue
		}
		for _, iv := range intervals {
			if iv.start < DayStartMinutes {
				iv.start = DayStartMinutes
			}
			if iv.end > DayEndMinutes {
				iv.end = DayEndMinutes
			}
			if iv.end > iv.start {
				busy = append(busy, iv)
			}
		}
	}
	sort.SliceStable(busy, func(i, j int) bool { return busy[i].start < busy[j].start })
	return busy
}

// FreeSlots returns every gap of at least MinFreeSlotMinutes between 06:00 and 22:00.
// Events without valid times are ignored; overlapping events are merged.
func FreeSlots(events []models.Event) []models.TimeSlot {
	slots := []models.TimeSlot{}
	cursor := DayStartMinutes
	emit := func(from, to int) {
		if to-from >= MinFreeSlotMinutes {
			slots = append(slots, models.TimeSlot{Start: FormatClock(from), End: FormatClock(to), Duration: to - from})
		}
	}
	for _, iv := range busyIntervals(events) {
		if iv.start > cursor {
			emit(cursor, iv.start)
		}
		if iv.end > cursor {
			cursor = iv.end
		}
	}
	emit(cursor, DayEndMinutes)
	return slots
}

// SleepAnalysis sums the sleep events of every weekday.
func SleepAnalysis(schedule *models.Schedule) models.SleepReport {
	report := models.SleepReport{Days: make([]models.DaySleep, 0, len(models.Weekdays)), InsufficientDays: []string{}}
	total := 0
	for _, day := range models.Weekdays {
		minutes := 0
		if schedule != nil {
			for _, e := range schedule.Days[day] {
				if e.Type == models.EventSleep {
					minutes += eventDuration(e)
				}
			}
		}
		sufficient := minutes >= RecommendedSleepMinutes
		report.Days = append(report.Days, models.DaySleep{
			Day:        day,
			Minutes:    minutes,
			Hours:      math.Round(float64(minutes)/60*10) / 10,
			Sufficient: sufficient,
		})
		if !sufficient {
			report.InsufficientDays = append(report.InsufficientDays, day)
		}
		total += minutes
	}
	report.AverageMinutes = math.Round(float64(total)/float64(len(models.Weekdays))*10) / 10
	return report
}

// WeeklySummary describes each weekday's load: busy time inside the 06:00-22:00
// window, free time left in slots, and the sleep total.
func WeeklySummary(schedule *models.Schedule) []models.DaySummary {
	sleep := SleepAnalysis(schedule)
	summaries := make([]models.DaySummary, 0, len(models.Weekdays))
	for i, day := range models.Weekdays {
		var events []models.Event
		if schedule != nil {
			events = schedule.Days[day]
		}

		busy, cursor := 0, DayStartMinutes
		for _, iv := range busyIntervals(events) {
			if iv.start < cursor {
				iv.start = cursor
			}
			if iv.end > iv.start {
				busy += iv.end - iv.start
				cursor = iv.end
			}
		}
		free := 0
		for _, slot := range FreeSlots(events) {
			free += slot.Duration
		}

		summaries = append(summaries, models.DaySummary{
			Day:          day,
			Events:       len(events),
			BusyMinutes:  busy,
			FreeMinutes:  free,
			SleepMinutes: sleep.Days[i].Minutes,
			EnoughSleep:  sleep.Days[i].Sufficient,
		})
	}
	return summaries
}

// ValidateEvents checks the times and types of a day's events and returns them sorted by start.
// Events without an id get the one produced by newID.
func ValidateEvents(day string, events []models.Event, newID func() string) ([]models.Event, error) {
	out := make([]models.Event, 0, len(events))
	for i, e := range events {
		if e.Title == "" {
			return nil, fmt.Errorf("%w: %s event %d has no title", ErrInvalidSchedule, day, i)
		}
		if e.Type == "" {
			e.Type = models.EventOther
		}
		if !models.EventTypes[e.Type] {
			return nil, fmt.Errorf("%w: %s event %q has unknown type %q", ErrInvalidSchedule, day, e.Title, e.Type)
		}
		start, err := ParseClock(e.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: %s event %q: %v", ErrInvalidSchedule, day, e.Title, err)
		}
		end, err := ParseClock(e.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: %s event %q: %v", ErrInvalidSchedule, day, e.Title, err)
		}
		if start == end {
			return nil, fmt.Errorf("%w: %s event %q has zero length", ErrInvalidSchedule, day, e.Title)
		}
		if end < start && e.Type != models.EventSleep {
			return nil, fmt.Errorf("%w: %s event %q ends before it starts", ErrInvalidSchedule, day, e.Title)
		}
		if e.ID == "" && newID != nil {
			e.ID = newID()
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}
