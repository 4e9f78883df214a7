package models

import "time"

// Event types accepted in a schedule.
const (
	EventClass    = "class"
	EventWork     = "work"
	EventStudy    = "study"
	EventExercise = "exercise"
	EventSleep    = "sleep"
	EventLeisure  = "leisure"
	EventOther    = "other"
)

// EventTypes is the set of valid event types.
var EventTypes = map[string]bool{
	EventClass: true, EventWork: true, EventStudy: true, EventExercise: true,
	EventSleep: true, EventLeisure: true, EventOther: true,
}

// Weekdays in display order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Event is one block in a day of the schedule. Times are "HH:MM".
type Event struct {
	ID        string `json:"id" firestore:"id"`
	Title     string `json:"title" firestore:"title"`
	StartTime string `json:"startTime" firestore:"startTime"`
	EndTime   string `json:"endTime" firestore:"endTime"`
	Type      string `json:"type" firestore:"type"`
}

// Schedule maps a weekday name to its ordered events.
type Schedule struct {
	UserID    string             `json:"userId" firestore:"-"`
	Days      map[string][]Event `json:"days" firestore:"days"`
	UpdatedAt time.Time          `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// TimeSlot is a free gap between events.
type TimeSlot struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration int    `json:"duration"` // minutes
}

// DaySleep is the sleep total for one weekday.
type DaySleep struct {
	Day        string  `json:"day"`
	Minutes    int     `json:"minutes"`
	Hours      float64 `json:"hours"`
	Sufficient bool    `json:"sufficient"`
}

// SleepReport summarises a week of sleep events.
type SleepReport struct {
	Days             []DaySleep `json:"days"`
	AverageMinutes   float64    `json:"averageMinutes"`
	InsufficientDays []string   `json:"insufficientDays"`
}

// DaySummary describes the load of one weekday.
type DaySummary struct {
	Day          string `json:"day"`
	Events       int    `json:"events"`
	BusyMinutes  int    `json:"busyMinutes"`
	FreeMinutes  int    `json:"freeMinutes"`
	SleepMinutes int    `json:"sleepMinutes"`
	EnoughSleep  bool   `json:"enoughSleep"`
}
