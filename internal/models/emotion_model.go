package models

import "time"

// Emotion ids recorded by the client.
const (
	EmotionStressed = "stressed"
	EmotionNeutral  = "neutral"
	EmotionTranki   = "tranki"
)

// EmotionValues maps an emotion id to its numeric value.
var EmotionValues = map[string]int{
	EmotionStressed: 1,
	EmotionNeutral:  2,
	EmotionTranki:   3,
}

// EmotionIDs lists the emotion ids in value order.
var EmotionIDs = []string{EmotionStressed, EmotionNeutral, EmotionTranki}

// EmotionRecord is a single user-reported affect value.
type EmotionRecord struct {
	ID        string    `json:"id" firestore:"-"`
	EmotionID string    `json:"emotionId" firestore:"emotionId"`
	Value     int       `json:"value" firestore:"value"`
	Note      string    `json:"note,omitempty" firestore:"note,omitempty"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
	Date      string    `json:"date" firestore:"date"` // YYYY-MM-DD bucket
}

// DailyAverage aggregates the records of one date bucket.
type DailyAverage struct {
	Date            string    `json:"date" firestore:"date"`
	Average         float64   `json:"average" firestore:"average"`
	Count           int       `json:"count" firestore:"count"`
	Sum             int       `json:"sum" firestore:"sum"`
	DominantEmotion string    `json:"dominantEmotion" firestore:"dominantEmotion"`
	UpdatedAt       time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// EmotionFilter narrows a record listing. Empty fields are ignored.
type EmotionFilter struct {
	From  string // inclusive YYYY-MM-DD
	To    string // inclusive YYYY-MM-DD
	Limit int
}
