package models

// Trend classifications.
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// EmotionShare is the count and percentage of one emotion id.
type EmotionShare struct {
	EmotionID  string  `json:"emotionId"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Insights summarises a period of emotion records.
type Insights struct {
	Days            int            `json:"days"`
	TotalRecords    int            `json:"totalRecords"`
	AverageValue    float64        `json:"averageValue"`
	DominantEmotion string         `json:"dominantEmotion,omitempty"`
	Distribution    []EmotionShare `json:"distribution"`
	Trend           string         `json:"trend"`
	StreakDays      int            `json:"streakDays"`
	DailyAverages   []DailyAverage `json:"dailyAverages"`
}
