package core

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/tranki-app/tranki-backend/internal/models"
)

const (
	trendThreshold  = 0.3
	trendRecentSize = 3
	// DateLayout is the layout of the date buckets of emotion records.
	DateLayout = "2006-01-02"
)

// CalculateTrend compares the mean of the last three values with the mean of the
// values before them.
func CalculateTrend(values []float64) string {
	if len(values) < trendRecentSize+1 {
		return models.TrendInsufficientData
	}
	split := len(values) - trendRecentSize
	diff := stat.Mean(values[split:], nil) - stat.Mean(values[:split], nil)
	switch {
	case diff > trendThreshold:
		return models.TrendImproving
	case diff < -trendThreshold:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

// Distribution counts records per emotion id, always listing every known id.
// Percentages are rounded to one decimal.
func Distribution(records []*models.EmotionRecord) []models.EmotionShare {
	counts := countEmotions(records)
	shares := make([]models.EmotionShare, 0, len(models.EmotionIDs))
	for _, id := range models.EmotionIDs {
		share := models.EmotionShare{EmotionID: id, Count: counts[id]}
		if len(records) > 0 {
			share.Percentage = round1(float64(counts[id]) * 100 / float64(len(records)))
		}
		shares = append(shares, share)
	}
	return shares
}

// BuildInsights summarises the records and daily averages of the last days ending at today.
// averages may be in any order.
func BuildInsights(days int, records []*models.EmotionRecord, averages []*models.DailyAverage, today time.Time) models.Insights {
	insights := models.Insights{
		Days:          days,
		TotalRecords:  len(records),
		Distribution:  Distribution(records),
		DailyAverages: []models.DailyAverage{},
	}

	if len(records) > 0 {
		values := make([]float64, len(records))
		for i, r := range records {
			values[i] = float64(r.Value)
		}
		insights.AverageValue = round2(stat.Mean(values, nil))
		insights.DominantEmotion = dominantEmotion(countEmotions(records))
	}

	sorted := make([]models.DailyAverage, 0, len(averages))
	for _, a := range averages {
		if a != nil && a.Count > 0 {
			sorted = append(sorted, *a)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })
	insights.DailyAverages = sorted

	trendValues := make([]float64, len(sorted))
	for i, a := range sorted {
		trendValues[i] = a.Average
	}
	insights.Trend = CalculateTrend(trendValues)
	insights.StreakDays = streak(sorted, today)
	return insights
}

// streak counts consecutive recorded days ending today, or yesterday when today has no record yet.
func streak(sorted []models.DailyAverage, today time.Time) int {
	recorded := make(map[string]bool, len(sorted))
	for _, a := range sorted {
		recorded[a.Date] = true
	}
	day := today
	if !recorded[day.Format(DateLayout)] {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for recorded[day.Format(DateLayout)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

func countEmotions(records []*models.EmotionRecord) map[string]int {
	counts := make(map[string]int, len(models.EmotionIDs))
	for _, r := range records {
		counts[r.EmotionID]++
	}
	return counts
}

// dominantEmotion returns the most frequent id; ties go to the lower-valued emotion.
func dominantEmotion(counts map[string]int) string {
	best, bestCount := "", 0
	for _, id := range models.EmotionIDs {
		if counts[id] > bestCount {
			best, bestCount = id, counts[id]
		}
	}
	return best
}

// DailyAverageOf aggregates the records of one date bucket.
func DailyAverageOf(date string, records []*models.EmotionRecord) *models.DailyAverage {
	avg := &models.DailyAverage{Date: date, Count: len(records)}
	for _, r := range records {
		avg.Sum += r.Value
	}
	if avg.Count > 0 {
		avg.Average = round2(float64(avg.Sum) / float64(avg.Count))
		avg.DominantEmotion = dominantEmotion(countEmotions(records))
	}
	return avg
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
