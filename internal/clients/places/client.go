// Package places is a client for the Google Places web service (Nearby Search and Details).
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tranki-app/tranki-backend/internal/models"
)

// ErrNotFound is returned by Details for an unknown place id.
var ErrNotFound = errors.New("place not found")

const detailsFields = "place_id,name,formatted_address,rating,user_ratings_total,geometry,opening_hours,photos,types,formatted_phone_number,website,url"

// StatusError is a Places response whose status is not OK or ZERO_RESULTS.
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return "places API status " + e.Status
	}
	return fmt.Sprintf("places API status %s: %s", e.Status, e.Message)
}

// Config holds the endpoint settings.
type Config struct {
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration
}

// Client queries the Places web service.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a Client. Language defaults to "es".
func NewClient(cfg Config) *Client {
	if cfg.Language == "" {
		cfg.Language = "es"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}}
}

type apiPlace struct {
	PlaceID          string  `json:"place_id"`
	Name             string  `json:"name"`
	Vicinity         string  `json:"vicinity"`
	FormattedAddress string  `json:"formatted_address"`
	Rating           float64 `json:"rating"`
	UserRatingsTotal int     `json:"user_ratings_total"`
	Geometry         struct {
		Location models.Location `json:"location"`
	} `json:"geometry"`
	OpeningHours *struct {
		OpenNow     *bool    `json:"open_now"`
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
	Photos []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
	Types                []string `json:"types"`
	FormattedPhoneNumber string   `json:"formatted_phone_number"`
	Website              string   `json:"website"`
	URL                  string   `json:"url"`
}

func (p apiPlace) toModel() models.Place {
	place := models.Place{
		PlaceID:          p.PlaceID,
		Name:             p.Name,
		Address:          p.Vicinity,
		Rating:           p.Rating,
		UserRatingsTotal: p.UserRatingsTotal,
		Location:         p.Geometry.Location,
		Types:            p.Types,
	}
	if place.Address == "" {
		place.Address = p.FormattedAddress
	}
	if p.OpeningHours != nil {
		place.OpenNow = p.OpeningHours.OpenNow
	}
	if len(p.Photos) > 0 {
		place.PhotoReference = p.Photos[0].PhotoReference
	}
	return place
}

type nearbyResponse struct {
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message"`
	Results      []apiPlace `json:"results"`
}

type detailsResponse struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message"`
	Result       apiPlace `json:"result"`
}

// Nearby runs a Nearby Search around location. Distances are left to the caller.
func (c *Client) Nearby(ctx context.Context, location models.Location, radius int, placeType, keyword string) ([]models.Place, error) {
	params := url.Values{}
	params.Set("location", strconv.FormatFloat(location.Lat, 'f', -1, 64)+","+strconv.FormatFloat(location.Lng, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(radius))
	if placeType != "" {
		params.Set("type", placeType)
	}
	if keyword != "" {
		params.Set("keyword", keyword)
	}

	var resp nearbyResponse
	if err := c.get(ctx, "/nearbysearch/json", params, &resp); err != nil {
		return nil, err
	}
	switch resp.Status {
	case "OK", "ZERO_RESULTS":
	default:
		return nil, &StatusError{Status: resp.Status, Message: resp.ErrorMessage}
	}

	out := make([]models.Place, 0, len(resp.Results))
	for _, p := range resp.Results {
		out = append(out, p.toModel())
	}
	return out, nil
}

// Details fetches the contact data of one place.
func (c *Client) Details(ctx context.Context, placeID string) (*models.PlaceDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailsFields)

	var resp detailsResponse
	if err := c.get(ctx, "/details/json", params, &resp); err != nil {
		return nil, err
	}
	switch resp.Status {
	case "OK":
	case "NOT_FOUND", "INVALID_REQUEST", "ZERO_RESULTS":
		return nil, fmt.Errorf("%w: %s", ErrNotFound, placeID)
	default:
		return nil, &StatusError{Status: resp.Status, Message: resp.ErrorMessage}
	}

	details := &models.PlaceDetails{
		Place:       resp.Result.toModel(),
		PhoneNumber: resp.Result.FormattedPhoneNumber,
		Website:     resp.Result.Website,
		MapsURL:     resp.Result.URL,
	}
	if resp.Result.FormattedAddress != "" {
		details.Address = resp.Result.FormattedAddress
	}
	if resp.Result.OpeningHours != nil {
		details.OpeningHours = resp.Result.OpeningHours.WeekdayText
	}
	return details, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dst interface{}) error {
	params.Set("key", c.cfg.APIKey)
	params.Set("language", c.cfg.Language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build places request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode places response: %w", err)
	}
	return nil
}
