// Package backend is the typed client for the external booking backend's JSON API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/cabgo/rider-web/internal/common/domain"
	"github.com/cabgo/rider-web/internal/domain/booking"
	"github.com/cabgo/rider-web/internal/domain/pricing"
)

const (
	autocompletePath   = "/api/maps/autocomplete"
	placeDetailsPath   = "/api/maps/place-details"
	reverseGeocodePath = "/api/maps/reverse-geocode"
	calculateFarePath  = "/api/fares/calculate"
	bookingsPath       = "/api/bookings"
	loginPath          = "/api/auth/login"
	otpSendPath        = "/api/auth/otp/send"
	otpVerifyPath      = "/api/auth/otp/verify"
	googleSignInPath   = "/api/auth/google"
	adminPricingPath   = "/api/admin/pricing"

	maxErrorBody = 4 << 10
)

// Client calls the booking backend. Every failure is returned as a NetworkError.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a client with an instrumented transport.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

// SearchPlaces returns autocomplete candidates for the input text.
func (c *Client) SearchPlaces(ctx context.Context, input string) ([]booking.PlaceSuggestion, error) {
	params := url.Values{}
	params.Set("input", input)

	var resp autocompleteResponse
	if err := c.do(ctx, http.MethodGet, autocompletePath, params, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// PlaceDetails looks up a place by its provider id.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*booking.PlaceDetails, error) {
	params := url.Values{}
	params.Set("placeId", placeID)

	var resp placeResponse
	if err := c.do(ctx, http.MethodGet, placeDetailsPath, params, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.toDetails(), nil
}

// ReverseGeocode turns a point into an address.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (*booking.PlaceDetails, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))

	var resp placeResponse
	if err := c.do(ctx, http.MethodGet, reverseGeocodePath, params, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.toDetails(), nil
}

// CalculateFare asks the backend to price a trip.
func (c *Client) CalculateFare(ctx context.Context, req booking.FareRequest) (*booking.FareQuote, error) {
	body := fareRequestDTO{
		Pickup:        fromLocation(req.Pickup),
		Drop:          fromLocation(req.Drop),
		VehicleType:   req.VehicleType,
		TripType:      req.TripType,
		Days:          req.Days,
		Hours:         req.Hours,
		PaymentMethod: req.PaymentMethod,
	}

	var quote booking.FareQuote
	if err := c.do(ctx, http.MethodPost, calculateFarePath, nil, "", body, &quote); err != nil {
		return nil, err
	}
	if quote.TripType == "" {
		quote.TripType = req.TripType
	}
	if quote.VehicleType == "" {
		quote.VehicleType = req.VehicleType
	}
	return &quote, nil
}

// CreateBooking places a booking with the rider's bearer token.
func (c *Client) CreateBooking(ctx context.Context, token string, req booking.BookingRequest) (*booking.BookingConfirmation, error) {
	body := bookingRequestDTO{
		Pickup:        fromLocation(req.Pickup),
		Drop:          fromLocation(req.Drop),
		VehicleType:   req.VehicleType,
		BookingType:   req.BookingType,
		ScheduledAt:   req.ScheduledAt,
		PaymentMethod: req.PaymentMethod,
		DistanceKm:    req.DistanceKm,
		EstimatedFare: req.EstimatedFare,
	}

	var resp bookingResponseDTO
	if err := c.do(ctx, http.MethodPost, bookingsPath, nil, token, body, &resp); err != nil {
		return nil, err
	}
	conf := resp.toConfirmation()
	if conf.BookingID == "" {
		return nil, domain.NewNetworkError("booking service returned no booking id", nil)
	}
	return conf, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var resp AuthResult
	if err := c.do(ctx, http.MethodPost, loginPath, nil, "", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SendOTP(ctx context.Context, phone string) error {
	return c.do(ctx, http.MethodPost, otpSendPath, nil, "", otpSendRequest{Phone: phone}, nil)
}

func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (*AuthResult, error) {
	var resp AuthResult
	if err := c.do(ctx, http.MethodPost, otpVerifyPath, nil, "", otpVerifyRequest{Phone: phone, Code: code}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GoogleSignIn exchanges a Google ID token for a backend session token.
func (c *Client) GoogleSignIn(ctx context.Context, idToken string) (*AuthResult, error) {
	var resp AuthResult
	if err := c.do(ctx, http.MethodPost, googleSignInPath, nil, "", googleRequest{IDToken: idToken}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListPricing returns all vehicle rates.
func (c *Client) ListPricing(ctx context.Context, token string) ([]pricing.Rate, error) {
	var rates []pricing.Rate
	if err := c.do(ctx, http.MethodGet, adminPricingPath, nil, token, nil, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}

// UpdatePricing replaces the rate for one vehicle type.
func (c *Client) UpdatePricing(ctx context.Context, token string, rate pricing.Rate) (*pricing.Rate, error) {
	path := adminPricingPath + "/" + url.PathEscape(string(rate.VehicleType))

	var updated pricing.Rate
	if err := c.do(ctx, http.MethodPut, path, nil, token, rate, &updated); err != nil {
		return nil, err
	}
	if updated.VehicleType == "" {
		updated = rate
	}
	return &updated, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return domain.NewNetworkError("request cancelled", err)
		}
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return domain.NewNetworkError("could not reach the booking service, please try again", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(method, path, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewNetworkError("unexpected reply from the booking service", fmt.Errorf("decode %s response: %w", path, err))
	}
	return nil
}

func statusError(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message := http.StatusText(resp.StatusCode)
	var body errorResponse
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Message != "":
			message = body.Message
		case body.Error != "":
			message = body.Error
		}
	}
	return domain.NewNetworkError(message, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode))
}
