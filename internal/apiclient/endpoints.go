package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hostelhub/hostelctl/internal/logging"
)

// API paths
const (
	pathHealth         = "/api/health"
	pathLogin          = "/api/auth/login"
	pathBusinesses     = "/api/businesses"
	pathFloors         = "/api/floors"
	pathFloorRooms     = "/api/floors/%s/rooms"
	pathRoomBeds       = "/api/rooms/%s/beds"
	pathManualStudent  = "/api/students/manual"
	pathPaymentMethods = "/api/payment-methods"
)

// Ping performs a simple health check on the API.
// Returns nil if the API is reachable and responding.
func (c *Client) Ping(ctx context.Context) error {
	return c.Get(ctx, pathHealth, nil, nil)
}

// Login exchanges credentials for a session token.
// The client's own token is not changed; callers decide where to keep it.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return nil, NewValidationError("email and password are required")
	}

	var session Session
	if err := c.Post(ctx, pathLogin, creds, &session); err != nil {
		return nil, err
	}
	if session.Token == "" {
		return nil, NewParseError("login response did not contain a token", nil)
	}
	return &session, nil
}

// ListBusinesses fetches one page of businesses in a category.
// A response without a businesses array yields an empty page.
func (c *Client) ListBusinesses(ctx context.Context, q BusinessQuery) ([]Business, error) {
	query := url.Values{}
	if q.CategoryID != "" {
		query.Set("categoryId", q.CategoryID)
	}
	query.Set("includeDescendants", strconv.FormatBool(q.IncludeDescendants))
	query.Set("limit", strconv.Itoa(q.Limit))
	query.Set("offset", strconv.Itoa(q.Offset))

	payload, err := c.get(ctx, pathBusinesses, query)
	if err != nil {
		return nil, err
	}

	if !isNull(payload) && payload[0] == '[' {
		return decodeList[Business](payload)
	}

	var page struct {
		Businesses json.RawMessage `json:"businesses"`
	}
	if !isNull(payload) && payload[0] == '{' {
		if err := json.Unmarshal(payload, &page); err != nil {
			return nil, NewParseError("failed to decode businesses page", err)
		}
	}
	return decodeList[Business](page.Businesses)
}

// ListFloors fetches every floor of the hostel
func (c *Client) ListFloors(ctx context.Context) ([]Floor, error) {
	payload, err := c.getCached(ctx, pathFloors, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Floor](payload)
}

// ListRooms fetches the rooms of one floor
func (c *Client) ListRooms(ctx context.Context, floorID string) ([]Room, error) {
	if floorID == "" {
		return nil, NewValidationError("floor id is required")
	}
	payload, err := c.getCached(ctx, fmt.Sprintf(pathFloorRooms, url.PathEscape(floorID)), nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Room](payload)
}

// ListBeds fetches the beds of one room
func (c *Client) ListBeds(ctx context.Context, roomID string) ([]Bed, error) {
	if roomID == "" {
		return nil, NewValidationError("room id is required")
	}
	payload, err := c.getCached(ctx, fmt.Sprintf(pathRoomBeds, url.PathEscape(roomID)), nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Bed](payload)
}

// CreateStudent creates a student and assigns them to a bed.
// Bed occupancy changes, so every cached lookup is dropped on success.
func (c *Client) CreateStudent(ctx context.Context, in StudentInput) (*Student, error) {
	if in.BedID == "" {
		return nil, NewValidationError("bed id is required")
	}

	var student Student
	if err := c.Post(ctx, pathManualStudent, in, &student); err != nil {
		return nil, err
	}
	c.InvalidateCache()

	if student.BedID == "" {
		student.BedID = in.BedID
	}
	logging.Info("Student created",
		zap.String("student_id", student.ID),
		zap.String("bed_id", student.BedID),
	)
	return &student, nil
}

// ListPaymentMethods fetches the payment method lookup list
func (c *Client) ListPaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	payload, err := c.getCached(ctx, pathPaymentMethods, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[PaymentMethod](payload)
}
