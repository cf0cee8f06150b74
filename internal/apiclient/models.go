package apiclient

import (
	"fmt"
	"strings"
	"time"
)

// Business is an entry of the category-scoped business directory.
// It is the entity paged through by the business browser.
type Business struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CategoryID  string `json:"categoryId,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// BusinessQuery selects one page of businesses in a category
type BusinessQuery struct {
	CategoryID         string
	IncludeDescendants bool
	Limit              int
	Offset             int
}

// Floor is a hostel floor with its occupancy counters
type Floor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Number         int    `json:"floorNumber"`
	TotalRooms     int    `json:"totalRooms"`
	AvailableRooms int    `json:"availableRooms"`
	TotalBeds      int    `json:"totalBeds"`
	AvailableBeds  int    `json:"availableBeds"`
}

// Label returns the display name of the floor
func (f Floor) Label() string {
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("Floor %d", f.Number)
}

// Room belongs to exactly one floor
type Room struct {
	ID            string  `json:"id"`
	FloorID       string  `json:"floorId"`
	RoomNumber    string  `json:"roomNumber"`
	Type          string  `json:"type,omitempty"`
	Capacity      int     `json:"capacity"`
	TotalBeds     int     `json:"totalBeds"`
	AvailableBeds int     `json:"availableBeds"`
	MonthlyRent   float64 `json:"monthlyRent,omitempty"`
}

// Label returns the display name of the room
func (r Room) Label() string {
	return "Room " + r.RoomNumber
}

// Bed statuses reported by the API
const (
	BedStatusAvailable   = "available"
	BedStatusOccupied    = "occupied"
	BedStatusReserved    = "reserved"
	BedStatusMaintenance = "maintenance"
)

// Bed belongs to exactly one room
type Bed struct {
	ID          string  `json:"id"`
	RoomID      string  `json:"roomId"`
	BedNumber   string  `json:"bedNumber"`
	Status      string  `json:"status"`
	MonthlyRent float64 `json:"monthlyRent,omitempty"`
}

// Available reports whether a student can be placed in the bed.
// Older API versions omit the status for free beds.
func (b Bed) Available() bool {
	switch strings.ToLower(b.Status) {
	case "", BedStatusAvailable, "vacant":
		return true
	default:
		return false
	}
}

// Label returns the display name of the bed
func (b Bed) Label() string {
	return "Bed " + b.BedNumber
}

// StudentInput is the body of the manual student creation endpoint
type StudentInput struct {
	BedID          string  `json:"bedId"`
	Name           string  `json:"name"`
	Email          string  `json:"email,omitempty"`
	Phone          string  `json:"phone"`
	Address        string  `json:"address,omitempty"`
	GuardianName   string  `json:"guardianName,omitempty"`
	GuardianPhone  string  `json:"guardianPhone,omitempty"`
	Course         string  `json:"course,omitempty"`
	Institution    string  `json:"institution,omitempty"`
	EnrollmentDate string  `json:"enrollmentDate,omitempty"`
	BaseMonthlyFee float64 `json:"baseMonthlyFee,omitempty"`
	PaymentMethod  string  `json:"paymentMethod,omitempty"`
}

// Student is a created student record
type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	BedID     string    `json:"bedId,omitempty"`
	RoomID    string    `json:"roomId,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// PaymentMethod is an entry of the payment method lookup list
type PaymentMethod struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Credentials are posted to the login endpoint
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the account behind a session
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Session is returned by a successful login
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	User      User      `json:"user"`
}
