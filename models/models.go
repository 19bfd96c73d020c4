package models

import (
	"time"
)

// Role is a ticket tier embedded in an Event. Privileges are free-form
// names such as "Lunch", "Gift", "Entry".
type Role struct {
	Name        string   `json:"name" bson:"name"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Privileges  []string `json:"privileges" bson:"privileges"`
	Price       float64  `json:"price" bson:"price"`
	MaxCount    int      `json:"maxCount" bson:"maxcount"`
}

// FieldDef describes one entry of an event's dynamic registration form.
type FieldDef struct {
	Name     string   `json:"name" bson:"name"`
	Type     string   `json:"type" bson:"type"` // text, email, number, select, date
	Required bool     `json:"required" bson:"required"`
	Options  []string `json:"options,omitempty" bson:"options,omitempty"`
}

type Event struct {
	EventID        string     `json:"eventid" bson:"eventid"`
	Company        string     `json:"company" bson:"company"`
	Name           string     `json:"name" bson:"name"`
	NameKey        string     `json:"-" bson:"namekey"` // normalized (company, name) uniqueness key
	Venue          string     `json:"venue,omitempty" bson:"venue,omitempty"`
	Time           string     `json:"time,omitempty" bson:"time,omitempty"`
	StartDate      time.Time  `json:"startDate" bson:"startdate"`
	EndDate        time.Time  `json:"endDate" bson:"enddate"`
	PosterImage    string     `json:"posterImage,omitempty" bson:"posterimage,omitempty"`
	RegClosed      bool       `json:"registrationClosed" bson:"regclosed"`
	Roles          []Role     `json:"roles" bson:"roles"`
	RegFields      []FieldDef `json:"registrationFields" bson:"regfields"`
	CreatedBy      string     `json:"-" bson:"createdby"`
	CreatedAt      time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt,omitempty" bson:"updated_at,omitempty"`
}

// Attendee is a registered user for one event. Privileges and Claims
// are a frozen snapshot of the chosen role at registration time; later
// role edits never change them.
type Attendee struct {
	AttendeeID    string            `json:"attendeeid" bson:"attendeeid"`
	EventID       string            `json:"eventid" bson:"eventid"`
	Company       string            `json:"company" bson:"company"`
	Email         string            `json:"email" bson:"email"`
	RoleName      string            `json:"role" bson:"rolename"`
	Privileges    []string          `json:"privileges" bson:"privileges"`
	Answers       map[string]string `json:"answers" bson:"answers"`
	QRToken       string            `json:"qrToken" bson:"qrtoken"`
	TransactionID string            `json:"transactionId,omitempty" bson:"txnid,omitempty"`
	PaymentStatus string            `json:"paymentStatus" bson:"paystatus"` // free, paid, pending
	Entered       bool              `json:"entered" bson:"entered"`
	EnteredAt     time.Time         `json:"enteredAt,omitempty" bson:"enteredat,omitempty"`
	Claims        map[string]bool   `json:"claims" bson:"claims"` // normalized privilege key -> claimed
	CreatedAt     time.Time         `json:"createdAt" bson:"created_at"`
}

// GrantEntry is one staff/volunteer credential inside an AccessGrant.
type GrantEntry struct {
	Privilege string    `json:"privilege" bson:"privilege"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"password" bson:"password"`
	Expiry    time.Time `json:"expiry" bson:"expiry"`
}

// AccessGrant maps staff emails to privileges for one event. Separate
// from the attendee roster.
type AccessGrant struct {
	Company   string       `json:"company" bson:"company"`
	EventID   string       `json:"eventid" bson:"eventid"`
	Entries   []GrantEntry `json:"entries" bson:"entries"`
	UpdatedAt time.Time    `json:"updatedAt" bson:"updated_at"`
}

type Admin struct {
	AdminID      string    `json:"adminid" bson:"adminid"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordhash"`
	Company      string    `json:"company" bson:"company"`
	CompanyKey   string    `json:"-" bson:"companykey"`
	Location     string    `json:"location,omitempty" bson:"location,omitempty"`
	Category     string    `json:"category,omitempty" bson:"category,omitempty"`
	ResetToken   string    `json:"-" bson:"resettoken,omitempty"`
	ResetExpiry  time.Time `json:"-" bson:"resetexpiry,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	LastLogin    time.Time `json:"-" bson:"last_login,omitempty"`
}

// PendingPayment holds registration form data parked between payment
// initiation and the provider webhook.
type PendingPayment struct {
	TxnID     string            `json:"txnid" bson:"txnid"`
	EventID   string            `json:"eventid" bson:"eventid"`
	Email     string            `json:"email" bson:"email"`
	RoleName  string            `json:"role" bson:"rolename"`
	Amount    float64           `json:"amount" bson:"amount"`
	Answers   map[string]string `json:"answers" bson:"answers"`
	State     string            `json:"state" bson:"state"` // initiated, completed, failed
	CreatedAt time.Time         `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time         `json:"updatedAt,omitempty" bson:"updated_at,omitempty"`
}

// ClaimEvent is broadcast over the live check-in feed whenever a
// privilege flag flips.
type ClaimEvent struct {
	EventID    string    `json:"eventid"`
	AttendeeID string    `json:"attendeeid"`
	RoleName   string    `json:"role"`
	Privilege  string    `json:"privilege"`
	At         time.Time `json:"at"`
}
