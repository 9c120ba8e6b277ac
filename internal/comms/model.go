package comms

import "time"

// Channels and statuses are closed sets.
const (
	ChannelEmail = "email"
	ChannelCall  = "call"
	ChannelNote  = "note"

	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"

	StatusSent    = "sent"
	StatusReplied = "replied"
	StatusClosed  = "closed"
)

// Communication is one logged touchpoint with a lead or customer.
// Outbound emails carry a reply-tracking status; RepliedAt is set when
// the reply is recorded.
type Communication struct {
	ID         int64      `json:"id" db:"id"`
	LeadID     *int64     `json:"lead_id,omitempty" db:"lead_id"`
	CustomerID *int64     `json:"customer_id,omitempty" db:"customer_id"`
	Channel    string     `json:"channel" db:"channel"`
	Direction  string     `json:"direction" db:"direction"`
	Subject    string     `json:"subject" db:"subject"`
	Body       *string    `json:"body,omitempty" db:"body"`
	Status     string     `json:"status" db:"status"`
	SentAt     time.Time  `json:"sent_at" db:"sent_at"`
	RepliedAt  *time.Time `json:"replied_at,omitempty" db:"replied_at"`
	CreatedBy  int64      `json:"created_by" db:"created_by"`
}

type LogCommunicationRequest struct {
	LeadID     *int64  `json:"lead_id,omitempty" validate:"omitempty,gt=0"`
	CustomerID *int64  `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	Channel    string  `json:"channel" validate:"required,oneof=email call note"`
	Direction  string  `json:"direction" validate:"omitempty,oneof=outbound inbound"`
	Subject    string  `json:"subject" validate:"required,max=300"`
	Body       *string `json:"body,omitempty"`
}

type ListCommunicationsRequest struct {
	LeadID     *int64
	CustomerID *int64
	Status     *string
	Limit      int
	Offset     int
}
