package leads

import "time"

// Lead statuses form a closed set; transitions are not enforced beyond
// membership.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusConverted = "converted"
	StatusLost      = "lost"
)

// Statuses lists all valid lead statuses.
func Statuses() []string {
	return []string{StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost}
}

type Lead struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Company   *string   `json:"company,omitempty" db:"company"`
	Source    string    `json:"source" db:"source"`
	Status    string    `json:"status" db:"status"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	OwnerID   *int64    `json:"owner_id,omitempty" db:"owner_id"`
	CreatedBy int64     `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
