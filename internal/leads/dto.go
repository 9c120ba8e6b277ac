package leads

type CreateLeadRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Source  string  `json:"source" validate:"omitempty,max=100"`
	Status  string  `json:"status" validate:"omitempty,oneof=new contacted qualified converted lost"`
	Notes   *string `json:"notes,omitempty"`
	OwnerID *int64  `json:"owner_id,omitempty" validate:"omitempty,gt=0"`
}

type UpdateLeadRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Source  *string `json:"source,omitempty" validate:"omitempty,max=100"`
	Status  *string `json:"status,omitempty" validate:"omitempty,oneof=new contacted qualified converted lost"`
	Notes   *string `json:"notes,omitempty"`
	OwnerID *int64  `json:"owner_id,omitempty" validate:"omitempty,gt=0"`
}

type ListLeadsRequest struct {
	Status  *string `json:"status,omitempty" validate:"omitempty,oneof=new contacted qualified converted lost"`
	OwnerID *int64  `json:"owner_id,omitempty"`
	Search  *string `json:"search,omitempty"`
	Limit   int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset  int     `json:"offset" validate:"gte=0"`
}

// LeadRow is one raw row in a bulk import payload.
type LeadRow struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Source  string  `json:"source" validate:"omitempty,max=100"`
	Status  string  `json:"status" validate:"omitempty,oneof=new contacted qualified converted lost"`
	Notes   *string `json:"notes,omitempty"`
}
