package transport

type LoginRequest struct {
	Username string
	Password string
}

// CreateProductRequest leaves Description nil with DescriptionSet true for
// an explicit "description": null.
type CreateProductRequest struct {
	Name           string
	Price          float64
	Description    *string
	DescriptionSet bool
}

// PatchProductRequest holds the fields present in an update body.
// DescriptionSet tells "description": null apart from an absent key.
type PatchProductRequest struct {
	Name           *string
	Price          *float64
	Description    *string
	DescriptionSet bool
}

// LookupRequest is either an id or a name lookup; HasID wins when both
// were sent.
type LookupRequest struct {
	HasID   bool
	ID      int64
	HasName bool
	Name    string
}
