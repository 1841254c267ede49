package types

// CreateMediaRequest ingests a media record from a remote URL. Uploads use
// multipart form fields of the same names instead.
type CreateMediaRequest struct {
	SourceURL   string `json:"sourceUrl" binding:"required" example:"https://cdn.example.com/talks/keynote.mp4"`
	Title       string `json:"title,omitempty" example:"Keynote 2026"`
	Description string `json:"description,omitempty" example:"Opening keynote recording"`
	OwnerID     string `json:"ownerId,omitempty" example:"user-42"`
}

// ListMediaRequest carries the query parameters of the list endpoint
type ListMediaRequest struct {
	OwnerID string `form:"owner_id"`
	Limit   int    `form:"limit,default=20"`
	Offset  int    `form:"offset"`
}
