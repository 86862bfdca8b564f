package user

// UpdateProfileRequest edits the authenticated user's profile
type UpdateProfileRequest struct {
	Name     string `json:"name" validate:"omitempty,max=255"`
	Language string `json:"language" validate:"omitempty,max=10"`
}
