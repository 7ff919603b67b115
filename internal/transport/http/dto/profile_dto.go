package dto

type ProfileRequest struct {
	Name        string   `json:"name"`
	Username    string   `json:"username"`
	Surname     string   `json:"surname"`
	Location    *string  `json:"location,omitempty"`
	Description *string  `json:"description,omitempty"`
	DateOfBirth *string  `json:"date_of_birth,omitempty"`
	Interests   []string `json:"interests,omitempty"`
}

type ProfileResponse struct {
	Email       string   `json:"email"`
	Username    string   `json:"username"`
	Name        string   `json:"name"`
	Surname     string   `json:"surname"`
	Location    *string  `json:"location,omitempty"`
	Description *string  `json:"description,omitempty"`
	DateOfBirth *string  `json:"date_of_birth,omitempty"`
	Interests   []string `json:"interests"`
	IsVerified  bool     `json:"is_verified"`
}

type ProfilesResponse struct {
	Profiles []ProfileResponse `json:"profiles"`
}

type UsernamesResponse struct {
	Usernames []string `json:"usernames"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
