package dto

type AvatarURLResponse struct {
	URL string `json:"url"`
}
