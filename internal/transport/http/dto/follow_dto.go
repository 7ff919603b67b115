package dto

type ConnectionsResponse struct {
	Usernames []string `json:"usernames"`
}

type FollowerWithTimeResponse struct {
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

type FollowersWithTimeResponse struct {
	Followers []FollowerWithTimeResponse `json:"followers"`
}
