package models

// Credentials is the login form payload.
type Credentials struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Registration is the signup payload accepted by the backend's POST /api/users.
type Registration struct {
	Username    string `json:"username" form:"username" binding:"required"`
	Email       string `json:"email" form:"email" binding:"required,email"`
	Password    string `json:"password" form:"password" binding:"required"`
	DisplayName string `json:"displayName" form:"displayName"`
}

// UserProfile is the subset of the backend user representation the pages render.
type UserProfile struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email,omitempty"`
	DisplayName    string `json:"displayName"`
	Bio            string `json:"bio,omitempty"`
	FollowersCount int    `json:"followersCount"`
	FollowingCount int    `json:"followingCount"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	DisplayName string `json:"displayName,omitempty" form:"displayName"`
	Bio         string `json:"bio,omitempty" form:"bio"`
}
