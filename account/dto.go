package account

// Profile is the account detail the backend returns.
type Profile struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Role      string `json:"role"`
	Telephone string `json:"telephone"`
	Email     string `json:"email"`
	Location  string `json:"location"`
}

// RegisterInfo is the account-creation request body.
type RegisterInfo struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Avatar    string `json:"avatar,omitempty"`
	Telephone string `json:"telephone,omitempty"`
	Email     string `json:"email,omitempty"`
	Location  string `json:"location,omitempty"`
	Role      string `json:"role,omitempty"`
}

// UpdateInfo is the profile-update request body. Username selects the
// account; empty optional fields are left unchanged.
type UpdateInfo struct {
	Username  string `json:"username" validate:"required"`
	Name      string `json:"name,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Telephone string `json:"telephone,omitempty"`
	Email     string `json:"email,omitempty"`
	Location  string `json:"location,omitempty"`
}
