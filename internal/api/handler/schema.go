package handler

import "time"

// errorResponse documents the error envelope rendered by the central error
// handler.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// --- Auth ---

type signupRequest struct {
	Username    string `json:"username"     form:"username"     validate:"required,max=64"`
	Email       string `json:"email"        form:"email"        validate:"required,email"`
	Password    string `json:"password"     form:"password"     validate:"required,min=8"`
	State       string `json:"state"        form:"state"        validate:"required"`
	District    string `json:"district"     form:"district"     validate:"required"`
	City        string `json:"city"         form:"city"         validate:"required"`
	PhoneNumber string `json:"phone_number" form:"phone_number" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    form:"email"    validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type userResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	State        string    `json:"state"`
	District     string    `json:"district"`
	City         string    `json:"city"`
	PhoneNumber  string    `json:"phone_number"`
	RewardPoints int       `json:"reward_points"`
	Role         string    `json:"role"`
	AdminID      string    `json:"admin_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type authResponse struct {
	Token     string       `json:"token,omitempty"`
	ExpiresIn int64        `json:"expires_in,omitempty"`
	User      userResponse `json:"user"`
}

// --- Self-service ---

type updateProfileRequest struct {
	Username    *string `json:"username"     form:"username"     validate:"omitempty,max=64"`
	State       *string `json:"state"        form:"state"`
	District    *string `json:"district"     form:"district"`
	City        *string `json:"city"         form:"city"`
	PhoneNumber *string `json:"phone_number" form:"phone_number"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8"`
}

// --- Cases ---

type createCaseRequest struct {
	Title       string `json:"title"       form:"title"       validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"required"`
	Category    string `json:"category"    form:"category"    validate:"required"`
	Priority    string `json:"priority"    form:"priority"    validate:"omitempty,oneof=low medium high urgent"`
	Location    string `json:"location"    form:"location"`
	Latitude    string `json:"latitude"    form:"latitude"    validate:"required,latitude"`
	Longitude   string `json:"longitude"   form:"longitude"   validate:"required,longitude"`
	ImageURL    string `json:"image_url"   form:"image_url"   validate:"omitempty,url"`
}

type listCasesRequest struct {
	Status   string `query:"status"   validate:"omitempty,oneof=pending in-progress resolved"`
	Category string `query:"category"`
	Priority string `query:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Search   string `query:"search"`
	Page     int    `query:"page"     validate:"gte=0"`
	Limit    int    `query:"limit"    validate:"gte=0"`
}

type updateStatusRequest struct {
	ID      string `param:"id" json:"-"`
	Status  string `json:"status"  validate:"required,oneof=pending in-progress resolved"`
	Version int64  `json:"version" validate:"gte=0"`
}

type assignCaseRequest struct {
	ID         string `param:"id" json:"-"`
	EmployeeID string `json:"employee_id" validate:"required"`
	Version    int64  `json:"version"     validate:"gte=0"`
}

type caseLinks struct {
	Self    string `json:"self"`
	History string `json:"history"`
}

type caseResponse struct {
	ID          string     `json:"id"`
	Reference   string     `json:"reference"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Location    string     `json:"location"`
	Latitude    string     `json:"latitude"`
	Longitude   string     `json:"longitude"`
	ImageURL    string     `json:"image_url,omitempty"`
	UserID      string     `json:"user_id"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	AssignedBy  string     `json:"assigned_by,omitempty"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Links       caseLinks  `json:"_links"`
}

type listCasesResponse struct {
	Items      []caseResponse `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

type caseEventResponse struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	ActorID    string    `json:"actor_id"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	AssignedTo string    `json:"assigned_to,omitempty"`
	Version    int64     `json:"version"`
	OccurredAt time.Time `json:"occurred_at"`
}

// --- Admin ---

type createEmployeeRequest struct {
	Username    string `json:"username"     validate:"required,max=64"`
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required,min=8"`
	State       string `json:"state"`
	District    string `json:"district"`
	City        string `json:"city"`
	PhoneNumber string `json:"phone_number" validate:"required"`
}

type userListResponse struct {
	Items []userResponse `json:"items"`
}
