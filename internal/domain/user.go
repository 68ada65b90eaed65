package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// User is a persisted identity. All roles share one table; vendors carry an
// extra VendorProfile row joined by user id.
type User struct {
	ID              int64          `json:"id"`
	Role            string         `json:"role"`
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Username        string         `json:"username"`
	PasswordHash    string         `json:"-"`
	IsVerified      bool           `json:"is_verified"`
	OTPHash         string         `json:"-"`
	OTPExpires      *time.Time     `json:"-"`
	PersonalAddress Address        `json:"personaladdress"`
	Vendor          *VendorProfile `json:"vendor,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type VendorProfile struct {
	StoreName    string  `json:"storeName"`
	Phone        string  `json:"phone"`
	StoreAddress Address `json:"storeaddress"`
}

type Address struct {
	HNo     string `json:"hno"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type RegisterRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Username        string   `json:"username"`
	Password        string   `json:"password"`
	Role            string   `json:"role"`
	StoreName       string   `json:"storeName,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	PersonalAddress *Address `json:"personaladdress,omitempty"`
	StoreAddress    *Address `json:"storeaddress,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message      string    `json:"message"`
	User         *UserInfo `json:"user"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
}

type UserInfo struct {
	ID         int64          `json:"id"`
	Role       string         `json:"role"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Username   string         `json:"username"`
	IsVerified bool           `json:"is_verified"`
	Vendor     *VendorProfile `json:"vendor,omitempty"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Valid user roles
const (
	RoleVendor        = "vendor"
	RoleConsumer      = "consumer"
	RoleDeliveryAgent = "deliveryagent"
)

var validRoles = map[string]bool{
	RoleVendor:        true,
	RoleConsumer:      true,
	RoleDeliveryAgent: true,
}

func IsValidRole(role string) bool {
	return validRoles[role]
}

// Validation methods
func (r *RegisterRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !isValidEmail(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if !validRoles[r.Role] {
		return fmt.Errorf("invalid role")
	}
	if r.Role == RoleVendor {
		return r.validateVendorFields()
	}
	return nil
}

func (r *RegisterRequest) validateVendorFields() error {
	if r.StoreName == "" {
		return fmt.Errorf("storeName is required for vendors")
	}
	if r.Phone == "" {
		return fmt.Errorf("phone is required for vendors")
	}
	if !isValidPhone(r.Phone) {
		return fmt.Errorf("invalid phone format")
	}
	if r.PersonalAddress == nil {
		return fmt.Errorf("personaladdress is required for vendors")
	}
	if err := r.PersonalAddress.Validate("personaladdress"); err != nil {
		return err
	}
	if r.StoreAddress == nil {
		return fmt.Errorf("storeaddress is required for vendors")
	}
	return r.StoreAddress.Validate("storeaddress")
}

func (a *Address) Validate(field string) error {
	switch {
	case a.HNo == "":
		return fmt.Errorf("%s.hno is required", field)
	case a.Street == "":
		return fmt.Errorf("%s.street is required", field)
	case a.City == "":
		return fmt.Errorf("%s.city is required", field)
	case a.State == "":
		return fmt.Errorf("%s.state is required", field)
	case a.Zip == "":
		return fmt.Errorf("%s.zip is required", field)
	case a.Country == "":
		return fmt.Errorf("%s.country is required", field)
	}
	return nil
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// Helper functions
func isValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

func isValidPhone(phone string) bool {
	phoneRegex := regexp.MustCompile(`^[\+]?[\d\s\-\(\)]+$`)
	return phoneRegex.MatchString(phone) && len(phone) >= 7
}

// Normalize methods
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.StoreName = strings.TrimSpace(r.StoreName)
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// ToUserInfo converts User to UserInfo (without sensitive data)
func (u *User) ToUserInfo() *UserInfo {
	return &UserInfo{
		ID:         u.ID,
		Role:       u.Role,
		Name:       u.Name,
		Email:      u.Email,
		Username:   u.Username,
		IsVerified: u.IsVerified,
		Vendor:     u.Vendor,
	}
}
