package models

// Subject is the authenticated end user, as supplied by the identity
// registry. This subsystem only reads subjects; registration and lifecycle
// live elsewhere.
type Subject struct {
	ID         string `json:"id" db:"id"`
	NID        string `json:"nid" db:"nid"`
	FirstName  string `json:"first_name" db:"first_name"`
	MiddleName string `json:"middle_name,omitempty" db:"middle_name"`
	LastName   string `json:"last_name" db:"last_name"`
	Email      string `json:"email,omitempty" db:"email"`
	Phone      string `json:"phone,omitempty" db:"phone"`
	Birthdate  string `json:"birthdate,omitempty" db:"birthdate"`
	Gender     string `json:"gender,omitempty" db:"gender"`
}

// FullName assembles the display name claim.
func (s *Subject) FullName() string {
	name := s.FirstName
	if s.MiddleName != "" {
		name += " " + s.MiddleName
	}
	if s.LastName != "" {
		name += " " + s.LastName
	}
	return name
}

// UserInfoClaims is the OIDC standard claims response for /userinfo.
type UserInfoClaims struct {
	Sub        string `json:"sub"`
	Name       string `json:"name,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Birthdate  string `json:"birthdate,omitempty"`
	Gender     string `json:"gender,omitempty"`
}

// ToUserInfo maps a subject to its OIDC claims representation.
func (s *Subject) ToUserInfo() *UserInfoClaims {
	return &UserInfoClaims{
		Sub:        s.ID,
		Name:       s.FullName(),
		GivenName:  s.FirstName,
		FamilyName: s.LastName,
		Email:      s.Email,
		Birthdate:  s.Birthdate,
		Gender:     s.Gender,
	}
}
