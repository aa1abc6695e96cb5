package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_MEMBER    = "member"
	ROLE_TREASURER = "treasurer"
	ROLE_ADMIN     = "admin"
	ROLE_PRESIDENT = "president"
	ROLE_VICE_1    = "vice_1"
	ROLE_VICE_2    = "vice_2"
	ROLE_SECRETARY = "secretary"
)

const (
	FINANCIAL_STATUS_FINANCIAL     = "financial"
	FINANCIAL_STATUS_NOT_FINANCIAL = "not financial"
	FINANCIAL_STATUS_NEOPHYTE      = "neophyte"
)

// NeophyteExemptionDays is how long after initiation a member is exempt
// from the dues requirement.
const NeophyteExemptionDays = 365

// Member is an organization member with a derived financial standing.
// FinancialStatus is only ever written by the status recomputation in
// internal/pkg/dues; everything else treats it as read-only.
type Member struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Email           string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Password        string         `gorm:"type:text" json:"-"`
	Role            string         `gorm:"type:varchar(20);default:'member'" json:"role" validate:"oneof=member treasurer admin president vice_1 vice_2 secretary"`
	FinancialStatus string         `gorm:"type:varchar(20);default:'not financial'" json:"financial_status"`
	InitiationDate  *time.Time     `gorm:"type:date;default:null" json:"initiation_date,omitempty"`
	Active          bool           `gorm:"default:true" json:"active"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Payments     []Payment     `gorm:"foreignKey:MemberID" json:"-"`
	PaymentPlans []PaymentPlan `gorm:"foreignKey:MemberID" json:"-"`
}

func (m *Member) Validate() error {
	v := validator.New()

	return v.Struct(m)
}

// CreateMember builds a new member with a hashed password. The caller is
// responsible for persisting it.
func CreateMember(name, email, password, role string) (*Member, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	if role == "" {
		role = ROLE_MEMBER
	}

	m := &Member{
		Name:            name,
		Email:           email,
		Password:        pw,
		Role:            role,
		FinancialStatus: FINANCIAL_STATUS_NOT_FINANCIAL,
		Active:          true,
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPassword verifies the given password against the stored hash.
func (m *Member) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(m.Password), []byte(password)) == nil
}

// SetPassword hashes and sets a new password.
func (m *Member) SetPassword(password string) error {
	pw, err := HashPassword(password)
	if err != nil {
		return err
	}
	m.Password = pw
	return nil
}

// IsNeophyte reports whether the member is inside the 365-day exemption
// window from their initiation date, or has been flagged neophyte
// explicitly.
func (m *Member) IsNeophyte(now time.Time) bool {
	if m.FinancialStatus == FINANCIAL_STATUS_NEOPHYTE {
		return true
	}
	if m.InitiationDate == nil {
		return false
	}
	return now.Sub(*m.InitiationDate) < NeophyteExemptionDays*24*time.Hour
}

// HasFullAccess reports whether the member may record payments and manage
// other members' finances.
func (m *Member) HasFullAccess() bool {
	switch m.Role {
	case ROLE_ADMIN, ROLE_TREASURER, ROLE_PRESIDENT, ROLE_VICE_1:
		return true
	}
	return false
}

// HasReportAccess reports whether the member may view reports and create
// invites.
func (m *Member) HasReportAccess() bool {
	if m.HasFullAccess() {
		return true
	}
	switch m.Role {
	case ROLE_VICE_2, ROLE_SECRETARY:
		return true
	}
	return false
}
