package entity

// Role represents a membership role in the federation system
type Role struct {
	ID          int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Code        string `gorm:"type:char(2);uniqueIndex;not null" json:"code"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Selectable  bool   `gorm:"not null;default:false" json:"selectable"`

	// Relationships
	Users []User `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Role ID constants
const (
	RoleIDSuperAdmin = 1
	RoleIDPerpani    = 2
	RoleIDAthlete    = 3
	RoleIDClub       = 4
	RoleIDSchool     = 5
	RoleIDParent     = 6
	RoleIDCoach      = 7
	RoleIDJudge      = 8
	RoleIDEO         = 9
	RoleIDSupplier   = 10
	RoleIDManpower   = 11
)

// RoleNames constants
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RolePerpani    = "PERPANI"
	RoleAthlete    = "ATHLETE"
	RoleClub       = "CLUB"
	RoleSchool     = "SCHOOL"
	RoleParent     = "PARENT"
	RoleCoach      = "COACH"
	RoleJudge      = "JUDGE"
	RoleEO         = "EO"
	RoleSupplier   = "SUPPLIER"
	RoleManpower   = "MANPOWER"
)

// RoleCard is the onboarding-facing description of a role.
type RoleCard struct {
	ID         int
	Code       string
	Name       string
	Label      string
	Selectable bool
}

// RoleCatalog lists every role. Codes 01-09 are the signup cards; 00 and 10 are
// assigned by administrators only.
var RoleCatalog = []RoleCard{
	{ID: RoleIDSuperAdmin, Code: "00", Name: RoleSuperAdmin, Label: "Super Admin"},
	{ID: RoleIDAthlete, Code: "01", Name: RoleAthlete, Label: "Atlet", Selectable: true},
	{ID: RoleIDClub, Code: "02", Name: RoleClub, Label: "Klub", Selectable: true},
	{ID: RoleIDSchool, Code: "03", Name: RoleSchool, Label: "Sekolah", Selectable: true},
	{ID: RoleIDParent, Code: "04", Name: RoleParent, Label: "Orang Tua / Wali", Selectable: true},
	{ID: RoleIDCoach, Code: "05", Name: RoleCoach, Label: "Pelatih", Selectable: true},
	{ID: RoleIDJudge, Code: "06", Name: RoleJudge, Label: "Juri", Selectable: true},
	{ID: RoleIDEO, Code: "07", Name: RoleEO, Label: "Event Organizer", Selectable: true},
	{ID: RoleIDSupplier, Code: "08", Name: RoleSupplier, Label: "Supplier", Selectable: true},
	{ID: RoleIDManpower, Code: "09", Name: RoleManpower, Label: "Manpower", Selectable: true},
	{ID: RoleIDPerpani, Code: "10", Name: RolePerpani, Label: "Perpani"},
}

// RoleByCode looks up a role card by its two-digit code.
func RoleByCode(code string) (RoleCard, bool) {
	for _, r := range RoleCatalog {
		if r.Code == code {
			return r, true
		}
	}
	return RoleCard{}, false
}

// RoleByID looks up a role card by its numeric id.
func RoleByID(id int) (RoleCard, bool) {
	for _, r := range RoleCatalog {
		if r.ID == id {
			return r, true
		}
	}
	return RoleCard{}, false
}

// RoleByName looks up a role card by its enum name.
func RoleByName(name string) (RoleCard, bool) {
	for _, r := range RoleCatalog {
		if r.Name == name {
			return r, true
		}
	}
	return RoleCard{}, false
}

// SelectableRoles returns the cards offered during signup, in code order.
func SelectableRoles() []RoleCard {
	cards := make([]RoleCard, 0, len(RoleCatalog))
	for _, r := range RoleCatalog {
		if r.Selectable {
			cards = append(cards, r)
		}
	}
	return cards
}

// IsAdminRole reports whether the role may act on any person record.
func IsAdminRole(roleID int) bool {
	return roleID == RoleIDSuperAdmin || roleID == RoleIDPerpani
}
