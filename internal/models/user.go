package models

// Account roles. Superadmin passes every role gate.
const (
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// DefaultAvatar is assigned to accounts created without an avatar.
const DefaultAvatar = "https://i.ibb.co/TVstPXp/default-Image.jpg"

// User is an administrator account. The stored password is always a bcrypt
// hash, never the plaintext.
type User struct {
	BaseModel
	Username     string `gorm:"uniqueIndex" json:"username"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	PasswordHash string `json:"-"`
	Role         string `gorm:"default:admin" json:"role"`
	Avatar       string `json:"avatar"`
	SoftDelete
}
