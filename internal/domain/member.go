package domain

import (
	"time"

	"gorm.io/gorm"
)

// Social login providers.
const (
	ProviderGoogle = "GOOGLE"
	ProviderKakao  = "KAKAO"
)

// Hemisphere values. Seasonal content in the game differs per hemisphere,
// so trades are often filtered by it.
const (
	HemisphereNorth = "NORTH"
	HemisphereSouth = "SOUTH"
)

const (
	defaultMannerScore  = 100
	profileEditCooldown = 24 * time.Hour
)

// Member is a registered trader. UUID is the public identity carried in
// tokens; the numeric ID is used in chat and relational references.
type Member struct {
	ID               int64      `gorm:"primaryKey" json:"id"`
	UUID             string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	Provider         string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_members_provider_subject" json:"provider"`
	ProviderSubject  string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_members_provider_subject" json:"-"`
	Email            string     `gorm:"type:varchar(255);not null" json:"-"`
	Nickname         string     `gorm:"type:varchar(50)" json:"nickname"`
	IslandName       string     `gorm:"type:varchar(50)" json:"islandName"`
	DreamAddress     string     `gorm:"type:varchar(20)" json:"dreamAddress"`
	Hemisphere       string     `gorm:"type:varchar(10);not null;default:NORTH" json:"hemisphere"`
	MannerScore      int        `gorm:"not null;default:100" json:"mannerScore"`
	TotalTradeCount  int        `gorm:"not null;default:0" json:"totalTradeCount"`
	ProfileUpdatedAt *time.Time `json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Member) TableName() string { return "members" }

// NewMember creates a member shell for a first social login. The profile
// is completed by a separate setup call.
func NewMember(uuid, provider, subject, email string) *Member {
	return &Member{
		UUID:            uuid,
		Provider:        provider,
		ProviderSubject: subject,
		Email:           email,
		Hemisphere:      HemisphereNorth,
		MannerScore:     defaultMannerScore,
	}
}

// NeedsSetup reports whether the member has not completed initial
// profile setup yet.
func (m *Member) NeedsSetup() bool {
	return m.Nickname == ""
}

// CanUpdateProfile enforces the 24h profile-edit cooldown. New members
// who never edited may always edit.
func (m *Member) CanUpdateProfile(now time.Time) bool {
	if m.ProfileUpdatedAt == nil {
		return true
	}
	return m.ProfileUpdatedAt.Add(profileEditCooldown).Before(now)
}

// ApplyProfile updates the editable profile fields.
func (m *Member) ApplyProfile(nickname, islandName, dreamAddress, hemisphere string, now time.Time) {
	m.Nickname = nickname
	m.IslandName = islandName
	m.DreamAddress = dreamAddress
	if hemisphere != "" {
		m.Hemisphere = hemisphere
	}
	m.ProfileUpdatedAt = &now
}

// ProfileSetupRequest completes a fresh member's profile.
type ProfileSetupRequest struct {
	Nickname     string `json:"nickname" binding:"required,min=2,max=50"`
	IslandName   string `json:"islandName" binding:"required,min=1,max=50"`
	DreamAddress string `json:"dreamAddress" binding:"omitempty,max=20"`
	Hemisphere   string `json:"hemisphere" binding:"omitempty,oneof=NORTH SOUTH"`
}

// ProfileUpdateRequest edits an existing profile.
type ProfileUpdateRequest struct {
	Nickname     string `json:"nickname" binding:"required,min=2,max=50"`
	IslandName   string `json:"islandName" binding:"required,min=1,max=50"`
	DreamAddress string `json:"dreamAddress" binding:"omitempty,max=20"`
	Hemisphere   string `json:"hemisphere" binding:"omitempty,oneof=NORTH SOUTH"`
}

// MemberResponse is the private view of one's own profile.
type MemberResponse struct {
	ID              int64     `json:"id"`
	UUID            string    `json:"uuid"`
	Email           string    `json:"email"`
	Provider        string    `json:"provider"`
	Nickname        string    `json:"nickname"`
	IslandName      string    `json:"islandName"`
	DreamAddress    string    `json:"dreamAddress"`
	Hemisphere      string    `json:"hemisphere"`
	MannerScore     int       `json:"mannerScore"`
	TotalTradeCount int       `json:"totalTradeCount"`
	NeedsSetup      bool      `json:"needsSetup"`
	CreatedAt       time.Time `json:"createdAt"`
}

// MemberProfileResponse is the public view of another member.
type MemberProfileResponse struct {
	ID              int64     `json:"id"`
	Nickname        string    `json:"nickname"`
	IslandName      string    `json:"islandName"`
	Hemisphere      string    `json:"hemisphere"`
	MannerScore     int       `json:"mannerScore"`
	TotalTradeCount int       `json:"totalTradeCount"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ToResponse converts to the private profile view.
func (m *Member) ToResponse() MemberResponse {
	return MemberResponse{
		ID:              m.ID,
		UUID:            m.UUID,
		Email:           m.Email,
		Provider:        m.Provider,
		Nickname:        m.Nickname,
		IslandName:      m.IslandName,
		DreamAddress:    m.DreamAddress,
		Hemisphere:      m.Hemisphere,
		MannerScore:     m.MannerScore,
		TotalTradeCount: m.TotalTradeCount,
		NeedsSetup:      m.NeedsSetup(),
		CreatedAt:       m.CreatedAt,
	}
}

// ToProfileResponse converts to the public profile view.
func (m *Member) ToProfileResponse() MemberProfileResponse {
	return MemberProfileResponse{
		ID:              m.ID,
		Nickname:        m.Nickname,
		IslandName:      m.IslandName,
		Hemisphere:      m.Hemisphere,
		MannerScore:     m.MannerScore,
		TotalTradeCount: m.TotalTradeCount,
		CreatedAt:       m.CreatedAt,
	}
}
