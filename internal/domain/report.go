package domain

import "time"

// Report targets.
const (
	ReportTargetPost    = "POST"
	ReportTargetMember  = "MEMBER"
	ReportTargetMessage = "CHAT_MESSAGE"
)

// Report reasons.
const (
	ReportReasonScam      = "SCAM"
	ReportReasonAbuse     = "ABUSE"
	ReportReasonSpam      = "SPAM"
	ReportReasonNoShow    = "NO_SHOW"
	ReportReasonProfanity = "PROFANITY"
	ReportReasonOther     = "OTHER"
)

// Report review states.
const (
	ReportStatusPending  = "PENDING"
	ReportStatusResolved = "RESOLVED"
	ReportStatusRejected = "REJECTED"
)

// Report flags a post, member or chat message for moderation.
type Report struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	ReporterID int64  `gorm:"index;not null" json:"-"`
	TargetType string `gorm:"type:varchar(20);not null;uniqueIndex:idx_reports_reporter_target" json:"targetType"`
	TargetID   int64  `gorm:"not null;uniqueIndex:idx_reports_reporter_target" json:"targetId"`
	Reason     string `gorm:"type:varchar(20);not null" json:"reason"`
	Detail     string `gorm:"type:text" json:"detail"`
	Status     string `gorm:"type:varchar(20);not null;default:PENDING" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
}

func (Report) TableName() string { return "reports" }

// ReportRequest files a report.
type ReportRequest struct {
	TargetType string `json:"targetType" binding:"required,oneof=POST MEMBER CHAT_MESSAGE"`
	TargetID   int64  `json:"targetId" binding:"required"`
	Reason     string `json:"reason" binding:"required,oneof=SCAM ABUSE SPAM NO_SHOW PROFANITY OTHER"`
	Detail     string `json:"detail" binding:"omitempty,max=1000"`
}
