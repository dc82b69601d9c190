package model

import "time"

// ApplicationStatus 申请的处理状态。
type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "Pending"
	ApplicationViewed      ApplicationStatus = "Viewed"
	ApplicationUnderReview ApplicationStatus = "Under Review"
	ApplicationShortlisted ApplicationStatus = "Shortlisted"
	ApplicationAccepted    ApplicationStatus = "Accepted"
	ApplicationRejected    ApplicationStatus = "Rejected"
)

var applicationStatuses = []ApplicationStatus{
	ApplicationPending,
	ApplicationViewed,
	ApplicationUnderReview,
	ApplicationShortlisted,
	ApplicationAccepted,
	ApplicationRejected,
}

// ApplicationStatuses 返回全部合法状态。
func ApplicationStatuses() []ApplicationStatus {
	out := make([]ApplicationStatus, len(applicationStatuses))
	copy(out, applicationStatuses)
	return out
}

// Valid 报告状态是否属于固定枚举。
func (s ApplicationStatus) Valid() bool {
	for _, v := range applicationStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// JobApplication 求职者对职位的申请，(JobID, UserID) 唯一。
type JobApplication struct {
	ID        string            `gorm:"primaryKey;size:36" json:"id"`
	CompanyID string            `gorm:"index;size:36;not null" json:"companyId"`
	UserID    string            `gorm:"uniqueIndex:idx_application_job_user,priority:2;size:128;not null" json:"userId"`
	JobID     string            `gorm:"uniqueIndex:idx_application_job_user,priority:1;size:36;not null" json:"jobId"`
	Date      time.Time         `gorm:"index" json:"date"`
	Status    ApplicationStatus `gorm:"size:16;default:Pending;not null" json:"status"`
	Job       *Job              `gorm:"foreignKey:JobID" json:"-"`
	User      *User             `gorm:"foreignKey:UserID" json:"-"`
	Company   *Company          `gorm:"foreignKey:CompanyID" json:"-"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// CompanyStats 企业主页展示的统计数据。
type CompanyStats struct {
	TotalJobs    int64 `json:"totalJobs"`
	TotalHires   int64 `json:"totalHires"`
	ResponseRate int64 `json:"responseRate"`
}
