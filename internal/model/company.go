package model

import "time"

// CompanyStatus 表示企业账号的审核状态。
type CompanyStatus string

const (
	CompanyPending  CompanyStatus = "Pending"
	CompanyApproved CompanyStatus = "Approved"
	CompanyRejected CompanyStatus = "Rejected"
)

// Admin 平台管理员，只能通过引导命令创建。
type Admin struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Company 已通过审核的企业。
// - 仅由管理员审批写入，Status 恒为 Approved，IsVerified 为 true
// - Email、CIN 唯一；Domain 建索引，唯一性在注册时检查
type Company struct {
	ID           string        `gorm:"primaryKey;size:36" json:"id"`
	Name         string        `gorm:"not null" json:"name"`
	Email        string        `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string        `gorm:"not null" json:"-"`
	Image        string        `json:"image"`
	Website      string        `json:"website"`
	Domain       string        `gorm:"index;size:255" json:"domain"`
	CIN          string        `gorm:"column:cin;uniqueIndex;size:64;not null" json:"cin"`
	IsVerified   bool          `json:"isVerified"`
	Status       CompanyStatus `gorm:"size:16;default:Pending" json:"status"`
	Description  string        `json:"description"`
	Industry     string        `json:"industry"`
	Location     string        `json:"location"`
	CompanySize  string        `json:"companySize"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// Approved 报告企业是否可以执行写操作。
func (c Company) Approved() bool {
	return c.Status == CompanyApproved
}

// PendingCompany 待审核的注册申请，审批后迁移到 Company。
type PendingCompany struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Image        string    `json:"image"`
	Website      string    `json:"website"`
	Domain       string    `gorm:"index;size:255" json:"domain"`
	CIN          string    `gorm:"column:cin;uniqueIndex;size:64;not null" json:"cin"`
	SubmittedAt  time.Time `gorm:"index" json:"submittedAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CompanyProfilePatch 企业资料的局部更新，nil 字段保持原值。
type CompanyProfilePatch struct {
	Description *string `json:"description"`
	Industry    *string `json:"industry"`
	Location    *string `json:"location"`
	CompanySize *string `json:"companySize"`
}

// CompanyCard 企业的公开字段，随职位一起返回或推送。
type CompanyCard struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	IsVerified bool   `json:"isVerified"`
}

// Card 返回企业的公开字段。
func (c Company) Card() CompanyCard {
	return CompanyCard{ID: c.ID, Name: c.Name, Image: c.Image, IsVerified: c.IsVerified}
}
