package model

import "time"

// Job 表示企业发布的职位
// - CompanyID: 所属企业，创建后不可变
// - Salary: 非负整数
// - Visible: 隐藏代替删除，公开列表只返回可见职位
// - Date: 发布时间，用于排序
// - CreatedAt/UpdatedAt: 由 GORM 自动维护

type Job struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	CompanyID   string    `gorm:"index;size:36;not null" json:"companyId"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Location    string    `json:"location"`
	Salary      int64     `json:"salary"`
	Level       string    `json:"level"`
	Category    string    `json:"category"`
	Date        time.Time `gorm:"index" json:"date"`
	Visible     bool      `gorm:"default:true;not null" json:"visible"`
	Company     *Company  `gorm:"foreignKey:CompanyID" json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// JobListing 职位与所属企业公开字段的组合，用于公开列表和实时推送。
type JobListing struct {
	Job
	Company CompanyCard `json:"company"`
}

// Listing 组装职位与企业公开字段，企业未加载时仅保留 ID。
func (j Job) Listing() JobListing {
	card := CompanyCard{ID: j.CompanyID}
	if j.Company != nil {
		card = j.Company.Card()
	}
	return JobListing{Job: j, Company: card}
}

// OwnJob 企业自己的职位，附带实时统计的申请数。
type OwnJob struct {
	Job
	Applicants int64 `json:"applicants"`
}
