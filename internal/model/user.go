package model

import (
	"time"

	"gorm.io/datatypes"
)

// Experience 工作经历。
type Experience struct {
	Company string `json:"company"`
	Title   string `json:"title"`
	Years   string `json:"years"`
}

// Education 教育经历。
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Year        string `json:"year"`
}

// User 求职者，ID 为外部身份服务签发的 subject。
// 列表字段以 JSON 列存储，兼容 sqlite/postgres/mysql。
type User struct {
	ID            string                          `gorm:"primaryKey;size:128" json:"id"`
	Name          string                          `json:"name"`
	Email         string                          `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Resume        string                          `json:"resume"`
	Image         string                          `json:"image"`
	Headline      string                          `json:"headline"`
	Location      string                          `json:"location"`
	Skills        datatypes.JSONSlice[string]     `json:"skills"`
	Experience    datatypes.JSONSlice[Experience] `json:"experience"`
	Education     datatypes.JSONSlice[Education]  `json:"education"`
	PortfolioLink string                          `json:"portfolioLink"`
	LinkedinLink  string                          `json:"linkedinLink"`
	CreatedAt     time.Time                       `json:"createdAt"`
	UpdatedAt     time.Time                       `json:"updatedAt"`
}

// UserProfilePatch 求职者资料的局部更新，nil 字段保持原值。
type UserProfilePatch struct {
	Headline      *string       `json:"headline"`
	Location      *string       `json:"location"`
	Skills        *[]string     `json:"skills"`
	Experience    *[]Experience `json:"experience"`
	Education     *[]Education  `json:"education"`
	PortfolioLink *string       `json:"portfolioLink"`
	LinkedinLink  *string       `json:"linkedinLink"`
}

// Empty 报告补丁是否不含任何字段。
func (p UserProfilePatch) Empty() bool {
	return p.Headline == nil && p.Location == nil && p.Skills == nil && p.Experience == nil &&
		p.Education == nil && p.PortfolioLink == nil && p.LinkedinLink == nil
}

// SavedJob 求职者收藏的职位，复合主键保证同一职位只收藏一次。
type SavedJob struct {
	UserID  string    `gorm:"primaryKey;size:128" json:"userId"`
	JobID   string    `gorm:"primaryKey;size:36" json:"jobId"`
	SavedAt time.Time `gorm:"index" json:"savedAt"`
	Job     *Job      `gorm:"foreignKey:JobID" json:"-"`
}

// Identity 外部身份服务校验通过后的用户信息。
type Identity struct {
	Subject string
	Name    string
	Email   string
	Picture string
}
