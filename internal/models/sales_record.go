package models

import "time"

// Platform 销售记录归属的营销渠道
type Platform string

const (
	PlatformFacebook  Platform = "Facebook"
	PlatformInstagram Platform = "Instagram"
	PlatformLinkedIn  Platform = "LinkedIn"
	PlatformTwitter   Platform = "Twitter"
)

// Platforms 固定的渠道列表，顺序即表单中的显示顺序
var Platforms = []Platform{PlatformFacebook, PlatformInstagram, PlatformLinkedIn, PlatformTwitter}

// Valid 判断是否为受支持的渠道
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// SalesRecord 对应 sales_data 表，每条记录只属于一个用户
type SalesRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Date      time.Time `gorm:"not null;index" json:"date"`
	Revenue   float64   `gorm:"not null" json:"revenue"`
	Platform  Platform  `gorm:"size:32;not null" json:"platform"`
	Campaign  string    `gorm:"size:200" json:"campaign"`
	CreatedAt time.Time `json:"created_at"`
}

func (SalesRecord) TableName() string {
	return "sales_data"
}

// DateOnly 把时间截断到 UTC 当天零点，记录只关心日期
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
