package domain

import "time"

type Category struct {
	ID          int64     `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	Name        string    `json:"name" gorm:"size:128;not null;uniqueIndex"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}
