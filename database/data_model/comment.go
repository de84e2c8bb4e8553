package data_model

import "time"

type Comment struct {
	ID           int64     `gorm:"primaryKey;autoIncrement:false"`
	CreationDate time.Time `gorm:"not null"`
	Text         string    `gorm:"type:text;not null"`
	PostID       int64     `gorm:"not null;index"`
}

func (Comment) TableName() string {
	return "comment"
}

func (c *Comment) GetID() int64 {
	return c.ID
}

func (c *Comment) GetText() string {
	return c.Text
}
