package data_model

import "time"

type Post struct {
	ID           int64     `gorm:"primaryKey;autoIncrement:false"`
	Title        *string   `gorm:"size:250"`
	Text         string    `gorm:"type:text;not null"`
	PostTypeID   PostType  `gorm:"not null;index"`
	CreationDate time.Time `gorm:"not null"`
	Tags         *string   `gorm:"size:250"`
	ParentID     *int64    `gorm:"index"`

	Answers  []Post    `gorm:"foreignKey:ParentID"`
	Comments []Comment `gorm:"foreignKey:PostID"`
}

func (Post) TableName() string {
	return "post"
}

func (p *Post) GetID() int64 {
	return p.ID
}

func (p *Post) GetText() string {
	return p.Text
}
