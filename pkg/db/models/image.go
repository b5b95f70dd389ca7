package models

// Image records one stored upload attached to a queue entry.
type Image struct {
	Base
	QueueID  uint   `gorm:"column:queue_id;not null;index"`
	Filename string `gorm:"column:filename;type:varchar(255);not null"`
	Filepath string `gorm:"column:filepath;type:varchar(512);not null"`
	Filetype string `gorm:"column:filetype;type:varchar(100);not null"`
	Filesize int64  `gorm:"column:filesize;not null"`
}

func (Image) TableName() string { return "images" }
