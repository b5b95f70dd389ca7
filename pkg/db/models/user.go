package models

// User owns queue entries and shoes.
type User struct {
	Base
	Email string `gorm:"column:email;type:varchar(255);not null;uniqueIndex:idx_users_email"`
}

func (User) TableName() string { return "users" }
