package models

// CategoryTotal is an aggregate row grouped by category.
type CategoryTotal struct {
	Category string
	Type     string
	Total    int64
	Count    int64
}

// DailyTotal is an aggregate row grouped by date.
type DailyTotal struct {
	Date    string
	Income  int64
	Expense int64
}

// RoleStat counts active assignments per role.
type RoleStat struct {
	Name        string
	DisplayName string
	Emoji       string
	Users       int64
}
