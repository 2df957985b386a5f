package models

const DefaultTaskColor = "blue"

// Task is a single to-do item. A nil ListID places it in the inbox.
type Task struct {
	ID        string  `json:"id" gorm:"primaryKey"`
	Title     string  `json:"title" gorm:"not null"`
	Completed bool    `json:"completed" gorm:"not null"`
	Date      string  `json:"date" gorm:"not null"`
	Time      *string `json:"time"`
	Color     string  `json:"color" gorm:"not null"`
	Recurring *string `json:"recurring"`
	ListID    *string `json:"listId" gorm:"column:list_id;index"`
	Reminder  *string `json:"reminder"`
	Priority  *string `json:"priority"`
}

func (Task) TableName() string {
	return "tasks"
}

// InInbox reports whether the task has no list association.
func (t Task) InInbox() bool {
	return t.ListID == nil
}
