package models

const DefaultListColor = "bg-gradient-to-r from-blue-500 to-purple-500"

type CustomList struct {
	ID    string `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"not null"`
	Color string `json:"color" gorm:"not null"`

	Tasks []Task `json:"tasks" gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE"`
}

func (CustomList) TableName() string {
	return "custom_lists"
}

// ListInput is the body accepted when creating a list.
type ListInput struct {
	Name  Optional[string] `json:"name"`
	Color Optional[string] `json:"color"`
}

// NewCustomList applies the creation defaults to input.
func NewCustomList(id string, input ListInput) CustomList {
	return CustomList{
		ID:    id,
		Name:  input.Name.Or(""),
		Color: input.Color.Or(DefaultListColor),
		Tasks: []Task{},
	}
}
