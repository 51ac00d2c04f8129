package mediator

import "strconv"

// Kind identifies one request type.
type Kind int

const (
	ListActivities Kind = iota + 1
	GetActivity
	CreateActivity
	EditActivity
	DeleteActivity
)

var kindNames = map[Kind]string{
	ListActivities: "list_activities",
	GetActivity:    "get_activity",
	CreateActivity: "create_activity",
	EditActivity:   "edit_activity",
	DeleteActivity: "delete_activity",
}

// Kinds lists every kind a Mediator must handle.
func Kinds() []Kind {
	return []Kind{ListActivities, GetActivity, CreateActivity, EditActivity, DeleteActivity}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}
