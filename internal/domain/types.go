package domain

import "time"

// Entity names used in error values and log fields.
const (
	EntityAreaType      = "area type"
	EntityArea          = "area"
	EntityAreaGroup     = "area group"
	EntityAreaGroupArea = "area group membership"
	EntityItem          = "item"
	EntityItemPart      = "item part"
)

type AreaType struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name" validate:"notblank,max=200"`
}

type Area struct {
	ID         int64  `json:"id,omitempty"`
	Name       string `json:"name" validate:"notblank,max=200"`
	AreaTypeID int64  `json:"areaTypeId" validate:"gt=0"`
}

type AreaGroup struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name" validate:"notblank,max=200"`
}

// AreaGroupArea is a membership row joining an AreaGroup to an Area. The pair
// is its primary key.
type AreaGroupArea struct {
	GroupID int64 `json:"groupId" validate:"gt=0"`
	AreaID  int64 `json:"areaId" validate:"gt=0"`
}

type Item struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name" validate:"notblank,max=200"`
	AreaID int64  `json:"areaId" validate:"gt=0"`
}

// ItemPart is a recurring maintenance task on an Item. A nil LastDoneAt means
// the task has never been done.
type ItemPart struct {
	ID         int64      `json:"id,omitempty"`
	Name       string     `json:"name" validate:"notblank,max=200"`
	ItemID     int64      `json:"itemId" validate:"gt=0"`
	FreqDays   int        `json:"freqDays" validate:"gt=0,lte=36500"`
	LastDoneAt *time.Time `json:"lastDoneAt"`
}
