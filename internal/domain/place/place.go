package place

import (
	"time"
)

type Category string

const (
	CategoryKorean   Category = "korean"
	CategoryJapanese Category = "japanese"
	CategoryChinese  Category = "chinese"
	CategoryWestern  Category = "western"
	CategoryCafe     Category = "cafe"
	CategoryBar      Category = "bar"
	CategoryFastfood Category = "fastfood"
	CategoryDessert  Category = "dessert"
	CategoryOther    Category = "other"
)

var categoryLabels = map[Category]string{
	CategoryKorean:   "한식",
	CategoryJapanese: "일식",
	CategoryChinese:  "중식",
	CategoryWestern:  "양식",
	CategoryCafe:     "카페",
	CategoryBar:      "술집",
	CategoryFastfood: "패스트푸드",
	CategoryDessert:  "디저트",
	CategoryOther:    "기타",
}

// Label is the Korean display name; unknown or empty categories read as 기타.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return categoryLabels[CategoryOther]
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// OrOther maps the zero value to CategoryOther.
func (c Category) OrOther() Category {
	if c == "" {
		return CategoryOther
	}
	return c
}

type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPrivate || v == VisibilityPublic
}

type Place struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`

	Name     string   `gorm:"column:name;size:200;not null;index" json:"name"`
	Category Category `gorm:"column:category;size:32;not null;default:'other'" json:"category"`

	Latitude  float64 `gorm:"column:latitude;not null;index" json:"latitude"`
	Longitude float64 `gorm:"column:longitude;not null;index" json:"longitude"`
	Address   *string `gorm:"column:address;size:500" json:"address"`

	Memo      *string    `gorm:"column:memo;type:text" json:"memo"`
	Tags      *string    `gorm:"column:tags;size:500" json:"tags"`
	VisitedAt *time.Time `gorm:"column:visited_at" json:"visited_at"`

	Visibility Visibility `gorm:"column:visibility;size:16;not null;default:'public';index" json:"visibility"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Place) TableName() string { return "places" }

// VisibleTo reports whether userID may read the place.
func (p *Place) VisibleTo(userID uint) bool {
	if p == nil {
		return false
	}
	return p.UserID == userID || p.Visibility == VisibilityPublic
}
