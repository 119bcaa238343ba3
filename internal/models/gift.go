package models

import (
	"strings"
	"time"
)

// MaxReservationMessageLength bounds the visitor-supplied reservation note.
const MaxReservationMessageLength = 500

// Gift is an item of a wishlist. It can be reserved exactly once, after the
// parent wishlist is published.
type Gift struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	WishlistID         uint       `gorm:"not null;index" json:"wishlist_id"`
	Wishlist           *Wishlist  `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE" json:"-"`
	Name               string     `gorm:"size:255;not null" json:"name"`
	ImageURL           *string    `gorm:"size:2048" json:"image_url"`
	Link               *string    `gorm:"size:2048" json:"link"`
	Price              *float64   `gorm:"type:decimal(10,2)" json:"price"`
	Priority           int        `gorm:"not null;default:0" json:"priority"`
	Notes              *string    `gorm:"type:text" json:"notes"`
	IsReserved         bool       `gorm:"not null;default:false" json:"is_reserved"`
	ReservationMessage *string    `gorm:"type:text" json:"reservation_message"`
	ReservedAt         *time.Time `json:"reserved_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Gift) TableName() string {
	return "gifts"
}

// OwnerGift is the owner projection: reservation state is hidden.
type OwnerGift struct {
	ID         uint      `json:"id"`
	WishlistID uint      `json:"wishlist_id"`
	Name       string    `json:"name"`
	ImageURL   *string   `json:"image_url"`
	Link       *string   `json:"link"`
	Price      *float64  `json:"price"`
	Priority   int       `json:"priority"`
	Notes      *string   `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PublicGift is the visitor projection: no wishlist linkage, no timestamps.
type PublicGift struct {
	ID                 uint     `json:"id"`
	Name               string   `json:"name"`
	ImageURL           *string  `json:"image_url"`
	Link               *string  `json:"link"`
	Price              *float64 `json:"price"`
	Priority           int      `json:"priority"`
	Notes              *string  `json:"notes"`
	IsReserved         bool     `json:"is_reserved"`
	ReservationMessage *string  `json:"reservation_message"`
}

// RandomGift is returned by the random suggestion endpoint.
type RandomGift struct {
	ID       uint     `json:"id"`
	Name     string   `json:"name"`
	ImageURL *string  `json:"image_url"`
	Link     *string  `json:"link"`
	Price    *float64 `json:"price"`
	Priority int      `json:"priority"`
	Notes    *string  `json:"notes"`
}

// ReservedGift is the subset echoed back to the visitor who reserved.
type ReservedGift struct {
	ID                 uint    `json:"id"`
	Name               string  `json:"name"`
	IsReserved         bool    `json:"is_reserved"`
	ReservationMessage *string `json:"reservation_message"`
}

// OwnerView projects g for the wishlist owner.
func (g *Gift) OwnerView() OwnerGift {
	return OwnerGift{
		ID:         g.ID,
		WishlistID: g.WishlistID,
		Name:       g.Name,
		ImageURL:   g.ImageURL,
		Link:       g.Link,
		Price:      g.Price,
		Priority:   g.Priority,
		Notes:      g.Notes,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}

// PublicView projects g for a visitor holding the share token.
func (g *Gift) PublicView() PublicGift {
	return PublicGift{
		ID:                 g.ID,
		Name:               g.Name,
		ImageURL:           g.ImageURL,
		Link:               g.Link,
		Price:              g.Price,
		Priority:           g.Priority,
		Notes:              g.Notes,
		IsReserved:         g.IsReserved,
		ReservationMessage: g.ReservationMessage,
	}
}

// RandomView projects g for the random suggestion endpoint.
func (g *Gift) RandomView() RandomGift {
	return RandomGift{
		ID:       g.ID,
		Name:     g.Name,
		ImageURL: g.ImageURL,
		Link:     g.Link,
		Price:    g.Price,
		Priority: g.Priority,
		Notes:    g.Notes,
	}
}

// ReservedView projects g for the reserve response.
func (g *Gift) ReservedView() ReservedGift {
	return ReservedGift{
		ID:                 g.ID,
		Name:               g.Name,
		IsReserved:         g.IsReserved,
		ReservationMessage: g.ReservationMessage,
	}
}

// OwnerViews projects a gift list for the owner, keeping order.
func OwnerViews(gifts []Gift) []OwnerGift {
	out := make([]OwnerGift, 0, len(gifts))
	for i := range gifts {
		out = append(out, gifts[i].OwnerView())
	}
	return out
}

// PublicViews projects a gift list for visitors, keeping order.
func PublicViews(gifts []Gift) []PublicGift {
	out := make([]PublicGift, 0, len(gifts))
	for i := range gifts {
		out = append(out, gifts[i].PublicView())
	}
	return out
}

// GiftPatch holds the owner-editable gift fields of an update request.
type GiftPatch struct {
	Name     Optional[string]  `json:"name"`
	ImageURL Optional[string]  `json:"image_url"`
	Link     Optional[string]  `json:"link"`
	Price    Optional[float64] `json:"price"`
	Priority Optional[int]     `json:"priority"`
	Notes    Optional[string]  `json:"notes"`
}

// Fields lists the patch fields with their validation rules.
func (p GiftPatch) Fields() []PatchField {
	return []PatchField{
		stringField("name", p.Name, false, "min=1,max=255"),
		stringField("image_url", p.ImageURL, true, "url,max=2048"),
		stringField("link", p.Link, true, "url,max=2048"),
		valueField("price", p.Price, true, "gte=0"),
		valueField("priority", p.Priority, false, "gte=0,lte=5"),
		stringField("notes", p.Notes, true, "max=1000"),
	}
}

// Columns returns the minimal set of columns to write.
func (p GiftPatch) Columns() map[string]any {
	return columnsOf(p.Fields())
}

// PatchField is one field of a partial update as seen by validation and by
// the column builder.
type PatchField struct {
	Name     string
	Set      bool
	Null     bool
	Nullable bool
	Value    any
	Rules    string
}

func stringField(name string, o Optional[string], nullable bool, rules string) PatchField {
	f := PatchField{Name: name, Set: o.Set, Null: o.Null, Nullable: nullable, Rules: rules}
	if o.Set && !o.Null {
		v := strings.TrimSpace(o.Value)
		if v == "" && nullable {
			f.Null = true
		} else {
			f.Value = v
		}
	}
	return f
}

func valueField[T any](name string, o Optional[T], nullable bool, rules string) PatchField {
	f := PatchField{Name: name, Set: o.Set, Null: o.Null, Nullable: nullable, Rules: rules}
	if o.Set && !o.Null {
		f.Value = o.Value
	}
	return f
}

func columnsOf(fields []PatchField) map[string]any {
	cols := make(map[string]any, len(fields))
	for _, f := range fields {
		if !f.Set {
			continue
		}
		if f.Null {
			cols[f.Name] = nil
			continue
		}
		cols[f.Name] = f.Value
	}
	return cols
}

// NormalizeReservationMessage trims msg and maps an empty note to nil.
func NormalizeReservationMessage(msg *string) *string {
	if msg == nil {
		return nil
	}
	v := strings.TrimSpace(*msg)
	if v == "" {
		return nil
	}
	return &v
}
