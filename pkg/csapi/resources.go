package csapi

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The server binds price as a JSON number.
	decimal.MarshalJSONWithoutQuotes = true
}

// ResourceType names one of the resource families exposed by the API.
type ResourceType string

const (
	ResourceLaboratory ResourceType = "laboratory"
	ResourceStorage    ResourceType = "storage"
	ResourceSection    ResourceType = "section"
	ResourceItem       ResourceType = "item"
	ResourceMovement   ResourceType = "movement"
	ResourceUser       ResourceType = "user"
)

// StorageStatus is the operating state of a storage device. Values are the server's wire literals.
type StorageStatus string

const (
	StorageStatusRunning     StorageStatus = "运行中"
	StorageStatusMaintenance StorageStatus = "维护中"
	StorageStatusDisabled    StorageStatus = "停用"
)

// SectionStatus is the availability of a section. Values are the server's wire literals.
type SectionStatus string

const (
	SectionStatusAvailable   SectionStatus = "可用"
	SectionStatusFull        SectionStatus = "已满"
	SectionStatusMaintenance SectionStatus = "维护中"
	SectionStatusDisabled    SectionStatus = "停用"
)

// MovementType classifies a stock movement. Values are the server's wire literals.
type MovementType string

const (
	MovementIn       MovementType = "入库"
	MovementOut      MovementType = "出库"
	MovementTransfer MovementType = "转移"
	MovementAudit    MovementType = "盘点"
	MovementDamage   MovementType = "损坏"
	MovementScrap    MovementType = "报废"
)

// Role is a user's authorization role.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Laboratory is the root of the resource hierarchy.
type Laboratory struct {
	Resource

	Code          string    `json:"code"               yaml:"code"`
	Name          string    `json:"name"               yaml:"name"`
	Location      string    `json:"location"           yaml:"location"`
	Description   string    `json:"description"        yaml:"description"`
	SecurityLevel int       `json:"security_level"     yaml:"security_level"`
	Storages      []Storage `json:"storages,omitempty" yaml:"storages,omitempty"`
}

// LaboratoryCreateRequest is the payload for creating a laboratory.
type LaboratoryCreateRequest struct {
	Code          string `json:"code"                     yaml:"code"`
	Name          string `json:"name"                     yaml:"name"`
	Location      string `json:"location,omitempty"       yaml:"location,omitempty"`
	Description   string `json:"description,omitempty"    yaml:"description,omitempty"`
	SecurityLevel int    `json:"security_level,omitempty" yaml:"security_level,omitempty"`
}

// LaboratoryUpdateRequest is the payload for a partial laboratory update. Nil fields are not sent.
type LaboratoryUpdateRequest struct {
	Code          *string `json:"code,omitempty"           yaml:"code,omitempty"`
	Name          *string `json:"name,omitempty"           yaml:"name,omitempty"`
	Location      *string `json:"location,omitempty"       yaml:"location,omitempty"`
	Description   *string `json:"description,omitempty"    yaml:"description,omitempty"`
	SecurityLevel *int    `json:"security_level,omitempty" yaml:"security_level,omitempty"`
}

// CreateRequest copies the client-writable fields of the laboratory.
func (l *Laboratory) CreateRequest() *LaboratoryCreateRequest {
	return &LaboratoryCreateRequest{
		Code:          l.Code,
		Name:          l.Name,
		Location:      l.Location,
		Description:   l.Description,
		SecurityLevel: l.SecurityLevel,
	}
}

// UpdateRequest returns an update that overwrites every client-writable field.
func (l *Laboratory) UpdateRequest() *LaboratoryUpdateRequest {
	return &LaboratoryUpdateRequest{
		Code:          ptr(l.Code),
		Name:          ptr(l.Name),
		Location:      ptr(l.Location),
		Description:   ptr(l.Description),
		SecurityLevel: ptr(l.SecurityLevel),
	}
}

// Storage is a storage device (cabinet, fridge) located in a laboratory.
type Storage struct {
	Resource

	Code          string        `json:"code"                 yaml:"code"`
	Name          string        `json:"name"                 yaml:"name"`
	Type          string        `json:"type"                 yaml:"type"`
	Location      string        `json:"location"             yaml:"location"`
	Description   string        `json:"description"          yaml:"description"`
	Status        StorageStatus `json:"status"               yaml:"status"`
	Capacity      int           `json:"capacity"             yaml:"capacity"`
	SecurityLevel int           `json:"security_level"       yaml:"security_level"`
	Properties    Properties    `json:"properties,omitempty" yaml:"properties,omitempty"`
	LabID         int           `json:"lab_id"               yaml:"lab_id"`
	Laboratory    *Laboratory   `json:"laboratory,omitempty" yaml:"laboratory,omitempty"`
	Sections      []Section     `json:"sections,omitempty"   yaml:"sections,omitempty"`
}

// StorageCreateRequest is the payload for creating a storage device.
type StorageCreateRequest struct {
	Code          string        `json:"code"                     yaml:"code"`
	Name          string        `json:"name"                     yaml:"name"`
	Type          string        `json:"type,omitempty"           yaml:"type,omitempty"`
	Location      string        `json:"location,omitempty"       yaml:"location,omitempty"`
	Description   string        `json:"description,omitempty"    yaml:"description,omitempty"`
	Status        StorageStatus `json:"status,omitempty"         yaml:"status,omitempty"`
	Capacity      int           `json:"capacity,omitempty"       yaml:"capacity,omitempty"`
	SecurityLevel int           `json:"security_level,omitempty" yaml:"security_level,omitempty"`
	Properties    Properties    `json:"properties,omitempty"     yaml:"properties,omitempty"`
	LabID         int           `json:"lab_id"                   yaml:"lab_id"`
}

// StorageUpdateRequest is the payload for a partial storage update. Nil fields are not sent.
type StorageUpdateRequest struct {
	Code          *string        `json:"code,omitempty"           yaml:"code,omitempty"`
	Name          *string        `json:"name,omitempty"           yaml:"name,omitempty"`
	Type          *string        `json:"type,omitempty"           yaml:"type,omitempty"`
	Location      *string        `json:"location,omitempty"       yaml:"location,omitempty"`
	Description   *string        `json:"description,omitempty"    yaml:"description,omitempty"`
	Status        *StorageStatus `json:"status,omitempty"         yaml:"status,omitempty"`
	Capacity      *int           `json:"capacity,omitempty"       yaml:"capacity,omitempty"`
	SecurityLevel *int           `json:"security_level,omitempty" yaml:"security_level,omitempty"`
	Properties    Properties     `json:"properties,omitempty"     yaml:"properties,omitempty"`
	LabID         *int           `json:"lab_id,omitempty"         yaml:"lab_id,omitempty"`
}

// CreateRequest copies the client-writable fields of the storage.
func (s *Storage) CreateRequest() *StorageCreateRequest {
	return &StorageCreateRequest{
		Code:          s.Code,
		Name:          s.Name,
		Type:          s.Type,
		Location:      s.Location,
		Description:   s.Description,
		Status:        s.Status,
		Capacity:      s.Capacity,
		SecurityLevel: s.SecurityLevel,
		Properties:    s.Properties,
		LabID:         s.LabID,
	}
}

// UpdateRequest returns an update that overwrites every client-writable field.
func (s *Storage) UpdateRequest() *StorageUpdateRequest {
	return &StorageUpdateRequest{
		Code:          ptr(s.Code),
		Name:          ptr(s.Name),
		Type:          ptr(s.Type),
		Location:      ptr(s.Location),
		Description:   ptr(s.Description),
		Status:        ptr(s.Status),
		Capacity:      ptr(s.Capacity),
		SecurityLevel: ptr(s.SecurityLevel),
		Properties:    s.Properties,
		LabID:         ptr(s.LabID),
	}
}

// Section is the smallest storage unit (drawer, shelf) inside a storage device.
type Section struct {
	Resource

	Code          string        `json:"code"                 yaml:"code"`
	Name          string        `json:"name"                 yaml:"name"`
	Position      string        `json:"position"             yaml:"position"`
	Description   string        `json:"description"          yaml:"description"`
	Status        SectionStatus `json:"status"               yaml:"status"`
	SecurityLevel int           `json:"security_level"       yaml:"security_level"`
	Capacity      int           `json:"capacity"             yaml:"capacity"`
	UsedCapacity  int           `json:"used_capacity"        yaml:"used_capacity"`
	Properties    Properties    `json:"properties,omitempty" yaml:"properties,omitempty"`
	StorageID     int           `json:"storage_id"           yaml:"storage_id"`
	Storage       *Storage      `json:"storage,omitempty"    yaml:"storage,omitempty"`
	Items         []Item        `json:"items,omitempty"      yaml:"items,omitempty"`
}

// SectionCreateRequest is the payload for creating a section.
type SectionCreateRequest struct {
	Code          string        `json:"code"                     yaml:"code"`
	Name          string        `json:"name"                     yaml:"name"`
	Position      string        `json:"position,omitempty"       yaml:"position,omitempty"`
	Description   string        `json:"description,omitempty"    yaml:"description,omitempty"`
	Status        SectionStatus `json:"status,omitempty"         yaml:"status,omitempty"`
	SecurityLevel int           `json:"security_level,omitempty" yaml:"security_level,omitempty"`
	Capacity      int           `json:"capacity,omitempty"       yaml:"capacity,omitempty"`
	UsedCapacity  int           `json:"used_capacity"            yaml:"used_capacity"`
	Properties    Properties    `json:"properties,omitempty"     yaml:"properties,omitempty"`
	StorageID     int           `json:"storage_id"               yaml:"storage_id"`
}

// SectionUpdateRequest is the payload for a partial section update. Nil fields are not sent.
type SectionUpdateRequest struct {
	Code          *string        `json:"code,omitempty"           yaml:"code,omitempty"`
	Name          *string        `json:"name,omitempty"           yaml:"name,omitempty"`
	Position      *string        `json:"position,omitempty"       yaml:"position,omitempty"`
	Description   *string        `json:"description,omitempty"    yaml:"description,omitempty"`
	Status        *SectionStatus `json:"status,omitempty"         yaml:"status,omitempty"`
	SecurityLevel *int           `json:"security_level,omitempty" yaml:"security_level,omitempty"`
	Capacity      *int           `json:"capacity,omitempty"       yaml:"capacity,omitempty"`
	UsedCapacity  *int           `json:"used_capacity,omitempty"  yaml:"used_capacity,omitempty"`
	Properties    Properties     `json:"properties,omitempty"     yaml:"properties,omitempty"`
	StorageID     *int           `json:"storage_id,omitempty"     yaml:"storage_id,omitempty"`
}

// CreateRequest copies the client-writable fields of the section.
func (s *Section) CreateRequest() *SectionCreateRequest {
	return &SectionCreateRequest{
		Code:          s.Code,
		Name:          s.Name,
		Position:      s.Position,
		Description:   s.Description,
		Status:        s.Status,
		SecurityLevel: s.SecurityLevel,
		Capacity:      s.Capacity,
		UsedCapacity:  s.UsedCapacity,
		Properties:    s.Properties,
		StorageID:     s.StorageID,
	}
}

// UpdateRequest returns an update that overwrites every client-writable field.
func (s *Section) UpdateRequest() *SectionUpdateRequest {
	return &SectionUpdateRequest{
		Code:          ptr(s.Code),
		Name:          ptr(s.Name),
		Position:      ptr(s.Position),
		Description:   ptr(s.Description),
		Status:        ptr(s.Status),
		SecurityLevel: ptr(s.SecurityLevel),
		Capacity:      ptr(s.Capacity),
		UsedCapacity:  ptr(s.UsedCapacity),
		Properties:    s.Properties,
		StorageID:     ptr(s.StorageID),
	}
}

// Item is a stocked article held in a section.
type Item struct {
	Resource

	Code         string          `json:"code"                    yaml:"code"`
	Name         string          `json:"name"                    yaml:"name"`
	Description  string          `json:"description"             yaml:"description"`
	Category     string          `json:"category"                yaml:"category"`
	Properties   Properties      `json:"properties,omitempty"    yaml:"properties,omitempty"`
	Price        decimal.Decimal `json:"price"                   yaml:"price"`
	Quantity     int             `json:"quantity"                yaml:"quantity"`
	MinQuantity  int             `json:"min_quantity"            yaml:"min_quantity"`
	Unit         string          `json:"unit"                    yaml:"unit"`
	Supplier     string          `json:"supplier"                yaml:"supplier"`
	PurchaseDate *Date           `json:"purchase_date,omitempty" yaml:"purchase_date,omitempty"`
	ExpiryDate   *Date           `json:"expiry_date,omitempty"   yaml:"expiry_date,omitempty"`
	SectionID    int             `json:"section_id"              yaml:"section_id"`
	Section      *Section        `json:"section,omitempty"       yaml:"section,omitempty"`
}

// LowStock reports whether the quantity is at or below the minimum stock level.
func (i *Item) LowStock() bool {
	return i.Quantity <= i.MinQuantity
}

// ItemCreateRequest is the payload for creating an item.
type ItemCreateRequest struct {
	Code         string           `json:"code"                    yaml:"code"`
	Name         string           `json:"name"                    yaml:"name"`
	Description  string           `json:"description,omitempty"   yaml:"description,omitempty"`
	Category     string           `json:"category,omitempty"      yaml:"category,omitempty"`
	Properties   Properties       `json:"properties,omitempty"    yaml:"properties,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"         yaml:"price,omitempty"`
	Quantity     int              `json:"quantity"                yaml:"quantity"`
	MinQuantity  int              `json:"min_quantity,omitempty"  yaml:"min_quantity,omitempty"`
	Unit         string           `json:"unit,omitempty"          yaml:"unit,omitempty"`
	Supplier     string           `json:"supplier,omitempty"      yaml:"supplier,omitempty"`
	PurchaseDate *Date            `json:"purchase_date,omitempty" yaml:"purchase_date,omitempty"`
	ExpiryDate   *Date            `json:"expiry_date,omitempty"   yaml:"expiry_date,omitempty"`
	SectionID    int              `json:"section_id"              yaml:"section_id"`
}

// ItemUpdateRequest is the payload for a partial item update. Nil fields are not sent.
type ItemUpdateRequest struct {
	Code         *string          `json:"code,omitempty"          yaml:"code,omitempty"`
	Name         *string          `json:"name,omitempty"          yaml:"name,omitempty"`
	Description  *string          `json:"description,omitempty"   yaml:"description,omitempty"`
	Category     *string          `json:"category,omitempty"      yaml:"category,omitempty"`
	Properties   Properties       `json:"properties,omitempty"    yaml:"properties,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"         yaml:"price,omitempty"`
	Quantity     *int             `json:"quantity,omitempty"      yaml:"quantity,omitempty"`
	MinQuantity  *int             `json:"min_quantity,omitempty"  yaml:"min_quantity,omitempty"`
	Unit         *string          `json:"unit,omitempty"          yaml:"unit,omitempty"`
	Supplier     *string          `json:"supplier,omitempty"      yaml:"supplier,omitempty"`
	PurchaseDate *Date            `json:"purchase_date,omitempty" yaml:"purchase_date,omitempty"`
	ExpiryDate   *Date            `json:"expiry_date,omitempty"   yaml:"expiry_date,omitempty"`
	SectionID    *int             `json:"section_id,omitempty"    yaml:"section_id,omitempty"`
}

// CreateRequest copies the client-writable fields of the item.
func (i *Item) CreateRequest() *ItemCreateRequest {
	return &ItemCreateRequest{
		Code:         i.Code,
		Name:         i.Name,
		Description:  i.Description,
		Category:     i.Category,
		Properties:   i.Properties,
		Price:        ptr(i.Price),
		Quantity:     i.Quantity,
		MinQuantity:  i.MinQuantity,
		Unit:         i.Unit,
		Supplier:     i.Supplier,
		PurchaseDate: i.PurchaseDate,
		ExpiryDate:   i.ExpiryDate,
		SectionID:    i.SectionID,
	}
}

// UpdateRequest returns an update that overwrites every client-writable field.
func (i *Item) UpdateRequest() *ItemUpdateRequest {
	return &ItemUpdateRequest{
		Code:         ptr(i.Code),
		Name:         ptr(i.Name),
		Description:  ptr(i.Description),
		Category:     ptr(i.Category),
		Properties:   i.Properties,
		Price:        ptr(i.Price),
		Quantity:     ptr(i.Quantity),
		MinQuantity:  ptr(i.MinQuantity),
		Unit:         ptr(i.Unit),
		Supplier:     ptr(i.Supplier),
		PurchaseDate: i.PurchaseDate,
		ExpiryDate:   i.ExpiryDate,
		SectionID:    ptr(i.SectionID),
	}
}

// LocationPath describes where an item lives in the hierarchy.
type LocationPath struct {
	LabCode     string `json:"lab_code"     yaml:"lab_code"`
	LabName     string `json:"lab_name"     yaml:"lab_name"`
	StorageCode string `json:"storage_code" yaml:"storage_code"`
	StorageName string `json:"storage_name" yaml:"storage_name"`
	SectionCode string `json:"section_code" yaml:"section_code"`
	SectionName string `json:"section_name" yaml:"section_name"`
	FullPath    string `json:"full_path"    yaml:"full_path"`
}

// ItemRecord is the item representation returned by item reads: the item plus its resolved location.
type ItemRecord struct {
	Item     Item         `json:"item"              yaml:"item"`
	Section  *Section     `json:"section,omitempty" yaml:"section,omitempty"`
	Location LocationPath `json:"location"          yaml:"location"`
}

// GetID implements Identifiable.
func (r ItemRecord) GetID() int {
	return r.Item.ID
}

// QuantityChange is the result of a stock level adjustment.
type QuantityChange struct {
	ItemID      int    `json:"item_id,omitempty" yaml:"item_id,omitempty"`
	Message     string `json:"message"           yaml:"message"`
	OldQuantity int    `json:"old_quantity"      yaml:"old_quantity"`
	NewQuantity int    `json:"new_quantity"      yaml:"new_quantity"`
}

// QuantityUpdate pairs an item with its new stock level.
type QuantityUpdate struct {
	ItemID   int `json:"item_id"  yaml:"item_id"`
	Quantity int `json:"quantity" yaml:"quantity"`
}

// Movement records a quantity of an item moving in, out, or between locations.
type Movement struct {
	Resource

	ItemID       int          `json:"item_id"         yaml:"item_id"`
	Item         *Item        `json:"item,omitempty"  yaml:"item,omitempty"`
	MovementType MovementType `json:"movement_type"   yaml:"movement_type"`
	FromLocation string       `json:"from_location"   yaml:"from_location"`
	ToLocation   string       `json:"to_location"     yaml:"to_location"`
	Quantity     int          `json:"quantity"        yaml:"quantity"`
	Reason       string       `json:"reason"          yaml:"reason"`
	Notes        string       `json:"notes"           yaml:"notes"`
	UserID       int          `json:"user_id"         yaml:"user_id"`
	User         *User        `json:"user,omitempty"  yaml:"user,omitempty"`
}

// MovementCreateRequest is the payload for recording a movement. The acting user is taken from the token.
type MovementCreateRequest struct {
	ItemID       int          `json:"item_id"                 yaml:"item_id"`
	MovementType MovementType `json:"movement_type"           yaml:"movement_type"`
	FromLocation string       `json:"from_location,omitempty" yaml:"from_location,omitempty"`
	ToLocation   string       `json:"to_location,omitempty"   yaml:"to_location,omitempty"`
	Quantity     int          `json:"quantity"                yaml:"quantity"`
	Reason       string       `json:"reason"                  yaml:"reason"`
	Notes        string       `json:"notes,omitempty"         yaml:"notes,omitempty"`
}

// User is an account on the server.
type User struct {
	Resource

	Username   string     `json:"username"             yaml:"username"`
	Email      string     `json:"email"                yaml:"email"`
	Role       Role       `json:"role"                 yaml:"role"`
	Active     bool       `json:"active"               yaml:"active"`
	RealName   string     `json:"real_name"            yaml:"real_name"`
	Phone      string     `json:"phone"                yaml:"phone"`
	Department string     `json:"department"           yaml:"department"`
	Bio        string     `json:"bio"                  yaml:"bio"`
	LastLogin  *time.Time `json:"last_login,omitempty" yaml:"last_login,omitempty"`
}

// UserCreateRequest is the payload for registering a user.
type UserCreateRequest struct {
	Username   string `json:"username"             yaml:"username"`
	Email      string `json:"email"                yaml:"email"`
	Password   string `json:"password"             yaml:"-"`
	Role       Role   `json:"role,omitempty"       yaml:"role,omitempty"`
	RealName   string `json:"real_name,omitempty"  yaml:"real_name,omitempty"`
	Phone      string `json:"phone,omitempty"      yaml:"phone,omitempty"`
	Department string `json:"department,omitempty" yaml:"department,omitempty"`
}

// UserUpdateRequest is the payload for a partial user update. Nil fields are not sent.
type UserUpdateRequest struct {
	Email      *string `json:"email,omitempty"      yaml:"email,omitempty"`
	Role       *Role   `json:"role,omitempty"       yaml:"role,omitempty"`
	Active     *bool   `json:"active,omitempty"     yaml:"active,omitempty"`
	RealName   *string `json:"real_name,omitempty"  yaml:"real_name,omitempty"`
	Phone      *string `json:"phone,omitempty"      yaml:"phone,omitempty"`
	Department *string `json:"department,omitempty" yaml:"department,omitempty"`
	Bio        *string `json:"bio,omitempty"        yaml:"bio,omitempty"`
	Password   *string `json:"password,omitempty"   yaml:"-"`
}

// ProfileUpdateRequest updates the authenticated user's own profile.
type ProfileUpdateRequest struct {
	Email      *string `json:"email,omitempty"      yaml:"email,omitempty"`
	RealName   *string `json:"real_name,omitempty"  yaml:"real_name,omitempty"`
	Phone      *string `json:"phone,omitempty"      yaml:"phone,omitempty"`
	Department *string `json:"department,omitempty" yaml:"department,omitempty"`
	Bio        *string `json:"bio,omitempty"        yaml:"bio,omitempty"`
}

// PasswordChangeRequest changes the authenticated user's password.
type PasswordChangeRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// LoginRequest is the body sent to /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by /login.
type LoginResponse struct {
	Token   string    `json:"token"             yaml:"token"`
	Message string    `json:"message,omitempty" yaml:"message,omitempty"`
	User    LoginUser `json:"user"              yaml:"user"`
}

// LoginUser is the abbreviated user embedded in a login response.
type LoginUser struct {
	ID       int    `json:"id"       yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email"    yaml:"email"`
	Role     Role   `json:"role"     yaml:"role"`
}

// DashboardStats are the global counters shown on the dashboard.
type DashboardStats struct {
	Laboratories    int `json:"laboratories"    yaml:"laboratories"`
	Storages        int `json:"storages"        yaml:"storages"`
	Sections        int `json:"sections"        yaml:"sections"`
	Items           int `json:"items"           yaml:"items"`
	LowStockItems   int `json:"lowStockItems"   yaml:"low_stock_items"`
	ExpiringItems   int `json:"expiringItems"   yaml:"expiring_items"`
	ExpiredItems    int `json:"expiredItems"    yaml:"expired_items"`
	Users           int `json:"users"           yaml:"users"`
	RecentMovements int `json:"recentMovements" yaml:"recent_movements"`
}

// UserStats are the authenticated user's personal counters.
type UserStats struct {
	TotalMovements int `json:"total_movements" yaml:"total_movements"`
	RecentActivity int `json:"recentActivity"  yaml:"recent_activity"`
	ItemsCreated   int `json:"total_items"     yaml:"items_created"`
	LabsCount      int `json:"labs_count"      yaml:"labs_count"`
	DevicesCount   int `json:"devices_count"   yaml:"devices_count"`
}

// HealthStatus is returned by /health.
type HealthStatus struct {
	Status string `json:"status" yaml:"status"`
}

func ptr[T any](v T) *T {
	return &v
}
