package csapi

import (
	"context"
	"time"
)

// ResourceClient is the CRUD surface shared by the hierarchy resources.
// R is the read entity, C the create payload and U the partial update payload.
type ResourceClient[R, C, U any] interface {
	Get(ctx context.Context, id int) (*R, error)
	List(ctx context.Context, params *QueryParams) (*ListResponse[R], error)
	Create(ctx context.Context, request *C) (*R, error)
	Update(ctx context.Context, id int, request *U) (*R, error)
	Delete(ctx context.Context, id int) error
	// ListAll drains every page starting at params.
	ListAll(ctx context.Context, params *QueryParams) ([]R, error)
}

// LaboratoriesClient manages laboratories.
type LaboratoriesClient interface {
	ResourceClient[Laboratory, LaboratoryCreateRequest, LaboratoryUpdateRequest]

	// ListStorages returns every storage of a laboratory (GET /labs/{id}/storages).
	ListStorages(ctx context.Context, labID int) ([]Storage, error)
}

// StoragesClient manages storage devices.
type StoragesClient interface {
	ResourceClient[Storage, StorageCreateRequest, StorageUpdateRequest]

	// ListSections returns every section of a storage device (GET /stores/{id}/sections).
	ListSections(ctx context.Context, storageID int) ([]Section, error)
}

// SectionsClient manages sections.
type SectionsClient interface {
	ResourceClient[Section, SectionCreateRequest, SectionUpdateRequest]
}

// ItemsClient manages items.
type ItemsClient interface {
	ResourceClient[Item, ItemCreateRequest, ItemUpdateRequest]

	GetRecord(ctx context.Context, id int) (*ItemRecord, error)
	ListRecords(ctx context.Context, params *QueryParams) (*ListResponse[ItemRecord], error)
	UpdateQuantity(ctx context.Context, id, quantity int) (*QuantityChange, error)
	Categories(ctx context.Context) ([]string, error)
	LowStock(ctx context.Context) ([]Item, error)
	Expiring(ctx context.Context, days int) ([]Item, error)
	// CodeExists reports whether code is taken by an item other than excludeID (0 for none).
	CodeExists(ctx context.Context, code string, excludeID int) (bool, error)
}

// MovementsClient manages stock movements.
type MovementsClient interface {
	List(ctx context.Context, params *QueryParams) (*ListResponse[Movement], error)
	ListAll(ctx context.Context, params *QueryParams) ([]Movement, error)
	Create(ctx context.Context, request *MovementCreateRequest) (*Movement, error)
	Delete(ctx context.Context, id int) error
	// Export returns the server-rendered CSV for the movements matching params.
	Export(ctx context.Context, params *QueryParams) ([]byte, error)
}

// UsersClient manages user accounts. All operations require the admin role.
type UsersClient interface {
	Register(ctx context.Context, request *UserCreateRequest) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
	List(ctx context.Context, params *QueryParams) (*ListResponse[User], error)
	Update(ctx context.Context, id int, request *UserUpdateRequest) (*User, error)
	Delete(ctx context.Context, id int) error
}

// AuthClient handles login and the authenticated user's own account.
type AuthClient interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Logout()
	Token() string
	SetToken(token string)
	Authenticated() bool
	Profile(ctx context.Context) (*User, error)
	UpdateProfile(ctx context.Context, request *ProfileUpdateRequest) (*User, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
}

// StatsClient reads aggregate counters.
type StatsClient interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	User(ctx context.Context) (*UserStats, error)
	Health(ctx context.Context) (*HealthStatus, error)
}

// HierarchyClients provides access to the four-level resource hierarchy.
type HierarchyClients interface {
	Laboratories() LaboratoriesClient
	Storages() StoragesClient
	Sections() SectionsClient
	Items() ItemsClient
}

// Client is the main interface for the Central Storage API.
type Client interface {
	HierarchyClients

	Movements() MovementsClient
	Users() UsersClient
	Auth() AuthClient
	Stats() StatsClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a csapi.Client.
//
// # Authentication precedence
//
//  1. Token: if set, it is used directly as the Bearer token.
//  2. Username/Password: csclient.New logs in and stores the returned token.
//  3. No credentials: only /login and /health can be called until Auth().Login succeeds.
type Config struct {
	// APIEndpoint: base URL of the API. csclient.New trims a trailing slash,
	// adds "http://" when no scheme is present and appends "/api" when missing.
	APIEndpoint string

	Token    string
	Username string
	Password string

	// HTTPTimeout bounds a single HTTP exchange, retries excluded.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures (>=500, 429 and
	// connection errors) on idempotent requests. Negative disables retries.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Debug: enables HTTP request/response logging when a Logger is provided.
	Debug     bool
	Logger    Logger
	UserAgent string

	// Cache enables caching of categories and dashboard stats. Nil disables it.
	Cache *CacheConfig

	// TokenPersister, when set, receives every token obtained by logging in.
	TokenPersister TokenPersister
}

// TokenPersister stores a session token outside the process.
type TokenPersister interface {
	SaveToken(token string, expiresAt time.Time) error
}
