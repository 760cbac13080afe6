package constants

// Application Information
const (
	AppName    = "contactdesk"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Cache Key Prefixes
const (
	CacheKeyPrefix  = "contactdesk:"
	CacheKeySession = CacheKeyPrefix + "session:"
)

// Pagination Query Parameters
const (
	QueryParamPage  = "page"
	QueryParamLimit = "limit"
	QueryParamDays  = "days"
)

// Default Pagination Values (as strings for query parsing)
const (
	DefaultPage  = "1"
	DefaultLimit = "10"
)

// Pagination Limits
const (
	MinPage  = 1
	MinLimit = 1
	MaxLimit = 500
)

// Birthday window limits (days ahead)
const (
	MinBirthdayDays     = 1
	MaxBirthdayDays     = 7
	DefaultBirthdayDays = 7
)
