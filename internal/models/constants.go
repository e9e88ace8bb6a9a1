package models

// DateLayoutISO is the layout transactions are written with.
const DateLayoutISO = "2006-01-02"

// Categories
const (
	CategoryUncategorized = "Uncategorized"
)

// Store key matching modes.
const (
	MatchExact    = "exact"
	MatchContains = "contains"
)

// Chart value policies.
const (
	ChartValuesAbsolute = "absolute"
	ChartValuesSigned   = "signed"
)

// Chart types.
const (
	ChartTypePie      = "pie"
	ChartTypeDoughnut = "doughnut"
)

// File permissions
const (
	PermissionDataFile  = 0644
	PermissionDirectory = 0750
)
