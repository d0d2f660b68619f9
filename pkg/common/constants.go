package common

const (
	// ContextKeyAccount is the echo context key holding the authenticated *entity.Account.
	ContextKeyAccount = "account"

	RedisKeyQuotePrefix = "stock-tracker:quote:"

	NewsCacheKeyPrefix = "news:"

	DefaultPageLimit = 10
	MaxPageLimit     = 100

	MinPredictionDays = 1
	MaxPredictionDays = 30
)
