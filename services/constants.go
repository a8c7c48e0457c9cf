package services

const (
	MinDescriptionLength = 1
	MaxDescriptionLength = 100

	MaxGroupNameLength        = 60
	MaxGroupDescriptionLength = 255
)

const (
	GeneralRateLimit = 500
	AIRateLimit      = 8
)

const explanationModel = "gemini-2.0-flash"
