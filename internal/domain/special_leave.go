package domain

type SpecialLeaveSettings struct {
	ID         int64  `json:"id"`
	MessageKey string `json:"messageKey"`
	Active     bool   `json:"active"`
	Days       int32  `json:"days"`
}
