package domain

// Delivery outcomes recorded in logs
const (
	OutcomeRecorded  = "recorded"
	OutcomeDuplicate = "duplicate"
	OutcomeDropped   = "dropped"
	OutcomeRequeued  = "requeued"
)
