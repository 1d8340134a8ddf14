package dto

// SeedResult reports what a demo seed created.
type SeedResult struct {
	Users       int `json:"users"`
	Submissions int `json:"submissions"`
	Skipped     int `json:"skipped"`
}
