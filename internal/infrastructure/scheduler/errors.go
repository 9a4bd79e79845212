package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when triggering a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrCampaignNotFound is returned when a manual trigger names an unknown campaign
	ErrCampaignNotFound = errors.New("campaign not found")
)
