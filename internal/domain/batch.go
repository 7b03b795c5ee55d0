package domain

import "time"

// Account is one entry of the batch input file.
type Account struct {
	Username       string `json:"username"`
	FullName       string `json:"full_name,omitempty"`
	FollowersCount int    `json:"followers_count,omitempty"`
}

// BatchStats are the aggregate counters of one batch run.
type BatchStats struct {
	TotalAccounts      int `json:"total_accounts"`
	SuccessfulAccounts int `json:"successful_accounts"`
	FailedAccounts     int `json:"failed_accounts"`
	TotalImages        int `json:"total_images"`
}

// AccountDownload describes one account that produced content.
type AccountDownload struct {
	Username       string `json:"username"`
	FullName       string `json:"full_name,omitempty"`
	FollowersCount int    `json:"followers_count,omitempty"`
	ImageCount     int    `json:"image_count"`
	StrategyUsed   string `json:"strategy_used,omitempty"`
}

// AccountFailure describes one account that produced nothing.
type AccountFailure struct {
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Error    string `json:"error"`
}

// BatchSummary is persisted as JSON after every batch run, overwriting the
// previous one.
type BatchSummary struct {
	Stats               BatchStats        `json:"stats"`
	SuccessfulDownloads []AccountDownload `json:"successful_downloads"`
	FailedDownloads     []AccountFailure  `json:"failed_downloads"`
}

// BatchRunRecord is the persisted history row for a finished batch run.
type BatchRunRecord struct {
	ID                 int64     `json:"id"`
	TotalAccounts      int       `json:"total_accounts"`
	SuccessfulAccounts int       `json:"successful_accounts"`
	FailedAccounts     int       `json:"failed_accounts"`
	TotalImages        int       `json:"total_images"`
	FinishedAt         time.Time `json:"finished_at"`
}
