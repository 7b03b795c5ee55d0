package domain

// Profile summarizes an account at fetch time. It is constructed fresh per
// fetch call and never persisted by the core.
type Profile struct {
	Username       string
	FullName       string
	Biography      string
	FollowersCount int
	FollowingCount int
	PostsCount     int
	IsPrivate      bool // unknown is treated as private
	IsVerified     bool
}

// NewProfile returns a profile with the conservative defaults applied: an
// account we know nothing about is assumed private.
func NewProfile(username string) Profile {
	return Profile{
		Username:  username,
		FullName:  username,
		IsPrivate: true,
	}
}
