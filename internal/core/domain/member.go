package domain

// Member is a project member resolved from Users/{id}.
//
// Unlike Task hydration, member hydration is strict: Email, Name and PhotoURL
// must all be present in the remote record or resolution fails with
// ErrFailedToGetUserInfo. ProfileImage is fetched separately and is optional;
// a failed image download never fails the member.
type Member struct {
	ID           string
	Email        string
	Name         string
	PhotoURL     string
	ProfileImage []byte
}
