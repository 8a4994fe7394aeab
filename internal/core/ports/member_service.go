package ports

import (
	"context"

	"github.com/rjtc/pms-sync/internal/core/domain"
)

// ImageFetcher downloads a profile image. Failures are tolerated by callers;
// an image is never required for correctness.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// MemberService resolves project members.
type MemberService interface {
	// GetMember hydrates a member from the remote store. Email, name and
	// profile photo URL must all be present in the record or the call
	// fails with domain.ErrFailedToGetUserInfo.
	GetMember(ctx context.Context, id string) (*domain.Member, error)
}
