package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rjtc/pms-sync/internal/core/domain"
	"github.com/rjtc/pms-sync/internal/core/ports"
)

// MemberHydrator resolves project members from Users/{id} records.
//
// Member hydration is deliberately stricter than task hydration: a record
// missing any of email, name or profile photo fails with
// ErrFailedToGetUserInfo instead of resolving partially.
type MemberHydrator struct {
	store  ports.RemoteStore
	images ports.ImageFetcher
	log    zerolog.Logger
}

func NewMemberHydrator(store ports.RemoteStore, images ports.ImageFetcher, log zerolog.Logger) *MemberHydrator {
	return &MemberHydrator{store: store, images: images, log: log}
}

func (h *MemberHydrator) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	rec, err := h.store.ReadOnce(ctx, userPath(id))
	if err != nil {
		return nil, fmt.Errorf("get member %s: %w: %s", id, domain.ErrRemoteUnavailable, err)
	}

	email, okEmail := rec["email"].(string)
	name, okName := rec["name"].(string)
	photoURL, okPhoto := rec["profile photo"].(string)
	if !okEmail || !okName || !okPhoto {
		return nil, fmt.Errorf("get member %s: %w", id, domain.ErrFailedToGetUserInfo)
	}

	member := &domain.Member{
		ID:       id,
		Email:    email,
		Name:     name,
		PhotoURL: photoURL,
	}

	// The image is cosmetic. A failed download is logged and the member
	// returned without one.
	img, err := h.images.Fetch(ctx, photoURL)
	if err != nil {
		h.log.Warn().Err(err).Str("member_id", id).Msg("profile image download failed")
	} else {
		member.ProfileImage = img
	}

	return member, nil
}
