package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rjtc/pms-sync/internal/core/domain"
	"github.com/rjtc/pms-sync/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub image fetcher
// ---------------------------------------------------------------------------

type stubImageFetcher struct {
	data    []byte
	err     error
	fetched []string
}

func (f *stubImageFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.fetched = append(f.fetched, url)
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func fullMemberRecord() ports.Record {
	return ports.Record{
		"email":         "lin@example.com",
		"name":          "Lin",
		"profile photo": "https://img.example.com/lin.png",
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestMemberHydrator_Success(t *testing.T) {
	store := newStubRemoteStore()
	store.records["Users/u2"] = fullMemberRecord()
	images := &stubImageFetcher{data: []byte{0x89, 0x50}}

	h := NewMemberHydrator(store, images, zerolog.Nop())
	member, err := h.GetMember(context.Background(), "u2")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if member.ID != "u2" || member.Email != "lin@example.com" || member.Name != "Lin" {
		t.Fatalf("unexpected member: %+v", member)
	}
	if len(member.ProfileImage) == 0 {
		t.Fatal("expected profile image bytes")
	}
	if len(images.fetched) != 1 || images.fetched[0] != "https://img.example.com/lin.png" {
		t.Fatalf("expected image fetch for the record URL, got %v", images.fetched)
	}
}

// Member hydration is strict: any missing required field fails, even though
// the record exists.
func TestMemberHydrator_MissingRequiredField(t *testing.T) {
	for _, field := range []string{"email", "name", "profile photo"} {
		t.Run(field, func(t *testing.T) {
			rec := fullMemberRecord()
			delete(rec, field)

			store := newStubRemoteStore()
			store.records["Users/u2"] = rec

			h := NewMemberHydrator(store, &stubImageFetcher{}, zerolog.Nop())
			_, err := h.GetMember(context.Background(), "u2")
			if !errors.Is(err, domain.ErrFailedToGetUserInfo) {
				t.Fatalf("expected ErrFailedToGetUserInfo, got: %v", err)
			}
		})
	}
}

func TestMemberHydrator_AbsentRecord(t *testing.T) {
	h := NewMemberHydrator(newStubRemoteStore(), &stubImageFetcher{}, zerolog.Nop())

	_, err := h.GetMember(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrFailedToGetUserInfo) {
		t.Fatalf("expected ErrFailedToGetUserInfo for absent record, got: %v", err)
	}
}

func TestMemberHydrator_ImageFailureIsNonFatal(t *testing.T) {
	store := newStubRemoteStore()
	store.records["Users/u2"] = fullMemberRecord()
	images := &stubImageFetcher{err: errors.New("404")}

	h := NewMemberHydrator(store, images, zerolog.Nop())
	member, err := h.GetMember(context.Background(), "u2")
	if err != nil {
		t.Fatalf("image failure must not fail the member, got: %v", err)
	}
	if member.ProfileImage != nil {
		t.Fatalf("expected no image bytes, got %d", len(member.ProfileImage))
	}
}

func TestMemberHydrator_RemoteUnavailable(t *testing.T) {
	store := newStubRemoteStore()
	store.readErr["Users/u2"] = errors.New("network down")

	h := NewMemberHydrator(store, &stubImageFetcher{}, zerolog.Nop())
	_, err := h.GetMember(context.Background(), "u2")
	if !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Fatalf("expected ErrRemoteUnavailable, got: %v", err)
	}
}
