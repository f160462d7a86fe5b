package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/moonhowl/werewolfd/internal/game/random"
	"github.com/moonhowl/werewolfd/internal/game/role"
)

// ErrRoomNotFound is returned when a room lookup yields no row.
var ErrRoomNotFound = errors.New("room not found")

// ErrMemberNotFound is returned when a membership lookup yields no row.
var ErrMemberNotFound = errors.New("player not found in room")

// codeAlphabet deliberately omits easily confused characters (O/0, I/1).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// codeLength is the join-code length.
const codeLength = 5

// Store provides room-record persistence.
type Store interface {
	// Get returns the room with the given join code, or ErrRoomNotFound.
	Get(ctx context.Context, id string) (Room, error)
	// Create inserts a new room record.
	Create(ctx context.Context, r Room) error
	// Update writes the full room record back.
	Update(ctx context.Context, r Room) error
	// Exists reports whether a room with the given code exists.
	Exists(ctx context.Context, id string) (bool, error)
}

// MemberStore provides lobby-membership persistence.
type MemberStore interface {
	// Members returns all membership rows for a room in join order.
	Members(ctx context.Context, roomID string) ([]Member, error)
	// Member returns the membership row for a player, or ErrMemberNotFound.
	Member(ctx context.Context, roomID string, playerID uuid.UUID) (Member, error)
	// Add inserts a membership row.
	Add(ctx context.Context, m Member) error
	// Update rewrites a membership row's display details.
	Update(ctx context.Context, m Member) error
	// Remove deletes a player's membership row.
	Remove(ctx context.Context, roomID string, playerID uuid.UUID) error
}

// SettingsStore persists per-room role settings.
type SettingsStore interface {
	// Get returns the settings for a room.
	Get(ctx context.Context, roomID string) (role.Settings, error)
	// Save inserts or rewrites the settings for a room.
	Save(ctx context.Context, s role.Settings) error
}

// Directory manages room creation and lobby membership.
type Directory struct {
	rooms    Store
	members  MemberStore
	settings SettingsStore
	src      random.Source
}

// NewDirectory creates a Directory over the given stores.
//
// Precondition: all stores and src must be non-nil.
func NewDirectory(rooms Store, members MemberStore, settings SettingsStore, src random.Source) *Directory {
	return &Directory{rooms: rooms, members: members, settings: settings, src: src}
}

// Create makes a new room moderated by playerID, with default role settings,
// and returns the generated join code.
//
// Postcondition: The returned code is unique among existing rooms at the
// time of creation.
func (d *Directory) Create(ctx context.Context, playerID uuid.UUID) (string, error) {
	code, err := d.newCode(ctx)
	if err != nil {
		return "", err
	}

	r := Room{
		ID:        code,
		Moderator: playerID,
		State:     StateLobby,
		Win:       WinNone,
	}
	if err := d.rooms.Create(ctx, r); err != nil {
		return "", fmt.Errorf("creating room: %w", err)
	}

	defaults := role.Settings{
		RoomID:        code,
		Werewolves:    1,
		SelectedRoles: []role.Name{role.Doctor, role.Detective, role.Witch},
	}
	if err := d.settings.Save(ctx, defaults); err != nil {
		return "", fmt.Errorf("saving default settings: %w", err)
	}
	return code, nil
}

// Get returns the room with the given join code.
func (d *Directory) Get(ctx context.Context, roomID string) (Room, error) {
	return d.rooms.Get(ctx, roomID)
}

// Join adds a player to the room lobby. Joining a room the player is already
// in updates their display details instead of duplicating the row.
func (d *Directory) Join(ctx context.Context, roomID string, playerID uuid.UUID, nickname string, avatarIndex int) error {
	if _, err := d.rooms.Get(ctx, roomID); err != nil {
		return err
	}

	existing, err := d.members.Member(ctx, roomID, playerID)
	switch {
	case err == nil:
		existing.Nickname = nickname
		existing.AvatarIndex = avatarIndex
		return d.members.Update(ctx, existing)
	case errors.Is(err, ErrMemberNotFound):
		return d.members.Add(ctx, Member{
			RoomID:      roomID,
			PlayerID:    playerID,
			Nickname:    nickname,
			AvatarIndex: avatarIndex,
		})
	default:
		return err
	}
}

// Leave removes a player from the room lobby. When the moderator leaves, the
// oldest remaining member inherits moderation.
func (d *Directory) Leave(ctx context.Context, roomID string, playerID uuid.UUID) error {
	r, err := d.rooms.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if err := d.members.Remove(ctx, roomID, playerID); err != nil {
		return err
	}
	if r.Moderator != playerID {
		return nil
	}

	remaining, err := d.members.Members(ctx, roomID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return nil
	}
	r.Moderator = remaining[0].PlayerID
	return d.rooms.Update(ctx, r)
}

// Members returns the lobby membership, optionally without the moderator.
func (d *Directory) Members(ctx context.Context, roomID string, includeModerator bool) ([]Member, error) {
	r, err := d.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	members, err := d.members.Members(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if includeModerator {
		return members, nil
	}
	return WithoutPlayer(members, r.Moderator), nil
}

// Moderator returns the membership row of the room's current moderator.
func (d *Directory) Moderator(ctx context.Context, roomID string) (Member, error) {
	r, err := d.rooms.Get(ctx, roomID)
	if err != nil {
		return Member{}, err
	}
	return d.members.Member(ctx, roomID, r.Moderator)
}

// newCode generates a join code that no existing room uses.
func (d *Directory) newCode(ctx context.Context) (string, error) {
	for {
		code := random.Code(codeLength, codeAlphabet, d.src)
		exists, err := d.rooms.Exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("checking room code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
}
