package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// FriendRequestStatus is the lifecycle state of a friend request.
// PENDING is the only non-terminal state.
type FriendRequestStatus uint8

const (
	FriendRequestPending FriendRequestStatus = iota + 1
	FriendRequestAccepted
	FriendRequestDeclined
	FriendRequestCanceled
)

var friendRequestStatusNames = map[FriendRequestStatus]string{
	FriendRequestPending:  "PENDING",
	FriendRequestAccepted: "ACCEPTED",
	FriendRequestDeclined: "DECLINED",
	FriendRequestCanceled: "CANCELED",
}

func ParseFriendRequestStatus(s string) (FriendRequestStatus, error) {
	if v, ok := enumLookup(friendRequestStatusNames, s); ok {
		return v, nil
	}
	return 0, fmt.Errorf("invalid friend request status %q", s)
}

func (s FriendRequestStatus) String() string {
	if name, ok := friendRequestStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("FriendRequestStatus(%d)", uint8(s))
}

func (s FriendRequestStatus) IsTerminal() bool {
	switch s {
	case FriendRequestAccepted, FriendRequestDeclined, FriendRequestCanceled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s FriendRequestStatus) CanTransitionTo(next FriendRequestStatus) bool {
	switch s {
	case FriendRequestPending:
		return next.IsTerminal()
	default:
		return false
	}
}

func (s FriendRequestStatus) Value() (driver.Value, error) {
	return enumValue(friendRequestStatusNames, s, "friend request status")
}

func (s *FriendRequestStatus) Scan(src interface{}) error {
	label, ok, err := enumText(src)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("friend request status is NULL")
	}
	parsed, err := ParseFriendRequestStatus(label)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s FriendRequestStatus) MarshalText() ([]byte, error) {
	name, ok := friendRequestStatusNames[s]
	if !ok {
		return nil, fmt.Errorf("invalid friend request status %d", uint8(s))
	}
	return []byte(name), nil
}

func (s *FriendRequestStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseFriendRequestStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// PairKey identifies the unordered pair {a, b}.
func PairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

type FriendRequest struct {
	ID          uint                `gorm:"primaryKey"`
	FromUserID  uint                `gorm:"not null;index"`
	FromUser    User                `gorm:"foreignKey:FromUserID;constraint:OnDelete:CASCADE"`
	ToUserID    uint                `gorm:"not null;index"`
	ToUser      User                `gorm:"foreignKey:ToUserID;constraint:OnDelete:CASCADE"`
	Status      FriendRequestStatus `gorm:"type:varchar(20);not null;index"`
	PendingPair *string             `gorm:"type:varchar(41);uniqueIndex:idx_friend_requests_pending_pair"` // set only while PENDING
	CreatedAt   time.Time           `gorm:"autoCreateTime"`
	RespondedAt *time.Time
}

func (FriendRequest) TableName() string {
	return "friend_requests"
}

// BeforeCreate rejects self requests and anything not created as PENDING.
func (r *FriendRequest) BeforeCreate(tx *gorm.DB) error {
	if r.FromUserID == r.ToUserID {
		return gorm.ErrInvalidData
	}
	if r.Status != FriendRequestPending {
		return gorm.ErrInvalidData
	}
	key := PairKey(r.FromUserID, r.ToUserID)
	r.PendingPair = &key
	return nil
}

// Friendship is the symmetric edge between two users, stored once with
// UserLowID < UserHighID.
type Friendship struct {
	ID         uint      `gorm:"primaryKey"`
	UserLowID  uint      `gorm:"not null;uniqueIndex:idx_friendships_pair"`
	UserLow    User      `gorm:"foreignKey:UserLowID;constraint:OnDelete:CASCADE"`
	UserHighID uint      `gorm:"not null;uniqueIndex:idx_friendships_pair;index"`
	UserHigh   User      `gorm:"foreignKey:UserHighID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Friendship) TableName() string {
	return "friendships"
}

func NewFriendship(a, b uint) *Friendship {
	f := &Friendship{UserLowID: a, UserHighID: b}
	f.canonicalize()
	return f
}

func (f *Friendship) canonicalize() {
	if f.UserLowID > f.UserHighID {
		f.UserLowID, f.UserHighID = f.UserHighID, f.UserLowID
	}
}

func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	if f.UserLowID == f.UserHighID {
		return gorm.ErrInvalidData
	}
	f.canonicalize()
	return nil
}

// FriendRequestView is the API representation of a request.
type FriendRequestView struct {
	ID          uint                `json:"id"`
	FromUser    MiniUser            `json:"from_user"`
	ToUser      MiniUser            `json:"to_user"`
	Status      FriendRequestStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	RespondedAt *time.Time          `json:"responded_at"`
}

func (r *FriendRequest) View() FriendRequestView {
	return FriendRequestView{
		ID:          r.ID,
		FromUser:    r.FromUser.Mini(),
		ToUser:      r.ToUser.Mini(),
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		RespondedAt: r.RespondedAt,
	}
}

func FriendRequestViews(reqs []FriendRequest) []FriendRequestView {
	out := make([]FriendRequestView, 0, len(reqs))
	for i := range reqs {
		out = append(out, reqs[i].View())
	}
	return out
}
